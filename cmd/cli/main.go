package main

import (
	"context"

	"github.com/dmitrijs2005/gophmarket/internal/client/cli"
	"github.com/dmitrijs2005/gophmarket/internal/client/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	cli.NewApp(cfg).Run(ctx)
}
