// Package cli implements the interactive GophMarket command-line client.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gophmarket/internal/client/api"
	"github.com/dmitrijs2005/gophmarket/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	email  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return newApp(c, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api.New(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.email != "" {
		return "(" + a.email + ") "
	}
	return ""
}

func (a *App) Run(ctx context.Context) {
	printlnFn(a.out, "Welcome to GophMarket CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	if a.isLoggedIn() {
		_ = a.api.Logout(ctx)
	}
}
