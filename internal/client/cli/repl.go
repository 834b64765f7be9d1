package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Fprintln

// execIface is the command surface the REPL dispatches to. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Listings(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Sell(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Favorites(ctx context.Context) error
	Fav(ctx context.Context, args []string) error
	Unfav(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: register, verify <token>, resend, login, forgot, reset, (l)istings [limit] [offset], show <id>, exit"
	helpMember = "Available commands: me, passwd, refresh, logout, (l)istings [limit] [offset], show <id>, sell, delete <id>, upload <id> <file>, favs, fav <id>, unfav <id>, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF or "exit"/"quit". Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gm %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(w, helpMember)
			} else {
				printlnFn(w, helpGuest)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "verify":
			cmdErr = a.Verify(ctx, args)
		case "resend":
			cmdErr = a.Resend(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "refresh":
			cmdErr = a.Refresh(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "passwd":
			cmdErr = a.ChangePassword(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)
		case "l", "listings":
			cmdErr = a.Listings(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "sell":
			cmdErr = a.Sell(ctx)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "upload":
			cmdErr = a.Upload(ctx, args)
		case "favs", "favorites":
			cmdErr = a.Favorites(ctx)
		case "fav":
			cmdErr = a.Fav(ctx, args)
		case "unfav":
			cmdErr = a.Unfav(ctx, args)
		case "exit", "quit":
			printlnFn(w, "Bye!")
			return
		default:
			printlnFn(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(w, "Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
