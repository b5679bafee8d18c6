package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Recover(ctx context.Context) error
	List(ctx context.Context) error
	Update(ctx context.Context) error
	Delete(ctx context.Context) error
}

// runREPL reads commands with next and dispatches them to a until the user
// types exit/quit or next fails (EOF or cancelled ctx).
//
//	Guest:     help, register, login, recover, list, exit
//	Logged in: help, list, update, delete, logout, exit
//
// Handler errors are reported to the user by the handlers themselves, so
// they are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, next func(context.Context) (string, error), w io.Writer) {
	for {
		fmt.Fprintf(w, "sk %s> ", statusFn())
		line, err := next(ctx)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := strings.ToLower(parts[0]); cmd {
		case "help", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: (l)ist, update, delete, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, recover, (l)ist, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "recover":
			_ = a.Recover(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "update":
			_ = a.Update(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
