package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate. The
// real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	SetDate(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Remove(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	ShowDay(ctx context.Context, args []string) error
	Remaining(ctx context.Context, args []string) error
	Progress(ctx context.Context, args []string) error
	Recalc(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Analytics(ctx context.Context, args []string) error
	Recipes(ctx context.Context, args []string) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are printed and swallowed; the loop
// itself never aborts on a failed command.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("macroledger %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: date, add, rm, edit, day, remaining, progress, recalc, sync, history, analytics, recipes, logout, exit")
			} else {
				printlnFn("Available commands: login, date, add, rm, edit, day, remaining, progress, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "date":
			err = a.SetDate(ctx, args)

		case "add":
			err = a.Add(ctx)

		case "rm":
			err = a.Remove(ctx, args)

		case "edit":
			err = a.Edit(ctx, args)

		case "day":
			err = a.ShowDay(ctx, args)

		case "remaining":
			err = a.Remaining(ctx, args)

		case "progress":
			err = a.Progress(ctx, args)

		case "recalc":
			err = a.Recalc(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "history":
			err = a.History(ctx, args)

		case "analytics":
			err = a.Analytics(ctx, args)

		case "recipes":
			err = a.Recipes(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err.Error())
		}
	}
}
