package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Download(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader, writes prompts and
// replies to out and dispatches commands to a.
// The loop exits at end of input or on "exit" / "quit".
//
//	Not logged in:
//	  - help                   show available commands
//	  - register               create an account
//	  - login                  authenticate
//	  - open <route>           navigate to a view
//	  - exit | quit            leave the program
//
//	Logged in:
//	  - me                     show the current account
//	  - upload <path>          upload a local file
//	  - (l)ist                 list remote files
//	  - download <id> [name]   save a remote file into the download directory
//	  - delete <id>            delete a remote file
//	  - logout                 drop the session
//
// Handlers report their own errors to the user; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "cd %s > ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(out, "Available commands: me, upload <path>, (l)ist, download <id> [name], delete <id>, open <route>, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, open <route>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "upload":
			_ = a.Upload(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "download":
			_ = a.Download(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "open":
			_ = a.Open(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
