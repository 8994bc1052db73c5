package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	Import(ctx context.Context, path string) error
	Guests(ctx context.Context) error
	Pending(ctx context.Context) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Token(ctx context.Context, email, hours string) error
	HashPassword(ctx context.Context) error
}

const helpText = `Available commands:
  import <guests.yaml>    import guests in one transaction
  guests                  list guests
  pending                 list photos waiting for approval
  approve <photo-id>      show a photo in the gallery
  reject <photo-id>       hide a photo from the gallery
  token <email> [hours]   mint a guest session token (default 720h)
  hash-password           hash a site password for the config
  exit | quit             leave the console`

// runREPL reads commands from scanner until EOF or "exit"/"quit" and
// dispatches them to a. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("admin> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "import":
			if len(args) != 1 {
				printlnFn("Usage: import <guests.yaml>")
				continue
			}
			err = a.Import(ctx, args[0])

		case "guests":
			err = a.Guests(ctx)

		case "pending":
			err = a.Pending(ctx)

		case "approve", "reject":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <photo-id>", cmd))
				continue
			}
			if cmd == "approve" {
				err = a.Approve(ctx, args[0])
			} else {
				err = a.Reject(ctx, args[0])
			}

		case "token":
			if len(args) < 1 || len(args) > 2 {
				printlnFn("Usage: token <email> [hours]")
				continue
			}
			hours := ""
			if len(args) == 2 {
				hours = args[1]
			}
			err = a.Token(ctx, args[0], hours)

		case "hash-password":
			err = a.HashPassword(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
