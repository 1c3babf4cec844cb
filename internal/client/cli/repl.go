package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isRegistered(ctx context.Context) bool
	Register(ctx context.Context) error
	Upload(ctx context.Context) error
	Enqueue(ctx context.Context, path string) error
	Notify(ctx context.Context, kind string) error
	Token(ctx context.Context, token string) error
	Messages(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Log(ctx context.Context) error
}

const (
	helpUnregistered = "Available commands: register, status, log, exit"
	helpRegistered   = "Available commands: upload, enqueue <path>, notify test|survey, token <fcm>, messages [add <text>|rm <id>], status, log, exit"
)

// runREPL reads commands line by line and dispatches them to a. It returns
// on scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("beiwe %s> ", statusFn()))
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
			if a.isRegistered(ctx) {
				printlnFn(helpRegistered)
			} else {
				printlnFn(helpUnregistered)
			}

		case "register":
			err = a.Register(ctx)

		case "upload":
			err = a.Upload(ctx)

		case "enqueue":
			if len(args) != 1 {
				printlnFn("Usage: enqueue <path>")
				continue
			}
			err = a.Enqueue(ctx, args[0])

		case "notify":
			if len(args) != 1 || (args[0] != "test" && args[0] != "survey") {
				printlnFn("Usage: notify test|survey")
				continue
			}
			err = a.Notify(ctx, args[0])

		case "token":
			if len(args) != 1 {
				printlnFn("Usage: token <fcm token>")
				continue
			}
			err = a.Token(ctx, args[0])

		case "messages":
			err = a.Messages(ctx, args)

		case "status":
			err = a.Status(ctx)

		case "log":
			err = a.Log(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
