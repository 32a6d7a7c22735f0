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
	Scan(ctx context.Context, code string) error
	Enter(ctx context.Context, code string) error
	Confirm(ctx context.Context) error
	Retry(ctx context.Context) error
	Another(ctx context.Context) error
	Finish(ctx context.Context) error
	ShowQueue(ctx context.Context) error
	Sync(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	ClearFailed(ctx context.Context) error
	ClearAll(ctx context.Context) error
	Recent(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the scansync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//   - help             — show available commands
//   - scan <code>      — capture a barcode
//   - enter <code>     — type a barcode manually
//   - confirm          — commit the found product as a diary entry
//   - retry            — back to scanning after found/not-found/error
//   - another          — scan another code after an offline capture
//   - done             — close a queued dialog
//   - queue            — list queued offline scans
//   - sync             — run a sync pass now
//   - remove <id>      — delete a queued scan
//   - clearfailed      — drop every failed queued scan
//   - clearall         — empty the queue entirely
//   - recent           — list recently resolved products
//   - status           — connectivity and queue counters
//   - exit | quit      — leave the program
//
// Any errors returned by command handlers are printed here and the loop
// continues; handlers log their own details.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("scan %s> ", statusFn()))
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
			printlnFn("Available commands: scan <code>, enter <code>, confirm, retry, another, done,")
			printlnFn("  queue, sync, remove <id>, clearfailed, clearall, recent, status, exit")

		case "scan":
			if len(args) == 0 {
				printlnFn("Usage: scan <code>")
				continue
			}
			err = a.Scan(ctx, args[0])

		case "enter":
			if len(args) == 0 {
				printlnFn("Usage: enter <code>")
				continue
			}
			err = a.Enter(ctx, args[0])

		case "confirm":
			err = a.Confirm(ctx)

		case "retry":
			err = a.Retry(ctx)

		case "another":
			err = a.Another(ctx)

		case "done":
			err = a.Finish(ctx)

		case "queue":
			err = a.ShowQueue(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "remove":
			if len(args) == 0 {
				printlnFn("Usage: remove <id>")
				continue
			}
			err = a.Remove(ctx, args[0])

		case "clearfailed":
			err = a.ClearFailed(ctx)

		case "clearall":
			err = a.ClearAll(ctx)

		case "recent":
			err = a.Recent(ctx)

		case "status":
			err = a.Status(ctx)

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
