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
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	Rooms(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Leave(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Image(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: login, exit"
	helpMember = "Available commands: rooms, create <name>, rename <room> <name>, delete <room>, search <text>, " +
		"open <room>, close, send <text>, image <path> [caption], history, whoami, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the chat client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches the remaining tokens to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on EOF, when ctx is cancelled,
// or when the user types "exit" or "quit".
//
// Rooms are referenced either by their position in the last listing
// (1, #1) or by an id prefix.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("chat> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}
			continue
		}
		if cmd == "login" {
			_ = a.Login(ctx, args)
			continue
		}

		handler := memberCommand(a, cmd)
		if handler == nil {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		_ = handler(ctx, args)
	}
}

func memberCommand(a execIface, cmd string) func(context.Context, []string) error {
	switch cmd {
	case "logout":
		return a.Logout
	case "whoami":
		return a.Whoami
	case "l", "ls", "rooms":
		return a.Rooms
	case "create", "new":
		return a.Create
	case "rename":
		return a.Rename
	case "delete", "rm":
		return a.Delete
	case "search", "find":
		return a.Search
	case "open", "cd":
		return a.Open
	case "close", "leave":
		return a.Leave
	case "send", "say":
		return a.Send
	case "image", "img":
		return a.Image
	case "history", "h":
		return a.History
	}
	return nil
}
