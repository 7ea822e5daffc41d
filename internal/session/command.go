package session

import (
	"strconv"
	"strings"
)

// metaPrefix marks a line as a meta-command rather than a query.
const metaPrefix = "."

// Command is one classified line of input. The set of implementations is
// closed; Dispatch switches over all of them.
type Command interface {
	command()
}

type (
	// Empty is a blank line.
	Empty struct{}
	// Quit ends the session.
	Quit struct{}
	// Help prints the command reference.
	Help struct{}
	// ToggleMode switches between table and JSON output.
	ToggleMode struct{}
	// Load runs the query stored in a file.
	Load struct{ Path string }
	// FormatLast pretty-prints the last query.
	FormatLast struct{}
	// Limit sets the default limit, or clears it when Value is nil.
	Limit struct{ Value *int }
	// Offset sets the default offset, or clears it when Value is nil.
	Offset struct{ Value *int }
	// Next re-runs the last query one page forward.
	Next struct{}
	// Prev re-runs the last query one page back.
	Prev struct{}
	// Edit opens the last query in an external editor and runs the result.
	Edit struct{}
	// Status prints the session state.
	Status struct{}
	// Clear clears the screen.
	Clear struct{}
	// Query is a query forwarded to the service as typed.
	Query struct{ Text string }
)

func (Empty) command()      {}
func (Quit) command()       {}
func (Help) command()       {}
func (ToggleMode) command() {}
func (Load) command()       {}
func (FormatLast) command() {}
func (Limit) command()      {}
func (Offset) command()     {}
func (Next) command()       {}
func (Prev) command()       {}
func (Edit) command()       {}
func (Status) command()     {}
func (Clear) command()      {}
func (Query) command()      {}

// Parse classifies one line of input. Meta-commands are matched on their
// exact name or alias. A non-nil error is a *UsageError or an
// *UnknownCommandError and the returned Command is nil.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Empty{}, nil
	}
	if !strings.HasPrefix(line, metaPrefix) {
		return Query{Text: line}, nil
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])
	args := fields[1:]

	noArgs := func(cmd Command, canonical string) (Command, error) {
		if len(args) > 0 {
			return nil, &UsageError{Command: canonical, Usage: canonical, Reason: canonical + " takes no arguments"}
		}
		return cmd, nil
	}

	switch name {
	case ".quit", ".exit", ".q":
		return noArgs(Quit{}, ".quit")
	case ".help", ".h", ".?":
		return noArgs(Help{}, ".help")
	case ".mode", ".m":
		return noArgs(ToggleMode{}, ".mode")
	case ".format", ".f":
		return noArgs(FormatLast{}, ".format")
	case ".next", ".n":
		return noArgs(Next{}, ".next")
	case ".prev", ".p":
		return noArgs(Prev{}, ".prev")
	case ".edit", ".e":
		return noArgs(Edit{}, ".edit")
	case ".status", ".s":
		return noArgs(Status{}, ".status")
	case ".clear":
		return noArgs(Clear{}, ".clear")
	case ".load", ".l":
		if rest == "" {
			return nil, &UsageError{Command: ".load", Usage: ".load <path>", Reason: "missing file path"}
		}
		return Load{Path: rest}, nil
	case ".limit":
		v, err := parseCount(".limit", args)
		if err != nil {
			return nil, err
		}
		return Limit{Value: v}, nil
	case ".offset":
		v, err := parseCount(".offset", args)
		if err != nil {
			return nil, err
		}
		return Offset{Value: v}, nil
	}

	return nil, &UnknownCommandError{Name: name}
}

// parseCount parses the optional non-negative integer argument of .limit
// and .offset. No argument yields nil.
func parseCount(command string, args []string) (*int, error) {
	usage := command + " [n]"
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, &UsageError{Command: command, Usage: usage, Reason: "too many arguments"}
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, &UsageError{Command: command, Usage: usage, Reason: "not a number: " + args[0]}
	}
	if n < 0 {
		return nil, &UsageError{Command: command, Usage: usage, Reason: "must not be negative: " + args[0]}
	}
	return &n, nil
}
