package session

import (
	"errors"
	"fmt"
)

// ErrNoLastQuery is wrapped by StateError when a command needs a previous query.
var ErrNoLastQuery = errors.New("no previous query")

// ErrInterrupt is returned by a LineReader when the user interrupts input.
var ErrInterrupt = errors.New("interrupted")

// UsageError reports a meta-command invoked with bad arguments.
type UsageError struct {
	Command string
	Usage   string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("usage: %s", e.Usage)
	}
	return fmt.Sprintf("%s (usage: %s)", e.Reason, e.Usage)
}

// StateError reports a command that cannot run in the current session state.
type StateError struct {
	Command string
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v, run a query first", e.Command, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// UnknownCommandError reports an unrecognized meta-command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s (type .help for commands)", e.Name)
}
