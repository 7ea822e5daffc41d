// Package session implements the interactive query session: the state
// carried between commands, the dispatcher that classifies and runs each
// line of input, and the read loop that drives them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Farewell is printed when the session ends.
const Farewell = "Goodbye!"

// LineReader supplies input one line at a time. ReadLine returns io.EOF at
// end of input and ErrInterrupt when the user interrupts.
type LineReader interface {
	ReadLine() (string, error)
}

// Loop reads lines and hands them to a Dispatcher until the session ends.
type Loop struct {
	reader     LineReader
	dispatcher *Dispatcher
}

// NewLoop creates a loop reading from reader.
func NewLoop(reader LineReader, dispatcher *Dispatcher) *Loop {
	return &Loop{reader: reader, dispatcher: dispatcher}
}

// Run processes input until end of input, an interrupt or a quit command.
// Those all end the session cleanly with a nil error; only a failing
// reader is reported as an error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		line, err := l.reader.ReadLine()
		if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupt) {
			l.farewell()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if l.dispatcher.Dispatch(ctx, line) == Terminate {
			l.farewell()
			return nil
		}
	}
}

func (l *Loop) farewell() {
	l.dispatcher.Renderer().Muted(Farewell)
}
