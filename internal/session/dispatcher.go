package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/suiteql/internal/cli/output"
	"github.com/leapstack-labs/suiteql/internal/sqlfmt"
	"github.com/leapstack-labs/suiteql/internal/suiteql"
)

// Executor runs a query against the service. A nil limit or offset is
// omitted from the request.
type Executor interface {
	Execute(ctx context.Context, query string, limit, offset *int) (*suiteql.PagedResult, error)
}

// Editor lets the user edit text in an external program.
type Editor interface {
	Edit(ctx context.Context, initial string) (string, error)
}

// Formatter pretty-prints a query for display.
type Formatter func(query string) string

// Outcome tells the loop whether to keep reading input.
type Outcome int

// Dispatch outcomes.
const (
	Continue Outcome = iota
	Terminate
)

// Dispatcher applies commands to a State, running queries through an
// Executor and reporting results and errors on a Renderer.
type Dispatcher struct {
	state    *State
	executor Executor
	out      *output.Renderer
	format   Formatter
	editor   Editor
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFormatter replaces the query formatter used by .format.
func WithFormatter(f Formatter) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.format = f
		}
	}
}

// WithEditor sets the editor used by .edit.
func WithEditor(e Editor) Option {
	return func(d *Dispatcher) {
		d.editor = e
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher over state.
func NewDispatcher(state *State, executor Executor, out *output.Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		state:    state,
		executor: executor,
		out:      out,
		format:   sqlfmt.Format,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the session state.
func (d *Dispatcher) State() *State { return d.state }

// Renderer returns the renderer used for output.
func (d *Dispatcher) Renderer() *output.Renderer { return d.out }

// Dispatch parses and runs one line of input. Every error is reported on
// the renderer; none is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) Outcome {
	cmd, err := Parse(line)
	if err != nil {
		d.report(err)
		return Continue
	}

	switch c := cmd.(type) {
	case Empty:
	case Quit:
		return Terminate
	case Help:
		printHelp(d.out)
	case ToggleMode:
		mode := d.state.ToggleMode()
		d.logger.Debug("output mode changed", "mode", mode.String())
		d.out.Success(fmt.Sprintf("Output mode: %s", mode))
	case Load:
		d.load(ctx, c.Path)
	case FormatLast:
		q, ok := d.requireLastQuery(".format")
		if !ok {
			break
		}
		d.out.Println(strings.TrimRight(d.format(q), "\n"))
	case Limit:
		if c.Value == nil {
			d.state.ClearLimit()
			d.out.Success("Limit cleared")
		} else {
			d.state.SetLimit(*c.Value)
			d.out.Success(fmt.Sprintf("Limit set to %d", *c.Value))
		}
		lim, set := d.state.Limit()
		d.logger.Debug("limit changed", "limit", lim, "set", set)
	case Offset:
		if c.Value == nil {
			d.state.ClearOffset()
			d.out.Success("Offset cleared")
		} else {
			d.state.SetOffset(*c.Value)
			d.out.Success(fmt.Sprintf("Offset set to %d", *c.Value))
		}
		off, set := d.state.Offset()
		d.logger.Debug("offset changed", "offset", off, "set", set)
	case Next:
		q, ok := d.requireLastQuery(".next")
		if !ok {
			break
		}
		off := d.state.NextPage()
		d.logger.Debug("page forward", "offset", off, "step", d.state.Step())
		d.runWithState(ctx, q)
	case Prev:
		q, ok := d.requireLastQuery(".prev")
		if !ok {
			break
		}
		off := d.state.PrevPage()
		d.logger.Debug("page back", "offset", off, "step", d.state.Step())
		d.runWithState(ctx, q)
	case Edit:
		d.edit(ctx)
	case Status:
		d.printStatus()
	case Clear:
		d.out.Clear()
	case Query:
		d.runWithState(ctx, c.Text)
	}
	return Continue
}

// RunQuery executes query with explicit paging parameters instead of the
// session defaults. It records the query as the last query, renders the
// result, and reports any failure before returning it.
func (d *Dispatcher) RunQuery(ctx context.Context, query string, limit, offset *int) error {
	d.state.SetLastQuery(query)

	res, err := d.executor.Execute(ctx, query, limit, offset)
	if err != nil {
		d.report(err)
		return err
	}
	if err := d.out.RenderResult(res, d.state.Mode()); err != nil {
		d.report(err)
		return err
	}
	return nil
}

func (d *Dispatcher) runWithState(ctx context.Context, query string) {
	limit, offset := d.state.Paging()
	_ = d.RunQuery(ctx, query, limit, offset)
}

func (d *Dispatcher) requireLastQuery(command string) (string, bool) {
	q, ok := d.state.LastQuery()
	if !ok {
		d.report(&StateError{Command: command, Err: ErrNoLastQuery})
	}
	return q, ok
}

func (d *Dispatcher) load(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		d.report(fmt.Errorf("cannot load %s: %w", path, err))
		return
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		d.out.Warning(fmt.Sprintf("%s is empty, nothing to run", path))
		return
	}
	d.logger.Debug("loaded query", "path", path, "bytes", len(data))
	d.runWithState(ctx, query)
}

func (d *Dispatcher) edit(ctx context.Context) {
	if d.editor == nil {
		d.report(errors.New("no editor configured (set $VISUAL or $EDITOR)"))
		return
	}

	initial, _ := d.state.LastQuery()
	text, err := d.editor.Edit(ctx, initial)
	if err != nil {
		d.report(fmt.Errorf("editor: %w", err))
		return
	}

	query := strings.TrimSpace(text)
	if query == "" {
		d.out.Muted("Empty query, nothing to run")
		return
	}
	d.runWithState(ctx, query)
}

func (d *Dispatcher) printStatus() {
	limit := "unset"
	if n, ok := d.state.Limit(); ok {
		limit = fmt.Sprintf("%d", n)
	}
	offset := "unset"
	if n, ok := d.state.Offset(); ok {
		offset = fmt.Sprintf("%d", n)
	}
	last := "(none)"
	if q, ok := d.state.LastQuery(); ok {
		last = q
	}

	d.out.Printf("mode:   %s\n", d.state.Mode())
	d.out.Printf("limit:  %s\n", limit)
	d.out.Printf("offset: %s\n", offset)
	d.out.Printf("step:   %d\n", d.state.Step())
	d.out.Printf("last:   %s\n", last)
}

// report writes err to the renderer with whatever detail its type carries.
func (d *Dispatcher) report(err error) {
	d.logger.Debug("command failed", "error", err)

	var statusErr *suiteql.HTTPStatusError
	if errors.As(err, &statusErr) {
		d.out.Error(statusErr.Error())
		if detail := statusErr.Detail(); detail != "" {
			d.out.Warning(detail)
		}
		return
	}
	d.out.Error(err.Error())
}

func printHelp(out *output.Renderer) {
	cmd := out.Styles().Command
	rows := []struct{ name, desc string }{
		{".help, .h", "Show this help message"},
		{".quit, .exit, .q", "Exit the REPL"},
		{".mode, .m", "Toggle output between table and json"},
		{".load, .l <path>", "Run the query in a file"},
		{".format, .f", "Pretty-print the last query"},
		{".limit [n]", "Set the default limit (no argument clears it)"},
		{".offset [n]", "Set the default offset (no argument clears it)"},
		{".next, .n", "Re-run the last query one page forward"},
		{".prev, .p", "Re-run the last query one page back"},
		{".edit, .e", "Edit the last query in $VISUAL or $EDITOR and run it"},
		{".status, .s", "Show mode, paging and the last query"},
		{".clear", "Clear the screen"},
	}

	out.Println()
	out.Println(out.Styles().Header.Render("Commands:"))
	for _, r := range rows {
		out.Printf("  %s  %s\n", cmd.Render(fmt.Sprintf("%-18s", r.name)), r.desc)
	}
	out.Println()
	out.Println("Anything else is sent to NetSuite as a SuiteQL query.")
	out.Println("Paging steps by the limit, or by 10 when no limit is set.")
	out.Println()
}
