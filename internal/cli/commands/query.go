package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/suiteql/internal/cli/config"
	"github.com/leapstack-labs/suiteql/internal/cli/output"
	"github.com/leapstack-labs/suiteql/internal/session"
	"github.com/leapstack-labs/suiteql/internal/suiteql"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for running queries.
type QueryOptions struct {
	// File holds a query to run. Empty means stdin or the REPL.
	File string
	// Interactive forces the REPL even when a file is given or stdin is
	// not a terminal.
	Interactive bool
	// Reader replaces the readline prompt. Used by tests.
	Reader session.LineReader
}

// ExitError carries a process exit code for an error that has already been
// reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// RunQuery runs a single query non-interactively, or starts the REPL.
//
// A query is run once and the command exits when a file is given or stdin
// is not a terminal. Otherwise, or with opts.Interactive, the REPL starts;
// a given file is run first with the configured limit and offset.
func RunQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	ctx := cmd.Context()
	logger := config.GetLogger(ctx)

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		opts.File = args[0]
	}

	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
	state := newSessionState(cfg)
	dispatcher := session.NewDispatcher(state, client, renderer,
		session.WithEditor(NewExternalEditor(cfg.Editor)),
		session.WithLogger(logger),
	)

	stdin := cmd.InOrStdin()
	interactive := opts.Interactive || (opts.File == "" && isTerminal(stdin))
	logger.Debug("starting",
		"interactive", interactive,
		"file", opts.File,
		"endpoint", client.Endpoint(),
	)

	if !interactive {
		return runBatch(ctx, cmd, dispatcher, cfg, opts.File, stdin)
	}
	return runInteractive(ctx, cmd, dispatcher, cfg, opts)
}

func newClient(cfg *config.Config, logger *slog.Logger) (*suiteql.Client, error) {
	clientOpts := []suiteql.Option{
		suiteql.WithTimeout(cfg.Timeout),
		suiteql.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, suiteql.WithBaseURL(cfg.BaseURL))
	}
	return suiteql.NewClient(cfg.Credentials(), clientOpts...)
}

// newSessionState seeds a session from the configured mode and paging.
func newSessionState(cfg *config.Config) *session.State {
	state := session.NewState()
	if cfg.JSON {
		state.SetMode(output.ModeJSON)
	}
	if cfg.Limit != nil {
		state.SetLimit(*cfg.Limit)
	}
	if cfg.Offset != nil {
		state.SetOffset(*cfg.Offset)
	}
	return state
}

func runBatch(ctx context.Context, cmd *cobra.Command, d *session.Dispatcher, cfg *config.Config, file string, stdin io.Reader) error {
	query, err := readQuery(file, stdin)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Running query...")

	if err := d.RunQuery(ctx, query, cfg.Limit, cfg.Offset); err != nil {
		// Already reported by the dispatcher.
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// readQuery reads the whole query from file, or from stdin when file is "".
func readQuery(file string, stdin io.Reader) (string, error) {
	var content []byte
	var err error
	if file != "" {
		content, err = os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	} else {
		content, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	query := strings.TrimSpace(string(content))
	if query == "" {
		return "", errors.New("no query given (pass a file or pipe a query on stdin)")
	}
	return query, nil
}

func runInteractive(ctx context.Context, cmd *cobra.Command, d *session.Dispatcher, cfg *config.Config, opts *QueryOptions) error {
	out := d.Renderer()

	reader := opts.Reader
	if reader == nil {
		rl, err := newLineReader(cfg.HistoryFile, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = rl.Close() }()
		reader = rl
	}

	printBanner(out, d)

	if opts.File != "" {
		query, err := readQuery(opts.File, nil)
		if err != nil {
			out.Error(err.Error())
		} else {
			_ = d.RunQuery(ctx, query, cfg.Limit, cfg.Offset)
		}
	}

	return session.NewLoop(reader, d).Run(ctx)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
