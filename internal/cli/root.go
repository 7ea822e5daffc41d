// Package cli provides the command-line interface for suiteql.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/suiteql/internal/cli/commands"
	"github.com/leapstack-labs/suiteql/internal/cli/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// skipConfig reports whether a command runs without loading configuration.
func skipConfig(name string) bool {
	switch name {
	case "help", "completion", "version", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		envFile string
		opts    commands.QueryOptions
	)

	rootCmd := &cobra.Command{
		Use:   "suiteql [FILE]",
		Short: "Run SuiteQL queries against NetSuite",
		Long: `suiteql runs SuiteQL queries against the NetSuite REST query API.

With a FILE argument, or with a query piped on stdin, the query is run once
and the result printed. Otherwise an interactive REPL starts; type .help
inside it for the list of commands.

Credentials are read from NETSUITE_ACCOUNT_ID, NETSUITE_CONSUMER_KEY,
NETSUITE_CONSUMER_SECRET, NETSUITE_TOKEN and NETSUITE_TOKEN_SECRET, either
in the environment or in a .env file.`,
		Example: `  suiteql
  suiteql query.sql --limit 50
  echo "SELECT id FROM customer" | suiteql --json
  suiteql -i query.sql`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfig(cmd.Name()) {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, envFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Verbose)
			if f := config.GetConfigFileUsed(); f != "" {
				logger.Debug("using config file", "path", f)
			}
			if f := config.GetEnvFileUsed(); f != "" {
				logger.Debug("using env file", "path", f)
			}

			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), logger)
			cmd.SetContext(config.WithConfig(ctx, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunQuery(cmd, args, &opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./suiteql.yaml)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file with credentials (default: ./.env)")
	pf.String("history-file", "", "REPL history file (default: "+config.DefaultHistoryFile+")")
	pf.Int("limit", 0, "Rows per page")
	pf.Int("offset", 0, "Rows to skip")
	pf.Bool("json", false, "Print results as JSON")
	pf.BoolP("verbose", "v", false, "Verbose output")

	rootCmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Start the REPL even when a FILE is given")

	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	_ = rootCmd.MarkPersistentFlagFilename("env-file")
	rootCmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{"sql"}, cobra.ShellCompDirectiveFilterFileExt
	}

	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger creates the diagnostics logger. Verbose enables debug output.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. Errors that were already shown to the user
// are not printed again.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var exitErr *commands.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for suiteql.

To load completions:

Bash:
  $ source <(suiteql completion bash)

Zsh:
  $ suiteql completion zsh > "${fpath[1]}/_suiteql"

Fish:
  $ suiteql completion fish | source

PowerShell:
  PS> suiteql completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
