package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/suiteql/internal/cli/output"
	"github.com/leapstack-labs/suiteql/internal/session"
)

const prompt = "suiteql> "

// lineReader adapts a readline instance to session.LineReader.
type lineReader struct {
	rl *readline.Instance
}

func newLineReader(historyFile string, in io.Reader, out, errOut io.Writer) (*lineReader, error) {
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	stdin, ok := in.(io.ReadCloser)
	if !ok {
		stdin = io.NopCloser(in)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		AutoComplete:      newCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         ".quit",
		HistorySearchFold: true,
		Stdin:             stdin,
		Stdout:            out,
		Stderr:            errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REPL: %w", err)
	}
	return &lineReader{rl: rl}, nil
}

// ReadLine returns the next line, mapping Ctrl-C to session.ErrInterrupt.
func (r *lineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", session.ErrInterrupt
	}
	return line, err
}

func (r *lineReader) Close() error {
	return r.rl.Close()
}

func printBanner(out *output.Renderer, d *session.Dispatcher) {
	state := d.State()
	paging := "default page size"
	if n, ok := state.Limit(); ok {
		paging = fmt.Sprintf("limit %d", n)
	}
	if n, ok := state.Offset(); ok {
		paging += fmt.Sprintf(", offset %d", n)
	}

	out.Println(out.Styles().Header.Render("SuiteQL REPL"))
	out.Muted(fmt.Sprintf("Output: %s, %s", state.Mode(), paging))
	out.Println("Type .help for commands, .quit to exit")
	out.Println()
}

// metaCommands lists every meta-command name and alias for completion.
var metaCommands = []string{
	".quit", ".exit", ".q",
	".help", ".h",
	".mode", ".m",
	".format", ".f",
	".limit", ".offset",
	".next", ".n",
	".prev", ".p",
	".edit", ".e",
	".status", ".s",
	".clear",
}

// statementKeywords start a SuiteQL statement.
var statementKeywords = []string{"SELECT", "WITH"}

// newCompleter creates a readline completer for meta-commands, .load paths
// and statement keywords.
func newCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, kw := range statementKeywords {
		items = append(items, readline.PcItem(kw), readline.PcItem(strings.ToLower(kw)))
	}
	for _, name := range metaCommands {
		items = append(items, readline.PcItem(name))
	}
	items = append(items,
		readline.PcItem(".load", readline.PcItemDynamic(listQueryFiles)),
		readline.PcItem(".l", readline.PcItemDynamic(listQueryFiles)),
	)
	return readline.NewPrefixCompleter(items...)
}

// listQueryFiles returns the .sql files in the directory of the path typed
// so far, for .load completion.
func listQueryFiles(line string) []string {
	fields := strings.Fields(line)
	dir := "."
	if len(fields) > 1 {
		if d := filepath.Dir(fields[len(fields)-1]); d != "" {
			dir = d
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if dir != "." {
			name = filepath.Join(dir, name)
		}
		switch {
		case e.IsDir():
			names = append(names, name+string(filepath.Separator))
		case strings.EqualFold(filepath.Ext(name), ".sql"):
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
