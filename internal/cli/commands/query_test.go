package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/suiteql/internal/cli/config"
	"github.com/leapstack-labs/suiteql/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneRow = `{"links":[],"count":1,"hasMore":false,"items":[{"links":[],"id":"7"}],"offset":0,"totalResults":1}`

// fakeNetSuite records the queries it receives and answers with a fixed
// status and body.
type fakeNetSuite struct {
	mu      sync.Mutex
	queries []string
	params  []url.Values
	status  int
	body    string
}

func newFakeNetSuite(t *testing.T, status int, body string) (*fakeNetSuite, string) {
	t.Helper()
	f := &fakeNetSuite{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Q string `json:"q"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.queries = append(f.queries, req.Q)
		f.params = append(f.params, r.URL.Query())
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeNetSuite) calls() ([]string, []url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...), append([]url.Values(nil), f.params...)
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AccountID:      "1234567",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Token:          "tk",
		TokenSecret:    "ts",
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
	}
}

// newQueryCmd returns a command wired like the root command, with cfg and a
// test logger in its context.
func newQueryCmd(t *testing.T, cfg *config.Config, stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "suiteql"}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx := context.WithValue(context.Background(), config.LoggerKey(), testutil.NewTestLogger(t))
	cmd.SetContext(config.WithConfig(ctx, cfg))
	return cmd, stdout, stderr
}

// scriptedReader replays lines and then reports end of input.
type scriptedReader struct {
	lines []string
}

func (r *scriptedReader) ReadLine() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func intPtr(n int) *int { return &n }

func TestRunQuery_BatchFromStdin(t *testing.T) {
	srv, baseURL := newFakeNetSuite(t, http.StatusOK, oneRow)
	cmd, stdout, stderr := newQueryCmd(t, testConfig(baseURL), "  SELECT id FROM customer\n")

	err := RunQuery(cmd, nil, &QueryOptions{})
	require.NoError(t, err)

	queries, params := srv.calls()
	require.Len(t, queries, 1)
	assert.Equal(t, "SELECT id FROM customer", queries[0])
	assert.Empty(t, params[0].Get("limit"))
	assert.Empty(t, params[0].Get("offset"))

	assert.Contains(t, stderr.String(), "Running query...")
	assert.Contains(t, stdout.String(), "│ id │")
	assert.Regexp(t, `│\s+7\s+│`, stdout.String())
	assert.True(t, strings.HasSuffix(stdout.String(), "1 rows\n"), stdout.String())
}

func TestRunQuery_BatchFromFileWithPaging(t *testing.T) {
	srv, baseURL := newFakeNetSuite(t, http.StatusOK, oneRow)
	dir := t.TempDir()
	path := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT id FROM item\n"), 0o600))

	cfg := testConfig(baseURL)
	cfg.Limit = intPtr(5)
	cfg.Offset = intPtr(10)
	cfg.JSON = true
	cmd, stdout, _ := newQueryCmd(t, cfg, "")

	err := RunQuery(cmd, []string{path}, &QueryOptions{})
	require.NoError(t, err)

	queries, params := srv.calls()
	require.Len(t, queries, 1)
	assert.Equal(t, "SELECT id FROM item", queries[0])
	assert.Equal(t, "5", params[0].Get("limit"))
	assert.Equal(t, "10", params[0].Get("offset"))
	assert.Contains(t, stdout.String(), `"totalResults": 1`)
}

func TestRunQuery_BatchServerError(t *testing.T) {
	_, baseURL := newFakeNetSuite(t, http.StatusBadRequest,
		`{"title":"Bad Request","o:errorDetails":[{"detail":"Invalid search query."}]}`)
	cmd, stdout, stderr := newQueryCmd(t, testConfig(baseURL), "SELECT nope")

	err := RunQuery(cmd, nil, &QueryOptions{})
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	assert.Contains(t, stderr.String(), "Error: HTTP 400")
	assert.Contains(t, stderr.String(), "Invalid search query.")
	assert.Empty(t, stdout.String())
}

func TestRunQuery_EmptyInput(t *testing.T) {
	_, baseURL := newFakeNetSuite(t, http.StatusOK, oneRow)
	cmd, _, _ := newQueryCmd(t, testConfig(baseURL), "   \n")

	err := RunQuery(cmd, nil, &QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no query given")
}

func TestRunQuery_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.TokenSecret = ""
	cfg.ConsumerKey = ""
	cmd, _, _ := newQueryCmd(t, cfg, "SELECT 1")

	err := RunQuery(cmd, nil, &QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NETSUITE_CONSUMER_KEY")
	assert.Contains(t, err.Error(), "NETSUITE_TOKEN_SECRET")
	assert.Contains(t, err.Error(), "Hint:")
}

func TestRunQuery_NoConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "suiteql"}
	cmd.SetContext(context.Background())

	err := RunQuery(cmd, nil, &QueryOptions{})
	assert.ErrorIs(t, err, config.ErrNoConfig)
}

func TestRunQuery_Interactive(t *testing.T) {
	srv, baseURL := newFakeNetSuite(t, http.StatusOK, oneRow)
	cmd, stdout, _ := newQueryCmd(t, testConfig(baseURL), "")

	reader := &scriptedReader{lines: []string{
		"SELECT id FROM customer",
		".limit 2",
		".next",
		".quit",
		"SELECT never",
	}}
	err := RunQuery(cmd, nil, &QueryOptions{Interactive: true, Reader: reader})
	require.NoError(t, err)

	queries, params := srv.calls()
	require.Len(t, queries, 2)
	assert.Equal(t, []string{"SELECT id FROM customer", "SELECT id FROM customer"}, queries)
	assert.Empty(t, params[0].Get("limit"))
	assert.Equal(t, "2", params[1].Get("limit"))
	assert.Equal(t, "2", params[1].Get("offset"))

	out := stdout.String()
	assert.Contains(t, out, "SuiteQL REPL")
	assert.Contains(t, out, "Type .help for commands")
	assert.Contains(t, out, "Limit set to 2")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"), out)
}

func TestRunQuery_InteractiveRunsFileFirst(t *testing.T) {
	srv, baseURL := newFakeNetSuite(t, http.StatusOK, oneRow)
	dir := t.TempDir()
	path := filepath.Join(dir, "start.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT id FROM vendor"), 0o600))

	cfg := testConfig(baseURL)
	cfg.Limit = intPtr(3)
	cmd, stdout, _ := newQueryCmd(t, cfg, "")

	reader := &scriptedReader{lines: []string{".status"}}
	err := RunQuery(cmd, []string{path}, &QueryOptions{Interactive: true, Reader: reader})
	require.NoError(t, err)

	queries, params := srv.calls()
	require.Len(t, queries, 1)
	assert.Equal(t, "SELECT id FROM vendor", queries[0])
	assert.Equal(t, "3", params[0].Get("limit"))

	out := stdout.String()
	assert.Less(t, strings.Index(out, "SuiteQL REPL"), strings.Index(out, "│ id │"))
	assert.Contains(t, out, "last:   SELECT id FROM vendor")
}

func TestRunQuery_InteractiveKeepsGoingAfterErrors(t *testing.T) {
	srv, baseURL := newFakeNetSuite(t, http.StatusInternalServerError, "boom")
	cmd, stdout, stderr := newQueryCmd(t, testConfig(baseURL), "")

	reader := &scriptedReader{lines: []string{"SELECT 1", ".bogus", "SELECT 2"}}
	err := RunQuery(cmd, nil, &QueryOptions{Interactive: true, Reader: reader})
	require.NoError(t, err)

	queries, _ := srv.calls()
	assert.Len(t, queries, 2)
	assert.Contains(t, stderr.String(), "HTTP 500")
	assert.Contains(t, stderr.String(), "unknown command: .bogus")
	assert.Contains(t, stdout.String(), "Goodbye!")
}

func TestReadQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("\nSELECT 1\n\n"), 0o600))

	q, err := readQuery(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", q)

	q, err = readQuery("", strings.NewReader("SELECT 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", q)

	_, err = readQuery(filepath.Join(dir, "missing.sql"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")

	_, err = readQuery("", strings.NewReader(""))
	require.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("x")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, isTerminal(f))
}

func TestExitError(t *testing.T) {
	inner := errors.New("HTTP 500")
	err := &ExitError{Code: 1, Err: inner}
	assert.Equal(t, "HTTP 500", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())
}

func TestListQueryFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir("sub", 0o750))
	for _, name := range []string{"a.sql", "B.SQL", "notes.txt", ".hidden.sql", filepath.Join("sub", "c.sql")} {
		require.NoError(t, os.WriteFile(name, []byte("SELECT 1"), 0o600))
	}

	assert.Equal(t, []string{"B.SQL", "a.sql", "sub" + string(filepath.Separator)}, listQueryFiles(".load "))
	assert.Equal(t, []string{filepath.Join("sub", "c.sql")}, listQueryFiles(".load sub/c"))
	assert.Nil(t, listQueryFiles(".load missing/x"))
}

func TestCompleter(t *testing.T) {
	c := newCompleter()

	complete := func(line string) []string {
		candidates, _ := c.Do([]rune(line), len(line))
		var out []string
		for _, cand := range candidates {
			out = append(out, line+string(cand))
		}
		return out
	}

	assert.Contains(t, complete(".li"), ".limit ")
	assert.Contains(t, complete("SEL"), "SELECT ")
	assert.Contains(t, complete("sel"), "select ")
}

func TestExternalEditor_Resolution(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	assert.Equal(t, []string{"vi"}, NewExternalEditor("").Command())

	t.Setenv("EDITOR", "nano -w")
	assert.Equal(t, []string{"nano", "-w"}, NewExternalEditor("").Command())

	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, []string{"code", "--wait"}, NewExternalEditor("").Command())

	assert.Equal(t, []string{"hx"}, NewExternalEditor("hx").Command())
}

func TestExternalEditor_Edit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("editor script requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor")
	// Appends a WHERE clause to whatever the file holds.
	content := "#!/bin/sh\nprintf 'WHERE id = 1\\n' >> \"$1\"\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o700)) //nolint:gosec // test script must be executable

	ed := NewExternalEditor(script)
	ed.stdin = strings.NewReader("")
	ed.stdout = io.Discard
	ed.stderr = io.Discard

	got, err := ed.Edit(context.Background(), "SELECT id FROM customer")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM customer\nWHERE id = 1\n", got)
}

func TestExternalEditor_EditFailure(t *testing.T) {
	ed := NewExternalEditor(filepath.Join(t.TempDir(), "no-such-editor"))
	ed.stdout = io.Discard
	ed.stderr = io.Discard

	_, err := ed.Edit(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-editor")
}
