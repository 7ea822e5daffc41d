package testutil

import (
	"os"
	"strings"
	"testing"
)

// ClearEnv unsets every environment variable starting with one of prefixes
// for the duration of the test.
func ClearEnv(t *testing.T, prefixes ...string) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				t.Setenv(name, "")
				_ = os.Unsetenv(name)
				break
			}
		}
	}
}

// Isolate runs the test in an empty working directory with its own
// XDG_CONFIG_HOME and HOME, so no user configuration is picked up.
// It returns the working directory.
func Isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	ClearEnv(t, "NETSUITE_", "SUITEQL_")
	return dir
}
