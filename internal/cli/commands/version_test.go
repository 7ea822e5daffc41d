package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, info BuildInfo) string {
	t.Helper()
	cmd := NewVersionCommand(info)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestVersionCommand_Output(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want []string
	}{
		{
			name: "release build",
			info: BuildInfo{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2026-01-02"},
			want: []string{"suiteql v1.2.3\n", "commit abc1234, built 2026-01-02"},
		},
		{
			name: "local build",
			info: BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
			want: []string{"suiteql vdev\n", "commit unknown, built unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runVersion(t, tt.info)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
		})
	}
}

func TestVersionCommand_Metadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}
