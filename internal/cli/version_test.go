package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v, c, d string) {
	t.Helper()
	ov, oc, od := version, commit, date
	SetVersionInfo(v, c, d)
	t.Cleanup(func() { SetVersionInfo(ov, oc, od) })
}

func TestWriteVersion(t *testing.T) {
	withMachineMode(t, false)
	withVersion(t, "1.2.3", "abc1234", "2026-10-01T12:00:00Z")

	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "storelens v1.2.3\n")
	assert.Contains(t, out, "commit: abc1234\n")
	assert.Contains(t, out, "built: 2026-10-01T12:00:00Z\n")
	assert.Contains(t, out, "go: "+runtime.Version())
	assert.Contains(t, out, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestWriteVersion_Short(t *testing.T) {
	withMachineMode(t, false)
	withVersion(t, "1.2.3", "abc1234", "today")

	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, true))
	assert.Equal(t, "1.2.3\n", buf.String())
}

func TestWriteVersion_JSON(t *testing.T) {
	withMachineMode(t, true)
	withVersion(t, "v0.4.0", "deadbee", "today")

	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, true))

	var env struct {
		Success bool        `json:"success"`
		Data    VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "v0.4.0", env.Data.Version)
	assert.Equal(t, "deadbee", env.Data.Commit)
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"0.1.0-rc1", "v0.1.0-rc1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in), tt.in)
	}
}

func TestVersionCommand_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.Equal(t, "version", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("short"))
}
