package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/testutil"
)

// --- Test Harness ---

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestParsePlatform(t *testing.T) {
	testCases := []struct {
		spec    string
		want    loader.Source
		wantErr bool
	}{
		{spec: "CppPlatform/libGDCpp.so", want: loader.Source{Library: "CppPlatform/libGDCpp.so", Root: "CppPlatform"}},
		{spec: "lib/p.so=plugins/P", want: loader.Source{Library: "lib/p.so", Root: "plugins/P"}},
		{spec: "p.so=", want: loader.Source{Library: "p.so", Root: ""}},
		{spec: "=root", wantErr: true},
		{spec: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			// --- Act ---
			got, err := ParsePlatform(tc.spec)

			// --- Assert ---
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tc.want.Library), filepath.FromSlash(got.Library))
			assert.Equal(t, filepath.FromSlash(tc.want.Root), filepath.FromSlash(got.Root))
		})
	}
}

func TestParseDefaults_FromEnvironment(t *testing.T) {
	// --- Arrange ---
	t.Setenv("GDCORE_LOG_LEVEL", "debug")
	t.Setenv("GDCORE_SEED", "7")
	t.Setenv("GDCORE_HEALTHCHECK_PORT", "8081")

	// --- Act ---
	d, err := ParseDefaults()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "debug", d.LogLevel)
	assert.Equal(t, "text", d.LogFormat)
	assert.Equal(t, uint64(7), d.Seed)
	assert.Equal(t, 8081, d.HealthcheckPort)
}

func TestParseDefaults_BadValue(t *testing.T) {
	t.Setenv("GDCORE_SEED", "not-a-number")

	_, err := ParseDefaults()

	assert.ErrorContains(t, err, "parse env")
}

func TestExecute_Help(t *testing.T) {
	out, _, err := execute(t, "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "list")
}

func TestExecute_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantMsg: "unknown flag"},
		{name: "missing events path", args: []string{"run"}, wantMsg: "an events path is required"},
		{name: "too many paths", args: []string{"run", "a", "b"}, wantMsg: "at most one events path"},
		{name: "bad log level", args: []string{"list", "--log-level", "loud"}, wantMsg: "invalid log level"},
		{name: "bad platform", args: []string{"list", "--platform", "=x"}, wantMsg: "invalid --platform"},
		{name: "negative ticks", args: []string{"run", ".", "--ticks=-1"}, wantMsg: "ticks cannot be negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			_, _, err := execute(t, tc.args...)

			// --- Assert ---
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_FlagsOverrideEnvironment(t *testing.T) {
	// --- Arrange ---
	t.Setenv("GDCORE_LOG_FORMAT", "xml")

	// --- Act ---
	_, _, errFromEnv := execute(t, "list")
	_, _, errWithFlag := execute(t, "list", "--log-format", "json")

	// --- Assert ---
	requireExitCode(t, errFromEnv, 2)
	assert.NoError(t, errWithFlag)
}

func TestExecute_List(t *testing.T) {
	// --- Act ---
	out, logs, err := execute(t, "list", "--base-dir", t.TempDir())

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out, "GDCpp")
	assert.Contains(t, out, "GDJS")
	assert.Contains(t, out, "ShowLayer")
	assert.NotContains(t, out, "Extensions loading done.", "logs go to the error output")
	assert.Contains(t, logs, "Extensions loading done.")
}

func TestExecute_RunProject(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": `
scene "Main" {
  layer "HUD" { visible = false }
}

event {
  condition "LayerVisible" {
    params   = ["HUD"]
    inverted = true
  }
  action "DebugLog" { params = ["HUD was hidden"] }
  action "ShowLayer" { params = ["HUD"] }
}
`})

	// --- Act ---
	out, _, err := execute(t, "run", "-e", filepath.Join(dir, "main.hcl"), "--ticks", "2", "--seed", "3")

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out, "HUD was hidden")
	assert.Contains(t, out, "Scene run finished.")
}

func TestExecute_RunBrokenProject(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte("event {"), 0o644))

	// --- Act ---
	_, _, err := execute(t, "run", path)

	// --- Assert ---
	require.Error(t, err)
	var exitErr *ExitError
	assert.NotErrorAs(t, err, &exitErr, "a broken project is not a usage error")
	assert.Contains(t, err.Error(), "failed to parse")
}
