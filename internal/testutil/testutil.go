// Package testutil holds helpers shared by tests: a thread-safe log buffer,
// project files on disk and platforms exported through a static opener.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/platform"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// LogOnFailure dumps buf when the test fails, or always when GDCORE_TEST_LOGS
// is "true".
func LogOnFailure(t *testing.T, buf *SafeBuffer) {
	t.Helper()
	t.Cleanup(func() {
		if t.Failed() || os.Getenv("GDCORE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
}

// WriteFiles writes files, keyed by slash-separated relative path, under a
// fresh temporary directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// Touch creates an empty file at path, with its directories.
func Touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// PlatformFactory returns a factory creating a platform named name that
// holds a fresh copy of each extension on every call.
func PlatformFactory(name string, exts ...func() *platform.Extension) platform.CreatePlatformFunc {
	return func() platform.Platform {
		p := platform.New(name)
		for _, ext := range exts {
			p.AddExtension(ext())
		}
		return p
	}
}

// AddPlatform exports a platform library at path into static. destroyed, if
// not nil, records the name of every platform destroyed.
func AddPlatform(static *dynlib.Static, path string, create platform.CreatePlatformFunc, destroyed *[]string) {
	static.Add(path, platform.Exports(create, func(p platform.Platform) {
		if destroyed != nil {
			*destroyed = append(*destroyed, p.Name())
		}
	}))
}
