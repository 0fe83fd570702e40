package fsdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitfs-go/internal/git/backend"
)

type fakeBackend struct {
	topLevelFunc   func(dir string) (string, error)
	statusTextFunc func(dir string, variant backend.StatusVariant) ([]byte, error)

	statusCalls int
	lastDir     string
	lastVariant backend.StatusVariant
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) TopLevel(_ context.Context, dir string) (string, error) {
	if f.topLevelFunc != nil {
		return f.topLevelFunc(dir)
	}
	return dir, nil
}

func (f *fakeBackend) StatusText(_ context.Context, dir string, variant backend.StatusVariant) ([]byte, error) {
	f.statusCalls++
	f.lastDir = dir
	f.lastVariant = variant
	if f.statusTextFunc != nil {
		return f.statusTextFunc(dir, variant)
	}
	return nil, errors.New("unexpected StatusText call")
}

func (f *fakeBackend) DiffText(context.Context, string, backend.DiffTarget) (string, error) {
	return "", errors.New("unexpected DiffText call")
}

// statusFrom returns a fake whose status output is whatever *text holds at
// call time.
func statusFrom(text *string) *fakeBackend {
	return &fakeBackend{
		statusTextFunc: func(string, backend.StatusVariant) ([]byte, error) {
			return []byte(*text), nil
		},
	}
}

type fakeIgnore map[string]bool

func (f fakeIgnore) IsIgnored(path string) bool { return f[path] }

func fixedDir(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(rel), 0o644))
	}
}

func names(objs []FsObject) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Name)
	}
	return out
}

func rel(p string) string {
	return "." + string(filepath.Separator) + filepath.FromSlash(p)
}
