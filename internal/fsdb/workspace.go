// Package fsdb keeps a lazily populated, status-decorated tree of a git
// workspace and rebuilds it when git status or the directory listings
// change.
package fsdb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/thiagokokada/gitfs-go/internal/git/backend"
	"github.com/thiagokokada/gitfs-go/internal/ignore"
	"github.com/thiagokokada/gitfs-go/internal/porcelain"
)

const DefaultTimeout = 10 * time.Second

// Options configures a Workspace or an Index.
type Options struct {
	Backend backend.Backend
	// Timeout bounds every backend call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Getwd reports the directory the workspace follows. Defaults to
	// os.Getwd.
	Getwd func() (string, error)
	// Ignore overrides the ignore rules used for directories without
	// status. Defaults to the workspace .gitignore or the global excludes.
	Ignore IgnoreChecker
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Getwd == nil {
		o.Getwd = os.Getwd
	}
	return o
}

type statusDigest [sha256.Size]byte

func sumStatus(text []byte) statusDigest {
	return sha256.Sum256(text)
}

// Workspace is the status tree of the repository containing the current
// working directory. It is not safe for concurrent use.
type Workspace struct {
	opts Options

	root      *dirNode
	dir       string
	cwd       string
	digest    statusDigest
	ignore    IgnoreChecker
	parseErrs []*porcelain.ParseError
	// resolved is false while the repository root lookup is failing; the
	// tree is then keyed on cwd and must be rebuilt once git answers.
	resolved bool
}

// New builds a Workspace for the current working directory. When git fails
// the tree is still usable, undecorated, and the error is returned with it.
func New(ctx context.Context, opts Options) (*Workspace, error) {
	if opts.Backend == nil {
		return nil, errors.New("fsdb: backend is required")
	}
	w := &Workspace{opts: opts.withDefaults()}
	return w, w.Reset(ctx)
}

// Dir returns the workspace root directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Snapshot returns the snapshot the tree was built from.
func (w *Workspace) Snapshot() *Snapshot {
	return w.root.snapshot
}

// LastParseErrors returns the status lines skipped by the last rebuild.
func (w *Workspace) LastParseErrors() []*porcelain.ParseError {
	return slices.Clone(w.parseErrs)
}

// Reset re-resolves the workspace root and rebuilds the tree from scratch.
func (w *Workspace) Reset(ctx context.Context) error {
	showHidden, hideClean := w.visibility()
	cwd, err := w.opts.Getwd()
	if err != nil {
		w.resolved = false
		w.root = newDirNode(".", NewSnapshot("", nil, nil), showHidden, hideClean)
		return fmt.Errorf("get working directory: %w", err)
	}
	w.cwd = cwd
	w.dir = cwd
	w.digest = statusDigest{}
	w.parseErrs = nil
	w.resolved = false

	tctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	top, err := w.opts.Backend.TopLevel(tctx, cwd)
	cancel()
	if err == nil {
		w.dir = top
		w.resolved = true
	}
	w.setupIgnore()
	if err != nil {
		w.root = newDirNode(".", NewSnapshot(w.dir, nil, w.ignore), showHidden, hideClean)
		return fmt.Errorf("resolve workspace root: %w", err)
	}

	text, digest, err := w.fetch(ctx)
	if err != nil {
		w.root = newDirNode(".", NewSnapshot(w.dir, nil, w.ignore), showHidden, hideClean)
		return err
	}
	w.digest = digest
	w.root = newDirNode(".", w.buildSnapshot(text), showHidden, hideClean)
	slog.Debug("workspace reset", slog.String("dir", w.dir), slog.Int("entries", len(w.root.snapshot.relevant)))
	return nil
}

func (w *Workspace) setupIgnore() {
	if w.opts.Ignore != nil {
		w.ignore = w.opts.Ignore
		return
	}
	w.ignore = ignore.New(w.dir)
}

func (w *Workspace) visibility() (showHidden, hideClean bool) {
	if w.root == nil {
		return false, false
	}
	return w.root.showHidden, w.root.hideClean
}

func (w *Workspace) fetch(ctx context.Context) ([]byte, statusDigest, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()
	text, err := w.opts.Backend.StatusText(ctx, w.dir, backend.StatusWorkspace)
	if err != nil {
		return nil, statusDigest{}, fmt.Errorf("git status: %w", err)
	}
	return text, sumStatus(text), nil
}

func (w *Workspace) buildSnapshot(text []byte) *Snapshot {
	entries, err := porcelain.Parse(bytes.NewReader(text))
	w.parseErrs = porcelain.ParseErrors(err)
	for _, pe := range w.parseErrs {
		slog.Warn("skipping status line", slog.String("path", pe.Path), slog.String("line", pe.Line), slog.String("reason", pe.Reason))
	}
	if err != nil && len(w.parseErrs) == 0 {
		slog.Warn("reading status output", slog.Any("error", err))
	}
	return NewSnapshot(w.dir, entries, w.ignore)
}

// UpdateIfNecessary brings the tree up to date and reports whether it was
// rebuilt. A change of working directory, or a repository root that could
// not be resolved before, resets everything; a change in git status or in
// any populated directory listing rebuilds the tree. When git fails the
// previous tree is kept.
func (w *Workspace) UpdateIfNecessary(ctx context.Context) (bool, error) {
	cwd, err := w.opts.Getwd()
	if err != nil {
		return false, fmt.Errorf("get working directory: %w", err)
	}
	if cwd != w.cwd {
		slog.Debug("working directory changed", slog.String("from", w.cwd), slog.String("to", cwd))
		return true, w.Reset(ctx)
	}
	if !w.resolved {
		slog.Debug("retrying workspace root lookup", slog.String("cwd", cwd))
		err := w.Reset(ctx)
		return err == nil, err
	}
	text, digest, err := w.fetch(ctx)
	if err != nil {
		return false, err
	}
	showHidden, hideClean := w.visibility()
	if digest != w.digest {
		w.digest = digest
		w.root = newDirNode(".", w.buildSnapshot(text), showHidden, hideClean)
		return true, nil
	}
	if !w.root.isCurrent() {
		w.root = newDirNode(".", w.root.snapshot, showHidden, hideClean)
		return true, nil
	}
	return false, nil
}

// DirContents returns the visible subdirectories and files of path, which
// must be relative to the workspace root and start with ".". Unknown paths
// list as empty.
func (w *Workspace) DirContents(path string, showHidden, hideClean bool) (dirs, files []FsObject) {
	comps, ok := relativeComponents(path)
	if !ok {
		slog.Debug("rejecting directory path", slog.String("path", path))
		return nil, nil
	}
	if w.root.showHidden != showHidden || w.root.hideClean != hideClean {
		w.root.setVisibility(showHidden, hideClean)
		w.root.reFilter()
	}
	node := w.root.findDir(comps)
	if node == nil {
		return nil, nil
	}
	return slices.Clone(node.dirs), slices.Clone(node.files)
}

// relativeComponents validates a "./a/b" style path and returns the
// components after the leading ".".
func relativeComponents(path string) ([]string, bool) {
	if filepath.IsAbs(path) {
		return nil, false
	}
	comps := pathComponents(path)
	if len(comps) == 0 || comps[0] != "." {
		return nil, false
	}
	for _, c := range comps[1:] {
		if c == "." || c == ".." {
			return nil, false
		}
	}
	return comps[1:], true
}
