package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/thiagokokada/gitfs-go/internal/diff"
	"github.com/thiagokokada/gitfs-go/internal/fsdb"
	"github.com/thiagokokada/gitfs-go/internal/git/backend"
	"github.com/thiagokokada/gitfs-go/internal/render"
	"github.com/thiagokokada/gitfs-go/internal/watch"
)

// view is one thing the command can draw and keep up to date.
type view interface {
	Update(ctx context.Context) (bool, error)
	Render(p *render.Printer) error
	Dir() string
}

type treeSource interface {
	render.Lister
	UpdateIfNecessary(ctx context.Context) (bool, error)
	Dir() string
}

type treeView struct {
	src        treeSource
	start      string
	showHidden bool
	hideClean  bool
	depth      int
}

func (v *treeView) Update(ctx context.Context) (bool, error) {
	return v.src.UpdateIfNecessary(ctx)
}

func (v *treeView) Render(p *render.Printer) error {
	if _, err := fmt.Fprintln(p.W, v.start); err != nil {
		return err
	}
	return p.Tree(v.src, v.start, v.showHidden, v.hideClean, v.depth)
}

func (v *treeView) Dir() string {
	return v.src.Dir()
}

// indexLister adapts fsdb.Index, which always shows hidden entries.
type indexLister struct {
	*fsdb.Index
}

func (l indexLister) DirContents(path string, _, hideClean bool) (dirs, files []fsdb.FsObject) {
	return l.Index.DirContents(path, hideClean)
}

type diffView struct {
	tracker *diff.Tracker
	dir     string
}

func (v *diffView) Update(ctx context.Context) (bool, error) {
	return v.tracker.Update(ctx)
}

// Render writes the diff followed by a per-file summary.
func (v *diffView) Render(p *render.Printer) error {
	if err := p.Diff(v.tracker.Text()); err != nil {
		return err
	}
	return p.DiffStat(v.tracker.Target().String(), v.tracker.Sections())
}

func (v *diffView) Dir() string {
	return v.dir
}

func newView(ctx context.Context, b backend.Backend, dir string, opts *options) (view, error) {
	timeout := opts.cfg.GitTimeout.Duration
	if opts.diff != "" {
		target, err := backend.ParseDiffTarget(opts.diff)
		if err != nil {
			return nil, err
		}
		tctx, cancel := context.WithTimeout(ctx, timeout)
		top, err := b.TopLevel(tctx, dir)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("resolve workspace root: %w", err)
		}
		v := &diffView{tracker: diff.NewTracker(b, top, target, timeout), dir: top}
		if err := v.tracker.Repopulate(ctx); err != nil {
			return nil, err
		}
		return v, nil
	}

	fsOpts := fsdb.Options{
		Backend: b,
		Timeout: timeout,
		Getwd:   func() (string, error) { return dir, nil },
	}
	var src treeSource
	var err error
	if opts.index {
		var x *fsdb.Index
		x, err = fsdb.NewIndex(ctx, fsOpts)
		if x != nil {
			src = indexLister{x}
		}
	} else {
		var w *fsdb.Workspace
		w, err = fsdb.New(ctx, fsOpts)
		if w != nil {
			src = w
		}
	}
	if src == nil {
		return nil, err
	}
	if err != nil {
		// the tree still lists files, without status
		slog.Warn("git status unavailable", slog.Any("error", err))
	}
	return &treeView{
		src:        src,
		start:      startPath(src.Dir(), dir),
		showHidden: opts.cfg.ShowHidden,
		hideClean:  opts.cfg.HideClean,
		depth:      opts.depth,
	}, nil
}

// startPath returns dir as a "./a/b" path below root, or "." when dir is
// not inside root.
func startPath(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) || hasParentPrefix(rel) {
		return "."
	}
	return "." + string(filepath.Separator) + rel
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}

const clearScreen = "\x1b[H\x1b[2J"

// watchLoop redraws v whenever it changes. Changes are detected from
// filesystem events when a watcher can be set up and on every poll tick,
// since the watcher does not see nested directories. All updates run on
// this goroutine.
func watchLoop(ctx context.Context, v view, p *render.Printer, interval time.Duration) error {
	draw := func() error {
		if p.Color {
			if _, err := fmt.Fprint(p.W, clearScreen); err != nil {
				return err
			}
		}
		return v.Render(p)
	}
	if err := draw(); err != nil {
		return err
	}

	var events <-chan struct{}
	w, err := watch.New(v.Dir(), watch.DefaultDelay)
	if err != nil {
		slog.Warn("filesystem watch unavailable, polling only", slog.Any("error", err))
	} else {
		defer func() {
			if err := w.Close(); err != nil {
				slog.Error("watcher close", slog.Any("error", err))
			}
		}()
		events = w.Changes()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
		case <-ticker.C:
		}
		changed, err := v.Update(ctx)
		if err != nil {
			slog.Warn("update failed", slog.Any("error", err))
		}
		if !changed {
			continue
		}
		slog.Debug("redrawing", slog.String("dir", v.Dir()))
		if err := draw(); err != nil {
			return err
		}
	}
}
