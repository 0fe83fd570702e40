package fsdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/git/backend"
	"github.com/thiagokokada/gitfs-go/internal/porcelain"
	"github.com/thiagokokada/gitfs-go/internal/status"
)

type indexNode struct {
	path      string
	hideClean bool
	codes     status.Set

	dirsUnfiltered  []FsObject
	filesUnfiltered []FsObject
	dirs            []FsObject
	files           []FsObject
	children        map[string]*indexNode
}

func newIndexNode(path string, code status.Code, hideClean bool) *indexNode {
	return &indexNode{
		path:      path,
		hideClean: hideClean,
		codes:     status.NewSet(code),
		children:  make(map[string]*indexNode),
	}
}

// addFile records a staged path below n. isDir resolves single-component
// paths that are directories on disk, such as submodules.
func (n *indexNode) addFile(comps []string, code status.Code, related *RelatedFile, isDir func(string) bool) {
	n.codes = n.codes.Add(code)
	name := comps[0]
	path := joinPath(n.path, name)
	if len(comps) > 1 || isDir(path) {
		child, ok := n.children[name]
		if !ok {
			child = newIndexNode(path, code, n.hideClean)
			n.children[name] = child
		}
		if len(comps) > 1 {
			child.addFile(comps[1:], code, related, isDir)
		}
		return
	}
	n.filesUnfiltered = append(n.filesUnfiltered, FsObject{Name: name, Path: path, Status: code, Related: related})
}

// finalize rolls directory statuses up from the codes gathered below each
// child. There is no ignore fallback: ignored paths never reach the index.
func (n *indexNode) finalize() {
	slices.SortFunc(n.filesUnfiltered, func(a, b FsObject) int { return strings.Compare(a.Name, b.Name) })
	n.dirsUnfiltered = n.dirsUnfiltered[:0]
	for name, child := range n.children {
		child.finalize()
		dirStatus, cleanStatus := status.Rollup(child.codes, nil)
		n.dirsUnfiltered = append(n.dirsUnfiltered, FsObject{
			Name:        name,
			Path:        child.path,
			IsDir:       true,
			Status:      dirStatus,
			CleanStatus: cleanStatus,
		})
	}
	slices.SortFunc(n.dirsUnfiltered, func(a, b FsObject) int { return strings.Compare(a.Name, b.Name) })
	n.filter()
}

func (n *indexNode) filter() {
	n.dirs = filterVisible(n.dirsUnfiltered, true, n.hideClean)
	n.files = filterVisible(n.filesUnfiltered, true, n.hideClean)
}

func (n *indexNode) setHideClean(hideClean bool) {
	n.hideClean = hideClean
	n.filter()
	for _, child := range n.children {
		child.setHideClean(hideClean)
	}
}

func (n *indexNode) findDir(comps []string) *indexNode {
	if len(comps) == 0 {
		return n
	}
	child, ok := n.children[comps[0]]
	if !ok {
		return nil
	}
	return child.findDir(comps[1:])
}

// Index is the tree of paths staged in the index. Hidden entries are always
// shown; only hide-clean filtering applies. It is not safe for concurrent
// use.
type Index struct {
	opts      Options
	dir       string
	root      *indexNode
	digest    statusDigest
	parseErrs []*porcelain.ParseError
	resolved  bool
}

func NewIndex(ctx context.Context, opts Options) (*Index, error) {
	if opts.Backend == nil {
		return nil, errors.New("fsdb: backend is required")
	}
	x := &Index{opts: opts.withDefaults(), root: newIndexNode(".", status.NoStatus, false)}
	return x, x.Reset(ctx)
}

func (x *Index) Dir() string {
	return x.dir
}

func (x *Index) LastParseErrors() []*porcelain.ParseError {
	return slices.Clone(x.parseErrs)
}

// Reset re-resolves the repository root and repopulates the tree.
func (x *Index) Reset(ctx context.Context) error {
	x.resolved = false
	cwd, err := x.opts.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	x.dir = cwd
	tctx, cancel := context.WithTimeout(ctx, x.opts.Timeout)
	top, err := x.opts.Backend.TopLevel(tctx, cwd)
	cancel()
	if err != nil {
		x.populate(nil, statusDigest{})
		return fmt.Errorf("resolve workspace root: %w", err)
	}
	x.dir = top
	x.resolved = true
	text, digest, err := x.fetch(ctx)
	if err != nil {
		x.populate(nil, statusDigest{})
		return err
	}
	x.populate(text, digest)
	return nil
}

// UpdateIfNecessary repopulates the tree when the index status output has
// changed and reports whether it did. Until the repository root has been
// resolved every call starts over with Reset.
func (x *Index) UpdateIfNecessary(ctx context.Context) (bool, error) {
	if !x.resolved {
		err := x.Reset(ctx)
		return err == nil, err
	}
	text, digest, err := x.fetch(ctx)
	if err != nil {
		return false, err
	}
	if digest == x.digest {
		return false, nil
	}
	x.populate(text, digest)
	return true, nil
}

func (x *Index) fetch(ctx context.Context) ([]byte, statusDigest, error) {
	ctx, cancel := context.WithTimeout(ctx, x.opts.Timeout)
	defer cancel()
	text, err := x.opts.Backend.StatusText(ctx, x.dir, backend.StatusIndex)
	if err != nil {
		return nil, statusDigest{}, fmt.Errorf("git status: %w", err)
	}
	return text, sumStatus(text), nil
}

func (x *Index) isDir(path string) bool {
	info, err := os.Stat(filepath.Join(x.dir, path))
	return err == nil && info.IsDir()
}

func (x *Index) populate(text []byte, digest statusDigest) {
	root := newIndexNode(".", status.NoStatus, x.root.hideClean)
	entries, err := porcelain.Parse(bytes.NewReader(text))
	x.parseErrs = porcelain.ParseErrors(err)
	for _, pe := range x.parseErrs {
		slog.Warn("skipping index status line", slog.String("path", pe.Path), slog.String("line", pe.Line), slog.String("reason", pe.Reason))
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Code.String(), " ") {
			// not staged
			continue
		}
		comps := pathComponents(e.Path)
		if len(comps) < 2 {
			continue
		}
		root.addFile(comps[1:], e.Code, e.Related, x.isDir)
	}
	root.finalize()
	x.root = root
	x.digest = digest
	slog.Debug("index rebuilt", slog.String("dir", x.dir), slog.Any("codes", root.codes))
}

// DirContents returns the staged subdirectories and files of path.
func (x *Index) DirContents(path string, hideClean bool) (dirs, files []FsObject) {
	comps, ok := relativeComponents(path)
	if !ok {
		return nil, nil
	}
	if x.root.hideClean != hideClean {
		x.root.setHideClean(hideClean)
	}
	node := x.root.findDir(comps)
	if node == nil {
		return nil, nil
	}
	return slices.Clone(node.dirs), slices.Clone(node.files)
}
