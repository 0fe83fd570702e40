package fsdb

import (
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/porcelain"
	"github.com/thiagokokada/gitfs-go/internal/status"
)

// IgnoreChecker decides whether a directory without status entries is
// ignored. Paths are relative to the workspace root and start with "./".
type IgnoreChecker interface {
	IsIgnored(path string) bool
}

type fileStatus struct {
	code    status.Code
	related *RelatedFile
}

// snapshotData is the part of a snapshot shared by every narrowed copy.
type snapshotData struct {
	root    string
	ignore  IgnoreChecker
	entries map[string]fileStatus
	keys    []string
}

// Snapshot is one immutable capture of git status output, optionally
// narrowed to the keys below one directory.
type Snapshot struct {
	shared      *snapshotData
	depth       int
	relevant    []string
	status      status.Code
	cleanStatus status.Code
}

// SnapshotEntry is an immediate child of a snapshot's directory.
type SnapshotEntry struct {
	Name    string
	Path    string
	IsDir   bool
	Code    status.Code
	Related *RelatedFile
}

// NewSnapshot builds the root snapshot of the workspace at root. Each rename
// target git did not report itself gets a reverse entry pointing back at the
// original path.
func NewSnapshot(root string, entries []porcelain.Entry, ignore IgnoreChecker) *Snapshot {
	data := make(map[string]fileStatus, len(entries))
	for _, e := range entries {
		data[e.Path] = fileStatus{code: e.Code, related: e.Related}
	}
	for _, e := range entries {
		if e.Related == nil || e.Related.Relation != porcelain.RelationGoesTo {
			continue
		}
		target := porcelain.CurDirPrefix + e.Related.FilePath
		if _, seen := data[target]; seen {
			continue
		}
		data[target] = fileStatus{
			code: e.Code,
			related: &RelatedFile{
				FilePath: strings.TrimPrefix(e.Path, porcelain.CurDirPrefix),
				Relation: porcelain.RelationComesFrom,
			},
		}
	}
	shared := &snapshotData{root: root, ignore: ignore, entries: data}
	shared.keys = make([]string, 0, len(data))
	set := status.NewSet()
	for k, fst := range data {
		shared.keys = append(shared.keys, k)
		set = set.Add(fst.code)
	}
	slices.Sort(shared.keys)
	s := &Snapshot{shared: shared, depth: 1, relevant: shared.keys}
	// the workspace root itself is never ignored
	s.status, s.cleanStatus = status.Rollup(set, nil)
	return s
}

func (s *Snapshot) Status() status.Code      { return s.status }
func (s *Snapshot) CleanStatus() status.Code { return s.cleanStatus }

// Keys returns the paths this snapshot covers in sorted order.
func (s *Snapshot) Keys() []string {
	return slices.Clone(s.relevant)
}

// Lookup returns the code recorded for path.
func (s *Snapshot) Lookup(path string) (status.Code, *RelatedFile, bool) {
	fst, ok := s.shared.entries[path]
	return fst.code, fst.related, ok
}

// NarrowedForDir restricts the snapshot to the keys below dirPath and rolls
// their codes up into the directory's status. The underlying data is
// shared, not copied.
func (s *Snapshot) NarrowedForDir(dirPath string) *Snapshot {
	dir := pathComponents(dirPath)
	var relevant []string
	set := status.NewSet()
	for _, k := range s.shared.keys {
		if hasComponentPrefix(pathComponents(k), dir) {
			relevant = append(relevant, k)
			set = set.Add(s.shared.entries[k].code)
		}
	}
	var ignored func() bool
	if s.shared.ignore != nil {
		ignored = func() bool { return s.shared.ignore.IsIgnored(dirPath) }
	}
	narrowed := &Snapshot{shared: s.shared, depth: len(dir), relevant: relevant}
	narrowed.status, narrowed.cleanStatus = status.Rollup(set, ignored)
	return narrowed
}

// Entries yields the immediate children named by the snapshot, once per
// name. A key naming the snapshot's own directory (a submodule root) is
// skipped.
func (s *Snapshot) Entries() iter.Seq[SnapshotEntry] {
	return func(yield func(SnapshotEntry) bool) {
		seen := make(map[string]struct{})
		for _, k := range s.relevant {
			comps := pathComponents(k)
			if len(comps) <= s.depth {
				continue
			}
			name := comps[s.depth]
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			path := strings.Join(comps[:s.depth+1], string(filepath.Separator))
			fst := s.shared.entries[k]
			isDir := len(comps) > s.depth+1 || strings.HasSuffix(k, string(filepath.Separator)) || s.isDirOnDisk(path)
			if !yield(SnapshotEntry{Name: name, Path: path, IsDir: isDir, Code: fst.code, Related: fst.related}) {
				return
			}
		}
	}
}

func (s *Snapshot) abs(path string) string {
	return filepath.Join(s.shared.root, path)
}

func (s *Snapshot) isDirOnDisk(path string) bool {
	info, err := os.Stat(s.abs(path))
	return err == nil && info.IsDir()
}

func isSeparator(r rune) bool {
	return r == filepath.Separator || r == '/'
}

// pathComponents splits "./a/b" into [".", "a", "b"]. Trailing and repeated
// separators are dropped.
func pathComponents(path string) []string {
	return strings.FieldsFunc(path, isSeparator)
}

func hasComponentPrefix(comps, prefix []string) bool {
	return len(comps) >= len(prefix) && slices.Equal(comps[:len(prefix)], prefix)
}

func joinPath(dir, name string) string {
	return dir + string(filepath.Separator) + name
}
