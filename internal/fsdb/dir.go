package fsdb

import (
	"cmp"
	"io/fs"
	"maps"
	"os"
	"slices"
)

// dirNode caches the listing of one directory. A node is populated lazily
// the first time it is looked up; children are created unpopulated.
type dirNode struct {
	path       string
	showHidden bool
	hideClean  bool

	dirsUnfiltered  []FsObject
	filesUnfiltered []FsObject
	dirs            []FsObject
	files           []FsObject

	digest    uint64
	populated bool
	children  map[string]*dirNode
	snapshot  *Snapshot
}

func newDirNode(path string, snapshot *Snapshot, showHidden, hideClean bool) *dirNode {
	return &dirNode{
		path:       path,
		showHidden: showHidden,
		hideClean:  hideClean,
		children:   make(map[string]*dirNode),
		snapshot:   snapshot,
	}
}

func entryIsDir(abs string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

// populate reads the directory, decorates the listing from the snapshot and
// adds entries git knows about that are not on disk.
func (n *dirNode) populate() {
	listing := readListing(n.snapshot.abs(n.path))
	n.children = make(map[string]*dirNode)
	dirs := make(map[string]FsObject)
	files := make(map[string]FsObject)
	for _, e := range listing {
		name := e.Name()
		path := joinPath(n.path, name)
		if entryIsDir(n.snapshot.abs(path), e) {
			narrowed := n.snapshot.NarrowedForDir(path)
			dirs[name] = FsObject{
				Name:        name,
				Path:        path,
				IsDir:       true,
				Status:      narrowed.Status(),
				CleanStatus: narrowed.CleanStatus(),
			}
			n.children[name] = newDirNode(path, narrowed, n.showHidden, n.hideClean)
			continue
		}
		files[name] = FsObject{Name: name, Path: path}
	}
	for e := range n.snapshot.Entries() {
		if e.IsDir {
			if _, known := dirs[e.Name]; known {
				continue
			}
			narrowed := n.snapshot.NarrowedForDir(e.Path)
			dirs[e.Name] = FsObject{
				Name:        e.Name,
				Path:        e.Path,
				IsDir:       true,
				Status:      narrowed.Status(),
				CleanStatus: narrowed.CleanStatus(),
			}
			n.children[e.Name] = newDirNode(e.Path, narrowed, n.showHidden, n.hideClean)
			continue
		}
		obj, ok := files[e.Name]
		if !ok {
			obj = FsObject{Name: e.Name, Path: e.Path}
		}
		obj.Status = e.Code
		obj.Related = e.Related
		files[e.Name] = obj
	}
	n.dirsUnfiltered = sortedByName(dirs)
	n.filesUnfiltered = sortedByName(files)
	n.filter()
	n.digest = listingDigest(n.path, listing)
	n.populated = true
}

func sortedByName(m map[string]FsObject) []FsObject {
	return slices.SortedFunc(maps.Values(m), func(a, b FsObject) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

func (n *dirNode) filter() {
	n.dirs = filterVisible(n.dirsUnfiltered, n.showHidden, n.hideClean)
	n.files = filterVisible(n.filesUnfiltered, n.showHidden, n.hideClean)
}

func (n *dirNode) setVisibility(showHidden, hideClean bool) {
	n.showHidden = showHidden
	n.hideClean = hideClean
	for _, child := range n.children {
		child.setVisibility(showHidden, hideClean)
	}
}

// reFilter reapplies the visibility flags to every populated node below n.
func (n *dirNode) reFilter() {
	if !n.populated {
		return
	}
	n.filter()
	for _, child := range n.children {
		child.reFilter()
	}
}

// isCurrent reports whether every populated node still matches the
// directory it was read from. Unpopulated nodes are always current.
func (n *dirNode) isCurrent() bool {
	if !n.populated {
		return true
	}
	if n.digest != listingDigest(n.path, readListing(n.snapshot.abs(n.path))) {
		return false
	}
	for _, child := range n.children {
		if !child.isCurrent() {
			return false
		}
	}
	return true
}

// findDir walks components below n, populating nodes on the way. It returns
// nil when a component does not name a known directory.
func (n *dirNode) findDir(components []string) *dirNode {
	if !n.populated {
		n.populate()
	}
	if len(components) == 0 {
		return n
	}
	child, ok := n.children[components[0]]
	if !ok {
		return nil
	}
	return child.findDir(components[1:])
}
