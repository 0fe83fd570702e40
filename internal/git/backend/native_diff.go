package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

type fileChange struct {
	path string
	from *object.File
	to   *object.File
}

// DiffText renders a unified diff for target without the git executable.
// Output follows "git diff" closely enough for display and change
// detection; it is not byte-for-byte identical.
func (native) DiffText(ctx context.Context, dir string, target DiffTarget) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	repo, wt, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	st, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("worktree status: %w", err)
	}
	var head *object.Tree
	if target != DiffWorktree {
		head, err = headTree(repo)
		if err != nil {
			return "", err
		}
	}
	var idx *gitindex.Index
	if target != DiffHead {
		idx, err = repo.Storer.Index()
		if err != nil {
			return "", fmt.Errorf("read index: %w", err)
		}
	}
	var paths []string
	for path, fst := range st {
		if includeInDiff(fst, target) {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)

	var changes []fileChange
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var from, to *object.File
		switch target {
		case DiffStaged:
			from, err = fileFromTree(head, path)
			if err == nil {
				to, err = fileFromIndex(idx, repo, path)
			}
		case DiffHead:
			from, err = fileFromTree(head, path)
			if err == nil {
				to, err = fileFromDisk(wt.Filesystem, path)
			}
		default:
			from, err = fileFromIndex(idx, repo, path)
			if err == nil {
				to, err = fileFromDisk(wt.Filesystem, path)
			}
		}
		if err != nil {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
		if from == nil && to == nil {
			continue
		}
		changes = append(changes, fileChange{path: path, from: from, to: to})
	}
	return renderUnified(changes)
}

func includeInDiff(fst *gitlib.FileStatus, target DiffTarget) bool {
	switch target {
	case DiffStaged:
		return fst.Staging != gitlib.Unmodified && fst.Staging != gitlib.Untracked
	case DiffHead:
		if fst.Staging == gitlib.Untracked || fst.Worktree == gitlib.Untracked {
			return false
		}
		return fst.Staging != gitlib.Unmodified || fst.Worktree != gitlib.Unmodified
	default:
		return fst.Worktree != gitlib.Unmodified && fst.Worktree != gitlib.Untracked
	}
}

func headTree(repo *gitlib.Repository) (*object.Tree, error) {
	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// unborn branch
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("load HEAD commit: %w", err)
	}
	return commit.Tree()
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	return f, err
}

func fileFromIndex(idx *gitindex.Index, repo *gitlib.Repository, path string) (*object.File, error) {
	if idx == nil {
		return nil, nil
	}
	entry, err := idx.Entry(path)
	if errors.Is(err, gitindex.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	blob, err := object.GetBlob(repo.Storer, entry.Hash)
	if err != nil {
		return nil, err
	}
	return object.NewFile(entry.Name, entry.Mode, blob), nil
}

// fileFromDisk loads path from the worktree filesystem as a blob. A missing
// file yields nil.
func fileFromDisk(fs billy.Filesystem, path string) (*object.File, error) {
	info, err := fs.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	mem := &plumbing.MemoryObject{}
	mem.SetType(plumbing.BlobObject)
	if _, err := mem.Write(data); err != nil {
		return nil, err
	}
	blob, err := object.DecodeBlob(mem)
	if err != nil {
		return nil, err
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		mode = filemode.Regular
	}
	return object.NewFile(path, mode, blob), nil
}

func renderUnified(changes []fileChange) (string, error) {
	var b strings.Builder
	for _, ch := range changes {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", ch.path, ch.path)
		binary, err := isBinary(ch)
		if err != nil {
			return "", err
		}
		if binary {
			fmt.Fprintf(&b, "Binary files a/%s and b/%s differ\n", ch.path, ch.path)
			continue
		}
		fromLines, err := fileLines(ch.from)
		if err != nil {
			return "", err
		}
		toLines, err := fileLines(ch.to)
		if err != nil {
			return "", err
		}
		fromName, toName := "a/"+ch.path, "b/"+ch.path
		if ch.from == nil {
			fromName = "/dev/null"
		}
		if ch.to == nil {
			toName = "/dev/null"
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        fromLines,
			B:        toLines,
			FromFile: fromName,
			ToFile:   toName,
			Context:  3,
		})
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func isBinary(ch fileChange) (bool, error) {
	for _, f := range []*object.File{ch.from, ch.to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil || bin {
			return bin, err
		}
	}
	return false, nil
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return []string{}, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return difflib.SplitLines(content), nil
}
