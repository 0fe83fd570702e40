package backend

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// native implements Backend on top of go-git. It renders the same porcelain
// v1 text the CLI produces so both feed one parser.
type native struct{}

func OpenNative() Backend {
	return native{}
}

func (native) Name() string {
	return KindNative
}

func openRepo(dir string) (*gitlib.Repository, *gitlib.Worktree, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("working directory not set")
	}
	repo, err := gitlib.PlainOpenWithOptions(dir, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("open worktree: %w", err)
	}
	return repo, wt, nil
}

func (native) TopLevel(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, wt, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

func (native) StatusText(ctx context.Context, dir string, variant StatusVariant) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, wt, err := openRepo(dir)
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	renames, err := stagedRenames(repo, st)
	if err != nil {
		return nil, err
	}
	renamed := make(map[string]bool, len(renames))
	for _, from := range renames {
		renamed[from] = true
	}
	var lines []string
	for path, fst := range st {
		if renamed[path] {
			continue
		}
		x, y := byte(fst.Staging), byte(fst.Worktree)
		if from, ok := renames[path]; ok {
			lines = append(lines, string([]byte{'R', y, ' '})+quotePath(from)+" -> "+quotePath(path))
			continue
		}
		if x == byte(gitlib.Unmodified) && y == byte(gitlib.Unmodified) {
			continue
		}
		if fst.Staging == gitlib.Untracked || fst.Worktree == gitlib.Untracked {
			if variant == StatusIndex {
				continue
			}
			x, y = '?', '?'
		}
		if (x == 'R' || x == 'C') && fst.Extra != "" {
			lines = append(lines, string([]byte{x, y, ' '})+quotePath(fst.Extra)+" -> "+quotePath(path))
			continue
		}
		lines = append(lines, string([]byte{x, y, ' '})+quotePath(path))
	}
	if variant == StatusWorkspace {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ignored, err := ignoredPaths(wt)
		if err != nil {
			return nil, err
		}
		for _, p := range ignored {
			lines = append(lines, "!! "+quotePath(p))
		}
	}
	slices.Sort(lines)
	if len(lines) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// stagedRenames pairs staged deletions with staged additions whose index
// blob is identical to the deleted HEAD blob, as git's exact rename
// detection does. It maps each new path to the path it came from.
func stagedRenames(repo *gitlib.Repository, st gitlib.Status) (map[string]string, error) {
	var deleted, added []string
	for path, fst := range st {
		switch fst.Staging {
		case gitlib.Deleted:
			deleted = append(deleted, path)
		case gitlib.Added:
			added = append(added, path)
		}
	}
	if len(deleted) == 0 || len(added) == 0 {
		return nil, nil
	}
	head, err := headTree(repo)
	if err != nil || head == nil {
		return nil, err
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	slices.Sort(deleted)
	slices.Sort(added)
	byHash := make(map[plumbing.Hash][]string)
	for _, path := range deleted {
		f, err := fileFromTree(head, path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if f != nil {
			byHash[f.Hash] = append(byHash[f.Hash], path)
		}
	}
	renames := make(map[string]string)
	for _, path := range added {
		entry, err := idx.Entry(path)
		if err != nil {
			continue
		}
		candidates := byHash[entry.Hash]
		if len(candidates) == 0 {
			continue
		}
		renames[path] = candidates[0]
		byHash[entry.Hash] = candidates[1:]
	}
	return renames, nil
}

// ignoredPaths walks the work tree the way "git status --ignored
// --untracked-files=all" does: every file inside an ignored directory is
// listed on its own, and empty ignored directories are not listed.
func ignoredPaths(wt *gitlib.Worktree) ([]string, error) {
	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("read ignore patterns: %w", err)
	}
	patterns = append(patterns, wt.Excludes...)
	if len(patterns) == 0 {
		return nil, nil
	}
	matcher := gitignore.NewMatcher(patterns)
	root := wt.Filesystem.Root()
	var out []string
	// ignoredDir is the ignored directory being walked, with a trailing slash
	ignoredDir := ""
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ignoredDir != "" && !strings.HasPrefix(rel, ignoredDir) {
			ignoredDir = ""
		}
		if ignoredDir == "" && !matcher.Match(strings.Split(rel, "/"), d.IsDir()) {
			return nil
		}
		if d.IsDir() {
			if ignoredDir == "" {
				ignoredDir = rel + "/"
			}
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

// quotePath mimics git's C-style quoting for paths that need it.
func quotePath(p string) string {
	if strings.ContainsAny(p, " \t\n\"\\") {
		return strconv.Quote(p)
	}
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return strconv.Quote(p)
		}
	}
	return p
}
