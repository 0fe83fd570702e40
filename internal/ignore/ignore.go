// Package ignore answers whether a workspace directory is excluded by git
// ignore rules. It backs the roll-up fallback for directories that carry no
// status of their own.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
	sabhiram "github.com/sabhiram/go-gitignore"
)

// Checker matches paths against the workspace .gitignore, or against the
// user's global excludes when the workspace has none. The compiled local
// rules are cached until the file's mod-time or size changes.
type Checker struct {
	root string

	mu        sync.Mutex
	local     *sabhiram.GitIgnore
	localMod  time.Time
	localSize int64

	globalOnce  sync.Once
	global      gitignore.Matcher
	loadGlobals func() ([]gitignore.Pattern, error)
}

func New(root string) *Checker {
	return &Checker{root: root, loadGlobals: loadGlobalPatterns}
}

// IsIgnored reports whether the directory at path is ignored. path is
// relative to the workspace root and may carry a leading "./".
func (c *Checker) IsIgnored(path string) bool {
	rel := normalize(path)
	if rel == "" {
		return false
	}
	local, ok := c.localRules()
	if ok {
		return local.MatchesPath(rel + "/")
	}
	c.globalOnce.Do(func() {
		patterns, err := c.loadGlobals()
		if err != nil {
			slog.Debug("load global ignore rules", slog.Any("error", err))
		}
		c.global = gitignore.NewMatcher(patterns)
	})
	return c.global.Match(strings.Split(rel, "/"), true)
}

func normalize(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// localRules returns the compiled workspace .gitignore. ok is false when the
// file does not exist.
func (c *Checker) localRules() (*sabhiram.GitIgnore, bool) {
	path := filepath.Join(c.root, ".gitignore")
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local != nil && info.ModTime().Equal(c.localMod) && info.Size() == c.localSize {
		return c.local, true
	}
	compiled, err := sabhiram.CompileIgnoreFile(path)
	if err != nil {
		slog.Debug("compile .gitignore", slog.String("path", path), slog.Any("error", err))
		return nil, false
	}
	c.local, c.localMod, c.localSize = compiled, info.ModTime(), info.Size()
	return compiled, true
}

// loadGlobalPatterns reads core.excludesfile from the user's git config and
// falls back to $XDG_CONFIG_HOME/git/ignore the way git does.
func loadGlobalPatterns() ([]gitignore.Pattern, error) {
	patterns, err := gitignore.LoadGlobalPatterns(osfs.New("/"))
	if err != nil {
		return nil, fmt.Errorf("global excludes: %w", err)
	}
	if len(patterns) > 0 {
		return patterns, nil
	}
	path, err := xdgIgnorePath()
	if err != nil {
		return nil, err
	}
	return readPatternFile(path)
}

func xdgIgnorePath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "git", "ignore"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "git", "ignore"), nil
}

func readPatternFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, scanner.Err()
}
