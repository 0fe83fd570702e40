package backend

import (
	"context"
	"fmt"
	"strings"
)

// StatusVariant selects which flavour of "git status --porcelain" to run.
type StatusVariant uint8

const (
	// StatusWorkspace reports every path including untracked and ignored ones.
	StatusWorkspace StatusVariant = iota
	// StatusIndex leaves untracked files out; it feeds the index tree.
	StatusIndex
)

func (v StatusVariant) String() string {
	if v == StatusIndex {
		return "index"
	}
	return "workspace"
}

// DiffTarget selects what a diff compares.
type DiffTarget uint8

const (
	DiffWorktree DiffTarget = iota // index against working tree
	DiffStaged                     // HEAD against index
	DiffHead                       // HEAD against working tree
)

func (t DiffTarget) String() string {
	switch t {
	case DiffStaged:
		return "staged"
	case DiffHead:
		return "head"
	default:
		return "worktree"
	}
}

// ParseDiffTarget maps "worktree", "staged" or "head" to a DiffTarget.
func ParseDiffTarget(raw string) (DiffTarget, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", DiffWorktree.String():
		return DiffWorktree, nil
	case DiffStaged.String(), "cached":
		return DiffStaged, nil
	case DiffHead.String():
		return DiffHead, nil
	default:
		return DiffWorktree, fmt.Errorf("unknown diff target %q (want worktree, staged or head)", raw)
	}
}

// Backend abstracts access to repository status data.
//
// The default implementation shells out to the git executable, but the interface
// allows alternative implementations (e.g. pure-Go) without changing callers.
// Every call names the directory it works in so callers can follow a change
// of working directory without reopening anything.
type Backend interface {
	Name() string
	TopLevel(ctx context.Context, dir string) (string, error)
	StatusText(ctx context.Context, dir string, variant StatusVariant) ([]byte, error)
	DiffText(ctx context.Context, dir string, target DiffTarget) (string, error)
}

const (
	KindGitCLI = "gitcli"
	KindNative = "native"
)

// Open returns the backend registered under kind.
func Open(kind string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindGitCLI:
		return OpenCLI()
	case KindNative:
		return OpenNative(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", kind, KindGitCLI, KindNative)
	}
}
