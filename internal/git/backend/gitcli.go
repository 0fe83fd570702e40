package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrSpawn marks a git process that could not be started at all.
var ErrSpawn = errors.New("git could not be started")

// CommandError describes a failed git invocation. ExitCode is -1 when the
// process never ran or was killed by the context.
type CommandError struct {
	Context  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Context, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type gitCLI struct {
	binary string
}

// OpenCLI returns a backend that runs the git executable found in PATH.
func OpenCLI() (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	return &gitCLI{binary: "git"}, nil
}

func (g *gitCLI) Name() string {
	return KindGitCLI
}

func (g *gitCLI) runGitCommand(ctx context.Context, dir string, args []string, allowExit1 bool, op string) ([]byte, error) {
	if dir == "" {
		return nil, fmt.Errorf("%s: working directory not set", op)
	}
	cmdArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, g.binary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("running git", slog.String("dir", dir), slog.String("args", strings.Join(args, " ")))
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	cerr := &CommandError{Context: op, ExitCode: -1, Stderr: strings.TrimSpace(stderr.String())}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		cerr.Err = ctx.Err()
	case errors.As(err, &exitErr):
		if allowExit1 && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// git diff --exit-code style success
			return stdout.Bytes(), nil
		}
		cerr.ExitCode = exitErr.ExitCode()
		cerr.Err = err
	default:
		cerr.Err = fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return nil, cerr
}

func (g *gitCLI) TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := g.runGitCommand(ctx, dir, []string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", fmt.Errorf("git rev-parse returned empty root for %s", dir)
	}
	return root, nil
}

func statusArgs(variant StatusVariant) []string {
	if variant == StatusIndex {
		return []string{"status", "--porcelain", "--untracked-files=no", "--ignore-submodules=none"}
	}
	return []string{"status", "--porcelain", "--ignored", "--untracked=all", "--ignore-submodules=none"}
}

func (g *gitCLI) StatusText(ctx context.Context, dir string, variant StatusVariant) ([]byte, error) {
	return g.runGitCommand(ctx, dir, statusArgs(variant), false, "git status")
}

func diffArgs(target DiffTarget) []string {
	args := []string{"diff", "--no-color", "--no-ext-diff", "-M"}
	switch target {
	case DiffStaged:
		args = append(args, "--cached")
	case DiffHead:
		args = append(args, "HEAD")
	}
	return args
}

func (g *gitCLI) DiffText(ctx context.Context, dir string, target DiffTarget) (string, error) {
	out, err := g.runGitCommand(ctx, dir, diffArgs(target), true, "git diff")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
