// Package diff follows the output of "git diff" for a workspace and reports
// when it changes.
package diff

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/thiagokokada/gitfs-go/internal/git/backend"
)

const defaultTimeout = 10 * time.Second

// Tracker holds the latest diff text for one target. It is not safe for
// concurrent use.
type Tracker struct {
	backend backend.Backend
	dir     string
	target  backend.DiffTarget
	timeout time.Duration

	digest   [sha256.Size]byte
	fetched  bool
	text     string
	sections []Section
}

func NewTracker(b backend.Backend, dir string, target backend.DiffTarget, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Tracker{backend: b, dir: dir, target: target, timeout: timeout}
}

func (t *Tracker) Target() backend.DiffTarget {
	return t.target
}

func (t *Tracker) Text() string {
	return t.text
}

func (t *Tracker) Sections() []Section {
	return slices.Clone(t.sections)
}

// Update fetches the diff and reports whether it differs from the last one.
// On error the previous diff is kept.
func (t *Tracker) Update(ctx context.Context) (bool, error) {
	text, err := t.fetch(ctx)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256([]byte(text))
	if t.fetched && digest == t.digest {
		return false, nil
	}
	t.store(text, digest)
	return true, nil
}

// Repopulate replaces the held diff unconditionally.
func (t *Tracker) Repopulate(ctx context.Context) error {
	text, err := t.fetch(ctx)
	if err != nil {
		return err
	}
	t.store(text, sha256.Sum256([]byte(text)))
	return nil
}

func (t *Tracker) fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	text, err := t.backend.DiffText(ctx, t.dir, t.target)
	if err != nil {
		return "", fmt.Errorf("git diff (%s): %w", t.target, err)
	}
	return text, nil
}

func (t *Tracker) store(text string, digest [sha256.Size]byte) {
	t.digest = digest
	t.fetched = true
	t.text = text
	t.sections = ParseSections(text)
	slog.Debug("diff updated", slog.String("target", t.target.String()), slog.Int("files", len(t.sections)))
}
