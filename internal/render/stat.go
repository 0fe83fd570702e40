package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/diff"
)

// DiffStat writes one "path +N -M" line per file section followed by a
// total for label. Nothing is written when there are no sections.
func (p *Printer) DiffStat(label string, sections []diff.Section) error {
	if len(sections) == 0 {
		return nil
	}
	width := 0
	for _, s := range sections {
		width = max(width, len(s.Path))
	}
	var b strings.Builder
	var added, removed int
	for _, s := range sections {
		added += s.Added
		removed += s.Removed
		fmt.Fprintf(&b, " %-*s %s %s\n", width, s.Path, p.count('+', s.Added), p.count('-', s.Removed))
	}
	files := "files"
	if len(sections) == 1 {
		files = "file"
	}
	fmt.Fprintf(&b, "%s: %d %s changed, %s %s\n", label, len(sections), files, p.count('+', added), p.count('-', removed))
	_, err := p.W.Write([]byte(b.String()))
	return err
}

func (p *Printer) count(sign byte, n int) string {
	text := string(sign) + strconv.Itoa(n)
	if !p.Color {
		return text
	}
	if sign == '+' {
		return p.sgr(p.Palette.DiffAdd, text)
	}
	return p.sgr(p.Palette.DiffDel, text)
}
