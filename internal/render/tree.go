// Package render draws status trees and diffs for a terminal.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/fsdb"
	"github.com/thiagokokada/gitfs-go/internal/status"
)

// Lister is the read side of a status tree.
type Lister interface {
	DirContents(path string, showHidden, hideClean bool) (dirs, files []fsdb.FsObject)
}

// Printer writes decorated listings. With Color unset it emits plain text.
type Printer struct {
	W       io.Writer
	Palette Palette
	Color   bool
}

// Paint wraps text in the SGR sequence for style and colour.
func (p *Printer) Paint(text string, style Style, colour Colour) string {
	if !p.Color {
		return text
	}
	params := make([]string, 0, 2)
	if style == StyleItalic {
		params = append(params, "3")
	}
	if sgr, ok := p.Palette.Colours[colour]; ok {
		params = append(params, sgr)
	}
	if len(params) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(params, ";") + "m" + text + "\x1b[0m"
}

func codeColumn(code status.Code) string {
	if code == status.NoStatus {
		return "  "
	}
	return code.String()
}

// FormatEntry renders one row: the status column, the decorated name and
// the rename or copy partner when there is one.
func (p *Printer) FormatEntry(obj fsdb.FsObject) string {
	style, colour := Decoration(obj.Status)
	name := obj.Name
	if obj.IsDir {
		name += string(filepath.Separator)
	}
	var b strings.Builder
	b.WriteString(codeColumn(obj.Status))
	b.WriteByte(' ')
	b.WriteString(p.Paint(name, style, colour))
	if obj.Related != nil {
		fmt.Fprintf(&b, " %s %s", obj.Related.Relation, obj.Related.FilePath)
	}
	return b.String()
}

// Tree prints path and everything visible below it, depth first with
// directories before files. maxDepth < 0 means unlimited.
func (p *Printer) Tree(src Lister, path string, showHidden, hideClean bool, maxDepth int) error {
	return p.tree(src, path, showHidden, hideClean, maxDepth, 0)
}

func (p *Printer) tree(src Lister, path string, showHidden, hideClean bool, maxDepth, depth int) error {
	dirs, files := src.DirContents(path, showHidden, hideClean)
	indent := strings.Repeat("  ", depth)
	for _, d := range dirs {
		if _, err := fmt.Fprintln(p.W, indent+p.FormatEntry(d)); err != nil {
			return err
		}
		if maxDepth >= 0 && depth+1 > maxDepth {
			continue
		}
		if err := p.tree(src, d.Path, showHidden, hideClean, maxDepth, depth+1); err != nil {
			return err
		}
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(p.W, indent+p.FormatEntry(f)); err != nil {
			return err
		}
	}
	return nil
}
