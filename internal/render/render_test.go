package render

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thiagokokada/gitfs-go/internal/diff"
	"github.com/thiagokokada/gitfs-go/internal/fsdb"
	"github.com/thiagokokada/gitfs-go/internal/porcelain"
	"github.com/thiagokokada/gitfs-go/internal/status"
)

func TestDecoration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   status.Code
		style  Style
		colour Colour
	}{
		{code: status.NoStatus, style: StyleNormal, colour: Black},
		{code: status.WDOnlyModified, style: StyleNormal, colour: Blue},
		{code: status.Added, style: StyleNormal, colour: DarkGreen},
		{code: status.Renamed, style: StyleItalic, colour: Pink},
		{code: status.Copied, style: StyleItalic, colour: Green},
		{code: status.UnmergedDeletedThem, style: StyleNormal, colour: Magenta},
		{code: status.NotTracked, style: StyleItalic, colour: Cyan},
		{code: status.Ignored, style: StyleItalic, colour: Grey},
	}
	for _, tt := range tests {
		style, colour := Decoration(tt.code)
		if style != tt.style || colour != tt.colour {
			t.Fatalf("Decoration(%q) = %v, %v; want %v, %v", tt.code, style, colour, tt.style, tt.colour)
		}
	}
	for _, code := range status.All() {
		if _, ok := decorations[code]; !ok {
			t.Fatalf("no decoration for %q", code)
		}
	}
}

func TestPaletteFor(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) { return true, nil }
	if p := PaletteFor(ThemeAuto); !p.Dark {
		t.Fatalf("auto with dark desktop = %s", p.Name)
	}
	detectDarkMode = func() (bool, error) { return false, errors.New("no portal") }
	if p := PaletteFor(ThemeAuto); p.Dark {
		t.Fatalf("auto with detection error = %s", p.Name)
	}
	if p := PaletteFor(ThemeDark); !p.Dark {
		t.Fatal("explicit dark ignored")
	}
	if p := PaletteFor(ThemeLight); p.Dark {
		t.Fatal("explicit light ignored")
	}
	if got := ThemePreferenceFromString(" Dark "); got != ThemeDark {
		t.Fatalf("ThemePreferenceFromString = %s", got)
	}
	if got := ThemePreferenceFromString("sepia"); got != ThemeAuto {
		t.Fatalf("unknown preference = %s", got)
	}
}

type fakeLister map[string][2][]fsdb.FsObject

func (f fakeLister) DirContents(path string, _, _ bool) (dirs, files []fsdb.FsObject) {
	entry := f[path]
	return entry[0], entry[1]
}

func TestPrinterTree(t *testing.T) {
	t.Parallel()

	src := rel("src")
	lister := fakeLister{
		".": {
			{{Name: "src", Path: src, IsDir: true, Status: status.WDOnlyModified}},
			{
				{Name: "new.txt", Path: rel("new.txt"), Status: status.NotTracked},
				{Name: "old.txt", Path: rel("old.txt"), Status: status.Renamed, Related: &fsdb.RelatedFile{FilePath: "moved.txt", Relation: porcelain.RelationGoesTo}},
			},
		},
		src: {nil, {{Name: "main.go", Path: rel("src/main.go"), Status: status.WDOnlyModified}}},
	}
	var out strings.Builder
	p := &Printer{W: &out, Palette: lightPalette}
	if err := p.Tree(lister, ".", false, false, -1); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	want := strings.Join([]string{
		" M src" + string(filepath.Separator),
		"   M main.go",
		"?? new.txt",
		"R  old.txt -> moved.txt",
	}, "\n") + "\n"
	if out.String() != want {
		t.Fatalf("Tree output:\n%s\nwant:\n%s", out.String(), want)
	}

	out.Reset()
	if err := p.Tree(lister, ".", false, false, 0); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if strings.Contains(out.String(), "main.go") {
		t.Fatalf("depth limit ignored: %q", out.String())
	}
}

func TestPrinterPaint(t *testing.T) {
	t.Parallel()

	p := &Printer{Palette: darkPalette, Color: true}
	if got := p.Paint("x", StyleItalic, Cyan); got != "\x1b[3;96mx\x1b[0m" {
		t.Fatalf("Paint = %q", got)
	}
	p.Color = false
	if got := p.Paint("x", StyleItalic, Cyan); got != "x" {
		t.Fatalf("Paint without colour = %q", got)
	}
}

const goDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1 +1 @@
-package old
+package main
`

func TestPrinterDiff(t *testing.T) {
	t.Parallel()

	var plain strings.Builder
	if err := (&Printer{W: &plain}).Diff(goDiff); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if plain.String() != goDiff {
		t.Fatalf("plain diff changed: %q", plain.String())
	}

	var coloured strings.Builder
	if err := (&Printer{W: &coloured, Palette: lightPalette, Color: true}).Diff(goDiff); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	got := coloured.String()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("no escapes in coloured diff: %q", got)
	}
	for _, word := range []string{"package", "main", "old"} {
		if !strings.Contains(got, word) {
			t.Fatalf("coloured diff lost %q: %q", word, got)
		}
	}
	if strings.Count(got, "\n") != strings.Count(goDiff, "\n") {
		t.Fatalf("line count changed: %q", got)
	}
}

func rel(p string) string {
	return "." + string(filepath.Separator) + filepath.FromSlash(p)
}

func TestPrinterDiffStat(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	p := &Printer{W: &out}
	sections := []diff.Section{
		{Path: "main.go", Added: 3, Removed: 1},
		{Path: "docs/a.md", Added: 0, Removed: 2},
	}
	if err := p.DiffStat("worktree", sections); err != nil {
		t.Fatalf("DiffStat: %v", err)
	}
	want := " main.go   +3 -1\n docs/a.md +0 -2\nworktree: 2 files changed, +3 -3\n"
	if out.String() != want {
		t.Fatalf("DiffStat output:\n%q\nwant:\n%q", out.String(), want)
	}

	out.Reset()
	if err := p.DiffStat("staged", nil); err != nil || out.Len() != 0 {
		t.Fatalf("empty DiffStat = %q, %v", out.String(), err)
	}

	out.Reset()
	p = &Printer{W: &out, Palette: darkPalette, Color: true}
	if err := p.DiffStat("head", sections[:1]); err != nil {
		t.Fatalf("DiffStat: %v", err)
	}
	if !strings.Contains(out.String(), "1 file changed") || !strings.Contains(out.String(), "\x1b[") {
		t.Fatalf("coloured DiffStat = %q", out.String())
	}
}
