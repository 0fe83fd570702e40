package porcelain

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thiagokokada/gitfs-go/internal/status"
)

func rel(p string) string {
	return "." + string(filepath.Separator) + filepath.FromSlash(p)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          string
		wantPath    string
		wantCode    status.Code
		wantRelated *Related
	}{
		{name: "staged_modified", in: "M  src/main.rs", wantPath: rel("src/main.rs"), wantCode: status.Modified},
		{name: "worktree_modified", in: " M README.md", wantPath: rel("README.md"), wantCode: status.WDOnlyModified},
		{name: "untracked", in: "?? new.go", wantPath: rel("new.go"), wantCode: status.NotTracked},
		{name: "ignored_dir", in: "!! build/", wantPath: rel("build/"), wantCode: status.Ignored},
		{name: "unmerged", in: "UU conflict.txt", wantPath: rel("conflict.txt"), wantCode: status.Unmerged},
		{
			name:        "rename",
			in:          "R  old.txt -> new.txt",
			wantPath:    rel("old.txt"),
			wantCode:    status.Renamed,
			wantRelated: &Related{FilePath: "new.txt", Relation: RelationGoesTo},
		},
		{name: "quoted_space", in: `?? "with space.txt"`, wantPath: rel("with space.txt"), wantCode: status.NotTracked},
		{name: "quoted_escape", in: `A  "tab\there.txt"`, wantPath: rel("tab\there.txt"), wantCode: status.Added},
		{name: "quoted_octal_utf8", in: `?? "caf\303\251.txt"`, wantPath: rel("café.txt"), wantCode: status.NotTracked},
		{
			name:        "quoted_rename",
			in:          `RM "a b.txt" -> "c d.txt"`,
			wantPath:    rel("a b.txt"),
			wantCode:    status.RenamedModified,
			wantRelated: &Related{FilePath: "c d.txt", Relation: RelationGoesTo},
		},
		{name: "crlf_trimmed", in: "D  gone.txt\r", wantPath: rel("gone.txt"), wantCode: status.Deleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLine(tt.in)
			if err != nil {
				t.Fatalf("ParseLine(%q) error = %v", tt.in, err)
			}
			if got.Path != tt.wantPath {
				t.Fatalf("path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", got.Code, tt.wantCode)
			}
			switch {
			case tt.wantRelated == nil && got.Related != nil:
				t.Fatalf("unexpected related data: %+v", *got.Related)
			case tt.wantRelated != nil && (got.Related == nil || *got.Related != *tt.wantRelated):
				t.Fatalf("related = %+v, want %+v", got.Related, *tt.wantRelated)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "M", "M ", "MMx path", " T typechange.txt", "?? a b c"} {
		_, err := ParseLine(in)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseLine(%q) error = %v, want *ParseError", in, err)
		}
		if pe.Line != strings.TrimRight(in, "\r") {
			t.Fatalf("ParseError.Line = %q, want %q", pe.Line, in)
		}
	}
}

func TestParseLineUnknownCodeNamesPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		path string
	}{
		{" T typechange.txt", "typechange.txt"},
		{"T  \"with space.txt\"", "with space.txt"},
		{"XY a.txt -> b.txt", "a.txt"},
		{"XY a b c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			_, err := ParseLine(tt.in)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseLine(%q) error = %v, want *ParseError", tt.in, err)
			}
			if pe.Path != tt.path {
				t.Fatalf("ParseError.Path = %q, want %q", pe.Path, tt.path)
			}
			if tt.path != "" && !strings.Contains(pe.Error(), tt.path) {
				t.Fatalf("error %q does not name %q", pe.Error(), tt.path)
			}
		})
	}
}

func TestParseSkipsBadLines(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"M  a.txt",
		"garbage",
		"",
		"?? b.txt",
		" T c.txt",
	}, "\n") + "\n"
	entries, err := Parse(strings.NewReader(in))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if err == nil {
		t.Fatal("expected joined parse error")
	}
	perrs := ParseErrors(err)
	if len(perrs) != 2 {
		t.Fatalf("got %d parse errors, want 2: %v", len(perrs), err)
	}
	if perrs[0].Line != "garbage" || perrs[1].Line != " T c.txt" {
		t.Fatalf("unexpected parse error lines: %q, %q", perrs[0].Line, perrs[1].Line)
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	entries, err := Parse(strings.NewReader(""))
	if err != nil || len(entries) != 0 {
		t.Fatalf("Parse(\"\") = %v, %v", entries, err)
	}
	if ParseErrors(nil) != nil {
		t.Fatal("ParseErrors(nil) should be nil")
	}
}

func TestParse_ReadError(t *testing.T) {
	t.Parallel()

	_, err := Parse(failingReader{})
	if err == nil {
		t.Fatal("expected error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
