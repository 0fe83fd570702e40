package diff

import (
	"strconv"
	"strings"
)

// Section locates one file in a diff and counts its changed lines.
type Section struct {
	Path    string
	Line    int // 1-based line of the "diff --git" header
	Added   int
	Removed int
}

// ParseSections splits diff text into per-file sections.
func ParseSections(text string) []Section {
	var sections []Section
	inHunk := false
	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			inHunk = false
			if path := headerPath(line); path != "" {
				sections = append(sections, Section{Path: path, Line: i + 1})
			}
		case len(sections) == 0:
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			sections[len(sections)-1].Added++
		case strings.HasPrefix(line, "-"):
			sections[len(sections)-1].Removed++
		}
	}
	return sections
}

// HeaderPath reports whether line starts a file section and returns the
// post-image path it names.
func HeaderPath(line string) (string, bool) {
	if !strings.HasPrefix(line, "diff --git ") {
		return "", false
	}
	return headerPath(line), true
}

// headerPath returns the post-image path of a "diff --git a/x b/y" line.
func headerPath(line string) string {
	tokens := headerTokens(strings.TrimPrefix(line, "diff --git "))
	if len(tokens) < 2 {
		return ""
	}
	return strings.TrimPrefix(tokens[1], "b/")
}

func headerTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return tokens
		}
		if s[0] == '"' {
			quoted, err := strconv.QuotedPrefix(s)
			if err == nil {
				if tok, err := strconv.Unquote(quoted); err == nil {
					tokens = append(tokens, tok)
					s = s[len(quoted):]
					continue
				}
			}
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		tokens = append(tokens, s[:end])
		s = s[end:]
	}
}
