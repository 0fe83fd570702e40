package render

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/thiagokokada/gitfs-go/internal/diff"
)

func (p *Printer) chromaStyle() *chroma.Style {
	if st := styles.Get(p.Palette.ChromaStyle); st != nil {
		return st
	}
	return styles.Fallback
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// diffLineCode splits a hunk line into its marker and the code after it.
func diffLineCode(line string) (byte, string, bool) {
	if line == "" {
		return 0, "", false
	}
	switch line[0] {
	case '+', '-', ' ':
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			return 0, "", false
		}
		return line[0], line[1:], true
	default:
		return 0, "", false
	}
}

// Diff writes diff text with coloured markers and the code of each hunk
// line highlighted for the file's language. Without colour the text is
// copied unchanged.
func (p *Printer) Diff(text string) error {
	if !p.Color {
		_, err := io.WriteString(p.W, text)
		return err
	}
	style := p.chromaStyle()
	formatter := formatters.TTY256
	w := bufio.NewWriter(p.W)
	var lexer chroma.Lexer
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if path, ok := diff.HeaderPath(line); ok {
			lexer = lexerForPath(path)
			w.WriteString(p.sgr(p.Palette.DiffHeader, line))
			w.WriteByte('\n')
			continue
		}
		marker, code, ok := diffLineCode(line)
		if !ok || lexer == nil {
			if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
				line = p.sgr(p.Palette.DiffHeader, line)
			}
			w.WriteString(line)
			w.WriteByte('\n')
			continue
		}
		switch marker {
		case '+':
			w.WriteString(p.sgr(p.Palette.DiffAdd, "+"))
		case '-':
			w.WriteString(p.sgr(p.Palette.DiffDel, "-"))
		default:
			w.WriteByte(' ')
		}
		w.WriteString(highlightCode(lexer, formatter, style, code))
		w.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return w.Flush()
}

func (p *Printer) sgr(params, text string) string {
	if params == "" {
		return text
	}
	return "\x1b[" + params + "m" + text + "\x1b[0m"
}

func highlightCode(lexer chroma.Lexer, formatter chroma.Formatter, style *chroma.Style, code string) string {
	if code == "" {
		return ""
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	// lexers append a newline to their input; the line break is ours to write
	return strings.ReplaceAll(buf.String(), "\n", "")
}
