// Package porcelain parses the output of "git status --porcelain" (v1).
package porcelain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/thiagokokada/gitfs-go/internal/status"
)

// Relation says which way a rename or copy points.
type Relation string

const (
	RelationGoesTo    Relation = "->"
	RelationComesFrom Relation = "<-"
)

// Related links an entry to the other side of a rename or copy.
type Related struct {
	FilePath string
	Relation Relation
}

type Entry struct {
	// Path is prefixed with "./" so it keys the same way as paths built
	// from directory listings.
	Path    string
	Code    status.Code
	Related *Related
}

// ParseError reports a status line that does not follow the porcelain
// grammar.
type ParseError struct {
	Line   string
	Reason string
	// Path is the decoded path of the line, when it could be recovered.
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed porcelain line %q: %s", e.Line, e.Reason)
}

const pathToken = `"((?:[^"\\]|\\.)+)"|(\S+)`

var fileDataRE = regexp.MustCompile(`^(?:` + pathToken + `)(?: -> (?:` + pathToken + `))?$`)

// CurDirPrefix is prepended to every path git reports.
var CurDirPrefix = "." + string(filepath.Separator)

// ParseLine parses a single porcelain line such as `M  src/main.go`,
// `?? "with space.txt"` or `R  old.txt -> new.txt`. For renames the entry
// is keyed on the original path and Related names the new one.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r")
	if len(line) < 4 {
		return Entry{}, &ParseError{Line: line, Reason: "line too short"}
	}
	if line[2] != ' ' {
		return Entry{}, &ParseError{Line: line, Reason: "missing separator after status code"}
	}
	code, ok := status.Parse(line[:2])
	if !ok || code == status.NoStatus {
		pe := &ParseError{Line: line, Reason: fmt.Sprintf("unknown status code %q", line[:2])}
		if m := fileDataRE.FindStringSubmatch(line[3:]); m != nil {
			if path, err := pathFromMatch(m[1], m[2]); err == nil {
				pe.Path = path
				pe.Reason += " for " + path
			}
		}
		return Entry{}, pe
	}
	m := fileDataRE.FindStringSubmatch(line[3:])
	if m == nil {
		return Entry{}, &ParseError{Line: line, Reason: "unrecognised path syntax"}
	}
	path, err := pathFromMatch(m[1], m[2])
	if err != nil {
		return Entry{}, &ParseError{Line: line, Reason: err.Error()}
	}
	entry := Entry{Path: CurDirPrefix + filepath.FromSlash(path), Code: code}
	if m[3] != "" || m[4] != "" {
		related, err := pathFromMatch(m[3], m[4])
		if err != nil {
			return Entry{}, &ParseError{Line: line, Reason: err.Error()}
		}
		entry.Related = &Related{FilePath: filepath.FromSlash(related), Relation: RelationGoesTo}
	}
	return entry, nil
}

func pathFromMatch(quoted, bare string) (string, error) {
	if quoted == "" {
		return bare, nil
	}
	path, err := strconv.Unquote(`"` + quoted + `"`)
	if err != nil {
		return "", fmt.Errorf("bad quoted path: %w", err)
	}
	return path, nil
}

// Parse reads every line of r. Lines that fail to parse are skipped and
// reported together in the returned error; the good entries are always
// returned.
func Parse(r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		errs    []error
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read porcelain output: %w", err))
	}
	return entries, errors.Join(errs...)
}

// ParseErrors extracts the per-line parse errors from an error returned by
// Parse.
func ParseErrors(err error) []*ParseError {
	if err == nil {
		return nil
	}
	var out []*ParseError
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var pe *ParseError
			if errors.As(e, &pe) {
				out = append(out, pe)
			}
		}
		return out
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		out = append(out, pe)
	}
	return out
}
