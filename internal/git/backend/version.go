package backend

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Minimum supported git version for the CLI backend. "--ignore-submodules=none"
// together with "--untracked=all" and "--ignored" on porcelain v1 output
// behave consistently from this release on.
var minGitVersion = gitVersion{major: 2, minor: 23, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput accepts the usual shapes of "git --version":
// "git version 2.44.0", "git version 2.39.3 (Apple Git-146)" and
// "git version 2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if _, rest, found := strings.Cut(s, "git version"); found {
		s = strings.TrimSpace(rest)
	}
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if end >= 0 {
		s = s[:end]
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' })
	if len(fields) < 2 {
		return gitVersion{}, false
	}
	var nums [3]int
	for i := 0; i < len(fields) && i < 3; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			if i < 2 {
				return gitVersion{}, false
			}
			break
		}
		nums[i] = n
	}
	return gitVersion{major: nums[0], minor: nums[1], patch: nums[2]}, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; gitfs-go requires git >= %s", got, minGitVersion)
	}
	return nil
}

// gitVersionOutput runs "git --version"; tests replace it.
var gitVersionOutput = func() ([]byte, error) {
	return exec.Command("git", "--version").CombinedOutput()
}

func readGitVersion() (string, error) {
	outBytes, err := gitVersionOutput()
	out := strings.TrimSpace(string(outBytes))
	if err != nil {
		return out, &CommandError{Context: "git --version", ExitCode: -1, Stderr: out, Err: fmt.Errorf("%w: %w", ErrSpawn, err)}
	}
	return out, nil
}

var gitVersionCached = sync.OnceValues(readGitVersion)

// GitVersion returns the raw "git --version" output.
func GitVersion() (string, error) {
	return gitVersionCached()
}

func ensureMinGitVersion() error {
	return checkGitVersion(gitVersionCached)
}

func checkGitVersion(read func() (string, error)) error {
	out, err := read()
	if err != nil {
		return err
	}
	return validateGitVersionOutput(out)
}
