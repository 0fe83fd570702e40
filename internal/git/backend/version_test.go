package backend

import (
	"errors"
	"strings"
	"testing"
)

func TestParseGitVersionOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want gitVersion
		ok   bool
	}{
		{"git version 2.47.1\n", gitVersion{2, 47, 1}, true},
		{"git version 2.39.5 (Apple Git-154)", gitVersion{2, 39, 5}, true},
		{"git version 2.45.2.windows.1", gitVersion{2, 45, 2}, true},
		{"git version 2.42.x", gitVersion{2, 42, 0}, true},
		{"git version 2.30", gitVersion{2, 30, 0}, true},
		{"Vendor Git 2.40.1-rc0", gitVersion{2, 40, 1}, true},
		{"  2.25.0  ", gitVersion{2, 25, 0}, true},
		{"git version 3", gitVersion{}, false},
		{"git version x.y.z", gitVersion{}, false},
		{"", gitVersion{}, false},
	}
	for _, tt := range tests {
		got, ok := parseGitVersionOutput(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseGitVersionOutput(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGitVersionLess(t *testing.T) {
	t.Parallel()

	ordered := []gitVersion{{1, 9, 9}, {2, 22, 5}, {2, 23, 0}, {2, 23, 1}, {3, 0, 0}}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i-1].less(ordered[i]) || ordered[i].less(ordered[i-1]) {
			t.Errorf("ordering broken between %s and %s", ordered[i-1], ordered[i])
		}
	}
	if ordered[2].less(ordered[2]) {
		t.Error("a version is not less than itself")
	}
}

func TestCheckGitVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		readErr error
		wantErr string
	}{
		{name: "minimum", out: "git version " + MinGitVersion()},
		{name: "newer", out: "git version 2.47.0 (Apple Git-154)"},
		{name: "too old", out: "git version 2.22.9", wantErr: "too old"},
		{name: "garbage", out: "command not understood", wantErr: "unable to parse"},
		{name: "read failure", readErr: errors.New("boom"), wantErr: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkGitVersion(func() (string, error) { return tt.out, tt.readErr })
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("checkGitVersion: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadGitVersion_SpawnFailure(t *testing.T) {
	orig := gitVersionOutput
	t.Cleanup(func() { gitVersionOutput = orig })
	gitVersionOutput = func() ([]byte, error) {
		return []byte("sh: git: not found\n"), errors.New("exec: \"git\": executable file not found in $PATH")
	}

	out, err := readGitVersion()
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("error = %v, want ErrSpawn", err)
	}
	var cerr *CommandError
	if !errors.As(err, &cerr) || cerr.ExitCode != -1 || cerr.Stderr != "sh: git: not found" {
		t.Fatalf("CommandError = %+v", cerr)
	}
	if out != "sh: git: not found" {
		t.Fatalf("out = %q", out)
	}
	if err := checkGitVersion(readGitVersion); !errors.Is(err, ErrSpawn) {
		t.Fatalf("checkGitVersion error = %v, want ErrSpawn", err)
	}
}
