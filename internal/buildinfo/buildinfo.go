// Package buildinfo reports how the running binary was built.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version, or "dev" for local builds.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}

// settings returns the build settings named in keys that are set.
func settings(keys ...string) map[string]string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return nil
	}
	out := make(map[string]string)
	for _, s := range info.Settings {
		for _, k := range keys {
			if s.Key == k && s.Value != "" {
				out[k] = s.Value
			}
		}
	}
	return out
}

// Summary returns the version followed by the VCS revision and build tags
// when the toolchain recorded them.
func Summary() string {
	s := settings("vcs.revision", "vcs.modified", "-tags")
	var extra []string
	if rev := s["vcs.revision"]; rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if s["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		extra = append(extra, "rev "+rev)
	}
	if tags := s["-tags"]; tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return Version()
	}
	return fmt.Sprintf("%s (%s)", Version(), strings.Join(extra, ", "))
}
