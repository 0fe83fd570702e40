// Package config loads the gitfs-go settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigDir overrides the directory holding config.toml.
const EnvConfigDir = "GITFS_CONFIG_DIR"

const fileName = "config.toml"

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds the user's defaults. Command-line flags override it.
type Config struct {
	ShowHidden   bool     `toml:"show_hidden"`
	HideClean    bool     `toml:"hide_clean"`
	Backend      string   `toml:"backend"` // "gitcli" or "native"
	Mode         string   `toml:"mode"`    // "auto", "light" or "dark"
	GitTimeout   Duration `toml:"git_timeout"`
	PollInterval Duration `toml:"poll_interval"`
	Watch        bool     `toml:"watch"`
}

func Default() Config {
	return Config{
		Backend:      "gitcli",
		Mode:         "auto",
		GitTimeout:   Duration{10 * time.Second},
		PollInterval: Duration{2 * time.Second},
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case "gitcli", "native":
	default:
		errs = append(errs, fmt.Errorf("backend must be gitcli or native, got %q", c.Backend))
	}
	switch c.Mode {
	case "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("mode must be auto, light or dark, got %q", c.Mode))
	}
	if c.GitTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("git_timeout must be positive, got %s", c.GitTimeout))
	}
	if c.PollInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	return errors.Join(errs...)
}

// Dir returns the configuration directory: $GITFS_CONFIG_DIR when set,
// otherwise ~/.config/gitfs-go.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return expandHome(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "gitfs-go"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Path returns the location of config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Read decodes a config from r on top of the defaults.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", slog.String("key", key.String()))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Init writes cfg to path unless a file already exists there.
func Init(path string, cfg Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return f.Close()
}
