package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/thiagokokada/gitfs-go/internal/buildinfo"
	"github.com/thiagokokada/gitfs-go/internal/config"
	"github.com/thiagokokada/gitfs-go/internal/git/backend"
	"github.com/thiagokokada/gitfs-go/internal/render"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

type options struct {
	cfg        config.Config
	configPath string
	initConfig bool
	index      bool
	diff       string
	depth      int
	color      string
	verbose    bool
	version    bool
	dir        string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("gitfs-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := config.Default()
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to config.toml (default: $"+config.EnvConfigDir+"/config.toml or ~/.config/gitfs-go/config.toml)")
	fs.BoolVar(&opts.initConfig, "init-config", false, "write the default config file and exit")
	hidden := fs.Bool("hidden", def.ShowHidden, "show hidden and ignored entries")
	clean := fs.Bool("clean", def.HideClean, "hide clean entries")
	fs.BoolVar(&opts.index, "index", false, "show the staged index instead of the workspace")
	fs.StringVar(&opts.diff, "diff", "", "print a diff instead of a tree: worktree, staged or head")
	watch := fs.Bool("watch", def.Watch, "keep running and redraw when the workspace changes")
	interval := fs.Duration("interval", def.PollInterval.Duration, "poll interval while watching")
	timeout := fs.Duration("timeout", def.GitTimeout.Duration, "timeout for each git invocation")
	backendKind := fs.String("backend", def.Backend, "git backend: gitcli or native")
	mode := fs.String("mode", def.Mode, "color mode: auto, light, or dark")
	fs.IntVar(&opts.depth, "depth", -1, "maximum tree depth (-1 for unlimited)")
	fs.StringVar(&opts.color, "color", "auto", "colorize output: auto, always or never")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version || opts.initConfig {
		opts.cfg = def
		return opts, nil
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	// flags given on the command line win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hidden":
			cfg.ShowHidden = *hidden
		case "clean":
			cfg.HideClean = *clean
		case "watch":
			cfg.Watch = *watch
		case "interval":
			cfg.PollInterval.Duration = *interval
		case "timeout":
			cfg.GitTimeout.Duration = *timeout
		case "backend":
			cfg.Backend = *backendKind
		case "mode":
			cfg.Mode = *mode
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.cfg = cfg

	opts.dir = "."
	if rest := fs.Args(); len(rest) > 0 {
		opts.dir = rest[len(rest)-1]
	}
	return opts, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		p, err := config.Path()
		if err != nil {
			slog.Debug("no config path", slog.Any("error", err))
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.version {
		return printVersion(stdout, opts.verbose)
	}
	setupLogging(stderr, opts.verbose)
	if opts.initConfig {
		return writeDefaultConfig(opts.configPath, stdout)
	}

	color, err := useColor(opts.color, stdout)
	if err != nil {
		return err
	}
	b, err := backend.Open(opts.cfg.Backend)
	if err != nil {
		return err
	}
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	slog.Debug("starting",
		slog.String("dir", dir),
		slog.String("backend", b.Name()),
		slog.Bool("watch", opts.cfg.Watch),
	)

	v, err := newView(ctx, b, dir, opts)
	if err != nil {
		return err
	}
	printer := &render.Printer{
		W:       stdout,
		Palette: render.PaletteFor(render.ThemePreferenceFromString(opts.cfg.Mode)),
		Color:   color,
	}
	if !opts.cfg.Watch {
		return v.Render(printer)
	}
	return watchLoop(ctx, v, printer, opts.cfg.PollInterval.Duration)
}

func printVersion(w io.Writer, verbose bool) error {
	if _, err := fmt.Fprintln(w, "gitfs-go", buildinfo.Summary()); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	gitVersion, err := backend.GitVersion()
	if err != nil {
		gitVersion = fmt.Sprintf("unavailable (%v)", err)
	}
	_, err = fmt.Fprintf(w, "git: %s, minimum %s\n", gitVersion, backend.MinGitVersion())
	return err
}

func writeDefaultConfig(path string, stdout io.Writer) error {
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := config.Init(path, config.Default()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(stdout, "wrote", path)
	return err
}
