package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"github.com/vk/gdcore/internal/app"
	"github.com/vk/gdcore/internal/hcl"
	"github.com/vk/gdcore/internal/loader"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Defaults are the flag defaults taken from the environment.
type Defaults struct {
	LogLevel        string `env:"GDCORE_LOG_LEVEL"        envDefault:"info"`
	LogFormat       string `env:"GDCORE_LOG_FORMAT"       envDefault:"text"`
	BaseDir         string `env:"GDCORE_BASE_DIR"`
	DebuggerURL     string `env:"GDCORE_DEBUGGER_URL"`
	Seed            uint64 `env:"GDCORE_SEED"`
	HealthcheckPort int    `env:"GDCORE_HEALTHCHECK_PORT"`
}

// ParseDefaults reads the environment defaults.
func ParseDefaults() (Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return Defaults{}, fmt.Errorf("parse env: %w", err)
	}
	return d, nil
}

// flags holds what the commands were given.
type flags struct {
	Defaults
	platforms    []string
	events       string
	ticks        int
	tickInterval time.Duration
}

// config validates the flags into an app configuration.
func (f *flags) config(eventsPath string) (*app.Config, error) {
	sources := make([]loader.Source, 0, len(f.platforms))
	for _, spec := range f.platforms {
		src, err := ParsePlatform(spec)
		if err != nil {
			return nil, usageError("invalid --platform: %s", err)
		}
		sources = append(sources, src)
	}

	cfg, err := app.NewConfig(app.Config{
		LogLevel:        f.LogLevel,
		LogFormat:       f.LogFormat,
		BaseDir:         f.BaseDir,
		Platforms:       sources,
		EventsPath:      eventsPath,
		DebuggerURL:     f.DebuggerURL,
		Seed:            f.Seed,
		Ticks:           f.ticks,
		TickInterval:    f.tickInterval,
		HealthcheckPort: f.HealthcheckPort,
	})
	if err != nil {
		return nil, usageError("%s", err)
	}
	return cfg, nil
}

// ParsePlatform parses LIB[=ROOT]. Without ROOT, the directory holding LIB is
// the platform root; an empty ROOT disables extension loading.
func ParsePlatform(spec string) (loader.Source, error) {
	lib, root, hasRoot := strings.Cut(spec, "=")
	lib = strings.TrimSpace(lib)
	if lib == "" {
		return loader.Source{}, errors.New("library path cannot be empty")
	}
	if !hasRoot {
		root = filepath.Dir(lib)
	}
	return loader.Source{Library: lib, Root: strings.TrimSpace(root)}, nil
}

// NewRootCommand builds the gdcore command tree. Command output goes to out;
// the logs of list go to errOut so they never mix with the listing.
func NewRootCommand(out, errOut io.Writer) (*cobra.Command, error) {
	defaults, err := ParseDefaults()
	if err != nil {
		return nil, usageError("%s", err)
	}
	f := &flags{Defaults: defaults}

	root := &cobra.Command{
		Use:   "gdcore",
		Short: "gdcore - an extensible event evaluation engine.",
		Long: `gdcore loads platforms and their extensions into a dispatch table and
evaluates the conditions and actions of a project's events, tick after tick.

Environment variables GDCORE_LOG_LEVEL, GDCORE_LOG_FORMAT, GDCORE_BASE_DIR,
GDCORE_DEBUGGER_URL, GDCORE_SEED and GDCORE_HEALTHCHECK_PORT provide defaults
that flags override.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.LogFormat, "log-format", f.LogFormat, "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.BaseDir, "base-dir", f.BaseDir, "Directory holding the platform directories.")
	pf.StringArrayVar(&f.platforms, "platform", nil, "Platform library to load, as LIB[=ROOT]. Repeatable; replaces the built-in platforms.")
	pf.StringVar(&f.DebuggerURL, "debugger-url", f.DebuggerURL, "Socket.IO URL of an editor to stream evaluations to.")
	pf.Uint64Var(&f.Seed, "seed", f.Seed, "Seed for random expressions. 0 seeds from the clock.")

	root.AddCommand(newRunCommand(f), newListCommand(f))
	return root, nil
}

func newRunCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [EVENTS_PATH]",
		Short: "Load the platforms and tick a project's events.",
		Long: `Load the platforms and tick a project's events.

EVENTS_PATH is a single .hcl file or a directory containing .hcl files.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError("run accepts at most one events path, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			eventsPath := f.events
			if eventsPath == "" && len(args) == 1 {
				eventsPath = args[0]
			}
			if eventsPath == "" {
				return usageError("an events path is required, see 'gdcore run --help'")
			}

			cfg, err := f.config(eventsPath)
			if err != nil {
				return err
			}

			a := app.NewApp(cmd.OutOrStdout(), cfg, hcl.NewLoader())
			defer a.Close()

			if err := a.Load(cmd.Context()); err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.events, "events", "e", "", "Path to the events file or directory.")
	fl.IntVar(&f.ticks, "ticks", 1, "Number of ticks to run. 0 runs until interrupted.")
	fl.DurationVar(&f.tickInterval, "tick-interval", 0, "Pause between ticks, e.g. '16ms'.")
	fl.IntVar(&f.HealthcheckPort, "healthcheck-port", f.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	return cmd
}

func newListCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the loaded platforms, the dispatch table and the load report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config("")
			if err != nil {
				return err
			}

			a := app.NewApp(cmd.ErrOrStderr(), cfg, hcl.NewLoader())
			defer a.Close()

			if err := a.Load(cmd.Context()); err != nil {
				return err
			}
			return a.WriteList(cmd.OutOrStdout())
		},
	}
}

// Execute runs the command line args. Usage errors come back as an
// *ExitError with code 2.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, err := NewRootCommand(out, errOut)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
