// Package cli provides the memoctl command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/memoized_go/config"
	"github.com/on-the-ground/memoized_go/shared/zaplog"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	console    bool

	cfg    *config.Config
	logger *zap.Logger
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "memoctl",
		Short: "Inspect signatures and exercise memoized methods",
		Long: `memoctl classifies parameter lists the way the memoizer sees them and runs a
small memoization demo.

Parameters are written as kind:name[=default] with kind one of
req, opt, rest, keyreq, key, keyrest.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	flags := app.root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&app.logLevel, "log-level", "", "log level, overrides the config file")
	flags.BoolVar(&app.console, "console", false, "human-readable debug logs on stdout")

	app.root.AddCommand(
		app.newDescribeCmd(),
		app.newDemoCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithLogger replaces the logger built from configuration.
func (a *App) WithLogger(logger *zap.Logger) *App {
	a.logger = logger
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if a.logger != nil {
			_ = a.logger.Sync()
		}
	}()
	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	if a.logger != nil {
		return nil
	}
	if a.console {
		a.logger = zaplog.NewConsole()
		return nil
	}
	a.logger, err = zaplog.New(cfg.LogLevel)
	return err
}
