// Package main is the entry point for the richfmt command.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/richfmt/internal/config"
	"github.com/dshills/richfmt/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Environ)
	// PersistentPostRunE is skipped when a command fails.
	defer a.Close()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		// Error already printed by cobra
		return 1
	}
	return 0
}

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	// environ supplies the environment for RICHFMT_ overrides.
	environ func() []string

	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

func newApp(environ func() []string) *app {
	return &app{environ: environ}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "richfmt",
		Short: "Apply named rich-text formatting actions to HTML documents",
		Long: `richfmt runs named formatting actions and state queries against HTML
documents. Documents carry their selection as markers: [ and ] around a
selected range, or | for a collapsed caret. Write \[, \], \| or \\ for
the literal characters.

Examples:
  richfmt apply doc.html bold h2        Bold the selection, then toggle h2
  richfmt apply doc.html a=https://example.com  Link the selection
  richfmt query doc.html bold ul        Print the state of two queries
  richfmt script doc.html fmt.lua       Run a Lua script against doc.html
  richfmt actions                       List every action and query`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.Close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (TOML or YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to a rotated file instead of stderr")

	root.AddCommand(
		newApplyCmd(a),
		newQueryCmd(a),
		newScriptCmd(a),
		newActionsCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger. Flags win over the
// file and the environment.
func (a *app) setup() error {
	cfg, err := config.NewLoader(config.WithEnvironment(environMap(a.environ()))).Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, a.closer = logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	a.logger.Debug("configuration loaded", "path", a.configPath, "separator", cfg.Engine.Separator)
	return nil
}

// Close releases the log file. It is safe to call more than once.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
