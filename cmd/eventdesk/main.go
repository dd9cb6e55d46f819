// Package main is the entrypoint for the eventdesk CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eventdesk/eventdesk/internal/client"
	"github.com/eventdesk/eventdesk/internal/config"
	"github.com/eventdesk/eventdesk/internal/logs"
	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// silentError fails the command without printing anything more.
type silentError struct{ err error }

func (e silentError) Error() string { return e.err.Error() }
func (e silentError) Unwrap() error { return e.err }

// run executes the CLI and returns the process exit code. Interrupts
// cancel the command context.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runContext(ctx, args, stdout, stderr)
}

func runContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var silent silentError
		if !errors.As(err, &silent) {
			render.Error(stderr, a.styles, err)
		}
		a.logger.Debug().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

// app carries the state shared by every command.
type app struct {
	configPath string
	dataDir    string
	serverURL  string
	logLevel   string
	logFormat  string
	timeout    time.Duration
	output     string

	stderr io.Writer
	cfg    *config.Config
	logger zerolog.Logger
	styles render.Styles
	client *client.Client
	opts   []client.Option
}

func newApp(stderr io.Writer) *app {
	return &app{
		stderr: stderr,
		logger: zerolog.Nop(),
		styles: render.DefaultStyles(),
		output: outputTable,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventdesk",
		Short: "eventdesk - command line client for the events API",
		Long: `eventdesk manages events (conferences and concerts) and participants
through the events REST API.

Run 'eventdesk config set-server <url>' to point it at a server, then
'eventdesk status' to verify the connection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.eventdesk/config.yml)")
	flags.StringVar(&a.dataDir, "data-dir", "", "Directory for the offline snapshot (default ~/.eventdesk)")
	flags.StringVar(&a.serverURL, "server", "", "API base URL, overrides the config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (console, json)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout, overrides the config file")
	flags.StringVarP(&a.output, "output", "o", outputTable, "Output format (table, json)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(a),
		newStatusCmd(a),
		newStatsCmd(a),
		newDashboardCmd(a),
		newEventsCmd(a),
		newParticipantsCmd(a),
		newWatchCmd(a),
	)

	return rootCmd
}

// setup resolves the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	switch a.output {
	case outputTable, outputJSON:
	default:
		return fmt.Errorf("output must be %s or %s, got %q", outputTable, outputJSON, a.output)
	}

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	if a.serverURL != "" {
		cfg.ServerURL = config.NormalizeServerURL(a.serverURL)
	}
	if cmd.Flags().Changed("timeout") {
		if a.timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.Timeout = a.timeout
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}

	logger, err := logs.New(logs.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Version: Version,
	}, a.stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (a *app) resolveDataDir() (string, error) {
	if a.dataDir != "" {
		return a.dataDir, nil
	}
	return config.DefaultConfigDir()
}

// apiClient builds the API client on first use.
func (a *app) apiClient() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := client.New(a.cfg, a.logger, a.opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a.client = c
	return c, nil
}

// openSnapshots opens the offline snapshot in the data directory.
func (a *app) openSnapshots() (*state.SnapshotStore, error) {
	dir, err := a.resolveDataDir()
	if err != nil {
		return nil, err
	}
	return state.OpenSnapshotStore(dir, a.logger)
}

func (a *app) jsonOutput() bool {
	return a.output == outputJSON
}
