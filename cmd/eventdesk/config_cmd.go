package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/eventdesk/eventdesk/internal/config"
	"github.com/eventdesk/eventdesk/internal/httpclient"
	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage client configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigInitCmd(a),
		newConfigSetServerCmd(a),
		newConfigSetTimeoutCmd(a),
	)

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg := a.cfg

			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"config_file":       path,
					"server_url":        cfg.ServerURL,
					"timeout":           cfg.Timeout.String(),
					"log_level":         cfg.LogLevel,
					"log_format":        cfg.LogFormat,
					"concurrent_writes": cfg.ConcurrentWrites,
					"proxy":             httpclient.Describe(cfg.Proxy),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file:       %s\n", path)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "                   (not created, using defaults)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Server URL:        %s\n", cfg.ServerURL)
			fmt.Fprintf(out, "Timeout:           %s\n", cfg.Timeout)
			fmt.Fprintf(out, "Log level:         %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "Log format:        %s\n", cfg.LogFormat)
			fmt.Fprintf(out, "Concurrent writes: %v\n", cfg.ConcurrentWrites)
			fmt.Fprintf(out, "Proxy:             %s\n", httpclient.Describe(cfg.Proxy))
			return nil
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}

			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigSetServerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL := config.NormalizeServerURL(args[0])
			if err := config.ValidateServerURL(serverURL); err != nil {
				return err
			}

			return updateConfigFile(a, func(cfg *config.Config) {
				cfg.ServerURL = serverURL
			}, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "Server URL set to: %s\n", serverURL)
			})
		},
	}
}

func newConfigSetTimeoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-timeout <duration>",
		Short: "Set the per-request timeout (for example 5s)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			if timeout <= 0 {
				return errors.New("timeout must be positive")
			}

			return updateConfigFile(a, func(cfg *config.Config) {
				cfg.Timeout = timeout
			}, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "Timeout set to: %s\n", timeout)
			})
		},
	}
}

// updateConfigFile edits the config file itself, without environment or
// flag overrides.
func updateConfigFile(a *app, mutate func(*config.Config), done func()) error {
	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mutate(cfg)

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	done()
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	return render.JSON(cmd.OutOrStdout(), v)
}
