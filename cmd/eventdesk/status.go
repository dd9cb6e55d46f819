package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "eventdesk %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the connection to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}

			result := c.TestConnection(cmd.Context())

			if a.jsonOutput() {
				payload := map[string]any{
					"server":      c.BaseURL(),
					"connected":   result.Connected,
					"duration_ms": result.Duration.Milliseconds(),
				}
				if result.Error != nil {
					payload["error"] = result.Error.UserMessage()
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
			} else if err := render.Connection(cmd.OutOrStdout(), a.styles, c.BaseURL(), result); err != nil {
				return err
			}

			if !result.Connected {
				return silentError{err: errors.New("server unreachable")}
			}
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counters computed from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}

			report := c.Stats(cmd.Context())
			if report.Error != nil {
				return report.Error
			}

			if a.jsonOutput() {
				return writeJSON(cmd, report.Stats)
			}
			return render.Stats(cmd.OutOrStdout(), a.styles, report.Stats)
		},
	}
}
