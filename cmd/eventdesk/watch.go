package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/eventdesk/eventdesk/internal/client"
	"github.com/eventdesk/eventdesk/internal/metrics"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/eventdesk/eventdesk/internal/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newWatchCmd(a *app) *cobra.Command {
	var (
		schedule    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the dashboard periodically and expose it as Prometheus metrics",
		Long: `Run until interrupted, refreshing events and participants on a schedule.

Each refresh probes the API, reloads both collections, updates the offline
snapshot and publishes the counters. With --metrics-addr the counters and
API call metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), a, cmd, schedule, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", watch.DefaultSchedule, `Cron expression or descriptor such as "@every 1m"`)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for the /metrics endpoint (disabled when empty)")

	return cmd
}

func runWatch(ctx context.Context, a *app, cmd *cobra.Command, schedule, metricsAddr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	a.opts = append(a.opts, client.WithObserver(m))
	c, err := a.apiClient()
	if err != nil {
		return err
	}

	deps := watch.Deps{
		Prober:  c,
		Store:   state.NewStore(),
		Metrics: m,
	}
	deps.Loader = state.NewLoader(c, deps.Store, a.logger)
	if snapshots, err := a.openSnapshots(); err != nil {
		a.logger.Warn().Err(err).Msg("snapshot store unavailable, refreshes will not be saved")
	} else {
		defer snapshots.Close()
		deps.Snapshots = snapshots
	}

	refresher := watch.New(watch.Config{Schedule: schedule}, deps, a.logger)

	var srv *http.Server
	if metricsAddr != "" {
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", metricsAddr, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
		}
		go func() {
			a.logger.Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error().Err(err).Msg("metrics server error")
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Metrics: http://%s/metrics\n", ln.Addr())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (%s). Press Ctrl+C to stop.\n", c.BaseURL(), schedule)

	if err := refresher.Start(ctx); err != nil {
		if srv != nil {
			_ = srv.Close()
		}
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	printRefresh(cmd, refresher.RefreshNow(ctx))

	<-ctx.Done()
	fmt.Fprintln(out, "Shutting down...")

	<-refresher.Stop().Done()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	return nil
}

func printRefresh(cmd *cobra.Command, res watch.Result) {
	out := cmd.OutOrStdout()
	switch {
	case res.Err == nil:
		fmt.Fprintf(out, "Loaded %d events and %d participants (%d upcoming).\n",
			res.Stats.TotalEvents, res.Stats.TotalParticipants, res.Stats.UpcomingEvents)
	case !res.Connected:
		fmt.Fprintln(out, "Server unreachable, will retry on schedule.")
	default:
		fmt.Fprintln(out, "Partial refresh, will retry on schedule.")
	}
}
