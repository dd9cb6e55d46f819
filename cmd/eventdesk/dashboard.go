package main

import (
	"context"
	"errors"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/eventdesk/eventdesk/internal/stats"
	"github.com/spf13/cobra"
)

var errNoOfflineData = errors.New("no offline snapshot available; run 'eventdesk dashboard' while connected first")

func newDashboardCmd(a *app) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show counters and the next upcoming events",
		Long: `Show the dashboard: aggregate counters and the next upcoming events.

Every successful load is saved locally. When the API cannot be reached the
last saved data is shown instead, and --offline shows it without trying.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := buildDashboard(cmd.Context(), a, offline)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, view)
			}
			return render.Dashboard(cmd.OutOrStdout(), a.styles, view)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Show the saved snapshot without contacting the API")

	return cmd
}

func buildDashboard(ctx context.Context, a *app, offline bool) (render.DashboardView, error) {
	var view render.DashboardView

	snapshots, err := a.openSnapshots()
	if err != nil {
		a.logger.Warn().Err(err).Msg("snapshot store unavailable")
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	var (
		saved    state.Snapshot
		savedAt  time.Time
		hasSaved bool
	)
	if snapshots != nil {
		saved, savedAt, err = snapshots.Load(ctx)
		switch {
		case err == nil:
			hasSaved = true
		case !errors.Is(err, state.ErrNoSnapshot):
			a.logger.Warn().Err(err).Msg("read snapshot failed")
		}
	}

	store := state.NewStore()
	if hasSaved {
		store.Restore(saved)
	}

	if offline {
		if !hasSaved {
			return view, errNoOfflineData
		}
		view.Offline = true
		view.AsOf = savedAt
	} else {
		c, err := a.apiClient()
		if err != nil {
			return view, err
		}

		start := time.Now()
		loadErr := state.NewLoader(c, store, a.logger).Load(ctx)
		current := store.Snapshot()
		eventsFresh := !current.EventsLoadedAt.Before(start)
		participantsFresh := !current.ParticipantsLoadedAt.Before(start)

		switch {
		case loadErr == nil:
			view.AsOf = time.Now()
			if snapshots != nil {
				if err := snapshots.Save(ctx, current); err != nil {
					a.logger.Warn().Err(err).Msg("save snapshot failed")
				}
			}
		case !eventsFresh && !participantsFresh:
			if !hasSaved {
				return view, loadErr
			}
			view.Offline = true
			view.AsOf = savedAt
			view.Warnings = append(view.Warnings, "Showing saved data. "+apierr.UserMessageOf(loadErr))
		default:
			view.AsOf = time.Now()
			if !eventsFresh {
				view.Warnings = append(view.Warnings, "Events could not be refreshed. "+apierr.UserMessageOf(loadErr))
			}
			if !participantsFresh {
				view.Warnings = append(view.Warnings, "Participants could not be refreshed. "+apierr.UserMessageOf(loadErr))
			}
		}
	}

	snap := store.Snapshot()
	now := time.Now()
	view.Stats = snap.Stats(now)
	view.Upcoming = stats.Upcoming(snap.Events, now, stats.DefaultUpcomingLimit)
	if view.Upcoming == nil {
		view.Upcoming = []models.Event{}
	}
	return view, nil
}
