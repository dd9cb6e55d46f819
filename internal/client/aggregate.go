package client

import (
	"context"
	"fmt"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/stats"
	"golang.org/x/sync/errgroup"
)

const healthPath = "/test/health"

// StatsReport is the outcome of Stats. Error is set, and the counters are
// zero, when either collection could not be fetched.
type StatsReport struct {
	stats.Stats
	Error *apierr.Error `json:"-"`
}

// ConnectionResult is the outcome of a connectivity probe.
type ConnectionResult struct {
	Connected bool
	Duration  time.Duration
	Error     *apierr.Error
}

// Health calls the health endpoint. Its body is plain text and is not decoded.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.Request(ctx, healthPath, RequestOptions{}, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// FetchAll loads both collections concurrently. The first failure cancels the other call.
func (c *Client) FetchAll(ctx context.Context) ([]models.Event, []models.Participant, error) {
	var (
		events       []models.Event
		participants []models.Participant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = c.ListEvents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = c.ListParticipants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return events, participants, nil
}

// Stats fetches both collections and reduces them to dashboard counters.
// It never fails; a fetch error is reported in the result.
func (c *Client) Stats(ctx context.Context) StatsReport {
	events, participants, err := c.FetchAll(ctx)
	if err != nil {
		apiErr := toAPIError(err)
		c.logger.Error().Err(err).Msg("compute statistics failed")
		return StatsReport{Error: apiErr}
	}
	return StatsReport{Stats: stats.Compute(events, participants, c.now())}
}

// TestConnection probes the health endpoint and measures the elapsed time.
// It never fails; a probe error is reported in the result.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	start := time.Now()
	err := c.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Warn().Err(err).Dur("duration", elapsed).Msg("connection test failed")
		return ConnectionResult{Duration: elapsed, Error: toAPIError(err)}
	}

	c.logger.Info().Dur("duration", elapsed).Msg("connection test succeeded")
	return ConnectionResult{Connected: true, Duration: elapsed}
}
