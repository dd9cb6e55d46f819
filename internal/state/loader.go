package state

import (
	"context"
	"errors"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source fetches the two collections. *client.Client satisfies it.
type Source interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
}

// Loader refreshes a Store from a Source.
type Loader struct {
	source Source
	store  *Store
	logger zerolog.Logger
}

// NewLoader creates a loader that fills store from source.
func NewLoader(source Source, store *Store, logger zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		store:  store,
		logger: logger.With().Str("component", "state_loader").Logger(),
	}
}

// Load fetches both collections concurrently and replaces each one that
// loaded. A collection that failed keeps its previous contents; the
// failures are returned joined.
func (l *Loader) Load(ctx context.Context) error {
	var (
		events          []models.Event
		participants    []models.Participant
		eventsErr       error
		participantsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		events, eventsErr = l.source.ListEvents(ctx)
		return nil
	})
	g.Go(func() error {
		participants, participantsErr = l.source.ListParticipants(ctx)
		return nil
	})
	_ = g.Wait()

	if eventsErr == nil {
		l.store.ReplaceEvents(events)
	} else {
		l.logger.Warn().Err(eventsErr).Msg("events not refreshed")
	}
	if participantsErr == nil {
		l.store.ReplaceParticipants(participants)
	} else {
		l.logger.Warn().Err(participantsErr).Msg("participants not refreshed")
	}

	if err := errors.Join(eventsErr, participantsErr); err != nil {
		return err
	}

	l.logger.Debug().
		Int("events", len(events)).
		Int("participants", len(participants)).
		Msg("state refreshed")
	return nil
}
