// Package state holds the client-side view of the events API: the two cached
// collections, local search over them, and their offline snapshot.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/stats"
)

// Snapshot is an immutable copy of the cached collections.
type Snapshot struct {
	Events               []models.Event       `json:"evenements"`
	Participants         []models.Participant `json:"participants"`
	EventsLoadedAt       time.Time            `json:"eventsLoadedAt"`
	ParticipantsLoadedAt time.Time            `json:"participantsLoadedAt"`
}

// Stats reduces the snapshot to dashboard counters.
func (s Snapshot) Stats(now time.Time) stats.Stats {
	return stats.Compute(s.Events, s.Participants, now)
}

// Empty reports whether neither collection has ever been loaded.
func (s Snapshot) Empty() bool {
	return s.EventsLoadedAt.IsZero() && s.ParticipantsLoadedAt.IsZero()
}

// Store owns the cached events and participants. Each collection is only
// ever replaced as a whole.
type Store struct {
	mu             sync.RWMutex
	events         []models.Event
	participants   []models.Participant
	eventsAt       time.Time
	participantsAt time.Time
	now            func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// ReplaceEvents swaps in a new events collection.
func (s *Store) ReplaceEvents(events []models.Event) {
	events = slices.Clone(events)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.eventsAt = s.now()
}

// ReplaceParticipants swaps in a new participants collection.
func (s *Store) ReplaceParticipants(participants []models.Participant) {
	participants = slices.Clone(participants)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = participants
	s.participantsAt = s.now()
}

// Restore replaces both collections with a saved snapshot, keeping its timestamps.
func (s *Store) Restore(snap Snapshot) {
	events := slices.Clone(snap.Events)
	participants := slices.Clone(snap.Participants)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.participants = participants
	s.eventsAt = snap.EventsLoadedAt
	s.participantsAt = snap.ParticipantsLoadedAt
}

// Snapshot returns a copy of the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Events:               slices.Clone(s.events),
		Participants:         slices.Clone(s.participants),
		EventsLoadedAt:       s.eventsAt,
		ParticipantsLoadedAt: s.participantsAt,
	}
}

// SearchEvents returns the cached events whose name or location contains term.
func (s *Store) SearchEvents(term string) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterEvents(s.events, term)
}

// SearchParticipants returns the cached participants whose name or email contains term.
func (s *Store) SearchParticipants(term string) []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterParticipants(s.participants, term)
}
