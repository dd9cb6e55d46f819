// Package stats computes dashboard aggregates over fetched collections.
package stats

import (
	"sort"
	"time"

	"github.com/eventdesk/eventdesk/internal/models"
)

// DefaultUpcomingLimit is the number of upcoming events shown on the dashboard.
const DefaultUpcomingLimit = 5

// Stats holds dashboard counters.
type Stats struct {
	TotalEvents       int `json:"totalEvents"`
	TotalParticipants int `json:"totalParticipants"`
	AvailableEvents   int `json:"availableEvents"`
	TotalOrganizers   int `json:"totalOrganizers"`
	UpcomingEvents    int `json:"upcomingEvents"`
	CancelledEvents   int `json:"cancelledEvents"`
}

// Compute reduces the two collections to dashboard counters.
func Compute(events []models.Event, participants []models.Participant, now time.Time) Stats {
	s := Stats{
		TotalEvents:       len(events),
		TotalParticipants: len(participants),
	}

	for i := range events {
		e := &events[i]
		if e.IsAvailable() {
			s.AvailableEvents++
		}
		if e.IsUpcoming(now) {
			s.UpcomingEvents++
		}
		if e.Cancelled {
			s.CancelledEvents++
		}
	}

	for i := range participants {
		if participants[i].Organizer {
			s.TotalOrganizers++
		}
	}

	return s
}

// Upcoming returns the upcoming events ordered by date, at most limit of them.
// A limit of zero or less returns all of them.
func Upcoming(events []models.Event, now time.Time, limit int) []models.Event {
	var out []models.Event
	for i := range events {
		if events[i].IsUpcoming(now) {
			out = append(out, events[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
