package state

import (
	"strings"
	"unicode"

	"github.com/eventdesk/eventdesk/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics so "Élodie" matches "elodie".
func fold(s string) string {
	// Transformers carry state; build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(fold(f), term) {
			return true
		}
	}
	return false
}

// FilterEvents returns events whose name or location contains term, ignoring
// case and accents. An empty term returns a copy of all events.
func FilterEvents(events []models.Event, term string) []models.Event {
	term = fold(strings.TrimSpace(term))
	out := make([]models.Event, 0, len(events))
	for i := range events {
		if term == "" || matches(term, events[i].Name, events[i].Location) {
			out = append(out, events[i])
		}
	}
	return out
}

// FilterParticipants returns participants whose name or email contains term,
// ignoring case and accents. An empty term returns a copy of all participants.
func FilterParticipants(participants []models.Participant, term string) []models.Participant {
	term = fold(strings.TrimSpace(term))
	out := make([]models.Participant, 0, len(participants))
	for i := range participants {
		if term == "" || matches(term, participants[i].Name, participants[i].Email) {
			out = append(out, participants[i])
		}
	}
	return out
}
