package models

import (
	"errors"
	"strings"
	"time"
)

// EventType discriminates between the event variants served by the API.
type EventType string

const (
	// EventTypeConference is a conference with a theme and speakers.
	EventTypeConference EventType = "CONFERENCE"
	// EventTypeConcert is a concert with a performer and a musical genre.
	EventTypeConcert EventType = "CONCERT"
)

// IsValid returns true if the event type is known.
func (t EventType) IsValid() bool {
	return t == EventTypeConference || t == EventTypeConcert
}

// ParseEventType parses a case-insensitive event type name.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", errors.New("event type must be CONFERENCE or CONCERT")
	}
	return t, nil
}

// Event is a schedulable item with a capacity, as returned by the API.
type Event struct {
	ID               string    `json:"id,omitempty"`
	Name             string    `json:"nom"`
	Date             LocalTime `json:"date"`
	Location         string    `json:"lieu"`
	Capacity         int       `json:"capaciteMax"`
	ParticipantCount int       `json:"nombreParticipants"`
	Cancelled        bool      `json:"annule"`
	Type             EventType `json:"type"`

	// Conference fields.
	Theme    string   `json:"theme,omitempty"`
	Speakers []string `json:"intervenants,omitempty"`

	// Concert fields.
	Performer string `json:"artiste,omitempty"`
	Genre     string `json:"genreMusical,omitempty"`
}

// IsFull returns true when the participant count has reached capacity.
func (e *Event) IsFull() bool {
	return e.ParticipantCount >= e.Capacity
}

// IsAvailable returns true when the event is not cancelled and has free seats.
func (e *Event) IsAvailable() bool {
	return !e.Cancelled && e.ParticipantCount < e.Capacity
}

// IsUpcoming returns true when the event is dated strictly after now and not cancelled.
func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.Cancelled && e.Date.After(now)
}

// RemainingSeats returns the number of free seats, never negative.
func (e *Event) RemainingSeats() int {
	if e.ParticipantCount >= e.Capacity {
		return 0
	}
	return e.Capacity - e.ParticipantCount
}

// eventFields holds the fields shared by the creation payloads.
type eventFields struct {
	Name     string    `json:"nom"`
	Date     LocalTime `json:"date"`
	Location string    `json:"lieu"`
	Capacity int       `json:"capaciteMax"`
	Type     EventType `json:"type"`
}

func (f *eventFields) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("name is required")
	}
	if f.Date.IsZero() {
		return errors.New("date is required")
	}
	if strings.TrimSpace(f.Location) == "" {
		return errors.New("location is required")
	}
	if f.Capacity <= 0 {
		return errors.New("capacity must be greater than zero")
	}
	return nil
}

// ConferenceRequest is the payload for creating a conference.
type ConferenceRequest struct {
	eventFields
	Theme string `json:"theme"`
	// Speakers is sent as an empty list on creation; the server links
	// speakers separately.
	Speakers []Participant `json:"intervenants"`
}

// NewConferenceRequest builds a conference payload.
func NewConferenceRequest(name string, date time.Time, location string, capacity int, theme string) *ConferenceRequest {
	return &ConferenceRequest{
		eventFields: eventFields{
			Name:     name,
			Date:     NewLocalTime(date),
			Location: location,
			Capacity: capacity,
			Type:     EventTypeConference,
		},
		Theme:    theme,
		Speakers: []Participant{},
	}
}

// Validate checks the fields required to create a conference.
func (r *ConferenceRequest) Validate() error {
	if err := r.eventFields.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Theme) == "" {
		return errors.New("theme is required for a conference")
	}
	return nil
}

// ConcertRequest is the payload for creating a concert.
type ConcertRequest struct {
	eventFields
	Performer string `json:"artiste"`
	Genre     string `json:"genreMusical"`
}

// NewConcertRequest builds a concert payload.
func NewConcertRequest(name string, date time.Time, location string, capacity int, performer, genre string) *ConcertRequest {
	return &ConcertRequest{
		eventFields: eventFields{
			Name:     name,
			Date:     NewLocalTime(date),
			Location: location,
			Capacity: capacity,
			Type:     EventTypeConcert,
		},
		Performer: performer,
		Genre:     genre,
	}
}

// Validate checks the fields required to create a concert.
func (r *ConcertRequest) Validate() error {
	if err := r.eventFields.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Performer) == "" {
		return errors.New("performer is required for a concert")
	}
	if strings.TrimSpace(r.Genre) == "" {
		return errors.New("genre is required for a concert")
	}
	return nil
}

// Validate checks an event before it is sent as an update.
func (e *Event) Validate() error {
	fields := eventFields{
		Name:     e.Name,
		Date:     e.Date,
		Location: e.Location,
		Capacity: e.Capacity,
		Type:     e.Type,
	}
	if err := fields.validate(); err != nil {
		return err
	}
	switch e.Type {
	case EventTypeConference:
		if strings.TrimSpace(e.Theme) == "" {
			return errors.New("theme is required for a conference")
		}
	case EventTypeConcert:
		if strings.TrimSpace(e.Performer) == "" || strings.TrimSpace(e.Genre) == "" {
			return errors.New("performer and genre are required for a concert")
		}
	default:
		return errors.New("event type must be CONFERENCE or CONCERT")
	}
	return nil
}
