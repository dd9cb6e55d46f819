package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/models"
)

const (
	eventsPath       = "/evenements"
	participantsPath = "/participants"
)

func eventPath(id string) string {
	return eventsPath + "/" + url.PathEscape(id)
}

func enrollmentPath(eventID, participantID string) string {
	return eventPath(eventID) + participantsPath + "/" + url.PathEscape(participantID)
}

// write runs a mutating call while holding the lock for key.
func (c *Client) write(ctx context.Context, key, endpoint string, opts RequestOptions, out any) error {
	if c.writes != nil {
		unlock, err := c.writes.Lock(ctx, key)
		if err != nil {
			return apierr.FromTransport(err)
		}
		defer unlock()
	}
	_, err := c.Request(ctx, endpoint, opts, out)
	return err
}

// ListEvents returns every event.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if _, err := c.Request(ctx, eventsPath, RequestOptions{}, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if _, err := c.Request(ctx, eventPath(id), RequestOptions{}, &event); err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &event, nil
}

// ListAvailableEvents returns events that are neither cancelled nor full.
func (c *Client) ListAvailableEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if _, err := c.Request(ctx, eventsPath+"/disponibles", RequestOptions{}, &events); err != nil {
		return nil, fmt.Errorf("list available events: %w", err)
	}
	return events, nil
}

// SearchEventsByLocation asks the server for events at location.
func (c *Client) SearchEventsByLocation(ctx context.Context, location string) ([]models.Event, error) {
	query := url.Values{"lieu": {location}}
	var events []models.Event
	if _, err := c.Request(ctx, eventsPath+"/recherche?"+query.Encode(), RequestOptions{}, &events); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

// CreateConference creates a conference and returns the stored event.
func (c *Client) CreateConference(ctx context.Context, req *models.ConferenceRequest) (*models.Event, error) {
	var event models.Event
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	if err := c.write(ctx, eventsPath, eventsPath+"/conferences", opts, &event); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}
	return &event, nil
}

// CreateConcert creates a concert and returns the stored event.
func (c *Client) CreateConcert(ctx context.Context, req *models.ConcertRequest) (*models.Event, error) {
	var event models.Event
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	if err := c.write(ctx, eventsPath, eventsPath+"/concerts", opts, &event); err != nil {
		return nil, fmt.Errorf("create concert: %w", err)
	}
	return &event, nil
}

// UpdateEvent replaces an event and returns the stored version.
func (c *Client) UpdateEvent(ctx context.Context, id string, event *models.Event) (*models.Event, error) {
	var updated models.Event
	opts := RequestOptions{Method: http.MethodPut, Body: event}
	if err := c.write(ctx, eventPath(id), eventPath(id), opts, &updated); err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.write(ctx, eventPath(id), eventPath(id), RequestOptions{Method: http.MethodDelete}, nil); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// CancelEvent marks an event as cancelled.
func (c *Client) CancelEvent(ctx context.Context, id string) error {
	if err := c.write(ctx, eventPath(id), eventPath(id)+"/annuler", RequestOptions{Method: http.MethodPut}, nil); err != nil {
		return fmt.Errorf("cancel event %s: %w", id, err)
	}
	return nil
}

// EnrollParticipant registers a participant for an event.
func (c *Client) EnrollParticipant(ctx context.Context, eventID, participantID string) error {
	opts := RequestOptions{Method: http.MethodPost}
	if err := c.write(ctx, eventPath(eventID), enrollmentPath(eventID, participantID), opts, nil); err != nil {
		return fmt.Errorf("enroll participant %s in event %s: %w", participantID, eventID, err)
	}
	return nil
}

// UnenrollParticipant removes a participant from an event.
func (c *Client) UnenrollParticipant(ctx context.Context, eventID, participantID string) error {
	opts := RequestOptions{Method: http.MethodDelete}
	if err := c.write(ctx, eventPath(eventID), enrollmentPath(eventID, participantID), opts, nil); err != nil {
		return fmt.Errorf("unenroll participant %s from event %s: %w", participantID, eventID, err)
	}
	return nil
}
