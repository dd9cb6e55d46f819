package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eventdesk/eventdesk/internal/models"
)

func participantPath(id string) string {
	return participantsPath + "/" + url.PathEscape(id)
}

// ListParticipants returns every participant.
func (c *Client) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var participants []models.Participant
	if _, err := c.Request(ctx, participantsPath, RequestOptions{}, &participants); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// GetParticipant returns a single participant.
func (c *Client) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	var p models.Participant
	if _, err := c.Request(ctx, participantPath(id), RequestOptions{}, &p); err != nil {
		return nil, fmt.Errorf("get participant %s: %w", id, err)
	}
	return &p, nil
}

// SearchParticipantsByName asks the server for participants matching name.
func (c *Client) SearchParticipantsByName(ctx context.Context, name string) ([]models.Participant, error) {
	query := url.Values{"nom": {name}}
	var participants []models.Participant
	if _, err := c.Request(ctx, participantsPath+"/recherche?"+query.Encode(), RequestOptions{}, &participants); err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	return participants, nil
}

// CreateParticipant registers a regular participant.
func (c *Client) CreateParticipant(ctx context.Context, req *models.ParticipantRequest) (*models.Participant, error) {
	var p models.Participant
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	if err := c.write(ctx, participantsPath, participantsPath, opts, &p); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return &p, nil
}

// CreateOrganizer registers a participant flagged as organizer.
func (c *Client) CreateOrganizer(ctx context.Context, req *models.ParticipantRequest) (*models.Participant, error) {
	var p models.Participant
	opts := RequestOptions{Method: http.MethodPost, Body: req}
	if err := c.write(ctx, participantsPath, participantsPath+"/organisateurs", opts, &p); err != nil {
		return nil, fmt.Errorf("create organizer: %w", err)
	}
	return &p, nil
}

// UpdateParticipant replaces a participant and returns the stored version.
func (c *Client) UpdateParticipant(ctx context.Context, id string, req *models.ParticipantRequest) (*models.Participant, error) {
	var p models.Participant
	opts := RequestOptions{Method: http.MethodPut, Body: req}
	if err := c.write(ctx, participantPath(id), participantPath(id), opts, &p); err != nil {
		return nil, fmt.Errorf("update participant %s: %w", id, err)
	}
	return &p, nil
}

// DeleteParticipant removes a participant.
func (c *Client) DeleteParticipant(ctx context.Context, id string) error {
	if err := c.write(ctx, participantPath(id), participantPath(id), RequestOptions{Method: http.MethodDelete}, nil); err != nil {
		return fmt.Errorf("delete participant %s: %w", id, err)
	}
	return nil
}
