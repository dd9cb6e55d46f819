package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Participant is a person record, optionally flagged as an organizer.
type Participant struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"nom"`
	Email             string   `json:"email"`
	Organizer         bool     `json:"organisateur"`
	EnrolledEventIDs  []string `json:"evenementsInscrits,omitempty"`
	OrganizedEventIDs []string `json:"evenementsOrganises,omitempty"`
}

// IsEnrolledIn returns true if the participant is enrolled in the given event.
func (p *Participant) IsEnrolledIn(eventID string) bool {
	for _, id := range p.EnrolledEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// ParticipantRequest is the payload for creating or updating a participant.
// Organizers are created through a dedicated endpoint; the flag is sent in
// both cases.
type ParticipantRequest struct {
	Name      string `json:"nom" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Organizer bool   `json:"organisateur"`
}

// Validate checks the participant name and email.
func (r *ParticipantRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Name":
				return errors.New("name is required")
			case "Email":
				if verrs[0].Tag() == "required" {
					return errors.New("email is required")
				}
				return errors.New("email is not a valid address")
			}
		}
		return err
	}
	return nil
}
