package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ParticipantRequest
		wantErr string
	}{
		{"valid", ParticipantRequest{Name: "Ada", Email: "ada@example.com"}, ""},
		{"trimmed", ParticipantRequest{Name: "  Ada ", Email: " ada@example.com "}, ""},
		{"missing name", ParticipantRequest{Email: "ada@example.com"}, "name is required"},
		{"missing email", ParticipantRequest{Name: "Ada"}, "email is required"},
		{"invalid email", ParticipantRequest{Name: "Ada", Email: "not-an-email"}, "email is not a valid address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestParticipantRequest_ValidateTrimsFields(t *testing.T) {
	req := ParticipantRequest{Name: "  Grace ", Email: " grace@example.com "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Grace", req.Name)
	assert.Equal(t, "grace@example.com", req.Email)
}

func TestParticipant_Decode(t *testing.T) {
	payload := `{
		"id": "p-1",
		"nom": "Grace",
		"email": "grace@example.com",
		"organisateur": true,
		"evenementsInscrits": ["e-1", "e-2"],
		"evenementsOrganises": ["e-3"]
	}`

	var p Participant
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	assert.True(t, p.Organizer)
	assert.Equal(t, []string{"e-1", "e-2"}, p.EnrolledEventIDs)
	assert.Equal(t, []string{"e-3"}, p.OrganizedEventIDs)
	assert.True(t, p.IsEnrolledIn("e-2"))
	assert.False(t, p.IsEnrolledIn("e-3"))
}
