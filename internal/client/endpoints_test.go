package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// routeRecorder answers every call with a fixed body and records what it saw.
type routeRecorder struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (rr *routeRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	rr.mu.Lock()
	rr.requests = append(rr.requests, capturedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Query:  r.URL.RawQuery,
		Body:   body,
	})
	rr.mu.Unlock()

	status := rr.status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.WriteHeader(status)
	io.WriteString(w, rr.body)
}

func (rr *routeRecorder) last(t *testing.T) capturedRequest {
	t.Helper()
	rr.mu.Lock()
	defer rr.mu.Unlock()
	require.NotEmpty(t, rr.requests)
	return rr.requests[len(rr.requests)-1]
}

func TestEventEndpoints(t *testing.T) {
	date := time.Date(2026, 6, 21, 20, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		status     int
		body       string
		call       func(ctx context.Context, c *Client) error
		wantMethod string
		wantPath   string
		wantQuery  string
		check      func(t *testing.T, req capturedRequest)
	}{
		{
			name:       "list",
			body:       `[]`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListEvents(ctx); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/evenements",
		},
		{
			name:       "get escapes id",
			body:       `{"id":"a/b"}`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.GetEvent(ctx, "a/b"); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/evenements/a%2Fb",
		},
		{
			name:       "available",
			body:       `[]`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListAvailableEvents(ctx); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/evenements/disponibles",
		},
		{
			name: "search encodes location",
			body: `[]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.SearchEventsByLocation(ctx, "Saint-Étienne & co")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/evenements/recherche",
			wantQuery:  "lieu=Saint-%C3%89tienne+%26+co",
		},
		{
			name:   "create conference",
			status: http.StatusCreated,
			body:   `{"id":"e1","type":"CONFERENCE"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.CreateConference(ctx, models.NewConferenceRequest("GoConf", date, "Lyon", 120, "Concurrency"))
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/evenements/conferences",
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "GoConf", req.Body["nom"])
				assert.Equal(t, "2026-06-21T20:00:00", req.Body["date"])
				assert.Equal(t, "CONFERENCE", req.Body["type"])
				assert.Equal(t, "Concurrency", req.Body["theme"])
				assert.Equal(t, []any{}, req.Body["intervenants"])
			},
		},
		{
			name:   "create concert",
			status: http.StatusCreated,
			body:   `{"id":"e2","type":"CONCERT"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.CreateConcert(ctx, models.NewConcertRequest("Nuit Jazz", date, "Paris", 300, "Trio K", "Jazz"))
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/evenements/concerts",
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "CONCERT", req.Body["type"])
				assert.Equal(t, "Trio K", req.Body["artiste"])
				assert.Equal(t, "Jazz", req.Body["genreMusical"])
			},
		},
		{
			name: "update",
			body: `{"id":"e1","nom":"GoConf 2"}`,
			call: func(ctx context.Context, c *Client) error {
				updated, err := c.UpdateEvent(ctx, "e1", &models.Event{ID: "e1", Name: "GoConf 2", Capacity: 10})
				if err == nil && updated.Name != "GoConf 2" {
					t.Errorf("updated name = %q", updated.Name)
				}
				return err
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/evenements/e1",
			check: func(t *testing.T, req capturedRequest) {
				assert.Equal(t, "GoConf 2", req.Body["nom"])
			},
		},
		{
			name:       "delete",
			status:     http.StatusNoContent,
			call:       func(ctx context.Context, c *Client) error { return c.DeleteEvent(ctx, "e1") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/evenements/e1",
		},
		{
			name:       "cancel",
			call:       func(ctx context.Context, c *Client) error { return c.CancelEvent(ctx, "e1") },
			wantMethod: http.MethodPut,
			wantPath:   "/api/evenements/e1/annuler",
		},
		{
			name:       "enroll",
			call:       func(ctx context.Context, c *Client) error { return c.EnrollParticipant(ctx, "e1", "p1") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/evenements/e1/participants/p1",
		},
		{
			name:       "unenroll",
			call:       func(ctx context.Context, c *Client) error { return c.UnenrollParticipant(ctx, "e1", "p1") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/evenements/e1/participants/p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &routeRecorder{status: tt.status, body: tt.body}
			server := httptest.NewServer(rec)
			defer server.Close()

			c := newTestClient(t, server.URL, nil)
			require.NoError(t, tt.call(context.Background(), c))

			req := rec.last(t)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantQuery, req.Query)
			if tt.check != nil {
				tt.check(t, req)
			}
		})
	}
}

func TestParticipantEndpoints(t *testing.T) {
	alice := &models.ParticipantRequest{Name: "Alice", Email: "alice@example.com"}

	tests := []struct {
		name       string
		status     int
		body       string
		call       func(ctx context.Context, c *Client) error
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{
			name:       "list",
			body:       `[]`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListParticipants(ctx); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/participants",
		},
		{
			name:       "get",
			body:       `{"id":"p1"}`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.GetParticipant(ctx, "p1"); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/api/participants/p1",
		},
		{
			name: "search encodes name",
			body: `[]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.SearchParticipantsByName(ctx, "Zoé D")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/participants/recherche",
			wantQuery:  "nom=Zo%C3%A9+D",
		},
		{
			name:       "create",
			status:     http.StatusCreated,
			body:       `{"id":"p1","nom":"Alice"}`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.CreateParticipant(ctx, alice); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/participants",
		},
		{
			name:       "create organizer",
			status:     http.StatusCreated,
			body:       `{"id":"p2","nom":"Alice","organisateur":true}`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.CreateOrganizer(ctx, alice); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/api/participants/organisateurs",
		},
		{
			name:       "update",
			body:       `{"id":"p1","nom":"Alice"}`,
			call:       func(ctx context.Context, c *Client) error { _, err := c.UpdateParticipant(ctx, "p1", alice); return err },
			wantMethod: http.MethodPut,
			wantPath:   "/api/participants/p1",
		},
		{
			name:       "delete",
			status:     http.StatusNoContent,
			call:       func(ctx context.Context, c *Client) error { return c.DeleteParticipant(ctx, "p1") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/participants/p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &routeRecorder{status: tt.status, body: tt.body}
			server := httptest.NewServer(rec)
			defer server.Close()

			c := newTestClient(t, server.URL, nil)
			require.NoError(t, tt.call(context.Background(), c))

			req := rec.last(t)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, tt.wantQuery, req.Query)
		})
	}
}

func TestTypedCalls_WrapAPIError(t *testing.T) {
	rec := &routeRecorder{status: http.StatusNotFound, body: `{"message":"Événement non trouvé"}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	_, err := c.GetEvent(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get event missing")

	apiErr := toAPIError(err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Événement non trouvé", apiErr.Message)
}
