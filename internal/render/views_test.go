package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/client"
	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Render(t *testing.T) {
	tbl := NewTable("Things", "ID", "NAME")
	tbl.AddRow("1", "short")
	tbl.AddRow("2", "a much longer name", "dropped")
	tbl.AddRow("3")

	out := tbl.Render(DefaultStyles(), "nothing")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Things")
	assert.Contains(t, lines[1], "NAME")
	assert.True(t, strings.HasPrefix(lines[2], "---"))
	assert.Contains(t, lines[4], "a much longer name")
	assert.NotContains(t, out, "dropped")
}

func TestTable_RenderEmpty(t *testing.T) {
	out := NewTable("", "ID").Render(DefaultStyles(), "No rows.")
	assert.Equal(t, "No rows.\n", out)
}

func TestEventStatus(t *testing.T) {
	tests := []struct {
		event models.Event
		want  string
	}{
		{models.Event{Capacity: 10, ParticipantCount: 3}, StatusAvailable},
		{models.Event{Capacity: 10, ParticipantCount: 10}, StatusFull},
		{models.Event{Capacity: 10, ParticipantCount: 10, Cancelled: true}, StatusCancelled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EventStatus(&tt.event))
	}
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	events := []models.Event{
		{
			ID:               "e1",
			Name:             "GoConf",
			Type:             models.EventTypeConference,
			Date:             models.NewLocalTime(time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)),
			Location:         "Lyon",
			Capacity:         100,
			ParticipantCount: 42,
		},
	}

	require.NoError(t, Events(&buf, DefaultStyles(), "Events", events))
	out := buf.String()
	assert.Contains(t, out, "GoConf")
	assert.Contains(t, out, "conference")
	assert.Contains(t, out, "2026-05-01 09:30")
	assert.Contains(t, out, "42/100")
	assert.Contains(t, out, StatusAvailable)
}

func TestEventDetail_Concert(t *testing.T) {
	var buf bytes.Buffer
	e := &models.Event{
		ID: "e2", Name: "Nuit Jazz", Type: models.EventTypeConcert,
		Capacity: 10, ParticipantCount: 4, Performer: "Trio K", Genre: "Jazz",
	}

	require.NoError(t, EventDetail(&buf, DefaultStyles(), e))
	out := buf.String()
	assert.Contains(t, out, "Trio K")
	assert.Contains(t, out, "6 seats left")
	assert.NotContains(t, out, "Theme")
}

func TestParticipants(t *testing.T) {
	var buf bytes.Buffer
	ps := []models.Participant{
		{ID: "p1", Name: "Alice", Email: "alice@example.com", Organizer: true, EnrolledEventIDs: []string{"e1", "e2"}},
		{ID: "p2", Name: "Bob", Email: "bob@example.com"},
	}

	require.NoError(t, Participants(&buf, DefaultStyles(), "", ps))
	out := buf.String()
	assert.Contains(t, out, "organizer")
	assert.Contains(t, out, "bob@example.com")
}

func TestParticipantDetail(t *testing.T) {
	var buf bytes.Buffer
	p := &models.Participant{ID: "p1", Name: "Alice", Organizer: true, OrganizedEventIDs: []string{"e9"}}

	require.NoError(t, ParticipantDetail(&buf, DefaultStyles(), p))
	assert.Contains(t, buf.String(), "Organizes")
	assert.Contains(t, buf.String(), "e9")
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	view := DashboardView{
		Stats:    stats.Stats{TotalEvents: 3, AvailableEvents: 1, CancelledEvents: 1},
		Offline:  true,
		AsOf:     time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local),
		Warnings: []string{"Participants could not be refreshed."},
	}

	require.NoError(t, Dashboard(&buf, DefaultStyles(), view))
	out := buf.String()
	assert.Contains(t, out, "Dashboard (offline)")
	assert.Contains(t, out, "as of 2026-01-05 10:00")
	assert.Contains(t, out, "Participants could not be refreshed.")
	assert.Contains(t, out, "Available events")
	assert.Contains(t, out, "No events.")
}

func TestConnection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Connection(&buf, DefaultStyles(), "http://localhost:8080/api", client.ConnectionResult{
		Connected: true,
		Duration:  12 * time.Millisecond,
	}))
	assert.Contains(t, buf.String(), "connected to http://localhost:8080/api in 12ms")

	buf.Reset()
	require.NoError(t, Connection(&buf, DefaultStyles(), "http://localhost:8080/api", client.ConnectionResult{
		Duration: time.Second,
		Error:    apierr.Network(apierr.MsgConnection, errors.New("refused")),
	}))
	assert.Contains(t, buf.String(), "unreachable")
	assert.Contains(t, buf.String(), apierr.UserMsgUnreachable)
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	Error(&buf, DefaultStyles(), apierr.New(404, "Not Found", nil))
	assert.Contains(t, buf.String(), apierr.UserMsgNotFound)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, DashboardView{Stats: stats.Stats{TotalEvents: 2}}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(2), decoded["stats"].(map[string]any)["totalEvents"])
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, DefaultStyles(), stats.Stats{TotalParticipants: 7, TotalOrganizers: 2}))
	out := buf.String()
	assert.Contains(t, out, "Statistics")
	assert.Contains(t, out, "Participants")
	assert.Contains(t, out, "7")
	assert.NotContains(t, out, "Upcoming\n")
}
