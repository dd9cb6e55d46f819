package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/eventdesk/eventdesk/internal/apierr"
	"github.com/eventdesk/eventdesk/internal/client"
	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/stats"
)

// DateLayout is the display format for event dates.
const DateLayout = "2006-01-02 15:04"

// Event statuses shown in listings.
const (
	StatusAvailable = "available"
	StatusFull      = "full"
	StatusCancelled = "cancelled"
)

// EventStatus summarizes an event for display.
func EventStatus(e *models.Event) string {
	switch {
	case e.Cancelled:
		return StatusCancelled
	case e.IsFull():
		return StatusFull
	default:
		return StatusAvailable
	}
}

func formatDate(t models.LocalTime) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

func eventKind(e *models.Event) string {
	switch e.Type {
	case models.EventTypeConference:
		return "conference"
	case models.EventTypeConcert:
		return "concert"
	default:
		return strings.ToLower(string(e.Type))
	}
}

// Events writes an event listing.
func Events(w io.Writer, styles Styles, title string, events []models.Event) error {
	t := NewTable(title, "ID", "NAME", "TYPE", "DATE", "LOCATION", "SEATS", "STATUS")
	for i := range events {
		e := &events[i]
		t.AddRow(
			e.ID,
			e.Name,
			eventKind(e),
			formatDate(e.Date),
			e.Location,
			fmt.Sprintf("%d/%d", e.ParticipantCount, e.Capacity),
			EventStatus(e),
		)
	}
	_, err := io.WriteString(w, t.Render(styles, "No events."))
	return err
}

// EventDetail writes every field of one event.
func EventDetail(w io.Writer, styles Styles, e *models.Event) error {
	rows := [][2]string{
		{"ID", e.ID},
		{"Name", e.Name},
		{"Type", eventKind(e)},
		{"Date", formatDate(e.Date)},
		{"Location", e.Location},
		{"Participants", fmt.Sprintf("%d/%d (%d seats left)", e.ParticipantCount, e.Capacity, e.RemainingSeats())},
		{"Status", EventStatus(e)},
	}
	switch e.Type {
	case models.EventTypeConference:
		rows = append(rows, [2]string{"Theme", e.Theme})
		if len(e.Speakers) > 0 {
			rows = append(rows, [2]string{"Speakers", strings.Join(e.Speakers, ", ")})
		}
	case models.EventTypeConcert:
		rows = append(rows, [2]string{"Performer", e.Performer}, [2]string{"Genre", e.Genre})
	}
	return writeFields(w, styles, e.Name, rows)
}

// Participants writes a participant listing.
func Participants(w io.Writer, styles Styles, title string, participants []models.Participant) error {
	t := NewTable(title, "ID", "NAME", "EMAIL", "ROLE", "EVENTS")
	for i := range participants {
		p := &participants[i]
		role := "participant"
		if p.Organizer {
			role = "organizer"
		}
		t.AddRow(p.ID, p.Name, p.Email, role, strconv.Itoa(len(p.EnrolledEventIDs)))
	}
	_, err := io.WriteString(w, t.Render(styles, "No participants."))
	return err
}

// ParticipantDetail writes every field of one participant.
func ParticipantDetail(w io.Writer, styles Styles, p *models.Participant) error {
	role := "participant"
	if p.Organizer {
		role = "organizer"
	}
	rows := [][2]string{
		{"ID", p.ID},
		{"Name", p.Name},
		{"Email", p.Email},
		{"Role", role},
		{"Enrolled in", joinOrDash(p.EnrolledEventIDs)},
	}
	if p.Organizer {
		rows = append(rows, [2]string{"Organizes", joinOrDash(p.OrganizedEventIDs)})
	}
	return writeFields(w, styles, p.Name, rows)
}

// DashboardView is the data shown by the dashboard.
type DashboardView struct {
	Stats    stats.Stats    `json:"stats"`
	Upcoming []models.Event `json:"upcoming"`
	// Offline is set when the data comes from the saved snapshot.
	Offline bool      `json:"offline"`
	AsOf    time.Time `json:"asOf"`
	// Warnings are user-facing messages about data that could not be refreshed.
	Warnings []string `json:"warnings,omitempty"`
}

// Dashboard writes the counters and the next upcoming events.
func Dashboard(w io.Writer, styles Styles, view DashboardView) error {
	var sb strings.Builder

	header := "Dashboard"
	if view.Offline {
		header += " (offline)"
	}
	sb.WriteString(styles.Title.Render(header))
	sb.WriteString("\n")
	if !view.AsOf.IsZero() {
		sb.WriteString(styles.Muted.Render("as of " + view.AsOf.Local().Format(DateLayout)))
		sb.WriteString("\n")
	}
	for _, warning := range view.Warnings {
		sb.WriteString(styles.Warning.Render("! " + warning))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	writeCounters(&sb, styles, view.Stats)
	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	return Events(w, styles, "Upcoming", view.Upcoming)
}

// Stats writes the aggregate counters.
func Stats(w io.Writer, styles Styles, s stats.Stats) error {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Statistics"))
	sb.WriteString("\n")
	writeCounters(&sb, styles, s)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCounters(sb *strings.Builder, styles Styles, s stats.Stats) {
	counters := []struct {
		label string
		value int
	}{
		{"Events", s.TotalEvents},
		{"Participants", s.TotalParticipants},
		{"Available events", s.AvailableEvents},
		{"Organizers", s.TotalOrganizers},
		{"Upcoming events", s.UpcomingEvents},
		{"Cancelled events", s.CancelledEvents},
	}
	for _, c := range counters {
		fmt.Fprintf(sb, "  %-18s %s\n", c.label, styles.Value.Render(strconv.Itoa(c.value)))
	}
}

// Connection writes the result of a connectivity probe.
func Connection(w io.Writer, styles Styles, server string, result client.ConnectionResult) error {
	elapsed := result.Duration.Round(time.Millisecond)
	var line string
	if result.Connected {
		line = styles.Success.Render("connected") + fmt.Sprintf(" to %s in %s", server, elapsed)
	} else {
		line = styles.Error.Render("unreachable") + fmt.Sprintf(" %s after %s: %s", server, elapsed, apierr.UserMessageOf(result.Error))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Error writes the user-facing message for err.
func Error(w io.Writer, styles Styles, err error) {
	fmt.Fprintln(w, styles.Error.Render("Error: ")+apierr.UserMessageOf(err))
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFields(w io.Writer, styles Styles, title string, rows [][2]string) error {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	for _, r := range rows {
		sb.WriteString(styles.Muted.Render(fmt.Sprintf("  %-*s ", width, r[0])))
		sb.WriteString(r[1])
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
