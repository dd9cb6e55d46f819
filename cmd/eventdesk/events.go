package main

import (
	"fmt"
	"strings"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/spf13/cobra"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "List and manage events",
	}

	cmd.AddCommand(
		newEventsListCmd(a),
		newEventsGetCmd(a),
		newEventsAvailableCmd(a),
		newEventsSearchCmd(a),
		newEventsCreateConferenceCmd(a),
		newEventsCreateConcertCmd(a),
		newEventsUpdateCmd(a),
		newEventsDeleteCmd(a),
		newEventsCancelCmd(a),
		newEventsEnrollCmd(a),
		newEventsUnenrollCmd(a),
	)

	return cmd
}

// parseDate accepts the API layout and "YYYY-MM-DD HH:MM".
func parseDate(s string) (models.LocalTime, error) {
	return models.ParseLocalTime(strings.Replace(strings.TrimSpace(s), " ", "T", 1))
}

func (a *app) writeEvents(cmd *cobra.Command, title string, events []models.Event) error {
	if a.jsonOutput() {
		if events == nil {
			events = []models.Event{}
		}
		return writeJSON(cmd, events)
	}
	return render.Events(cmd.OutOrStdout(), a.styles, title, events)
}

func (a *app) writeEvent(cmd *cobra.Command, e *models.Event) error {
	if a.jsonOutput() {
		return writeJSON(cmd, e)
	}
	return render.EventDetail(cmd.OutOrStdout(), a.styles, e)
}

func newEventsListCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			events, err := c.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeEvents(cmd, "Events", state.FilterEvents(events, filter))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show events whose name or location contains this text")

	return cmd
}

func newEventsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			e, err := c.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeEvent(cmd, e)
		},
	}
}

func newEventsAvailableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List events that still have seats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			events, err := c.ListAvailableEvents(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeEvents(cmd, "Available events", events)
		},
	}
}

func newEventsSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <location>",
		Short: "Search events by location on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			events, err := c.SearchEventsByLocation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeEvents(cmd, fmt.Sprintf("Events in %q", args[0]), events)
		},
	}
}

// eventFlags are the fields shared by the create and update commands.
type eventFlags struct {
	name      string
	date      string
	location  string
	capacity  int
	theme     string
	performer string
	genre     string
}

func (f *eventFlags) register(cmd *cobra.Command, conference, concert bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Event name")
	cmd.Flags().StringVar(&f.date, "date", "", `Date and time, "YYYY-MM-DD HH:MM"`)
	cmd.Flags().StringVar(&f.location, "location", "", "Venue")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "Maximum number of participants")
	if conference {
		cmd.Flags().StringVar(&f.theme, "theme", "", "Conference theme")
	}
	if concert {
		cmd.Flags().StringVar(&f.performer, "performer", "", "Performing artist")
		cmd.Flags().StringVar(&f.genre, "genre", "", "Musical genre")
	}
}

func (f *eventFlags) parseDate() (models.LocalTime, error) {
	if f.date == "" {
		return models.LocalTime{}, nil
	}
	return parseDate(f.date)
}

func newEventsCreateConferenceCmd(a *app) *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "create-conference",
		Short: "Create a conference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := f.parseDate()
			if err != nil {
				return err
			}
			req := models.NewConferenceRequest(f.name, date.Time, f.location, f.capacity, f.theme)
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := a.apiClient()
			if err != nil {
				return err
			}
			e, err := c.CreateConference(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.writeEvent(cmd, e)
		},
	}

	f.register(cmd, true, false)

	return cmd
}

func newEventsCreateConcertCmd(a *app) *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "create-concert",
		Short: "Create a concert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := f.parseDate()
			if err != nil {
				return err
			}
			req := models.NewConcertRequest(f.name, date.Time, f.location, f.capacity, f.performer, f.genre)
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := a.apiClient()
			if err != nil {
				return err
			}
			e, err := c.CreateConcert(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.writeEvent(cmd, e)
		},
	}

	f.register(cmd, false, true)

	return cmd
}

func newEventsUpdateCmd(a *app) *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an event; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			e, err := c.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				e.Name = f.name
			}
			if flags.Changed("date") {
				date, err := parseDate(f.date)
				if err != nil {
					return err
				}
				e.Date = date
			}
			if flags.Changed("location") {
				e.Location = f.location
			}
			if flags.Changed("capacity") {
				e.Capacity = f.capacity
			}
			if flags.Changed("theme") {
				e.Theme = f.theme
			}
			if flags.Changed("performer") {
				e.Performer = f.performer
			}
			if flags.Changed("genre") {
				e.Genre = f.genre
			}
			if err := e.Validate(); err != nil {
				return err
			}

			updated, err := c.UpdateEvent(cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			return a.writeEvent(cmd, updated)
		},
	}

	f.register(cmd, true, true)

	return cmd
}

func newEventsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %s deleted.\n", args[0])
			return nil
		},
	}
}

func newEventsCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.CancelEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %s cancelled.\n", args[0])
			return nil
		},
	}
}

func newEventsEnrollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <event-id> <participant-id>",
		Short: "Enroll a participant in an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.EnrollParticipant(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Participant %s enrolled in event %s.\n", args[1], args[0])
			return nil
		},
	}
}

func newEventsUnenrollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unenroll <event-id> <participant-id>",
		Short: "Remove a participant from an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.UnenrollParticipant(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Participant %s removed from event %s.\n", args[1], args[0])
			return nil
		},
	}
}
