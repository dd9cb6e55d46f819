package main

import (
	"fmt"

	"github.com/eventdesk/eventdesk/internal/models"
	"github.com/eventdesk/eventdesk/internal/render"
	"github.com/eventdesk/eventdesk/internal/state"
	"github.com/spf13/cobra"
)

func newParticipantsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "participants",
		Aliases: []string{"participant"},
		Short:   "List and manage participants",
	}

	cmd.AddCommand(
		newParticipantsListCmd(a),
		newParticipantsGetCmd(a),
		newParticipantsSearchCmd(a),
		newParticipantsCreateCmd(a),
		newParticipantsUpdateCmd(a),
		newParticipantsDeleteCmd(a),
	)

	return cmd
}

func (a *app) writeParticipants(cmd *cobra.Command, title string, participants []models.Participant) error {
	if a.jsonOutput() {
		if participants == nil {
			participants = []models.Participant{}
		}
		return writeJSON(cmd, participants)
	}
	return render.Participants(cmd.OutOrStdout(), a.styles, title, participants)
}

func (a *app) writeParticipant(cmd *cobra.Command, p *models.Participant) error {
	if a.jsonOutput() {
		return writeJSON(cmd, p)
	}
	return render.ParticipantDetail(cmd.OutOrStdout(), a.styles, p)
}

func newParticipantsListCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			participants, err := c.ListParticipants(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeParticipants(cmd, "Participants", state.FilterParticipants(participants, filter))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show participants whose name or email contains this text")

	return cmd
}

func newParticipantsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			p, err := c.GetParticipant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeParticipant(cmd, p)
		},
	}
}

func newParticipantsSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Search participants by name on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			participants, err := c.SearchParticipantsByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeParticipants(cmd, fmt.Sprintf("Participants matching %q", args[0]), participants)
		},
	}
}

func newParticipantsCreateCmd(a *app) *cobra.Command {
	var (
		name      string
		email     string
		organizer bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a participant or an organizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.ParticipantRequest{Name: name, Email: email, Organizer: organizer}
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := a.apiClient()
			if err != nil {
				return err
			}

			var p *models.Participant
			if organizer {
				p, err = c.CreateOrganizer(cmd.Context(), req)
			} else {
				p, err = c.CreateParticipant(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return a.writeParticipant(cmd, p)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().BoolVar(&organizer, "organizer", false, "Create an organizer")

	return cmd
}

func newParticipantsUpdateCmd(a *app) *cobra.Command {
	var (
		name      string
		email     string
		organizer bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a participant; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			current, err := c.GetParticipant(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			req := &models.ParticipantRequest{
				Name:      current.Name,
				Email:     current.Email,
				Organizer: current.Organizer,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = name
			}
			if flags.Changed("email") {
				req.Email = email
			}
			if flags.Changed("organizer") {
				req.Organizer = organizer
			}
			if err := req.Validate(); err != nil {
				return err
			}

			updated, err := c.UpdateParticipant(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.writeParticipant(cmd, updated)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().BoolVar(&organizer, "organizer", false, "Organizer flag")

	return cmd
}

func newParticipantsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.DeleteParticipant(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Participant %s deleted.\n", args[0])
			return nil
		},
	}
}
