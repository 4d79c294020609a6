package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/spf13/cobra"
)

func newRosterCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the table roster",
	}

	cmd.AddCommand(
		newRosterShowCmd(app),
		newRosterInitCmd(app),
		newRosterAddCmd(app),
	)

	return cmd
}

func newRosterShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configured seats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := app.rosters.Load(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(roster)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d seats)\n", roster.Name, len(roster.Seats))
			for _, seat := range roster.Seats {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", seat.EntityID, seat.Name, seat.Style)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newRosterInitCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster := domain.Roster{Name: name}
			if err := app.rosters.Save(cmd.Context(), roster); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "roster %q created\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Main Table", "Roster display name")

	return cmd
}

func newRosterAddCmd(app *app) *cobra.Command {
	var entityID string
	var name string
	var style string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a seat in the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := app.rosters.Load(cmd.Context())
			if err != nil {
				return err
			}

			seat := domain.Seat{
				EntityID: domain.EntityID(entityID),
				Name:     name,
				Style:    domain.PlayStyle(style),
			}
			if err := seat.Validate(); err != nil {
				return err
			}

			replaced := false
			for i := range roster.Seats {
				if roster.Seats[i].EntityID == seat.EntityID {
					roster.Seats[i] = seat
					replaced = true
					break
				}
			}
			if !replaced {
				roster.Seats = append(roster.Seats, seat)
			}

			if err := app.rosters.Save(cmd.Context(), roster); err != nil {
				return err
			}

			verb := "added"
			if replaced {
				verb = "updated"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seat %s %s\n", seat.EntityID, verb)
			return nil
		},
	}

	cmd.Flags().StringVar(&entityID, "id", "", "Entity ID for the seat")
	cmd.Flags().StringVar(&name, "name", "", "Display name for the seat")
	cmd.Flags().StringVar(&style, "style", string(domain.StyleBalanced), "Play style (balanced, aggressive, tight, loose)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
