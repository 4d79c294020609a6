package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/spf13/cobra"
)

func newWarmCmd(app *app) *cobra.Command {
	var entityID string

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Warm up opponent sessions for the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seats, err := seatsToWarm(cmd.Context(), app, entityID)
			if err != nil {
				return err
			}

			type warmResult struct {
				seat      domain.Seat
				sessionID string
				err       error
			}
			results := make([]warmResult, 0, len(seats))

			warmAll := func(ctx context.Context) error {
				for _, seat := range seats {
					sessionID, err := app.sessions.Initialize(ctx, seat)
					results = append(results, warmResult{seat: seat, sessionID: sessionID, err: err})
				}
				return nil
			}

			if err := runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Warming sessions...", warmAll); err != nil {
				return err
			}

			var failures []error
			for _, result := range results {
				if result.err != nil {
					failures = append(failures, fmt.Errorf("seat %s: %w", result.seat.EntityID, result.err))
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tfailed\n", result.seat.EntityID, result.sessionID)
					continue
				}

				session, err := app.sessions.Session(result.sessionID)
				if err != nil {
					failures = append(failures, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", result.seat.EntityID, result.sessionID, session.Readiness)
			}

			return errors.Join(failures...)
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "Entity ID (default: all seats)")

	return cmd
}

func seatsToWarm(ctx context.Context, app *app, entityID string) ([]domain.Seat, error) {
	roster, err := app.rosters.Load(ctx)
	if err != nil {
		return nil, err
	}

	if entityID == "" {
		return roster.Seats, nil
	}

	seat, ok := roster.SeatFor(domain.EntityID(entityID))
	if !ok {
		return nil, fmt.Errorf("entity %q is not in the roster", entityID)
	}

	return []domain.Seat{seat}, nil
}
