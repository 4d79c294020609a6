package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tableadapter "github.com/bnema/tablemind/internal/adapters/render/table"
	"github.com/bnema/tablemind/internal/application"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/spf13/cobra"
)

type playStep struct {
	Entity   domain.EntityID     `json:"entity"`
	Snapshot domain.GameSnapshot `json:"snapshot"`
}

func newPlayCmd(app *app) *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a scripted sequence of hands against the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			roster, err := app.rosters.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(roster.Seats) == 0 {
				return fmt.Errorf("roster %q has no seats", roster.Name)
			}

			warmAll := func(ctx context.Context) error {
				for _, seat := range roster.Seats {
					if _, err := app.sessions.Initialize(ctx, seat); err != nil {
						return fmt.Errorf("warm seat %s: %w", seat.EntityID, err)
					}
				}
				return nil
			}
			if err := runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Warming sessions...", warmAll); err != nil {
				return err
			}

			lastDecisions := make(map[domain.EntityID]domain.Decision, len(roster.Seats))
			for i, step := range steps {
				decision, err := runPlayStep(cmd.Context(), app, roster, step)
				if err != nil {
					return fmt.Errorf("hand %d: %w", i+1, err)
				}
				lastDecisions[step.Entity] = decision

				if decision.Amount > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "hand %d: %s %s %d\n", i+1, step.Entity, decision.Action, decision.Amount)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "hand %d: %s %s\n", i+1, step.Entity, decision.Action)
				}

				// The play loop owns maintenance ticks between hands.
				app.tiers.SweepAll()
				app.sessions.SweepInactive(application.DefaultSessionMaxAge)
			}

			report := buildReport(app, roster, lastDecisions, len(steps))
			rendered, err := app.tableRenderer(report, tableadapter.RenderOptions{
				Now:       app.now(),
				IdleAfter: application.DefaultSweepInterval,
			})
			if err != nil {
				return fmt.Errorf("render table: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a JSON script of hands")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func loadScript(path string) ([]playStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var steps []playStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("script %s has no hands", path)
	}

	return steps, nil
}

func runPlayStep(ctx context.Context, app *app, roster domain.Roster, step playStep) (domain.Decision, error) {
	if _, ok := roster.SeatFor(step.Entity); !ok {
		return domain.Decision{}, fmt.Errorf("entity %q is not in the roster", step.Entity)
	}

	sessionID, ok := app.sessions.SessionIDForEntity(step.Entity)
	if !ok {
		return domain.Decision{}, fmt.Errorf("no session for entity %q", step.Entity)
	}

	healthy, err := app.sessions.HealthCheck(ctx, sessionID)
	if err != nil {
		return domain.Decision{}, err
	}
	if !healthy {
		return domain.Decision{}, fmt.Errorf("session %s could not be recovered", sessionID)
	}

	outcome, err := app.router.Decide(ctx, sessionID, step.Entity, step.Snapshot)
	if err != nil {
		return domain.Decision{}, err
	}
	if !outcome.Parsed {
		return fallbackDecision(step.Snapshot), nil
	}

	return outcome.Decision, nil
}

func buildReport(app *app, roster domain.Roster, lastDecisions map[domain.EntityID]domain.Decision, hands int) tableadapter.Report {
	seats := make([]tableadapter.SeatReport, 0, len(roster.Seats))
	for _, seat := range roster.Seats {
		row := tableadapter.SeatReport{
			Name:       seat.Name,
			Tendencies: domain.NeutralTendencies(),
		}

		if sessionID, ok := app.sessions.SessionIDForEntity(seat.EntityID); ok {
			row.SessionID = sessionID
			if session, err := app.sessions.Session(sessionID); err == nil {
				row.Readiness = session.Readiness
				row.LastActivity = session.LastActivity
				row.TotalTokens = session.TotalTokens
				row.HistoryLen = len(session.History)
			}
		}

		if profile, ok := app.tiers.GetProfile(seat.EntityID); ok {
			row.Tendencies = profile.Tendencies
		}

		if decision, ok := lastDecisions[seat.EntityID]; ok {
			row.LastDecision = &decision
		}

		seats = append(seats, row)
	}

	return tableadapter.Report{
		Seats:       seats,
		Sessions:    app.sessions.Stats(),
		Cache:       app.tiers.Stats(),
		HandsPlayed: hands,
	}
}
