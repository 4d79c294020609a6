package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bnema/tablemind/internal/application"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/spf13/cobra"
)

func newDecideCmd(app *app) *cobra.Command {
	var entityID string
	var snapshotPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Ask one opponent for a decision on a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadSnapshot(snapshotPath)
			if err != nil {
				return err
			}

			roster, err := app.rosters.Load(cmd.Context())
			if err != nil {
				return err
			}
			seat, ok := roster.SeatFor(domain.EntityID(entityID))
			if !ok {
				return fmt.Errorf("entity %q is not in the roster", entityID)
			}

			sessionID, err := app.sessions.Initialize(cmd.Context(), seat)
			if err != nil {
				return err
			}

			outcome, err := app.router.Decide(cmd.Context(), sessionID, seat.EntityID, snapshot)
			if err != nil {
				return err
			}

			decision := outcome.Decision
			if !outcome.Parsed {
				decision = fallbackDecision(snapshot)
			}

			return writeDecisionOutput(cmd, outcome, decision, asJSON)
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "Entity ID of the deciding seat")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path to a JSON game snapshot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func loadSnapshot(path string) (domain.GameSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GameSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot domain.GameSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.GameSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return snapshot, nil
}

// fallbackDecision is the safe play when the model reply cannot be parsed.
func fallbackDecision(snapshot domain.GameSnapshot) domain.Decision {
	if snapshot.ToCall == 0 {
		return domain.Decision{Action: domain.ActionCheck, Confidence: 0.1, Reasoning: "unparseable reply"}
	}

	return domain.Decision{Action: domain.ActionFold, Confidence: 0.1, Reasoning: "unparseable reply"}
}

func writeDecisionOutput(cmd *cobra.Command, outcome application.RouterOutcome, decision domain.Decision, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Decision    domain.Decision `json:"decision"`
			Parsed      bool            `json:"parsed"`
			Incremental bool            `json:"incremental"`
		}{decision, outcome.Parsed, outcome.Incremental})
	}

	strategy := "compressed"
	if outcome.Incremental {
		strategy = "incremental"
	}

	if decision.Amount > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "decision: %s %d (confidence %.2f)\n", decision.Action, decision.Amount, decision.Confidence)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "decision: %s (confidence %.2f)\n", decision.Action, decision.Confidence)
	}
	if decision.Reasoning != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reasoning: %s\n", decision.Reasoning)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "strategy: %s\n", strategy)

	return nil
}
