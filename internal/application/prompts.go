package application

import (
	"fmt"
	"strings"

	"github.com/bnema/tablemind/internal/domain"
)

// Prompt text lives here so the session and routing logic stays wording-free.

func primerPrompt(entityName string, style domain.PlayStyle) string {
	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(entityName)
	b.WriteString(", an expert no-limit Texas Hold'em player seated at a live table. ")
	if style != "" && style != domain.StyleBalanced {
		fmt.Fprintf(&b, "Your table image is %s. ", style)
	}
	b.WriteString("On every turn you receive the table state and must answer with a single JSON object: ")
	b.WriteString(`{"action": "fold|check|call|raise|all-in", "amount": <chips>, "confidence": <0-1>, "reasoning": "<short>"}. `)
	b.WriteString("Answer with the JSON object only, no commentary around it.")

	return b.String()
}

func confirmPrompt(entityName string) string {
	return fmt.Sprintf("Confirm you are ready to play as %s. Reply with a short acknowledgement.", entityName)
}

// decisionPrompt renders the full table state for the session's own decide
// path.
func decisionPrompt(snapshot domain.GameSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s. Pot: %d. Current bet: %d. To call: %d. Your chips: %d.",
		snapshot.Phase, snapshot.Pot, snapshot.CurrentBet, snapshot.ToCall, snapshot.Chips)
	if snapshot.Position != "" {
		fmt.Fprintf(&b, " Position: %s (seat %d).", snapshot.Position, snapshot.PositionIndex)
	}
	if len(snapshot.HoleCards) > 0 {
		fmt.Fprintf(&b, " Hole cards: %s.", strings.Join(snapshot.HoleCards, " "))
	}
	if len(snapshot.CommunityCards) > 0 {
		fmt.Fprintf(&b, " Board: %s.", strings.Join(snapshot.CommunityCards, " "))
	}
	if len(snapshot.ActionSequence) > 0 {
		fmt.Fprintf(&b, " Action so far: %s.", strings.Join(snapshot.ActionSequence, ", "))
	}
	if snapshot.MathematicalAnalysis != "" {
		fmt.Fprintf(&b, " Analysis: %s", snapshot.MathematicalAnalysis)
	}
	b.WriteString(" Decide now.")

	return b.String()
}

// compressedPrompt is the self-contained prompt used when no reusable
// context exists: full state plus whatever opponent reads we hold.
func compressedPrompt(snapshot domain.GameSnapshot, profile domain.Profile, haveProfile bool) string {
	var b strings.Builder
	b.WriteString(decisionPrompt(snapshot))
	if haveProfile {
		fmt.Fprintf(&b, " Your recent pattern: aggression %.2f, tightness %.2f, bluff rate %.2f.",
			profile.Tendencies.Aggression, profile.Tendencies.Tightness, profile.Tendencies.BluffFrequency)
	}
	for id, tendencies := range snapshot.OpponentProfiles {
		fmt.Fprintf(&b, " Opponent %s: aggression %.2f, tightness %.2f.", id, tendencies.Aggression, tendencies.Tightness)
	}

	return b.String()
}

// deltaPrompt describes only the current turn, leaning on the cached context
// the remote side already holds.
func deltaPrompt(snapshot domain.GameSnapshot, gameContext domain.GameContext) string {
	var b strings.Builder
	if gameContext.Summary != "" {
		fmt.Fprintf(&b, "Same hand as before (%s). ", gameContext.Summary)
	}
	fmt.Fprintf(&b, "Update: pot %d, bet %d, to call %d.", snapshot.Pot, snapshot.CurrentBet, snapshot.ToCall)
	if len(snapshot.CommunityCards) > 0 {
		fmt.Fprintf(&b, " Board now: %s.", strings.Join(snapshot.CommunityCards, " "))
	}
	if len(snapshot.ActionSequence) > 0 {
		fmt.Fprintf(&b, " New action: %s.", strings.Join(snapshot.ActionSequence, ", "))
	}
	b.WriteString(" Decide now.")

	return b.String()
}

// contextSummary is what gets cached in the game-context tier after a
// successful decision.
func contextSummary(snapshot domain.GameSnapshot) string {
	return fmt.Sprintf("%s, pot %d, bet %d", snapshot.Phase, snapshot.Pot, snapshot.CurrentBet)
}

func statusPrompt(position string, seatIndex, totalSeats int, chips int64, dealerPosition int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status update between hands: you are in position %s, seat %d of %d, with %d chips.",
		position, seatIndex, totalSeats, chips)
	if dealerPosition >= 0 {
		fmt.Fprintf(&b, " Dealer is seat %d.", dealerPosition)
	}
	b.WriteString(" Acknowledge briefly; no decision is needed.")

	return b.String()
}

// ackPlaceholder stands in for trimmed assistant turns on the incremental
// path.
const ackPlaceholder = "Understood. Ready for the next update."
