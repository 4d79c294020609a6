package domain

type EntityID string
type Phase string
type Action string

const (
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
	ActionAllIn Action = "all-in"
)

func (a Action) Valid() bool {
	switch a {
	case ActionFold, ActionCheck, ActionCall, ActionRaise, ActionAllIn:
		return true
	default:
		return false
	}
}

// GameSnapshot is the read-only view of the table the engine hands us each
// turn. The core never mutates it.
type GameSnapshot struct {
	Phase                Phase
	Pot                  int64
	CurrentBet           int64
	HoleCards            []string
	CommunityCards       []string
	Chips                int64
	Position             string
	PositionIndex        int
	ToCall               int64
	ActionSequence       []string
	OpponentProfiles     map[EntityID]Tendencies
	MathematicalAnalysis string
}

// Decision is the structured action returned to the game engine.
type Decision struct {
	Action     Action  `json:"action"`
	Amount     int64   `json:"amount"`
	Confidence float64 `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// GameContext is the cached, rendered summary of a table state shared across
// prompt builds for the same (phase, pot, bet, entity) key.
type GameContext struct {
	Phase      Phase
	Pot        int64
	CurrentBet int64
	Summary    string
}

// HandAnalysis is the cached per-hand evaluation keyed by the card sets.
type HandAnalysis struct {
	Summary string
}
