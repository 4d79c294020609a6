package domain

import "time"

const (
	// RecentActionsCap bounds the rolling window kept alongside the full
	// action history.
	RecentActionsCap = 20

	// tendencyWindow is how many of the most recent actions feed the
	// tendency scores.
	tendencyWindow = 10

	// bluffFrequencyCap is a deliberate ceiling on the bluff score.
	bluffFrequencyCap = 0.3
)

type ActionRecord struct {
	Action Action
	Amount int64
	Phase  Phase
	At     time.Time
}

// Tendencies are behavioural scores in [0,1] derived from an entity's recent
// actions.
type Tendencies struct {
	Aggression     float64
	Tightness      float64
	BluffFrequency float64
}

// NeutralTendencies is the starting point for an entity we know nothing
// about.
func NeutralTendencies() Tendencies {
	return Tendencies{Aggression: 0.5, Tightness: 0.5, BluffFrequency: 0.1}
}

// Profile tracks everything observed about one entity: the unbounded action
// history, the capped recent window, and the scores derived from it.
type Profile struct {
	EntityID      EntityID
	History       []ActionRecord
	RecentActions []ActionRecord
	Tendencies    Tendencies
}

func NewProfile(id EntityID) Profile {
	return Profile{EntityID: id, Tendencies: NeutralTendencies()}
}

// Record appends an action to both windows, drops the oldest recent action
// past the cap, and recomputes tendencies.
func (p *Profile) Record(r ActionRecord) {
	p.History = append(p.History, r)

	p.RecentActions = append(p.RecentActions, r)
	if len(p.RecentActions) > RecentActionsCap {
		p.RecentActions = p.RecentActions[len(p.RecentActions)-RecentActionsCap:]
	}

	p.Tendencies = DeriveTendencies(p.RecentActions)
}

// DeriveTendencies scores the last min(10, len) actions of the window. An
// empty window yields the neutral scores.
func DeriveTendencies(recent []ActionRecord) Tendencies {
	if len(recent) == 0 {
		return NeutralTendencies()
	}

	window := recent
	if len(window) > tendencyWindow {
		window = window[len(window)-tendencyWindow:]
	}

	var aggressive, folds, bluffs int
	for _, r := range window {
		switch r.Action {
		case ActionRaise, ActionAllIn:
			aggressive++
		case ActionFold:
			folds++
		}
		if r.Action == ActionRaise && r.Amount > 0 {
			bluffs++
		}
	}

	size := float64(len(window))
	bluffFrequency := float64(bluffs) / size
	if bluffFrequency > bluffFrequencyCap {
		bluffFrequency = bluffFrequencyCap
	}

	return Tendencies{
		Aggression:     float64(aggressive) / size,
		Tightness:      float64(folds) / size,
		BluffFrequency: bluffFrequency,
	}
}
