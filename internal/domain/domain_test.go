package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokensRoundsUp(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}

func TestDeriveTendenciesEmptyWindowIsNeutral(t *testing.T) {
	assert.Equal(t, NeutralTendencies(), DeriveTendencies(nil))
}

func TestDeriveTendenciesScoresLastTenOnly(t *testing.T) {
	// Twelve actions; the first two folds must fall outside the window.
	records := []ActionRecord{
		{Action: ActionFold},
		{Action: ActionFold},
	}
	for i := 0; i < 5; i++ {
		records = append(records, ActionRecord{Action: ActionRaise, Amount: 50})
	}
	for i := 0; i < 5; i++ {
		records = append(records, ActionRecord{Action: ActionCall})
	}

	tendencies := DeriveTendencies(records)
	assert.InDelta(t, 0.5, tendencies.Aggression, 1e-9)
	assert.InDelta(t, 0.0, tendencies.Tightness, 1e-9)
	assert.InDelta(t, 0.3, tendencies.BluffFrequency, 1e-9)
}

func TestDeriveTendenciesBluffFrequencyNeverExceedsCap(t *testing.T) {
	var records []ActionRecord
	for i := 0; i < 50; i++ {
		records = append(records, ActionRecord{Action: ActionRaise, Amount: 100})
		tendencies := DeriveTendencies(records)
		assert.LessOrEqual(t, tendencies.BluffFrequency, 0.3)
	}
}

func TestProfileRecordCapsRecentActions(t *testing.T) {
	profile := NewProfile("p2")
	for i := 0; i < 11; i++ {
		action := ActionRaise
		if i%2 == 1 {
			action = ActionFold
		}
		profile.Record(ActionRecord{Action: action, Amount: 50, Phase: PhaseFlop})
	}

	assert.Len(t, profile.RecentActions, 11)
	assert.Len(t, profile.History, 11)

	// Last 10 alternate raise/fold starting with fold: 5 raises, 5 folds.
	assert.InDelta(t, 0.5, profile.Tendencies.Aggression, 1e-9)
	assert.InDelta(t, 0.5, profile.Tendencies.Tightness, 1e-9)

	for i := 0; i < 30; i++ {
		profile.Record(ActionRecord{Action: ActionCall})
	}
	assert.Len(t, profile.RecentActions, RecentActionsCap)
	assert.Len(t, profile.History, 41)
}

func TestSessionMaintainWindowKeepsSystemMessages(t *testing.T) {
	session := Session{}
	session.Append(Message{Role: RoleSystem, Content: "primer text here", Timestamp: time.Now()})
	for i := 0; i < 14; i++ {
		session.Append(Message{Role: RoleUser, Content: fmt.Sprintf("turn %d", i)})
		session.Append(Message{Role: RoleAssistant, Content: fmt.Sprintf("reply %d", i)})
	}

	session.MaintainWindow()

	require.Len(t, session.History, 10)
	assert.Equal(t, RoleSystem, session.History[0].Role)
	assert.Equal(t, "reply 13", session.History[len(session.History)-1].Content)

	sum := 0
	systemSum := 0
	for _, m := range session.History {
		sum += m.TokenCount
		if m.Role == RoleSystem {
			systemSum += m.TokenCount
		}
	}
	assert.Equal(t, sum, session.TotalTokens)
	assert.Equal(t, systemSum, session.SystemTokens)
	assert.Positive(t, session.SystemTokens)
}

func TestSessionMaintainWindowNoTrimBelowThreshold(t *testing.T) {
	session := Session{}
	session.Append(Message{Role: RoleSystem, Content: "primer"})
	session.Append(Message{Role: RoleUser, Content: "hello there"})
	session.MaintainWindow()

	assert.Len(t, session.History, 2)
	assert.Equal(t, EstimateTokens("primer")+EstimateTokens("hello there"), session.TotalTokens)
}

func TestRosterNormalizeSeatsDropsDuplicatesAndBlanks(t *testing.T) {
	roster := Roster{Name: "main", Seats: []Seat{
		{EntityID: " p1 ", Name: " Alice "},
		{EntityID: "p2", Name: "Bob"},
		{EntityID: "p1", Name: "Alice again"},
		{EntityID: "  ", Name: "ghost"},
	}}

	roster.NormalizeSeats()

	require.Len(t, roster.Seats, 2)
	assert.Equal(t, EntityID("p1"), roster.Seats[0].EntityID)
	assert.Equal(t, "Alice", roster.Seats[0].Name)
	assert.Equal(t, EntityID("p2"), roster.Seats[1].EntityID)
}

func TestSeatValidateRejectsUnknownStyle(t *testing.T) {
	seat := Seat{EntityID: "p1", Name: "Alice", Style: PlayStyle("maniac")}
	require.Error(t, seat.Validate())

	seat.Style = StyleAggressive
	require.NoError(t, seat.Validate())
}

func TestActionValid(t *testing.T) {
	for _, action := range []Action{ActionFold, ActionCheck, ActionCall, ActionRaise, ActionAllIn} {
		assert.True(t, action.Valid())
	}
	assert.False(t, Action("bet").Valid())
	assert.False(t, Action("").Valid())
}
