package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tablemind/internal/application"
	"github.com/bnema/tablemind/internal/cache"
	"github.com/bnema/tablemind/internal/domain"
)

func TestRenderSingleSeat(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	output, err := Render(Report{
		Seats: []SeatReport{
			{
				Name:         "Viktor",
				SessionID:    "sess-1a2b3c4d5e6f",
				Readiness:    domain.ReadinessReady,
				LastActivity: now.Add(-2 * time.Minute),
				TotalTokens:  1840,
				HistoryLen:   9,
				Tendencies:   domain.Tendencies{Aggression: 0.7, Tightness: 0.2, BluffFrequency: 0.3},
				LastDecision: &domain.Decision{Action: domain.ActionRaise, Amount: 120, Confidence: 0.82},
			},
		},
		Sessions:    application.SessionStats{Total: 1, Ready: 1, Active: 1},
		Cache:       cache.Stats{GameContexts: 2, Profiles: 1, HandAnalyses: 3, Total: 6},
		HandsPlayed: 4,
	}, RenderOptions{Now: now, IdleAfter: 30 * time.Minute})

	require.NoError(t, err)
	assert.Contains(t, output, "Table Overview")
	assert.Contains(t, output, "seats: 1 | sessions ready: 1/1 | hands: 4")
	assert.Contains(t, output, "Viktor (sess-1a2b3c4d5e6f)")
	assert.Contains(t, output, "ready")
	assert.Contains(t, output, "aggression")
	assert.Contains(t, output, "0.70")
	assert.Contains(t, output, "history: 9 messages | tokens: 1840")
	assert.Contains(t, output, "last: raise 120 (0.82)")
	assert.Contains(t, output, "cache: 2 game contexts, 1 profiles, 3 hand analyses")
	assert.NotContains(t, output, "[idle]")
}

func TestRenderIdleAndExpiredSeat(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	output, err := Render(Report{
		Seats: []SeatReport{
			{
				Name:         "Mallory",
				SessionID:    "sess-aaaaaaaaaaaa",
				Readiness:    domain.ReadinessExpired,
				LastActivity: now.Add(-45 * time.Minute),
				Tendencies:   domain.NeutralTendencies(),
			},
		},
		Sessions: application.SessionStats{Total: 1, Expired: 1},
	}, RenderOptions{Now: now, IdleAfter: 30 * time.Minute})

	require.NoError(t, err)
	assert.Contains(t, output, "expired")
	assert.Contains(t, output, "[idle]")
	assert.NotContains(t, output, "last:")
}

func TestRenderNoSeats(t *testing.T) {
	output, err := Render(Report{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "seats: 0")
	assert.Contains(t, output, "No seats tracked.")
}

func TestRenderMeterClamps(t *testing.T) {
	s := newStyles()

	assert.NotContains(t, renderMeter(-0.5, 10, s), "=")
	assert.NotContains(t, renderMeter(1.5, 10, s), "-")
	assert.Empty(t, renderMeter(0.5, 0, s))
}

func TestRenderDecisionWithoutAmount(t *testing.T) {
	output, err := Render(Report{
		Seats: []SeatReport{
			{
				Name:         "Jo",
				SessionID:    "sess-bbbbbbbbbbbb",
				Readiness:    domain.ReadinessReady,
				Tendencies:   domain.NeutralTendencies(),
				LastDecision: &domain.Decision{Action: domain.ActionFold, Confidence: 0.6},
			},
		},
		Sessions: application.SessionStats{Total: 1, Ready: 1},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "last: fold (0.60)")
}
