package application

import (
	"context"
	"strings"
	"testing"

	"github.com/bnema/tablemind/internal/cache"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerFixture(t *testing.T, replies ...stubReply) (*DecisionRouter, *SessionService, *cache.MultiTier, *stubClient, string) {
	t.Helper()

	all := append([]stubReply{{result: ports.CompletionResult{Content: "Ready.", FinishReason: ports.FinishReasonStop}}}, replies...)
	client := newStubClient(all...)
	sessions := NewSessionService(client, Config{}, newFakeClock())
	tiers := cache.NewMultiTier(newFakeClock())
	router := NewDecisionRouter(sessions, tiers)

	sessionID, err := sessions.Initialize(context.Background(), domain.Seat{EntityID: "p1", Name: "Alice"})
	require.NoError(t, err)

	return router, sessions, tiers, client, sessionID
}

func flopSnapshot() domain.GameSnapshot {
	return domain.GameSnapshot{
		Phase:          domain.PhaseFlop,
		Pot:            120,
		CurrentBet:     40,
		ToCall:         40,
		Chips:          1500,
		HoleCards:      []string{"As", "Kd"},
		CommunityCards: []string{"2c", "7h", "Td"},
	}
}

func TestRouterColdCacheUsesCompressedStrategy(t *testing.T) {
	t.Parallel()

	router, _, _, client, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: `{"action": "call", "amount": 40}`, FinishReason: ports.FinishReasonStop}},
	)

	outcome, err := router.Decide(context.Background(), sessionID, "p1", flopSnapshot())
	require.NoError(t, err)
	require.True(t, outcome.Parsed)
	assert.False(t, outcome.Incremental)
	assert.Equal(t, domain.ActionCall, outcome.Decision.Action)

	// Compressed: primer plus one self-contained prompt.
	req := client.request(client.calls() - 1)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, string(domain.RoleSystem), req.Messages[0].Role)
	assert.Equal(t, string(domain.RoleUser), req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "Hole cards: As Kd")
}

func TestRouterWarmCacheUsesIncrementalStrategy(t *testing.T) {
	t.Parallel()

	decisionJSON := `{"action": "raise", "amount": 90}`
	router, _, _, client, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: decisionJSON, FinishReason: ports.FinishReasonStop}},
		stubReply{result: ports.CompletionResult{Content: decisionJSON, FinishReason: ports.FinishReasonStop}},
	)

	snapshot := flopSnapshot()

	// First decision seeds the game-context cache and grows history past 3.
	outcome, err := router.Decide(context.Background(), sessionID, "p1", snapshot)
	require.NoError(t, err)
	require.True(t, outcome.Parsed)
	require.False(t, outcome.Incremental)

	// Same key on the next turn: incremental path.
	outcome, err = router.Decide(context.Background(), sessionID, "p1", snapshot)
	require.NoError(t, err)
	require.True(t, outcome.Parsed)
	assert.True(t, outcome.Incremental)

	req := client.request(client.calls() - 1)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, string(domain.RoleSystem), req.Messages[0].Role)
	assert.Equal(t, string(domain.RoleAssistant), req.Messages[1].Role)
	assert.Equal(t, ackPlaceholder, req.Messages[1].Content)
	assert.True(t, strings.HasPrefix(req.Messages[2].Content, "Same hand as before"))
}

func TestRouterWritesBackCachesAfterDecision(t *testing.T) {
	t.Parallel()

	router, _, tiers, _, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: `{"action": "raise", "amount": 90}`, FinishReason: ports.FinishReasonStop}},
	)

	snapshot := flopSnapshot()
	snapshot.MathematicalAnalysis = "top pair, top kicker"

	_, err := router.Decide(context.Background(), sessionID, "p1", snapshot)
	require.NoError(t, err)

	profile, ok := tiers.GetProfile("p1")
	require.True(t, ok)
	require.Len(t, profile.History, 1)
	assert.Equal(t, domain.ActionRaise, profile.History[0].Action)
	assert.Equal(t, int64(90), profile.History[0].Amount)
	assert.Equal(t, domain.PhaseFlop, profile.History[0].Phase)

	_, ok = tiers.GetGameContext(snapshot, "p1")
	assert.True(t, ok)

	analysis, ok := tiers.GetHandAnalysis(snapshot.HoleCards, snapshot.CommunityCards)
	require.True(t, ok)
	assert.Equal(t, "top pair, top kicker", analysis.Summary)
}

func TestRouterParseFailureIsNoDecisionNotError(t *testing.T) {
	t.Parallel()

	router, _, tiers, _, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: "I think I should probably call here.", FinishReason: ports.FinishReasonStop}},
	)

	outcome, err := router.Decide(context.Background(), sessionID, "p1", flopSnapshot())
	require.NoError(t, err)
	assert.False(t, outcome.Parsed)
	assert.NotEmpty(t, outcome.RawReply)

	// No write-back happens without a parsed decision.
	_, ok := tiers.GetProfile("p1")
	assert.False(t, ok)
	assert.Zero(t, tiers.Stats().Total)
}

func TestRouterPropagatesExchangeErrors(t *testing.T) {
	t.Parallel()

	router, _, _, _, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: "{", FinishReason: ports.FinishReasonLength}},
	)

	_, err := router.Decide(context.Background(), sessionID, "p1", flopSnapshot())
	require.ErrorIs(t, err, domain.ErrTruncatedResponse)
}

func TestRouterUnknownSession(t *testing.T) {
	t.Parallel()

	router := NewDecisionRouter(NewSessionService(newStubClient(), Config{}, newFakeClock()), cache.NewMultiTier(newFakeClock()))
	_, err := router.Decide(context.Background(), "sess-missing", "p1", flopSnapshot())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRouterNoHoleCardsSkipsHandAnalysis(t *testing.T) {
	t.Parallel()

	router, _, tiers, _, sessionID := routerFixture(t,
		stubReply{result: ports.CompletionResult{Content: `{"action": "fold"}`, FinishReason: ports.FinishReasonStop}},
	)

	snapshot := flopSnapshot()
	snapshot.HoleCards = nil

	_, err := router.Decide(context.Background(), sessionID, "p1", snapshot)
	require.NoError(t, err)

	stats := tiers.Stats()
	assert.Zero(t, stats.HandAnalyses)
	assert.Equal(t, 1, stats.Profiles)
	assert.Equal(t, 1, stats.GameContexts)
}
