package application

import (
	"context"

	"github.com/bnema/tablemind/internal/cache"
	"github.com/bnema/tablemind/internal/domain"
)

// DecisionRouter is the latency-optimized decide path: it picks how much
// context to resend based on cache state, parses the reply tolerantly, and
// writes the outcome back into the cache tiers.
type DecisionRouter struct {
	sessions *SessionService
	cache    *cache.MultiTier
}

func NewDecisionRouter(sessions *SessionService, tiers *cache.MultiTier) *DecisionRouter {
	return &DecisionRouter{sessions: sessions, cache: tiers}
}

// RouterOutcome reports which path a decision took.
type RouterOutcome struct {
	Decision    domain.Decision
	Parsed      bool
	Incremental bool
	RawReply    string
}

// Decide selects the context strategy, runs the exchange through the session
// service (so per-session serialization holds), and parses the reply. A
// parse failure is reported through Parsed=false, never as an error.
func (r *DecisionRouter) Decide(ctx context.Context, sessionID string, entityID domain.EntityID, snapshot domain.GameSnapshot) (RouterOutcome, error) {
	session, err := r.sessions.Session(sessionID)
	if err != nil {
		return RouterOutcome{}, err
	}

	gameContext, hit := r.cache.GetGameContext(snapshot, entityID)

	var prompt string
	var mode ContextMode
	incremental := hit && len(session.History) > 3
	if incremental {
		prompt = deltaPrompt(snapshot, gameContext)
		mode = ModeIncremental
	} else {
		profile, haveProfile := r.cache.GetProfile(entityID)
		prompt = compressedPrompt(snapshot, profile, haveProfile)
		mode = ModeCompressed
	}

	raw, err := r.sessions.DecideWith(ctx, sessionID, prompt, mode)
	if err != nil {
		return RouterOutcome{Incremental: incremental}, err
	}

	decision, ok := ParseDecision(raw)
	if !ok {
		return RouterOutcome{Parsed: false, Incremental: incremental, RawReply: raw}, nil
	}

	r.cache.UpdateProfile(entityID, decision.Action, decision.Amount, snapshot.Phase)
	r.cache.PutGameContext(snapshot, entityID, domain.GameContext{
		Phase:      snapshot.Phase,
		Pot:        snapshot.Pot,
		CurrentBet: snapshot.CurrentBet,
		Summary:    contextSummary(snapshot),
	})
	if len(snapshot.HoleCards) > 0 {
		summary := snapshot.MathematicalAnalysis
		if summary == "" {
			summary = contextSummary(snapshot)
		}
		r.cache.PutHandAnalysis(snapshot.HoleCards, snapshot.CommunityCards, domain.HandAnalysis{Summary: summary})
	}

	return RouterOutcome{Decision: decision, Parsed: true, Incremental: incremental, RawReply: raw}, nil
}
