package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

const (
	GameContextTTL  = 30 * time.Second
	ProfileTTL      = 5 * time.Minute
	HandAnalysisTTL = time.Minute
)

// MultiTier composes the three derived-state stores — shared game context,
// per-entity behavioural profile, per-hand analysis — each with its own key
// derivation and lifetime. Construct one at the composition root and inject
// it wherever cache access is needed; separate instances per tier keep key
// namespaces structurally disjoint.
type MultiTier struct {
	clock        ports.Clock
	gameContexts *TTL[string, domain.GameContext]
	profiles     *TTL[domain.EntityID, domain.Profile]
	analyses     *TTL[string, domain.HandAnalysis]

	// profileMu serializes the read-modify-write in UpdateProfile.
	profileMu sync.Mutex
}

func NewMultiTier(clock ports.Clock) *MultiTier {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &MultiTier{
		clock:        clock,
		gameContexts: NewTTL[string, domain.GameContext](GameContextTTL, clock),
		profiles:     NewTTL[domain.EntityID, domain.Profile](ProfileTTL, clock),
		analyses:     NewTTL[string, domain.HandAnalysis](HandAnalysisTTL, clock),
	}
}

// GameContextKey derives the game-context cache key. Pure: identical
// snapshots always map to the same key, and any field change changes it.
func GameContextKey(snapshot domain.GameSnapshot, entityID domain.EntityID) string {
	return fmt.Sprintf("%s|%d|%d|%s", snapshot.Phase, snapshot.Pot, snapshot.CurrentBet, entityID)
}

// HandKey derives an order-independent key from the hole and community card
// identities.
func HandKey(holeCards, communityCards []string) string {
	cards := make([]string, 0, len(holeCards)+len(communityCards))
	cards = append(cards, holeCards...)
	cards = append(cards, communityCards...)
	sort.Strings(cards)

	return strings.Join(cards, "|")
}

func (m *MultiTier) GetGameContext(snapshot domain.GameSnapshot, entityID domain.EntityID) (domain.GameContext, bool) {
	return m.gameContexts.Get(GameContextKey(snapshot, entityID))
}

func (m *MultiTier) PutGameContext(snapshot domain.GameSnapshot, entityID domain.EntityID, gameContext domain.GameContext) {
	m.gameContexts.Put(GameContextKey(snapshot, entityID), gameContext)
}

func (m *MultiTier) GetProfile(entityID domain.EntityID) (domain.Profile, bool) {
	return m.profiles.Get(entityID)
}

// UpdateProfile records an observed action against the entity's profile,
// creating a fresh profile with neutral tendencies when no live one exists.
// The write refreshes the entry's age (write-through, not a touch).
func (m *MultiTier) UpdateProfile(entityID domain.EntityID, action domain.Action, amount int64, phase domain.Phase) domain.Profile {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	profile, ok := m.profiles.Get(entityID)
	if !ok {
		profile = domain.NewProfile(entityID)
	}

	profile.Record(domain.ActionRecord{
		Action: action,
		Amount: amount,
		Phase:  phase,
		At:     m.clock.Now(),
	})
	m.profiles.Put(entityID, profile)

	return profile
}

func (m *MultiTier) GetHandAnalysis(holeCards, communityCards []string) (domain.HandAnalysis, bool) {
	return m.analyses.Get(HandKey(holeCards, communityCards))
}

func (m *MultiTier) PutHandAnalysis(holeCards, communityCards []string, analysis domain.HandAnalysis) {
	m.analyses.Put(HandKey(holeCards, communityCards), analysis)
}

// SweepCounts reports per-tier evictions from one SweepAll pass.
type SweepCounts struct {
	GameContexts int
	Profiles     int
	HandAnalyses int
}

// SweepAll evicts expired entries from every tier. The owning process is
// expected to call this on a schedule; nothing here self-schedules.
func (m *MultiTier) SweepAll() SweepCounts {
	return SweepCounts{
		GameContexts: m.gameContexts.Sweep(),
		Profiles:     m.profiles.Sweep(),
		HandAnalyses: m.analyses.Sweep(),
	}
}

type Stats struct {
	GameContexts int
	Profiles     int
	HandAnalyses int
	Total        int
}

func (m *MultiTier) Stats() Stats {
	s := Stats{
		GameContexts: m.gameContexts.Len(),
		Profiles:     m.profiles.Len(),
		HandAnalyses: m.analyses.Len(),
	}
	s.Total = s.GameContexts + s.Profiles + s.HandAnalyses

	return s
}
