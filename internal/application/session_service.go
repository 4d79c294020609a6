package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	defaultMaxTokens   = 400

	// inactivityExpiry is how long a ready session may sit idle before a
	// health check flips it to expired.
	inactivityExpiry = 30 * time.Minute

	// DefaultSessionMaxAge and DefaultSweepInterval drive the registry
	// sweep the owning process schedules.
	DefaultSessionMaxAge = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}

	return c
}

// SessionService owns every conversation session and the registry that maps
// session ids to them. All operations against one session are serialized by
// that session's lock, held across the remote exchange; different sessions
// proceed in parallel.
type SessionService struct {
	client ports.CompletionClient
	clock  ports.Clock
	cfg    Config

	mu       sync.RWMutex
	sessions map[string]*sessionHandle
	byEntity map[domain.EntityID]string
}

type sessionHandle struct {
	mu    sync.Mutex
	s     domain.Session
	style domain.PlayStyle
}

func NewSessionService(client ports.CompletionClient, cfg Config, clock ports.Clock) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionService{
		client:   client,
		clock:    clock,
		cfg:      cfg.withDefaults(),
		sessions: make(map[string]*sessionHandle),
		byEntity: make(map[domain.EntityID]string),
	}
}

func sessionIDFor(entityID domain.EntityID) string {
	hash := sha1.Sum([]byte("seat|" + string(entityID)))
	return "sess-" + hex.EncodeToString(hash[:])[:12]
}

// Initialize creates (or reuses) the session for a seat and runs the warm-up
// exchange: primer system message, identity confirmation, remote
// acknowledgement. On failure the session stays registered in the none state
// so callers can retry.
func (s *SessionService) Initialize(ctx context.Context, seat domain.Seat) (string, error) {
	if strings.TrimSpace(string(seat.EntityID)) == "" {
		return "", fmt.Errorf("entity id is required")
	}
	if strings.TrimSpace(seat.Name) == "" {
		seat.Name = string(seat.EntityID)
	}

	h := s.handleForSeat(seat)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := s.warmup(ctx, h); err != nil {
		h.s.Readiness = domain.ReadinessNone
		h.s.Active = false
		return h.s.SessionID, fmt.Errorf("%w: %w", domain.ErrWarmupFailed, err)
	}

	return h.s.SessionID, nil
}

func (s *SessionService) handleForSeat(seat domain.Seat) *sessionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEntity[seat.EntityID]; ok {
		return s.sessions[id]
	}

	id := sessionIDFor(seat.EntityID)
	h := &sessionHandle{
		s: domain.Session{
			SessionID:  id,
			EntityID:   seat.EntityID,
			EntityName: seat.Name,
			Readiness:  domain.ReadinessNone,
		},
		style: seat.Style,
	}
	s.sessions[id] = h
	s.byEntity[seat.EntityID] = id

	return h
}

func (s *SessionService) handle(sessionID string) (*sessionHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	return h, nil
}

// warmup runs the priming exchange against the existing session object. The
// caller holds the session lock and decides the failure readiness (none for
// a first initialize, expired for a recovery).
func (s *SessionService) warmup(ctx context.Context, h *sessionHandle) error {
	h.s.Readiness = domain.ReadinessWarming

	now := s.clock.Now()
	h.s.Append(domain.Message{Role: domain.RoleSystem, Content: primerPrompt(h.s.EntityName, h.style), Timestamp: now})
	h.s.Append(domain.Message{Role: domain.RoleUser, Content: confirmPrompt(h.s.EntityName), Timestamp: now})

	reply, err := s.exchange(ctx, outboundHistory(h.s.History))
	if err != nil {
		return err
	}

	h.s.Append(domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: s.clock.Now()})
	h.s.RecomputeTokens()
	h.s.Readiness = domain.ReadinessReady
	h.s.Active = true
	h.s.Initialized = true
	h.s.LastActivity = s.clock.Now()

	return nil
}

// ContextMode selects which message set a decide exchange sends.
type ContextMode int

const (
	// ModeFullHistory sends every retained message; the default decide
	// path.
	ModeFullHistory ContextMode = iota

	// ModeIncremental sends only the primer, an acknowledgement
	// placeholder, and the new delta prompt.
	ModeIncremental

	// ModeCompressed sends the primer plus one self-contained prompt.
	ModeCompressed
)

// Decide runs one decision turn over the retained history and returns the
// raw reply text. Structured parsing is the router's job.
func (s *SessionService) Decide(ctx context.Context, sessionID string, snapshot domain.GameSnapshot) (string, error) {
	return s.DecideWith(ctx, sessionID, decisionPrompt(snapshot), ModeFullHistory)
}

// DecideWith runs a decision turn with a caller-built prompt and context
// mode. The new user message is appended before the exchange and is NOT
// rolled back on failure; the session keeps its ready state and callers may
// retry or health-check.
func (s *SessionService) DecideWith(ctx context.Context, sessionID, prompt string, mode ContextMode) (string, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.s.Readiness != domain.ReadinessReady || !h.s.Initialized {
		return "", fmt.Errorf("%w: session %s is %s", domain.ErrSessionNotReady, sessionID, h.s.Readiness)
	}

	h.s.Append(domain.Message{Role: domain.RoleUser, Content: prompt, Timestamp: s.clock.Now()})

	reply, err := s.exchange(ctx, s.outboundFor(h, prompt, mode))
	if err != nil {
		return "", err
	}

	h.s.Append(domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: s.clock.Now()})
	h.s.LastActivity = s.clock.Now()
	h.s.MaintainWindow()

	return reply, nil
}

// UpdateStatus appends an out-of-band seating/chips exchange so the remote
// side's latent context stays current between hands. Readiness is unchanged.
func (s *SessionService) UpdateStatus(ctx context.Context, sessionID, position string, seatIndex, totalSeats int, chips int64, dealerPosition int) error {
	h, err := s.handle(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.s.Readiness != domain.ReadinessReady || !h.s.Initialized {
		return fmt.Errorf("%w: session %s is %s", domain.ErrSessionNotReady, sessionID, h.s.Readiness)
	}

	prompt := statusPrompt(position, seatIndex, totalSeats, chips, dealerPosition)
	h.s.Append(domain.Message{Role: domain.RoleUser, Content: prompt, Timestamp: s.clock.Now()})

	reply, err := s.exchange(ctx, outboundHistory(h.s.History))
	if err != nil {
		return err
	}

	h.s.Append(domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: s.clock.Now()})
	h.s.LastActivity = s.clock.Now()
	h.s.MaintainWindow()

	return nil
}

// Recover re-runs the warm-up against the existing session object, keeping
// its identity. An expected warm-up failure flips the session to expired and
// reports false rather than erroring.
func (s *SessionService) Recover(ctx context.Context, sessionID string) (bool, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return s.recoverLocked(ctx, h), nil
}

func (s *SessionService) recoverLocked(ctx context.Context, h *sessionHandle) bool {
	if err := s.warmup(ctx, h); err != nil {
		h.s.Readiness = domain.ReadinessExpired
		h.s.Active = false
		return false
	}

	return true
}

// HealthCheck reports whether the session can take decisions. A ready
// session idle past the inactivity threshold is expired and reported
// unhealthy without a recovery attempt; any other unhealthy state gets
// exactly one recovery attempt.
func (s *SessionService) HealthCheck(ctx context.Context, sessionID string) (bool, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.s.Readiness == domain.ReadinessReady && h.s.Initialized {
		if s.clock.Now().Sub(h.s.LastActivity) > inactivityExpiry {
			h.s.Readiness = domain.ReadinessExpired
			h.s.Active = false
			return false, nil
		}
		return true, nil
	}

	return s.recoverLocked(ctx, h), nil
}

// Session returns a copy of the session's current state.
func (s *SessionService) Session(sessionID string) (domain.Session, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session := h.s
	session.History = append([]domain.Message(nil), h.s.History...)

	return session, nil
}

// SessionIDForEntity resolves the registered session id for an entity.
func (s *SessionService) SessionIDForEntity(entityID domain.EntityID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEntity[entityID]
	return id, ok
}

// SweepInactive evicts sessions idle beyond maxAge. Sessions with an
// operation in flight are skipped rather than waited on; their lease has not
// lapsed.
func (s *SessionService) SweepInactive(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, h := range s.sessions {
		if !h.mu.TryLock() {
			continue
		}
		idle := now.Sub(h.s.LastActivity)
		entityID := h.s.EntityID
		h.mu.Unlock()

		if idle > maxAge {
			delete(s.sessions, id)
			delete(s.byEntity, entityID)
			removed++
		}
	}

	return removed
}

type SessionStats struct {
	Total   int
	Ready   int
	Warming int
	Expired int
	None    int
	Active  int
}

func (s *SessionService) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SessionStats{Total: len(s.sessions)}
	for _, h := range s.sessions {
		h.mu.Lock()
		switch h.s.Readiness {
		case domain.ReadinessReady:
			stats.Ready++
		case domain.ReadinessWarming:
			stats.Warming++
		case domain.ReadinessExpired:
			stats.Expired++
		case domain.ReadinessNone:
			stats.None++
		}
		if h.s.Active {
			stats.Active++
		}
		h.mu.Unlock()
	}

	return stats
}

func (s *SessionService) exchange(ctx context.Context, outbound []ports.ChatMessage) (string, error) {
	result, err := s.client.Complete(ctx, ports.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    outbound,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if result.FinishReason == ports.FinishReasonLength {
		return "", fmt.Errorf("%w: finish reason %q", domain.ErrTruncatedResponse, result.FinishReason)
	}
	if strings.TrimSpace(result.Content) == "" {
		return "", domain.ErrEmptyResponse
	}

	return result.Content, nil
}

// outboundFor builds the message set a decide exchange sends. The prompt is
// already the last history entry on the full-history path.
func (s *SessionService) outboundFor(h *sessionHandle, prompt string, mode ContextMode) []ports.ChatMessage {
	switch mode {
	case ModeIncremental:
		return []ports.ChatMessage{
			{Role: string(domain.RoleSystem), Content: primerContent(h.s.History)},
			{Role: string(domain.RoleAssistant), Content: ackPlaceholder},
			{Role: string(domain.RoleUser), Content: prompt},
		}
	case ModeCompressed:
		return []ports.ChatMessage{
			{Role: string(domain.RoleSystem), Content: primerContent(h.s.History)},
			{Role: string(domain.RoleUser), Content: prompt},
		}
	default:
		return outboundHistory(h.s.History)
	}
}

func outboundHistory(history []domain.Message) []ports.ChatMessage {
	outbound := make([]ports.ChatMessage, 0, len(history))
	for _, m := range history {
		outbound = append(outbound, ports.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	return outbound
}

func primerContent(history []domain.Message) string {
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			return m.Content
		}
	}

	return ""
}
