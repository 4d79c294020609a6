package domain

import "time"

type Readiness string

const (
	ReadinessNone    Readiness = "none"
	ReadinessWarming Readiness = "warming"
	ReadinessReady   Readiness = "ready"
	ReadinessExpired Readiness = "expired"
)

// historyWindow is the retained-message budget enforced by window
// maintenance.
const historyWindow = 10

// Session is one long-lived dialogue with the completion service on behalf
// of a single entity. Mutated only by the session service, under its
// per-session lock.
type Session struct {
	SessionID    string
	EntityID     EntityID
	EntityName   string
	Readiness    Readiness
	Active       bool
	Initialized  bool
	History      []Message
	LastActivity time.Time
	SystemTokens int
	TotalTokens  int
}

// Append adds a message to the history, estimating its token count when the
// caller has not set one.
func (s *Session) Append(m Message) {
	if m.TokenCount == 0 {
		m.TokenCount = EstimateTokens(m.Content)
	}
	s.History = append(s.History, m)
}

// MaintainWindow trims history growth while keeping every system message:
// when the history exceeds the window, it retains all system messages plus
// the most recent (window − systemCount) non-system messages, then
// recomputes token totals over what remains.
func (s *Session) MaintainWindow() {
	if len(s.History) > historyWindow {
		systemCount := 0
		for _, m := range s.History {
			if m.Role == RoleSystem {
				systemCount++
			}
		}

		keepRecent := historyWindow - systemCount
		if keepRecent < 0 {
			keepRecent = 0
		}

		nonSystem := 0
		for _, m := range s.History {
			if m.Role != RoleSystem {
				nonSystem++
			}
		}

		retained := make([]Message, 0, historyWindow)
		skip := nonSystem - keepRecent
		for _, m := range s.History {
			if m.Role == RoleSystem {
				retained = append(retained, m)
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			retained = append(retained, m)
		}
		s.History = retained
	}

	s.RecomputeTokens()
}

// RecomputeTokens rederives both totals from the retained messages. Totals
// are never adjusted incrementally.
func (s *Session) RecomputeTokens() {
	s.SystemTokens = 0
	s.TotalTokens = 0
	for _, m := range s.History {
		s.TotalTokens += m.TokenCount
		if m.Role == RoleSystem {
			s.SystemTokens += m.TokenCount
		}
	}
}
