package domain

import (
	"fmt"
	"strings"
)

type PlayStyle string

const (
	StyleBalanced   PlayStyle = "balanced"
	StyleAggressive PlayStyle = "aggressive"
	StyleTight      PlayStyle = "tight"
	StyleLoose      PlayStyle = "loose"
)

func (s PlayStyle) Valid() bool {
	switch s {
	case StyleBalanced, StyleAggressive, StyleTight, StyleLoose:
		return true
	default:
		return false
	}
}

// Seat describes one AI-controlled player configured for a table.
type Seat struct {
	EntityID EntityID
	Name     string
	Style    PlayStyle
}

func (s Seat) Validate() error {
	if strings.TrimSpace(string(s.EntityID)) == "" {
		return fmt.Errorf("entity id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("seat name is required")
	}
	if s.Style != "" && !s.Style.Valid() {
		return fmt.Errorf("unsupported play style %q", s.Style)
	}

	return nil
}

// Roster is the configured set of AI seats for a table.
type Roster struct {
	Name  string
	Seats []Seat
}

func (r Roster) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("roster name is required")
	}
	for _, seat := range r.Seats {
		if err := seat.Validate(); err != nil {
			return fmt.Errorf("seat %q: %w", seat.EntityID, err)
		}
	}

	return nil
}

// NormalizeSeats trims whitespace and drops duplicate entity ids, keeping
// first occurrences in order.
func (r *Roster) NormalizeSeats() {
	if r == nil {
		return
	}

	seats := make([]Seat, 0, len(r.Seats))
	seen := make(map[EntityID]struct{}, len(r.Seats))
	for _, seat := range r.Seats {
		seat.EntityID = EntityID(strings.TrimSpace(string(seat.EntityID)))
		seat.Name = strings.TrimSpace(seat.Name)
		if seat.EntityID == "" {
			continue
		}
		if _, ok := seen[seat.EntityID]; ok {
			continue
		}
		seen[seat.EntityID] = struct{}{}
		seats = append(seats, seat)
	}

	r.Seats = seats
}

// SeatFor returns the configured seat for an entity, if any.
func (r Roster) SeatFor(id EntityID) (Seat, bool) {
	for _, seat := range r.Seats {
		if seat.EntityID == id {
			return seat, true
		}
	}

	return Seat{}, false
}
