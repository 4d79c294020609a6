package toml

import (
	"fmt"

	"github.com/bnema/tablemind/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Name    string       `toml:"name"`
	Seats   []seatSchema `toml:"seats"`
}

type seatSchema struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Style string `toml:"style,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported roster schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(roster domain.Roster) fileSchema {
	file := fileSchema{
		Version: currentSchemaVersion,
		Name:    roster.Name,
		Seats:   make([]seatSchema, 0, len(roster.Seats)),
	}
	for _, seat := range roster.Seats {
		file.Seats = append(file.Seats, seatSchema{
			ID:    string(seat.EntityID),
			Name:  seat.Name,
			Style: string(seat.Style),
		})
	}

	return file
}

func fromSchema(file fileSchema) domain.Roster {
	roster := domain.Roster{
		Name:  file.Name,
		Seats: make([]domain.Seat, 0, len(file.Seats)),
	}
	for _, seat := range file.Seats {
		roster.Seats = append(roster.Seats, domain.Seat{
			EntityID: domain.EntityID(seat.ID),
			Name:     seat.Name,
			Style:    domain.PlayStyle(seat.Style),
		})
	}

	return roster
}
