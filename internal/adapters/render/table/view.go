package table

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/tablemind/internal/application"
	"github.com/bnema/tablemind/internal/cache"
	"github.com/bnema/tablemind/internal/domain"
)

type RenderOptions struct {
	Now       time.Time
	IdleAfter time.Duration
}

// SeatReport is one opponent's row in the overview.
type SeatReport struct {
	Name         string
	SessionID    string
	Readiness    domain.Readiness
	LastActivity time.Time
	TotalTokens  int
	HistoryLen   int
	Tendencies   domain.Tendencies
	LastDecision *domain.Decision
}

type Report struct {
	Seats       []SeatReport
	Sessions    application.SessionStats
	Cache       cache.Stats
	HandsPlayed int
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Table Overview"),
		s.header.Render(headerLine(report)),
	}

	if len(report.Seats) == 0 {
		lines = append(lines, s.empty.Render("No seats tracked."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, seat := range report.Seats {
		lines = append(lines, s.section.Render(renderSeat(seat, opts, s)))
	}

	lines = append(lines, s.section.Render(cacheLine(report.Cache, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(report Report) string {
	return fmt.Sprintf("seats: %d | sessions ready: %d/%d | hands: %d",
		len(report.Seats), report.Sessions.Ready, report.Sessions.Total, report.HandsPlayed)
}

func renderSeat(seat SeatReport, opts RenderOptions, s styles) string {
	parts := []string{
		seatTitle(seat, opts, s),
	}

	for _, line := range tendencyLines(seat.Tendencies, s) {
		parts = append(parts, line)
	}

	parts = append(parts, s.detail.Render(sessionLine(seat)))

	if seat.LastDecision != nil {
		parts = append(parts, s.detail.Render(decisionLine(*seat.LastDecision)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func seatTitle(seat SeatReport, opts RenderOptions, s styles) string {
	title := s.seat.Render(fmt.Sprintf("%s (%s)", seat.Name, seat.SessionID))
	state := readinessLabel(seat.Readiness, s)

	line := lipgloss.JoinHorizontal(lipgloss.Top, title, " ", state)

	if isIdle(seat.LastActivity, opts) {
		line += " " + s.warning.Render("[idle]")
	}

	return line
}

func readinessLabel(readiness domain.Readiness, s styles) string {
	label := string(readiness)
	if label == "" {
		label = string(domain.ReadinessNone)
	}

	if readiness == domain.ReadinessReady {
		return s.ready.Render(label)
	}
	if readiness == domain.ReadinessExpired {
		return s.warning.Render(label)
	}

	return s.empty.Render(label)
}

func isIdle(lastActivity time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.IdleAfter <= 0 || lastActivity.IsZero() {
		return false
	}

	return opts.Now.Sub(lastActivity) > opts.IdleAfter
}

func tendencyLines(t domain.Tendencies, s styles) []string {
	rows := []struct {
		label string
		value float64
	}{
		{"aggression", t.Aggression},
		{"tightness", t.Tightness},
		{"bluffing", t.BluffFrequency},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		label := s.barLabel.Render(fmt.Sprintf("%-10s", row.label))
		bar := renderMeter(row.value, 20, s)
		value := s.detail.Render(fmt.Sprintf("%.2f", row.value))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", value))
	}

	return lines
}

func sessionLine(seat SeatReport) string {
	return fmt.Sprintf("history: %d messages | tokens: %d", seat.HistoryLen, seat.TotalTokens)
}

func decisionLine(d domain.Decision) string {
	if d.Amount > 0 {
		return fmt.Sprintf("last: %s %d (%.2f)", d.Action, d.Amount, d.Confidence)
	}

	return fmt.Sprintf("last: %s (%.2f)", d.Action, d.Confidence)
}

func cacheLine(stats cache.Stats, s styles) string {
	return s.header.Render(fmt.Sprintf("cache: %d game contexts, %d profiles, %d hand analyses",
		stats.GameContexts, stats.Profiles, stats.HandAnalyses))
}

// renderMeter draws a fixed-width bar for a fraction in [0, 1].
func renderMeter(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	clamped := clampFraction(fraction)
	filled := int(math.Round(float64(width) * clamped))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
