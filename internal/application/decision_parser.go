package application

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/bnema/tablemind/internal/domain"
)

// Regex-based JSON repair for near-JSON model output. Best effort and lossy;
// the repair order matters: fences first, then quote normalization, then key
// quoting, then trailing commas.
var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

type decisionPayload struct {
	Action     string  `json:"action"`
	Amount     float64 `json:"amount"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseDecision repairs near-JSON reply text and extracts a structured
// decision. A false result means "no decision extracted" — callers apply
// their own fallback; this never fails loudly.
func ParseDecision(raw string) (domain.Decision, bool) {
	repaired := repairJSON(raw)
	if repaired == "" {
		return domain.Decision{}, false
	}

	var payload decisionPayload
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return domain.Decision{}, false
	}

	action := domain.Action(strings.ToLower(strings.TrimSpace(payload.Action)))
	if !action.Valid() {
		return domain.Decision{}, false
	}

	return domain.Decision{
		Action:     action,
		Amount:     int64(payload.Amount),
		Confidence: payload.Confidence,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
	}, true
}

func repairJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if match := codeFenceRe.FindStringSubmatch(s); match != nil {
		s = match[1]
	}

	// Narrow to the outermost object; models often wrap it in prose.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	s = s[start : end+1]

	s = strings.ReplaceAll(s, "'", `"`)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")

	return s
}
