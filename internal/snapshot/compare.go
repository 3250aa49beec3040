package snapshot

import (
	"fmt"
	"strings"
)

// Compare diffs two snapshots across the five tracked dimensions and
// attaches a natural-language summary. Either side may be nil.
func Compare(prev, curr *DailySnapshot) Delta {
	if prev == nil || curr == nil {
		return Delta{
			Changes: []Change{},
			Summary: "No prior snapshot available for comparison",
		}
	}

	changes := make([]Change, 0, 5)

	appendChange := func(key, label, from, to string) {
		if from != to {
			changes = append(changes, Change{Key: key, Label: label, From: from, To: to})
		}
	}

	appendChange("regime", "Regime", regimeLabel(prev), regimeLabel(curr))
	appendChange("fedTone", "Fed tone", fedTone(prev), fedTone(curr))
	appendChange("policyRisk", "Policy risk", policyLabel(prev), policyLabel(curr))
	appendChange("volatility", "Volatility", volatilityLabel(prev), volatilityLabel(curr))
	appendChange("tradeLevel", "Trade level", tradeLevel(prev), tradeLevel(curr))

	return Delta{Changes: changes, Summary: summarize(changes)}
}

// summarize keeps the narrative short: full from/to detail for one or two
// changes, a compressed line for three or more. The per-field detail is
// always retained in Changes.
func summarize(changes []Change) string {
	switch {
	case len(changes) == 0:
		return "No major changes versus yesterday"
	case len(changes) <= 2:
		parts := make([]string, 0, len(changes))
		for _, c := range changes {
			parts = append(parts, fmt.Sprintf("%s changed from %s to %s", strings.ToLower(c.Label), c.From, c.To))
		}
		sentence := strings.Join(parts, "; ")
		return strings.ToUpper(sentence[:1]) + sentence[1:]
	default:
		return "Multiple drivers shifted versus yesterday"
	}
}

func regimeLabel(s *DailySnapshot) string {
	if s.Regime == nil {
		return ""
	}
	return s.Regime.Label
}

func fedTone(s *DailySnapshot) string {
	if s.Fed == nil {
		return ""
	}
	return s.Fed.Tone
}

func policyLabel(s *DailySnapshot) string {
	if s.Policy == nil {
		return ""
	}
	return s.Policy.Label
}

func volatilityLabel(s *DailySnapshot) string {
	if s.Volatility == nil {
		return ""
	}
	return s.Volatility.State
}

func tradeLevel(s *DailySnapshot) string {
	if s.TradeLevel == nil {
		return ""
	}
	return s.TradeLevel.Level
}
