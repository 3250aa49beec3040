package mistake

import (
	"strings"

	"market-lens/internal/market"
)

// TrafficLevel is the coarse externally supplied traffic-light level.
type TrafficLevel string

const (
	TrafficRed    TrafficLevel = "Red"
	TrafficYellow TrafficLevel = "Yellow"
	TrafficGreen  TrafficLevel = "Green"
)

// HeroCopyResult is short narrative copy for the hero card.
type HeroCopyResult struct {
	PrimaryLine     string `json:"primaryLine"`
	SecondaryLine   string `json:"secondaryLine"`
	BadgeBehavioral string `json:"badgeBehavioral"`
}

const defaultPrimaryLine = "Mixed signals today; trade the plan, not the tape."

type primaryKey struct {
	regime     market.Regime
	vol        market.Level
	policyHigh bool
}

var primaryLines = map[primaryKey]string{
	{market.RegimeRiskOff, market.LevelHigh, false}:       "Sellers are in control; protect capital first.",
	{market.RegimeRiskOff, market.LevelMedium, false}:     "Risk appetite is weak; treat rallies with suspicion.",
	{market.RegimeRiskOn, market.LevelLow, false}:         "Conditions favour disciplined trend-following.",
	{market.RegimeRiskOn, market.LevelMedium, false}:      "Momentum is supportive but getting crowded.",
	{market.RegimeNeutral, market.LevelHigh, false}:       "Choppy tape; most intraday moves will fade.",
	{market.RegimeStagflation, market.LevelMedium, false}: "Cross-currents dominate; conviction is expensive today.",
}

// HeroCopy builds the hero card narrative from the raw signal labels plus an
// externally supplied traffic-light level.
func HeroCopy(regime, vol, policyRisk string, level TrafficLevel) HeroCopyResult {
	r := market.NormalizeRegime(regime)
	v := market.NormalizeLevel(vol)
	p := market.NormalizeLevel(policyRisk)

	primary := defaultPrimaryLine
	if r == market.RegimePolicyShock || p == market.LevelHigh {
		primary = "Headline risk is driving price action today."
	} else if line, ok := primaryLines[primaryKey{r, v, false}]; ok {
		primary = line
	}

	return HeroCopyResult{
		PrimaryLine:     primary,
		SecondaryLine:   secondaryLine(r, v, p),
		BadgeBehavioral: badgeFor(level),
	}
}

func secondaryLine(r market.Regime, v, p market.Level) string {
	var clauses []string

	switch p {
	case market.LevelHigh:
		clauses = append(clauses, "policy risk elevated")
	case market.LevelMedium:
		clauses = append(clauses, "policy risk moderate")
	}

	switch v {
	case market.LevelHigh:
		clauses = append(clauses, "volatility elevated")
	case market.LevelLow:
		clauses = append(clauses, "volatility compressed")
	case market.LevelMedium:
		clauses = append(clauses, "volatility unstable")
	}

	switch r {
	case market.RegimeNeutral:
		clauses = append(clauses, "regime mixed")
	case market.RegimeStagflation:
		clauses = append(clauses, "regime fragile")
	}

	if len(clauses) == 0 {
		return "Signals are quiet; follow the standing playbook."
	}

	sentence := strings.Join(clauses, ", ") + "."
	return strings.ToUpper(sentence[:1]) + sentence[1:]
}

func badgeFor(level TrafficLevel) string {
	switch level {
	case TrafficRed:
		return "Stand Down"
	case TrafficGreen:
		return "Selective Risk"
	default:
		return "Trade Light"
	}
}
