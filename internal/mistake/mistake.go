package mistake

import (
	"math"
	"strings"

	"market-lens/internal/market"
)

// Archetype enumerates the behavioral mistake taxonomy.
type Archetype string

const (
	IgnoringEventRisk   Archetype = "ignoring_event_risk"
	OvertradingChop     Archetype = "overtrading_chop"
	FightingTrend       Archetype = "fighting_trend"
	ForcingConviction   Archetype = "forcing_conviction"
	OversizingPositions Archetype = "oversizing_positions"
	ChasingBreakouts    Archetype = "chasing_breakouts"
	PanicReacting       Archetype = "panic_reacting"
)

type copyBlock struct {
	Headline    string
	Explanation string
	Severity    market.Level
}

// archetypeCopy carries fixed copy for all seven archetypes.
// chasing_breakouts and panic_reacting are defined but not selected by any
// cascade branch; the taxonomy keeps them reserved.
var archetypeCopy = map[Archetype]copyBlock{
	IgnoringEventRisk: {
		Headline:    "Ignoring event risk",
		Explanation: "Policy headlines can gap through stops. The mistake today is holding normal size into binary announcements.",
		Severity:    market.LevelHigh,
	},
	OvertradingChop: {
		Headline:    "Overtrading the chop",
		Explanation: "High volatility without a supportive regime produces whipsaw. The mistake today is treating noise as signal and churning positions.",
		Severity:    market.LevelHigh,
	},
	FightingTrend: {
		Headline:    "Fighting the trend",
		Explanation: "Risk appetite is supportive. The mistake today is fading strength out of habit instead of riding confirmed moves.",
		Severity:    market.LevelMedium,
	},
	ForcingConviction: {
		Headline:    "Forcing conviction",
		Explanation: "Signals are mixed. The mistake today is manufacturing a strong view where the tape does not offer one.",
		Severity:    market.LevelMedium,
	},
	OversizingPositions: {
		Headline:    "Oversizing positions",
		Explanation: "Risk-off conditions punish size. The mistake today is carrying full positions through a tape that rewards patience.",
		Severity:    market.LevelHigh,
	},
	ChasingBreakouts: {
		Headline:    "Chasing breakouts",
		Explanation: "Extended moves invite late entries. The mistake today is buying strength after the easy part of the move is done.",
		Severity:    market.LevelMedium,
	},
	PanicReacting: {
		Headline:    "Panic reacting",
		Explanation: "Sharp drawdowns trigger reflexive selling. The mistake today is dumping sound positions at the worst prices of the day.",
		Severity:    market.LevelHigh,
	},
}

// Input carries the raw signals the cascade evaluates.
type Input struct {
	Regime         string
	Volatility     string
	PolicyRisk     string
	FedTone        string
	BaseConfidence *float64
	Missing        []string
}

// Drivers records which signals were present when the call was made.
type Drivers struct {
	Regime     string `json:"regime,omitempty"`
	Volatility string `json:"volatility,omitempty"`
	PolicyRisk string `json:"policyRisk,omitempty"`
	FedTone    string `json:"fedTone,omitempty"`
}

// Result is the selected behavioral mistake.
type Result struct {
	Mistake     Archetype    `json:"mistake"`
	Headline    string       `json:"headline"`
	Explanation string       `json:"explanation"`
	Severity    market.Level `json:"severity"`
	Confidence  int          `json:"confidence"`
	Drivers     Drivers      `json:"drivers"`
}

const (
	defaultBaseConfidence = 50
	confidenceCeiling     = 85
)

// Compute selects exactly one mistake archetype via a priority cascade
// evaluated top to bottom; the first matching branch wins.
func Compute(in Input) Result {
	regime := market.NormalizeRegime(in.Regime)
	vol := market.NormalizeLevel(in.Volatility)
	policy := market.NormalizeLevel(in.PolicyRisk)
	tone := market.NormalizeFedTone(in.FedTone)

	archetype := selectArchetype(regime, vol, policy)
	block := archetypeCopy[archetype]

	return Result{
		Mistake:     archetype,
		Headline:    block.Headline,
		Explanation: block.Explanation,
		Severity:    block.Severity,
		Confidence:  computeConfidence(in.BaseConfidence, in.Missing),
		Drivers:     buildDrivers(in, regime, vol, policy, tone),
	}
}

func selectArchetype(regime market.Regime, vol, policy market.Level) Archetype {
	switch {
	case policy == market.LevelHigh || regime == market.RegimePolicyShock:
		return IgnoringEventRisk
	case vol == market.LevelHigh && regime != market.RegimeRiskOn:
		return OvertradingChop
	case regime == market.RegimeRiskOn && vol != market.LevelHigh:
		return FightingTrend
	case regime == market.RegimeNeutral && vol != market.LevelLow:
		return ForcingConviction
	case regime == market.RegimeRiskOff:
		return OversizingPositions
	default:
		return ForcingConviction
	}
}

func computeConfidence(base *float64, missing []string) int {
	confidence := float64(defaultBaseConfidence)
	if base != nil && !math.IsNaN(*base) && !math.IsInf(*base, 0) {
		confidence = *base
	}

	for _, key := range missing {
		switch key {
		case "volatility", "policy":
			confidence -= 15
		}
	}

	if confidence > confidenceCeiling {
		confidence = confidenceCeiling
	}
	if confidence < 0 {
		confidence = 0
	}
	return int(math.Round(confidence))
}

func buildDrivers(in Input, regime market.Regime, vol, policy market.Level, tone market.FedTone) Drivers {
	d := Drivers{}
	if strings.TrimSpace(in.Regime) != "" {
		d.Regime = string(regime)
	}
	if vol != market.LevelUnknown {
		d.Volatility = string(vol)
	}
	if policy != market.LevelUnknown {
		d.PolicyRisk = string(policy)
	}
	if tone != market.FedToneUnknown {
		d.FedTone = string(tone)
	}
	return d
}
