package market

import "strings"

// Level is the shared three-step ordinal used for volatility and policy risk.
type Level string

const (
	LevelUnknown Level = "unknown"
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
)

var levelRank = map[Level]int{
	LevelUnknown: 0,
	LevelLow:     1,
	LevelMedium:  2,
	LevelHigh:    3,
}

// NormalizeLevel maps free-form input onto the closed Level set.
// Anything unrecognized becomes LevelUnknown.
func NormalizeLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelLow:
		return LevelLow
	case LevelMedium:
		return LevelMedium
	case LevelHigh:
		return LevelHigh
	default:
		return LevelUnknown
	}
}

// MaxLevel returns the more severe of two levels (high > medium > low > unknown).
func MaxLevel(a, b Level) Level {
	if levelRank[b] > levelRank[a] {
		return b
	}
	return a
}

// Regime labels overall market risk appetite.
type Regime string

const (
	RegimeRiskOn      Regime = "Risk-On"
	RegimeRiskOff     Regime = "Risk-Off"
	RegimeNeutral     Regime = "Neutral"
	RegimePolicyShock Regime = "Policy Shock"
	RegimeStagflation Regime = "Stagflation"
)

// NormalizeRegime folds a free-form regime label onto the closed set.
// Unrecognized or empty labels default to Neutral; the default is the
// documented behaviour, not a silent string-equality miss.
func NormalizeRegime(raw string) Regime {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "risk-on", "risk on", "riskon":
		return RegimeRiskOn
	case "risk-off", "risk off", "riskoff":
		return RegimeRiskOff
	case "policy shock", "policy-shock", "policyshock":
		return RegimePolicyShock
	case "stagflation":
		return RegimeStagflation
	default:
		return RegimeNeutral
	}
}

// FedTone classifies central-bank communication.
type FedTone string

const (
	FedToneDovish  FedTone = "dovish"
	FedToneNeutral FedTone = "neutral"
	FedToneHawkish FedTone = "hawkish"
	FedToneUnknown FedTone = "unknown"
)

// NormalizeFedTone folds a free-form tone label onto the closed set.
func NormalizeFedTone(raw string) FedTone {
	switch FedTone(strings.ToLower(strings.TrimSpace(raw))) {
	case FedToneDovish:
		return FedToneDovish
	case FedToneNeutral:
		return FedToneNeutral
	case FedToneHawkish:
		return FedToneHawkish
	default:
		return FedToneUnknown
	}
}

// DataMode distinguishes live inputs from demo/sample contexts.
type DataMode string

const (
	DataModeLive DataMode = "live"
	DataModeDemo DataMode = "demo"
)

// NormalizeDataMode treats anything that is not explicitly demo as live.
func NormalizeDataMode(raw string) DataMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(DataModeDemo)) {
		return DataModeDemo
	}
	return DataModeLive
}
