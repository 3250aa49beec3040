package lens

import (
	"fmt"
	"math"
	"strings"

	"market-lens/internal/market"
)

// Posture is the recommended general risk stance.
type Posture string

const (
	PostureDefensive  Posture = "defensive"
	PostureBalanced   Posture = "balanced"
	PostureAggressive Posture = "aggressive"
)

// Playbook is the recommended tactical approach.
type Playbook string

const (
	PlaybookTrend     Playbook = "trend"
	PlaybookRange     Playbook = "range"
	PlaybookChop      Playbook = "chop"
	PlaybookEventRisk Playbook = "event-risk"
)

// Leverage is the leverage stance.
type Leverage string

const (
	LeverageAvoid    Leverage = "avoid"
	LeverageNormal   Leverage = "normal"
	LeverageCautious Leverage = "cautious"
)

// Input carries the raw upstream readings. Free-form strings are accepted
// and normalized internally so Compute stays total over any input shape.
type Input struct {
	Regime           string
	RegimeConfidence *float64
	Volatility       string
	PolicyRisk       string
	FedTone          string
	DataMode         string
	// Missing lists the absent required-input keys. Nil means derive it
	// from the inputs themselves.
	Missing []string
}

// Reason is one audit entry in the fixed evidence 5-tuple.
type Reason struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Result is the combined posture/playbook/leverage call.
type Result struct {
	Posture          Posture  `json:"posture"`
	Playbook         Playbook `json:"playbook"`
	Leverage         Leverage `json:"leverage"`
	Summary          string   `json:"summary"`
	Bullets          []string `json:"bullets"`
	Reasons          []Reason `json:"reasons"`
	Confidence       int      `json:"confidence"`
	InsufficientData bool     `json:"insufficientData,omitempty"`
	IsDemoContext    bool     `json:"isDemoContext,omitempty"`
}

const (
	defaultConfidence     = 50
	demoConfidenceCeiling = 45

	missingRegime     = "regime"
	missingVolatility = "volatility"
	missingPolicy     = "policy"

	insufficientSummary = "Insufficient data — defaulting to risk control"
)

// Compute derives the day's posture, playbook, and leverage stance. It is
// deterministic and never fails; absent fields fall back to safe defaults.
func Compute(in Input) Result {
	regime := market.NormalizeRegime(in.Regime)
	vol := market.NormalizeLevel(in.Volatility)
	policy := market.NormalizeLevel(in.PolicyRisk)
	tone := market.NormalizeFedTone(in.FedTone)
	mode := market.NormalizeDataMode(in.DataMode)

	missing := in.Missing
	if missing == nil {
		missing = deriveMissing(in, vol, policy)
	}

	confidence := computeConfidence(in.RegimeConfidence, missing, tone, mode)
	insufficient := mode != market.DataModeDemo && len(missing) > 0

	posture := basePosture(regime, vol, policy, tone)
	posture = applyVolatilityModifier(posture, regime, vol, policy)
	playbook := selectPlaybook(regime, vol, policy)
	leverage := selectLeverage(regime, vol, policy, confidence)

	result := Result{
		Posture:       posture,
		Playbook:      playbook,
		Leverage:      leverage,
		Confidence:    confidence,
		Reasons:       buildReasons(regime, confidence, vol, policy, tone),
		IsDemoContext: mode == market.DataModeDemo,
	}

	if insufficient {
		result.InsufficientData = true
		result.Posture = PostureDefensive
		result.Playbook = PlaybookRange
		result.Leverage = LeverageCautious
		result.Summary = insufficientSummary
		result.Bullets = []string{
			"One or more required inputs are unavailable",
			"Defaulting to defensive posture and reduced size",
			"Re-check once live data is restored",
		}
		return result
	}

	result.Summary = buildSummary(result.Posture, regime)
	result.Bullets = buildBullets(result.Posture, result.Playbook)
	return result
}

func deriveMissing(in Input, vol, policy market.Level) []string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(in.Regime) == "" || !usableConfidence(in.RegimeConfidence) {
		missing = append(missing, missingRegime)
	}
	if vol == market.LevelUnknown {
		missing = append(missing, missingVolatility)
	}
	if policy == market.LevelUnknown {
		missing = append(missing, missingPolicy)
	}
	return missing
}

func usableConfidence(c *float64) bool {
	return c != nil && !math.IsNaN(*c) && !math.IsInf(*c, 0)
}

func computeConfidence(raw *float64, missing []string, tone market.FedTone, mode market.DataMode) int {
	confidence := float64(defaultConfidence)
	if usableConfidence(raw) {
		confidence = clamp(*raw, 0, 100)
	}

	if contains(missing, missingVolatility) {
		confidence -= 15
	}
	if contains(missing, missingPolicy) {
		confidence -= 15
	}
	if tone == market.FedToneUnknown {
		confidence -= 10
	}

	if mode == market.DataModeDemo && confidence > demoConfidenceCeiling {
		confidence = demoConfidenceCeiling
	}

	return int(math.Round(clamp(confidence, 0, 100)))
}

func basePosture(regime market.Regime, vol, policy market.Level, tone market.FedTone) Posture {
	switch regime {
	case market.RegimePolicyShock, market.RegimeRiskOff:
		return PostureDefensive
	case market.RegimeRiskOn:
		if vol == market.LevelHigh || policy == market.LevelHigh {
			return PostureBalanced
		}
		return PostureAggressive
	default: // Neutral, Stagflation
		posture := PostureBalanced
		if vol == market.LevelHigh {
			posture = PostureDefensive
		}
		if tone == market.FedToneHawkish {
			posture = stepDown(posture)
		}
		return posture
	}
}

func applyVolatilityModifier(posture Posture, regime market.Regime, vol, policy market.Level) Posture {
	if vol == market.LevelHigh && regime != market.RegimePolicyShock && posture != PostureDefensive {
		return stepDown(posture)
	}
	// Guard kept exactly as designed: the upgrade requires an already
	// balanced posture in a Risk-On regime with low volatility and
	// non-high policy risk.
	if vol == market.LevelLow && regime != market.RegimePolicyShock && policy != market.LevelHigh &&
		posture == PostureBalanced && regime == market.RegimeRiskOn {
		return PostureAggressive
	}
	return posture
}

func selectPlaybook(regime market.Regime, vol, policy market.Level) Playbook {
	if regime == market.RegimePolicyShock || policy == market.LevelHigh {
		return PlaybookEventRisk
	}
	if regime == market.RegimeRiskOn && vol != market.LevelHigh {
		return PlaybookTrend
	}
	if vol == market.LevelHigh {
		return PlaybookChop
	}
	return PlaybookRange
}

func selectLeverage(regime market.Regime, vol, policy market.Level, confidence int) Leverage {
	if policy == market.LevelHigh || vol == market.LevelHigh {
		return LeverageAvoid
	}
	if confidence < 50 || policy == market.LevelMedium {
		return LeverageCautious
	}
	if regime == market.RegimePolicyShock {
		return LeverageAvoid
	}
	return LeverageNormal
}

func buildReasons(regime market.Regime, confidence int, vol, policy market.Level, tone market.FedTone) []Reason {
	return []Reason{
		{Key: "regime", Label: "Regime", Value: string(regime)},
		{Key: "confidence", Label: "Confidence", Value: fmt.Sprintf("%d%%", confidence)},
		{Key: "volatility", Label: "Volatility", Value: string(vol)},
		{Key: "policyRisk", Label: "Policy risk", Value: string(policy)},
		{Key: "fedTone", Label: "Fed tone", Value: string(tone)},
	}
}

func buildSummary(posture Posture, regime market.Regime) string {
	switch posture {
	case PostureDefensive:
		return fmt.Sprintf("Defensive stance: %s conditions favour capital preservation over new risk.", regime)
	case PostureAggressive:
		return fmt.Sprintf("Aggressive stance: %s conditions support leaning into trend exposure.", regime)
	default:
		return fmt.Sprintf("Balanced stance: %s conditions call for selective, measured positioning.", regime)
	}
}

func buildBullets(posture Posture, playbook Playbook) []string {
	var bullets []string
	switch posture {
	case PostureDefensive:
		bullets = []string{
			"Reduce gross exposure and widen stops",
			"Favour liquid, high-quality positions",
			"Keep dry powder for dislocations",
		}
	case PostureAggressive:
		bullets = []string{
			"Lean into trend continuation setups",
			"Scale positions on confirmed breakouts",
			"Trail stops rather than taking early profits",
		}
	default:
		bullets = []string{
			"Size positions at or below normal",
			"Take profits into strength",
			"Wait for confirmation before adding risk",
		}
	}

	if playbook == PlaybookEventRisk {
		bullets[len(bullets)-1] = "Stand aside around scheduled policy events"
	}
	return bullets
}

// stepDown moves one step toward defensive on the ordered posture scale.
func stepDown(p Posture) Posture {
	switch p {
	case PostureAggressive:
		return PostureBalanced
	default:
		return PostureDefensive
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(list []string, key string) bool {
	for _, item := range list {
		if item == key {
			return true
		}
	}
	return false
}
