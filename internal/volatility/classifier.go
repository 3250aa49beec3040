package volatility

import (
	"math"

	"market-lens/internal/market"
)

// Basis records which input produced the classification.
type Basis string

const (
	BasisVIX      Basis = "vix"
	BasisRealized Basis = "realized"
	BasisNone     Basis = "none"
)

// Result is the normalized volatility reading.
type Result struct {
	Level market.Level `json:"level"`
	Value *float64     `json:"value,omitempty"`
	Basis Basis        `json:"basis"`
	AsOf  string       `json:"asOf,omitempty"`
}

const (
	vixLowCeiling     = 16
	vixMediumCeiling  = 22
	realizedLowFloor  = 0.15
	realizedHighFloor = 0.25
	maxReturnWindow   = 20
	tradingDays       = 252
)

// Classify maps a volatility proxy to a three-step level. A valid VIX-like
// value wins over any supplied price series; with neither usable the result
// is unknown with basis none and no value.
func Classify(vix *float64, series []float64, asOf string) Result {
	if v, ok := usableVIX(vix); ok {
		return Result{Level: classifyVIX(v), Value: &v, Basis: BasisVIX, AsOf: asOf}
	}

	if ann, ok := realizedAnnualized(series); ok {
		return Result{Level: classifyRealized(ann), Value: &ann, Basis: BasisRealized, AsOf: asOf}
	}

	return Result{Level: market.LevelUnknown, Basis: BasisNone, AsOf: asOf}
}

func usableVIX(vix *float64) (float64, bool) {
	if vix == nil {
		return 0, false
	}
	v := *vix
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func classifyVIX(v float64) market.Level {
	switch {
	case v < vixLowCeiling:
		return market.LevelLow
	case v <= vixMediumCeiling:
		return market.LevelMedium
	default:
		return market.LevelHigh
	}
}

func classifyRealized(ann float64) market.Level {
	switch {
	case ann < realizedLowFloor:
		return market.LevelLow
	case ann <= realizedHighFloor:
		return market.LevelMedium
	default:
		return market.LevelHigh
	}
}

// realizedAnnualized computes annualized realized volatility from the most
// recent log-returns of an oldest-first close series. Non-positive prices
// make a log-return non-finite and invalidate the series.
func realizedAnnualized(series []float64) (float64, bool) {
	if len(series) < 2 {
		return 0, false
	}

	start := 0
	if excess := len(series) - (maxReturnWindow + 1); excess > 0 {
		start = excess
	}
	window := series[start:]

	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		prev, curr := window[i-1], window[i]
		if prev <= 0 || curr <= 0 || math.IsNaN(prev) || math.IsNaN(curr) || math.IsInf(prev, 0) || math.IsInf(curr, 0) {
			return 0, false
		}
		r := math.Log(curr / prev)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, false
		}
		returns = append(returns, r)
	}
	if len(returns) == 0 {
		return 0, false
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	ann := math.Sqrt(variance * tradingDays)
	if math.IsNaN(ann) || math.IsInf(ann, 0) {
		return 0, false
	}
	return ann, true
}
