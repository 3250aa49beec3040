package policyrisk

import (
	"math"

	"market-lens/internal/market"
)

// Basis records which inputs contributed to the aggregate level.
type Basis struct {
	Trump bool `json:"trump,omitempty"`
	News  bool `json:"news,omitempty"`
}

// Result is the normalized policy risk reading.
type Result struct {
	Level market.Level `json:"level"`
	Score *int         `json:"score,omitempty"`
	Basis Basis        `json:"basis"`
}

const (
	trumpMediumFloor = 1.0
	trumpHighFloor   = 1.5
	newsLowCeiling   = 35
	newsHighFloor    = 65
)

// Classify aggregates a policy-intensity z-score and a news-intensity score
// (0-100) into one level. With both present the levels combine via the max
// rule; invalid or out-of-range inputs are excluded, not coerced.
func Classify(trumpZ *float64, newsIntensity *float64) Result {
	z, hasTrump := usableFinite(trumpZ)
	news, hasNews := usableFinite(newsIntensity)
	if hasNews && (news < 0 || news > 100) {
		hasNews = false
	}

	switch {
	case hasTrump && hasNews:
		level := market.MaxLevel(classifyTrump(z), classifyNews(news))
		score := roundInt((math.Abs(z)*20 + news) / 2)
		return Result{Level: level, Score: &score, Basis: Basis{Trump: true, News: true}}
	case hasTrump:
		score := roundInt(math.Abs(z) * 25)
		return Result{Level: classifyTrump(z), Score: &score, Basis: Basis{Trump: true}}
	case hasNews:
		score := roundInt(news)
		return Result{Level: classifyNews(news), Score: &score, Basis: Basis{News: true}}
	default:
		return Result{Level: market.LevelUnknown}
	}
}

func usableFinite(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func classifyTrump(z float64) market.Level {
	abs := math.Abs(z)
	switch {
	case abs >= trumpHighFloor:
		return market.LevelHigh
	case abs >= trumpMediumFloor:
		return market.LevelMedium
	default:
		return market.LevelLow
	}
}

func classifyNews(intensity float64) market.Level {
	switch {
	case intensity < newsLowCeiling:
		return market.LevelLow
	case intensity <= newsHighFloor:
		return market.LevelMedium
	default:
		return market.LevelHigh
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
