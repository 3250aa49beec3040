package snapshot

import "time"

// DateLayout is the calendar-day id format for snapshots.
const DateLayout = "2006-01-02"

const (
	// RetentionLimit caps the ring buffer at the most recent snapshots.
	RetentionLimit = 45
	// maxRegimeDrivers bounds the driver list carried per snapshot.
	maxRegimeDrivers = 3
	// maxFocusAssets bounds the focus-asset list carried per snapshot.
	maxFocusAssets = 5
)

// TradeLevel is an optional trade-level verdict with its reason.
type TradeLevel struct {
	Level  string `json:"level"`
	Reason string `json:"reason,omitempty"`
}

// RegimeRecord is the persisted regime sub-record.
type RegimeRecord struct {
	Label      string   `json:"label"`
	Confidence int      `json:"confidence"`
	Drivers    []string `json:"drivers,omitempty"`
}

// PolicyRecord is the persisted policy risk sub-record.
type PolicyRecord struct {
	Label string `json:"label"`
	Score *int   `json:"score,omitempty"`
}

// FedRecord is the persisted Fed tone sub-record.
type FedRecord struct {
	Tone string `json:"tone"`
}

// VolatilityRecord is the persisted volatility sub-record.
type VolatilityRecord struct {
	State string   `json:"state"`
	Value *float64 `json:"value,omitempty"`
}

// Meta records data quality at capture time.
type Meta struct {
	Sample  bool     `json:"sample,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// DailySnapshot is one persisted rollup per calendar day, identified by its
// local date. Records are never mutated after creation except by full
// replacement under a forced re-capture.
type DailySnapshot struct {
	Date        string            `json:"date"`
	CreatedAt   time.Time         `json:"createdAt"`
	DailyCall   string            `json:"dailyCall"`
	TradeLevel  *TradeLevel       `json:"tradeLevel,omitempty"`
	FocusAssets []string          `json:"focusAssets,omitempty"`
	Regime      *RegimeRecord     `json:"regime,omitempty"`
	Policy      *PolicyRecord     `json:"policy,omitempty"`
	Fed         *FedRecord        `json:"fed,omitempty"`
	Volatility  *VolatilityRecord `json:"volatility,omitempty"`
	Meta        Meta              `json:"meta"`
}

// Change is one field-level difference between two snapshots.
type Change struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Delta is the structured difference between two snapshots.
type Delta struct {
	Changes []Change `json:"changes"`
	Summary string   `json:"summary"`
}
