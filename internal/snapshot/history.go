package snapshot

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-lens/internal/market"
)

// CaptureContext carries everything a daily capture needs. DailyCall is the
// only mandatory field.
type CaptureContext struct {
	DailyCall        string
	TradeLevel       string
	TradeLevelReason string
	FocusAssets      []string

	RegimeLabel      string
	RegimeConfidence int
	RegimeDrivers    []string

	PolicyLabel string
	PolicyScore *int

	FedTone string

	VolatilityState string
	VolatilityValue *float64
	// SentimentScore derives a coarse volatility state when no explicit
	// state is supplied.
	SentimentScore *float64

	IsSample bool
	Missing  []string
}

// History owns the persisted snapshot ring buffer. Store failures are
// logged and degrade to empty state; no method returns an error.
type History struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a History over the given store.
func New(store Store, logger zerolog.Logger) *History {
	return &History{
		store:  store,
		logger: logger.With().Str("component", "snapshot_history").Logger(),
		now:    time.Now,
	}
}

// WithClock overrides the clock; intended for tests.
func (h *History) WithClock(now func() time.Time) *History {
	h.now = now
	return h
}

// Capture records at most one snapshot per calendar day. It returns false
// without mutating state when today is already captured (unless force) or
// when the context has no daily call.
func (h *History) Capture(ctx CaptureContext, force bool) bool {
	if strings.TrimSpace(ctx.DailyCall) == "" {
		return false
	}

	today := h.now().Format(DateLayout)
	state := h.load()

	if !force && state.LastCapture == today {
		return false
	}
	if !force && hasDate(state.Snapshots, today) {
		return false
	}

	snap := h.buildSnapshot(ctx, today)

	kept := make([]DailySnapshot, 0, len(state.Snapshots)+1)
	for _, existing := range state.Snapshots {
		if existing.Date != today {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, snap)

	sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	if len(kept) > RetentionLimit {
		kept = kept[len(kept)-RetentionLimit:]
	}

	state.Snapshots = kept
	state.LastCapture = today

	if err := h.store.Save(state); err != nil {
		h.logger.Error().Err(err).Str("date", today).Msg("failed to persist snapshot")
		return false
	}

	h.logger.Info().Str("date", today).Bool("force", force).Msg("snapshot captured")
	return true
}

func (h *History) buildSnapshot(ctx CaptureContext, today string) DailySnapshot {
	snap := DailySnapshot{
		Date:      today,
		CreatedAt: h.now().UTC(),
		DailyCall: ctx.DailyCall,
		Meta:      Meta{Sample: ctx.IsSample, Missing: ctx.Missing},
	}

	if ctx.TradeLevel != "" {
		snap.TradeLevel = &TradeLevel{Level: ctx.TradeLevel, Reason: ctx.TradeLevelReason}
	}

	if len(ctx.FocusAssets) > 0 {
		assets := ctx.FocusAssets
		if len(assets) > maxFocusAssets {
			assets = assets[:maxFocusAssets]
		}
		snap.FocusAssets = append([]string(nil), assets...)
	}

	if ctx.RegimeLabel != "" {
		drivers := ctx.RegimeDrivers
		if len(drivers) > maxRegimeDrivers {
			drivers = drivers[:maxRegimeDrivers]
		}
		snap.Regime = &RegimeRecord{
			Label:      ctx.RegimeLabel,
			Confidence: ctx.RegimeConfidence,
			Drivers:    append([]string(nil), drivers...),
		}
	}

	if ctx.PolicyLabel != "" {
		snap.Policy = &PolicyRecord{Label: ctx.PolicyLabel, Score: ctx.PolicyScore}
	}

	if ctx.FedTone != "" {
		snap.Fed = &FedRecord{Tone: string(market.NormalizeFedTone(ctx.FedTone))}
	}

	if state := volatilityState(ctx); state != "" {
		snap.Volatility = &VolatilityRecord{State: state, Value: ctx.VolatilityValue}
	}

	return snap
}

// volatilityState prefers an explicit state and otherwise derives one from
// the sentiment score: >60 low, >40 normal, else elevated.
func volatilityState(ctx CaptureContext) string {
	if ctx.VolatilityState != "" {
		return ctx.VolatilityState
	}
	if ctx.SentimentScore == nil {
		return ""
	}
	switch score := *ctx.SentimentScore; {
	case score > 60:
		return "low"
	case score > 40:
		return "normal"
	default:
		return "elevated"
	}
}

// Yesterday returns calendar-yesterday's snapshot, falling back to the most
// recent record strictly before today.
func (h *History) Yesterday() *DailySnapshot {
	state := h.load()
	if len(state.Snapshots) == 0 {
		return nil
	}

	today := h.now().Format(DateLayout)
	yesterday := h.now().AddDate(0, 0, -1).Format(DateLayout)

	var latestBefore *DailySnapshot
	for i := range state.Snapshots {
		snap := state.Snapshots[i]
		if snap.Date == yesterday {
			return &snap
		}
		if snap.Date < today && (latestBefore == nil || snap.Date > latestBefore.Date) {
			copied := snap
			latestBefore = &copied
		}
	}
	return latestBefore
}

// Range returns snapshots dated within the last `days` days, most recent
// first.
func (h *History) Range(days int) []DailySnapshot {
	state := h.load()
	cutoff := h.now().AddDate(0, 0, -days).Format(DateLayout)

	out := make([]DailySnapshot, 0, len(state.Snapshots))
	for _, snap := range state.Snapshots {
		if snap.Date >= cutoff {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func (h *History) load() State {
	state, err := h.store.Load()
	if err != nil {
		h.logger.Warn().Err(err).Msg("snapshot store unavailable; treating as empty")
		return State{}
	}
	return state
}

func hasDate(snapshots []DailySnapshot, date string) bool {
	for _, snap := range snapshots {
		if snap.Date == date {
			return true
		}
	}
	return false
}
