package snapshot

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestHistory(store Store, now time.Time) *History {
	h := New(store, zerolog.Nop())
	return h.WithClock(func() time.Time { return now })
}

func f(v float64) *float64 { return &v }

func TestCaptureOncePerDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	h := newTestHistory(NewMemoryStore(), now)

	ctx := CaptureContext{DailyCall: "Markets calm today"}
	if !h.Capture(ctx, false) {
		t.Fatal("first capture of the day should succeed")
	}
	if h.Capture(ctx, false) {
		t.Fatal("second capture same day without force should be refused")
	}
	if !h.Capture(ctx, true) {
		t.Fatal("forced re-capture should succeed")
	}

	if got := len(h.Range(1)); got != 1 {
		t.Fatalf("forced re-capture must replace, not append: %d records", got)
	}
}

func TestCaptureRequiresDailyCall(t *testing.T) {
	h := newTestHistory(NewMemoryStore(), time.Now())
	for _, call := range []string{"", "   "} {
		if h.Capture(CaptureContext{DailyCall: call}, false) {
			t.Fatalf("capture with daily call %q should be refused", call)
		}
	}
}

func TestCaptureTruncatesDriversAndAssets(t *testing.T) {
	store := NewMemoryStore()
	h := newTestHistory(store, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))

	ctx := CaptureContext{
		DailyCall:     "call",
		RegimeLabel:   "Risk-On",
		RegimeDrivers: []string{"a", "b", "c", "d", "e"},
		FocusAssets:   []string{"1", "2", "3", "4", "5", "6", "7"},
	}
	if !h.Capture(ctx, false) {
		t.Fatal("capture should succeed")
	}

	snaps := h.Range(1)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if got := len(snaps[0].Regime.Drivers); got != 3 {
		t.Fatalf("drivers must truncate to 3, got %d", got)
	}
	if got := len(snaps[0].FocusAssets); got != 5 {
		t.Fatalf("focus assets must truncate to 5, got %d", got)
	}
}

func TestCaptureNormalizesFedToneAndSentiment(t *testing.T) {
	cases := []struct {
		sentiment float64
		want      string
	}{
		{75, "low"},
		{50, "normal"},
		{20, "elevated"},
	}

	for _, tc := range cases {
		h := newTestHistory(NewMemoryStore(), time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
		ctx := CaptureContext{
			DailyCall:      "call",
			FedTone:        "HAWKISH",
			SentimentScore: f(tc.sentiment),
		}
		if !h.Capture(ctx, false) {
			t.Fatal("capture should succeed")
		}
		snap := h.Range(1)[0]
		if snap.Fed == nil || snap.Fed.Tone != "hawkish" {
			t.Fatalf("fed tone should normalize to lowercase, got %+v", snap.Fed)
		}
		if snap.Volatility == nil || snap.Volatility.State != tc.want {
			t.Fatalf("sentiment %.0f: expected state %s, got %+v", tc.sentiment, tc.want, snap.Volatility)
		}
	}
}

func TestCapturePrunesToRetentionLimit(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for day := 0; day < RetentionLimit+10; day++ {
		h := newTestHistory(store, base.AddDate(0, 0, day))
		if !h.Capture(CaptureContext{DailyCall: fmt.Sprintf("day %d", day)}, false) {
			t.Fatalf("capture for day %d should succeed", day)
		}
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(state.Snapshots) != RetentionLimit {
		t.Fatalf("expected %d retained snapshots, got %d", RetentionLimit, len(state.Snapshots))
	}
	oldest := state.Snapshots[0]
	if oldest.Date != base.AddDate(0, 0, 10).Format(DateLayout) {
		t.Fatalf("oldest-by-date must be pruned first, oldest now %s", oldest.Date)
	}
}

func TestYesterdayPrefersExactMatch(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, daysAgo := range []int{3, 1} {
		h := newTestHistory(store, base.AddDate(0, 0, -daysAgo))
		if !h.Capture(CaptureContext{DailyCall: fmt.Sprintf("%d days ago", daysAgo)}, false) {
			t.Fatal("capture should succeed")
		}
	}

	h := newTestHistory(store, base)
	got := h.Yesterday()
	if got == nil {
		t.Fatal("expected a snapshot")
	}
	if got.Date != base.AddDate(0, 0, -1).Format(DateLayout) {
		t.Fatalf("expected exact calendar-yesterday, got %s", got.Date)
	}
}

func TestYesterdayFallsBackToMostRecentEarlier(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, daysAgo := range []int{5, 3} {
		h := newTestHistory(store, base.AddDate(0, 0, -daysAgo))
		h.Capture(CaptureContext{DailyCall: "older"}, false)
	}

	h := newTestHistory(store, base)
	got := h.Yesterday()
	if got == nil {
		t.Fatal("expected fallback snapshot")
	}
	if got.Date != base.AddDate(0, 0, -3).Format(DateLayout) {
		t.Fatalf("expected most recent earlier record, got %s", got.Date)
	}
}

func TestYesterdayIgnoresToday(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	h := newTestHistory(store, now)
	h.Capture(CaptureContext{DailyCall: "today"}, false)

	if got := h.Yesterday(); got != nil {
		t.Fatalf("today-only history has no yesterday, got %s", got.Date)
	}
}

func TestRangeSortsMostRecentFirst(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, daysAgo := range []int{6, 2, 4} {
		h := newTestHistory(store, base.AddDate(0, 0, -daysAgo))
		h.Capture(CaptureContext{DailyCall: "entry"}, false)
	}

	h := newTestHistory(store, base)
	got := h.Range(7)
	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots in window, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date < got[i].Date {
			t.Fatalf("range must sort most-recent-first: %s before %s", got[i-1].Date, got[i].Date)
		}
	}

	if narrow := h.Range(3); len(narrow) != 1 {
		t.Fatalf("3-day window should hold 1 snapshot, got %d", len(narrow))
	}
}

func TestStoreFailuresDegradeToEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.FailLoads = true
	h := newTestHistory(store, time.Now())

	if got := h.Yesterday(); got != nil {
		t.Fatal("load failure should read as empty history")
	}
	if got := h.Range(7); len(got) != 0 {
		t.Fatal("load failure should read as empty range")
	}

	store.FailLoads = false
	store.FailSaves = true
	if h.Capture(CaptureContext{DailyCall: "call"}, false) {
		t.Fatal("capture must report failure when persistence fails")
	}
}
