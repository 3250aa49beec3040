package snapshot

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := OpenBadger(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	state := State{
		Snapshots: []DailySnapshot{
			{
				Date:      "2025-06-09",
				CreatedAt: time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC),
				DailyCall: "Markets calm today",
				Regime:    &RegimeRecord{Label: "Neutral", Confidence: 55},
			},
		},
		LastCapture: "2025-06-09",
	}

	if err := store.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LastCapture != "2025-06-09" {
		t.Fatalf("unexpected last capture: %q", loaded.LastCapture)
	}
	if len(loaded.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(loaded.Snapshots))
	}
	snap := loaded.Snapshots[0]
	if snap.Date != "2025-06-09" || snap.DailyCall != "Markets calm today" {
		t.Fatalf("snapshot did not round-trip: %+v", snap)
	}
	if snap.Regime == nil || snap.Regime.Confidence != 55 {
		t.Fatalf("regime sub-record did not round-trip: %+v", snap.Regime)
	}
}

func TestBadgerStoreEmptyReadsAsEmpty(t *testing.T) {
	store, err := OpenBadger(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	state, err := store.Load()
	if err != nil {
		t.Fatalf("fresh store load should not fail: %v", err)
	}
	if len(state.Snapshots) != 0 || state.LastCapture != "" {
		t.Fatalf("fresh store should read as empty, got %+v", state)
	}
}

func TestBadgerStoreOverwrite(t *testing.T) {
	store, err := OpenBadger(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.Save(State{LastCapture: "2025-06-09"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(State{LastCapture: "2025-06-10"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LastCapture != "2025-06-10" {
		t.Fatalf("save must replace prior state, got %q", loaded.LastCapture)
	}
}
