package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"market-lens/internal/alerting"
	"market-lens/internal/config"
	"market-lens/internal/fetcher"
	"market-lens/internal/market"
	"market-lens/internal/snapshot"
	"market-lens/internal/volatility"
)

type stubIndex struct {
	level decimal.Decimal
	asOf  string
	err   error
}

func (s *stubIndex) FetchIndex(ctx context.Context, symbol string) (decimal.Decimal, string, error) {
	return s.level, s.asOf, s.err
}

type stubSeries struct {
	closes []decimal.Decimal
	err    error
}

func (s *stubSeries) FetchCloses(ctx context.Context, symbol string, days int) ([]decimal.Decimal, error) {
	return s.closes, s.err
}

type stubSpot struct {
	prices map[string]decimal.Decimal
	err    error
}

func (s *stubSpot) FetchSpot(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	return s.prices, s.err
}

type recordingNotifier struct {
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func f(v float64) *float64 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "market-lens", DataMode: "live"},
		Signals: config.SignalsConfig{
			VIXSymbol:    "^VIX",
			SeriesSymbol: "SPY",
			SeriesDays:   30,
			FocusAssets:  []string{"bitcoin"},
		},
		Inputs: config.InputsConfig{
			Regime:           "Risk-On",
			RegimeConfidence: f(80),
			FedTone:          "dovish",
			TrumpZ:           f(0.3),
			NewsIntensity:    f(20),
		},
	}
}

func newTestService(cfg *config.Config, index fetcher.IndexFetcher, series fetcher.SeriesFetcher, spot fetcher.SpotFetcher, notifier alerting.Notifier) (*Service, *snapshot.MemoryStore) {
	store := snapshot.NewMemoryStore()
	history := snapshot.New(store, zerolog.Nop())
	return New(cfg, nil, index, series, spot, history, notifier, zerolog.Nop()), store
}

func TestEvaluatePrefersIndexLevel(t *testing.T) {
	svc, _ := newTestService(testConfig(),
		&stubIndex{level: decimal.NewFromFloat(25), asOf: "2025-06-10"},
		&stubSeries{err: errors.New("should not be called")},
		nil, nil)

	eval := svc.Evaluate(context.Background())

	if eval.Volatility.Level != market.LevelHigh {
		t.Fatalf("VIX 25 should classify high, got %s", eval.Volatility.Level)
	}
	if eval.Volatility.Basis != volatility.BasisVIX {
		t.Fatalf("index level should win over the series, basis %s", eval.Volatility.Basis)
	}
	if eval.Volatility.AsOf != "2025-06-10" {
		t.Fatalf("as-of date should flow through, got %q", eval.Volatility.AsOf)
	}
}

func TestEvaluateFallsBackToRealizedSeries(t *testing.T) {
	closes := make([]decimal.Decimal, 0, 21)
	for i := 0; i < 21; i++ {
		closes = append(closes, decimal.NewFromFloat(100+float64(i)*0.01))
	}

	svc, _ := newTestService(testConfig(),
		&stubIndex{err: errors.New("upstream down")},
		&stubSeries{closes: closes},
		nil, nil)

	eval := svc.Evaluate(context.Background())

	if eval.Volatility.Basis != volatility.BasisRealized {
		t.Fatalf("index failure should fall back to realized, basis %s", eval.Volatility.Basis)
	}
	if eval.Volatility.Level != market.LevelLow {
		t.Fatalf("near-flat series should classify low, got %s", eval.Volatility.Level)
	}
}

func TestEvaluateDegradesToUnknown(t *testing.T) {
	svc, _ := newTestService(testConfig(),
		&stubIndex{err: errors.New("down")},
		&stubSeries{err: errors.New("down")},
		nil, nil)

	eval := svc.Evaluate(context.Background())

	if eval.Volatility.Level != market.LevelUnknown {
		t.Fatalf("double fetch failure should read unknown, got %s", eval.Volatility.Level)
	}
	found := false
	for _, m := range eval.Missing {
		if m == "volatility" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing list should include volatility: %v", eval.Missing)
	}
}

func TestEvaluateLabelsFocusAssets(t *testing.T) {
	svc, _ := newTestService(testConfig(),
		&stubIndex{level: decimal.NewFromFloat(14), asOf: "2025-06-10"},
		nil,
		&stubSpot{prices: map[string]decimal.Decimal{"bitcoin": decimal.NewFromFloat(64000)}},
		nil)

	eval := svc.Evaluate(context.Background())

	if len(eval.FocusAssets) != 1 || eval.FocusAssets[0] != "bitcoin $64000.00" {
		t.Fatalf("focus assets should carry spot prices, got %v", eval.FocusAssets)
	}
}

func TestEvaluateKeepsBareIDsOnSpotFailure(t *testing.T) {
	svc, _ := newTestService(testConfig(),
		&stubIndex{level: decimal.NewFromFloat(14), asOf: "2025-06-10"},
		nil,
		&stubSpot{err: errors.New("rate limited")},
		nil)

	eval := svc.Evaluate(context.Background())

	if len(eval.FocusAssets) != 1 || eval.FocusAssets[0] != "bitcoin" {
		t.Fatalf("spot failure should keep configured ids, got %v", eval.FocusAssets)
	}
}

func TestProcessBucketCapturesOncePerDay(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, store := newTestService(testConfig(),
		&stubIndex{level: decimal.NewFromFloat(18), asOf: "2025-06-10"},
		nil, nil, notifier)

	bucket := time.Now()
	if err := svc.ProcessBucket(context.Background(), bucket, false); err != nil {
		t.Fatalf("first cycle should succeed: %v", err)
	}
	if err := svc.ProcessBucket(context.Background(), bucket, false); err != nil {
		t.Fatalf("repeat cycle should be a quiet no-op: %v", err)
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Snapshots) != 1 {
		t.Fatalf("expected a single snapshot, got %d", len(state.Snapshots))
	}
	if len(notifier.notes) != 1 {
		t.Fatalf("expected a single notification, got %d", len(notifier.notes))
	}

	snap := state.Snapshots[0]
	if snap.DailyCall == "" {
		t.Fatal("snapshot must carry the daily call")
	}
	if snap.Volatility == nil || snap.Volatility.State != "normal" {
		t.Fatalf("VIX 18 should record a normal volatility state, got %+v", snap.Volatility)
	}
	if snap.Regime == nil || snap.Regime.Label != "Risk-On" {
		t.Fatalf("regime label should persist, got %+v", snap.Regime)
	}
}

func TestProcessBucketForceReplaces(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, store := newTestService(testConfig(),
		&stubIndex{level: decimal.NewFromFloat(18), asOf: "2025-06-10"},
		nil, nil, notifier)

	bucket := time.Now()
	if err := svc.ProcessBucket(context.Background(), bucket, false); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if err := svc.ProcessBucket(context.Background(), bucket, true); err != nil {
		t.Fatalf("forced cycle: %v", err)
	}

	state, _ := store.Load()
	if len(state.Snapshots) != 1 {
		t.Fatalf("forced capture must replace, got %d snapshots", len(state.Snapshots))
	}
	if len(notifier.notes) != 2 {
		t.Fatalf("forced capture should notify again, got %d notifications", len(notifier.notes))
	}
}

func TestRunRequiresScheduler(t *testing.T) {
	svc, _ := newTestService(testConfig(), &stubIndex{}, nil, nil, nil)
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("run without a scheduler should fail")
	}
}
