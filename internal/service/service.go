package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-lens/internal/alerting"
	"market-lens/internal/config"
	"market-lens/internal/fetcher"
	"market-lens/internal/lens"
	"market-lens/internal/market"
	"market-lens/internal/mistake"
	"market-lens/internal/policyrisk"
	"market-lens/internal/scheduler"
	"market-lens/internal/snapshot"
	"market-lens/internal/volatility"
)

// Evaluation is one full pass of the classification core over the current
// upstream readings.
type Evaluation struct {
	Volatility  volatility.Result
	PolicyRisk  policyrisk.Result
	Lens        lens.Result
	Mistake     mistake.Result
	Hero        mistake.HeroCopyResult
	FocusAssets []string
	Missing     []string
}

// Service orchestrates fetching, classification, persistence, and alerting.
type Service struct {
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	index     fetcher.IndexFetcher
	series    fetcher.SeriesFetcher
	spot      fetcher.SpotFetcher
	history   *snapshot.History
	notifier  alerting.Notifier
	logger    zerolog.Logger
}

// New constructs the daily capture service.
func New(cfg *config.Config, sched *scheduler.Scheduler, index fetcher.IndexFetcher, series fetcher.SeriesFetcher, spot fetcher.SpotFetcher, history *snapshot.History, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		scheduler: sched,
		index:     index,
		series:    series,
		spot:      spot,
		history:   history,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the aligned daily capture loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, func(ctx context.Context, bucket time.Time) error {
		return s.ProcessBucket(ctx, bucket, false)
	})
}

// ProcessBucket runs one evaluate-capture-compare-alert cycle.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time, force bool) error {
	eval := s.Evaluate(ctx)

	captured := s.Capture(eval, force)
	if !captured {
		s.logger.Info().Time("bucket", bucket).Msg("snapshot already captured today; skipping")
		return nil
	}

	prev := s.history.Yesterday()
	curr := s.today()
	delta := snapshot.Compare(prev, curr)

	s.logger.Info().Time("bucket", bucket).
		Str("posture", string(eval.Lens.Posture)).
		Str("playbook", string(eval.Lens.Playbook)).
		Int("confidence", eval.Lens.Confidence).
		Str("delta", delta.Summary).
		Msg("daily snapshot recorded")

	if s.notifier != nil {
		note := alerting.Notification{
			Date:      bucket.Format(snapshot.DateLayout),
			DailyCall: eval.Hero.PrimaryLine,
			Posture:   eval.Lens.Posture,
			Playbook:  eval.Lens.Playbook,
			Leverage:  eval.Lens.Leverage,
			Delta:     delta,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to dispatch daily update")
		}
	}

	return nil
}

// Evaluate runs the classification core against the freshest readings it
// can obtain. Fetch failures degrade to unknown signals; Evaluate itself
// never fails.
func (s *Service) Evaluate(ctx context.Context) Evaluation {
	vol := s.fetchVolatility(ctx)

	inputs := s.cfg.Inputs
	policy := policyrisk.Classify(inputs.TrumpZ, inputs.NewsIntensity)

	missing := deriveMissing(inputs, vol.Level, policy.Level)

	lensResult := lens.Compute(lens.Input{
		Regime:           inputs.Regime,
		RegimeConfidence: inputs.RegimeConfidence,
		Volatility:       string(vol.Level),
		PolicyRisk:       string(policy.Level),
		FedTone:          inputs.FedTone,
		DataMode:         s.cfg.App.DataMode,
		Missing:          missing,
	})

	base := float64(lensResult.Confidence)
	mistakeResult := mistake.Compute(mistake.Input{
		Regime:         inputs.Regime,
		Volatility:     string(vol.Level),
		PolicyRisk:     string(policy.Level),
		FedTone:        inputs.FedTone,
		BaseConfidence: &base,
		Missing:        missing,
	})

	hero := mistake.HeroCopy(inputs.Regime, string(vol.Level), string(policy.Level), trafficFor(lensResult.Posture))

	return Evaluation{
		Volatility:  vol,
		PolicyRisk:  policy,
		Lens:        lensResult,
		Mistake:     mistakeResult,
		Hero:        hero,
		FocusAssets: s.fetchFocusAssets(ctx),
		Missing:     missing,
	}
}

// Capture persists the evaluation as today's snapshot.
func (s *Service) Capture(eval Evaluation, force bool) bool {
	inputs := s.cfg.Inputs

	captureCtx := snapshot.CaptureContext{
		DailyCall:        eval.Hero.PrimaryLine,
		TradeLevel:       eval.Hero.BadgeBehavioral,
		TradeLevelReason: eval.Lens.Summary,
		FocusAssets:      eval.FocusAssets,
		RegimeLabel:      string(market.NormalizeRegime(inputs.Regime)),
		RegimeConfidence: eval.Lens.Confidence,
		RegimeDrivers:    reasonValues(eval.Lens.Reasons),
		PolicyLabel:      string(eval.PolicyRisk.Level),
		PolicyScore:      eval.PolicyRisk.Score,
		FedTone:          inputs.FedTone,
		VolatilityState:  volatilityState(eval.Volatility.Level),
		VolatilityValue:  eval.Volatility.Value,
		IsSample:         market.NormalizeDataMode(s.cfg.App.DataMode) == market.DataModeDemo,
		Missing:          eval.Missing,
	}

	return s.history.Capture(captureCtx, force)
}

func (s *Service) today() *snapshot.DailySnapshot {
	for _, snap := range s.history.Range(0) {
		copied := snap
		return &copied
	}
	return nil
}

func (s *Service) fetchVolatility(ctx context.Context) volatility.Result {
	if s.index != nil {
		if level, asOf, err := s.index.FetchIndex(ctx, s.cfg.Signals.VIXSymbol); err == nil {
			value := level.InexactFloat64()
			return volatility.Classify(&value, nil, asOf)
		} else {
			s.logger.Warn().Err(err).Str("symbol", s.cfg.Signals.VIXSymbol).Msg("vix fetch failed; trying realized series")
		}
	}

	if s.series != nil {
		closes, err := s.series.FetchCloses(ctx, s.cfg.Signals.SeriesSymbol, s.cfg.Signals.SeriesDays)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", s.cfg.Signals.SeriesSymbol).Msg("close series fetch failed")
		} else {
			series := make([]float64, 0, len(closes))
			for _, c := range closes {
				series = append(series, c.InexactFloat64())
			}
			return volatility.Classify(nil, series, "")
		}
	}

	return volatility.Classify(nil, nil, "")
}

func (s *Service) fetchFocusAssets(ctx context.Context) []string {
	assets := s.cfg.Signals.FocusAssets
	if len(assets) == 0 || s.spot == nil {
		return assets
	}

	prices, err := s.spot.FetchSpot(ctx, assets)
	if err != nil {
		s.logger.Warn().Err(err).Msg("focus asset spot fetch failed")
		return assets
	}

	labelled := make([]string, 0, len(assets))
	for _, id := range assets {
		if price, ok := prices[id]; ok {
			labelled = append(labelled, fmt.Sprintf("%s $%s", id, price.StringFixed(2)))
		} else {
			labelled = append(labelled, id)
		}
	}
	return labelled
}

func deriveMissing(inputs config.InputsConfig, vol, policy market.Level) []string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(inputs.Regime) == "" || inputs.RegimeConfidence == nil {
		missing = append(missing, "regime")
	}
	if vol == market.LevelUnknown {
		missing = append(missing, "volatility")
	}
	if policy == market.LevelUnknown {
		missing = append(missing, "policy")
	}
	return missing
}

// volatilityState maps a classifier level onto the coarse state recorded in
// snapshots. Unknown maps to empty so the record is omitted entirely.
func volatilityState(level market.Level) string {
	switch level {
	case market.LevelLow:
		return "low"
	case market.LevelMedium:
		return "normal"
	case market.LevelHigh:
		return "elevated"
	default:
		return ""
	}
}

func trafficFor(posture lens.Posture) mistake.TrafficLevel {
	switch posture {
	case lens.PostureDefensive:
		return mistake.TrafficRed
	case lens.PostureAggressive:
		return mistake.TrafficGreen
	default:
		return mistake.TrafficYellow
	}
}

func reasonValues(reasons []lens.Reason) []string {
	values := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		values = append(values, fmt.Sprintf("%s: %s", reason.Label, reason.Value))
	}
	return values
}
