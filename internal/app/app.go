package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"market-lens/internal/alerting"
	"market-lens/internal/config"
	"market-lens/internal/fetcher"
	"market-lens/internal/scheduler"
	"market-lens/internal/service"
	"market-lens/internal/snapshot"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetchers() (fetcher.IndexFetcher, fetcher.SeriesFetcher, fetcher.SpotFetcher) {
	chart := fetcher.NewChart(fetcher.ChartOptions{
		BaseURL:   a.Config.Signals.Chart.BaseURL,
		Timeout:   a.Config.Signals.Chart.RequestTimeout,
		UserAgent: a.Config.Signals.Chart.UserAgent,
	}, a.Logger)

	spot := fetcher.NewCoinGecko(fetcher.CoinGeckoOptions{
		BaseURL:   a.Config.Signals.CoinGecko.BaseURL,
		Timeout:   a.Config.Signals.CoinGecko.RequestTimeout,
		UserAgent: a.Config.Signals.CoinGecko.UserAgent,
	}, a.Logger)

	return chart, chart, spot
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openHistory() (*snapshot.History, func(), error) {
	store, err := snapshot.OpenBadger(a.Config.Store.Path)
	if err != nil {
		return nil, nil, err
	}

	history := snapshot.New(store, a.Logger)
	closer := func() {
		if err := store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to close snapshot store")
		}
	}
	return history, closer, nil
}

func (a *App) newService(history *snapshot.History, sched *scheduler.Scheduler) *service.Service {
	index, series, spot := a.newFetchers()
	return service.New(a.Config, sched, index, series, spot, history, a.newNotifier(), a.Logger)
}

// Run executes the long-running daily capture service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	history, closeHistory, err := a.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc := a.newService(history, sched)

	a.Logger.Info().Msg("starting daily capture service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("daily capture service stopped")
	return nil
}

// CaptureOptions configure the one-shot capture command.
type CaptureOptions struct {
	Force bool
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Days int
}

// CompareOptions configure the compare command.
type CompareOptions struct {
	Days int
}

// ExportOptions hold parameters for exporting snapshot history.
type ExportOptions struct {
	Days      int
	CSVPath   string
	PNGPath   string
	MaxPoints int
}

// LensOptions carry explicit signal readings for a one-shot evaluation.
type LensOptions struct {
	Regime        string
	Confidence    *float64
	VIX           *float64
	TrumpZ        *float64
	NewsIntensity *float64
	FedTone       string
	DataMode      string
}
