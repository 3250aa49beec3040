package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"market-lens/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Signals   SignalsConfig   `mapstructure:"signals"`
	Inputs    InputsConfig    `mapstructure:"inputs"`
	Store     StoreConfig     `mapstructure:"store"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	DataMode    string `mapstructure:"data_mode"`
}

// SchedulerConfig governs capture cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// SignalsConfig covers upstream market-data access.
type SignalsConfig struct {
	VIXSymbol    string          `mapstructure:"vix_symbol"`
	SeriesSymbol string          `mapstructure:"series_symbol"`
	SeriesDays   int             `mapstructure:"series_days"`
	FocusAssets  []string        `mapstructure:"focus_assets"`
	Chart        ChartConfig     `mapstructure:"chart"`
	CoinGecko    CoinGeckoConfig `mapstructure:"coingecko"`
}

// ChartConfig captures chart API connectivity.
type ChartConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// CoinGeckoConfig captures CoinGecko connectivity.
type CoinGeckoConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// InputsConfig carries readings supplied by external collaborators (regime
// classification, Fed tone, policy intensity). Nil pointers mean absent.
type InputsConfig struct {
	Regime           string   `mapstructure:"regime"`
	RegimeConfidence *float64 `mapstructure:"regime_confidence"`
	FedTone          string   `mapstructure:"fed_tone"`
	TrumpZ           *float64 `mapstructure:"trump_z"`
	NewsIntensity    *float64 `mapstructure:"news_intensity"`
}

// StoreConfig locates the local snapshot store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// AlertingConfig defines day-over-day change alerting.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARKETLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "marketlens")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.data_mode", "live")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "24h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("signals.vix_symbol", "^VIX")
	v.SetDefault("signals.series_symbol", "SPY")
	v.SetDefault("signals.series_days", 30)
	v.SetDefault("signals.focus_assets", []string{"bitcoin", "ethereum"})
	v.SetDefault("signals.chart.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("signals.chart.request_timeout", "10s")
	v.SetDefault("signals.chart.user_agent", "marketlens/1.0")
	v.SetDefault("signals.coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("signals.coingecko.request_timeout", "10s")
	v.SetDefault("signals.coingecko.user_agent", "marketlens/1.0")

	v.SetDefault("inputs.fed_tone", "unknown")

	v.SetDefault("store.path", "data/snapshots")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 45)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Signals.SeriesDays <= 0 {
		return fmt.Errorf("signals.series_days must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
