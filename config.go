package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/orbflow/engine"
	"github.com/dnldd/orbflow/shared"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Config is the configuration struct for the service.
type Config struct {
	// Watchlist represents the always scanned tickers.
	Watchlist []string
	// Blocked represents tickers that are never scanned.
	Blocked []string
	// Screen merges the provider screener into the watchlist on refresh.
	Screen bool
	// AlpacaKey is the alpaca API key.
	AlpacaKey string
	// AlpacaSecret is the alpaca API secret.
	AlpacaSecret string
	// AlpacaPaper selects the alpaca paper trading api.
	AlpacaPaper bool
	// AlpacaFeed is the alpaca market data feed.
	AlpacaFeed string
	// UWAPIKey is the unusual whales API key.
	UWAPIKey string
	// UWBaseURL overrides the unusual whales api url.
	UWBaseURL string
	// WebhookURL is the endpoint signals are delivered to.
	WebhookURL string
	// WebhookIndicator is the indicator name reported with signals.
	WebhookIndicator string
	// DBEndpoint is the rqlite endpoint, positions are kept in memory when empty.
	DBEndpoint string
	// DBUser is the rqlite user.
	DBUser string
	// DBPass is the rqlite user pass.
	DBPass string
	// MetricsAddr is the address metrics are served on, disabled when empty.
	MetricsAddr string
	// LogLevel is the logging level.
	LogLevel string
	// ScanInterval is the interval between scans.
	ScanInterval time.Duration
	// RefreshAt is the new york time of day the watchlist is refreshed.
	RefreshAt string
	// SummaryAt is the new york time of day completed trades are summarized.
	SummaryAt string
	// Workers is the number of concurrent symbol evaluations.
	Workers int
	// MinPrice is the minimum price of an entry.
	MinPrice float64
	// MinIVRank is the minimum iv rank of an entry.
	MinIVRank float64
	// ORBMinutes is the opening range window length.
	ORBMinutes int
	// ProfitTarget is the profit target percentage.
	ProfitTarget float64
	// StopLoss is the stop loss percentage.
	StopLoss float64
	// SessionStart is the session open time.
	SessionStart string
	// ORBPhaseEnd is the end of the opening range phase.
	ORBPhaseEnd string
	// EntryCutoff is the last entry time.
	EntryCutoff string
	// TradingEnd is the time open positions are flattened.
	TradingEnd string
	// MinFlowPremium is the minimum premium of a counted flow alert.
	MinFlowPremium float64
	// MinCongressAmount is the minimum amount of a counted congress trade.
	MinCongressAmount float64
	// MinDarkPoolPremium is the minimum premium of a counted dark pool print.
	MinDarkPoolPremium float64
	// BarsFile replays bars from a json file instead of alpaca.
	BarsFile string

	registeredFlags map[string]bool
}

// DefaultConfig returns a config populated with the default values.
func DefaultConfig() Config {
	strategy := engine.DefaultStrategyConfig()

	return Config{
		WebhookIndicator:   "orbflow",
		MetricsAddr:        ":9090",
		LogLevel:           zerolog.InfoLevel.String(),
		ScanInterval:       time.Minute,
		RefreshAt:          "09:00",
		SummaryAt:          "16:05",
		Workers:            8,
		MinPrice:           strategy.MinPrice,
		MinIVRank:          strategy.MinIVRank,
		ORBMinutes:         strategy.ORBMinutes,
		ProfitTarget:       strategy.ProfitTargetPercent,
		StopLoss:           strategy.StopLossPercent,
		SessionStart:       strategy.SessionStart.String(),
		ORBPhaseEnd:        strategy.ORBPhaseEnd.String(),
		EntryCutoff:        strategy.EntryCutoff.String(),
		TradingEnd:         strategy.TradingEnd.String(),
		MinFlowPremium:     100000,
		MinCongressAmount:  15000,
		MinDarkPoolPremium: 1000000,
	}
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Watchlist) == 0 && !cfg.Screen {
		errs = errors.Join(errs, fmt.Errorf("no watchlist provided and screening disabled"))
	}
	if cfg.BarsFile == "" {
		if cfg.AlpacaKey == "" {
			errs = errors.Join(errs, fmt.Errorf("alpaca api key cannot be an empty string"))
		}
		if cfg.AlpacaSecret == "" {
			errs = errors.Join(errs, fmt.Errorf("alpaca api secret cannot be an empty string"))
		}
	}
	if cfg.UWAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("unusual whales api key cannot be an empty string"))
	}
	if cfg.WebhookURL == "" {
		errs = errors.Join(errs, fmt.Errorf("webhook url cannot be an empty string"))
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid log level: %w", err))
	}
	if cfg.ScanInterval < time.Second {
		errs = errors.Join(errs, fmt.Errorf("scan interval must be at least a second"))
	}
	if _, err := shared.ParseClockTime(cfg.RefreshAt); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid refresh time: %w", err))
	}
	if _, err := shared.ParseClockTime(cfg.SummaryAt); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid summary time: %w", err))
	}
	if cfg.Workers < 1 {
		errs = errors.Join(errs, fmt.Errorf("workers must be positive"))
	}

	strategy, err := cfg.StrategyConfig()
	if err != nil {
		errs = errors.Join(errs, err)
	} else if err := strategy.Validate(); err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

// StrategyConfig maps the strategy parameters to the engine's strategy config.
func (cfg *Config) StrategyConfig() (engine.StrategyConfig, error) {
	var errs error
	parse := func(name string, value string) shared.ClockTime {
		clock, err := shared.ParseClockTime(value)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid %s: %w", name, err))
		}

		return clock
	}

	strategy := engine.StrategyConfig{
		MinPrice:            cfg.MinPrice,
		MinIVRank:           cfg.MinIVRank,
		ORBMinutes:          cfg.ORBMinutes,
		ProfitTargetPercent: cfg.ProfitTarget,
		StopLossPercent:     cfg.StopLoss,
		SessionStart:        parse("session start", cfg.SessionStart),
		ORBPhaseEnd:         parse("orb phase end", cfg.ORBPhaseEnd),
		EntryCutoff:         parse("entry cutoff", cfg.EntryCutoff),
		TradingEnd:          parse("trading end", cfg.TradingEnd),
	}

	return strategy, errs
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			list = append(list, part)
		}
	}

	return list
}

// registerFlag registers command line arguments of any supported type and tracks them to
// avoid reregistration. The environment value of the flag name, if set, overrides the
// current value as the default.
func (cfg *Config) registerFlag(fs *pflag.FlagSet, name string, value any, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	env, hasEnv := os.LookupEnv(name)

	switch v := value.(type) {
	case *string:
		def := *v
		if hasEnv {
			def = env
		}
		fs.StringVar(v, name, def, usage)
	case *bool:
		def := *v
		if hasEnv {
			parsed, err := strconv.ParseBool(env)
			if err != nil {
				return fmt.Errorf("%s: parsing environment value: %w", name, err)
			}
			def = parsed
		}
		fs.BoolVar(v, name, def, usage)
	case *int:
		def := *v
		if hasEnv {
			parsed, err := strconv.Atoi(env)
			if err != nil {
				return fmt.Errorf("%s: parsing environment value: %w", name, err)
			}
			def = parsed
		}
		fs.IntVar(v, name, def, usage)
	case *float64:
		def := *v
		if hasEnv {
			parsed, err := strconv.ParseFloat(env, 64)
			if err != nil {
				return fmt.Errorf("%s: parsing environment value: %w", name, err)
			}
			def = parsed
		}
		fs.Float64Var(v, name, def, usage)
	case *time.Duration:
		def := *v
		if hasEnv {
			parsed, err := time.ParseDuration(env)
			if err != nil {
				return fmt.Errorf("%s: parsing environment value: %w", name, err)
			}
			def = parsed
		}
		fs.DurationVar(v, name, def, usage)
	case *[]string:
		def := *v
		if hasEnv {
			def = splitList(env)
		}
		fs.StringSliceVar(v, name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type %T", name, value)
	}

	return nil
}

// loadConfig loads the .env file at the provided path, if it exists, and registers every
// config field as a flag on the provided flag set with environment values as defaults.
func loadConfig(cfg *Config, fs *pflag.FlagSet, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	flags := []struct {
		name  string
		value any
		usage string
	}{
		{"watchlist", &cfg.Watchlist, "the always scanned tickers"},
		{"blocked", &cfg.Blocked, "the never scanned tickers"},
		{"screen", &cfg.Screen, "merge screened tickers into the watchlist on refresh"},
		{"alpacakey", &cfg.AlpacaKey, "the alpaca api key"},
		{"alpacasecret", &cfg.AlpacaSecret, "the alpaca api secret"},
		{"alpacapaper", &cfg.AlpacaPaper, "use the alpaca paper trading api"},
		{"alpacafeed", &cfg.AlpacaFeed, "the alpaca market data feed"},
		{"uwapikey", &cfg.UWAPIKey, "the unusual whales api key"},
		{"uwbaseurl", &cfg.UWBaseURL, "the unusual whales api url"},
		{"webhookurl", &cfg.WebhookURL, "the signal webhook url"},
		{"webhookindicator", &cfg.WebhookIndicator, "the indicator name reported with signals"},
		{"dbendpoint", &cfg.DBEndpoint, "the rqlite endpoint"},
		{"dbuser", &cfg.DBUser, "the rqlite user"},
		{"dbpass", &cfg.DBPass, "the rqlite user pass"},
		{"metricsaddr", &cfg.MetricsAddr, "the metrics server address"},
		{"loglevel", &cfg.LogLevel, "the logging level"},
		{"scaninterval", &cfg.ScanInterval, "the interval between scans"},
		{"refreshat", &cfg.RefreshAt, "the new york time the watchlist is refreshed"},
		{"summaryat", &cfg.SummaryAt, "the new york time completed trades are summarized"},
		{"workers", &cfg.Workers, "the number of concurrent symbol evaluations"},
		{"minprice", &cfg.MinPrice, "the minimum entry price"},
		{"minivrank", &cfg.MinIVRank, "the minimum entry iv rank"},
		{"orbminutes", &cfg.ORBMinutes, "the opening range window in minutes"},
		{"profittarget", &cfg.ProfitTarget, "the profit target percentage"},
		{"stoploss", &cfg.StopLoss, "the stop loss percentage"},
		{"sessionstart", &cfg.SessionStart, "the session open time"},
		{"orbphaseend", &cfg.ORBPhaseEnd, "the end of the opening range phase"},
		{"entrycutoff", &cfg.EntryCutoff, "the last entry time"},
		{"tradingend", &cfg.TradingEnd, "the time open positions are flattened"},
		{"minflowpremium", &cfg.MinFlowPremium, "the minimum premium of a flow alert"},
		{"mincongressamount", &cfg.MinCongressAmount, "the minimum amount of a congress trade"},
		{"mindarkpoolpremium", &cfg.MinDarkPoolPremium, "the minimum premium of a dark pool print"},
		{"barsfile", &cfg.BarsFile, "replay bars from the provided json file"},
	}

	for _, f := range flags {
		err := cfg.registerFlag(fs, f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	return nil
}
