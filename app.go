package main

import (
	"context"
	"fmt"

	"github.com/dnldd/orbflow/database"
	"github.com/dnldd/orbflow/engine"
	"github.com/dnldd/orbflow/fetch"
	"github.com/dnldd/orbflow/market"
	"github.com/dnldd/orbflow/position"
	"github.com/dnldd/orbflow/sentiment"
	"github.com/dnldd/orbflow/service"
	"github.com/dnldd/orbflow/shared"
	"github.com/dnldd/orbflow/webhook"
	"github.com/rs/zerolog"
)

// componentLogger returns a logger tagged with the provided component.
func componentLogger(logger *zerolog.Logger, component string) *zerolog.Logger {
	l := logger.With().Str("component", component).Logger()
	return &l
}

// newService wires the collaborators described by the config into the orbflow service.
func newService(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*service.Service, error) {
	strategy, err := cfg.StrategyConfig()
	if err != nil {
		return nil, err
	}

	var bars shared.BarFetcher
	var isMarketOpen func(ctx context.Context) (bool, error)
	switch cfg.BarsFile {
	case "":
		alpaca, err := fetch.NewAlpacaClient(&fetch.AlpacaConfig{
			APIKey:    cfg.AlpacaKey,
			APISecret: cfg.AlpacaSecret,
			Paper:     cfg.AlpacaPaper,
			Feed:      cfg.AlpacaFeed,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating alpaca client: %w", err)
		}

		bars = alpaca
		isMarketOpen = alpaca.IsMarketOpen
	default:
		feed, err := fetch.NewFileBarFeed(&fetch.FileBarFeedConfig{
			FilePath: cfg.BarsFile,
			Logger:   componentLogger(logger, "filefeed"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating file bar feed: %w", err)
		}

		bars = feed
	}

	uw, err := fetch.NewUnusualWhalesClient(&fetch.UnusualWhalesConfig{
		APIKey:             cfg.UWAPIKey,
		BaseURL:            cfg.UWBaseURL,
		MinFlowPremium:     cfg.MinFlowPremium,
		MinCongressAmount:  cfg.MinCongressAmount,
		MinDarkPoolPremium: cfg.MinDarkPoolPremium,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating unusual whales client: %w", err)
	}

	aggregator, err := sentiment.NewAggregator(&sentiment.AggregatorConfig{
		Flow:     uw.FlowBias,
		Congress: uw.CongressBias,
		DarkPool: uw.DarkPoolBias,
		IVRank:   uw.IVRank,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sentiment aggregator: %w", err)
	}

	emitter, err := webhook.NewEmitter(&webhook.EmitterConfig{
		URL:       cfg.WebhookURL,
		Indicator: cfg.WebhookIndicator,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating webhook emitter: %w", err)
	}

	var store shared.PositionStorer
	var journal shared.TradeJournal
	var summarizer service.Summarizer
	switch cfg.DBEndpoint {
	case "":
		logger.Warn().Msg("no database endpoint provided, open positions are kept in memory")
		store = position.NewMemoryStore()
	default:
		db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   componentLogger(logger, "database"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}

		store = db
		journal = db
		summarizer = db
	}

	positionEngine, err := engine.NewEngine(&engine.EngineConfig{
		Strategy:  strategy,
		Store:     store,
		Emitter:   emitter,
		Sentiment: aggregator,
		Journal:   journal,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	var screen func(ctx context.Context) ([]string, error)
	if cfg.Screen {
		screen = uw.ScreenTickers
	}

	watchlist, err := market.NewManager(&market.ManagerConfig{
		Static:  cfg.Watchlist,
		Blocked: cfg.Blocked,
		Screen:  screen,
		Logger:  componentLogger(logger, "watchlist"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating watchlist manager: %w", err)
	}

	scanner, err := service.NewScanner(&service.ScannerConfig{
		Bars:         bars,
		IsMarketOpen: isMarketOpen,
		Evaluator:    positionEngine,
		Store:        store,
		Workers:      cfg.Workers,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	svc, err := service.NewService(&service.ServiceConfig{
		Scanner:      scanner,
		Watchlist:    watchlist,
		ScanInterval: cfg.ScanInterval,
		RefreshAt:    cfg.RefreshAt,
		Summarizer:   summarizer,
		SummaryAt:    cfg.SummaryAt,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}

	return svc, nil
}
