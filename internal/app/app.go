// Package app wires configuration into a running service provider. Both the
// Discord bot and the HTTP server start from here.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/shipyard-negotiation/internal/config"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/events"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
)

const redisPingTimeout = 5 * time.Second

// App owns the provider and everything that must be closed on shutdown
type App struct {
	Provider *services.Provider
	Redis    *redis.Client
	Events   *events.Bus

	closers []func() error
}

// New builds the provider from cfg. Redis that cannot be reached falls back
// to in-memory sessions; a broken ledger or rarity table is fatal.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}
	providerCfg := &services.ProviderConfig{
		DialogueLength: cfg.Negotiation.DialogueLength,
		Logger:         logger,
	}

	table := firstlogin.DefaultRarityTable()
	if path := cfg.Negotiation.RarityTablePath; path != "" {
		loaded, err := firstlogin.LoadRarityTable(path)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to load rarity table %s", path)
		}
		table = loaded
		logger.Info("loaded rarity table", "path", path)
	}
	providerCfg.RarityTable = table

	if client := a.connectRedis(ctx, &cfg.Redis, logger); client != nil {
		providerCfg.SessionRepository = onboardingsessions.NewRedis(client)
		logger.Info("using redis for session persistence")
	} else {
		logger.Warn("using in-memory session repository, sessions will not survive a restart")
	}

	ledger, err := grants.NewSQLite(cfg.Ledger.Path)
	if err != nil {
		_ = a.Close()
		return nil, dnderr.Wrapf(err, "failed to open grant ledger %s", cfg.Ledger.Path)
	}
	a.closers = append(a.closers, ledger.Close)
	providerCfg.GrantLedger = ledger
	logger.Info("opened grant ledger", "path", cfg.Ledger.Path)

	analyzer, closeAnalyzer, err := analysis.Select(ctx, &analysis.SelectConfig{
		GeminiAPIKey: cfg.Analyzer.GeminiAPIKey,
		GeminiModel:  cfg.Analyzer.GeminiModel,
		Timeout:      cfg.Analyzer.Timeout,
		Logger:       logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, dnderr.Wrap(err, "failed to set up response analyzer")
	}
	a.closers = append(a.closers, closeAnalyzer)
	providerCfg.Analyzer = analyzer

	a.Events = events.NewBus(logger)
	events.NewAuditLogger(logger).SubscribeAll(a.Events)
	providerCfg.Events = a.Events

	a.Provider = services.NewProvider(providerCfg)
	return a, nil
}

func (a *App) connectRedis(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) *redis.Client {
	opts, err := cfg.Options()
	if err != nil {
		logger.Warn("invalid redis configuration", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("failed to connect to redis", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	a.Redis = client
	a.closers = append(a.closers, client.Close)
	return client
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
