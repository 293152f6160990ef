package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/shipyard-negotiation/internal/app"
	"github.com/KirkDiggler/shipyard-negotiation/internal/config"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/middleware"
	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/shipyard"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	if err := run(logger); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Discord.Validate(); err != nil {
		return err
	}
	logger.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return err
	}

	pipeline := core.NewPipeline(logger)
	pipeline.Use(middleware.Recovery(), middleware.Logging())
	shipyard.NewHandler(&shipyard.HandlerConfig{
		Service: a.Provider.OnboardingService,
		RateLimit: &middleware.RateLimitConfig{
			MaxRequests: 20,
			Window:      time.Minute,
		},
	}).Register(pipeline)

	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if err := pipeline.Execute(ctx, s, i); err != nil {
			logger.Error("failed to answer interaction", "interaction_id", i.ID, "error", err)
		}
	})

	if err := dg.Open(); err != nil {
		return err
	}
	defer func() {
		if err := dg.Close(); err != nil {
			logger.Error("failed to close discord connection", "error", err)
		}
	}()

	// Empty guild ID registers a global command, which can take an hour to propagate
	if _, err := dg.ApplicationCommandCreate(cfg.Discord.AppID, cfg.Discord.GuildID, shipyard.Command()); err != nil {
		return err
	}
	logger.Info("registered command", "command", shipyard.Domain, "guild_id", cfg.Discord.GuildID)

	logger.Info("bot is running")
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
