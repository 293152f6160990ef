package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/shipyard-negotiation/internal/config"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug-session <session-id>")
		os.Exit(1)
	}
	sessionID := os.Args[1]

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	opts, err := cfg.Redis.Options()
	if err != nil {
		logger.Error("invalid redis configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := redis.NewClient(opts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis connection", "error", err)
		}
	}()

	sess, err := onboardingsessions.NewRedis(client).Get(ctx, sessionID)
	if err != nil {
		logger.Error("failed to get session", "session_id", sessionID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Session:   %s (attempt %d, version %d)\n", sess.ID, sess.Attempt, sess.Version)
	fmt.Printf("Player:    %s", sess.PlayerID)
	if sess.PlayerName != "" {
		fmt.Printf(" (%s)", sess.PlayerName)
	}
	fmt.Println()
	fmt.Printf("Phase:     %s\n", sess.Phase)
	fmt.Printf("Offer:     %v (seed %d, roll %d)\n", sess.Offer.Ships, sess.Offer.Seed, sess.Offer.RarityRoll)
	fmt.Printf("Claimed:   %s\n", sess.ClaimedShip)
	fmt.Printf("Mood:      %s (running score %.2f)\n", negotiation.MoodFor(sess), sess.RunningScore)
	fmt.Printf("Analyses:  %d primary, %d fallback\n", sess.PrimaryAnalyses, sess.FallbackAnalyses)

	fmt.Printf("\nExchanges: %d\n", len(sess.Exchanges))
	for _, ex := range sess.Exchanges {
		a := ex.Analysis
		fmt.Printf("  #%d [%s] challenge=%t\n", ex.Sequence, ex.Topic, ex.Challenge)
		fmt.Printf("    guard:  %s\n", ex.NPCPrompt)
		fmt.Printf("    player: %s\n", ex.Response)
		fmt.Printf("    scores: persuasion=%.2f confidence=%.2f consistency=%.2f detail=%.2f source=%s\n",
			a.Persuasiveness, a.Confidence, a.Consistency, a.Detail, a.Source)
	}
	if sess.Pending != nil {
		fmt.Printf("  pending #%d: %s\n", sess.Pending.Sequence, sess.Pending.Text)
	}

	if o := sess.Outcome; o != nil {
		fmt.Printf("\nOutcome:   %s, %s, %d credits\n", o.Kind, o.AwardedShip, o.Credits)
		fmt.Printf("Skill:     %s (%.2f), persuasion %.2f\n", o.Skill, o.SkillScore, o.Persuasion)
		fmt.Printf("Flags:     trade_bonus=%t reputation_penalty=%t\n", o.TradeBonus, o.ReputationPenalty)
	}

	ledger, err := grants.NewSQLite(cfg.Ledger.Path)
	if err != nil {
		logger.Warn("grant ledger unavailable", "path", cfg.Ledger.Path, "error", err)
		return
	}
	defer ledger.Close()

	grant, err := ledger.GetBySession(ctx, sessionID)
	switch {
	case dnderr.IsNotFound(err):
		fmt.Println("\nLedger:    no grant recorded")
	case err != nil:
		logger.Warn("failed to read grant", "error", err)
	default:
		fmt.Printf("\nLedger:    %s granted %s and %d credits at %s\n",
			grant.PlayerID, grant.Ship, grant.Credits, grant.GrantedAt.Format("2006-01-02 15:04:05"))
	}
}
