package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/shipyard-negotiation/internal/config"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
)

func main() {
	player := flag.String("player", "", "only list this player's sessions")
	phase := flag.String("phase", "", "only list sessions in this phase (SHIP_SELECTION, DIALOGUE, COMPLETE)")
	summary := flag.Bool("stats", false, "print aggregate counts instead of one row per session")
	flag.Parse()

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
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", opts.Addr, "error", err)
		os.Exit(1)
	}

	if *summary {
		stats := onboardingsessions.NewStats()
		if err := onboardingsessions.Scan(ctx, client, stats.Add); err != nil {
			logger.Error("failed to scan sessions", "error", err)
			os.Exit(1)
		}
		printStats(stats)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tPLAYER\tATTEMPT\tPHASE\tSHIP\tANSWERS\tOUTCOME\tUPDATED")

	count := 0
	show := func(s *firstlogin.Session) error {
		if *phase != "" && string(s.Phase) != *phase {
			return nil
		}
		outcome := "-"
		if s.Outcome != nil {
			outcome = string(s.Outcome.Kind)
		}
		ship := "-"
		if s.ClaimedShip != "" {
			ship = string(s.ClaimedShip)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.PlayerID, s.Attempt, s.Phase, ship, len(s.Exchanges), outcome, s.UpdatedAt.Format(time.RFC3339))
		count++
		return nil
	}

	if *player != "" {
		sessions, listErr := onboardingsessions.NewRedis(client).ListByPlayer(ctx, *player)
		err = listErr
		for _, s := range sessions {
			_ = show(s)
		}
	} else {
		err = onboardingsessions.Scan(ctx, client, show)
	}
	if err != nil {
		logger.Error("failed to list sessions", "error", err)
		os.Exit(1)
	}

	_ = w.Flush()
	fmt.Printf("\n%d sessions\n", count)
}

func printStats(stats *onboardingsessions.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "sessions\t%d\n", stats.Sessions)
	for _, p := range []firstlogin.Phase{firstlogin.PhaseShipSelection, firstlogin.PhaseDialogue, firstlogin.PhaseComplete} {
		fmt.Fprintf(w, "  %s\t%d\n", p, stats.ByPhase[p])
	}
	for _, k := range []firstlogin.OutcomeKind{firstlogin.OutcomeSuccess, firstlogin.OutcomePartialSuccess, firstlogin.OutcomeFailure} {
		fmt.Fprintf(w, "  %s\t%d\n", k, stats.ByOutcome[k])
	}
	for ship, n := range stats.ByShip {
		fmt.Fprintf(w, "  granted %s\t%d\n", ship.DisplayName(), n)
	}
	fmt.Fprintf(w, "credits granted\t%d\n", stats.Credits)
	fmt.Fprintf(w, "avg persuasion\t%.3f\n", stats.AveragePersuasion())
	fmt.Fprintf(w, "analyses\t%d primary / %d fallback (%.0f%% fallback)\n",
		stats.Primary, stats.Fallback, stats.FallbackRate()*100)
	_ = w.Flush()
}
