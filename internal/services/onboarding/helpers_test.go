package onboarding_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/events"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
	"github.com/KirkDiggler/shipyard-negotiation/internal/uuid"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fixedGenerator always offers the escape pod plus ships
type fixedGenerator struct {
	ships []firstlogin.ShipType
}

func (g fixedGenerator) Generate(playerID string, seed uint64) firstlogin.ShipOffer {
	return firstlogin.ShipOffer{
		Ships:      append([]firstlogin.ShipType{firstlogin.ShipEscapePod}, g.ships...),
		Seed:       seed,
		RarityRoll: 97,
	}
}

// scoreAnalyzer gives every response the same scores. When gate is set each
// call waits on it before answering.
type scoreAnalyzer struct {
	score  float64
	source firstlogin.AnalysisSource
	gate   *sync.WaitGroup

	mu    sync.Mutex
	calls int
}

func (a *scoreAnalyzer) Name() string { return "fixed" }

func (a *scoreAnalyzer) Analyze(ctx context.Context, req *analysis.Request) (*firstlogin.AnalysisResult, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if a.gate != nil {
		a.gate.Done()
		a.gate.Wait()
	}

	source := a.source
	if source == "" {
		source = firstlogin.SourcePrimary
	}
	return &firstlogin.AnalysisResult{
		Persuasiveness: a.score,
		Confidence:     a.score,
		Consistency:    a.score,
		Detail:         a.score,
		Facts:          analysis.ExtractFacts(req.Response),
		Source:         source,
	}, nil
}

type harness struct {
	store     *onboarding.Store
	finalizer *onboarding.Finalizer
	service   onboarding.Service
	sessions  onboardingsessions.Repository
	ledger    grants.Repository
}

type harnessConfig struct {
	analyzer       analysis.Analyzer
	ledger         grants.Repository
	ships          []firstlogin.ShipType
	dialogueLength int
	events         events.Publisher
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	if cfg.analyzer == nil {
		cfg.analyzer = analysis.NewHeuristicAnalyzer()
	}
	if cfg.ledger == nil {
		cfg.ledger = grants.NewInMemoryRepository()
	}
	if len(cfg.ships) == 0 {
		cfg.ships = []firstlogin.ShipType{firstlogin.ShipDefender}
	}

	clock := fixedClock{now: testNow}
	sessions := onboardingsessions.NewInMemoryRepository()
	store := onboarding.NewStore(&onboarding.StoreConfig{
		Repository:     sessions,
		UUIDGenerator:  uuid.NewSequentialGenerator("session"),
		Clock:          clock,
		DialogueLength: cfg.dialogueLength,
	})
	finalizer := onboarding.NewFinalizer(&onboarding.FinalizerConfig{
		Store:  store,
		Ledger: cfg.ledger,
		Clock:  clock,
	})
	svc := onboarding.NewService(&onboarding.ServiceConfig{
		Store:     store,
		Finalizer: finalizer,
		Generator: fixedGenerator{ships: cfg.ships},
		Analyzer:  cfg.analyzer,
		Resolver:  negotiation.NewResolver(firstlogin.DefaultRarityTable()),
		Clock:     clock,
		SeedFunc:  func() uint64 { return 42 },
		Events:    cfg.events,
	})

	return &harness{
		store:     store,
		finalizer: finalizer,
		service:   svc,
		sessions:  sessions,
		ledger:    cfg.ledger,
	}
}

var answers = []string{
	"Captain Mara Voss, registry KX-2231, out of Tycho Station.",
	"I docked at bay 7 at 0400 after a 12 hour burn from Ceres.",
	"Her reactor runs a twin fusion core, I rebuilt the coupling myself last cycle.",
	"Clearance code 44-alpha, filed with the harbor office yesterday.",
	"Ask the dockmaster, she signed my manifest.",
}
