package services

import (
	"log/slog"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/events"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/shipyard"
	"github.com/KirkDiggler/shipyard-negotiation/internal/uuid"
)

// Provider holds all service instances
type Provider struct {
	OnboardingService onboarding.Service
	Store             *onboarding.Store
	Finalizer         *onboarding.Finalizer
	RarityTable       *firstlogin.RarityTable
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	SessionRepository onboardingsessions.Repository
	GrantLedger       grants.Repository
	Analyzer          analysis.Analyzer
	RarityTable       *firstlogin.RarityTable
	DialogueLength    int
	UUIDGenerator     uuid.Generator
	Events            events.Publisher // Optional
	Logger            *slog.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory storage if none provided
	sessionRepo := cfg.SessionRepository
	if sessionRepo == nil {
		sessionRepo = onboardingsessions.NewInMemoryRepository()
	}

	ledger := cfg.GrantLedger
	if ledger == nil {
		ledger = grants.NewInMemoryRepository()
	}

	table := cfg.RarityTable
	if table == nil {
		table = firstlogin.DefaultRarityTable()
	}

	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = analysis.NewFallbackAnalyzer(&analysis.FallbackConfig{
			Fallback: analysis.NewHeuristicAnalyzer(),
			Logger:   cfg.Logger,
		})
	}

	store := onboarding.NewStore(&onboarding.StoreConfig{
		Repository:     sessionRepo,
		UUIDGenerator:  cfg.UUIDGenerator,
		DialogueLength: cfg.DialogueLength,
	})

	finalizer := onboarding.NewFinalizer(&onboarding.FinalizerConfig{
		Store:  store,
		Ledger: ledger,
		Logger: cfg.Logger,
	})

	svc := onboarding.NewService(&onboarding.ServiceConfig{
		Store:     store,
		Finalizer: finalizer,
		Generator: shipyard.NewRandomizer(&shipyard.RandomizerConfig{Table: table}),
		Analyzer:  analyzer,
		Resolver:  negotiation.NewResolver(table),
		Events:    cfg.Events,
		Logger:    cfg.Logger,
	})

	return &Provider{
		OnboardingService: svc,
		Store:             store,
		Finalizer:         finalizer,
		RarityTable:       table,
	}
}
