package shipyard

import (
	"hash/fnv"
	"slices"

	"github.com/KirkDiggler/shipyard-negotiation/internal/dice"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

//go:generate mockgen -destination=mock/mock_randomizer.go -package=mockshipyard -source=randomizer.go

// Generator produces the ships offered in a session
type Generator interface {
	// Generate is deterministic for a (playerID, seed) pair and never fails.
	Generate(playerID string, seed uint64) firstlogin.ShipOffer
}

// RandomizerConfig holds the dependencies for the randomizer
type RandomizerConfig struct {
	Table *firstlogin.RarityTable

	// RollerFactory builds the roller for a mixed seed. Defaults to dice.NewSeededRoller.
	RollerFactory func(seed uint64) dice.Roller
}

// Randomizer draws ship offers from the rarity table
type Randomizer struct {
	table     *firstlogin.RarityTable
	newRoller func(seed uint64) dice.Roller
}

// NewRandomizer creates a new ship randomizer
func NewRandomizer(cfg *RandomizerConfig) *Randomizer {
	if cfg == nil {
		panic("randomizer config is required")
	}
	if cfg.Table == nil {
		panic("rarity table is required")
	}

	newRoller := cfg.RollerFactory
	if newRoller == nil {
		newRoller = dice.NewSeededRoller
	}

	return &Randomizer{
		table:     cfg.Table,
		newRoller: newRoller,
	}
}

// Generate always puts the fallback ship first and adds one or two ships
// drawn from the tier band selected by a 0-100 rarity roll.
func (r *Randomizer) Generate(playerID string, seed uint64) firstlogin.ShipOffer {
	policy := &r.table.Policy
	roller := r.newRoller(mixSeed(playerID, seed))

	roll := roller.Intn(101)
	extra := 1
	if roller.Float64() < policy.ExtraOfferChance {
		extra = 2
	}

	band := policy.BandFor(roll)
	candidates := r.candidates(band.Tiers, extra)
	picks := dice.SampleWithoutReplacement(roller, candidates, extra, func(e firstlogin.RarityEntry) float64 {
		return e.SpawnChance
	})

	ships := make([]firstlogin.ShipType, 0, len(picks)+1)
	ships = append(ships, policy.FallbackShip)
	for _, p := range picks {
		ships = append(ships, p.Ship)
	}

	return firstlogin.ShipOffer{
		Ships:      ships,
		Seed:       seed,
		RarityRoll: roll,
	}
}

// candidates collects the band's ships and walks down to lower tiers until
// there are enough to draw from or tier 1 has been reached.
func (r *Randomizer) candidates(tiers []int, want int) []firstlogin.RarityEntry {
	fallback := r.table.Policy.FallbackShip

	var out []firstlogin.RarityEntry
	add := func(tier int) {
		for _, e := range r.table.ByTier(tier) {
			if e.Ship != fallback {
				out = append(out, e)
			}
		}
	}

	for _, tier := range tiers {
		add(tier)
	}

	for tier := slices.Min(tiers) - 1; len(out) < want && tier >= 1; tier-- {
		add(tier)
	}

	return out
}

func mixSeed(playerID string, seed uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(playerID))
	return seed ^ h.Sum64()
}
