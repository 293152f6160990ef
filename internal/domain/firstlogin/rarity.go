package firstlogin

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// RollBand maps an inclusive range of the 0-100 rarity roll to the tiers
// the randomizer may draw from.
type RollBand struct {
	Min   int   `json:"min" yaml:"min"`
	Max   int   `json:"max" yaml:"max"`
	Tiers []int `json:"tiers" yaml:"tiers"`
}

// Contains reports whether roll falls in the band
func (b RollBand) Contains(roll int) bool {
	return roll >= b.Min && roll <= b.Max
}

// Policy carries every balancing knob that is not a per-ship column.
type Policy struct {
	FallbackShip   ShipType `json:"fallback_ship" yaml:"fallback_ship"`
	PartialCredits int      `json:"partial_credits" yaml:"partial_credits"`
	FailureCredits int      `json:"failure_credits" yaml:"failure_credits"`

	// PartialBandWidth is how far below the threshold a score may fall and
	// still earn PARTIAL_SUCCESS, keyed by tier. Missing tiers use DefaultBandWidth.
	PartialBandWidth map[int]float64 `json:"partial_band_width" yaml:"partial_band_width"`
	DefaultBandWidth float64         `json:"default_band_width" yaml:"default_band_width"`

	RollBands []RollBand `json:"roll_bands" yaml:"roll_bands"`

	// ExtraOfferChance is the probability of offering two extra ships instead of one
	ExtraOfferChance float64 `json:"extra_offer_chance" yaml:"extra_offer_chance"`
}

// BandWidth returns the partial-success band width for a tier
func (p *Policy) BandWidth(tier int) float64 {
	if w, ok := p.PartialBandWidth[tier]; ok {
		return w
	}
	return p.DefaultBandWidth
}

// BandFor returns the roll band containing roll. The last band is used for out-of-range rolls.
func (p *Policy) BandFor(roll int) RollBand {
	for _, b := range p.RollBands {
		if b.Contains(roll) {
			return b
		}
	}
	return p.RollBands[len(p.RollBands)-1]
}

// RarityTable is the immutable ship catalog for a deployment
type RarityTable struct {
	Ships  []RarityEntry `json:"ships" yaml:"ships"`
	Policy Policy        `json:"policy" yaml:"policy"`
}

// DefaultRarityTable returns the built-in catalog
func DefaultRarityTable() *RarityTable {
	return &RarityTable{
		Ships: []RarityEntry{
			{Ship: ShipEscapePod, Tier: 1, SpawnChance: 100, BaseCredits: 1000,
				Thresholds: Thresholds{Strong: 0.3, Average: 0.3, Weak: 0.3}},
			{Ship: ShipLightFreighter, Tier: 2, SpawnChance: 50, BaseCredits: 2500,
				Thresholds: Thresholds{Strong: 0.5, Average: 0.6, Weak: 0.7}},
			{Ship: ShipScoutShip, Tier: 3, SpawnChance: 25, BaseCredits: 2000,
				Thresholds: Thresholds{Strong: 0.6, Average: 0.7, Weak: 0.8}},
			{Ship: ShipFastCourier, Tier: 3, SpawnChance: 20, BaseCredits: 3000,
				Thresholds: Thresholds{Strong: 0.65, Average: 0.75, Weak: 0.85}},
			{Ship: ShipCargoFreighter, Tier: 4, SpawnChance: 10, BaseCredits: 5000,
				Thresholds: Thresholds{Strong: 0.7, Average: 0.8, Weak: 0.9}},
			{Ship: ShipDefender, Tier: 5, SpawnChance: 5, BaseCredits: 7000,
				Thresholds: Thresholds{Strong: 0.8, Average: 0.9, Weak: 0.95}},
		},
		Policy: Policy{
			FallbackShip:   ShipEscapePod,
			PartialCredits: 800,
			FailureCredits: 500,
			PartialBandWidth: map[int]float64{
				1: 1.0, // the fallback hull is never refused outright
				2: 0.15,
				3: 0.1,
				4: 0.1,
				5: 0.05,
			},
			DefaultBandWidth: 0.1,
			RollBands: []RollBand{
				{Min: 0, Max: 60, Tiers: []int{1, 2}},
				{Min: 61, Max: 85, Tiers: []int{2, 3}},
				{Min: 86, Max: 95, Tiers: []int{3, 4}},
				{Min: 96, Max: 100, Tiers: []int{4, 5}},
			},
			ExtraOfferChance: 0.3,
		},
	}
}

// LoadRarityTable reads a YAML catalog from path and validates it
func LoadRarityTable(path string) (*RarityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to read rarity table %s", path)
	}

	table, err := ParseRarityTable(data)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to load rarity table").
			WithMeta("path", path)
	}

	return table, nil
}

// ParseRarityTable decodes and validates a YAML catalog. Policy fields left
// out of the document keep their default values.
func ParseRarityTable(data []byte) (*RarityTable, error) {
	table := &RarityTable{Policy: DefaultRarityTable().Policy}
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "invalid rarity table yaml")
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

// Validate checks the catalog is usable
func (t *RarityTable) Validate() error {
	if len(t.Ships) == 0 {
		return dnderr.InvalidArgument("rarity table has no ships")
	}

	seen := make(map[ShipType]bool, len(t.Ships))
	for _, e := range t.Ships {
		if e.Ship == "" {
			return dnderr.InvalidArgument("rarity entry is missing a ship")
		}
		if seen[e.Ship] {
			return dnderr.InvalidArgumentf("ship %s listed twice", e.Ship)
		}
		seen[e.Ship] = true

		if e.Tier < 1 || e.Tier > 5 {
			return dnderr.InvalidArgumentf("ship %s has tier %d outside 1-5", e.Ship, e.Tier)
		}
		if e.SpawnChance < 0 || e.SpawnChance > 100 {
			return dnderr.InvalidArgumentf("ship %s has spawn chance %.2f outside 0-100", e.Ship, e.SpawnChance)
		}
		if e.BaseCredits < 0 {
			return dnderr.InvalidArgumentf("ship %s has negative base credits", e.Ship)
		}

		th := e.Thresholds
		for _, v := range []float64{th.Strong, th.Average, th.Weak} {
			if v < 0 || v > 1 {
				return dnderr.InvalidArgumentf("ship %s has a threshold outside 0-1", e.Ship)
			}
		}
		if th.Strong > th.Average || th.Average > th.Weak {
			return dnderr.InvalidArgumentf("ship %s thresholds must satisfy strong <= average <= weak", e.Ship).
				WithMeta("thresholds", th)
		}
	}

	p := t.Policy
	if !seen[p.FallbackShip] {
		return dnderr.InvalidArgumentf("fallback ship %s is not in the table", p.FallbackShip)
	}
	if p.FailureCredits < 0 || p.PartialCredits < p.FailureCredits {
		return dnderr.InvalidArgument("partial credits must be at least failure credits and both non-negative")
	}
	if p.DefaultBandWidth < 0 || p.DefaultBandWidth > 1 {
		return dnderr.InvalidArgument("default band width must be within 0-1")
	}
	for tier, w := range p.PartialBandWidth {
		if w < 0 || w > 1 {
			return dnderr.InvalidArgumentf("band width for tier %d must be within 0-1", tier)
		}
	}
	if p.ExtraOfferChance < 0 || p.ExtraOfferChance > 1 {
		return dnderr.InvalidArgument("extra offer chance must be within 0-1")
	}

	return validateRollBands(p.RollBands)
}

func validateRollBands(bands []RollBand) error {
	if len(bands) == 0 {
		return dnderr.InvalidArgument("at least one roll band is required")
	}

	sorted := make([]RollBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	next := 0
	for _, b := range sorted {
		if b.Min != next || b.Max < b.Min {
			return dnderr.InvalidArgumentf("roll bands must cover 0-100 without gaps, problem at %d", b.Min)
		}
		if len(b.Tiers) == 0 {
			return dnderr.InvalidArgumentf("roll band %d-%d has no tiers", b.Min, b.Max)
		}
		next = b.Max + 1
	}
	if next != 101 {
		return dnderr.InvalidArgument("roll bands must end at 100")
	}

	return nil
}

// Lookup returns the entry for a ship
func (t *RarityTable) Lookup(ship ShipType) (RarityEntry, bool) {
	for _, e := range t.Ships {
		if e.Ship == ship {
			return e, true
		}
	}
	return RarityEntry{}, false
}

// ByTier returns the entries of one tier in catalog order
func (t *RarityTable) ByTier(tier int) []RarityEntry {
	var out []RarityEntry
	for _, e := range t.Ships {
		if e.Tier == tier {
			out = append(out, e)
		}
	}
	return out
}

// Fallback returns the guaranteed common ship entry
func (t *RarityTable) Fallback() RarityEntry {
	e, _ := t.Lookup(t.Policy.FallbackShip)
	return e
}
