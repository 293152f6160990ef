package firstlogin

// ShipType identifies a starting ship hull
type ShipType string

const (
	ShipEscapePod      ShipType = "ESCAPE_POD"
	ShipLightFreighter ShipType = "LIGHT_FREIGHTER"
	ShipScoutShip      ShipType = "SCOUT_SHIP"
	ShipFastCourier    ShipType = "FAST_COURIER"
	ShipCargoFreighter ShipType = "CARGO_FREIGHTER"
	ShipDefender       ShipType = "DEFENDER"
)

var shipNames = map[ShipType]string{
	ShipEscapePod:      "Escape Pod",
	ShipLightFreighter: "Light Freighter",
	ShipScoutShip:      "Scout Ship",
	ShipFastCourier:    "Fast Courier",
	ShipCargoFreighter: "Cargo Freighter",
	ShipDefender:       "Defender",
}

// DisplayName returns a human readable ship name
func (s ShipType) DisplayName() string {
	if name, ok := shipNames[s]; ok {
		return name
	}
	return string(s)
}

// SkillLevel is the WEAK/AVERAGE/STRONG bucketing of a whole dialogue
type SkillLevel string

const (
	SkillWeak    SkillLevel = "WEAK"
	SkillAverage SkillLevel = "AVERAGE"
	SkillStrong  SkillLevel = "STRONG"
)

// Valid reports whether s is one of the three known levels
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillWeak, SkillAverage, SkillStrong:
		return true
	}
	return false
}

// Thresholds holds the persuasion score needed per skill level.
// A weaker negotiator always needs a higher score: Strong <= Average <= Weak.
type Thresholds struct {
	Strong  float64 `json:"strong" yaml:"strong"`
	Average float64 `json:"average" yaml:"average"`
	Weak    float64 `json:"weak" yaml:"weak"`
}

// For returns the threshold column matching the skill level
func (t Thresholds) For(skill SkillLevel) float64 {
	switch skill {
	case SkillStrong:
		return t.Strong
	case SkillAverage:
		return t.Average
	default:
		return t.Weak
	}
}

// RarityEntry is one row of the ship catalog
type RarityEntry struct {
	Ship        ShipType   `json:"ship" yaml:"ship"`
	Tier        int        `json:"tier" yaml:"tier"`
	SpawnChance float64    `json:"spawn_chance" yaml:"spawn_chance"` // 0-100
	BaseCredits int        `json:"base_credits" yaml:"base_credits"`
	Thresholds  Thresholds `json:"thresholds" yaml:"thresholds"`
}
