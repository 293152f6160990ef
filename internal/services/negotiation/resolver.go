package negotiation

import (
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// scoreEpsilon absorbs float error at band edges, so 0.8-0.1 still admits 0.7
const scoreEpsilon = 1e-9

// Resolver turns a finished dialogue into an outcome using only the rarity table
type Resolver struct {
	table *firstlogin.RarityTable
}

// NewResolver creates a resolver over a validated table
func NewResolver(table *firstlogin.RarityTable) *Resolver {
	if table == nil {
		panic("rarity table is required")
	}
	return &Resolver{table: table}
}

// Resolve compares persuasion against the claimed ship's threshold for the
// skill level. Holding ship and skill fixed, a higher persuasion never
// produces a worse outcome.
func (r *Resolver) Resolve(claimed firstlogin.ShipType, skill firstlogin.SkillLevel, persuasion float64) (*firstlogin.NegotiationOutcome, error) {
	entry, ok := r.table.Lookup(claimed)
	if !ok {
		return nil, dnderr.InvalidArgumentf("ship %s is not in the catalog", claimed)
	}
	if !skill.Valid() {
		return nil, dnderr.InvalidArgumentf("unknown skill level %q", skill)
	}

	persuasion = clamp(persuasion)
	policy := &r.table.Policy
	threshold := entry.Thresholds.For(skill)

	outcome := &firstlogin.NegotiationOutcome{
		Persuasion: persuasion,
		Skill:      skill,
	}

	switch {
	case persuasion+scoreEpsilon >= threshold:
		outcome.Kind = firstlogin.OutcomeSuccess
		outcome.AwardedShip = claimed
		outcome.Credits = entry.BaseCredits
		outcome.TradeBonus = skill == firstlogin.SkillStrong
	case threshold-persuasion <= policy.BandWidth(entry.Tier)+scoreEpsilon:
		outcome.Kind = firstlogin.OutcomePartialSuccess
		outcome.AwardedShip = policy.FallbackShip
		outcome.Credits = policy.PartialCredits
	default:
		outcome.Kind = firstlogin.OutcomeFailure
		outcome.AwardedShip = policy.FallbackShip
		outcome.Credits = policy.FailureCredits
		outcome.ReputationPenalty = true
	}

	outcome.GuardVerdict = Verdict(outcome)
	return outcome, nil
}
