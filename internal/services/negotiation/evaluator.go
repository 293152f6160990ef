package negotiation

import (
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/lexicon"
)

// Skill weights. They sum to 1.
const (
	weightConsistency  = 0.30
	weightConfidence   = 0.25
	weightDetail       = 0.15
	weightAdaptability = 0.20
	weightCreativity   = 0.10

	strongThreshold  = 0.7
	averageThreshold = 0.4
)

// SkillAssessment is the breakdown behind a skill classification
type SkillAssessment struct {
	Level        firstlogin.SkillLevel `json:"level"`
	Score        float64               `json:"score"`
	Consistency  float64               `json:"consistency"`
	Confidence   float64               `json:"confidence"`
	Detail       float64               `json:"detail"`
	Adaptability float64               `json:"adaptability"`
	Creativity   float64               `json:"creativity"`
}

// Evaluate classifies a whole dialogue. It only reads the exchanges, so the
// same history always yields the same assessment.
func Evaluate(exchanges []firstlogin.DialogueExchange) SkillAssessment {
	if len(exchanges) == 0 {
		return SkillAssessment{Level: firstlogin.SkillWeak}
	}

	var a SkillAssessment
	for _, ex := range exchanges {
		a.Consistency += ex.Analysis.Consistency
		a.Confidence += ex.Analysis.Confidence
		a.Detail += ex.Analysis.Detail
	}
	n := float64(len(exchanges))
	a.Consistency /= n
	a.Confidence /= n
	a.Detail /= n

	a.Adaptability = adaptability(exchanges)
	a.Creativity = creativity(exchanges)

	a.Score = weightConsistency*a.Consistency +
		weightConfidence*a.Confidence +
		weightDetail*a.Detail +
		weightAdaptability*a.Adaptability +
		weightCreativity*a.Creativity
	a.Level = Classify(a.Score)

	return a
}

// Classify buckets a skill score
func Classify(score float64) firstlogin.SkillLevel {
	switch {
	case score >= strongThreshold:
		return firstlogin.SkillStrong
	case score >= averageThreshold:
		return firstlogin.SkillAverage
	default:
		return firstlogin.SkillWeak
	}
}

// adaptability measures how persuasiveness moved on answers to challenge
// prompts: 0.5 means no change. Without any challenge it falls back to mean
// persuasiveness.
func adaptability(exchanges []firstlogin.DialogueExchange) float64 {
	total, challenges := 0.0, 0
	for i := 1; i < len(exchanges); i++ {
		if !exchanges[i].Challenge {
			continue
		}
		delta := exchanges[i].Analysis.Persuasiveness - exchanges[i-1].Analysis.Persuasiveness
		total += clamp(0.5 + delta)
		challenges++
	}

	if challenges > 0 {
		return total / float64(challenges)
	}
	return meanPersuasiveness(exchanges)
}

// creativity averages lexical diversity with novelty against the common corpus
func creativity(exchanges []firstlogin.DialogueExchange) float64 {
	distinct := make(map[string]struct{})
	words := 0
	for _, ex := range exchanges {
		for _, tok := range lexicon.Tokenize(ex.Response) {
			distinct[tok] = struct{}{}
			words++
		}
	}
	if words == 0 {
		return 0
	}

	novel := 0
	for tok := range distinct {
		if !lexicon.IsCommon(tok) {
			novel++
		}
	}

	ttr := float64(len(distinct)) / float64(words)
	novelty := float64(novel) / float64(len(distinct))
	return 0.5*ttr + 0.5*novelty
}

// AggregatePersuasion is the dialogue-wide score the resolver compares
// against a ship's threshold.
func AggregatePersuasion(exchanges []firstlogin.DialogueExchange) float64 {
	if len(exchanges) == 0 {
		return 0
	}

	var conf, cons float64
	for _, ex := range exchanges {
		conf += ex.Analysis.Confidence
		cons += ex.Analysis.Consistency
	}
	n := float64(len(exchanges))

	return clamp(0.5*meanPersuasiveness(exchanges) + 0.3*conf/n + 0.2*cons/n)
}

func meanPersuasiveness(exchanges []firstlogin.DialogueExchange) float64 {
	if len(exchanges) == 0 {
		return 0
	}
	sum := 0.0
	for _, ex := range exchanges {
		sum += ex.Analysis.Persuasiveness
	}
	return sum / float64(len(exchanges))
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
