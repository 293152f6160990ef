package analysis

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/lexicon"
)

const (
	// entitiesForFullDetail distinct entities score a detail of 1.0
	entitiesForFullDetail = 6.0
	contradictionPenalty  = 0.3
	firstClaimConsistency = 0.8
)

// HeuristicAnalyzer scores responses with deterministic text rules.
// It needs no network and is always available.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates the rule based analyzer
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Name implements Analyzer
func (h *HeuristicAnalyzer) Name() string {
	return "heuristic"
}

// Analyze implements Analyzer
func (h *HeuristicAnalyzer) Analyze(_ context.Context, req *Request) (*firstlogin.AnalysisResult, error) {
	if req == nil {
		return nil, dnderr.InvalidArgument("analysis request is required")
	}

	var stored map[string]string
	var claimed firstlogin.ShipType
	if req.Session != nil {
		stored = req.Session.Facts()
		claimed = req.Session.ClaimedShip
	}

	return score(req.Response, stored, claimed), nil
}

func score(response string, stored map[string]string, claimed firstlogin.ShipType) *firstlogin.AnalysisResult {
	tokens := lexicon.Tokenize(response)
	facts := ExtractFacts(response)
	contradictions := Contradictions(stored, claimed, facts)

	result := &firstlogin.AnalysisResult{
		Consistency:    consistency(tokens, stored, contradictions),
		Contradictions: contradictions,
		Facts:          facts,
		Source:         firstlogin.SourceHeuristic,
	}
	if len(tokens) == 0 {
		return result
	}

	lowered := strings.ToLower(response)
	result.Persuasiveness = persuasiveness(tokens, lowered)
	result.Confidence = confidence(tokens, response, lowered)
	result.Detail = detail(tokens, response, lowered)
	return result
}

// persuasiveness rewards length up to a cap, concrete nouns and numbers
func persuasiveness(tokens []string, lowered string) float64 {
	p := math.Min(0.3+float64(len(tokens))/50, 0.9)
	p += 0.05 * float64(lexicon.CountPhrases(lowered, lexicon.DetailIndicators))
	for _, tok := range tokens {
		if lexicon.HasDigit(tok) {
			p += 0.05
			break
		}
	}
	return clamp(p)
}

// confidence mixes length with the share of declarative sentences, then
// adjusts for assertive and hedging phrases.
func confidence(tokens []string, response, lowered string) float64 {
	lengthPart := math.Min(1, float64(len(tokens))/20)

	assertiveness := 1.0
	if total, questions := lexicon.Sentences(response); total > 0 {
		assertiveness = 1 - float64(questions)/float64(total)
	}

	c := 0.6*lengthPart + 0.4*assertiveness
	c += 0.1 * float64(lexicon.CountPhrases(lowered, lexicon.Assertives))
	c -= 0.15 * float64(lexicon.CountPhrases(lowered, lexicon.Hedges))
	return clamp(c)
}

// consistency starts from how many stored facts the response echoes and
// loses a fixed amount per contradiction.
func consistency(tokens []string, stored map[string]string, contradictions []string) float64 {
	base := firstClaimConsistency
	if len(stored) > 0 {
		present := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			present[tok] = true
		}

		echoed := 0
		for _, v := range stored {
			for _, tok := range lexicon.Tokenize(v) {
				if present[tok] {
					echoed++
					break
				}
			}
		}
		base = 0.7 + 0.3*float64(echoed)/float64(len(stored))
	}

	return clamp(base - contradictionPenalty*float64(len(contradictions)))
}

// detail counts distinct entities: numbers, concrete nouns and proper nouns
func detail(tokens []string, response, lowered string) float64 {
	entities := make(map[string]struct{})

	for _, tok := range tokens {
		if lexicon.HasDigit(tok) {
			entities[tok] = struct{}{}
		}
	}
	for _, ind := range lexicon.DetailIndicators {
		if lexicon.CountPhrases(lowered, []string{ind}) > 0 {
			entities[ind] = struct{}{}
		}
	}
	for _, noun := range properNouns(response) {
		entities[noun] = struct{}{}
	}

	return clamp(float64(len(entities)) / entitiesForFullDetail)
}

// properNouns returns capitalized words that do not open a sentence
func properNouns(text string) []string {
	var out []string
	sentenceStart := true
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})

		if word != "" && !sentenceStart && unicode.IsUpper([]rune(word)[0]) && !isFirstPerson(word) {
			out = append(out, strings.ToLower(word))
		}

		sentenceStart = strings.ContainsAny(raw[len(raw)-1:], ".!?")
	}
	return out
}

func isFirstPerson(word string) bool {
	switch word {
	case "I", "I'm", "I've", "I'll", "I'd":
		return true
	}
	return false
}
