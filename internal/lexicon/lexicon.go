// Package lexicon holds the word lists and tokenizer shared by the
// heuristic analyzer and the skill evaluator.
package lexicon

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into words. Digits stay inside
// words so registry codes like "kx-4471" survive as one token.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// Sentences splits text on terminal punctuation and reports how many of the
// sentences were questions.
func Sentences(text string) (total, questions int) {
	current := false
	for _, r := range text {
		switch r {
		case '.', '!':
			if current {
				total++
			}
			current = false
		case '?':
			if current {
				total++
				questions++
			}
			current = false
		default:
			if !unicode.IsSpace(r) {
				current = true
			}
		}
	}
	if current {
		total++
	}
	return total, questions
}

// CountPhrases counts how many of phrases occur in the lowercased text.
// Each phrase counts at most once.
func CountPhrases(lowered string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if containsWord(lowered, p) {
			n++
		}
	}
	return n
}

// containsWord matches phrase on word boundaries so "um" does not hit "cumbersome"
func containsWord(lowered, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(lowered[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if boundary(lowered, i-1) && boundary(lowered, end) {
			return true
		}
		start = i + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := rune(s[i])
	return !unicode.IsLetter(c) && !unicode.IsDigit(c)
}

// HasDigit reports whether a token carries a number
func HasDigit(token string) bool {
	return strings.IndexFunc(token, unicode.IsDigit) >= 0
}

// Hedges weaken a claim
var Hedges = []string{
	"maybe", "perhaps", "might", "could be", "i think", "not sure",
	"i guess", "probably", "possibly", "kind of", "sort of", "um", "uh",
}

// Assertives strengthen a claim
var Assertives = []string{
	"absolutely", "definitely", "certainly", "of course", "obviously",
	"clearly", "without a doubt", "i assure you", "i'm certain",
}

// DetailIndicators are concrete nouns a real owner tends to mention
var DetailIndicators = []string{
	"serial", "registry", "registration", "license", "clearance", "authorization",
	"docking", "bay", "cargo", "manifest", "hull", "engine", "reactor", "permit",
	"transponder", "berth", "fuel", "logbook",
}

// Common is the baseline corpus the creativity score measures novelty against
var Common = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about after all also am an and any are as at be because been before being but by
		can could did do does don't for from get got had has have he her here him his how
		i i'm if in into is it it's its just know like look me mine my no not now of off
		on one or our out over own please really right said say see she ship so some that
		the their them then there these they this those to too up us very was we well went
		were what when where which who why will with would yes you your yours sir officer
		guard okay ok thing things came come back here there`) {
		Common[w] = struct{}{}
	}
}

// IsCommon reports whether token belongs to the baseline corpus
func IsCommon(token string) bool {
	_, ok := Common[token]
	return ok
}
