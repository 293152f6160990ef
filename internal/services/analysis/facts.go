package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/lexicon"
)

// Fact keys
const (
	FactName     = "name"
	FactRegistry = "registry"
	FactOrigin   = "origin"
	FactShip     = "ship"
)

const maxNameWords = 3

// namePrefixes in priority order. They match the original text; lowercasing
// first can shift byte offsets.
var namePrefixes = func() []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range []string{`my name is`, `name's`, `call me`, `captain`, `pilot`, `i'm`, `i am`} {
		out = append(out, regexp.MustCompile(`(?i)\b`+p+`\s+`))
	}
	return out
}()

var (
	registryPattern = regexp.MustCompile(`(?i)\b([a-z]{2,4}-\d{2,6})\b`)
	originPattern   = regexp.MustCompile(`\b(?:[Ff]rom|[Oo]ut of)\s+([A-Z][\w-]*(?:\s+[A-Z][\w-]*)?)`)
)

// longer phrases first so "cargo freighter" wins over a bare match
var shipPhrases = []struct {
	phrase string
	ship   firstlogin.ShipType
}{
	{"light freighter", firstlogin.ShipLightFreighter},
	{"cargo freighter", firstlogin.ShipCargoFreighter},
	{"escape pod", firstlogin.ShipEscapePod},
	{"scout ship", firstlogin.ShipScoutShip},
	{"fast courier", firstlogin.ShipFastCourier},
	{"scout", firstlogin.ShipScoutShip},
	{"courier", firstlogin.ShipFastCourier},
	{"defender", firstlogin.ShipDefender},
}

// ExtractName finds a self-introduction such as "call me Vex". Only
// capitalized words are taken so "I'm sure" is not read as a name.
func ExtractName(text string) string {
	for _, prefix := range namePrefixes {
		loc := prefix.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if name := leadingProperNoun(text[loc[1]:]); name != "" {
			return name
		}
	}
	return ""
}

func leadingProperNoun(rest string) string {
	if cut := strings.IndexAny(rest, ".,;:!?\n"); cut >= 0 {
		rest = rest[:cut]
	}

	var words []string
	for _, w := range strings.Fields(rest) {
		first := []rune(w)[0]
		if !unicode.IsUpper(first) || len(words) == maxNameWords {
			break
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// ExtractFacts pulls the claims a guard would remember from one response
func ExtractFacts(text string) map[string]string {
	facts := make(map[string]string)

	if name := ExtractName(text); name != "" {
		facts[FactName] = name
	}

	if m := registryPattern.FindStringSubmatch(text); m != nil {
		facts[FactRegistry] = strings.ToUpper(m[1])
	}

	for _, m := range originPattern.FindAllStringSubmatch(text, -1) {
		first := strings.ToLower(strings.Fields(m[1])[0])
		if !lexicon.IsCommon(first) {
			facts[FactOrigin] = m[1]
			break
		}
	}

	if ship, ok := ownedShip(strings.ToLower(text)); ok {
		facts[FactShip] = string(ship)
	}

	if len(facts) == 0 {
		return nil
	}
	return facts
}

// ownedShip returns the earliest "my <ship>" mention
func ownedShip(lowered string) (firstlogin.ShipType, bool) {
	best := -1
	var found firstlogin.ShipType
	for _, sp := range shipPhrases {
		idx := strings.Index(lowered, "my "+sp.phrase)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = sp.ship
		}
	}
	return found, best >= 0
}

// Contradictions compares freshly extracted facts against what the player
// already said. A ship fact is checked against the claimed ship.
func Contradictions(stored map[string]string, claimed firstlogin.ShipType, fresh map[string]string) []string {
	keys := make([]string, 0, len(fresh))
	for k := range fresh {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, key := range keys {
		value := fresh[key]
		if key == FactShip {
			if claimed != "" && firstlogin.ShipType(value) != claimed {
				out = append(out, fmt.Sprintf("claimed the %s but called it a %s",
					claimed.DisplayName(), firstlogin.ShipType(value).DisplayName()))
			}
			continue
		}
		if prev, ok := stored[key]; ok && !strings.EqualFold(prev, value) {
			out = append(out, fmt.Sprintf("%s changed from %q to %q", key, prev, value))
		}
	}
	return out
}
