package domain

import (
	"strings"
	"unicode"

	"github.com/couchcryptid/locationd/internal/cache"
)

// Correction is a learned mapping from a user's original query to the
// canonical name a provider resolved it to. Corrections are advisory,
// never authoritative: they only widen the variation list for later
// queries of the same string.
type Correction struct {
	Name       string
	Similarity float64 // similarity of Name to the original query at learn time
}

// placeSuffixes are generic trailing tokens users append to place names
// ("munnar town", "ooty city") that providers often fail to match.
var placeSuffixes = map[string]bool{
	"city":     true,
	"town":     true,
	"village":  true,
	"place":    true,
	"location": true,
}

// VariationGenerator produces deterministic textual variants of a
// place-name query to broaden provider recall. Pure transformation plus a
// single correction-store read; no network.
type VariationGenerator struct {
	corrections *cache.Store[Correction]
}

// NewVariationGenerator creates a generator backed by the given learned
// correction store.
func NewVariationGenerator(corrections *cache.Store[Correction]) *VariationGenerator {
	return &VariationGenerator{corrections: corrections}
}

// Generate returns the ordered, deduplicated variant list for name. The
// original always comes first; a learned correction, when one exists and
// differs, is inserted right after it so it is tried before the purely
// mechanical variants.
func (g *VariationGenerator) Generate(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(name)
	if corr, ok := g.corrections.Get(strings.ToLower(name)); ok && !strings.EqualFold(corr.Name, name) {
		add(corr.Name)
	}
	add(titleCase(name))
	add(strings.ToLower(name))
	add(strings.ToUpper(name))
	if stripped := stripPlaceSuffix(name); stripped != name {
		add(stripped)
		add(titleCase(stripped))
	}

	return out
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// stripPlaceSuffix removes trailing generic place tokens. Returns the
// input unchanged when nothing strips or stripping would empty it.
func stripPlaceSuffix(s string) string {
	fields := strings.Fields(s)
	end := len(fields)
	for end > 1 && placeSuffixes[strings.ToLower(fields[end-1])] {
		end--
	}
	if end == len(fields) {
		return s
	}
	return strings.Join(fields[:end], " ")
}
