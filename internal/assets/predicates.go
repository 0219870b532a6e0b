package assets

import (
	"strings"

	"surfacegate/internal/contract"
)

// Kind identifies an expected artifact of a rendered job.
type Kind string

const (
	KindHero      Kind = "hero"
	KindSTL       Kind = "stl"
	KindTexture   Kind = "texture"
	KindHeightmap Kind = "heightmap"
	KindManifest  Kind = "manifest"
)

// outputPredicate matches manifest outputs for one artifact kind by
// case-insensitive substring over the entry's type, name, label, and
// location. The keyword lists are heuristics inherited from the engines'
// loose output vocabularies.
type outputPredicate struct {
	kind     Kind
	keywords []string
}

var outputPredicates = []outputPredicate{
	{kind: KindHero, keywords: []string{"hero", "preview"}},
	{kind: KindSTL, keywords: []string{".stl", "stl", "mesh", "enclosure"}},
	{kind: KindTexture, keywords: []string{"texture", "albedo"}},
	{kind: KindHeightmap, keywords: []string{"heightmap", "height"}},
	{kind: KindManifest, keywords: []string{"manifest"}},
}

func predicateFor(kind Kind) (outputPredicate, bool) {
	for _, p := range outputPredicates {
		if p.kind == kind {
			return p, true
		}
	}
	return outputPredicate{}, false
}

func (p outputPredicate) matches(o contract.Output) bool {
	haystack := strings.ToLower(strings.Join([]string{o.Type, o.Name, o.Label, o.Location()}, " "))
	for _, keyword := range p.keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// findFirst returns the first output in manifest declaration order matching
// the kind's predicate. This is a linear scan, not a scorer: first match
// wins so resolution stays reproducible across runs.
func findFirst(outputs []contract.Output, kind Kind) (contract.Output, bool) {
	predicate, ok := predicateFor(kind)
	if !ok {
		return contract.Output{}, false
	}
	for _, output := range outputs {
		if output.Location() == "" {
			continue
		}
		if predicate.matches(output) {
			return output, true
		}
	}
	return contract.Output{}, false
}
