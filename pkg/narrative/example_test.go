package narrative_test

import (
	"fmt"

	"github.com/pgatlas/pgatlas/pkg/narrative"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

func ExampleKeystone() {
	e := surface.KeystoneEntry{
		Contributor:   "alice",
		DominantRepos: []string{"sdk", "cli"},
		Projects:      1,
		KCI:           14,
		AtRisk:        9,
	}
	fmt.Println(narrative.Keystone(e))
	// Output: If alice became unavailable, 2 packages across 1 project would lose their primary maintainer (KCI=14.0). These repos account for 9 unique transitive downstream dependencies.
}

func ExampleOrdinal() {
	fmt.Println(narrative.Ordinal(87.4), narrative.Ordinal(22), narrative.Ordinal(11))
	// Output: 87th 22nd 11th
}
