package ledger

import (
	"fmt"
	"sort"
	"strings"

	"ecocore/pkg/domain"
)

// PreviousPopulations carries the prior generation's committed populations,
// keyed by species ID then patch ID, for comparison lines in the summary.
type PreviousPopulations map[string]map[string]int64

// Summarize renders a deterministic textual report from a results snapshot.
// Migrations are not yet reflected in PopulationByPatch before commit, so
// the summary nets all migration triples touching each patch on the fly.
// Patches a species only migrated into are synthesized from the net amount.
// When world is non-nil and playerReadable is set, patches render by name;
// otherwise by ID.
func Summarize(results []SpeciesResult, world *domain.World, previous PreviousPopulations, playerReadable bool) string {
	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeSpeciesSummary(&b, result, world, previous[result.Species.ID], playerReadable)
	}
	return b.String()
}

// Summarize renders the report for the ledger's current snapshot.
func (l *Ledger) Summarize(world *domain.World, previous PreviousPopulations, playerReadable bool) string {
	return Summarize(l.Results(), world, previous, playerReadable)
}

func writeSpeciesSummary(b *strings.Builder, result SpeciesResult, world *domain.World, previous map[string]int64, playerReadable bool) {
	if playerReadable {
		fmt.Fprintf(b, "%s:\n", result.Species.Name)
	} else {
		fmt.Fprintf(b, "%s (%s):\n", result.Species.Name, result.Species.ID)
	}

	if result.MutatedVariant != nil {
		fmt.Fprintf(b, " mutated into %s\n", result.MutatedVariant.Name)
	} else if !playerReadable {
		b.WriteString(" no mutation\n")
	}

	for _, mig := range result.Migrations {
		if playerReadable {
			fmt.Fprintf(b, " migrated %d from %s to %s\n",
				mig.Amount,
				patchLabel(world, mig.FromPatch, playerReadable),
				patchLabel(world, mig.ToPatch, playerReadable))
		} else {
			fmt.Fprintf(b, " migration %s -> %s: %+d\n", mig.FromPatch, mig.ToPatch, mig.Amount)
		}
	}

	b.WriteString(" population in patches:\n")
	for _, patchID := range adjustedPatchOrder(result) {
		adjusted := adjustedPopulation(result, patchID)
		fmt.Fprintf(b, "  %s: %d", patchLabel(world, patchID, playerReadable), adjusted)
		if prev, ok := previous[patchID]; ok {
			fmt.Fprintf(b, " (previous: %d)", prev)
		}
		b.WriteByte('\n')
	}
}

// adjustedPatchOrder returns every patch the species touched, directly or
// by migration, sorted for stable output.
func adjustedPatchOrder(result SpeciesResult) []string {
	seen := make(map[string]struct{}, len(result.PopulationByPatch))
	for id := range result.PopulationByPatch {
		seen[id] = struct{}{}
	}
	for _, mig := range result.Migrations {
		seen[mig.FromPatch] = struct{}{}
		seen[mig.ToPatch] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// adjustedPopulation nets all migrations touching the patch into the
// recorded population. The result may be negative in transit; it renders
// unclamped so data-quality problems stay visible.
func adjustedPopulation(result SpeciesResult, patchID string) int64 {
	v := result.PopulationByPatch[patchID]
	if v < 0 {
		v = 0
	}
	for _, mig := range result.Migrations {
		if mig.FromPatch == patchID {
			v -= mig.Amount
		}
		if mig.ToPatch == patchID {
			v += mig.Amount
		}
	}
	return v
}

func patchLabel(world *domain.World, patchID string, playerReadable bool) string {
	if playerReadable && world != nil {
		if p, ok := world.LookupPatch(patchID); ok && p.Name != "" {
			return p.Name
		}
	}
	return patchID
}
