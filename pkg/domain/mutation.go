package domain

import "fmt"

// MutationApplier applies a species transformation onto the world. The
// engine delegates here so simulation content (genetics, traits) stays out
// of the commit path.
type MutationApplier interface {
	Apply(world *World, current Species, variant Species) error
}

// SpeciesReplacer is the default applier: it swaps the species definition
// in every patch where the species is present, carrying populations over.
type SpeciesReplacer struct{}

// Apply replaces current with variant across all patches.
func (SpeciesReplacer) Apply(world *World, current Species, variant Species) error {
	if variant.ID == "" {
		return fmt.Errorf("mutated variant for species %q requires an ID", current.ID)
	}
	for _, patch := range world.Patches() {
		if !patch.HasSpecies(current.ID) {
			continue
		}
		if !patch.ReplaceSpecies(current.ID, variant) {
			return fmt.Errorf("replace species %q in patch %q", current.ID, patch.ID)
		}
	}
	return nil
}
