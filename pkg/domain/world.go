package domain

import (
	"fmt"
	"sort"
	"time"
)

// Patch is a distinct habitat holding per-species population counts along
// with the species definitions currently present. Patch is not safe for
// concurrent mutation; commit-time writers must hold the world exclusively.
type Patch struct {
	ID    string
	Name  string
	Biome string

	populations map[string]int64
	species     map[string]Species
}

// NewPatch constructs an empty patch.
func NewPatch(id, name, biome string) *Patch {
	return &Patch{
		ID:          id,
		Name:        name,
		Biome:       biome,
		populations: make(map[string]int64),
		species:     make(map[string]Species),
	}
}

// AddSpecies introduces a species into the patch with an initial population.
// It returns false when the species is already present.
func (p *Patch) AddSpecies(sp Species, population int64) bool {
	if sp.ID == "" {
		return false
	}
	if _, exists := p.species[sp.ID]; exists {
		return false
	}
	p.species[sp.ID] = sp
	p.populations[sp.ID] = population
	return true
}

// HasSpecies reports whether the species is present in the patch.
func (p *Patch) HasSpecies(speciesID string) bool {
	_, ok := p.species[speciesID]
	return ok
}

// Species returns the stored definition for a species present in the patch.
func (p *Patch) Species(speciesID string) (Species, bool) {
	sp, ok := p.species[speciesID]
	return sp, ok
}

// Population returns the stored population for the species, zero when the
// species is absent.
func (p *Patch) Population(speciesID string) int64 {
	return p.populations[speciesID]
}

// SetPopulation overwrites the stored population for a species already
// present in the patch. It returns false when the species is absent. The
// value is stored as given; callers clamp where their contract requires it.
func (p *Patch) SetPopulation(speciesID string, population int64) bool {
	if _, ok := p.species[speciesID]; !ok {
		return false
	}
	p.populations[speciesID] = population
	return true
}

// ReplaceSpecies swaps the definition stored under oldID for the variant,
// carrying the current population over to the variant's ID. It returns
// false when oldID is not present.
func (p *Patch) ReplaceSpecies(oldID string, variant Species) bool {
	if _, ok := p.species[oldID]; !ok {
		return false
	}
	pop := p.populations[oldID]
	delete(p.species, oldID)
	delete(p.populations, oldID)
	p.species[variant.ID] = variant
	p.populations[variant.ID] = pop
	return true
}

// SpeciesIDs returns the IDs of all species present, sorted.
func (p *Patch) SpeciesIDs() []string {
	out := make([]string, 0, len(p.species))
	for id := range p.species {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// State returns a serializable projection of the patch.
func (p *Patch) State() PatchState {
	pops := make(map[string]int64, len(p.populations))
	for id, v := range p.populations {
		pops[id] = v
	}
	return PatchState{ID: p.ID, Name: p.Name, Biome: p.Biome, Populations: pops}
}

// World is the authoritative simulation state: patches indexed by identity.
// Mutation happens only at generation commit time, after all producers have
// drained; the world performs no internal locking.
type World struct {
	patches map[string]*Patch
}

// NewWorld constructs an empty world.
func NewWorld() *World {
	return &World{patches: make(map[string]*Patch)}
}

// AddPatch registers a patch. Duplicate IDs are rejected.
func (w *World) AddPatch(p *Patch) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("patch requires an ID")
	}
	if _, exists := w.patches[p.ID]; exists {
		return fmt.Errorf("patch %q already exists", p.ID)
	}
	w.patches[p.ID] = p
	return nil
}

// LookupPatch retrieves a patch by identity.
func (w *World) LookupPatch(id string) (*Patch, bool) {
	p, ok := w.patches[id]
	return p, ok
}

// Patches returns all patches sorted by ID.
func (w *World) Patches() []*Patch {
	out := make([]*Patch, 0, len(w.patches))
	for _, p := range w.patches {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot projects the current world state into a generation snapshot.
func (w *World) Snapshot(runID string, generation int, recordedAt time.Time, summary string) GenerationSnapshot {
	patches := w.Patches()
	states := make([]PatchState, 0, len(patches))
	for _, p := range patches {
		states = append(states, p.State())
	}
	return GenerationSnapshot{
		RunID:      runID,
		Generation: generation,
		RecordedAt: recordedAt,
		Patches:    states,
		Summary:    summary,
	}
}
