// Package ledger accumulates per-species, per-patch partial results
// produced by concurrently running generation computations and applies them
// to world state in one deterministic pass.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"ecocore/pkg/domain"
)

// Migration records population of one species moved between two patches
// within a generation. Order of application matters for summary output but
// not for final population math.
type Migration struct {
	FromPatch string
	ToPatch   string
	Amount    int64
}

// SpeciesResult accumulates the outcome of one species' computations for a
// single generation. At most one result exists per species.
type SpeciesResult struct {
	Species           domain.Species
	PopulationByPatch map[string]int64
	MutatedVariant    *domain.Species
	Migrations        []Migration
}

func (r *SpeciesResult) clone() SpeciesResult {
	cp := SpeciesResult{Species: r.Species}
	cp.PopulationByPatch = make(map[string]int64, len(r.PopulationByPatch))
	for k, v := range r.PopulationByPatch {
		cp.PopulationByPatch[k] = v
	}
	if r.MutatedVariant != nil {
		v := *r.MutatedVariant
		cp.MutatedVariant = &v
	}
	cp.Migrations = append([]Migration(nil), r.Migrations...)
	return cp
}

// Ledger is the results accumulator shared by all workers during the
// concurrent phase. Entry creation and mutation are guarded by a single
// mutex, so writers touching different species never conflict. Writers
// touching the same species are last-write-wins; the orchestrator is
// expected to partition work so each species has at most one in-flight
// computation at a time.
type Ledger struct {
	mu      sync.Mutex
	results map[string]*SpeciesResult
	applier domain.MutationApplier
}

// CommitOptions controls a commit pass.
type CommitOptions struct {
	// SkipMutations leaves recorded variants unapplied.
	SkipMutations bool
}

// New constructs an empty ledger. A nil applier falls back to
// domain.SpeciesReplacer.
func New(applier domain.MutationApplier) *Ledger {
	if applier == nil {
		applier = domain.SpeciesReplacer{}
	}
	return &Ledger{
		results: make(map[string]*SpeciesResult),
		applier: applier,
	}
}

// getOrCreate is idempotent per species. Caller must hold l.mu.
func (l *Ledger) getOrCreate(sp domain.Species) (*SpeciesResult, error) {
	if sp.ID == "" {
		return nil, fmt.Errorf("species identity required")
	}
	r, ok := l.results[sp.ID]
	if !ok {
		r = &SpeciesResult{
			Species:           sp,
			PopulationByPatch: make(map[string]int64),
		}
		l.results[sp.ID] = r
	}
	return r, nil
}

// RecordMutation sets the species' replacement definition for this
// generation. A second call overwrites the first.
func (l *Ledger) RecordMutation(sp domain.Species, variant domain.Species) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.getOrCreate(sp)
	if err != nil {
		return err
	}
	v := variant
	r.MutatedVariant = &v
	return nil
}

// RecordPopulation sets the species' population for a patch. Negative
// values clamp to zero.
func (l *Ledger) RecordPopulation(sp domain.Species, patchID string, population int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.getOrCreate(sp)
	if err != nil {
		return err
	}
	if population < 0 {
		population = 0
	}
	r.PopulationByPatch[patchID] = population
	return nil
}

// RecordMigration appends a migration triple. The ledger does not adjust
// PopulationByPatch here and does not validate the amount against the
// source patch; migrations resolve at commit and summary time.
func (l *Ledger) RecordMigration(sp domain.Species, fromPatch, toPatch string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.getOrCreate(sp)
	if err != nil {
		return err
	}
	r.Migrations = append(r.Migrations, Migration{FromPatch: fromPatch, ToPatch: toPatch, Amount: amount})
	return nil
}

// GlobalPopulation sums the species' recorded populations over all patches,
// clamping negatives. It returns a NotFoundError when no result was ever
// recorded for the species: callers must record before reading.
func (l *Ledger) GlobalPopulation(speciesID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.results[speciesID]
	if !ok {
		return 0, domain.NotFoundError{Entity: domain.EntitySpecies, ID: speciesID}
	}
	var total int64
	for _, v := range r.PopulationByPatch {
		if v > 0 {
			total += v
		}
	}
	return total, nil
}

// PopulationInPatch returns the species' recorded population for one patch,
// clamped at zero. Both the species and the patch key must have been
// recorded.
func (l *Ledger) PopulationInPatch(speciesID, patchID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.results[speciesID]
	if !ok {
		return 0, domain.NotFoundError{Entity: domain.EntitySpecies, ID: speciesID}
	}
	v, ok := r.PopulationByPatch[patchID]
	if !ok {
		return 0, domain.NotFoundError{Entity: domain.EntityPatch, ID: patchID}
	}
	if v < 0 {
		v = 0
	}
	return v, nil
}

// Results returns a deep copy of all accumulated results sorted by species
// ID.
func (l *Ledger) Results() []SpeciesResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.results))
	for id := range l.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]SpeciesResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.results[id].clone())
	}
	return out
}

// Commit applies every accumulated result onto world state in sorted
// species order: mutation first (unless skipped), then population
// write-back, then migrations. Missing patches and failed updates are
// reported and skipped; the merge is best-effort and never rolls back.
// Commit must only run after all producers have drained; it is not safe
// against concurrent Record calls on the same ledger.
func (l *Ledger) Commit(world *domain.World, opts CommitOptions) domain.CommitReport {
	var report domain.CommitReport
	for _, result := range l.Results() {
		speciesID := result.Species.ID
		if !opts.SkipMutations && result.MutatedVariant != nil {
			if err := l.applier.Apply(world, result.Species, *result.MutatedVariant); err != nil {
				report.Add(domain.CommitIssue{
					Stage:     domain.StageMutation,
					SpeciesID: speciesID,
					Message:   err.Error(),
				})
			}
		}

		patchIDs := make([]string, 0, len(result.PopulationByPatch))
		for id := range result.PopulationByPatch {
			patchIDs = append(patchIDs, id)
		}
		sort.Strings(patchIDs)
		for _, patchID := range patchIDs {
			patch, ok := world.LookupPatch(patchID)
			if !ok {
				report.Add(domain.CommitIssue{
					Stage:     domain.StagePopulation,
					SpeciesID: speciesID,
					PatchID:   patchID,
					Message:   "patch not found",
				})
				continue
			}
			if !patch.SetPopulation(speciesID, result.PopulationByPatch[patchID]) {
				report.Add(domain.CommitIssue{
					Stage:     domain.StagePopulation,
					SpeciesID: speciesID,
					PatchID:   patchID,
					Message:   "species not present in patch",
				})
			}
		}

		for _, mig := range result.Migrations {
			source, sourceOK := world.LookupPatch(mig.FromPatch)
			dest, destOK := world.LookupPatch(mig.ToPatch)
			if !sourceOK || !destOK {
				if !sourceOK {
					report.Add(domain.CommitIssue{
						Stage:     domain.StageMigration,
						SpeciesID: speciesID,
						PatchID:   mig.FromPatch,
						Message:   "patch not found",
					})
				}
				if !destOK {
					report.Add(domain.CommitIssue{
						Stage:     domain.StageMigration,
						SpeciesID: speciesID,
						PatchID:   mig.ToPatch,
						Message:   "patch not found",
					})
				}
				continue
			}
			if !source.SetPopulation(speciesID, source.Population(speciesID)-mig.Amount) {
				report.Add(domain.CommitIssue{
					Stage:     domain.StageMigration,
					SpeciesID: speciesID,
					PatchID:   mig.FromPatch,
					Message:   "failed to update source patch",
				})
			}
			if dest.HasSpecies(speciesID) {
				if !dest.SetPopulation(speciesID, dest.Population(speciesID)+mig.Amount) {
					report.Add(domain.CommitIssue{
						Stage:     domain.StageMigration,
						SpeciesID: speciesID,
						PatchID:   mig.ToPatch,
						Message:   "failed to update destination patch",
					})
				}
			} else if !dest.AddSpecies(result.Species, mig.Amount) {
				report.Add(domain.CommitIssue{
					Stage:     domain.StageMigration,
					SpeciesID: speciesID,
					PatchID:   mig.ToPatch,
					Message:   "failed to add species to destination patch",
				})
			}
		}
	}
	return report
}
