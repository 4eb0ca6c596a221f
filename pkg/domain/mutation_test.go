package domain

import "testing"

func TestSpeciesReplacerSwapsDefinitionEverywhere(t *testing.T) {
	w := NewWorld()
	current := Species{ID: "alpha", Name: "Alpha", Genome: "G1"}
	occupied := NewPatch("p1", "First", "test")
	occupied.AddSpecies(current, 30)
	alsoOccupied := NewPatch("p2", "Second", "test")
	alsoOccupied.AddSpecies(current, 5)
	empty := NewPatch("p3", "Third", "test")
	for _, p := range []*Patch{occupied, alsoOccupied, empty} {
		if err := w.AddPatch(p); err != nil {
			t.Fatalf("AddPatch() error = %v", err)
		}
	}

	variant := Species{ID: "alpha", Name: "Alpha prime", Genome: "G2"}
	if err := (SpeciesReplacer{}).Apply(w, current, variant); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, p := range []*Patch{occupied, alsoOccupied} {
		got, ok := p.Species("alpha")
		if !ok {
			t.Fatalf("species missing from patch %s", p.ID)
		}
		if got.Genome != "G2" {
			t.Fatalf("patch %s genome = %q, want G2", p.ID, got.Genome)
		}
	}
	if got := occupied.Population("alpha"); got != 30 {
		t.Fatalf("population = %d, want 30 carried through replacement", got)
	}
	if empty.HasSpecies("alpha") {
		t.Fatal("replacement introduced the species into an unoccupied patch")
	}
}

func TestSpeciesReplacerRequiresVariantID(t *testing.T) {
	w := NewWorld()
	if err := (SpeciesReplacer{}).Apply(w, Species{ID: "alpha"}, Species{}); err == nil {
		t.Fatal("Apply() accepted a variant without an ID")
	}
}
