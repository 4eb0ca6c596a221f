// Package domain defines the world-model entities, value types, and
// commit-report primitives shared by the ecocore simulation engine.
package domain

import "time"

// EntityType identifies the type of record referenced in reports and
// persistence buckets.
type EntityType string

// Supported entity type identifiers.
const (
	// EntitySpecies identifies a species definition.
	EntitySpecies EntityType = "species"
	// EntityPatch identifies a habitat patch.
	EntityPatch EntityType = "patch"
	// EntitySnapshot identifies a persisted generation snapshot.
	EntitySnapshot EntityType = "snapshot"
)

// Species is an entity type tracked across patches, carrying an opaque
// genome definition. The engine never interprets the genome; it only moves
// populations and swaps definitions on mutation.
type Species struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Genome string `json:"genome,omitempty"`
}

// PatchState captures a patch's per-species populations at a point in time.
// It is the serializable projection of a Patch used in snapshots.
type PatchState struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Biome       string           `json:"biome,omitempty"`
	Populations map[string]int64 `json:"populations"`
}

// GenerationSnapshot records authoritative world state after one generation
// has been committed, together with the rendered summary report.
type GenerationSnapshot struct {
	RunID      string       `json:"run_id"`
	Generation int          `json:"generation"`
	RecordedAt time.Time    `json:"recorded_at"`
	Patches    []PatchState `json:"patches"`
	Summary    string       `json:"summary,omitempty"`
}
