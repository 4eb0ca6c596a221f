package core

import "ecocore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Species            = domain.Species
	Patch              = domain.Patch
	World              = domain.World
	CommitStage        = domain.CommitStage
	CommitIssue        = domain.CommitIssue
	CommitReport       = domain.CommitReport
	GenerationSnapshot = domain.GenerationSnapshot
	PatchState         = domain.PatchState
	SnapshotStore      = domain.SnapshotStore
	MutationApplier    = domain.MutationApplier
	SpeciesReplacer    = domain.SpeciesReplacer
	NotFoundError      = domain.NotFoundError
)

const (
	EntitySpecies  = domain.EntitySpecies
	EntityPatch    = domain.EntityPatch
	EntitySnapshot = domain.EntitySnapshot
)

const (
	StageMutation   = domain.StageMutation
	StagePopulation = domain.StagePopulation
	StageMigration  = domain.StageMigration
)
