// Command ecosim runs a small demonstration simulation: a few species spread
// over a handful of patches, advanced through several generations of growth,
// migration, and mutation, with each generation's snapshot persisted through
// the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ecocore/internal/blob"
	"ecocore/internal/core"
	"ecocore/internal/executor"
	"ecocore/internal/ledger"
	"ecocore/pkg/domain"
)

func main() {
	generations := flag.Int("generations", 5, "number of generations to simulate")
	workers := flag.Int("workers", 0, "worker pool size (0 selects a CPU-based default)")
	readable := flag.Bool("readable", false, "render summaries with patch names instead of IDs")
	archive := flag.Bool("archive", false, "archive generation summaries to the configured blob store")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*generations, *workers, *readable, *archive, logger); err != nil {
		logger.Error("ecosim failed", "error", err)
		os.Exit(1)
	}
}

func run(generations, workers int, readable, archiveSummaries bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, driver, err := core.OpenSnapshotStore(ctx)
	if err != nil {
		return err
	}
	logger.Info("snapshot store ready", "driver", string(driver))

	poolOpts := []executor.Option{
		executor.WithFaultHandler(func(f executor.Fault) {
			logger.Error("task fault", "error", f.Err, "panic", f.FromPanic)
		}),
	}
	if workers > 0 {
		poolOpts = append(poolOpts, executor.WithParallelism(workers))
	}
	pool := executor.New(poolOpts...)

	serviceOpts := []core.ServiceOption{core.WithLogger(logger)}
	if archiveSummaries {
		archive, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		logger.Info("summary archive ready", "driver", string(archive.Driver()))
		serviceOpts = append(serviceOpts, core.WithArchive(archive))
	}

	world := buildWorld()
	service := core.NewService(world, pool, store, serviceOpts...)
	defer service.Close()

	for gen := 1; gen <= generations; gen++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := service.RunGeneration(ctx, computationsFor(world), core.GenerationOptions{
			PlayerReadable: readable,
		})
		if err != nil {
			return fmt.Errorf("generation %d: %w", gen, err)
		}
		fmt.Printf("=== generation %d (%s) ===\n%s\n", outcome.Generation, outcome.RunID, outcome.Summary)
		for _, issue := range outcome.Report.Issues {
			logger.Warn("commit issue", "issue", issue.String())
		}
	}
	return nil
}

func buildWorld() *domain.World {
	world := domain.NewWorld()
	vents := domain.NewPatch("vents", "Volcanic Vents", "hydrothermal")
	tidepool := domain.NewPatch("tidepool", "Coastal Tidepool", "coastal")
	abyss := domain.NewPatch("abyss", "Abyssal Plain", "abyssopelagic")
	for _, p := range []*domain.Patch{vents, tidepool, abyss} {
		if err := world.AddPatch(p); err != nil {
			panic(err)
		}
	}

	primum := domain.Species{ID: "primum", Name: "Primum thrivium", Genome: "MTCL"}
	cellus := domain.Species{ID: "cellus", Name: "Cellus mobilis", Genome: "FTCA"}
	vents.AddSpecies(primum, 12000)
	vents.AddSpecies(cellus, 3000)
	tidepool.AddSpecies(cellus, 8000)
	return world
}

// computationsFor builds one computation per species present anywhere in
// the world. Each computation owns exactly one species, so they are free to
// run concurrently.
func computationsFor(world *domain.World) []core.Computation {
	present := make(map[string]struct{})
	var order []string
	for _, patch := range world.Patches() {
		for _, id := range patch.SpeciesIDs() {
			if _, seen := present[id]; !seen {
				present[id] = struct{}{}
				order = append(order, id)
			}
		}
	}

	computations := make([]core.Computation, 0, len(order))
	for _, speciesID := range order {
		speciesID := speciesID
		computations = append(computations, func(led *ledger.Ledger) error {
			return simulateSpecies(led, world, speciesID)
		})
	}
	return computations
}

// simulateSpecies applies a simple model: ten percent growth in every
// occupied patch, plus a fixed trickle migration from the most populated
// patch toward the vents when the species lives elsewhere.
func simulateSpecies(led *ledger.Ledger, world *domain.World, speciesID string) error {
	var (
		sp        domain.Species
		found     bool
		bestPatch string
		bestPop   int64
	)
	for _, patch := range world.Patches() {
		def, ok := patch.Species(speciesID)
		if !ok {
			continue
		}
		sp, found = def, true
		pop := patch.Population(speciesID)
		grown := pop + pop/10
		if err := led.RecordPopulation(sp, patch.ID, grown); err != nil {
			return err
		}
		if grown > bestPop {
			bestPatch, bestPop = patch.ID, grown
		}
	}
	if !found {
		return fmt.Errorf("species %q not present in any patch", speciesID)
	}
	if bestPatch != "" && bestPatch != "vents" && bestPop > 1000 {
		if err := led.RecordMigration(sp, bestPatch, "vents", bestPop/20); err != nil {
			return err
		}
	}
	return nil
}
