package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecocore/internal/blob"
	"ecocore/internal/executor"
	"ecocore/internal/ledger"
)

// Computation is one unit of generation work: it computes population,
// migration, and mutation outcomes for its slice of the world and writes
// them into the supplied ledger. Computations for the same species must not
// run concurrently; the service runs the slice it is given as-is and
// expects the caller to partition accordingly.
type Computation func(*ledger.Ledger) error

// GenerationOptions control a single generation run.
type GenerationOptions struct {
	// SkipMutations leaves recorded variants unapplied at commit.
	SkipMutations bool
	// PlayerReadable renders the summary with patch names instead of IDs.
	PlayerReadable bool
}

// GenerationOutcome reports one committed generation.
type GenerationOutcome struct {
	RunID      string
	Generation int
	Report     CommitReport
	Summary    string
	Snapshot   GenerationSnapshot
}

// Service drives generations end to end: it fans the computations out over
// the worker pool, waits for the drain barrier, commits the accumulated
// results onto the world, and persists the resulting snapshot. Service is
// not safe for concurrent RunGeneration calls; generations are sequential
// by design.
type Service struct {
	world   *World
	pool    *executor.Pool
	store   SnapshotStore
	archive blob.Store

	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	applier MutationApplier

	generation int
}

// WithArchive installs a blob store that receives each generation's
// summary report. Archiving is best-effort; failures are logged, not
// fatal.
func WithArchive(store blob.Store) ServiceOption {
	return func(s *Service) { s.archive = store }
}

// NewService constructs a service around an explicitly owned pool. The
// snapshot store may be nil for callers that do not persist generations.
func NewService(world *World, pool *executor.Pool, store SnapshotStore, opts ...ServiceOption) *Service {
	s := &Service{
		world:   world,
		pool:    pool,
		store:   store,
		logger:  noopLogger{},
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		applier: SpeciesReplacer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// World returns the authoritative world state.
func (s *Service) World() *World { return s.world }

// Pool returns the underlying worker pool.
func (s *Service) Pool() *executor.Pool { return s.pool }

// Generation returns the number of committed generations.
func (s *Service) Generation() int { return s.generation }

// Close shuts the pool down and releases the snapshot store.
func (s *Service) Close() error {
	s.pool.Shutdown()
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// RunGeneration executes one full generation: concurrent computation,
// drain, commit, summary, snapshot.
func (s *Service) RunGeneration(ctx context.Context, computations []Computation, opts GenerationOptions) (GenerationOutcome, error) {
	const op = "run_generation"
	start := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}

	outcome, err := s.runGeneration(ctx, computations, opts)

	duration := time.Since(start)
	s.observe(ctx, op, err == nil, duration)
	if err != nil {
		s.recordAudit(ctx, op, outcome.RunID, AuditStatusError, err.Error(), duration)
	} else {
		s.recordAudit(ctx, op, outcome.RunID, AuditStatusSuccess, "", duration)
	}
	if span != nil {
		span.End(err)
	}
	return outcome, err
}

func (s *Service) runGeneration(ctx context.Context, computations []Computation, opts GenerationOptions) (GenerationOutcome, error) {
	led := ledger.New(s.applier)
	tasks := make([]executor.Task, 0, len(computations))
	for _, compute := range computations {
		if compute == nil {
			continue
		}
		compute := compute
		tasks = append(tasks, executor.TaskFunc(func() error {
			return compute(led)
		}))
	}

	if err := s.pool.RunAndWait(tasks); err != nil {
		return GenerationOutcome{}, fmt.Errorf("generation computations: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return GenerationOutcome{}, err
	}

	// Previous populations are captured before the merge so the summary can
	// show generation-over-generation changes.
	previous := s.previousPopulations()
	report := led.Commit(s.world, ledger.CommitOptions{SkipMutations: opts.SkipMutations})
	for _, issue := range report.Issues {
		s.logger.Warn("commit issue",
			"stage", string(issue.Stage),
			"species", issue.SpeciesID,
			"patch", issue.PatchID,
			"detail", issue.Message)
	}
	summary := led.Summarize(s.world, previous, opts.PlayerReadable)

	s.generation++
	runID := uuid.NewString()
	snapshot := s.world.Snapshot(runID, s.generation, s.clock.Now(), summary)
	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
			return GenerationOutcome{RunID: runID}, fmt.Errorf("save snapshot: %w", err)
		}
	}
	if s.archive != nil {
		key := fmt.Sprintf("generations/%06d-%s.txt", s.generation, runID)
		if _, err := s.archive.Put(ctx, key, strings.NewReader(summary), blob.PutOptions{ContentType: "text/plain; charset=utf-8"}); err != nil {
			s.logger.Warn("archive summary", "key", key, "error", err)
		}
	}

	s.logger.Info("generation committed",
		"generation", s.generation,
		"run_id", runID,
		"species", len(led.Results()),
		"issues", len(report.Issues))

	return GenerationOutcome{
		RunID:      runID,
		Generation: s.generation,
		Report:     report,
		Summary:    summary,
		Snapshot:   snapshot,
	}, nil
}

func (s *Service) previousPopulations() ledger.PreviousPopulations {
	previous := make(ledger.PreviousPopulations)
	for _, patch := range s.world.Patches() {
		for _, speciesID := range patch.SpeciesIDs() {
			byPatch, ok := previous[speciesID]
			if !ok {
				byPatch = make(map[string]int64)
				previous[speciesID] = byPatch
			}
			byPatch[patch.ID] = patch.Population(speciesID)
		}
	}
	return previous
}
