package core

import (
	"context"
	"time"
)

// Logger matches the log/slog call shape so callers can wire slog directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is the default when no logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now invokes the function.
func (f ClockFunc) Now() time.Time { return f() }

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan represents an in-flight traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// AuditStatus classifies an audit entry outcome.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation for the audit trail.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	EntityID  string
	Status    AuditStatus
	Detail    string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder persists audit entries. Implementations must tolerate
// concurrent calls.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithLogger overrides the default no-op logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder installs a metrics sink for operation outcomes.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = recorder }
}

// WithTracer installs a tracer around operations.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithAuditRecorder installs an audit sink.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = recorder }
}

// WithMutationApplier overrides the default species replacer used at commit.
func WithMutationApplier(applier MutationApplier) ServiceOption {
	return func(s *Service) { s.applier = applier }
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, status AuditStatus, detail string, duration time.Duration) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    EntitySnapshot,
		EntityID:  entityID,
		Status:    status,
		Detail:    detail,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

func (s *Service) observe(ctx context.Context, op string, success bool, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(ctx, op, success, duration)
}
