package domain

import "fmt"

// CommitStage identifies the commit phase that produced an issue.
type CommitStage string

// Commit phases in application order.
const (
	// StageMutation covers species-definition replacement.
	StageMutation CommitStage = "mutation"
	// StagePopulation covers population write-back.
	StagePopulation CommitStage = "population"
	// StageMigration covers migration resolution.
	StageMigration CommitStage = "migration"
)

// CommitIssue reports one non-fatal problem encountered while merging
// accumulated results onto world state. Issues are data-quality findings to
// investigate, never aborts.
type CommitIssue struct {
	Stage     CommitStage
	SpeciesID string
	PatchID   string
	Message   string
}

func (i CommitIssue) String() string {
	return fmt.Sprintf("[%s] species=%s patch=%s: %s", i.Stage, i.SpeciesID, i.PatchID, i.Message)
}

// CommitReport aggregates issues from a best-effort commit pass.
type CommitReport struct {
	Issues []CommitIssue
}

// Add appends a single issue.
func (r *CommitReport) Add(issue CommitIssue) {
	r.Issues = append(r.Issues, issue)
}

// Merge appends issues from another report.
func (r *CommitReport) Merge(other CommitReport) {
	if len(other.Issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// HasIssues returns true when the commit reported any problem.
func (r CommitReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// NotFoundError is returned when a caller queries state that was never
// recorded. It signals a contract violation by the caller, not missing data.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
