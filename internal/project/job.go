package project

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// activeJobStates are the states in which a job counts as a duplicate of a
// new insert. Completed and discarded runs are excluded so a project can be
// legitimately re-processed later.
var activeJobStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRunning,
	rivertype.JobStateRetryable,
	rivertype.JobStateScheduled,
}

// CheckDomainsArgs is the queue payload for one project's availability-check
// run. Uniqueness over active states guarantees at most one live check run
// per project, which is what lets the reconciliation sweep blindly try to
// re-enqueue stalled projects.
type CheckDomainsArgs struct {
	ProjectID uuid.UUID `json:"projectId" river:"unique"`
}

func (CheckDomainsArgs) Kind() string { return "CheckProjectDomainsJob" }

// InsertOpts disables automatic retries: a failed run leaves the project in
// the error state and is only restarted administratively.
func (CheckDomainsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByState: activeJobStates,
		},
	}
}

// UpdateMetricsArgs is the queue payload for one project's metrics-update
// run.
type UpdateMetricsArgs struct {
	ProjectID uuid.UUID `json:"projectId" river:"unique"`
}

func (UpdateMetricsArgs) Kind() string { return "UpdateProjectMetricsJob" }

func (UpdateMetricsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByState: activeJobStates,
		},
	}
}
