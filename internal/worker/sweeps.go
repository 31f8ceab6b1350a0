package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"domaincheck/internal/measurer"
	"domaincheck/internal/project"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/storage"
)

// ReconcileArgs is the periodic reconciliation sweep.
type ReconcileArgs struct{}

func (ReconcileArgs) Kind() string { return "ReconcileProjectsJob" }

// InsertOpts keeps at most one sweep queued at a time.
func (ReconcileArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1, UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

// MetricsSweepArgs is the periodic metrics driver sweep.
type MetricsSweepArgs struct{}

func (MetricsSweepArgs) Kind() string { return "MetricsSweepJob" }

func (MetricsSweepArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1, UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

// LastUpdatePollArgs is the periodic poll of the metrics provider's
// data-refresh timestamp.
type LastUpdatePollArgs struct{}

func (LastUpdatePollArgs) Kind() string { return "MetricsLastUpdateJob" }

func (LastUpdatePollArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1, UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

// ReconcileWorker re-enqueues processing jobs for projects stuck in an
// active state without one, typically after a worker was killed mid-loop.
// Unique job insertion makes blind re-enqueueing safe: projects with a live
// job are skipped as duplicates.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileArgs]

	storage storage.Storage
}

// NewReconcileWorker constructs a ReconcileWorker.
func NewReconcileWorker(st storage.Storage) *ReconcileWorker {
	return &ReconcileWorker{storage: st}
}

func (w *ReconcileWorker) Work(ctx context.Context, _ *river.Job[ReconcileArgs]) error {
	projects, err := w.storage.Projects(ctx)
	if err != nil {
		return fmt.Errorf("could not list projects: %w", err)
	}

	for _, p := range projects {
		var args river.JobArgs
		switch p.State {
		case domain.ProjectStateChecking:
			args = project.CheckDomainsArgs{ProjectID: uuid.UUID(p.ID)}
		case domain.ProjectStateMeasuring:
			args = project.UpdateMetricsArgs{ProjectID: uuid.UUID(p.ID)}
		default:
			continue
		}

		inserted, err := w.storage.AddJob(ctx, args, nil)
		if err != nil {
			return fmt.Errorf("could not re-enqueue project job: %w", err)
		}
		if inserted {
			logger.Warn(ctx, "restarted job for stalled project",
				zap.String("projectID", uuid.UUID(p.ID).String()),
				zap.String("state", string(p.State)))
		}
	}

	return nil
}

// MetricsSweepWorker enqueues metrics jobs for every project with
// unmeasured links.
type MetricsSweepWorker struct {
	river.WorkerDefaults[MetricsSweepArgs]

	measurer *measurer.Measurer
}

// NewMetricsSweepWorker constructs a MetricsSweepWorker.
func NewMetricsSweepWorker(msr *measurer.Measurer) *MetricsSweepWorker {
	return &MetricsSweepWorker{measurer: msr}
}

func (w *MetricsSweepWorker) Work(ctx context.Context, _ *river.Job[MetricsSweepArgs]) error {
	if err := w.measurer.ProcessAllProjects(ctx); err != nil {
		return fmt.Errorf("could not run metrics sweep: %w", err)
	}

	return nil
}

// LastUpdatePollWorker records the metrics provider's refresh timestamp.
type LastUpdatePollWorker struct {
	river.WorkerDefaults[LastUpdatePollArgs]

	measurer *measurer.Measurer
}

// NewLastUpdatePollWorker constructs a LastUpdatePollWorker.
func NewLastUpdatePollWorker(msr *measurer.Measurer) *LastUpdatePollWorker {
	return &LastUpdatePollWorker{measurer: msr}
}

func (w *LastUpdatePollWorker) Work(ctx context.Context, _ *river.Job[LastUpdatePollArgs]) error {
	if err := w.measurer.CheckLastUpdate(ctx); err != nil {
		return fmt.Errorf("could not poll metrics last update: %w", err)
	}

	return nil
}
