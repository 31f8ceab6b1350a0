package worker

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"domaincheck/internal/checker"
	"domaincheck/internal/measurer"
	"domaincheck/internal/project"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
)

// CheckDomainsWorker runs a project's registrar availability loop. At most
// one job per project exists at a time (unique args over the active states),
// so a running loop is never doubled by a re-enqueue.
type CheckDomainsWorker struct {
	river.WorkerDefaults[project.CheckDomainsArgs]

	checker *checker.Checker
}

// NewCheckDomainsWorker constructs a CheckDomainsWorker.
func NewCheckDomainsWorker(chk *checker.Checker) *CheckDomainsWorker {
	return &CheckDomainsWorker{checker: chk}
}

func (w *CheckDomainsWorker) Work(ctx context.Context, job *river.Job[project.CheckDomainsArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("projectID", job.Args.ProjectID.String()))

	if err := w.checker.ProcessProject(ctx, domain.ProjectID(job.Args.ProjectID)); err != nil {
		logger.Error(ctx, "error checking project domains", zap.Error(err))

		return fmt.Errorf("could not check project domains: %w", err)
	}

	logger.Info(ctx, "project domains checked")

	return nil
}

// UpdateMetricsWorker drains a project's unmeasured metrics links.
type UpdateMetricsWorker struct {
	river.WorkerDefaults[project.UpdateMetricsArgs]

	measurer *measurer.Measurer
}

// NewUpdateMetricsWorker constructs an UpdateMetricsWorker.
func NewUpdateMetricsWorker(msr *measurer.Measurer) *UpdateMetricsWorker {
	return &UpdateMetricsWorker{measurer: msr}
}

func (w *UpdateMetricsWorker) Work(ctx context.Context, job *river.Job[project.UpdateMetricsArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("projectID", job.Args.ProjectID.String()))

	if err := w.measurer.ProcessProject(ctx, domain.ProjectID(job.Args.ProjectID)); err != nil {
		logger.Error(ctx, "error updating project metrics", zap.Error(err))

		return fmt.Errorf("could not update project metrics: %w", err)
	}

	logger.Info(ctx, "project metrics updated")

	return nil
}
