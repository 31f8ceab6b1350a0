// Package worker wires the checker, the measurer and the maintenance sweeps
// into the river job queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"

	"domaincheck/internal/checker"
	"domaincheck/internal/measurer"
	"domaincheck/internal/tldsync"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/storage"
)

// Options configure the queue runtime and the maintenance schedules.
type Options struct {
	// MaxWorkers caps concurrent job executions.
	MaxWorkers int
	// ReconcileInterval is how often stalled projects are re-enqueued.
	ReconcileInterval time.Duration
	// MetricsSweepInterval is how often projects with unmeasured links are
	// re-driven.
	MetricsSweepInterval time.Duration
	// LastUpdatePollInterval is how often the metrics provider's refresh
	// timestamp is polled.
	LastUpdatePollInterval time.Duration
}

// Start registers all workers and periodic jobs and starts the river client.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	st storage.Storage,
	chk *checker.Checker,
	msr *measurer.Measurer,
	syncer *tldsync.Syncer,
	options Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewCheckDomainsWorker(chk))
	river.AddWorker(workers, NewUpdateMetricsWorker(msr))
	river.AddWorker(workers, NewReconcileWorker(st))
	river.AddWorker(workers, NewMetricsSweepWorker(msr))
	river.AddWorker(workers, NewLastUpdatePollWorker(msr))
	river.AddWorker(workers, NewTLDSyncWorker(syncer))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: options.MaxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(options),
		Logger:       slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}

func periodicJobs(options Options) []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(options.ReconcileInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(options.MetricsSweepInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return MetricsSweepArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(options.LastUpdatePollInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return LastUpdatePollArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}
