package worker

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"domaincheck/internal/tldsync"
)

// TLDSyncArgs refreshes the TLD registry from the registrar. Enqueued from
// the admin API rather than on a schedule; the provider's list changes
// rarely and the call is expensive.
type TLDSyncArgs struct{}

func (TLDSyncArgs) Kind() string { return "UpdateTLDsJob" }

func (TLDSyncArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1, UniqueOpts: river.UniqueOpts{ByArgs: true}}
}

// TLDSyncWorker runs the registry sync.
type TLDSyncWorker struct {
	river.WorkerDefaults[TLDSyncArgs]

	syncer *tldsync.Syncer
}

// NewTLDSyncWorker constructs a TLDSyncWorker.
func NewTLDSyncWorker(syncer *tldsync.Syncer) *TLDSyncWorker {
	return &TLDSyncWorker{syncer: syncer}
}

func (w *TLDSyncWorker) Work(ctx context.Context, _ *river.Job[TLDSyncArgs]) error {
	if err := w.syncer.Sync(ctx); err != nil {
		return fmt.Errorf("could not sync tld registry: %w", err)
	}

	return nil
}
