package worker_test

import (
	"context"
	"testing"

	"domaincheck/internal/project"
	"domaincheck/internal/worker"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage/memory"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
)

func storeProject(t *testing.T, st *memory.Memory, state domain.ProjectState) *domain.Project {
	t.Helper()

	p, err := st.StoreProject(context.Background(), domain.Project{
		UserID: domain.UserID(uuid.New()),
		Name:   "list.txt",
		State:  state,
	})
	require.NoError(t, err)

	return p
}

func TestReconcileWorker_Work(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	checking := storeProject(t, st, domain.ProjectStateChecking)
	measuring := storeProject(t, st, domain.ProjectStateMeasuring)
	storeProject(t, st, domain.ProjectStateCompleted)
	storeProject(t, st, domain.ProjectStatePaused)

	w := worker.NewReconcileWorker(st)
	job := &river.Job[worker.ReconcileArgs]{JobRow: &rivertype.JobRow{ID: 1}}

	require.NoError(t, w.Work(ctx, job))

	jobs := st.Jobs()
	require.Len(t, jobs, 2)

	kinds := make(map[string]uuid.UUID, len(jobs))
	for _, j := range jobs {
		switch args := j.Args.(type) {
		case project.CheckDomainsArgs:
			kinds[args.Kind()] = args.ProjectID
		case project.UpdateMetricsArgs:
			kinds[args.Kind()] = args.ProjectID
		default:
			t.Fatalf("unexpected job args %T", j.Args)
		}
	}
	require.Equal(t, uuid.UUID(checking.ID), kinds[project.CheckDomainsArgs{}.Kind()])
	require.Equal(t, uuid.UUID(measuring.ID), kinds[project.UpdateMetricsArgs{}.Kind()])

	// re-running must not double up on live jobs
	require.NoError(t, w.Work(ctx, job))
	require.Len(t, st.Jobs(), 2)
}
