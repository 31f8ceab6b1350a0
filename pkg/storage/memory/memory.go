// Package memory provides an in-memory storage.Storage implementation used
// in tests. It keeps all entities in slices guarded by a single mutex and
// offers no transactional isolation: a transaction handle operates directly
// on the shared data and Rollback does not undo changes. Tests that need
// rollback behavior should run against the PostgreSQL implementation.
package memory

import (
	"context"
	"reflect"
	"sync"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// EnqueuedJob records one AddJob call for assertions.
type EnqueuedJob struct {
	Args river.JobArgs
	Opts *river.InsertOpts
}

// Memory is an in-memory implementation of storage.Storage.
type Memory struct {
	mu sync.Mutex

	projects []domain.Project
	files    []domain.UploadedFile
	domains  []domain.ProjectDomain
	metrics  []domain.URLMetrics
	links    []domain.ProjectMetrics

	tlds          []domain.TLD
	exclusions    []string
	preservations []string
	prefixes      []string

	settings    []domain.Setting
	lastUpdates []domain.MetricsLastUpdate

	jobs []EnqueuedJob
}

var (
	_ storage.Storage   = (*Memory)(nil)
	_ storage.TxStorage = (*memTx)(nil)
)

// New creates an empty in-memory storage.
func New() *Memory {
	return &Memory{}
}

// Jobs returns a copy of every job enqueued so far.
func (m *Memory) Jobs() []EnqueuedJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]EnqueuedJob, len(m.jobs))
	copy(out, m.jobs)

	return out
}

// ResetJobs clears the recorded jobs.
func (m *Memory) ResetJobs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = nil
}

func (m *Memory) Close() error {
	return nil
}

// memTx wraps Memory as a TxStorage. All writes are applied immediately, so
// Commit is a no-op and Rollback only invalidates the handle.
type memTx struct {
	*Memory
	done bool
}

func (t *memTx) Commit() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true

	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true

	return nil
}

func (m *Memory) Begin(_ context.Context) (storage.TxStorage, error) {
	return &memTx{Memory: m}, nil
}

func (m *Memory) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (m *Memory) AddJob(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts == nil {
		if withOpts, ok := args.(river.JobArgsWithInsertOpts); ok {
			argOpts := withOpts.InsertOpts()
			opts = &argOpts
		}
	}

	if opts != nil && opts.UniqueOpts.ByArgs {
		for _, job := range m.jobs {
			if job.Args.Kind() == args.Kind() && reflect.DeepEqual(job.Args, args) {
				return false, nil
			}
		}
	}

	m.jobs = append(m.jobs, EnqueuedJob{Args: args, Opts: opts})

	return true, nil
}

func (m *Memory) StoreProject(_ context.Context, project domain.Project) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if project.ID == (domain.ProjectID{}) {
		project.ID = domain.ProjectID(uuid.New())
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	m.projects = append(m.projects, project)

	return &project, nil
}

func (m *Memory) ProjectByID(_ context.Context, id domain.ProjectID) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.projects {
		if m.projects[i].ID == id {
			project := m.projects[i]

			return &project, nil
		}
	}

	return nil, nil
}

func (m *Memory) UserProjects(_ context.Context, userID domain.UserID) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Project
	// newest first
	for i := len(m.projects) - 1; i >= 0; i-- {
		if m.projects[i].UserID == userID {
			out = append(out, m.projects[i])
		}
	}

	return out, nil
}

func (m *Memory) Projects(_ context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Project, len(m.projects))
	copy(out, m.projects)

	return out, nil
}

func (m *Memory) UpdateProject(_ context.Context,
	id domain.ProjectID,
	updates storage.ProjectUpdates) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.projects {
		if m.projects[i].ID != id {
			continue
		}

		p := &m.projects[i]
		if updates.State != "" {
			p.State = updates.State
		}
		if updates.Error != nil {
			p.Error = *updates.Error
		}
		if updates.ParseErrors != nil {
			p.ParseErrors = *updates.ParseErrors
		}
		if updates.CompletionNotified != nil {
			p.CompletionNotified = *updates.CompletionNotified
		}
		if updates.CompletedAt != nil {
			p.CompletedAt = *updates.CompletedAt
		}
		p.UpdatedAt = time.Now()

		project := *p

		return &project, nil
	}

	return nil, nil
}

func (m *Memory) DeleteProject(_ context.Context, id domain.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects = deleteWhere(m.projects, func(p domain.Project) bool { return p.ID == id })
	m.files = deleteWhere(m.files, func(f domain.UploadedFile) bool { return f.ProjectID == id })
	m.domains = deleteWhere(m.domains, func(d domain.ProjectDomain) bool { return d.ProjectID == id })
	m.links = deleteWhere(m.links, func(l domain.ProjectMetrics) bool { return l.ProjectID == id })

	return nil
}

func (m *Memory) StoreUploadedFile(_ context.Context, file domain.UploadedFile) (*domain.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	m.files = append(m.files, file)

	return &file, nil
}

func (m *Memory) UploadedFileByProject(_ context.Context, id domain.ProjectID) (*domain.UploadedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.files {
		if m.files[i].ProjectID == id {
			file := m.files[i]

			return &file, nil
		}
	}

	return nil, nil
}

func deleteWhere[T any](items []T, match func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}

	return out
}
