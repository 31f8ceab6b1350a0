package storage

import (
	"context"
	"time"

	"domaincheck/pkg/domain"
)

// ProjectUpdates describes the optional fields that can be applied to an
// existing project. Only non-nil fields are written; UpdatedAt is always
// stamped by the implementation.
type ProjectUpdates struct {
	// State is the new lifecycle state, when non-empty.
	State domain.ProjectState
	// Error, when provided, sets the fatal error text. An empty string
	// clears it.
	Error *string
	// ParseErrors, when provided, replaces the aggregated parse error text.
	ParseErrors *string
	// CompletionNotified, when provided, records that the completion email
	// was sent.
	CompletionNotified *bool
	// CompletedAt, when provided, stamps the completion timestamp.
	CompletedAt *time.Time
}

// ProjectStorage defines persistence operations for projects and their
// uploaded files. An uploaded file is exclusively owned by its project and
// must be removed by DeleteProject.
type ProjectStorage interface {
	// StoreProject inserts a project and returns the stored row including
	// generated fields.
	StoreProject(ctx context.Context, project domain.Project) (*domain.Project, error)
	// ProjectByID fetches a project. Returns nil when not found.
	ProjectByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	// UserProjects returns all projects of one user, newest first.
	UserProjects(ctx context.Context, userID domain.UserID) ([]domain.Project, error)
	// Projects returns every project. Used by the maintenance sweeps.
	Projects(ctx context.Context) ([]domain.Project, error)
	// UpdateProject applies the given updates and returns the updated row,
	// or nil when the project does not exist.
	UpdateProject(ctx context.Context, id domain.ProjectID, updates ProjectUpdates) (*domain.Project, error)
	// DeleteProject removes the project row together with its uploaded
	// file, its domains and its metrics links. Shared URLMetrics records
	// are never removed.
	DeleteProject(ctx context.Context, id domain.ProjectID) error

	// StoreUploadedFile inserts the raw uploaded file for a project.
	StoreUploadedFile(ctx context.Context, file domain.UploadedFile) (*domain.UploadedFile, error)
	// UploadedFileByProject fetches a project's file. Returns nil when the
	// project has none.
	UploadedFileByProject(ctx context.Context, id domain.ProjectID) (*domain.UploadedFile, error)
}
