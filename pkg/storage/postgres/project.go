package postgres

import (
	"context"
	"fmt"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	projectsTable      = "projects"
	uploadedFilesTable = "uploaded_files"
)

func (p *PgSQL) StoreProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	var row PgProject
	row.FromDomain(project)

	var result PgProject
	found, err := p.Builder.Insert(projectsTable).
		Rows(row).
		Returning(&PgProject{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store project into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store project into pg: no row returned")
	}

	return result.ToDomain(), nil
}

// ProjectByID returns a project by its ID, or nil when it does not exist.
func (p *PgSQL) ProjectByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	var row PgProject
	found, err := p.Builder.From(projectsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch project by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// UserProjects returns all projects of a user, newest first.
func (p *PgSQL) UserProjects(ctx context.Context, userID domain.UserID) ([]domain.Project, error) {
	var rows []PgProject
	if err := p.Builder.From(projectsTable).
		Where(goqu.I("user_id").Eq(uuid.UUID(userID))).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch user projects from pg: %w", err)
	}

	out := make([]domain.Project, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

// Projects returns every project, oldest first. Used by maintenance sweeps.
func (p *PgSQL) Projects(ctx context.Context) ([]domain.Project, error) {
	var rows []PgProject
	if err := p.Builder.From(projectsTable).
		Order(goqu.I("created_at").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch projects from pg: %w", err)
	}

	out := make([]domain.Project, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

// UpdateProject applies the provided fields to an existing project. Only
// non-nil fields from updates are set and updated_at is always stamped.
func (p *PgSQL) UpdateProject(ctx context.Context,
	id domain.ProjectID,
	updates storage.ProjectUpdates) (*domain.Project, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.State != "" {
		rec["state"] = string(updates.State)
	}
	if updates.Error != nil {
		if *updates.Error == "" {
			// set to NULL when empty string provided
			rec["error"] = goqu.L("NULL")
		} else {
			rec["error"] = *updates.Error
		}
	}
	if updates.ParseErrors != nil {
		if *updates.ParseErrors == "" {
			rec["parse_errors"] = goqu.L("NULL")
		} else {
			rec["parse_errors"] = *updates.ParseErrors
		}
	}
	if updates.CompletionNotified != nil {
		rec["completion_notified"] = *updates.CompletionNotified
	}
	if updates.CompletedAt != nil {
		rec["completed_at"] = *updates.CompletedAt
	}

	var row PgProject
	found, err := p.Builder.Update(projectsTable).
		Set(rec).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Returning(&PgProject{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update project in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// DeleteProject removes a project together with its uploaded file, parsed
// domains and metrics links. Shared url_metrics rows are left untouched as
// other projects may reference them.
func (p *PgSQL) DeleteProject(ctx context.Context, id domain.ProjectID) error {
	pid := uuid.UUID(id)

	for _, table := range []string{projectMetricsTable, projectDomainsTable, uploadedFilesTable} {
		if _, err := p.Builder.Delete(table).
			Where(goqu.I("project_id").Eq(pid)).
			Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("could not delete project rows from %s: %w", table, err)
		}
	}

	if _, err := p.Builder.Delete(projectsTable).
		Where(goqu.I("id").Eq(pid)).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not delete project from pg: %w", err)
	}

	return nil
}

func (p *PgSQL) StoreUploadedFile(ctx context.Context, file domain.UploadedFile) (*domain.UploadedFile, error) {
	var row PgUploadedFile
	row.FromDomain(file)

	var result PgUploadedFile
	found, err := p.Builder.Insert(uploadedFilesTable).
		Rows(row).
		Returning(&PgUploadedFile{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store uploaded file into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store uploaded file into pg: no row returned")
	}

	return result.ToDomain(), nil
}

// UploadedFileByProject returns the raw uploaded file of a project, or nil
// when the project has none.
func (p *PgSQL) UploadedFileByProject(ctx context.Context, id domain.ProjectID) (*domain.UploadedFile, error) {
	var row PgUploadedFile
	found, err := p.Builder.From(uploadedFilesTable).
		Where(goqu.I("project_id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch uploaded file by project: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
