package postgres

import (
	"context"
	"fmt"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const projectDomainsTable = "project_domains"

func (p *PgSQL) StoreDomains(ctx context.Context, domains ...domain.ProjectDomain) ([]domain.ProjectDomain, error) {
	if len(domains) == 0 {
		return nil, nil
	}

	var result []PgProjectDomain
	if err := p.Builder.Insert(projectDomainsTable).
		Rows(domainsToPg(domains)).
		Returning(&PgProjectDomain{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store project domains into pg: %w", err)
	}

	return pgDomainsToDomain(result), nil
}

// ProjectDomains returns all parsed domains of a project ordered by insertion.
func (p *PgSQL) ProjectDomains(ctx context.Context, id domain.ProjectID) ([]domain.ProjectDomain, error) {
	var rows []PgProjectDomain
	if err := p.Builder.From(projectDomainsTable).
		Where(goqu.I("project_id").Eq(uuid.UUID(id))).
		Order(goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch project domains from pg: %w", err)
	}

	return pgDomainsToDomain(rows), nil
}

// UncheckedDomains returns up to limit domains of the project that are still
// awaiting an availability result.
func (p *PgSQL) UncheckedDomains(ctx context.Context,
	id domain.ProjectID,
	limit uint) ([]domain.ProjectDomain, error) {
	var rows []PgProjectDomain
	if err := p.Builder.From(projectDomainsTable).
		Where(
			goqu.I("project_id").Eq(uuid.UUID(id)),
			goqu.I("is_checked").IsFalse(),
		).
		Limit(limit).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch unchecked domains from pg: %w", err)
	}

	return pgDomainsToDomain(rows), nil
}

// DomainsByState returns the project's domains currently in the given state.
func (p *PgSQL) DomainsByState(ctx context.Context,
	id domain.ProjectID,
	state domain.DomainState) ([]domain.ProjectDomain, error) {
	var rows []PgProjectDomain
	if err := p.Builder.From(projectDomainsTable).
		Where(
			goqu.I("project_id").Eq(uuid.UUID(id)),
			goqu.I("state").Eq(string(state)),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch domains by state from pg: %w", err)
	}

	return pgDomainsToDomain(rows), nil
}

// DomainSummary aggregates a project's check progress in a single query.
func (p *PgSQL) DomainSummary(ctx context.Context, id domain.ProjectID) (storage.DomainSummary, error) {
	var row struct {
		Total     int `db:"total"`
		Unchecked int `db:"unchecked"`
	}

	found, err := p.Builder.From(projectDomainsTable).
		Select(
			goqu.COUNT(goqu.Star()).As("total"),
			goqu.L("COUNT(*) FILTER (WHERE NOT is_checked)").As("unchecked"),
		).
		Where(goqu.I("project_id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return storage.DomainSummary{}, fmt.Errorf("could not fetch domain summary from pg: %w", err)
	}
	if !found {
		return storage.DomainSummary{}, nil
	}

	return storage.DomainSummary{
		Total:     row.Total,
		Unchecked: row.Unchecked,
	}, nil
}

// UpdateDomain applies the provided fields to one domain row. Only non-nil
// fields from updates are set.
func (p *PgSQL) UpdateDomain(ctx context.Context,
	id domain.DomainID,
	updates storage.DomainUpdates) (*domain.ProjectDomain, error) {
	rec := goqu.Record{}
	if updates.State != "" {
		rec["state"] = string(updates.State)
	}
	if updates.Error != nil {
		if *updates.Error == "" {
			rec["error"] = goqu.L("NULL")
		} else {
			rec["error"] = *updates.Error
		}
	}
	if updates.IsChecked != nil {
		rec["is_checked"] = *updates.IsChecked
	}
	if updates.LastChecked != nil {
		rec["last_checked"] = *updates.LastChecked
	}
	if len(rec) == 0 {
		return p.domainByID(ctx, id)
	}

	var row PgProjectDomain
	found, err := p.Builder.Update(projectDomainsTable).
		Set(rec).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Returning(&PgProjectDomain{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update project domain in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) domainByID(ctx context.Context, id domain.DomainID) (*domain.ProjectDomain, error) {
	var row PgProjectDomain
	found, err := p.Builder.From(projectDomainsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch project domain by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
