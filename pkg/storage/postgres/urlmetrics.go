package postgres

import (
	"context"
	"fmt"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	urlMetricsTable         = "url_metrics"
	projectMetricsTable     = "project_metrics"
	metricsLastUpdatesTable = "metrics_last_updates"
)

// MetricsByQueryURL returns the shared metrics record for a query domain, or
// nil when none exists yet.
func (p *PgSQL) MetricsByQueryURL(ctx context.Context, queryURL string) (*domain.URLMetrics, error) {
	var row PgURLMetrics
	found, err := p.Builder.From(urlMetricsTable).
		Where(goqu.I("query_url").Eq(queryURL)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch url metrics by query url: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) MetricsByID(ctx context.Context, id domain.MetricsID) (*domain.URLMetrics, error) {
	var row PgURLMetrics
	found, err := p.Builder.From(urlMetricsTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch url metrics by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) StoreMetrics(ctx context.Context, m domain.URLMetrics) (*domain.URLMetrics, error) {
	var row PgURLMetrics
	row.FromDomain(m)

	var result PgURLMetrics
	found, err := p.Builder.Insert(urlMetricsTable).
		Rows(row).
		Returning(&PgURLMetrics{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store url metrics into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store url metrics into pg: no row returned")
	}

	return result.ToDomain(), nil
}

// UpdateMetrics persists the current attribute values of a metrics record.
// All attribute columns are written so that values absent from the latest
// fetch become NULL.
func (p *PgSQL) UpdateMetrics(ctx context.Context, m *domain.URLMetrics) error {
	var row PgURLMetrics
	row.FromDomain(*m)

	rec := goqu.Record{
		"last_updated": row.LastUpdated,

		"title":         row.Title,
		"canonical_url": row.CanonicalURL,
		"subdomain":     row.Subdomain,
		"root_domain":   row.RootDomain,

		"external_links":             row.ExternalLinks,
		"subdomain_external_links":   row.SubdomainExternalLinks,
		"root_domain_external_links": row.RootDomainExternalLinks,
		"equity_links":               row.EquityLinks,

		"subdomains_linking":               row.SubdomainsLinking,
		"root_domains_linking":             row.RootDomainsLinking,
		"links":                            row.Links,
		"subdomain_subdomains_linking":     row.SubdomainSubdomainsLinking,
		"root_domain_root_domains_linking": row.RootDomainRootDomainsLinking,

		"mozrank_10":              row.MozRank10,
		"mozrank_raw":             row.MozRankRaw,
		"subdomain_mozrank_10":    row.SubdomainMozRank10,
		"subdomain_mozrank_raw":   row.SubdomainMozRankRaw,
		"root_domain_mozrank_10":  row.RootDomainMozRank10,
		"root_domain_mozrank_raw": row.RootDomainMozRankRaw,

		"http_status_code": row.HTTPStatusCode,
		"page_authority":   row.PageAuthority,
		"domain_authority": row.DomainAuthority,
	}

	if _, err := p.Builder.Update(urlMetricsTable).
		Set(rec).
		Where(goqu.I("id").Eq(row.ID)).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not update url metrics in pg: %w", err)
	}

	return nil
}

func (p *PgSQL) LinkByProjectAndMetrics(ctx context.Context,
	projectID domain.ProjectID,
	metricsID domain.MetricsID) (*domain.ProjectMetrics, error) {
	var row PgProjectMetrics
	found, err := p.Builder.From(projectMetricsTable).
		Where(
			goqu.I("project_id").Eq(uuid.UUID(projectID)),
			goqu.I("metrics_id").Eq(uuid.UUID(metricsID)),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch project metrics link: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) StoreLink(ctx context.Context, link domain.ProjectMetrics) (*domain.ProjectMetrics, error) {
	var row PgProjectMetrics
	row.FromDomain(link)

	var result PgProjectMetrics
	found, err := p.Builder.Insert(projectMetricsTable).
		Rows(row).
		Returning(&PgProjectMetrics{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store project metrics link into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store project metrics link into pg: no row returned")
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) UpdateLinkChecked(ctx context.Context, linkID uuid.UUID, checked bool) error {
	if _, err := p.Builder.Update(projectMetricsTable).
		Set(goqu.Record{"is_checked": checked}).
		Where(goqu.I("id").Eq(linkID)).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not update project metrics link in pg: %w", err)
	}

	return nil
}

func (p *PgSQL) ProjectLinks(ctx context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error) {
	var rows []PgProjectMetrics
	if err := p.Builder.From(projectMetricsTable).
		Where(goqu.I("project_id").Eq(uuid.UUID(projectID))).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch project metrics links from pg: %w", err)
	}

	return pgLinksToDomain(rows), nil
}

func (p *PgSQL) UncheckedLinks(ctx context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error) {
	var rows []PgProjectMetrics
	if err := p.Builder.From(projectMetricsTable).
		Where(
			goqu.I("project_id").Eq(uuid.UUID(projectID)),
			goqu.I("is_checked").IsFalse(),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch unchecked metrics links from pg: %w", err)
	}

	return pgLinksToDomain(rows), nil
}

// MetricsSummary aggregates a project's measurement progress in one query.
func (p *PgSQL) MetricsSummary(ctx context.Context, projectID domain.ProjectID) (storage.MetricsSummary, error) {
	var row struct {
		Total     int `db:"total"`
		Unchecked int `db:"unchecked"`
	}

	found, err := p.Builder.From(projectMetricsTable).
		Select(
			goqu.COUNT(goqu.Star()).As("total"),
			goqu.L("COUNT(*) FILTER (WHERE NOT is_checked)").As("unchecked"),
		).
		Where(goqu.I("project_id").Eq(uuid.UUID(projectID))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return storage.MetricsSummary{}, fmt.Errorf("could not fetch metrics summary from pg: %w", err)
	}
	if !found {
		return storage.MetricsSummary{}, nil
	}

	return storage.MetricsSummary{
		Total:     row.Total,
		Unchecked: row.Unchecked,
	}, nil
}

// ProjectsWithUncheckedLinks returns the distinct project IDs that still
// have unmeasured metrics links.
func (p *PgSQL) ProjectsWithUncheckedLinks(ctx context.Context) ([]domain.ProjectID, error) {
	var rows []struct {
		ProjectID uuid.UUID `db:"project_id"`
	}
	if err := p.Builder.From(projectMetricsTable).
		Select(goqu.I("project_id")).
		Where(goqu.I("is_checked").IsFalse()).
		Distinct().
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch projects with unchecked links from pg: %w", err)
	}

	out := make([]domain.ProjectID, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ProjectID(row.ProjectID))
	}

	return out, nil
}

func (p *PgSQL) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	if _, err := p.Builder.Delete(projectMetricsTable).
		Where(goqu.I("id").Eq(linkID)).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not delete project metrics link from pg: %w", err)
	}

	return nil
}

func (p *PgSQL) StoreMetricsLastUpdate(ctx context.Context, upd domain.MetricsLastUpdate) error {
	if _, err := p.Builder.Insert(metricsLastUpdatesTable).
		Rows(PgMetricsLastUpdate{
			Datetime:  upd.Datetime,
			Retrieved: upd.Retrieved,
		}).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store metrics last update into pg: %w", err)
	}

	return nil
}

// MostRecentMetricsUpdate returns the provider refresh timestamp of the most
// recently recorded observation. When nothing has been recorded yet the
// current time is returned so every metrics record counts as stale until the
// first successful poll.
func (p *PgSQL) MostRecentMetricsUpdate(ctx context.Context) (time.Time, error) {
	var row PgMetricsLastUpdate
	found, err := p.Builder.From(metricsLastUpdatesTable).
		Order(goqu.I("retrieved").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not fetch most recent metrics update from pg: %w", err)
	}
	if !found {
		return time.Now(), nil
	}

	return row.Datetime, nil
}
