package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"domaincheck/pkg/domain"
)

// MetricsSummary aggregates a project's metrics-link progress.
type MetricsSummary struct {
	// Total is the number of metrics links the project has.
	Total int
	// Unchecked is the number still awaiting measurement.
	Unchecked int
}

// MetricsStorage defines persistence operations for the shared URL metrics
// records, the per-project metrics links, and the upstream refresh
// observations.
type MetricsStorage interface {
	// MetricsByQueryURL fetches the metrics record for a query domain.
	// Returns nil when none exists.
	MetricsByQueryURL(ctx context.Context, queryURL string) (*domain.URLMetrics, error)
	// MetricsByID fetches one metrics record. Returns nil when not found.
	MetricsByID(ctx context.Context, id domain.MetricsID) (*domain.URLMetrics, error)
	// StoreMetrics inserts a metrics record and returns the stored row.
	StoreMetrics(ctx context.Context, m domain.URLMetrics) (*domain.URLMetrics, error)
	// UpdateMetrics persists the current attribute values of the record.
	UpdateMetrics(ctx context.Context, m *domain.URLMetrics) error

	// LinkByProjectAndMetrics fetches one project/metrics association.
	// Returns nil when none exists.
	LinkByProjectAndMetrics(ctx context.Context,
		projectID domain.ProjectID,
		metricsID domain.MetricsID) (*domain.ProjectMetrics, error)
	// StoreLink inserts a project/metrics association.
	StoreLink(ctx context.Context, link domain.ProjectMetrics) (*domain.ProjectMetrics, error)
	// UpdateLinkChecked flips the checked flag on one association.
	UpdateLinkChecked(ctx context.Context, linkID uuid.UUID, checked bool) error
	// ProjectLinks returns all metrics links of one project.
	ProjectLinks(ctx context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error)
	// UncheckedLinks returns the project's links still awaiting
	// measurement.
	UncheckedLinks(ctx context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error)
	// MetricsSummary aggregates the project's measurement progress.
	MetricsSummary(ctx context.Context, projectID domain.ProjectID) (MetricsSummary, error)
	// ProjectsWithUncheckedLinks returns the IDs of projects that still
	// have unmeasured links. Drives the periodic metrics sweep.
	ProjectsWithUncheckedLinks(ctx context.Context) ([]domain.ProjectID, error)
	// DeleteLink removes one association row.
	DeleteLink(ctx context.Context, linkID uuid.UUID) error

	// StoreMetricsLastUpdate records one observation of the provider's
	// data-refresh timestamp.
	StoreMetricsLastUpdate(ctx context.Context, upd domain.MetricsLastUpdate) error
	// MostRecentMetricsUpdate returns the provider refresh timestamp of
	// the most recently recorded observation. When none has ever been
	// recorded, the current time is returned so that every metrics record
	// is treated as stale until the poll succeeds once.
	MostRecentMetricsUpdate(ctx context.Context) (time.Time, error)
}
