// Package measurer drains a project's unchecked metrics links: it fetches
// link-authority attributes for every available domain from the metrics API,
// paced and serialized behind a cross-process lease, and generates extension
// variant links for domains whose page authority clears the configured
// threshold.
package measurer

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/linkmetrics"
	"domaincheck/pkg/lock"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/storage"
)

// metricsLock serializes access to the metrics API: one in-flight request
// at a time, across every worker process.
const metricsLock = "metrics-api"

// fetchCols selects every attribute of the code table on each call; the
// response stays sparse regardless, so absent attributes are simply not
// updated.
var fetchCols = allCols() //nolint: gochecknoglobals

func allCols() uint64 {
	var mask uint64
	for _, col := range domain.MetricsColumns {
		mask |= col.Bit
	}

	return mask
}

// Measurer drives the metrics-collection loop.
type Measurer struct {
	storage  storage.Storage
	settings *settings.Loader
	client   linkmetrics.Client
	locker   lock.Locker
	projects *project.Service
}

// New creates a measurer.
func New(st storage.Storage,
	loader *settings.Loader,
	client linkmetrics.Client,
	locker lock.Locker,
	projects *project.Service) *Measurer {
	return &Measurer{
		storage:  st,
		settings: loader,
		client:   client,
		locker:   locker,
		projects: projects,
	}
}

// ProcessProject measures every unchecked metrics link of the project and
// recomputes its state. On fatal errors the project is transitioned to the
// error state, notifications are sent, and the error is propagated so the
// job run is recorded as failed.
func (m *Measurer) ProcessProject(ctx context.Context, id domain.ProjectID) error {
	if err := m.run(ctx, id); err != nil {
		if markErr := m.projects.MarkFailed(ctx, id, err, string(debug.Stack())); markErr != nil {
			logger.Error(ctx, "could not mark project failed", zap.Error(markErr))
		}

		return err
	}

	return nil
}

func (m *Measurer) run(ctx context.Context, id domain.ProjectID) error {
	cfg, err := m.settings.Metrics(ctx)
	if err != nil {
		return err
	}
	params := linkmetrics.Params{
		BaseURL:   cfg.URL,
		AccessID:  cfg.AccessID,
		SecretKey: cfg.SecretKey,
	}

	prefixes, err := m.storage.ExtensionPrefixes(ctx)
	if err != nil {
		return fmt.Errorf("could not load extension prefixes: %w", err)
	}

	// post-call pacing; the initial burst token is drained so every Wait
	// blocks for the full configured delay
	limiter := rate.NewLimiter(rate.Every(cfg.Wait), 1)
	limiter.AllowN(time.Now(), 1)

	// a checked domain may have lost its link (manual cleanup, partial
	// failure); restore the association before draining
	if err := m.Repair(ctx, id); err != nil {
		return err
	}

	run := &runState{params: params, cfg: cfg, prefixes: prefixes, limiter: limiter}

	for {
		p, err := m.storage.ProjectByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}
		// deleted or manually stopped since the last link
		if p == nil || p.State != domain.ProjectStateMeasuring {
			return nil
		}

		links, err := m.storage.UncheckedLinks(ctx, id)
		if err != nil {
			return fmt.Errorf("could not fetch unchecked links: %w", err)
		}
		if len(links) == 0 {
			if _, err := m.projects.RecomputeState(ctx, id); err != nil {
				return fmt.Errorf("could not recompute project state: %w", err)
			}

			return nil
		}

		for i := range links {
			if err := m.processLink(ctx, run, &links[i]); err != nil {
				return err
			}
		}
	}
}

// runState carries the per-run configuration through the link recursion.
type runState struct {
	params   linkmetrics.Params
	cfg      *settings.Metrics
	prefixes []string
	limiter  *rate.Limiter
}

// processLink brings one metrics link to the checked state: refresh the
// shared record when it is stale, expand extension variants when the
// authority score clears the threshold, then flip the checked flag.
func (m *Measurer) processLink(ctx context.Context, run *runState, link *domain.ProjectMetrics) error {
	rec, err := m.storage.MetricsByID(ctx, link.MetricsID)
	if err != nil {
		return fmt.Errorf("could not get metrics record: %w", err)
	}
	if rec == nil {
		// record vanished under us; drop the dangling link
		logger.Warn(ctx, "metrics link points at a missing record",
			zap.String("link", link.ID.String()))

		if err := m.storage.DeleteLink(ctx, link.ID); err != nil {
			return fmt.Errorf("could not delete dangling link: %w", err)
		}

		return nil
	}

	lastRefresh, err := m.storage.MostRecentMetricsUpdate(ctx)
	if err != nil {
		return fmt.Errorf("could not get last upstream refresh: %w", err)
	}

	if !rec.IsUpToDate(lastRefresh) {
		if err := m.refresh(ctx, run, rec); err != nil {
			return err
		}
	}

	// extension links are fetched but never expanded further
	if !link.IsExtension && clearsThreshold(rec, run.cfg.ExtensionThreshold) {
		if err := m.expandExtensions(ctx, run, link.ProjectID, rec); err != nil {
			return err
		}
	}

	if err := m.storage.UpdateLinkChecked(ctx, link.ID, true); err != nil {
		return fmt.Errorf("could not mark link checked: %w", err)
	}

	return nil
}

// refresh fetches the record's attributes under the metrics lease and
// persists whatever the response contained.
func (m *Measurer) refresh(ctx context.Context, run *runState, rec *domain.URLMetrics) error {
	lease, err := m.locker.Acquire(ctx, metricsLock)
	if err != nil {
		return fmt.Errorf("could not acquire metrics lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "could not release metrics lock", zap.Error(err))
		}
	}()

	result, err := m.client.URLMetrics(ctx, run.params, rec.QueryURL, fetchCols)
	if err != nil {
		return fmt.Errorf("could not fetch url metrics: %w", err)
	}

	rec.StoreResult(result)
	rec.LastUpdated = time.Now()
	if err := m.storage.UpdateMetrics(ctx, rec); err != nil {
		return fmt.Errorf("could not store url metrics: %w", err)
	}

	if err := run.wait(ctx); err != nil {
		return err
	}

	return nil
}

// expandExtensions ensures a metrics record and an extension link for every
// configured prefix variant of the domain, and measures each variant before
// returning so the parent link is only marked checked once the whole family
// is done.
func (m *Measurer) expandExtensions(ctx context.Context,
	run *runState,
	projectID domain.ProjectID,
	rec *domain.URLMetrics) error {
	for _, prefix := range run.prefixes {
		// a domain already carrying the prefix must not spawn a doubled variant
		if strings.HasPrefix(rec.QueryURL, prefix) {
			continue
		}
		variant := prefix + rec.QueryURL

		vlink, err := m.ensureExtensionLink(ctx, projectID, rec.ID, variant)
		if err != nil {
			return err
		}
		if vlink.IsChecked {
			continue
		}

		if err := m.processLink(ctx, run, vlink); err != nil {
			return err
		}
	}

	return nil
}

// ensureExtensionLink creates or reuses the metrics record for a variant
// domain and ties it to the project with an extension link.
func (m *Measurer) ensureExtensionLink(ctx context.Context,
	projectID domain.ProjectID,
	parentID domain.MetricsID,
	variant string) (*domain.ProjectMetrics, error) {
	var out *domain.ProjectMetrics
	err := m.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		rec, err := tx.MetricsByQueryURL(ctx, variant)
		if err != nil {
			return fmt.Errorf("could not look up variant metrics record: %w", err)
		}
		if rec == nil {
			rec, err = tx.StoreMetrics(ctx, domain.URLMetrics{
				QueryURL:       variant,
				ExtendedFromID: &parentID,
			})
			if err != nil {
				return fmt.Errorf("could not store variant metrics record: %w", err)
			}
		}

		link, err := tx.LinkByProjectAndMetrics(ctx, projectID, rec.ID)
		if err != nil {
			return fmt.Errorf("could not look up variant link: %w", err)
		}
		if link == nil {
			link, err = tx.StoreLink(ctx, domain.ProjectMetrics{
				ProjectID:   projectID,
				MetricsID:   rec.ID,
				IsExtension: true,
			})
			if err != nil {
				return fmt.Errorf("could not store variant link: %w", err)
			}
		}
		out = link

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Repair reconciles the project's metrics links with its domain list: every
// available domain gets a link, and duplicate links for the same record are
// collapsed. Also exposed as a manual admin operation.
func (m *Measurer) Repair(ctx context.Context, id domain.ProjectID) error {
	domains, err := m.storage.ProjectDomains(ctx, id)
	if err != nil {
		return fmt.Errorf("could not load project domains: %w", err)
	}
	for _, d := range domains {
		if d.State != domain.DomainStateAvailable {
			continue
		}
		if err := m.ensureLink(ctx, id, d.Domain); err != nil {
			return err
		}
	}

	links, err := m.storage.ProjectLinks(ctx, id)
	if err != nil {
		return fmt.Errorf("could not load project links: %w", err)
	}
	seen := make(map[domain.MetricsID]*domain.ProjectMetrics, len(links))
	for i := range links {
		link := &links[i]
		kept, dup := seen[link.MetricsID]
		if !dup {
			seen[link.MetricsID] = link

			continue
		}
		// keep the checked copy so finished work is not redone
		drop := link
		if link.IsChecked && !kept.IsChecked {
			drop = kept
			seen[link.MetricsID] = link
		}
		if err := m.storage.DeleteLink(ctx, drop.ID); err != nil {
			return fmt.Errorf("could not delete duplicate link: %w", err)
		}
	}

	return nil
}

// ensureLink guarantees an unchecked, non-extension link for the domain.
func (m *Measurer) ensureLink(ctx context.Context, id domain.ProjectID, name string) error {
	return m.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		rec, err := tx.MetricsByQueryURL(ctx, name)
		if err != nil {
			return fmt.Errorf("could not look up metrics record: %w", err)
		}
		if rec == nil {
			rec, err = tx.StoreMetrics(ctx, domain.URLMetrics{QueryURL: name})
			if err != nil {
				return fmt.Errorf("could not store metrics record: %w", err)
			}
		}

		link, err := tx.LinkByProjectAndMetrics(ctx, id, rec.ID)
		if err != nil {
			return fmt.Errorf("could not look up metrics link: %w", err)
		}
		if link != nil {
			return nil
		}

		if _, err := tx.StoreLink(ctx, domain.ProjectMetrics{
			ProjectID: id,
			MetricsID: rec.ID,
		}); err != nil {
			return fmt.Errorf("could not store metrics link: %w", err)
		}

		return nil
	})
}

// ProcessAllProjects enqueues a metrics job for every project that still
// has unmeasured links. Unique job insertion makes the sweep idempotent.
func (m *Measurer) ProcessAllProjects(ctx context.Context) error {
	ids, err := m.storage.ProjectsWithUncheckedLinks(ctx)
	if err != nil {
		return fmt.Errorf("could not list projects with unchecked links: %w", err)
	}

	for _, id := range ids {
		inserted, err := m.storage.AddJob(ctx, project.UpdateMetricsArgs{ProjectID: uuid.UUID(id)}, nil)
		if err != nil {
			return fmt.Errorf("could not enqueue metrics job: %w", err)
		}
		if inserted {
			logger.Info(ctx, "enqueued metrics sweep job",
				zap.String("project", uuid.UUID(id).String()))
		}
	}

	return nil
}

// CheckLastUpdate polls the provider's data-refresh endpoint and records
// the observation. Staleness comparisons are measured against the most
// recent recorded value, so this must run on a schedule for records to ever
// count as up to date.
func (m *Measurer) CheckLastUpdate(ctx context.Context) error {
	cfg, err := m.settings.Metrics(ctx)
	if err != nil {
		return err
	}
	params := linkmetrics.Params{
		BaseURL:   cfg.URL,
		AccessID:  cfg.AccessID,
		SecretKey: cfg.SecretKey,
	}

	refreshed, err := m.client.LastUpdate(ctx, params)
	if err != nil {
		return fmt.Errorf("could not poll metrics last update: %w", err)
	}

	if err := m.storage.StoreMetricsLastUpdate(ctx, domain.MetricsLastUpdate{
		Datetime:  refreshed,
		Retrieved: time.Now(),
	}); err != nil {
		return fmt.Errorf("could not record metrics last update: %w", err)
	}

	logger.Info(ctx, "recorded metrics provider refresh",
		zap.Time("refreshed", refreshed))

	return nil
}

func clearsThreshold(rec *domain.URLMetrics, threshold float64) bool {
	return rec.PageAuthority != nil && *rec.PageAuthority >= threshold
}

func (r *runState) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("could not wait out the metrics delay: %w", err)
	}

	return nil
}
