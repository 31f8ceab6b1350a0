// Package checker runs the registrar availability loop for one project:
// batches of unchecked domains are submitted under the cross-process
// registrar lease until the project has none left or a fatal error aborts
// the run.
package checker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/lock"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/registrar"
	"domaincheck/pkg/serrors"
	"domaincheck/pkg/storage"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// registrarLock serializes registrar calls system-wide: the provider allows
// one in-flight request at a time, across every worker process.
const registrarLock = "registrar-api"

// Checker drives the availability loop.
type Checker struct {
	storage   storage.Storage
	settings  *settings.Loader
	registrar registrar.Client
	locker    lock.Locker
	projects  *project.Service
}

// New creates a checker.
func New(st storage.Storage,
	loader *settings.Loader,
	client registrar.Client,
	locker lock.Locker,
	projects *project.Service) *Checker {
	return &Checker{
		storage:   st,
		settings:  loader,
		registrar: client,
		locker:    locker,
		projects:  projects,
	}
}

// ProcessProject runs the availability loop until the project has no
// unchecked domains left or a fatal error occurs. On fatal errors the
// project is transitioned to the error state, both the contact and the
// operator are notified, and the error is propagated so the job run is
// recorded as failed. Failed runs are not retried automatically.
func (c *Checker) ProcessProject(ctx context.Context, id domain.ProjectID) error {
	if err := c.run(ctx, id); err != nil {
		if markErr := c.projects.MarkFailed(ctx, id, err, string(debug.Stack())); markErr != nil {
			logger.Error(ctx, "could not mark project failed", zap.Error(markErr))
		}

		return err
	}

	return nil
}

func (c *Checker) run(ctx context.Context, id domain.ProjectID) error {
	cfg, err := c.settings.Registrar(ctx)
	if err != nil {
		return err
	}
	params := registrar.Params{
		BaseURL:  cfg.URL,
		APIUser:  cfg.APIUser,
		APIKey:   cfg.APIKey,
		Username: cfg.Username,
		ClientIP: cfg.ClientIP,
	}

	// post-call pacing; the initial burst token is drained so every Wait
	// blocks for the full configured delay
	limiter := rate.NewLimiter(rate.Every(cfg.Wait), 1)
	limiter.AllowN(time.Now(), 1)

	for {
		p, err := c.storage.ProjectByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get project: %w", err)
		}
		// deleted or manually stopped since the last batch
		if p == nil || p.State != domain.ProjectStateChecking {
			return nil
		}

		done, err := c.processBatch(ctx, id, params, cfg, limiter)
		if err != nil {
			return err
		}
		if done {
			if _, err := c.projects.RecomputeState(ctx, id); err != nil {
				return fmt.Errorf("could not recompute project state: %w", err)
			}

			return nil
		}
	}
}

// processBatch runs one lease-protected pass: fetch a batch, submit it, and
// apply the results. Returns done=true when no unchecked domains remain.
func (c *Checker) processBatch(ctx context.Context,
	id domain.ProjectID,
	params registrar.Params,
	cfg *settings.Registrar,
	limiter *rate.Limiter) (bool, error) {
	lease, err := c.locker.Acquire(ctx, registrarLock)
	if err != nil {
		return false, fmt.Errorf("could not acquire registrar lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "could not release registrar lock", zap.Error(err))
		}
	}()

	batch, err := c.storage.UncheckedDomains(ctx, id, uint(cfg.BatchSize)) //nolint: gosec
	if err != nil {
		return false, fmt.Errorf("could not fetch unchecked domains: %w", err)
	}
	if len(batch) == 0 {
		return true, nil
	}

	names := make([]string, 0, len(batch))
	for _, d := range batch {
		names = append(names, d.Domain)
	}

	result, err := c.registrar.CheckAvailability(ctx, params, names)
	if err != nil {
		// an abnormal response leaves the batch unchecked for a later
		// pass; everything else aborts the run
		if errors.Is(err, serrors.ErrUnavailable) {
			logger.Warn(ctx, "registrar answered abnormally, leaving batch for retry",
				zap.Int("batchSize", len(batch)), zap.Error(err))

			return false, c.wait(ctx, limiter)
		}

		return false, fmt.Errorf("could not check availability: %w", err)
	}

	if len(result.Domains) == 0 && len(result.Errors) > 0 {
		if err := c.handleBatchErrors(ctx, batch, result.Errors); err != nil {
			return false, err
		}

		return false, c.wait(ctx, limiter)
	}

	if err := c.applyResults(ctx, id, batch, result.Domains); err != nil {
		return false, err
	}

	return false, c.wait(ctx, limiter)
}

// handleBatchErrors handles a response that carried API errors and no
// domain results. TLD-unparseable and authorization-denied codes mark the
// whole batch as a domain-level error; anything else is fatal for the run.
func (c *Checker) handleBatchErrors(ctx context.Context,
	batch []domain.ProjectDomain,
	apiErrors []registrar.APIError) error {
	var reason string
	for _, apiErr := range apiErrors {
		switch apiErr.Number {
		case registrar.ErrorNoUnparseableTLD:
			reason = "API unable to parse TLD"
		case registrar.ErrorNoAuthorizationDenied:
			reason = "API authorization denied"
		default:
			return serrors.Wrap(serrors.ErrAPIFatal,
				fmt.Errorf("code %d: %s", apiErr.Number, apiErr.Description),
				"registrar rejected the batch")
		}
	}

	now := time.Now()
	checked := true
	for _, d := range batch {
		msg := reason
		if _, err := c.storage.UpdateDomain(ctx, d.ID, storage.DomainUpdates{
			State:       domain.DomainStateError,
			Error:       &msg,
			IsChecked:   &checked,
			LastChecked: &now,
		}); err != nil {
			return fmt.Errorf("could not mark domain errored: %w", err)
		}
		metrics.DomainsChecked.WithLabelValues(string(domain.DomainStateError)).Inc()
	}

	logger.Warn(ctx, "whole batch marked errored",
		zap.Int("batchSize", len(batch)), zap.String("reason", reason))

	return nil
}

// applyResults matches echoed results back to the pending batch and updates
// each matched domain. Domains the registrar did not echo stay unchecked
// for the next pass.
func (c *Checker) applyResults(ctx context.Context,
	id domain.ProjectID,
	batch []domain.ProjectDomain,
	results []registrar.DomainResult) error {
	now := time.Now()
	checked := true

	for _, r := range results {
		d := matchPending(batch, r.Domain)
		if d == nil {
			logger.Warn(ctx, "registrar echoed an unknown domain", zap.String("domain", r.Domain))

			continue
		}

		updates := storage.DomainUpdates{
			IsChecked:   &checked,
			LastChecked: &now,
		}
		switch {
		case r.ErrorNo != 0:
			msg := r.Description
			if msg == "" {
				msg = fmt.Sprintf("API error %d", r.ErrorNo)
			}
			updates.State = domain.DomainStateError
			updates.Error = &msg
		case r.Available:
			updates.State = domain.DomainStateAvailable
		default:
			updates.State = domain.DomainStateUnavailable
		}

		if _, err := c.storage.UpdateDomain(ctx, d.ID, updates); err != nil {
			return fmt.Errorf("could not update domain: %w", err)
		}
		metrics.DomainsChecked.WithLabelValues(string(updates.State)).Inc()

		// available domains seed the measuring stage
		if updates.State == domain.DomainStateAvailable {
			if err := c.ensureMetricsLink(ctx, id, d.Domain); err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureMetricsLink guarantees an unchecked, non-extension metrics link for
// the domain, reusing the shared metrics record when one exists.
func (c *Checker) ensureMetricsLink(ctx context.Context, id domain.ProjectID, name string) error {
	return c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		m, err := tx.MetricsByQueryURL(ctx, name)
		if err != nil {
			return fmt.Errorf("could not look up metrics record: %w", err)
		}
		if m == nil {
			m, err = tx.StoreMetrics(ctx, domain.URLMetrics{QueryURL: name})
			if err != nil {
				return fmt.Errorf("could not store metrics record: %w", err)
			}
		}

		link, err := tx.LinkByProjectAndMetrics(ctx, id, m.ID)
		if err != nil {
			return fmt.Errorf("could not look up metrics link: %w", err)
		}
		if link != nil {
			return nil
		}

		if _, err := tx.StoreLink(ctx, domain.ProjectMetrics{
			ProjectID: id,
			MetricsID: m.ID,
		}); err != nil {
			return fmt.Errorf("could not store metrics link: %w", err)
		}

		return nil
	})
}

// wait enforces the mandatory post-call delay while the lease is still
// held, satisfying the provider's pacing requirement across processes.
func (c *Checker) wait(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("could not wait out the registrar delay: %w", err)
	}

	return nil
}

// matchPending finds the batch domain an echoed result belongs to. Exact
// match after normalization is tried first; the suffix fallback tolerates
// the registrar echoing a less qualified form (e.g. a mailto:-prefixed
// stray input).
func matchPending(batch []domain.ProjectDomain, echoed string) *domain.ProjectDomain {
	normalized := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(echoed), "."))

	for i := range batch {
		if strings.ToLower(batch[i].Domain) == normalized {
			return &batch[i]
		}
	}
	for i := range batch {
		if strings.HasSuffix(strings.ToLower(batch[i].Domain), normalized) {
			return &batch[i]
		}
	}

	return nil
}
