// Package project owns the project lifecycle: creating a project from an
// uploaded URL list, the state machine driving it through checking and
// measuring, and the notifications fired on completion and failure.
package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"domaincheck/internal/parser"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/mailer"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/serrors"
	"domaincheck/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure the project service.
type Options struct {
	// From is the sender address for all outgoing notifications.
	From string
}

// Service coordinates project persistence, classification and lifecycle
// transitions.
type Service struct {
	options  Options
	storage  storage.Storage
	settings *settings.Loader
	mailer   mailer.Mailer
}

// New creates a project service backed by the provided storage.
func New(st storage.Storage, loader *settings.Loader, m mailer.Mailer, options Options) *Service {
	return &Service{
		options:  options,
		storage:  st,
		settings: loader,
		mailer:   m,
	}
}

// CreateFromUpload classifies an uploaded URL list and creates the project
// with its domains in one transaction. Checkable domains are stored
// unchecked and a check job is enqueued; a project with nothing checkable
// completes immediately. Parse failures never abort the upload; they are
// aggregated onto the project and reported by mail afterwards.
func (s *Service) CreateFromUpload(ctx context.Context,
	userID domain.UserID,
	contactEmail string,
	filename string,
	data string) (*domain.Project, error) {
	tlds, err := s.storage.TLDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load tld registry: %w", err)
	}
	if len(tlds) == 0 {
		return nil, serrors.With(serrors.ErrUnavailable, "tld registry is empty, run the registry sync first")
	}

	exclusions, err := s.storage.Exclusions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load exclusions: %w", err)
	}
	preservations, err := s.storage.Preservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load preservations: %w", err)
	}
	wildcard, err := s.settings.WildcardMatching(ctx)
	if err != nil {
		return nil, err
	}

	result := parser.NewClassifier(tlds, exclusions, preservations, wildcard).ExtractDomains(data)

	var project *domain.Project
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		state := domain.ProjectStateChecking
		var completedAt time.Time
		if len(result.Checkable) == 0 {
			// nothing to check and nothing to measure
			state = domain.ProjectStateCompleted
			completedAt = time.Now()
		}

		stored, err := tx.StoreProject(ctx, domain.Project{
			UserID:       userID,
			Name:         filename,
			ContactEmail: contactEmail,
			State:        state,
			ParseErrors:  formatParseFailures(result.Failures),
			CompletedAt:  completedAt,
		})
		if err != nil {
			return fmt.Errorf("could not store project: %w", err)
		}
		project = stored

		if _, err := tx.StoreUploadedFile(ctx, domain.UploadedFile{
			ProjectID: project.ID,
			Filename:  filename,
			Data:      data,
		}); err != nil {
			return fmt.Errorf("could not store uploaded file: %w", err)
		}

		rows := make([]domain.ProjectDomain, 0, len(result.Checkable)+len(result.Preclassified))
		for _, c := range result.Checkable {
			rows = append(rows, domain.ProjectDomain{
				ProjectID:    project.ID,
				Domain:       c.Domain,
				OriginalLink: c.OriginalLink,
				State:        domain.DomainStateUnchecked,
			})
		}
		for _, pre := range result.Preclassified {
			rows = append(rows, domain.ProjectDomain{
				ProjectID:    project.ID,
				Domain:       pre.Domain,
				OriginalLink: pre.OriginalLink,
				State:        pre.State,
				Error:        pre.Reason,
				IsChecked:    true,
			})
		}
		if _, err := tx.StoreDomains(ctx, rows...); err != nil {
			return fmt.Errorf("could not store project domains: %w", err)
		}

		if state == domain.ProjectStateChecking {
			if _, err := tx.AddJob(ctx, CheckDomainsArgs{ProjectID: uuid.UUID(project.ID)}, nil); err != nil {
				return fmt.Errorf("could not add check job: %w", err)
			}
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create project: %w", err)
	}

	if len(result.Failures) > 0 {
		s.sendParseFailureReport(ctx, project, result.Failures)
	}

	return project, nil
}

// Project fetches one project owned by the given user.
func (s *Service) Project(ctx context.Context, userID domain.UserID, id domain.ProjectID) (*domain.Project, error) {
	project, err := s.storage.ProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get project: %w", err)
	}
	if project == nil || project.UserID != userID {
		return nil, serrors.With(serrors.ErrNotFound, "project not found")
	}

	return project, nil
}

// UserProjects lists the user's projects, newest first.
func (s *Service) UserProjects(ctx context.Context, userID domain.UserID) ([]domain.Project, error) {
	projects, err := s.storage.UserProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get user projects: %w", err)
	}

	return projects, nil
}

// Domains returns all parsed domains of a project owned by the user.
func (s *Service) Domains(ctx context.Context,
	userID domain.UserID,
	id domain.ProjectID) ([]domain.ProjectDomain, error) {
	if _, err := s.Project(ctx, userID, id); err != nil {
		return nil, err
	}

	domains, err := s.storage.ProjectDomains(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get project domains: %w", err)
	}

	return domains, nil
}

// Delete removes a project and everything it exclusively owns: the uploaded
// file, the parsed domains and the metrics links. Shared metrics records
// stay untouched.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.ProjectID) error {
	if _, err := s.Project(ctx, userID, id); err != nil {
		return err
	}

	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		return tx.DeleteProject(ctx, id)
	}); err != nil {
		return fmt.Errorf("could not delete project: %w", err)
	}

	return nil
}

// Pause manually suspends processing. The running check or measure pass
// notices on its next recompute; paused is sticky until Resume.
func (s *Service) Pause(ctx context.Context, userID domain.UserID, id domain.ProjectID) (*domain.Project, error) {
	project, err := s.Project(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.State.Terminal() {
		return nil, serrors.With(serrors.ErrConflict, "project already finished")
	}

	updated, err := s.storage.UpdateProject(ctx, id, storage.ProjectUpdates{
		State: domain.ProjectStatePaused,
	})
	if err != nil {
		return nil, fmt.Errorf("could not pause project: %w", err)
	}

	return updated, nil
}

// Resume lifts a manual pause: the state is recomputed from the progress
// counters and the matching job is re-enqueued.
func (s *Service) Resume(ctx context.Context, userID domain.UserID, id domain.ProjectID) (*domain.Project, error) {
	project, err := s.Project(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.State != domain.ProjectStatePaused {
		return nil, serrors.With(serrors.ErrConflict, "project is not paused")
	}

	domainSummary, err := s.storage.DomainSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get domain summary: %w", err)
	}
	metricsSummary, err := s.storage.MetricsSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get metrics summary: %w", err)
	}

	// recompute from a neutral state; paused itself is sticky
	next := Recompute(domain.ProjectStateChecking, domainSummary, metricsSummary)

	var updated *domain.Project
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		updated, err = s.applyTransition(ctx, tx, project, next)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not resume project: %w", err)
	}

	return updated, nil
}

// RecomputeState re-derives the project state from the progress counters and
// applies the transition with its side effects. Invoked after every check
// and measure pass and by the periodic reconciliation sweep. Idempotent:
// recomputing a project already in its derived state changes nothing and
// sends no mail.
func (s *Service) RecomputeState(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	project, err := s.storage.ProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get project: %w", err)
	}
	if project == nil {
		return nil, serrors.With(serrors.ErrNotFound, "project not found")
	}
	if project.State.Sticky() || project.State == domain.ProjectStateCompleted {
		return project, nil
	}

	domainSummary, err := s.storage.DomainSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get domain summary: %w", err)
	}
	metricsSummary, err := s.storage.MetricsSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get metrics summary: %w", err)
	}

	next := Recompute(project.State, domainSummary, metricsSummary)
	if next == project.State {
		return project, nil
	}

	var updated *domain.Project
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		updated, err = s.applyTransition(ctx, tx, project, next)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not recompute project state: %w", err)
	}

	return updated, nil
}

// MarkFailed transitions the project into the error state and notifies both
// the project contact and the operator. The stack is included in the
// operator mail only.
func (s *Service) MarkFailed(ctx context.Context, id domain.ProjectID, cause error, stack string) error {
	project, err := s.storage.ProjectByID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}
	if project == nil {
		return serrors.With(serrors.ErrNotFound, "project not found")
	}

	message := cause.Error()
	now := time.Now()
	if _, err := s.storage.UpdateProject(ctx, id, storage.ProjectUpdates{
		State:       domain.ProjectStateError,
		Error:       &message,
		CompletedAt: &now,
	}); err != nil {
		return fmt.Errorf("could not mark project failed: %w", err)
	}

	metrics.ProjectsCompleted.WithLabelValues(string(domain.ProjectStateError)).Inc()
	s.sendFailureReport(ctx, project, cause, stack)

	return nil
}

// applyTransition persists the state change and runs its side effects:
// stamping the completion timestamp, sending the completion mail exactly
// once, and enqueueing the metrics job when entering measuring.
func (s *Service) applyTransition(ctx context.Context,
	tx storage.AllStorage,
	project *domain.Project,
	next domain.ProjectState) (*domain.Project, error) {
	updates := storage.ProjectUpdates{State: next}

	notify := false
	if next == domain.ProjectStateCompleted && project.State != domain.ProjectStateCompleted {
		now := time.Now()
		updates.CompletedAt = &now
		if !project.CompletionNotified {
			notified := true
			updates.CompletionNotified = &notified
			notify = true
		}
	}

	updated, err := tx.UpdateProject(ctx, project.ID, updates)
	if err != nil {
		return nil, fmt.Errorf("could not update project: %w", err)
	}
	if updated == nil {
		return nil, serrors.With(serrors.ErrNotFound, "project not found")
	}

	if next == domain.ProjectStateMeasuring && project.State != domain.ProjectStateMeasuring {
		if _, err := tx.AddJob(ctx, UpdateMetricsArgs{ProjectID: uuid.UUID(project.ID)}, nil); err != nil {
			return nil, fmt.Errorf("could not add metrics job: %w", err)
		}
	}

	if notify {
		metrics.ProjectsCompleted.WithLabelValues(string(domain.ProjectStateCompleted)).Inc()
		s.sendCompletionReport(ctx, updated)
	}

	return updated, nil
}

func (s *Service) sendCompletionReport(ctx context.Context, project *domain.Project) {
	if project.ContactEmail == "" {
		return
	}

	body := fmt.Sprintf("Your domain check project %q has finished.\n\n"+
		"All domains have been checked and all link metrics collected.\n",
		project.Name)
	s.send(ctx, mailer.Message{
		From:    s.options.From,
		To:      []string{project.ContactEmail},
		Subject: fmt.Sprintf("Project %q completed", project.Name),
		Body:    body,
	})
}

func (s *Service) sendFailureReport(ctx context.Context, project *domain.Project, cause error, stack string) {
	notification, err := s.settings.Notification(ctx)
	if err != nil {
		logger.Error(ctx, "could not load notification settings", zap.Error(err))
		notification = &settings.Notification{}
	}

	if project.ContactEmail != "" {
		s.send(ctx, mailer.Message{
			From:    s.options.From,
			To:      []string{project.ContactEmail},
			Subject: fmt.Sprintf("Project %q failed", project.Name),
			Body: fmt.Sprintf("Processing of your project %q stopped with an error:\n\n%s\n\n"+
				"The operators have been notified.\n", project.Name, cause),
		})
	}

	if notification.OperatorEmail != "" {
		s.send(ctx, mailer.Message{
			From:    s.options.From,
			To:      []string{notification.OperatorEmail},
			Subject: fmt.Sprintf("Project %s failed: %s", uuid.UUID(project.ID), cause),
			Body:    fmt.Sprintf("Project: %s\nOwner: %s\n\nError: %s\n\n%s", uuid.UUID(project.ID), uuid.UUID(project.UserID), cause, stack),
		})
	}
}

func (s *Service) sendParseFailureReport(ctx context.Context, project *domain.Project, failures []parser.ParseFailure) {
	notification, err := s.settings.Notification(ctx)
	if err != nil {
		logger.Error(ctx, "could not load notification settings", zap.Error(err))

		return
	}

	to := notification.ParseFailureAddress
	if to == "" {
		to = project.ContactEmail
	}
	if to == "" {
		return
	}

	s.send(ctx, mailer.Message{
		From:    s.options.From,
		To:      []string{to},
		Subject: fmt.Sprintf("Project %q: %d lines could not be parsed", project.Name, len(failures)),
		Body:    formatParseFailures(failures),
	})
}

// send delivers one notification, best-effort. Failures are logged and
// swallowed so mail trouble never breaks the processing pipeline.
func (s *Service) send(ctx context.Context, msg mailer.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error(ctx, "could not send notification",
			zap.String("subject", msg.Subject), zap.Error(err))
	}
}

func formatParseFailures(failures []parser.ParseFailure) string {
	if len(failures) == 0 {
		return ""
	}

	var b strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&b, "line %d: %s (%s)\n", f.Line, f.Raw, f.Reason)
	}

	return b.String()
}
