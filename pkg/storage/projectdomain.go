package storage

import (
	"context"
	"time"

	"domaincheck/pkg/domain"
)

// DomainUpdates describes the optional fields that can be applied to a
// project domain after a check pass.
type DomainUpdates struct {
	// State is the new check state, when non-empty.
	State domain.DomainState
	// Error, when provided, sets the per-domain error text. An empty
	// string clears it.
	Error *string
	// IsChecked, when provided, records whether the domain has been
	// resolved by the checker.
	IsChecked *bool
	// LastChecked, when provided, stamps the check timestamp.
	LastChecked *time.Time
}

// DomainSummary aggregates a project's domain-check progress.
type DomainSummary struct {
	// Total is the number of domains the project owns.
	Total int
	// Unchecked is the number still awaiting an availability result.
	Unchecked int
}

// DomainStorage defines persistence operations for the per-project parsed
// domain rows.
type DomainStorage interface {
	// StoreDomains bulk-inserts domains and returns the stored rows.
	StoreDomains(ctx context.Context, domains ...domain.ProjectDomain) ([]domain.ProjectDomain, error)
	// ProjectDomains returns all domains of a project.
	ProjectDomains(ctx context.Context, id domain.ProjectID) ([]domain.ProjectDomain, error)
	// UncheckedDomains returns up to limit domains of the project that are
	// still awaiting a check, in no particular order.
	UncheckedDomains(ctx context.Context, id domain.ProjectID, limit uint) ([]domain.ProjectDomain, error)
	// DomainsByState returns the project's domains currently in the given
	// state.
	DomainsByState(ctx context.Context,
		id domain.ProjectID,
		state domain.DomainState) ([]domain.ProjectDomain, error)
	// DomainSummary aggregates the project's check progress.
	DomainSummary(ctx context.Context, id domain.ProjectID) (DomainSummary, error)
	// UpdateDomain applies the given updates to one domain row and returns
	// the updated row, or nil when it does not exist.
	UpdateDomain(ctx context.Context, id domain.DomainID, updates DomainUpdates) (*domain.ProjectDomain, error)
}
