package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxDomainLength caps all stored domain strings.
const MaxDomainLength = 255

// DomainID uniquely identifies a project domain row.
type DomainID uuid.UUID

// DomainState represents the availability-check status of a single domain
// within a project.
type DomainState string

const (
	// DomainStateUnchecked indicates the domain has not been checked yet
	// (or a previous batch pass did not return a result for it).
	DomainStateUnchecked DomainState = "unchecked"
	// DomainStateUnregisterable indicates the domain was classified as not
	// registerable at upload time (unknown TLD, non-registerable TLD, or
	// explicit exclusion).
	DomainStateUnregisterable DomainState = "unregisterable"
	// DomainStateAvailable indicates the registrar reported the domain as free.
	DomainStateAvailable DomainState = "available"
	// DomainStateUnavailable indicates the registrar reported the domain as taken.
	DomainStateUnavailable DomainState = "unavailable"
	// DomainStateSpecial marks preserved domains whose full host is kept for
	// separate handling.
	DomainStateSpecial DomainState = "special"
	// DomainStateError records a domain-level failure; see Error for the reason.
	DomainStateError DomainState = "error"
)

// ProjectDomain is one canonical domain extracted from a project's uploaded
// file. Rows are created in bulk at upload time and mutated only by the
// availability checker.
type ProjectDomain struct {
	ID        DomainID  `json:"id"`
	ProjectID ProjectID `json:"projectId"`

	// Domain is the canonical registrable domain (or the full host for
	// preserved domains).
	Domain string `json:"domain"`
	// OriginalLink is the raw input line the domain was extracted from.
	OriginalLink string `json:"originalLink,omitempty"`

	IsChecked bool        `json:"isChecked"`
	State     DomainState `json:"state"`
	// Error carries the per-domain failure reason when State is error or
	// the preclassification reason for unregisterable/special rows.
	Error string `json:"error,omitempty"`

	LastChecked time.Time `json:"lastChecked,omitzero"`
}
