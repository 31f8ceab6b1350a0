package storage

import (
	"context"

	"domaincheck/pkg/domain"
)

// RegistryStorage defines persistence operations for the TLD registry and
// the administrator-maintained classification lists.
type RegistryStorage interface {
	// TLDs returns the full suffix registry, recognized suffixes first.
	TLDs(ctx context.Context) ([]domain.TLD, error)
	// TLDBySuffix fetches one registry entry. Returns nil when not found.
	TLDBySuffix(ctx context.Context, suffix string) (*domain.TLD, error)
	// UpsertTLD inserts or replaces one registry entry keyed by suffix.
	UpsertTLD(ctx context.Context, tld domain.TLD) error

	// Exclusions returns the set of explicitly excluded domains.
	Exclusions(ctx context.Context) ([]string, error)
	// Preservations returns the set of subdomain-preserved domains.
	Preservations(ctx context.Context) ([]string, error)
	// ExtensionPrefixes returns the configured extension prefixes.
	ExtensionPrefixes(ctx context.Context) ([]string, error)

	// ReplaceExclusions replaces the exclusion set wholesale.
	ReplaceExclusions(ctx context.Context, domains []string) error
	// ReplacePreservations replaces the preservation set wholesale.
	ReplacePreservations(ctx context.Context, domains []string) error
	// ReplaceExtensionPrefixes replaces the prefix list wholesale.
	ReplaceExtensionPrefixes(ctx context.Context, prefixes []string) error
}
