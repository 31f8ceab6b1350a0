// Package linkmetrics defines the interface and data types used to fetch
// link-authority metrics for a domain from a metrics provider.
package linkmetrics

import (
	"context"
	"time"
)

// Params carry the per-call endpoint and signing credentials. They are
// loaded from admin settings at each task invocation.
type Params struct {
	// BaseURL is the API endpoint (live or test), with a trailing slash.
	BaseURL string
	// AccessID identifies the API account.
	AccessID string
	// SecretKey signs each request.
	SecretKey string
}

// Client is the abstraction over the link-metrics API.
//
//go:generate mockgen -package mocklinkmetrics -source=interface.go -destination=mock/mocklinkmetrics.go *
type Client interface {
	// URLMetrics fetches the attributes selected by the cols bitmask for
	// the given query URL. The response is a sparse map of short attribute
	// codes to values; callers map it through the fixed code table.
	URLMetrics(ctx context.Context, p Params, queryURL string, cols uint64) (map[string]any, error)
	// LastUpdate returns when the provider last refreshed its index data.
	LastUpdate(ctx context.Context, p Params) (time.Time, error)
}
