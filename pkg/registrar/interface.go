// Package registrar defines the interface and data types used to query a
// domain registrar for availability of registrable domains and for its list
// of supported top-level domains.
package registrar

import "context"

// Params carry the per-call API endpoint and credentials. They are loaded
// from admin settings at each task invocation, so the live/sandbox switch
// takes effect without restarting workers.
type Params struct {
	// BaseURL is the API endpoint (live or sandbox).
	BaseURL string
	// APIUser, APIKey and Username authenticate the call.
	APIUser  string
	APIKey   string
	Username string
	// ClientIP is the caller's IP, required by the provider.
	ClientIP string
}

// DomainResult is the availability answer for one domain. The provider may
// echo the domain back in a less-qualified form than it was requested in.
type DomainResult struct {
	Domain    string
	Available bool
	// ErrorNo is non-zero when the provider could not check this domain;
	// Description then carries the reason.
	ErrorNo     int
	Description string
}

// APIError is one batch-level error returned alongside (or instead of)
// domain results.
type APIError struct {
	Number      int
	Description string
}

// Known batch-level error codes that require special-cased handling. All
// other codes are treated as unrecoverable.
const (
	// ErrorNoUnparseableTLD means the provider could not parse the TLD of
	// the submitted domains; the whole batch is marked failed per-domain.
	ErrorNoUnparseableTLD = 2030280
	// ErrorNoAuthorizationDenied means the provider refused to check the
	// submitted domains; the whole batch is marked failed per-domain.
	ErrorNoAuthorizationDenied = 3031510
)

// CheckResult is the parsed outcome of one batch availability call. Both
// slices may be populated at once, and a response with errors but no domain
// results is a valid shape the caller must handle.
type CheckResult struct {
	Domains []DomainResult
	Errors  []APIError
}

// TLDInfo is one entry of the provider's supported TLD list.
type TLDInfo struct {
	Name              string
	IsAPIRegisterable bool
	Type              string
	Description       string
}

// Client is the abstraction over the registrar API.
//
//go:generate mockgen -package mockregistrar -source=interface.go -destination=mock/mockregistrar.go *
type Client interface {
	// CheckAvailability submits one batch of domains for an availability
	// check. Transport-level failures are retried internally a bounded
	// number of times before being returned; an abnormal (non-200) response
	// is returned as a serrors.ErrUnavailable so the caller can leave the
	// batch for a later pass.
	CheckAvailability(ctx context.Context, p Params, domains []string) (*CheckResult, error)
	// TLDList fetches the provider's current TLD list. The raw response
	// body is returned alongside for operator notification.
	TLDList(ctx context.Context, p Params) ([]TLDInfo, string, error)
}
