package parser

import (
	"fmt"
	"net/url"
	"strings"

	"domaincheck/pkg/domain"
)

// Match is the result of resolving one URL against the suffix table.
type Match struct {
	// Suffix is the matched registry suffix, e.g. "co.uk".
	Suffix string
	// Registrable is the registrable domain: the suffix plus exactly one
	// more label, except for exception suffixes where the unreduced tail
	// is returned as-is.
	Registrable string
	// FullHost is the complete lowercased host the URL carried.
	FullHost string
}

// Matcher resolves URLs to registrable domains by longest-suffix match
// against the TLD registry. Exception entries (leading "!") win outright and
// keep the unreduced tail; wildcard entries (leading "*") are only honored
// when wildcard matching is enabled.
type Matcher struct {
	table    map[string]struct{}
	wildcard bool
}

// NewMatcher builds a matcher over the given registry entries.
func NewMatcher(tlds []domain.TLD, wildcard bool) *Matcher {
	table := make(map[string]struct{}, len(tlds))
	for _, tld := range tlds {
		table[strings.ToLower(tld.Suffix)] = struct{}{}
	}

	return &Matcher{
		table:    table,
		wildcard: wildcard,
	}
}

// Match parses the host out of a raw line and finds the longest registry
// suffix it ends with. The raw line may lack a scheme; ports are stripped.
func (m *Matcher) Match(raw string) (*Match, error) {
	host, err := hostOf(raw)
	if err != nil {
		return nil, err
	}

	labels := strings.Split(host, ".")
	for i := range labels {
		tail := strings.Join(labels[i:], ".")

		// exception entries keep the unreduced tail
		if _, ok := m.table["!"+tail]; ok {
			return &Match{
				Suffix:      tail,
				Registrable: tail,
				FullHost:    tail,
			}, nil
		}

		if _, ok := m.table[tail]; ok {
			return &Match{
				Suffix:      tail,
				Registrable: strings.Join(labels[max(i-1, 0):], "."),
				FullHost:    host,
			}, nil
		}

		if m.wildcard && i+1 < len(labels) {
			if _, ok := m.table["*."+strings.Join(labels[i+1:], ".")]; ok {
				return &Match{
					Suffix:      tail,
					Registrable: strings.Join(labels[max(i-1, 0):], "."),
					FullHost:    host,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("no recognized suffix in %q", host)
}

// hostOf extracts the lowercased host from a raw line, tolerating missing
// schemes and stripping any port.
func hostOf(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	// prepend a scheme separator so url.Parse treats the leading token as
	// the host rather than a path
	if !strings.Contains(raw, "//") {
		raw = "//" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("could not parse url: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no host in %q", strings.TrimPrefix(raw, "//"))
	}

	return strings.ToLower(host), nil
}
