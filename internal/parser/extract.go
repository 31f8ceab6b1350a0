// Package parser turns an uploaded URL list into classified domains. It
// resolves each line to a registrable domain via longest-suffix match over
// the TLD registry, then sorts the result into domains worth checking
// against the registrar, preclassified rows (unregisterable, special) and
// per-line parse failures.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"domaincheck/pkg/domain"
)

// CheckableDomain is one deduplicated domain destined for the availability
// check, together with the first raw line it was extracted from.
type CheckableDomain struct {
	Domain       string
	OriginalLink string
}

// Preclassified is a domain resolved at upload time whose state is already
// final and never goes through the registrar.
type Preclassified struct {
	Domain       string
	OriginalLink string
	State        domain.DomainState
	Reason       string
}

// ParseFailure records one line that could not be resolved to a domain.
// Non-fatal; the rest of the upload continues.
type ParseFailure struct {
	Line   int
	Raw    string
	Reason string
}

// Result partitions the non-blank, non-comment input lines: every such line
// lands in exactly one of the three lists.
type Result struct {
	Checkable     []CheckableDomain
	Preclassified []Preclassified
	Failures      []ParseFailure
}

// Classifier classifies uploaded lines against the TLD registry and the
// administrator-maintained exclusion and preservation sets.
type Classifier struct {
	matcher       *Matcher
	registry      map[string]domain.TLD
	exclusions    map[string]struct{}
	preservations map[string]struct{}
}

// NewClassifier builds a classifier from a registry snapshot. The snapshot
// is taken once per upload; concurrent registry edits affect only later
// uploads.
func NewClassifier(tlds []domain.TLD, exclusions, preservations []string, wildcard bool) *Classifier {
	registry := make(map[string]domain.TLD, len(tlds))
	for _, tld := range tlds {
		registry[strings.ToLower(strings.TrimLeft(tld.Suffix, "!*."))] = tld
	}

	return &Classifier{
		matcher:       NewMatcher(tlds, wildcard),
		registry:      registry,
		exclusions:    toSet(exclusions),
		preservations: toSet(preservations),
	}
}

// bareIPRe matches lines that carry only an IPv4 address in host position.
var bareIPRe = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://)?(?:\d{1,3}\.){3}\d{1,3}(?::\d+)?(?:[/?#].*)?$`)

// ExtractDomains classifies the whole uploaded file. Blank lines and lines
// starting with "/" are skipped. A domain that already landed in one of the
// outputs is silently skipped on repeat occurrences.
func (c *Classifier) ExtractDomains(text string) Result {
	var result Result

	// domains already placed somewhere; repeats are skipped
	seen := make(map[string]struct{})
	checkable := make(map[string]struct{})

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "/") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "javascript:") {
			result.Failures = append(result.Failures, ParseFailure{
				Line:   lineNo + 1,
				Raw:    line,
				Reason: "Javascript hook",
			})

			continue
		}
		if bareIPRe.MatchString(line) {
			result.Failures = append(result.Failures, ParseFailure{
				Line:   lineNo + 1,
				Raw:    line,
				Reason: "IP only - no domain to extract",
			})

			continue
		}

		match, err := c.matcher.Match(line)
		if err != nil {
			result.Failures = append(result.Failures, ParseFailure{
				Line:   lineNo + 1,
				Raw:    line,
				Reason: err.Error(),
			})

			continue
		}

		pre := c.preclassify(match)
		if pre == nil {
			if _, ok := seen[match.Registrable]; ok {
				continue
			}
			if _, ok := checkable[match.Registrable]; ok {
				continue
			}

			checkable[match.Registrable] = struct{}{}
			result.Checkable = append(result.Checkable, CheckableDomain{
				Domain:       match.Registrable,
				OriginalLink: line,
			})

			continue
		}

		if _, ok := seen[pre.Domain]; ok {
			continue
		}
		seen[pre.Domain] = struct{}{}

		pre.OriginalLink = line
		result.Preclassified = append(result.Preclassified, *pre)
	}

	return result
}

// preclassify decides whether a matched domain skips the registrar. Returns
// nil when the domain belongs in the checkable set.
func (c *Classifier) preclassify(match *Match) *Preclassified {
	tld, known := c.registry[match.Suffix]
	switch {
	case !known || !tld.IsRecognized:
		return &Preclassified{
			Domain: match.Registrable,
			State:  domain.DomainStateUnregisterable,
			Reason: fmt.Sprintf("suffix %q is not recognized", match.Suffix),
		}
	case !tld.IsAPIRegisterable:
		return &Preclassified{
			Domain: match.Registrable,
			State:  domain.DomainStateUnregisterable,
			Reason: fmt.Sprintf("suffix %q cannot be registered through the API", match.Suffix),
		}
	}

	if len(match.Registrable) > domain.MaxDomainLength {
		return &Preclassified{
			Domain: match.Registrable[:domain.MaxDomainLength],
			State:  domain.DomainStateError,
			Reason: "domain exceeds maximum length",
		}
	}

	if _, ok := c.exclusions[match.Registrable]; ok {
		return &Preclassified{
			Domain: match.Registrable,
			State:  domain.DomainStateUnregisterable,
			Reason: "domain is excluded",
		}
	}

	// preserved domains keep their full host for separate handling
	if _, ok := c.preservations[match.Registrable]; ok {
		return &Preclassified{
			Domain: match.FullHost,
			State:  domain.DomainStateSpecial,
			Reason: fmt.Sprintf("subdomains of %q are preserved", match.Registrable),
		}
	}

	return nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	return out
}
