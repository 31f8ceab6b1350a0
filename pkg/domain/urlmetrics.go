package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetricsID uniquely identifies a URL metrics record.
type MetricsID uuid.UUID

// URLMetrics holds the link-authority attributes returned by the metrics API
// for a single query domain. Records are shared across projects: the same
// domain uploaded to two projects resolves to one metrics row, so their
// lifetime is independent of any single project.
//
// All attribute fields are pointers because the API returns a sparse subset
// selected by a column bitmask; absent attributes stay nil.
type URLMetrics struct {
	ID       MetricsID `json:"id"`
	QueryURL string    `json:"queryUrl"`
	// LastUpdated is when this record was last refreshed from the API.
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
	// ExtendedFromID points at the metrics record this one was derived from
	// when the row was created as an extension variant (e.g. a www. prefix).
	ExtendedFromID *MetricsID `json:"extendedFromId,omitempty"`

	Title        *string `json:"title,omitempty"`
	CanonicalURL *string `json:"canonicalUrl,omitempty"`

	Subdomain  *string `json:"subdomain,omitempty"`
	RootDomain *string `json:"rootDomain,omitempty"`

	ExternalLinks           *float64 `json:"externalLinks,omitempty"`
	SubdomainExternalLinks  *int64   `json:"subdomainExternalLinks,omitempty"`
	RootDomainExternalLinks *int64   `json:"rootDomainExternalLinks,omitempty"`
	EquityLinks             *float64 `json:"equityLinks,omitempty"`

	SubdomainsLinking            *int64   `json:"subdomainsLinking,omitempty"`
	RootDomainsLinking           *int64   `json:"rootDomainsLinking,omitempty"`
	Links                        *float64 `json:"links,omitempty"`
	SubdomainSubdomainsLinking   *int64   `json:"subdomainSubdomainsLinking,omitempty"`
	RootDomainRootDomainsLinking *int64   `json:"rootDomainRootDomainsLinking,omitempty"`

	MozRank10           *float64 `json:"mozrank10,omitempty"`
	MozRankRaw          *float64 `json:"mozrankRaw,omitempty"`
	SubdomainMozRank10  *float64 `json:"subdomainMozrank10,omitempty"`
	SubdomainMozRankRaw *float64 `json:"subdomainMozrankRaw,omitempty"`
	RootDomainMozRank10 *float64 `json:"rootDomainMozrank10,omitempty"`
	RootDomainMozRankRaw *float64 `json:"rootDomainMozrankRaw,omitempty"`

	HTTPStatusCode  *int64   `json:"httpStatusCode,omitempty"`
	PageAuthority   *float64 `json:"pageAuthority,omitempty"`
	DomainAuthority *float64 `json:"domainAuthority,omitempty"`
}

// MetricsColumn describes one attribute of the metrics API response: the
// short response key it arrives under and the bit selecting it in a request
// column mask. Some attributes share a bit (the API returns both the raw and
// normalized form for one flag).
type MetricsColumn struct {
	Name string
	Code string
	Bit  uint64
}

// MetricsColumns is the fixed code table mapping response keys to attributes.
// The bit values come from the metrics provider's documented column flags.
var MetricsColumns = []MetricsColumn{
	{Name: "Title", Code: "ut", Bit: 1},
	{Name: "Canonical URL", Code: "uu", Bit: 4},
	{Name: "Subdomain", Code: "ufq", Bit: 8},
	{Name: "Root Domain", Code: "upl", Bit: 16},
	{Name: "External Links", Code: "ueid", Bit: 32},
	{Name: "Subdomain External Links", Code: "feid", Bit: 64},
	{Name: "Root Domain External Links", Code: "peid", Bit: 128},
	{Name: "Equity Links", Code: "ujid", Bit: 256},
	{Name: "Subdomains Linking", Code: "uifq", Bit: 512},
	{Name: "Root Domains Linking", Code: "uipl", Bit: 1024},
	{Name: "Links", Code: "uid", Bit: 2048},
	{Name: "Subdomain Subdomains Linking", Code: "fid", Bit: 4096},
	{Name: "Root Domain Root Domains Linking", Code: "pid", Bit: 8192},
	{Name: "MozRank 10", Code: "umrp", Bit: 16384},
	{Name: "MozRank Raw", Code: "umrr", Bit: 16384},
	{Name: "Subdomain MozRank 10", Code: "fmrp", Bit: 32768},
	{Name: "Subdomain MozRank Raw", Code: "fmrr", Bit: 32768},
	{Name: "Root Domain MozRank 10", Code: "pmrp", Bit: 65536},
	{Name: "Root Domain MozRank Raw", Code: "pmrr", Bit: 65536},
	{Name: "HTTP Status Code", Code: "us", Bit: 536870912},
	{Name: "Page Authority", Code: "upa", Bit: 34359738368},
	{Name: "Domain Authority", Code: "pda", Bit: 68719476736},
}

// ColsBitflag folds the named columns into the request bitmask. Unknown
// names contribute nothing.
func ColsBitflag(names ...string) uint64 {
	var mask uint64
	for _, name := range names {
		for _, col := range MetricsColumns {
			if col.Name == name {
				mask |= col.Bit

				break
			}
		}
	}

	return mask
}

// StoreResult applies a decoded metrics API response to the record. Keys map
// through MetricsColumns to attributes; unrecognized keys are ignored, and
// attributes absent from the response keep their previous value.
func (m *URLMetrics) StoreResult(result map[string]any) {
	for code, value := range result {
		switch code {
		case "ut":
			m.Title = toStr(value)
		case "uu":
			m.CanonicalURL = toStr(value)
		case "ufq":
			m.Subdomain = toStr(value)
		case "upl":
			m.RootDomain = toStr(value)
		case "ueid":
			m.ExternalLinks = toFloat(value)
		case "feid":
			m.SubdomainExternalLinks = toInt(value)
		case "peid":
			m.RootDomainExternalLinks = toInt(value)
		case "ujid":
			m.EquityLinks = toFloat(value)
		case "uifq":
			m.SubdomainsLinking = toInt(value)
		case "uipl":
			m.RootDomainsLinking = toInt(value)
		case "uid":
			m.Links = toFloat(value)
		case "fid":
			m.SubdomainSubdomainsLinking = toInt(value)
		case "pid":
			m.RootDomainRootDomainsLinking = toInt(value)
		case "umrp":
			m.MozRank10 = toFloat(value)
		case "umrr":
			m.MozRankRaw = toFloat(value)
		case "fmrp":
			m.SubdomainMozRank10 = toFloat(value)
		case "fmrr":
			m.SubdomainMozRankRaw = toFloat(value)
		case "pmrp":
			m.RootDomainMozRank10 = toFloat(value)
		case "pmrr":
			m.RootDomainMozRankRaw = toFloat(value)
		case "us":
			m.HTTPStatusCode = toInt(value)
		case "upa":
			m.PageAuthority = toFloat(value)
		case "pda":
			m.DomainAuthority = toFloat(value)
		}
	}
}

// IsUpToDate reports whether the record was refreshed after the most recent
// known upstream data refresh. A record that has never been fetched is
// always stale.
func (m *URLMetrics) IsUpToDate(lastUpstreamRefresh time.Time) bool {
	if m.LastUpdated.IsZero() {
		return false
	}

	return lastUpstreamRefresh.Before(m.LastUpdated)
}

// toStr, toFloat and toInt coerce decoded JSON values (which arrive as
// string/float64/nil) into the optional attribute types.
func toStr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}

	return nil
}

func toFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int64:
		f := float64(n)

		return &f
	}

	return nil
}

func toInt(v any) *int64 {
	switch n := v.(type) {
	case float64:
		i := int64(n)

		return &i
	case int64:
		return &n
	}

	return nil
}

// ProjectMetrics ties a project to a URLMetrics record. It drives the
// measuring stage: the project advances once every non-deleted link is
// checked. IsExtension marks links created automatically for derived
// variant domains.
type ProjectMetrics struct {
	ID        uuid.UUID `json:"id"`
	ProjectID ProjectID `json:"projectId"`
	MetricsID MetricsID `json:"metricsId"`

	IsChecked   bool `json:"isChecked"`
	IsExtension bool `json:"isExtension"`
}

// MetricsLastUpdate records one observation of the metrics provider's own
// "data last refreshed" endpoint. Staleness comparisons are measured
// against the most recently retrieved observation.
type MetricsLastUpdate struct {
	// Datetime is the refresh timestamp reported by the provider.
	Datetime time.Time `json:"datetime"`
	// Retrieved is when the observation was recorded locally.
	Retrieved time.Time `json:"retrieved"`
}
