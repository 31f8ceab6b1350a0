package domain

// TLD is one entry of the suffix registry: a dotted suffix the registrar
// recognizes as a registration boundary. The registry doubles as the
// public-suffix table used by the domain matcher; exception entries are
// stored with a leading "!" and wildcard entries with a leading "*".
type TLD struct {
	// Suffix is the dotted suffix, e.g. "com" or "co.uk".
	Suffix string `json:"suffix"`
	// IsRecognized reports whether the registrar's TLD list still carries
	// the suffix; stale entries are kept but marked unrecognized.
	IsRecognized bool `json:"isRecognized"`
	// IsAPIRegisterable reports whether domains under the suffix can be
	// registered through the registrar API.
	IsAPIRegisterable bool `json:"isApiRegisterable"`
	// Type is the registrar's classification, e.g. "GTLD" or "CCTLD".
	Type string `json:"type"`
	// Description is the registrar's free-text description, when given.
	Description string `json:"description,omitempty"`
}

// ExcludedDomain names a registrable domain the classifier skips entirely
// (e.g. well-known domains like google.com). Administrator-maintained.
type ExcludedDomain struct {
	Domain string `json:"domain"`
}

// PreservedDomain names a registrable domain whose subdomain prefix is kept:
// matching lines are classified as special using the full host instead of
// the reduced registrable domain. Administrator-maintained.
type PreservedDomain struct {
	Domain string `json:"domain"`
}

// ExtensionPrefix is one prefix (e.g. "www.") used to generate derived
// variant domains for high-authority metrics records.
type ExtensionPrefix struct {
	Prefix string `json:"prefix"`
}
