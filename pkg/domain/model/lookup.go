package model

// LookupResult is the answer to a requirement lookup. Facets and Total
// describe the full set of the jurisdiction; Requirements and Summary the
// filtered subset.
type LookupResult struct {
	Jurisdiction *Jurisdiction `json:"jurisdiction"`
	Selection    Selection     `json:"selection"`
	Requirements []Requirement `json:"requirements"`
	Facets       Facets        `json:"facets"`
	Summary      Summary       `json:"summary"`
	Total        int           `json:"total"`
	Degraded     bool          `json:"degraded"`
	Error        string        `json:"error,omitempty"`
}

// PrefetchResult is the item count per jurisdiction after a prefetch. Failed
// jurisdictions report zero.
type PrefetchResult map[string]int
