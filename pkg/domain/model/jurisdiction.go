package model

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// DefaultTableName is used when a jurisdiction does not name its table
const DefaultTableName = "Requirements"

// Jurisdiction describes a governed region and where its requirements live
type Jurisdiction struct {
	ID               types.JurisdictionID `json:"id"`
	Name             string               `json:"name"`
	Flag             string               `json:"flag"`
	Timezone         string               `json:"timezone"`
	Currency         string               `json:"currency"`
	Frameworks       []string             `json:"frameworks"`
	ApplicationTypes []string             `json:"applicationTypes"`
	CSVFile          string               `json:"-"`
	Table            TableSource          `json:"-"`
}

// TableSource holds the identifiers needed to reach the tabular record API
type TableSource struct {
	APIKey    string `masq:"secret"`
	BaseID    string
	TableName string
}

// FileName returns the CSV document name, "{id}.csv" unless overridden
func (j *Jurisdiction) FileName() string {
	if j.CSVFile != "" {
		return j.CSVFile
	}
	return j.ID.String() + ".csv"
}

// ValidateTable checks that the table API identifiers are present
func (j *Jurisdiction) ValidateTable() error {
	if j.Table.APIKey == "" {
		return goerr.Wrap(ErrConfig, "table API key is not configured", goerr.V(JurisdictionKey, j.ID))
	}
	if j.Table.BaseID == "" {
		return goerr.Wrap(ErrConfig, "table base ID is not configured", goerr.V(JurisdictionKey, j.ID))
	}
	return nil
}

// TableName returns the configured table name or DefaultTableName
func (j *Jurisdiction) TableName() string {
	if j.Table.TableName != "" {
		return j.Table.TableName
	}
	return DefaultTableName
}

// JurisdictionRegistry holds the configured jurisdictions. It is built once
// at startup and only read afterwards.
type JurisdictionRegistry struct {
	entries map[types.JurisdictionID]*Jurisdiction
	order   []types.JurisdictionID
}

// NewJurisdictionRegistry creates a new empty JurisdictionRegistry
func NewJurisdictionRegistry() *JurisdictionRegistry {
	return &JurisdictionRegistry{
		entries: make(map[types.JurisdictionID]*Jurisdiction),
	}
}

// Register adds a jurisdiction, replacing an existing one with the same ID
func (r *JurisdictionRegistry) Register(j *Jurisdiction) error {
	if err := j.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid jurisdiction")
	}
	if _, exists := r.entries[j.ID]; !exists {
		r.order = append(r.order, j.ID)
	}
	r.entries[j.ID] = j
	return nil
}

// Get retrieves a jurisdiction. Unknown IDs are ErrConfig.
func (r *JurisdictionRegistry) Get(id types.JurisdictionID) (*Jurisdiction, error) {
	j, ok := r.entries[id]
	if !ok {
		return nil, goerr.Wrap(ErrConfig, "unknown jurisdiction",
			goerr.V(JurisdictionKey, id),
			goerr.V("available", strings.Join(r.IDStrings(), ", ")))
	}
	return j, nil
}

// List returns all jurisdictions in registration order
func (r *JurisdictionRegistry) List() []*Jurisdiction {
	result := make([]*Jurisdiction, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// IDs returns all jurisdiction IDs in registration order
func (r *JurisdictionRegistry) IDs() []types.JurisdictionID {
	return append([]types.JurisdictionID(nil), r.order...)
}

// IDStrings returns all jurisdiction IDs as strings
func (r *JurisdictionRegistry) IDStrings() []string {
	result := make([]string, len(r.order))
	for i, id := range r.order {
		result[i] = id.String()
	}
	return result
}

// ApplyTableEnv fills table API identifiers from environment variables named
// {prefix}_{ID}_TABLE_API_KEY, _TABLE_BASE_ID and _TABLE_NAME, where ID is the
// upper-cased jurisdiction ID with hyphens replaced by underscores. Values
// already set are not overwritten. lookup is usually os.LookupEnv.
func (r *JurisdictionRegistry) ApplyTableEnv(prefix string, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, j := range r.entries {
		key := prefix + "_" + strings.ToUpper(strings.ReplaceAll(j.ID.String(), "-", "_")) + "_TABLE_"
		if v, ok := lookup(key + "API_KEY"); ok && j.Table.APIKey == "" {
			j.Table.APIKey = v
		}
		if v, ok := lookup(key + "BASE_ID"); ok && j.Table.BaseID == "" {
			j.Table.BaseID = v
		}
		if v, ok := lookup(key + "NAME"); ok && j.Table.TableName == "" {
			j.Table.TableName = v
		}
	}
}

// DefaultJurisdictions returns the built-in catalog
func DefaultJurisdictions() []*Jurisdiction {
	return []*Jurisdiction{
		{
			ID:               "california",
			Name:             "California, USA",
			Flag:             "🇺🇸",
			Timezone:         "America/Los_Angeles",
			Currency:         "USD",
			Frameworks:       []string{"CCPA", "CPRA", "SB-327"},
			ApplicationTypes: []string{"Web Application", "Mobile App", "E-commerce", "Healthcare"},
		},
		{
			ID:               "indonesia",
			Name:             "Indonesia",
			Flag:             "🇮🇩",
			Timezone:         "Asia/Jakarta",
			Currency:         "IDR",
			Frameworks:       []string{"UU PDP", "OJK", "Kominfo"},
			ApplicationTypes: []string{"Web Application", "Mobile App", "Financial Services", "Healthcare"},
		},
	}
}

// DefaultJurisdictionID is the jurisdiction selected when none is given
const DefaultJurisdictionID types.JurisdictionID = "california"
