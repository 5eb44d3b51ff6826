package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// EnvPrefix is the prefix of every environment variable read by grc-lookup
const EnvPrefix = "GRC_LOOKUP"

// CatalogFile is the TOML jurisdiction catalog. Entries override built-in
// jurisdictions with the same ID and add new ones.
type CatalogFile struct {
	ReplaceDefaults bool                `toml:"replace_defaults"`
	Jurisdictions   []JurisdictionEntry `toml:"jurisdiction"`
}

// JurisdictionEntry is one [[jurisdiction]] table
type JurisdictionEntry struct {
	ID               string     `toml:"id"`
	Name             string     `toml:"name"`
	Flag             string     `toml:"flag"`
	Timezone         string     `toml:"timezone"`
	Currency         string     `toml:"currency"`
	Frameworks       []string   `toml:"frameworks"`
	ApplicationTypes []string   `toml:"application_types"`
	CSVFile          string     `toml:"csv_file"`
	Table            TableEntry `toml:"table"`
}

// TableEntry names the tabular-record base of a jurisdiction. The API key is
// only read from the environment.
type TableEntry struct {
	BaseID    string `toml:"base_id"`
	TableName string `toml:"table_name"`
}

// Validate checks if the JurisdictionEntry is valid
func (e *JurisdictionEntry) Validate() error {
	id := types.JurisdictionID(e.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid jurisdiction ID", goerr.V(JurisdictionKey, e.ID), goerr.V("reason", err.Error()))
	}
	if e.Name == "" {
		return goerr.Wrap(ErrMissingName, "jurisdiction name is required", goerr.V(JurisdictionKey, e.ID))
	}
	return nil
}

// Validate checks entries and rejects duplicate IDs
func (c *CatalogFile) Validate() error {
	seen := make(map[string]bool, len(c.Jurisdictions))
	for i := range c.Jurisdictions {
		entry := &c.Jurisdictions[i]
		if err := entry.Validate(); err != nil {
			return goerr.Wrap(err, "invalid jurisdiction", goerr.V(IndexKey, i))
		}
		if seen[entry.ID] {
			return goerr.Wrap(ErrDuplicateJurisdiction, "jurisdiction defined twice", goerr.V(JurisdictionKey, entry.ID))
		}
		seen[entry.ID] = true
	}
	if c.ReplaceDefaults && len(c.Jurisdictions) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "replace_defaults requires at least one jurisdiction")
	}
	return nil
}

func (e *JurisdictionEntry) toModel() *model.Jurisdiction {
	return &model.Jurisdiction{
		ID:               types.JurisdictionID(e.ID),
		Name:             e.Name,
		Flag:             e.Flag,
		Timezone:         e.Timezone,
		Currency:         e.Currency,
		Frameworks:       e.Frameworks,
		ApplicationTypes: e.ApplicationTypes,
		CSVFile:          e.CSVFile,
		Table: model.TableSource{
			BaseID:    e.Table.BaseID,
			TableName: e.Table.TableName,
		},
	}
}

// LoadCatalog loads and validates a TOML jurisdiction catalog
func LoadCatalog(path string) (*CatalogFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog file", goerr.V(ConfigPathKey, path))
	}

	var catalog CatalogFile
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML catalog", goerr.V(ConfigPathKey, path), goerr.V("reason", err.Error()))
	}

	if err := catalog.Validate(); err != nil {
		return nil, goerr.Wrap(err, "catalog validation failed", goerr.V(ConfigPathKey, path))
	}

	return &catalog, nil
}

// Catalog holds CLI flags for the jurisdiction catalog
type Catalog struct {
	path      string
	lookupEnv func(string) (string, bool)
}

// Flags returns CLI flags for catalog configuration
func (x *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML jurisdiction catalog (built-in jurisdictions are used when omitted)",
			Sources:     cli.EnvVars(EnvPrefix + "_CATALOG"),
			Destination: &x.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Catalog) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure builds the jurisdiction registry from the built-in jurisdictions,
// the catalog file if given, and table API credentials from the environment
// ({prefix}_{ID}_TABLE_API_KEY and friends).
func (x *Catalog) Configure() (*model.JurisdictionRegistry, error) {
	registry := model.NewJurisdictionRegistry()

	var catalog *CatalogFile
	if x.path != "" {
		c, err := LoadCatalog(x.path)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	if catalog == nil || !catalog.ReplaceDefaults {
		for _, j := range model.DefaultJurisdictions() {
			if err := registry.Register(j); err != nil {
				return nil, goerr.Wrap(err, "failed to register built-in jurisdiction")
			}
		}
	}

	if catalog != nil {
		for i := range catalog.Jurisdictions {
			if err := registry.Register(catalog.Jurisdictions[i].toModel()); err != nil {
				return nil, goerr.Wrap(err, "failed to register jurisdiction", goerr.V(ConfigPathKey, x.path))
			}
		}
	}

	registry.ApplyTableEnv(EnvPrefix, x.lookupEnv)

	logging.Default().Info("Jurisdiction catalog loaded",
		"path", x.path,
		"jurisdictions", registry.IDStrings(),
	)
	return registry, nil
}
