package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// RequirementSource provides raw requirement rows for a jurisdiction.
// Implementations return errors wrapping model.ErrConfig, model.ErrFetch or
// model.ErrParse. Normalization is applied by the caller.
type RequirementSource interface {
	Fetch(ctx context.Context, jurisdiction types.JurisdictionID) ([]model.RawRow, error)
}

// ObjectStore reads whole objects by key
type ObjectStore interface {
	// Get returns the object body. A missing object, a non-2xx response and
	// transport failures are all errors.
	Get(ctx context.Context, key string) ([]byte, error)
}
