package csvsource

import (
	"bytes"
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/secmon-lab/grc-lookup/pkg/utils/retry"
)

// Source reads "{jurisdiction}.csv" documents from an object store
type Source struct {
	registry *model.JurisdictionRegistry
	store    interfaces.ObjectStore
	policy   retry.Policy
}

var _ interfaces.RequirementSource = &Source{}

// Option configures Source
type Option func(*Source)

// WithRetryPolicy overrides retry.DefaultPolicy
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Source) {
		s.policy = p
	}
}

// New creates a CSV requirement source
func New(registry *model.JurisdictionRegistry, store interfaces.ObjectStore, opts ...Option) *Source {
	s := &Source{
		registry: registry,
		store:    store,
		policy:   retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads and parses the CSV document of a jurisdiction. Unknown
// jurisdictions are ErrConfig, exhausted downloads are ErrFetch and
// documents without header or data rows are ErrParse.
func (s *Source) Fetch(ctx context.Context, id types.JurisdictionID) ([]model.RawRow, error) {
	j, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	key := j.FileName()
	logger := logging.From(ctx).With("jurisdiction", id, "file", key)

	var body []byte
	err = retry.Do(ctx, s.policy, "fetch csv", func(ctx context.Context, attempt int) error {
		logger.Debug("Fetching CSV document", "attempt", attempt)

		data, err := s.store.Get(ctx, key)
		if err != nil {
			return goerr.Wrap(err, "failed to get CSV document", goerr.V(model.AttemptKey, attempt))
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return goerr.New("empty CSV document", goerr.V(model.AttemptKey, attempt))
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(errors.Join(model.ErrFetch, err), "failed to fetch CSV document",
			goerr.V(model.JurisdictionKey, id),
			goerr.V("file", key),
			goerr.V("attempts", s.policy.Attempts))
	}

	rows, warnings, err := Parse(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse CSV document",
			goerr.V(model.JurisdictionKey, id),
			goerr.V("file", key))
	}
	if warnings > 0 {
		logger.Warn("CSV parsing produced warnings", "warnings", warnings, "rows", len(rows))
	}

	logger.Info("Fetched CSV document", "rows", len(rows))
	return rows, nil
}
