package tablesource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/secmon-lab/grc-lookup/pkg/utils/retry"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
)

// DefaultAPIBase is the hosted record API endpoint
const DefaultAPIBase = "https://api.airtable.com"

// maxPages bounds offset pagination
const maxPages = 100

// Source reads requirement records from the tabular record API
type Source struct {
	registry *model.JurisdictionRegistry
	apiBase  string
	client   *http.Client
	policy   retry.Policy
}

var _ interfaces.RequirementSource = &Source{}

// Option configures Source
type Option func(*Source)

// WithAPIBase overrides DefaultAPIBase
func WithAPIBase(base string) Option {
	return func(s *Source) {
		s.apiBase = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithRetryPolicy overrides retry.DefaultPolicy
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Source) {
		s.policy = p
	}
}

// New creates a table API requirement source
func New(registry *model.JurisdictionRegistry, opts ...Option) *Source {
	s := &Source{
		registry: registry,
		apiBase:  DefaultAPIBase,
		client:   &http.Client{Timeout: 30 * time.Second},
		policy:   retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

// Fetch lists every record of the jurisdiction's table, following offset
// pagination. Missing credentials are ErrConfig; pages that cannot be read
// after all attempts are ErrFetch.
func (s *Source) Fetch(ctx context.Context, id types.JurisdictionID) ([]model.RawRow, error) {
	j, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if err := j.ValidateTable(); err != nil {
		return nil, err
	}

	endpoint := s.apiBase + "/v0/" + url.PathEscape(j.Table.BaseID) + "/" + url.PathEscape(j.TableName())
	logger := logging.From(ctx).With("jurisdiction", id, "table", j.TableName())

	var rows []model.RawRow
	offset := ""
	for page := 0; page < maxPages; page++ {
		var resp *listResponse
		err := retry.Do(ctx, s.policy, "fetch table records", func(ctx context.Context, attempt int) error {
			r, err := s.list(ctx, endpoint, j.Table.APIKey, offset)
			if err != nil {
				return goerr.Wrap(err, "failed to list records", goerr.V(model.AttemptKey, attempt))
			}
			resp = r
			return nil
		})
		if err != nil {
			return nil, goerr.Wrap(errors.Join(model.ErrFetch, err), "failed to fetch table records",
				goerr.V(model.JurisdictionKey, id),
				goerr.V("page", page))
		}

		for _, rec := range resp.Records {
			row := make(model.RawRow, len(rec.Fields))
			for k, v := range rec.Fields {
				row[strings.TrimSpace(k)] = v
			}
			rows = append(rows, row)
		}

		if resp.Offset == "" {
			logger.Info("Fetched table records", "rows", len(rows), "pages", page+1)
			return rows, nil
		}
		offset = resp.Offset
	}

	logger.Warn("Table pagination limit reached", "rows", len(rows), "max_pages", maxPages)
	return rows, nil
}

func (s *Source) list(ctx context.Context, endpoint, apiKey, offset string) (*listResponse, error) {
	u := endpoint
	if offset != "" {
		u += "?" + url.Values{"offset": []string{offset}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V(model.URLKey, u))
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V(model.URLKey, u))
	}
	defer safe.Drain(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status code",
			goerr.V(model.URLKey, u),
			goerr.V(model.StatusCodeKey, resp.StatusCode))
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, goerr.Wrap(err, "failed to decode records", goerr.V(model.URLKey, u))
	}
	return &out, nil
}
