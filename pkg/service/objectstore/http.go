package objectstore

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
)

// DefaultBucketURL is the public bucket holding requirement documents
const DefaultBucketURL = "https://grc-requirements-data.s3.amazonaws.com"

// DefaultTimeout bounds a single HTTP request
const DefaultTimeout = 30 * time.Second

// HTTPStore reads objects from a public bucket or CDN over HTTP(S)
type HTTPStore struct {
	baseURL string
	headers http.Header
	client  *http.Client
}

var _ interfaces.ObjectStore = &HTTPStore{}

// HTTPOption configures HTTPStore
type HTTPOption func(*HTTPStore)

// WithHeader adds a request header sent with every GET
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPStore) {
		s.headers.Set(key, value)
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		s.client = client
	}
}

// NewHTTP creates a store rooted at baseURL. A trailing slash is ignored.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTPStore, error) {
	if baseURL == "" {
		return nil, goerr.Wrap(model.ErrConfig, "object store base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, goerr.Wrap(model.ErrConfig, "object store base URL must be http or https", goerr.V(model.URLKey, baseURL))
	}

	s := &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(http.Header),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the full object URL for key
func (s *HTTPStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Get fetches the object at {baseURL}/{key}
func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	url := s.URL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V(model.URLKey, url))
	}
	for k, values := range s.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V(model.URLKey, url))
	}
	defer safe.Drain(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("unexpected status code",
			goerr.V(model.URLKey, url),
			goerr.V(model.StatusCodeKey, resp.StatusCode),
			goerr.V("status", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body", goerr.V(model.URLKey, url))
	}
	return body, nil
}
