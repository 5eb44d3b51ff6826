package content

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Page file names
const (
	AboutFile   = "about.md"
	MembersFile = "members.md"
)

// DefaultCacheTimeout is how long fetched markdown is reused
const DefaultCacheTimeout = 5 * time.Minute

type cacheEntry struct {
	markdown string
	cachedAt time.Time
}

// Service fetches markdown pages from an object store and renders them
type Service struct {
	store    interfaces.ObjectStore
	markdown goldmark.Markdown
	timeout  time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

var _ interfaces.ContentService = &Service{}

// Option configures Service
type Option func(*Service)

// WithCacheTimeout overrides DefaultCacheTimeout
func WithCacheTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a content service reading page files from store
func New(store interfaces.ObjectStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		timeout: DefaultCacheTimeout,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the markdown of filename, from cache while fresh. When the
// store fails the fallback text is returned together with the error.
func (s *Service) Fetch(ctx context.Context, filename string) (string, error) {
	now := s.now()

	s.mu.Lock()
	entry, ok := s.cache[filename]
	s.mu.Unlock()
	if ok && now.Sub(entry.cachedAt) < s.timeout {
		return entry.markdown, nil
	}

	data, err := s.store.Get(ctx, filename)
	if err != nil {
		logging.From(ctx).Warn("Failed to fetch content, using fallback", "file", filename, "error", err.Error())
		return Fallback(filename), goerr.Wrap(err, "failed to fetch content", goerr.V("file", filename))
	}

	markdown := string(data)
	s.mu.Lock()
	s.cache[filename] = cacheEntry{markdown: markdown, cachedAt: now}
	s.mu.Unlock()

	return markdown, nil
}

// Render converts markdown to HTML
func (s *Service) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", goerr.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}

func (s *Service) load(ctx context.Context, filename string) *model.Content {
	markdown, fetchErr := s.Fetch(ctx, filename)

	page := &model.Content{
		Raw:         markdown,
		LastUpdated: s.now().UTC(),
	}
	if fetchErr != nil {
		page.Error = fetchErr.Error()
	}

	rendered, err := s.Render(markdown)
	if err != nil {
		logging.From(ctx).Warn("Failed to render content", "file", filename, "error", err.Error())
		page.HTML = "<p>Error parsing content: " + err.Error() + "</p>"
		return page
	}
	page.HTML = rendered
	return page
}

// About returns the rendered about page
func (s *Service) About(ctx context.Context) *model.Content {
	return s.load(ctx, AboutFile)
}

// Members returns the rendered members page and the members listed on it
func (s *Service) Members(ctx context.Context) *model.Content {
	page := s.load(ctx, MembersFile)
	if page.Error != "" {
		page.Members = FallbackMembers()
	} else {
		page.Members = ExtractMembers(page.Raw)
	}
	return page
}

// Clear drops all cached pages
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

// Status describes the cached pages ordered by file name
func (s *Service) Status() *model.ContentCacheStatus {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	status := &model.ContentCacheStatus{
		Count:   len(s.cache),
		Entries: make([]model.ContentCacheEntryStatus, 0, len(s.cache)),
	}
	for name, entry := range s.cache {
		status.Entries = append(status.Entries, model.ContentCacheEntryStatus{
			Filename: name,
			CachedAt: entry.cachedAt,
			Age:      now.Sub(entry.cachedAt),
		})
	}
	slices.SortFunc(status.Entries, func(a, b model.ContentCacheEntryStatus) int {
		return strings.Compare(a.Filename, b.Filename)
	})
	return status
}
