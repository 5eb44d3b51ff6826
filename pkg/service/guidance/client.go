package guidance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/secmon-lab/grc-lookup/pkg/utils/retry"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the public knowledge-search server
const DefaultEndpoint = "https://knowledge-mcp.global.api.aws"

// SearchTool is the tool called for documentation search
const SearchTool = "search_documentation"

// maxResults is sent as max_results with every search
const maxResults = 5

// DefaultConnectPolicy retries initialize 3 times, 3 seconds apart
var DefaultConnectPolicy = retry.Policy{Attempts: 3, BaseDelay: 3 * time.Second, Constant: true}

// Client talks to the knowledge-search service. Until Connect succeeds every
// Guidance call is answered from the fallback table.
type Client struct {
	endpoint      string
	httpClient    *http.Client
	limiter       *rate.Limiter
	connectPolicy retry.Policy
	clientName    string
	clientVersion string
	now           func() time.Time

	connected atomic.Bool

	mu      sync.RWMutex
	session string
	cache   map[string]*model.Guidance
}

var _ interfaces.GuidanceService = &Client{}

// Option configures Client
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit limits outgoing requests to r per second with the given burst
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// WithConnectPolicy overrides DefaultConnectPolicy
func WithConnectPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.connectPolicy = p
	}
}

// WithClientVersion sets the version reported on initialize
func WithClientVersion(version string) Option {
	return func(c *Client) {
		c.clientVersion = version
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a disconnected Client
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:      DefaultEndpoint,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		limiter:       rate.NewLimiter(rate.Limit(2), 4),
		connectPolicy: DefaultConnectPolicy,
		clientName:    "grc-lookup",
		clientVersion: "dev",
		now:           time.Now,
		cache:         make(map[string]*model.Guidance),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether the initialize handshake succeeded
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Connect performs the initialize handshake. On failure the client stays in
// fallback mode and false is returned; it is never an error for callers.
func (c *Client) Connect(ctx context.Context) bool {
	logger := logging.From(ctx).With("endpoint", c.endpoint)

	err := retry.Do(ctx, c.connectPolicy, "connect knowledge search", func(ctx context.Context, attempt int) error {
		logger.Debug("Connecting to knowledge search", "attempt", attempt)
		result, err := c.call(ctx, "initialize", initializeParams{
			ProtocolVersion: ProtocolVersion,
			Capabilities: map[string]any{
				"roots":    map[string]any{"listChanged": false},
				"sampling": map[string]any{},
			},
			ClientInfo: clientInfo{Name: c.clientName, Version: c.clientVersion},
		})
		if err != nil {
			return err
		}

		var init struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		}
		if err := json.Unmarshal(result, &init); err == nil {
			logger.Info("Connected to knowledge search",
				"protocol_version", init.ProtocolVersion,
				"server", init.ServerInfo.Name,
				"server_version", init.ServerInfo.Version)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Knowledge search unavailable, using fallback guidance", "error", err.Error())
		c.connected.Store(false)
		return false
	}

	c.connected.Store(true)
	return true
}

// Disconnect returns the client to fallback mode
func (c *Client) Disconnect() {
	c.connected.Store(false)
	c.setSessionID("")
}

// Ping checks that the server answers a ping request
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.call(ctx, "ping", nil); err != nil {
		return goerr.Wrap(err, "knowledge search ping failed", goerr.V(model.URLKey, c.endpoint))
	}
	return nil
}

// Guidance returns implementation guidance for req. Results are cached per
// control ID; any failure falls back to the static table.
func (c *Client) Guidance(ctx context.Context, req *model.Requirement) *model.Guidance {
	logger := logging.From(ctx).With("control_id", req.ControlID)

	if !c.Connected() {
		logger.Debug("Knowledge search offline, using fallback guidance")
		return c.fallback(req)
	}

	if cached, ok := c.cached(req.ControlID); ok {
		return cached
	}

	query := BuildQuery(req)
	logger.Debug("Searching documentation", "query", query)

	result, err := c.call(ctx, "tools/call", toolCallParams{
		Name: SearchTool,
		Arguments: map[string]any{
			"query":       query,
			"max_results": maxResults,
		},
	})
	if err != nil {
		logger.Warn("Documentation search failed, using fallback guidance", "error", err.Error())
		return c.fallback(req)
	}

	var tr toolResult
	if err := json.Unmarshal(result, &tr); err != nil {
		logger.Warn("Malformed search result, using fallback guidance", "error", err.Error())
		return c.fallback(req)
	}
	if tr.IsError {
		logger.Warn("Search tool reported an error, using fallback guidance", "content", tr.Text())
		return c.fallback(req)
	}

	g := Extract(tr.Text())
	g.LastUpdated = c.now().UTC()
	g.Source = model.GuidanceSourceRemote

	c.mu.Lock()
	c.cache[req.ControlID] = g
	c.mu.Unlock()

	logger.Info("Fetched guidance", "services", len(g.AWSServices), "steps", len(g.ImplementationSteps))
	return g
}

// ClearCache drops all cached guidance
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*model.Guidance)
}

func (c *Client) cached(controlID string) (*model.Guidance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.cache[controlID]
	return g, ok
}

func (c *Client) fallback(req *model.Requirement) *model.Guidance {
	g := Fallback(req)
	g.LastUpdated = c.now().UTC()
	return g
}

func (c *Client) sessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = id
}
