package wiki

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

// Defaults mirror the server-side limits for an ordinary account. Login
// raises the batch and page sizes when the account holds apihighlimits.
const (
	DefaultMaxRetries          = 2
	DefaultMaxLag              = 5
	DefaultThrottleInterval    = 10 * time.Second
	DefaultBatchSize           = 50
	ElevatedBatchSize          = 500
	DefaultPageSize            = 500
	ElevatedPageSize           = 5000
	DefaultUploadChunkExponent = 22
)

// MaxConcurrentRequests limits parallel API calls to prevent overwhelming the server
const MaxConcurrentRequests = 3

// Assertion selects the assert= precondition sent with every request.
// The server rejects the request when the precondition no longer holds,
// which is how a silently dropped login or bot flag becomes loud.
type Assertion int

const (
	AssertNone Assertion = 0
	AssertUser Assertion = 1
	AssertBot  Assertion = 2
)

// Client is one session against one wiki. Connection identity is fixed
// at construction; everything else is configuration the caller may
// adjust between operations, guarded for the concurrent requests that
// read it.
type Client struct {
	// Connection identity
	scheme     string
	host       string
	scriptPath string
	apiURL     string

	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	timeout    time.Duration

	cfg *Config

	// Mutable session configuration
	mu               sync.RWMutex
	defaults         url.Values
	maxRetries       int
	maxLag           int
	throttleInterval time.Duration
	queryLimit       int
	batchMax         int
	pageMax          int
	chunkExponent    int
	assertion        Assertion
	resolveRedirects bool

	// Authentication state, guarded by mu
	username    string
	loggedIn    bool
	tokens      map[string]string
	tokenExpiry time.Time

	// Write throttle
	throttleMu sync.Mutex
	lastWrite  time.Time

	// Site metadata, populated once per session
	siteMu    sync.RWMutex
	site      *SiteInfo
	siteGroup singleflight.Group

	// Watchlist cache
	watchMu       sync.Mutex
	watchlist     map[string]bool
	watchlistLive bool

	// Semaphore to cap concurrent requests
	semaphore chan struct{}
}

// NewClient creates a session for the wiki at cfg.BaseURL.
func NewClient(cfg *Config, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid wiki URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("wiki URL %q must include scheme and host", cfg.BaseURL)
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	// Configure HTTP transport for connection reuse; the transport also
	// negotiates gzip and decodes declared responses transparently.
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	scriptPath := strings.TrimSuffix(u.Path, "/api.php")
	scriptPath = strings.TrimSuffix(scriptPath, "/")

	c := &Client{
		scheme:     u.Scheme,
		host:       u.Host,
		scriptPath: scriptPath,
		apiURL:     u.Scheme + "://" + u.Host + scriptPath + "/api.php",
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		logger:        logger,
		userAgent:     cfg.UserAgent,
		timeout:       cfg.Timeout,
		cfg:           cfg,
		defaults:      url.Values{},
		maxRetries:    cfg.MaxRetries,
		maxLag:        cfg.MaxLag,
		queryLimit:    cfg.QueryLimit,
		batchMax:      DefaultBatchSize,
		pageMax:       DefaultPageSize,
		chunkExponent: cfg.UploadChunkExponent,
		tokens:        make(map[string]string),
		semaphore:     make(chan struct{}, MaxConcurrentRequests),
	}
	if c.chunkExponent <= 0 {
		c.chunkExponent = DefaultUploadChunkExponent
	}
	c.throttleInterval = cfg.ThrottleInterval

	c.defaults.Set("format", "xml")
	if cfg.MaxLag >= 0 {
		c.defaults.Set("maxlag", strconv.Itoa(cfg.MaxLag))
	}
	return c, nil
}

// Scheme returns the connection scheme, https for most wikis.
func (c *Client) Scheme() string { return c.scheme }

// Host returns the wiki's host name.
func (c *Client) Host() string { return c.host }

// ScriptPath returns the path under which api.php lives, usually /w.
func (c *Client) ScriptPath() string { return c.scriptPath }

// APIURL returns the full api.php endpoint.
func (c *Client) APIURL() string { return c.apiURL }

// Username returns the logged-in user, or "" for an anonymous session.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// SetMaxLag sets the cooperative backpressure threshold in seconds.
// Negative disables lag checking by removing the parameter rather than
// sending a negative value.
func (c *Client) SetMaxLag(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxLag = seconds
	if seconds < 0 {
		c.defaults.Del("maxlag")
	} else {
		c.defaults.Set("maxlag", strconv.Itoa(seconds))
	}
}

// MaxLag returns the current backpressure threshold.
func (c *Client) MaxLag() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxLag
}

// SetMaxRetries sets the transport-failure retry budget per request.
func (c *Client) SetMaxRetries(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxRetries = n
}

// MaxRetries returns the transport-failure retry budget.
func (c *Client) MaxRetries() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxRetries
}

// SetThrottle sets the minimum spacing between write operations.
func (c *Client) SetThrottle(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.throttleInterval = interval
}

// Throttle returns the minimum spacing between write operations.
func (c *Client) Throttle() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.throttleInterval
}

// SetQueryLimit caps the records a list query accumulates when the
// caller passes no limit of its own. Zero or negative means unlimited.
func (c *Client) SetQueryLimit(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryLimit = n
}

// QueryLimit returns the session-wide query result cap.
func (c *Client) QueryLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queryLimit
}

// SetAssertions configures the assert= parameter sent with every
// request. AssertNone removes it.
func (c *Client) SetAssertions(a Assertion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assertion = a
	switch {
	case a&AssertBot != 0:
		c.defaults.Set("assert", "bot")
	case a&AssertUser != 0:
		c.defaults.Set("assert", "user")
	default:
		c.defaults.Del("assert")
	}
}

// Assertions returns the configured assertion flags.
func (c *Client) Assertions() Assertion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assertion
}

// SetResolveRedirects makes query operations follow redirects
// server-side. Vectorized queries then re-associate results with the
// titles the caller actually passed.
func (c *Client) SetResolveRedirects(resolve bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolveRedirects = resolve
	if resolve {
		c.defaults.Set("redirects", "1")
	} else {
		c.defaults.Del("redirects")
	}
}

// ResolvesRedirects reports whether redirect resolution is enabled.
func (c *Client) ResolvesRedirects() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolveRedirects
}

// SetUploadChunkExponent sets the upload chunk size to 1<<exp bytes.
func (c *Client) SetUploadChunkExponent(exp int) {
	if exp <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunkExponent = exp
}

// requestDefaults snapshots the default parameters under the read lock
// so an in-flight request never sees a half-updated set.
func (c *Client) requestDefaults() url.Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(url.Values, len(c.defaults))
	for k, vs := range c.defaults {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// pageSize returns the record count to request per result page.
func (c *Client) pageSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageMax
}

// setElevatedLimits switches batch and page sizes between the ordinary
// and apihighlimits tiers.
func (c *Client) setElevatedLimits(elevated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elevated {
		c.batchMax = ElevatedBatchSize
		c.pageMax = ElevatedPageSize
	} else {
		c.batchMax = DefaultBatchSize
		c.pageMax = DefaultPageSize
	}
}

// resetCookies clears all cookies for a fresh login.
func (c *Client) resetCookies() {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c.httpClient.Jar = jar
}

// normalizeLimit ensures limit is within bounds
func normalizeLimit(limit, defaultVal, maxVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > maxVal {
		return maxVal
	}
	return limit
}
