package catmaid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flybrains/neuropub/pkg/cache"
)

// Sentinel errors for server communication.
var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for 401/403 responses, usually a missing
	// or invalid API token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork is returned for connection failures and 5xx responses.
	ErrNetwork = errors.New("network error")
)

const (
	// DefaultCacheTTL is how long raw responses stay valid on disk.
	DefaultCacheTTL = 24 * time.Hour

	// skeletonLRUSize bounds the per-run skeleton memoization. Exports walk
	// skeletons in sorted order and touch each one once, so this only needs
	// to absorb repeated lookups within one run.
	skeletonLRUSize = 512
)

// Client talks to one project on a CATMAID server.
//
// Raw response bytes are cached through the configured backend with a TTL;
// decoded skeletons are additionally memoized for the lifetime of the
// client (one export run) in an LRU. Create a fresh client per run - the
// memoization must not outlive it.
type Client struct {
	http    *http.Client
	backend cache.Cache
	ttl     time.Duration
	server  string
	project int
	creds   Credentials
	refresh bool

	skeletons *lru.Cache[int64, *Skeleton]
}

// Options configures a Client.
type Options struct {
	Backend  cache.Cache   // response cache backend (nil = no caching)
	CacheTTL time.Duration // response TTL (default: DefaultCacheTTL)
	Refresh  bool          // bypass the response cache
}

// NewClient creates a client for the server and project named in creds.
func NewClient(creds Credentials, opts Options) (*Client, error) {
	if creds.Server == "" {
		return nil, ErrMissingServer
	}
	if opts.Backend == nil {
		opts.Backend = cache.NewNullCache()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	skeletons, err := lru.New[int64, *Skeleton](skeletonLRUSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:      &http.Client{Timeout: 60 * time.Second},
		backend:   opts.Backend,
		ttl:       opts.CacheTTL,
		server:    strings.TrimRight(creds.Server, "/"),
		project:   creds.ProjectID,
		creds:     creds,
		refresh:   opts.Refresh,
		skeletons: skeletons,
	}, nil
}

// Close releases the cache backend.
func (c *Client) Close() error { return c.backend.Close() }

// url builds a project-scoped endpoint URL with optional query parameters.
func (c *Client) url(path string, query url.Values) string {
	u := fmt.Sprintf("%s/%d/%s", c.server, c.project, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs a GET request and returns the raw response body, going
// through the response cache unless the client was created with Refresh.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key("catmaid", rawURL)
	if !c.refresh {
		if data, ok, _ := c.backend.Get(ctx, key); ok {
			return data, nil
		}
	}

	var data []byte
	err := retryWithBackoff(ctx, func() error {
		var err error
		data, err = c.doRequest(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.backend.Set(ctx, key, data, c.ttl)
	return data, nil
}

// getJSON performs a cached GET request and JSON-decodes the body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	data, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.creds.APIToken != "" {
		req.Header.Set("X-Authorization", "Token "+c.creds.APIToken)
	}
	if c.creds.HTTPUser != "" {
		req.SetBasicAuth(c.creds.HTTPUser, c.creds.HTTPPassword)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// checkStatus maps HTTP status codes to sentinel errors. Server-side
// failures are retryable; client-side failures are not.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= 500:
		return retryable(fmt.Errorf("%w: HTTP %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: HTTP %d", ErrNetwork, code)
	}
}
