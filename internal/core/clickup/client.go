package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/ariadng/clickup-mcp/internal/core"
	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

const (
	// DefaultBaseURL is the ClickUp v2 REST root.
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 100
	DefaultCacheTTL  = 5 * time.Minute

	maxResponseBytes = 16 << 20
)

// ResponseCache stores GET response bodies.
type ResponseCache interface {
	GetResponse(ctx context.Context, key string) (*core.CachedResponse, error)
	SetResponse(ctx context.Context, key string, body []byte, statusCode int, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) (int64, error)
}

// CacheRecorder is implemented by metrics recorders that also count
// response cache lookups.
type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

// Options configures a Client.
type Options struct {
	APIKey          string
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
	RateLimitPolicy engine.RateLimitPolicy
	MaxRetries      int
	RetryDelay      time.Duration

	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    engine.Recorder
	Cache      ResponseCache
	CacheTTL   time.Duration

	// Clock and Sleep override time for tests.
	Clock func() time.Time
	Sleep engine.SleepFunc
}

// Client is a ClickUp API session. It owns its rate limiter; create one per
// API key.
type Client struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
	Executor   *engine.Executor
	Cache      ResponseCache
	CacheTTL   time.Duration
	Logger     *logging.Logger
}

// NewClient returns a client with defaults applied.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(timeout)
	}

	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	limiter := engine.NewRateLimiter(rateLimit, opts.RateLimitWindow)
	limiter.Clock = opts.Clock

	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = engine.DefaultBaseDelay
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	policy := opts.RateLimitPolicy
	if policy == "" {
		policy = engine.PolicyFail
	}

	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "clickup-mcp"
	}

	return &Client{
		BaseURL:    baseURL,
		APIKey:     strings.TrimSpace(opts.APIKey),
		UserAgent:  userAgent,
		HTTPClient: httpClient,
		Executor: &engine.Executor{
			Limiter: limiter,
			Policy:  policy,
			Retry: engine.RetryPolicy{
				MaxRetries: maxRetries,
				BaseDelay:  retryDelay,
				Sleep:      opts.Sleep,
			},
			Logger:  opts.Logger,
			Metrics: opts.Metrics,
		},
		Cache:    opts.Cache,
		CacheTTL: cacheTTL,
		Logger:   opts.Logger,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// RateLimitStatus reports the current outbound window.
func (c *Client) RateLimitStatus() core.RateLimitStatus {
	if c == nil || c.Executor == nil {
		return core.RateLimitStatus{}
	}
	return c.Executor.Limiter.Status()
}

// request is one resolved call.
type request struct {
	op     operation
	params map[string]string
	query  url.Values
	body   any
	fresh  bool
}

// do runs req through the cache and executor and decodes the response into
// out. Cache hits skip the limiter and never reach the network.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if c == nil {
		return &engine.Error{Kind: engine.KindUnknown, Message: "clickup client not configured", Op: req.op.label}
	}

	path, err := req.op.resolve(req.params)
	if err != nil {
		return err
	}

	var payload []byte
	if req.body != nil {
		payload, err = json.Marshal(req.body)
		if err != nil {
			return &engine.Error{Kind: engine.KindValidationFailed, Message: fmt.Sprintf("encode request: %v", err), Op: req.op.label, Err: err}
		}
	}

	key := cacheKey(req.op.method, path, req.query)
	if !req.op.mutates() && !req.fresh {
		if body, ok := c.cached(ctx, key); ok {
			if err := decode(req.op.label, body, out); err == nil {
				return nil
			}
		}
	}

	body, err := engine.Execute(ctx, c.Executor, req.op.label, func(ctx context.Context) ([]byte, error) {
		return c.send(ctx, req.op.method, path, req.query, payload)
	})
	if err != nil {
		return err
	}

	if req.op.mutates() {
		c.invalidate(ctx, req)
	} else {
		c.store(ctx, key, body)
	}

	return decode(req.op.label, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.UserAgent)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newHTTPError(method, path, resp, respBody)
	}

	return respBody, nil
}

// apiErrorBody is the ClickUp error payload.
type apiErrorBody struct {
	Err   string `json:"err"`
	ECode string `json:"ECODE"`
}

func newHTTPError(method, path string, resp *http.Response, body []byte) *engine.HTTPError {
	herr := &engine.HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Err != "" {
		herr.Message = parsed.Err
		herr.ErrorCode = parsed.ECode
	} else {
		herr.Message = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		herr.RetryAfter = engine.RetryAfterFromHeader(resp.Header, time.Now())
	}

	return herr
}

func decode(label string, body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &engine.Error{Kind: engine.KindUnknown, Message: fmt.Sprintf("decode response: %v", err), Op: label, Err: err}
	}
	return nil
}

func cacheKey(method, path string, query url.Values) string {
	return method + " " + path + "?" + query.Encode()
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.Cache == nil {
		return nil, false
	}
	entry, err := c.Cache.GetResponse(ctx, key)
	if err != nil {
		c.warn("Response cache read failed", key, err)
		return nil, false
	}
	c.recordLookup(entry != nil)
	if entry == nil {
		return nil, false
	}
	if c.Logger != nil {
		c.Logger.Debug("Response cache hit", zap.String("cache_key", key))
	}
	return entry.Body, true
}

func (c *Client) recordLookup(hit bool) {
	if c.Executor == nil {
		return
	}
	if rec, ok := c.Executor.Metrics.(CacheRecorder); ok {
		rec.RecordCacheLookup(hit)
	}
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.SetResponse(ctx, key, body, http.StatusOK, c.CacheTTL); err != nil {
		c.warn("Response cache write failed", key, err)
	}
}

// invalidate drops cached reads a mutation may have changed.
func (c *Client) invalidate(ctx context.Context, req request) {
	if c.Cache == nil {
		return
	}

	var prefixes []string
	switch req.op {
	case opCreateTask:
		prefixes = append(prefixes, cacheKeyPrefix(opGetTasks, req.params))
	case opUpdateTask:
		prefixes = append(prefixes,
			cacheKeyPrefix(opGetTask, req.params),
			http.MethodGet+" /list/",
		)
	}

	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if _, err := c.Cache.InvalidatePrefix(ctx, prefix); err != nil {
			c.warn("Response cache invalidation failed", prefix, err)
		}
	}
}

func cacheKeyPrefix(op operation, params map[string]string) string {
	path, err := op.resolve(params)
	if err != nil {
		return ""
	}
	return op.method + " " + path + "?"
}

func (c *Client) warn(msg, key string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warn(msg, zap.String("cache_key", key), zap.Error(err))
}
