package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

const (
	userAgent      = "lm-backoffice/1.0"
	defaultTimeout = 30 * time.Second
)

// Client is the back-office REST API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string // Optional: current auth token
	logger     *log.Logger
	limiter    *rate.Limiter
	cache      *expirable.LRU[string, models.Record]
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the source of the bearer token. It is read on every
// request so a token obtained after login is picked up.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

// WithStaticToken uses a fixed bearer token.
func WithStaticToken(token string) Option {
	return func(c *Client) { c.token = func() string { return token } }
}

// WithLogger enables request logging.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithPrefix("API") }
}

// WithRateLimit allows rps requests per second with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the HTTP client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache sizes the by-ID lookup cache. size <= 0 disables it.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size <= 0 {
			c.cache = nil
			return
		}
		c.cache = expirable.NewLRU[string, models.Record](size, nil, ttl)
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		token:   func() string { return "" },
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		cache:   expirable.NewLRU[string, models.Record](256, nil, 2*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestIDKey struct{}

// WithRequestID makes calls made with ctx send id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID carried by ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// newRequest builds a request against the API root
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to create request", "url", endpoint, "error", err)
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs the request and returns the body of a 2xx response
func (c *Client) send(req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	requestID := req.Header.Get("X-Request-ID")
	if c.logger != nil {
		c.logger.Info(req.Method, "endpoint", req.URL.Path, "request_id", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Request failed", "url", req.URL.String(), "error", err)
		}
		return nil, fmt.Errorf("failed to %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to read response", "url", req.URL.String(), "error", err)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body, requestID)
		if c.logger != nil {
			c.logger.Error("API error", "status", resp.StatusCode, "message", apiErr.Message, "request_id", requestID)
		}
		return nil, apiErr
	}
	return body, nil
}

// get performs a GET and returns the body
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

// sendJSON encodes payload as the request body
func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

// list fetches an endpoint returning a record collection and validates it
// against the entity schema. Invalid records are dropped and logged.
func (c *Client) list(ctx context.Context, entity models.Entity, path string, query url.Values) ([]models.Record, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	records, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c.validate(entity, records), nil
}

func (c *Client) validate(entity models.Entity, records []models.Record) []models.Record {
	valid, errs := models.SchemaFor(entity).Partition(records)
	if len(errs) > 0 && c.logger != nil {
		c.logger.Warn("Dropped invalid records", "entity", entity, "count", len(errs), "first", errs[0])
	}
	return valid
}

// byID fetches a single record through the lookup cache
func (c *Client) byID(ctx context.Context, entity models.Entity, path, id string) (models.Record, error) {
	key := cacheKey(entity, id)
	if c.cache != nil {
		if r, ok := c.cache.Get(key); ok {
			return r.Clone(), nil
		}
	}

	body, err := c.get(ctx, path+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	r, err := decodeOne(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.cache != nil {
		c.cache.Add(key, r.Clone())
	}
	return r, nil
}

// invalidate drops a cached record after it was changed
func (c *Client) invalidate(entity models.Entity, id string) {
	if c.cache != nil {
		c.cache.Remove(cacheKey(entity, id))
	}
}

func cacheKey(entity models.Entity, id string) string {
	return string(entity) + ":" + id
}
