// Package client provides the ClinicalTrials.gov v2 HTTP client with
// optional response caching, upstream rate limiting, and error handling.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinsight/trial-search/pkg/cache"
	"github.com/clinsight/trial-search/pkg/ratelimit"
)

// DefaultBaseURL is the ClinicalTrials.gov v2 studies endpoint.
const DefaultBaseURL = "https://clinicaltrials.gov/api/v2/studies"

// Prometheus metrics for upstream API operations.
var (
	ctgovRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctgov_requests_total",
		Help: "Total ClinicalTrials.gov requests by status",
	}, []string{"status"})

	ctgovRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ctgov_request_duration_seconds",
		Help:    "ClinicalTrials.gov request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	ctgovErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctgov_errors_total",
		Help: "Total ClinicalTrials.gov errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and local limiter blocks.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the ClinicalTrials.gov API client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the studies endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// User-Agent header sent on every request.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Redis client for response caching and rate-limit state.
	// nil disables both; every request then goes straight upstream.
	Redis *redis.Client

	// CacheTTL is how long a page response stays cached.
	CacheTTL time.Duration

	// RatePerMinute is the upstream request budget per minute.
	RatePerMinute int

	// Timeout for a single upstream request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		UserAgent:     userAgent,
		CacheTTL:      5 * time.Minute,
		RatePerMinute: 50,
		Timeout:       30 * time.Second,
	}
}

// New creates a new ClinicalTrials.gov client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "ctgov-client").Logger()

	var cacheManager *cache.Manager
	var limiter *ratelimit.Limiter
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
		limiter = ratelimit.NewLimiter(cfg.Redis, cfg.RatePerMinute, logger)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cacheManager,
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Do performs an upstream request and returns the response body.
// Failures are never partially recovered: a transport error or non-2xx
// status yields a nil body and an *APIError or wrapped network error.
// There are no retries.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	ctx := req.Context()

	startTime := time.Now()
	defer func() {
		ctgovRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{
		Endpoint:    req.URL.Path,
		QueryParams: req.URL.Query(),
	}

	// Cache lookup first so cached pages cost no rate budget.
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
		if entry != nil {
			c.logger.Debug().
				Str("key", cacheKey.String()).
				Msg("Serving upstream page from cache")
			return entry.Data, nil
		}
	}

	if c.limiter != nil {
		allowed, err := c.limiter.Allow(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Rate limit check failed, allowing request")
		} else if !allowed {
			ctgovRequestsTotal.WithLabelValues("rate_limited").Inc()
			ctgovErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, &APIError{
				Class:   ErrorClassRateLimit,
				Message: "local request budget exhausted",
			}
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", req.URL.String()).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("Upstream request failed")
		ctgovErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		ctgovRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	ctgovRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := classifyStatus(resp.StatusCode)
		ctgovErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ctgovErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if c.cache != nil {
		entry := cache.NewEntry(body, resp.StatusCode, c.config.CacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("key", cacheKey.String()).
				Dur("ttl", entry.TTL()).
				Msg("Cached upstream page")
		}
	}

	return body, nil
}

// GetStudies performs a GET against the studies endpoint with the given
// query parameters.
func (c *Client) GetStudies(ctx context.Context, query url.Values) ([]byte, error) {
	u := c.config.BaseURL
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// classifyStatus categorizes an HTTP status for observability and handling.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
