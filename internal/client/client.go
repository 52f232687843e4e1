package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ESClient defines the read-only calls the metadata collectors make against a cluster.
type ESClient interface {
	GetRoot(ctx context.Context) (*RootInfo, error)
	GetClusterHealth(ctx context.Context) (*ClusterHealth, error)
	GetNodes(ctx context.Context) ([]NodeInfo, error)
	GetIndices(ctx context.Context) ([]IndexInfo, error)
	ListIndexNames(ctx context.Context) ([]string, error)
	GetMapping(ctx context.Context, index string) (*IndexMappingResponse, error)
	GetSettings(ctx context.Context, index string) (*IndexSettingsResponse, error)
	Ping(ctx context.Context) error
	BaseURL() string
}

// RequestObserver is notified after every HTTP call. endpoint is a fixed
// label ("root", "mapping", ...) rather than the concrete path.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, err error, elapsed time.Duration)
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL            string
	Auth               Auth
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	// RequestsPerSecond bounds the request rate against the cluster. Zero
	// or negative disables limiting.
	RequestsPerSecond float64
	Burst             int
	Observer          RequestObserver
}

// DefaultClient implements ESClient using the standard net/http package.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	limiter *rate.Limiter
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NewDefaultClient constructs a DefaultClient from the given config.
// It configures TLS skip-verify, request timeout and the optional rate limit.
// Returns an error if BaseURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Auth == nil {
		cfg.Auth = NoAuth{}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	c := &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the configured base URL of the Elasticsearch cluster.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

// doGet performs a GET request to the given path (relative to BaseURL).
// It sets Accept: application/json and the configured credentials.
// Returns the response body bytes or an error on non-2xx status.
func (c *DefaultClient) doGet(ctx context.Context, endpoint, path string) (body []byte, err error) {
	status := 0
	start := time.Now()
	if c.config.Observer != nil {
		defer func() {
			c.config.Observer.ObserveRequest(endpoint, status, err, time.Since(start))
		}()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	c.config.Auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	const maxResponseBytes = 32 * 1024 * 1024
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	return body, nil
}

// Ping checks connectivity by calling the API root with a 5s timeout.
func (c *DefaultClient) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.doGet(pingCtx, "root", endpointRoot)
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
