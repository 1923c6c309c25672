package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/popgraph/pkg/cache"
	"github.com/matzehuels/popgraph/pkg/observability"
)

// Client provides shared HTTP functionality for API clients.
// It handles response caching and common request headers. Requests are
// issued once; failures are returned to the caller without retry.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client with the given cache backend and default headers.
// Cache keys are scoped by namespace and entries expire after ttl.
// Headers are applied to all requests made through this client.
// Pass nil for backend to disable caching and nil for headers if no default
// headers are needed.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client. nil is ignored.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SetKeyer replaces the cache keyer. nil is ignored.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// CachedRaw returns the response body stored under key, or calls fetch and
// caches its result. If refresh is true the cache is bypassed but the fresh
// body is still stored. hit reports whether the bytes came from the cache.
func (c *Client) CachedRaw(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) (data []byte, hit bool, err error) {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}
	data, err = fetch()
	if err != nil {
		return nil, false, err
	}
	if err := c.cache.Set(ctx, k, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, false, nil
}

// GetRaw performs an HTTP GET request and returns the response body.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// Decode JSON-decodes r into v with json.Number for numbers.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeBytes is [Decode] over a byte slice.
func DecodeBytes(data []byte, v any) error {
	return Decode(bytes.NewReader(data), v)
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
