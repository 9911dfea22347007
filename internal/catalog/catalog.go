// Package catalog talks to the central replica catalog. The daemon only needs
// two read capabilities from it: per-name metadata and per-RSE attributes.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/edgecache/cachereport/internal/domain"
)

// Metadata keys the daemon cares about
const (
	MetaBytes   = "bytes"
	MetaAdler32 = "adler32"

	// AttrVolatile flags an RSE as ephemeral cache-tier storage
	AttrVolatile = "volatile"
)

// Client is the injected catalog capability set. Implemented by RESTClient in
// production and by MemoryClient in tests.
type Client interface {
	// GetMetadata returns catalog-known metadata for a logical name.
	// Returns domain.ErrNotRegistered when the name is absent.
	GetMetadata(ctx context.Context, scope, name string) (map[string]any, error)

	// GetRSEAttributes returns the attribute map of a storage endpoint.
	// Returns domain.ErrRSENotFound when the RSE is unknown.
	GetRSEAttributes(ctx context.Context, rse string) (map[string]any, error)
}

// RESTClient is a thin HTTP implementation of Client
type RESTClient struct {
	baseURL string
	client  *http.Client
}

// NewRESTClient creates a catalog client for the given base URL
func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetMetadata implements Client
func (c *RESTClient) GetMetadata(ctx context.Context, scope, name string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/dids/%s%s/meta", c.baseURL, url.PathEscape(scope), name)
	meta, err := c.getJSON(ctx, endpoint)
	if err == errHTTPNotFound {
		return nil, fmt.Errorf("%w: %s:%s", domain.ErrNotRegistered, scope, name)
	}
	return meta, err
}

// GetRSEAttributes implements Client
func (c *RESTClient) GetRSEAttributes(ctx context.Context, rse string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/rses/%s/attr", c.baseURL, url.PathEscape(rse))
	attrs, err := c.getJSON(ctx, endpoint)
	if err == errHTTPNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrRSENotFound, rse)
	}
	return attrs, err
}

var errHTTPNotFound = fmt.Errorf("not found")

func (c *RESTClient) getJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errHTTPNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed catalog response: %w", err)
	}
	return out, nil
}
