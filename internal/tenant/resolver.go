package tenant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"azdo-mcp/internal/metrics"
	"azdo-mcp/pkg/logging"
)

const (
	// DefaultBaseURL is the identity service that reports organization tenants.
	DefaultBaseURL = "https://vssps.dev.azure.com"

	// ResourceTenantHeader carries the organization's directory tenant.
	ResourceTenantHeader = "X-VSS-ResourceTenant"

	// DefaultCacheTTL is how long a cached lookup is used without refreshing.
	DefaultCacheTTL = 7 * 24 * time.Hour

	defaultLookupTimeout = 10 * time.Second
)

// Resolver looks up the directory tenant that backs an Azure DevOps
// organization.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	ttl        time.Duration
	now        func() time.Time

	group singleflight.Group
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithBaseURL points lookups at a different identity endpoint.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.httpClient = c }
}

// WithCache enables the persistent cache.
func WithCache(c *Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithTTL sets how long cache entries stay fresh.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a Resolver. Without WithCache every call hits the network.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultLookupTimeout},
		ttl:        DefaultCacheTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the tenant id of org, or "" when the organization is not
// backed by a directory tenant. A fresh cache entry avoids the network; a
// stale one is used when the lookup fails.
func (r *Resolver) Resolve(ctx context.Context, org string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(org))
	if key == "" {
		return "", fmt.Errorf("organization name is required")
	}

	cached, hasCached := r.cache.Get(key)
	if hasCached && r.now().Sub(cached.RefreshedAt) < r.ttl {
		logging.Debug("Tenant", "Using cached tenant for %s", key)
		metrics.TenantLookups.WithLabelValues(metrics.OutcomeCached).Inc()
		return cached.TenantID, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.lookup(ctx, key)
	})
	if err != nil {
		if hasCached {
			logging.Warn("Tenant", "Failed to refresh tenant for %s, using cached value: %v", key, err)
			metrics.TenantLookups.WithLabelValues(metrics.OutcomeStale).Inc()
			return cached.TenantID, nil
		}
		metrics.TenantLookups.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}

	tenantID := v.(string)
	r.cache.Put(key, Entry{TenantID: tenantID, RefreshedAt: r.now()})
	metrics.TenantLookups.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return tenantID, nil
}

// lookup issues an anonymous HEAD request. The identity service answers 404
// and names the tenant in the X-VSS-ResourceTenant header.
func (r *Resolver) lookup(ctx context.Context, org string) (string, error) {
	endpoint := r.baseURL + "/" + url.PathEscape(org)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building tenant lookup request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tenant lookup for %s: %w", org, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		return "", fmt.Errorf("tenant lookup for %s: expected status 404, got %d", org, resp.StatusCode)
	}

	header := strings.TrimSpace(resp.Header.Get(ResourceTenantHeader))
	if header == "" {
		return "", fmt.Errorf("tenant lookup for %s: %s header not found", org, ResourceTenantHeader)
	}

	id, err := uuid.Parse(header)
	if err != nil {
		return "", fmt.Errorf("tenant lookup for %s: invalid tenant id %q: %w", org, header, err)
	}

	// MSA-backed organizations report the nil UUID.
	if id == uuid.Nil {
		logging.Debug("Tenant", "Organization %s is not backed by a directory tenant", org)
		return "", nil
	}

	logging.Debug("Tenant", "Resolved tenant %s for %s", id, org)
	return id.String(), nil
}
