// Package cached wraps a Provider with read-through TTL caching for
// the hot listing operations. Mutations and per-user state pass
// through untouched; stale entries simply expire.
package cached

import (
	"context"
	"time"

	"comicshelf/internal/api"
	"comicshelf/internal/cache"
	"comicshelf/internal/logger"
	"comicshelf/internal/metrics"
	"comicshelf/internal/models"
)

// Default TTLs per operation family
const (
	DefaultFeaturedTTL = 5 * time.Minute
	DefaultLatestTTL   = 2 * time.Minute
	DefaultGenresTTL   = 10 * time.Minute
	DefaultListingTTL  = 5 * time.Minute
)

// TTLs configures how long each operation family stays fresh. Zero
// fields fall back to the defaults above.
type TTLs struct {
	Featured time.Duration
	Latest   time.Duration
	Genres   time.Duration
	Listing  time.Duration
}

func (t TTLs) withDefaults() TTLs {
	if t.Featured == 0 {
		t.Featured = DefaultFeaturedTTL
	}
	if t.Latest == 0 {
		t.Latest = DefaultLatestTTL
	}
	if t.Genres == 0 {
		t.Genres = DefaultGenresTTL
	}
	if t.Listing == 0 {
		t.Listing = DefaultListingTTL
	}
	return t
}

// Provider decorates a base Provider with caching. Operations not
// overridden here are served by the embedded base directly.
type Provider struct {
	api.Provider
	ttls    TTLs
	pages   cache.Cache[string, *models.ComicPage]
	comics  cache.Cache[string, []models.Comic]
	genres  cache.Cache[string, []string]
	metrics metrics.Collector
}

var _ api.Provider = (*Provider)(nil)

// New wraps base with read-through caches
func New(base api.Provider, ttls TTLs, log *logger.Logger) *Provider {
	return &Provider{
		Provider: base,
		ttls:     ttls.withDefaults(),
		pages:    cache.NewMemory[string, *models.ComicPage](log),
		comics:   cache.NewMemory[string, []models.Comic](log),
		genres:   cache.NewMemory[string, []string](log),
		metrics:  metrics.Nop(),
	}
}

// WithMetrics reports cache hits and misses to m
func (p *Provider) WithMetrics(m metrics.Collector) *Provider {
	p.metrics = m
	return p
}

// fill is GetOrFill plus hit/miss accounting
func fill[V any](p *Provider, c cache.Cache[string, V], op, key string, ttl time.Duration, fn func() (V, error)) (V, error) {
	if val, found := c.Get(key); found {
		p.metrics.CacheHit(op)
		return val, nil
	}
	p.metrics.CacheMiss(op)
	return cache.GetOrFill(c, key, ttl, fn)
}

func (p *Provider) ListComics(ctx context.Context, params api.ListParams) (*models.ComicPage, error) {
	params = params.Normalize()
	key := cache.Key("comics", params.Page, params.Limit, params.Sort, params.Genres, params.Status)
	return fill(p, p.pages, "comics", key, p.ttls.Listing, func() (*models.ComicPage, error) {
		return p.Provider.ListComics(ctx, params)
	})
}

func (p *Provider) FeaturedComics(ctx context.Context) ([]models.Comic, error) {
	return fill(p, p.comics, "featured", cache.Key("featured"), p.ttls.Featured, func() ([]models.Comic, error) {
		return p.Provider.FeaturedComics(ctx)
	})
}

func (p *Provider) LatestComics(ctx context.Context, page, limit int) (*models.ComicPage, error) {
	// Key on normalized values so (0,0) and the explicit defaults
	// share one entry
	params := api.ListParams{Page: page, Limit: limit}.Normalize()
	key := cache.Key("latest", params.Page, params.Limit)
	return fill(p, p.pages, "latest", key, p.ttls.Latest, func() (*models.ComicPage, error) {
		return p.Provider.LatestComics(ctx, params.Page, params.Limit)
	})
}

func (p *Provider) Genres(ctx context.Context) ([]string, error) {
	return fill(p, p.genres, "genres", cache.Key("genres"), p.ttls.Genres, func() ([]string, error) {
		return p.Provider.Genres(ctx)
	})
}

// Invalidate drops every cached listing. Exposed for manual refresh
// actions; normal operation relies on TTL expiry alone.
func (p *Provider) Invalidate() {
	p.pages.Clear()
	p.comics.Clear()
	p.genres.Clear()
}
