// Package fallback degrades read operations to the in-process mock
// when the real backend is unreachable, so browsing keeps working
// offline. Mutations and auth never fall back: silently writing to the
// mock would lose user data.
package fallback

import (
	"context"

	"comicshelf/internal/api"
	"comicshelf/internal/logger"
	"comicshelf/internal/metrics"
	"comicshelf/internal/models"
)

// Provider wraps a primary Provider and serves reads from backup when
// the primary fails with a transient or server-side error.
type Provider struct {
	api.Provider
	backup  api.Provider
	logger  *logger.Logger
	metrics metrics.Collector
}

var _ api.Provider = (*Provider)(nil)

// New wraps primary with read fallback to backup
func New(primary, backup api.Provider, log *logger.Logger) *Provider {
	return &Provider{
		Provider: primary,
		backup:   backup,
		logger:   log,
		metrics:  metrics.Nop(),
	}
}

// WithMetrics counts degraded reads on m
func (p *Provider) WithMetrics(m metrics.Collector) *Provider {
	p.metrics = m
	return p
}

// degrade reports whether an error warrants serving the backup copy.
// Terminal answers from the backend (validation, 4xx, shape errors)
// are real answers and pass through.
func (p *Provider) degrade(op string, err error) bool {
	if !api.IsRetryable(err) {
		return false
	}
	p.logger.Warn("Backend unavailable, serving offline catalog", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	p.metrics.FallbackServed(op)
	return true
}

func (p *Provider) ListComics(ctx context.Context, params api.ListParams) (*models.ComicPage, error) {
	page, err := p.Provider.ListComics(ctx, params)
	if err != nil && p.degrade("ListComics", err) {
		return p.backup.ListComics(ctx, params)
	}
	return page, err
}

func (p *Provider) FeaturedComics(ctx context.Context) ([]models.Comic, error) {
	comics, err := p.Provider.FeaturedComics(ctx)
	if err != nil && p.degrade("FeaturedComics", err) {
		return p.backup.FeaturedComics(ctx)
	}
	return comics, err
}

func (p *Provider) LatestComics(ctx context.Context, page, limit int) (*models.ComicPage, error) {
	result, err := p.Provider.LatestComics(ctx, page, limit)
	if err != nil && p.degrade("LatestComics", err) {
		return p.backup.LatestComics(ctx, page, limit)
	}
	return result, err
}

func (p *Provider) ComicByID(ctx context.Context, id string) (*models.Comic, error) {
	comic, err := p.Provider.ComicByID(ctx, id)
	if err != nil && p.degrade("ComicByID", err) {
		return p.backup.ComicByID(ctx, id)
	}
	return comic, err
}

func (p *Provider) ComicChapters(ctx context.Context, id string) ([]models.Chapter, error) {
	chapters, err := p.Provider.ComicChapters(ctx, id)
	if err != nil && p.degrade("ComicChapters", err) {
		return p.backup.ComicChapters(ctx, id)
	}
	return chapters, err
}

func (p *Provider) Chapter(ctx context.Context, id string, number int) (*models.ChapterDetail, error) {
	detail, err := p.Provider.Chapter(ctx, id, number)
	if err != nil && p.degrade("Chapter", err) {
		return p.backup.Chapter(ctx, id, number)
	}
	return detail, err
}

func (p *Provider) Genres(ctx context.Context) ([]string, error) {
	genres, err := p.Provider.Genres(ctx)
	if err != nil && p.degrade("Genres", err) {
		return p.backup.Genres(ctx)
	}
	return genres, err
}

func (p *Provider) SearchComics(ctx context.Context, query string) ([]models.Comic, error) {
	comics, err := p.Provider.SearchComics(ctx, query)
	if err != nil && p.degrade("SearchComics", err) {
		return p.backup.SearchComics(ctx, query)
	}
	return comics, err
}
