package fallback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/api"
	"comicshelf/internal/api/mock"
	"comicshelf/internal/logger"
	"comicshelf/internal/models"
)

// failingProvider simulates an unreachable backend for reads while
// rejecting mutations with the same error.
type failingProvider struct {
	api.Provider
	err error
}

func (f *failingProvider) ListComics(ctx context.Context, params api.ListParams) (*models.ComicPage, error) {
	return nil, f.err
}

func (f *failingProvider) Genres(ctx context.Context) ([]string, error) {
	return nil, f.err
}

func (f *failingProvider) ComicByID(ctx context.Context, id string) (*models.Comic, error) {
	return nil, f.err
}

func (f *failingProvider) AddBookmark(ctx context.Context, comicID string) (*models.BookmarkedComic, error) {
	return nil, f.err
}

func newFallback(err error) *Provider {
	primary := &failingProvider{err: err}
	backup := mock.NewProvider(0, logger.Get())
	return New(primary, backup, logger.Get())
}

func TestReadsDegradeOnTransientError(t *testing.T) {
	p := newFallback(&api.TransientError{Err: context.DeadlineExceeded})
	ctx := context.Background()

	page, err := p.ListComics(ctx, api.ListParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Comics)

	genres, err := p.Genres(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, genres)
}

func TestReadsDegradeOnServerError(t *testing.T) {
	p := newFallback(&api.APIError{StatusCode: 503})

	comic, err := p.ComicByID(context.Background(), "8")
	require.NoError(t, err)
	assert.Equal(t, "Tower of God", comic.Title)
}

func TestTerminalErrorsPassThrough(t *testing.T) {
	notFound := &api.APIError{StatusCode: 404, Message: "Comic not found"}
	p := newFallback(notFound)

	_, err := p.ComicByID(context.Background(), "8")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestMutationsNeverFallBack(t *testing.T) {
	transient := &api.TransientError{Err: context.DeadlineExceeded}
	p := newFallback(transient)

	_, err := p.AddBookmark(context.Background(), "1")
	require.Error(t, err)
	var gotTransient *api.TransientError
	assert.ErrorAs(t, err, &gotTransient)
}
