package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/api"
	"comicshelf/internal/logger"
)

func newTestProvider() *Provider {
	return NewProvider(0, logger.Get())
}

func TestListComicsFiltersAndPaginates(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	page, err := p.ListComics(ctx, api.ListParams{Genres: []string{"Action", "Fantasy"}, Status: "ongoing"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Comics)
	for _, c := range page.Comics {
		assert.True(t, c.HasGenre("Action"))
		assert.True(t, c.HasGenre("Fantasy"))
		assert.Equal(t, "Ongoing", c.Status)
	}

	small, err := p.ListComics(ctx, api.ListParams{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 9, small.Total)
	assert.Equal(t, 3, small.TotalPages)
	assert.Len(t, small.Comics, 4)
}

func TestFeaturedComics(t *testing.T) {
	p := newTestProvider()

	featured, err := p.FeaturedComics(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, 2)
	for _, c := range featured {
		assert.True(t, c.IsFeatured)
	}
}

func TestComicByID(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	comic, err := p.ComicByID(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "Tower of God", comic.Title)
	assert.NotEmpty(t, comic.Description)
	assert.Len(t, comic.Chapters, 10)

	_, err = p.ComicByID(ctx, "999")
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = p.ComicByID(ctx, "")
	var valErr *api.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestChapterValidation(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	chapter, err := p.Chapter(ctx, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, chapter.Number)
	assert.Len(t, chapter.Images, 10)

	_, err = p.Chapter(ctx, "1", 0)
	var valErr *api.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSearchComics(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	byTitle, err := p.SearchComics(ctx, "tower")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Tower of God", byTitle[0].Title)

	byGenre, err := p.SearchComics(ctx, "martial")
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, "19", byGenre[0].ID)
}

func TestAuthLifecycle(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	_, err := p.CurrentUser(ctx)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	session, err := p.Login(ctx, "reader@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "reader@example.com", session.User.Email)

	user, err := p.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)

	refreshed, err := p.RefreshToken(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed)

	require.NoError(t, p.Logout(ctx))
	_, err = p.CurrentUser(ctx)
	assert.Error(t, err)
}

func TestLoginValidatesCredentials(t *testing.T) {
	p := newTestProvider()

	_, err := p.Login(context.Background(), "", "hunter2")
	var valErr *api.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "email", valErr.Param)
}

func TestAddBookmarkUnknownComic(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	before, err := p.Bookmarks(ctx)
	require.NoError(t, err)

	_, err = p.AddBookmark(ctx, "does-not-exist")
	assert.ErrorIs(t, err, api.ErrNotFound)

	after, err := p.Bookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed bookmark must not change state")
}

func TestBookmarkLifecycle(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	bookmark, err := p.AddBookmark(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", bookmark.ID)
	assert.True(t, bookmark.IsNew)

	// Adding again is idempotent
	_, err = p.AddBookmark(ctx, "1")
	require.NoError(t, err)
	list, err := p.Bookmarks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, p.RemoveBookmark(ctx, "1"))
	list, err = p.Bookmarks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRateComic(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	_, err := p.RateComic(ctx, "1", 4.3, "")
	var valErr *api.ValidationError
	assert.ErrorAs(t, err, &valErr)

	rated, err := p.RateComic(ctx, "1", 4.5, "great art")
	require.NoError(t, err)
	assert.Equal(t, 4.5, rated.Rating)

	// Re-rating replaces, not appends
	_, err = p.RateComic(ctx, "1", 3.0, "")
	require.NoError(t, err)
	ratings, err := p.Ratings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 3.0, ratings[0].Rating)
}

func TestAddToHistoryUpdatesProgress(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	_, err := p.AddToHistory(ctx, "7", "chapter-5", 5)
	require.NoError(t, err)
	item, err := p.AddToHistory(ctx, "7", "chapter-6", 6)
	require.NoError(t, err)
	assert.Equal(t, "Omniscient Reader's Viewpoint", item.ComicTitle)

	history, err := p.ReadingHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 6, history[0].ChapterNumber, "newest entry first")

	bookmarks, err := p.Bookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, 6, bookmarks[0].LastReadChapter)
}

func TestNotifications(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	notifs, err := p.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	assert.False(t, notifs[0].Read)

	require.NoError(t, p.MarkNotificationRead(ctx, notifs[0].ID))
	notifs, err = p.Notifications(ctx)
	require.NoError(t, err)
	assert.True(t, notifs[0].Read)

	err = p.MarkNotificationRead(ctx, "notif-999")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestLatencyHonorsCancellation(t *testing.T) {
	p := NewProvider(5*time.Second, logger.Get())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := p.Genres(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
