// Package api defines the backend provider contract shared by the real
// REST client, the deterministic mock, and the caching and fallback
// decorators layered on top of them.
package api

import (
	"context"

	"comicshelf/internal/models"
)

// ListParams are the filter, sort, and pagination options for comic
// listings. Zero values mean "unset": page defaults to 1, limit to
// DefaultPageSize, sort to SortLatest.
type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Genres []string
	Status string
}

// DefaultPageSize is used when a listing request does not specify a limit
const DefaultPageSize = 12

// Sort orders accepted by ListComics
const (
	SortLatest = "latest"
	SortAZ     = "a-z"
	SortZA     = "z-a"
)

// Normalize fills defaults into unset fields
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Sort == "" {
		p.Sort = SortLatest
	}
	return p
}

// Provider is the backend contract. Exactly one base implementation is
// selected at construction time (real REST client or in-process mock);
// decorators wrap it for caching and fallback behavior.
type Provider interface {
	// Comics
	ListComics(ctx context.Context, params ListParams) (*models.ComicPage, error)
	FeaturedComics(ctx context.Context) ([]models.Comic, error)
	LatestComics(ctx context.Context, page, limit int) (*models.ComicPage, error)
	ComicByID(ctx context.Context, id string) (*models.Comic, error)
	ComicChapters(ctx context.Context, id string) ([]models.Chapter, error)
	Chapter(ctx context.Context, id string, number int) (*models.ChapterDetail, error)
	Genres(ctx context.Context) ([]string, error)
	SearchComics(ctx context.Context, query string) ([]models.Comic, error)

	// Auth
	Login(ctx context.Context, email, password string) (*models.AuthSession, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthSession, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	RefreshToken(ctx context.Context) (string, error)

	// User state
	Bookmarks(ctx context.Context) ([]models.BookmarkedComic, error)
	AddBookmark(ctx context.Context, comicID string) (*models.BookmarkedComic, error)
	RemoveBookmark(ctx context.Context, comicID string) error
	Ratings(ctx context.Context) ([]models.RatedComic, error)
	RateComic(ctx context.Context, comicID string, rating float64, comment string) (*models.RatedComic, error)
	DeleteRating(ctx context.Context, comicID string) error
	ReadingHistory(ctx context.Context) ([]models.ReadingHistoryItem, error)
	AddToHistory(ctx context.Context, comicID, chapterID string, chapterNumber int) (*models.ReadingHistoryItem, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
