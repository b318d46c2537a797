// Package mock is the in-process Provider used for offline and demo
// operation. It serves a deterministic catalog, applies the same
// filter/sort/paginate semantics the backend would, and simulates
// network latency so consumers exercise their loading states.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"comicshelf/internal/api"
	"comicshelf/internal/logger"
	"comicshelf/internal/models"
)

// signingSecret signs the throwaway session tokens minted in mock mode.
// The tokens only need to look like real sessions to the rest of the
// client; nothing verifies them server-side.
var signingSecret = []byte("comicshelf-mock-session")

// Provider is the deterministic in-memory backend
type Provider struct {
	latency time.Duration
	log     *logger.Logger

	mu            sync.Mutex
	comics        []models.Comic
	genres        []string
	user          models.User
	token         string
	bookmarks     []models.BookmarkedComic
	ratings       []models.RatedComic
	history       []models.ReadingHistoryItem
	notifications []models.Notification
}

var _ api.Provider = (*Provider)(nil)

// NewProvider creates a mock provider with the seeded catalog. latency
// is applied to every operation; pass 0 in tests.
func NewProvider(latency time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		latency:       latency,
		log:           log,
		comics:        seedComics(),
		genres:        seedGenres(),
		user:          seedUser(),
		notifications: seedNotifications(),
	}
}

// wait simulates network latency, honoring context cancellation
func (p *Provider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Provider) ListComics(ctx context.Context, params api.ListParams) (*models.ComicPage, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	params = params.Normalize()

	p.mu.Lock()
	catalog := append([]models.Comic(nil), p.comics...)
	p.mu.Unlock()

	filtered := Filter(catalog, params.Genres, params.Status)
	Sort(filtered, params.Sort)
	return Paginate(filtered, params.Page, params.Limit), nil
}

func (p *Provider) FeaturedComics(ctx context.Context) ([]models.Comic, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var featured []models.Comic
	for _, c := range p.comics {
		if c.IsFeatured {
			featured = append(featured, c)
		}
	}
	return featured, nil
}

func (p *Provider) LatestComics(ctx context.Context, page, limit int) (*models.ComicPage, error) {
	return p.ListComics(ctx, api.ListParams{Page: page, Limit: limit, Sort: api.SortLatest})
}

func (p *Provider) ComicByID(ctx context.Context, id string) (*models.Comic, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.findComic(id)
	if c == nil {
		return nil, fmt.Errorf("comic %q: %w", id, api.ErrNotFound)
	}
	detail := detailFor(*c)
	return &detail, nil
}

func (p *Provider) ComicChapters(ctx context.Context, id string) ([]models.Chapter, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findComic(id) == nil {
		return nil, fmt.Errorf("comic %q: %w", id, api.ErrNotFound)
	}
	return chaptersFor(id), nil
}

func (p *Provider) Chapter(ctx context.Context, id string, number int) (*models.ChapterDetail, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, api.NewValidationError("chapterNumber", fmt.Sprintf("must be >= 1, was %d", number))
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findComic(id) == nil {
		return nil, fmt.Errorf("comic %q: %w", id, api.ErrNotFound)
	}
	return &models.ChapterDetail{
		ID:            fmt.Sprintf("chapter-%d", number),
		Images:        pagesFor(number),
		Title:         fmt.Sprintf("Chapter %d", number),
		Number:        number,
		TotalChapters: 10,
	}, nil
}

func (p *Provider) Genres(ctx context.Context) ([]string, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), p.genres...), nil
}

func (p *Provider) SearchComics(ctx context.Context, query string) ([]models.Comic, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	needle := strings.ToLower(query)
	var matches []models.Comic
	for _, c := range p.comics {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			matches = append(matches, c)
			continue
		}
		for _, g := range c.Genres {
			if strings.Contains(strings.ToLower(g), needle) {
				matches = append(matches, c)
				break
			}
		}
	}
	return matches, nil
}

func (p *Provider) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if err := api.RequireParam(email, "email"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(password, "password"); err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Any credentials are accepted in mock mode
	p.user.Email = email
	token, err := p.mintToken(p.user)
	if err != nil {
		return nil, err
	}
	p.token = token
	return &models.AuthSession{Token: token, User: p.user}, nil
}

func (p *Provider) Register(ctx context.Context, username, email, password string) (*models.AuthSession, error) {
	if err := api.RequireParam(username, "username"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(email, "email"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(password, "password"); err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.user = models.User{
		ID:       "user-" + uuid.NewString(),
		Username: username,
		Email:    email,
		JoinDate: time.Now().Format("2006-01-02"),
		Avatar:   "/avatars/default.png",
	}
	token, err := p.mintToken(p.user)
	if err != nil {
		return nil, err
	}
	p.token = token
	return &models.AuthSession{Token: token, User: p.user}, nil
}

func (p *Provider) Logout(ctx context.Context) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	return nil
}

func (p *Provider) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == "" {
		return nil, &api.APIError{StatusCode: 401, Message: "no authentication token found"}
	}
	user := p.user
	return &user, nil
}

func (p *Provider) RefreshToken(ctx context.Context) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == "" {
		return "", &api.APIError{StatusCode: 401, Message: "no authentication token found"}
	}
	token, err := p.mintToken(p.user)
	if err != nil {
		return "", err
	}
	p.token = token
	return token, nil
}

func (p *Provider) Bookmarks(ctx context.Context) ([]models.BookmarkedComic, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.BookmarkedComic(nil), p.bookmarks...), nil
}

func (p *Provider) AddBookmark(ctx context.Context, comicID string) (*models.BookmarkedComic, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	comic := p.findComic(comicID)
	if comic == nil {
		return nil, fmt.Errorf("comic %q: %w", comicID, api.ErrNotFound)
	}

	for i := range p.bookmarks {
		if p.bookmarks[i].ID == comicID {
			bookmark := p.bookmarks[i]
			return &bookmark, nil
		}
	}

	bookmark := models.BookmarkedComic{
		Comic:     *comic,
		DateAdded: time.Now().Format(time.RFC3339),
		IsNew:     true,
	}
	p.bookmarks = append(p.bookmarks, bookmark)
	return &bookmark, nil
}

func (p *Provider) RemoveBookmark(ctx context.Context, comicID string) error {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return err
	}
	if err := p.wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.bookmarks {
		if p.bookmarks[i].ID == comicID {
			p.bookmarks = append(p.bookmarks[:i], p.bookmarks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (p *Provider) Ratings(ctx context.Context) ([]models.RatedComic, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.RatedComic(nil), p.ratings...), nil
}

func (p *Provider) RateComic(ctx context.Context, comicID string, rating float64, comment string) (*models.RatedComic, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	if !models.ValidRating(rating) {
		return nil, api.NewValidationError("rating", fmt.Sprintf("must be 0-5 in half steps, was %v", rating))
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	comic := p.findComic(comicID)
	if comic == nil {
		return nil, fmt.Errorf("comic %q: %w", comicID, api.ErrNotFound)
	}

	rated := models.RatedComic{
		Comic:     *comic,
		ComicID:   comicID,
		Rating:    rating,
		Comment:   comment,
		DateRated: time.Now().Format(time.RFC3339),
	}

	for i := range p.ratings {
		if p.ratings[i].ComicID == comicID {
			p.ratings[i] = rated
			return &rated, nil
		}
	}
	p.ratings = append(p.ratings, rated)
	return &rated, nil
}

func (p *Provider) DeleteRating(ctx context.Context, comicID string) error {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return err
	}
	if err := p.wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.ratings {
		if p.ratings[i].ComicID == comicID {
			p.ratings = append(p.ratings[:i], p.ratings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (p *Provider) ReadingHistory(ctx context.Context) ([]models.ReadingHistoryItem, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ReadingHistoryItem(nil), p.history...), nil
}

func (p *Provider) AddToHistory(ctx context.Context, comicID, chapterID string, chapterNumber int) (*models.ReadingHistoryItem, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(chapterID, "chapterId"); err != nil {
		return nil, err
	}
	if chapterNumber < 1 {
		return nil, api.NewValidationError("chapterNumber", fmt.Sprintf("must be >= 1, was %d", chapterNumber))
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	comic := p.findComic(comicID)
	if comic == nil {
		return nil, fmt.Errorf("comic %q: %w", comicID, api.ErrNotFound)
	}

	now := time.Now().Format(time.RFC3339)
	item := models.ReadingHistoryItem{
		ID:            "history-" + uuid.NewString(),
		ComicID:       comicID,
		ComicTitle:    comic.Title,
		ComicCover:    comic.Cover,
		ChapterID:     chapterID,
		ChapterNumber: chapterNumber,
		ReadDate:      now,
		LastReadAt:    now,
	}

	// Most recent first
	p.history = append([]models.ReadingHistoryItem{item}, p.history...)

	// Keep the bookmark's progress in step with reading
	updated := false
	for i := range p.bookmarks {
		if p.bookmarks[i].ID == comicID {
			p.bookmarks[i].LastReadChapter = chapterNumber
			updated = true
			break
		}
	}
	if !updated {
		p.bookmarks = append(p.bookmarks, models.BookmarkedComic{
			Comic:           *comic,
			LastReadChapter: chapterNumber,
			DateAdded:       now,
		})
	}

	return &item, nil
}

func (p *Provider) Profile(ctx context.Context) (*models.User, error) {
	return p.CurrentUser(ctx)
}

func (p *Provider) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == "" {
		return nil, &api.APIError{StatusCode: 401, Message: "no authentication token found"}
	}
	if patch.Username != nil {
		p.user.Username = *patch.Username
	}
	if patch.Email != nil {
		p.user.Email = *patch.Email
	}
	if patch.Avatar != nil {
		p.user.Avatar = *patch.Avatar
	}
	user := p.user
	return &user, nil
}

func (p *Provider) Notifications(ctx context.Context) ([]models.Notification, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.notifications...), nil
}

func (p *Provider) MarkNotificationRead(ctx context.Context, id string) error {
	if err := api.RequireParam(id, "notificationId"); err != nil {
		return err
	}
	if err := p.wait(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.notifications {
		if p.notifications[i].ID == id {
			p.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %q: %w", id, api.ErrNotFound)
}

// findComic must be called with the mutex held
func (p *Provider) findComic(id string) *models.Comic {
	for i := range p.comics {
		if p.comics[i].ID == id {
			return &p.comics[i]
		}
	}
	return nil
}

func (p *Provider) mintToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
