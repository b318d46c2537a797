// Package rest implements the Provider contract against the real
// backend over HTTP. Every call validates its parameters before any
// I/O, attaches the bearer token when one is stored, and maps failures
// onto the shared error taxonomy so callers can tell transient faults
// from terminal ones.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"comicshelf/internal/api"
	"comicshelf/internal/logger"
	"comicshelf/internal/models"
	"comicshelf/internal/util"
)

const apiPath = "/api"

// TokenSource stores the session token between requests. The sqlite
// session store implements it; tests use an in-memory one.
type TokenSource interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

// MemoryTokenSource keeps the token in process memory only
type MemoryTokenSource struct {
	token string
}

func (m *MemoryTokenSource) Token() string           { return m.token }
func (m *MemoryTokenSource) SetToken(t string) error { m.token = t; return nil }
func (m *MemoryTokenSource) ClearToken() error       { m.token = ""; return nil }

// Client is the HTTP-backed Provider
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	pacer   *util.Pacer
	logger  *logger.Logger
}

var _ api.Provider = (*Client)(nil)

// NewClient creates a REST client for the given backend base URL.
// tokens may be nil, in which case the session only lives in memory.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	log := logger.Get().With().
		Str("component", "rest_client").
		Logger()

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if tokens == nil {
		tokens = &MemoryTokenSource{}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		pacer:   util.NewPacer(util.DefaultInterval, util.DefaultBurst),
		logger:  &logger.Logger{Logger: log},
	}
}

// doJSON performs one paced request and decodes a 2xx JSON body into
// out (which may be nil for calls that ignore the body).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, reqBody, out interface{}) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPath+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Request failed", map[string]interface{}{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		return &api.TransientError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.TransientError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := c.pacer.OnThrottle(retryAfter(resp))
		c.logger.Warn("Throttled by backend", map[string]interface{}{
			"endpoint": endpoint,
			"wait_ms":  wait.Milliseconds(),
		})
		return &api.TransientError{Err: fmt.Errorf("throttled, retry after %s", wait)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Unexpected status code", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return &api.APIError{StatusCode: resp.StatusCode, Message: serverMessage(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &api.DataShapeError{Err: err}
	}
	return nil
}

// serverMessage extracts the backend's human-readable error, if any
func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// comicsPayload detects a missing "comics" field, which callers treat
// as a malformed response rather than an empty catalog.
type comicsPayload struct {
	Comics     *[]models.Comic `json:"comics"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

func (p *comicsPayload) toPage(log *logger.Logger) (*models.ComicPage, error) {
	if p.Comics == nil {
		return nil, &api.DataShapeError{Field: "comics"}
	}
	valid, dropped := models.ValidComics(*p.Comics)
	if dropped > 0 {
		log.Warn("Dropped comics without an id from listing", map[string]interface{}{
			"dropped": dropped,
		})
	}
	return &models.ComicPage{
		Comics:     valid,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}, nil
}

func (c *Client) ListComics(ctx context.Context, params api.ListParams) (*models.ComicPage, error) {
	params = params.Normalize()

	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("sort", params.Sort)
	if len(params.Genres) > 0 {
		q.Set("genres", strings.Join(params.Genres, ","))
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}

	var payload comicsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/comics?"+q.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toPage(c.logger)
}

func (c *Client) FeaturedComics(ctx context.Context) ([]models.Comic, error) {
	var payload comicsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/comics/featured", nil, &payload); err != nil {
		return nil, err
	}
	page, err := payload.toPage(c.logger)
	if err != nil {
		return nil, err
	}
	return page.Comics, nil
}

func (c *Client) LatestComics(ctx context.Context, page, limit int) (*models.ComicPage, error) {
	params := api.ListParams{Page: page, Limit: limit, Sort: api.SortLatest}.Normalize()

	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))

	var payload comicsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/comics/latest?"+q.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toPage(c.logger)
}

func (c *Client) ComicByID(ctx context.Context, id string) (*models.Comic, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	var comic models.Comic
	if err := c.doJSON(ctx, http.MethodGet, "/comics/"+url.PathEscape(id), nil, &comic); err != nil {
		return nil, err
	}
	return &comic, nil
}

func (c *Client) ComicChapters(ctx context.Context, id string) ([]models.Chapter, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	var payload struct {
		Chapters []models.Chapter `json:"chapters"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/comics/"+url.PathEscape(id)+"/chapters", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Chapters, nil
}

func (c *Client) Chapter(ctx context.Context, id string, number int) (*models.ChapterDetail, error) {
	if err := api.RequireParam(id, "comicId"); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, api.NewValidationError("chapterNumber", fmt.Sprintf("must be >= 1, was %d", number))
	}
	endpoint := fmt.Sprintf("/comics/%s/chapters/%d", url.PathEscape(id), number)
	var detail models.ChapterDetail
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var payload struct {
		Genres []string `json:"genres"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/genres", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *Client) SearchComics(ctx context.Context, query string) ([]models.Comic, error) {
	q := url.Values{}
	q.Set("q", query)

	var payload comicsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	page, err := payload.toPage(c.logger)
	if err != nil {
		return nil, err
	}
	return page.Comics, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	if err := api.RequireParam(email, "email"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(password, "password"); err != nil {
		return nil, err
	}

	body := map[string]string{"email": email, "password": password}
	var session models.AuthSession
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, &api.DataShapeError{Field: "token"}
	}
	if err := c.tokens.SetToken(session.Token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	return &session, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthSession, error) {
	if err := api.RequireParam(username, "username"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(email, "email"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(password, "password"); err != nil {
		return nil, err
	}

	body := map[string]string{"username": username, "email": email, "password": password}
	var session models.AuthSession
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, &api.DataShapeError{Field: "token"}
	}
	if err := c.tokens.SetToken(session.Token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	return &session, nil
}

func (c *Client) Logout(ctx context.Context) error {
	// Best effort on the wire; the local session is cleared regardless
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.tokens.ClearToken(); clearErr != nil {
		return fmt.Errorf("failed to clear session token: %w", clearErr)
	}
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	if c.tokens.Token() == "" {
		return nil, &api.APIError{StatusCode: http.StatusUnauthorized, Message: "no authentication token found"}
	}
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	if c.tokens.Token() == "" {
		return "", &api.APIError{StatusCode: http.StatusUnauthorized, Message: "no authentication token found"}
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, &payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", &api.DataShapeError{Field: "token"}
	}
	if err := c.tokens.SetToken(payload.Token); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}
	return payload.Token, nil
}

func (c *Client) Bookmarks(ctx context.Context) ([]models.BookmarkedComic, error) {
	var payload struct {
		Bookmarks []models.BookmarkedComic `json:"bookmarks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/bookmarks", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Bookmarks, nil
}

func (c *Client) AddBookmark(ctx context.Context, comicID string) (*models.BookmarkedComic, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	body := map[string]string{"comicId": comicID}
	var bookmark models.BookmarkedComic
	if err := c.doJSON(ctx, http.MethodPost, "/user/bookmarks", body, &bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (c *Client) RemoveBookmark(ctx context.Context, comicID string) error {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/user/bookmarks/"+url.PathEscape(comicID), nil, nil)
}

func (c *Client) Ratings(ctx context.Context) ([]models.RatedComic, error) {
	var payload struct {
		Ratings []models.RatedComic `json:"ratings"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/ratings", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Ratings, nil
}

func (c *Client) RateComic(ctx context.Context, comicID string, rating float64, comment string) (*models.RatedComic, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	if !models.ValidRating(rating) {
		return nil, api.NewValidationError("rating", fmt.Sprintf("must be 0-5 in half steps, was %v", rating))
	}
	body := map[string]interface{}{
		"comicId": comicID,
		"rating":  rating,
		"comment": comment,
	}
	var rated models.RatedComic
	if err := c.doJSON(ctx, http.MethodPost, "/user/ratings", body, &rated); err != nil {
		return nil, err
	}
	return &rated, nil
}

func (c *Client) DeleteRating(ctx context.Context, comicID string) error {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/user/ratings/"+url.PathEscape(comicID), nil, nil)
}

func (c *Client) ReadingHistory(ctx context.Context) ([]models.ReadingHistoryItem, error) {
	var payload struct {
		History []models.ReadingHistoryItem `json:"history"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/history", nil, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

func (c *Client) AddToHistory(ctx context.Context, comicID, chapterID string, chapterNumber int) (*models.ReadingHistoryItem, error) {
	if err := api.RequireParam(comicID, "comicId"); err != nil {
		return nil, err
	}
	if err := api.RequireParam(chapterID, "chapterId"); err != nil {
		return nil, err
	}
	if chapterNumber < 1 {
		return nil, api.NewValidationError("chapterNumber", fmt.Sprintf("must be >= 1, was %d", chapterNumber))
	}
	body := map[string]interface{}{
		"comicId":       comicID,
		"chapterId":     chapterID,
		"chapterNumber": chapterNumber,
	}
	var item models.ReadingHistoryItem
	if err := c.doJSON(ctx, http.MethodPost, "/user/history", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPut, "/user/profile", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var payload struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/notifications", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := api.RequireParam(id, "notificationId"); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, "/user/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}
