package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/api"
	"comicshelf/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, nil), server
}

func TestListComicsSendsQueryParams(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comics", r.URL.Path)
		gotQuery = map[string]string{
			"page":   r.URL.Query().Get("page"),
			"limit":  r.URL.Query().Get("limit"),
			"sort":   r.URL.Query().Get("sort"),
			"genres": r.URL.Query().Get("genres"),
			"status": r.URL.Query().Get("status"),
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"comics":     []models.Comic{{ID: "1", Title: "Solo"}},
			"total":      1,
			"totalPages": 1,
		})
	})

	page, err := client.ListComics(context.Background(), api.ListParams{
		Page:   2,
		Limit:  24,
		Sort:   api.SortAZ,
		Genres: []string{"Action", "Fantasy"},
		Status: "ongoing",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, map[string]string{
		"page":   "2",
		"limit":  "24",
		"sort":   "a-z",
		"genres": "Action,Fantasy",
		"status": "ongoing",
	}, gotQuery)
}

func TestListComicsNormalizesDefaults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		assert.Equal(t, "latest", r.URL.Query().Get("sort"))
		json.NewEncoder(w).Encode(map[string]interface{}{"comics": []models.Comic{}})
	})

	_, err := client.ListComics(context.Background(), api.ListParams{})
	require.NoError(t, err)
}

func TestListComicsMissingComicsField(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"total": 5})
	})

	_, err := client.ListComics(context.Background(), api.ListParams{})
	var shapeErr *api.DataShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "comics", shapeErr.Field)
}

func TestListComicsDropsRecordsWithoutID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"comics": []map[string]interface{}{
				{"id": "1", "title": "Kept"},
				{"title": "No ID"},
			},
			"total":      2,
			"totalPages": 1,
		})
	})

	page, err := client.ListComics(context.Background(), api.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Comics, 1)
	assert.Equal(t, "Kept", page.Comics[0].Title)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server message preserved",
			status: 404,
			body:   `{"message":"Comic not found"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, api.ErrNotFound)
				assert.Equal(t, "Comic not found", err.Error())
			},
		},
		{
			name:   "status fallback without body",
			status: 502,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				var apiErr *api.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 502, apiErr.StatusCode)
				assert.Equal(t, "API error: 502 Bad Gateway", err.Error())
			},
		},
		{
			name:   "server errors are retryable",
			status: 503,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				assert.True(t, api.IsRetryable(err))
			},
		},
		{
			name:   "client errors are not retryable",
			status: 400,
			body:   `{"message":"bad request"}`,
			check: func(t *testing.T, err error) {
				assert.False(t, api.IsRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.ComicByID(context.Background(), "1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listening anymore
	client := NewClient(server.URL, time.Second, nil)

	_, err := client.Genres(context.Background())
	var transient *api.TransientError
	require.ErrorAs(t, err, &transient)
	assert.True(t, api.IsRetryable(err))
}

func TestMalformedJSONIsShapeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.ComicByID(context.Background(), "1")
	var shapeErr *api.DataShapeError
	assert.ErrorAs(t, err, &shapeErr)
	assert.False(t, api.IsRetryable(err))
}

func TestValidationBeforeIO(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ctx := context.Background()

	var valErr *api.ValidationError

	_, err := client.ComicByID(ctx, "")
	assert.ErrorAs(t, err, &valErr)

	_, err = client.Chapter(ctx, "1", 0)
	assert.ErrorAs(t, err, &valErr)

	_, err = client.RateComic(ctx, "1", 4.7, "")
	assert.ErrorAs(t, err, &valErr)

	_, err = client.AddToHistory(ctx, "1", "", 3)
	assert.ErrorAs(t, err, &valErr)

	assert.False(t, called, "validation failures must not reach the network")
}

func TestLoginStoresToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "reader@example.com", creds["email"])
			json.NewEncoder(w).Encode(models.AuthSession{
				Token: "session-token",
				User:  models.User{ID: "user-1", Email: creds["email"]},
			})
		case "/api/auth/me":
			assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(models.User{ID: "user-1"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	session, err := client.Login(ctx, "reader@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "session-token", session.Token)

	_, err = client.CurrentUser(ctx)
	require.NoError(t, err)
}

func TestCurrentUserWithoutToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not hit the network without a token")
	})

	_, err := client.CurrentUser(context.Background())
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogoutClearsTokenEvenOnServerError(t *testing.T) {
	tokens := &MemoryTokenSource{}
	require.NoError(t, tokens.SetToken("stale"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	client := NewClient(server.URL, time.Second, tokens)

	err := client.Logout(context.Background())
	assert.Error(t, err)
	assert.Empty(t, tokens.Token())
}

func TestThrottleResponseIsRetryable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Genres(context.Background())
	assert.True(t, api.IsRetryable(err))
}

func TestPathEscapesIdentifiers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comics/a%2Fb", r.URL.EscapedPath())
		json.NewEncoder(w).Encode(models.Comic{ID: "a/b"})
	})

	_, err := client.ComicByID(context.Background(), "a/b")
	require.NoError(t, err)
}
