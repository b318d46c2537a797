package mock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicshelf/internal/api"
	"comicshelf/internal/models"
)

func TestFilterRequiresAllGenres(t *testing.T) {
	comics := seedComics()

	filtered := Filter(comics, []string{"Action", "Fantasy"}, "")
	require.NotEmpty(t, filtered)
	for _, c := range filtered {
		assert.True(t, c.HasGenre("Action"), "%s missing Action", c.Title)
		assert.True(t, c.HasGenre("Fantasy"), "%s missing Fantasy", c.Title)
	}

	// "Romance" alone matches more than together with "Thriller"
	romance := Filter(comics, []string{"Romance"}, "")
	both := Filter(comics, []string{"Romance", "Thriller"}, "")
	assert.Greater(t, len(romance), len(both))
	assert.Empty(t, both)
}

func TestFilterStatusCaseInsensitive(t *testing.T) {
	comics := seedComics()

	lower := Filter(comics, nil, "completed")
	upper := Filter(comics, nil, "COMPLETED")
	assert.Equal(t, lower, upper)
	require.NotEmpty(t, lower)
	for _, c := range lower {
		assert.Equal(t, "Completed", c.Status)
	}

	all := Filter(comics, nil, "all")
	assert.Len(t, all, len(comics))
}

func TestSortOrders(t *testing.T) {
	comics := seedComics()

	Sort(comics, api.SortAZ)
	for i := 1; i < len(comics); i++ {
		assert.LessOrEqual(t, comics[i-1].Title, comics[i].Title)
	}

	Sort(comics, api.SortZA)
	for i := 1; i < len(comics); i++ {
		assert.GreaterOrEqual(t, comics[i-1].Title, comics[i].Title)
	}

	Sort(comics, api.SortLatest)
	for i := 1; i < len(comics); i++ {
		assert.LessOrEqual(t, recencyRank(comics[i-1].UpdatedAt), recencyRank(comics[i].UpdatedAt))
	}
}

func TestSortLatestIsStable(t *testing.T) {
	comics := []models.Comic{
		{ID: "a", UpdatedAt: "2 hours ago"},
		{ID: "b", UpdatedAt: "1 day ago"},
		{ID: "c", UpdatedAt: "4 hours ago"},
		{ID: "d", UpdatedAt: "3 weeks ago"},
	}
	Sort(comics, api.SortLatest)

	ids := []string{comics[0].ID, comics[1].ID, comics[2].ID, comics[3].ID}
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids)
}

func TestPaginate(t *testing.T) {
	comics := make([]models.Comic, 25)
	for i := range comics {
		comics[i] = models.Comic{ID: fmt.Sprintf("%d", i+1)}
	}

	page1 := Paginate(comics, 1, 18)
	assert.Len(t, page1.Comics, 18)
	assert.Equal(t, 25, page1.Total)
	assert.Equal(t, 2, page1.TotalPages)

	page2 := Paginate(comics, 2, 18)
	assert.Len(t, page2.Comics, 7)
	assert.Equal(t, "19", page2.Comics[0].ID)

	// Past the end yields an empty page, not a panic
	page3 := Paginate(comics, 3, 18)
	assert.Empty(t, page3.Comics)
	assert.Equal(t, 2, page3.TotalPages)
}

func TestPaginateClampsBadInput(t *testing.T) {
	comics := make([]models.Comic, 25)
	for i := range comics {
		comics[i] = models.Comic{ID: fmt.Sprintf("%d", i+1)}
	}

	page := Paginate(comics, 1, 0)
	assert.Len(t, page.Comics, api.DefaultPageSize)
	assert.Equal(t, 3, page.TotalPages)

	page = Paginate(comics, 0, -5)
	assert.Equal(t, "1", page.Comics[0].ID)
	assert.Len(t, page.Comics, api.DefaultPageSize)
}

func TestPaginateExactMultiple(t *testing.T) {
	comics := make([]models.Comic, 24)
	page := Paginate(comics, 1, 12)
	assert.Equal(t, 2, page.TotalPages)
}
