package mock

import (
	"sort"
	"strings"

	"comicshelf/internal/api"
	"comicshelf/internal/models"
)

// Filter applies genre and status filters with the backend's semantics:
// a comic matches only when every selected genre is present, and status
// is a case-insensitive exact match ("all" or empty disables it).
func Filter(comics []models.Comic, genres []string, status string) []models.Comic {
	out := make([]models.Comic, 0, len(comics))
	for _, c := range comics {
		if !hasAllGenres(&c, genres) {
			continue
		}
		if status != "" && !strings.EqualFold(status, "all") &&
			models.ParseComicStatus(c.Status) != models.ParseComicStatus(status) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasAllGenres(c *models.Comic, genres []string) bool {
	for _, g := range genres {
		if !c.HasGenre(g) {
			return false
		}
	}
	return true
}

// Sort orders comics in place. "a-z" and "z-a" compare case-folded
// titles byte-wise rather than with locale-aware collation, which is
// equivalent for the catalog's ASCII titles. "latest"
// (the default) uses the updated-marker label: entries mentioning
// "hour" first, then "day", then everything else, stable within each
// group. The label heuristic is kept for compatibility with the
// backend's observed ordering; it is coarse since the marker is a
// display string, not a timestamp.
func Sort(comics []models.Comic, order string) {
	switch order {
	case api.SortAZ:
		sort.SliceStable(comics, func(i, j int) bool {
			return strings.ToLower(comics[i].Title) < strings.ToLower(comics[j].Title)
		})
	case api.SortZA:
		sort.SliceStable(comics, func(i, j int) bool {
			return strings.ToLower(comics[i].Title) > strings.ToLower(comics[j].Title)
		})
	default:
		sort.SliceStable(comics, func(i, j int) bool {
			return recencyRank(comics[i].UpdatedAt) < recencyRank(comics[j].UpdatedAt)
		})
	}
}

func recencyRank(updatedAt string) int {
	switch {
	case strings.Contains(updatedAt, "hour"):
		return 0
	case strings.Contains(updatedAt, "day"):
		return 1
	default:
		return 2
	}
}

// Paginate slices out one 1-indexed page and computes the page count.
// Out-of-range paging values are clamped to the defaults.
func Paginate(comics []models.Comic, page, limit int) *models.ComicPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = api.DefaultPageSize
	}

	total := len(comics)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &models.ComicPage{
		Comics:     append([]models.Comic(nil), comics[start:end]...),
		Total:      total,
		TotalPages: totalPages,
	}
}
