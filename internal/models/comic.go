package models

import (
	"strconv"
	"strings"
)

// ComicStatus is the publication status of a series
type ComicStatus string

const (
	StatusOngoing   ComicStatus = "ongoing"
	StatusCompleted ComicStatus = "completed"
	StatusHiatus    ComicStatus = "hiatus"
)

// ParseComicStatus normalizes a status string. Unknown values are
// returned lowercased so filters still compare consistently.
func ParseComicStatus(s string) ComicStatus {
	return ComicStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Comic is a single series as rendered in listings and detail views
type Comic struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Cover         string    `json:"cover"`
	LatestChapter string    `json:"latestChapter"`
	UpdatedAt     string    `json:"updatedAt"`
	Status        string    `json:"status"`
	Genres        []string  `json:"genres"`
	Description   string    `json:"description,omitempty"`
	Author        string    `json:"author,omitempty"`
	Artist        string    `json:"artist,omitempty"`
	Released      string    `json:"released,omitempty"`
	Chapters      []Chapter `json:"chapters,omitempty"`
	IsFeatured    bool      `json:"isFeatured,omitempty"`
}

// Chapter is one entry of a comic's chapter list
type Chapter struct {
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	Date   string `json:"date"`
}

// ChapterDetail is the reader payload for a single chapter
type ChapterDetail struct {
	ID            string   `json:"id,omitempty"`
	Images        []string `json:"images"`
	Title         string   `json:"title,omitempty"`
	Number        int      `json:"number"`
	TotalChapters int      `json:"totalChapters,omitempty"`
}

// ComicPage is a paginated listing result
type ComicPage struct {
	Comics     []Comic `json:"comics"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// HasGenre reports whether the comic carries the given genre
func (c *Comic) HasGenre(genre string) bool {
	for _, g := range c.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// LatestChapterNumber extracts the chapter number from the
// human-readable latest-chapter label ("Chapter 45" -> 45). Returns 0
// when no number is present.
func (c *Comic) LatestChapterNumber() int {
	fields := strings.Fields(c.LatestChapter)
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			return n
		}
	}
	return 0
}

// ValidComics splits records into renderable comics and a count of
// malformed ones. A comic without an id cannot produce a navigable
// link, so it is dropped rather than rendered.
func ValidComics(comics []Comic) (valid []Comic, dropped int) {
	valid = make([]Comic, 0, len(comics))
	for _, c := range comics {
		if c.ID == "" {
			dropped++
			continue
		}
		valid = append(valid, c)
	}
	return valid, dropped
}

// BookmarkedComic is a comic in the user's bookmark list
type BookmarkedComic struct {
	Comic
	LastReadChapter int    `json:"lastReadChapter,omitempty"`
	DateAdded       string `json:"dateAdded"`
	IsNew           bool   `json:"isNew,omitempty"`
}

// CurrentlyReading reports whether the user is partway through the
// series: a chapter has been read and chapters remain after it.
func (b *BookmarkedComic) CurrentlyReading() bool {
	if b.LastReadChapter <= 0 {
		return false
	}
	latest := b.LatestChapterNumber()
	return latest > 0 && b.LastReadChapter < latest
}

// RatedComic is a comic the user has rated
type RatedComic struct {
	Comic
	ComicID   string  `json:"comicId"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment,omitempty"`
	DateRated string  `json:"dateRated"`
}

// ValidRating reports whether a rating value is within 0.0-5.0 on a
// half-step grid.
func ValidRating(rating float64) bool {
	if rating < 0 || rating > 5 {
		return false
	}
	doubled := rating * 2
	return doubled == float64(int(doubled))
}
