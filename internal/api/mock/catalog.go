package mock

import (
	"fmt"

	"comicshelf/internal/models"
)

// seedComics is the deterministic catalog served in mock mode. The
// updated markers intentionally mirror the relative labels a real
// backend produces, since the "latest" sort operates on them.
func seedComics() []models.Comic {
	return []models.Comic{
		{
			ID:            "1",
			Title:         "The Dragon King's Daughter",
			Cover:         "/covers/dragon-kings-daughter.jpg",
			LatestChapter: "Chapter 45",
			UpdatedAt:     "2 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Fantasy", "Romance"},
			IsFeatured:    true,
		},
		{
			ID:            "7",
			Title:         "Omniscient Reader's Viewpoint",
			Cover:         "/covers/omniscient-reader.jpg",
			LatestChapter: "Chapter 93",
			UpdatedAt:     "4 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Adventure", "Fantasy"},
			IsFeatured:    true,
		},
		{
			ID:            "8",
			Title:         "Tower of God",
			Cover:         "/covers/tower-of-god.jpg",
			LatestChapter: "Chapter 550",
			UpdatedAt:     "6 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Adventure", "Fantasy", "Mystery"},
		},
		{
			ID:            "9",
			Title:         "Eleceed",
			Cover:         "/covers/eleceed.jpg",
			LatestChapter: "Chapter 210",
			UpdatedAt:     "12 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Comedy", "Supernatural"},
		},
		{
			ID:            "12",
			Title:         "The Horizon",
			Cover:         "/covers/the-horizon.jpg",
			LatestChapter: "Chapter 21",
			UpdatedAt:     "2 days ago",
			Status:        "Completed",
			Genres:        []string{"Drama", "Thriller"},
		},
		{
			ID:            "15",
			Title:         "Annarasumanara",
			Cover:         "/covers/annarasumanara.jpg",
			LatestChapter: "Chapter 27",
			UpdatedAt:     "3 weeks ago",
			Status:        "Completed",
			Genres:        []string{"Drama", "Fantasy", "Slice of Life"},
		},
		{
			ID:            "19",
			Title:         "Return of the Blossoming Blade",
			Cover:         "/covers/blossoming-blade.jpg",
			LatestChapter: "Chapter 32",
			UpdatedAt:     "18 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Adventure", "Martial Arts"},
		},
		{
			ID:            "20",
			Title:         "The Dark Magician Transmigrates After 66666 Years",
			Cover:         "/covers/dark-magician.jpg",
			LatestChapter: "Chapter 87",
			UpdatedAt:     "20 hours ago",
			Status:        "Ongoing",
			Genres:        []string{"Action", "Adventure", "Fantasy"},
		},
		{
			ID:            "23",
			Title:         "Winter Woods",
			Cover:         "/covers/winter-woods.jpg",
			LatestChapter: "Chapter 70",
			UpdatedAt:     "1 day ago",
			Status:        "Hiatus",
			Genres:        []string{"Drama", "Fantasy", "Romance"},
		},
	}
}

func seedGenres() []string {
	return []string{
		"Action",
		"Adventure",
		"Comedy",
		"Drama",
		"Fantasy",
		"Horror",
		"Martial Arts",
		"Mystery",
		"Romance",
		"Sci-Fi",
		"Slice of Life",
		"Supernatural",
		"Thriller",
	}
}

func seedUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "demo_reader",
		Email:    "demo@comicshelf.local",
		JoinDate: "2023-01-15",
		Avatar:   "/avatars/demo.png",
		ReadingStats: models.ReadingStats{
			TotalRead:         12,
			CurrentlyReading:  3,
			CompletedSeries:   2,
			TotalChaptersRead: 245,
		},
	}
}

func seedNotifications() []models.Notification {
	return []models.Notification{
		{
			ID:            "notif-1",
			UserID:        "user-1",
			Type:          models.NotificationNewChapter,
			Message:       "Tower of God Chapter 550 is out",
			ComicID:       "8",
			ChapterNumber: 550,
			CreatedAt:     "2024-05-02T09:00:00Z",
		},
		{
			ID:        "notif-2",
			UserID:    "user-1",
			Type:      models.NotificationSystem,
			Message:   "Welcome to Comicshelf",
			Read:      true,
			CreatedAt: "2024-05-01T08:00:00Z",
		},
	}
}

// detailFor fills in the fields a listing omits: description, credits,
// and a synthetic ten-chapter list.
func detailFor(c models.Comic) models.Comic {
	c.Description = "A serialized webcomic served from the in-process catalog."
	c.Author = "Catalog Author"
	c.Artist = "Catalog Artist"
	c.Released = "January 1, 2023"
	c.Chapters = chaptersFor(c.ID)
	return c
}

func chaptersFor(comicID string) []models.Chapter {
	chapters := make([]models.Chapter, 10)
	for i := range chapters {
		chapters[i] = models.Chapter{
			Number: i + 1,
			Title:  fmt.Sprintf("Chapter %d", i+1),
			Date:   fmt.Sprintf("%d days ago", 10-i),
		}
	}
	return chapters
}

func pagesFor(number int) []string {
	images := make([]string, 10)
	for i := range images {
		images[i] = fmt.Sprintf("/pages/ch%d/page-%d.jpg", number, i+1)
	}
	return images
}
