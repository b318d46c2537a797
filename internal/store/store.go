// Package store persists local client state in sqlite: the session
// token between runs and a mirror of reading history so statistics
// keep working offline.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	applogger "comicshelf/internal/logger"
	"comicshelf/internal/models"
)

// Session is the single persisted auth session row
type Session struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UpdatedAt time.Time
}

// HistoryEntry mirrors one reading-history item locally
type HistoryEntry struct {
	ID            string `gorm:"primaryKey"`
	ComicID       string `gorm:"index;not null"`
	ComicTitle    string
	ComicCover    string
	ChapterID     string
	ChapterNumber int
	ChapterTitle  string
	ReadDate      string
	LastReadAt    string
	CreatedAt     time.Time
}

// Store wraps the GORM connection
type Store struct {
	db     *gorm.DB
	logger *applogger.Logger
}

// Open connects to the sqlite file at dbPath, creating directories and
// running migrations as needed.
func Open(dbPath string, log *applogger.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite only supports one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Session{}, &HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	if log != nil {
		log.Info("Database connection established", map[string]interface{}{
			"path": dbPath,
		})
	}

	return &Store{db: db, logger: log}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Token returns the persisted session token, or "" when logged out.
// Implements the REST client's TokenSource.
func (s *Store) Token() string {
	var session Session
	if err := s.db.First(&session, 1).Error; err != nil {
		return ""
	}
	return session.Token
}

// SetToken stores the session token, replacing any previous one
func (s *Store) SetToken(token string) error {
	session := Session{ID: 1, Token: token, UpdatedAt: time.Now()}
	if err := s.db.Save(&session).Error; err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// ClearToken removes the persisted session
func (s *Store) ClearToken() error {
	if err := s.db.Delete(&Session{}, 1).Error; err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// SaveHistory upserts one history item into the local mirror
func (s *Store) SaveHistory(item models.ReadingHistoryItem) error {
	entry := HistoryEntry{
		ID:            item.ID,
		ComicID:       item.ComicID,
		ComicTitle:    item.ComicTitle,
		ComicCover:    item.ComicCover,
		ChapterID:     item.ChapterID,
		ChapterNumber: item.ChapterNumber,
		ChapterTitle:  item.ChapterTitle,
		ReadDate:      item.ReadDate,
		LastReadAt:    item.LastReadAt,
	}
	if err := s.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// ReplaceHistory overwrites the mirror with a fresh server copy
func (s *Store) ReplaceHistory(items []models.ReadingHistoryItem) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&HistoryEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear history mirror: %w", err)
		}
		for _, item := range items {
			if err := tx.Create(&HistoryEntry{
				ID:            item.ID,
				ComicID:       item.ComicID,
				ComicTitle:    item.ComicTitle,
				ComicCover:    item.ComicCover,
				ChapterID:     item.ChapterID,
				ChapterNumber: item.ChapterNumber,
				ChapterTitle:  item.ChapterTitle,
				ReadDate:      item.ReadDate,
				LastReadAt:    item.LastReadAt,
			}).Error; err != nil {
				return fmt.Errorf("failed to insert history entry: %w", err)
			}
		}
		return nil
	})
}

// History returns the mirrored items, most recently read first
func (s *Store) History() ([]models.ReadingHistoryItem, error) {
	var entries []HistoryEntry
	if err := s.db.Order("read_date desc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load history mirror: %w", err)
	}

	items := make([]models.ReadingHistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.ReadingHistoryItem{
			ID:            e.ID,
			ComicID:       e.ComicID,
			ComicTitle:    e.ComicTitle,
			ComicCover:    e.ComicCover,
			ChapterID:     e.ChapterID,
			ChapterNumber: e.ChapterNumber,
			ChapterTitle:  e.ChapterTitle,
			ReadDate:      e.ReadDate,
			LastReadAt:    e.LastReadAt,
		})
	}
	return items, nil
}
