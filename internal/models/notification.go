package models

// NotificationType distinguishes chapter alerts from system messages
type NotificationType string

const (
	NotificationNewChapter NotificationType = "NEW_CHAPTER"
	NotificationSystem     NotificationType = "SYSTEM"
)

// Notification is a user-facing alert
type Notification struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	Type          NotificationType `json:"type"`
	Message       string           `json:"message"`
	Read          bool             `json:"read"`
	ComicID       string           `json:"comicId,omitempty"`
	ChapterNumber int              `json:"chapterNumber,omitempty"`
	CreatedAt     string           `json:"createdAt"`
}
