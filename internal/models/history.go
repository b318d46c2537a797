package models

// ReadingHistoryItem is one chapter-read event. The source usually
// returns most-recent-first ordering but the statistics engine
// re-derives order from timestamps rather than trusting positions.
type ReadingHistoryItem struct {
	ID            string `json:"id,omitempty"`
	ComicID       string `json:"comicId"`
	ComicTitle    string `json:"comicTitle"`
	ComicCover    string `json:"comicCover"`
	ChapterID     string `json:"chapterId"`
	ChapterNumber int    `json:"chapterNumber"`
	ChapterTitle  string `json:"chapterTitle,omitempty"`
	ReadDate      string `json:"readDate"`
	LastReadAt    string `json:"lastReadAt"`
}
