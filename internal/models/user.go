package models

// ReadingStats is the per-user statistics snapshot carried on the profile
type ReadingStats struct {
	TotalRead         int `json:"totalRead"`
	CurrentlyReading  int `json:"currentlyReading"`
	CompletedSeries   int `json:"completedSeries"`
	TotalChaptersRead int `json:"totalChaptersRead"`
}

// User is the authenticated account
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	JoinDate     string       `json:"joinDate"`
	Avatar       string       `json:"avatar"`
	ReadingStats ReadingStats `json:"readingStats"`
}

// AuthSession is the result of a login or registration
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate is a partial profile mutation; nil fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}
