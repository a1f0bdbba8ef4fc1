package models

import "time"

// QuizRecord is a multiple-choice quiz derived from a document page
type QuizRecord struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Question     string    `json:"question"`
	Choices      []string  `json:"choices"`
	CorrectIndex int       `json:"correct_index"`
	Answer       string    `json:"answer"`
	Images       []string  `json:"images"` // base64 JPEG, zero or one entry
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        int64     `json:"likes"`
}

// CorrectChoice returns the text of the correct option, if the index is in range
func (q QuizRecord) CorrectChoice() (string, bool) {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		return "", false
	}
	return q.Choices[q.CorrectIndex], true
}

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// AnonymousName is shown instead of the contributor when they post anonymously
const AnonymousName = "匿名"

// User is a registered player
type User struct {
	ID             string         `json:"id"`
	RealName       string         `json:"real_name"`
	Password       string         `json:"-"`
	Nickname       string         `json:"nickname"`
	Role           string         `json:"role"`
	CreatedAt      time.Time      `json:"created_at"`
	CategoryScores map[string]int `json:"category_scores"`
}

// IsTeacher reports whether the user may use the admin screens
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// LeaderboardEntry is one row of a category ranking
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Medal string `json:"medal"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Leaderboard groups the rows of one ranking category
type Leaderboard struct {
	Category string             `json:"category"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// ScoreRow is one line of the teacher score table
type ScoreRow struct {
	RealName string         `json:"real_name"`
	Nickname string         `json:"nickname"`
	Scores   map[string]int `json:"scores"`
}

// APIResponse is the envelope of every API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// LoginRequest body of /api/auth/login and /api/auth/bootstrap
type LoginRequest struct {
	RealName string `json:"real_name"`
	Password string `json:"password"`
}

// NicknameRequest body of PUT /api/users/me/nickname
type NicknameRequest struct {
	Nickname string `json:"nickname"`
}

// LikeResponse result of a like toggle
type LikeResponse struct {
	QuizID string `json:"quizId"`
	Liked  bool   `json:"liked"`
	Likes  int64  `json:"likes"`
}
