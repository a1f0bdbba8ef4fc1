package services

import (
	"context"
	"time"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/pageimage"
)

// Generator sends a prompt and one inline image to the generation model and
// returns its free-form text answer
type Generator interface {
	Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

// Document is an opened PDF
type Document interface {
	PageCount() int
	PageText(page int) (string, error)
	// RenderPage rasterizes a page as PNG at the given zoom factor
	RenderPage(page int, scale float64) ([]byte, error)
	PageImages(page int) ([]pageimage.Embedded, error)
}

// QuizStore persists quiz records
type QuizStore interface {
	CommitBatch(ctx context.Context, records []models.QuizRecord) error
	// RandomQuizzes samples n quizzes out of at most pool candidates;
	// an empty category samples across all quizzes
	RandomQuizzes(ctx context.Context, category string, pool, n int) ([]models.QuizRecord, error)
	TopLikedQuizzes(ctx context.Context, n int) ([]models.QuizRecord, error)
	GetQuiz(ctx context.Context, id string) (*models.QuizRecord, error)
	QuizCount(ctx context.Context) (int, error)
}

// LikeStore keeps vote markers and like counters in step
type LikeStore interface {
	ToggleLike(ctx context.Context, quizID, userID string, at time.Time) (liked bool, likes int64, err error)
	HasLiked(ctx context.Context, quizID, userID string) (bool, error)
}

// ScoreStore keeps the best score of each user per category
type ScoreStore interface {
	// SetBestScore writes score only if it beats the stored value (default 0)
	SetBestScore(ctx context.Context, userID, category string, score int) (previous int, updated bool, err error)
}

// UserStore persists registered users
type UserStore interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUsers(ctx context.Context, users []models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByName(ctx context.Context, realName string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateNickname(ctx context.Context, id, nickname string) error
}

// SessionStore persists quiz-play sessions
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.QuizSession, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*models.QuizSession, error)
	DeleteSession(ctx context.Context, id string) error
}
