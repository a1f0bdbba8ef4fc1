package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/backsoul/quizquest/pkg/models"
)

const (
	// MaxBatchSize caps the number of quizzes written per commit
	MaxBatchSize = 400
	// SamplePool is how many candidates a random draw considers
	SamplePool = 50
	// QuizzesPerSession is the length of one play session
	QuizzesPerSession = 10
)

var ErrUnknownMode = errors.New("unknown quiz mode")

// QuizService stores extracted quizzes and picks quizzes for play
type QuizService struct {
	store QuizStore
	log   *slog.Logger
}

// NewQuizService creates a QuizService on top of store
func NewQuizService(store QuizStore, log *slog.Logger) *QuizService {
	return &QuizService{
		store: store,
		log:   log.With("component", "quizzes"),
	}
}

// SaveAll assigns ids and writes records in chunks of MaxBatchSize. A failed
// chunk stops the run; chunks committed before it stay stored and their
// count is returned along with the error.
func (s *QuizService) SaveAll(ctx context.Context, records []models.QuizRecord) (int, error) {
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.New().String()
		}
	}

	saved := 0
	for start := 0; start < len(records); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(records))
		if err := s.store.CommitBatch(ctx, records[start:end]); err != nil {
			s.log.Error("❌ batch commit failed", "saved", saved, "total", len(records), "err", err)
			return saved, fmt.Errorf("error saving quizzes %d-%d: %w", start, end-1, err)
		}
		saved = end
	}

	s.log.Info("✅ quizzes saved", "count", saved)
	return saved, nil
}

// QuizzesForMode picks the quizzes of one play session
func (s *QuizService) QuizzesForMode(ctx context.Context, mode string) ([]models.QuizRecord, error) {
	switch {
	case mode == models.ModeRandom:
		return s.store.RandomQuizzes(ctx, "", SamplePool, QuizzesPerSession)
	case mode == models.ModeLikes:
		return s.store.TopLikedQuizzes(ctx, QuizzesPerSession)
	case models.IsCategory(mode):
		return s.store.RandomQuizzes(ctx, mode, SamplePool, QuizzesPerSession)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// GetQuiz returns one quiz with its live like count
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.QuizRecord, error) {
	return s.store.GetQuiz(ctx, id)
}

// QuizCount returns the number of stored quizzes
func (s *QuizService) QuizCount(ctx context.Context) (int, error) {
	return s.store.QuizCount(ctx)
}
