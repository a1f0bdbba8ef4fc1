package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/backsoul/quizquest/pkg/models"
)

// ScoreService handles likes and best scores
type ScoreService struct {
	likes  LikeStore
	scores ScoreStore
	log    *slog.Logger
	now    func() time.Time
}

// NewScoreService creates a ScoreService
func NewScoreService(likes LikeStore, scores ScoreStore, log *slog.Logger) *ScoreService {
	return &ScoreService{
		likes:  likes,
		scores: scores,
		log:    log.With("component", "scores"),
		now:    time.Now,
	}
}

// ToggleLike flips the user's like on a quiz
func (s *ScoreService) ToggleLike(ctx context.Context, quizID, userID string) (models.LikeResponse, error) {
	liked, likes, err := s.likes.ToggleLike(ctx, quizID, userID, s.now())
	if err != nil {
		return models.LikeResponse{}, err
	}
	s.log.Debug("like toggled", "quiz", quizID, "user", userID, "liked", liked, "likes", likes)
	return models.LikeResponse{QuizID: quizID, Liked: liked, Likes: likes}, nil
}

// HasLiked reports whether the user currently likes the quiz
func (s *ScoreService) HasLiked(ctx context.Context, quizID, userID string) (bool, error) {
	return s.likes.HasLiked(ctx, quizID, userID)
}

// RecordSession keeps score as the user's best for category when it beats
// the previous best. The likes ranking is not a skill score and is never
// recorded. Reports whether the best score changed.
func (s *ScoreService) RecordSession(ctx context.Context, userID, category string, score int) (bool, error) {
	if category == models.ModeLikes {
		return false, nil
	}
	if !models.IsRankingCategory(category) {
		return false, fmt.Errorf("%w: %q", ErrUnknownMode, category)
	}

	previous, updated, err := s.scores.SetBestScore(ctx, userID, category, score)
	if err != nil {
		return false, err
	}
	if updated {
		s.log.Info("🎉 new personal best", "user", userID, "category", category, "from", previous, "to", score)
	}
	return updated, nil
}
