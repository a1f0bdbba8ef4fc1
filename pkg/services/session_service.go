package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/backsoul/quizquest/pkg/models"
)

// SessionTTL is how long an idle session is kept
const SessionTTL = 24 * time.Hour

var ErrSessionForbidden = errors.New("session belongs to another user")

// QuizPicker selects the quizzes of a play session
type QuizPicker interface {
	QuizzesForMode(ctx context.Context, mode string) ([]models.QuizRecord, error)
}

// SessionRecorder stores the result of a finished session
type SessionRecorder interface {
	RecordSession(ctx context.Context, userID, category string, score int) (bool, error)
}

// SessionService drives quiz-play sessions through their states and
// persists them between requests
type SessionService struct {
	sessions SessionStore
	picker   QuizPicker
	recorder SessionRecorder
	log      *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a SessionService
func NewSessionService(sessions SessionStore, picker QuizPicker, recorder SessionRecorder, log *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		picker:   picker,
		recorder: recorder,
		log:      log.With("component", "sessions"),
		now:      time.Now,
	}
}

// CreateSession opens a session in Selecting for userID
func (s *SessionService) CreateSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	now := s.now()
	session := &models.QuizSession{
		ID:           uuid.New().String(),
		UserID:       userID,
		State:        models.StateSelecting,
		StartTime:    now,
		LastActivity: now,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("✅ session created", "session", session.ID, "user", userID)
	return session, nil
}

// GetSession returns the session if it belongs to userID
func (s *SessionService) GetSession(ctx context.Context, id, userID string) (*models.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

// Start applies StartQuiz with the quizzes of mode
func (s *SessionService) Start(ctx context.Context, id, userID, mode string) (*models.QuizSession, error) {
	session, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(session, models.EventStartQuiz); err != nil {
		return nil, err
	}

	quizzes, err := s.picker.QuizzesForMode(ctx, mode)
	if err != nil {
		return nil, err
	}
	if err := startQuiz(session, mode, quizzes, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("▶️ quiz started", "session", id, "mode", mode, "quizzes", len(quizzes))
	return session, nil
}

// Answer applies SubmitAnswer
func (s *SessionService) Answer(ctx context.Context, id, userID string, choice int) (*models.QuizSession, models.AnswerResult, error) {
	session, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, models.AnswerResult{}, err
	}
	result, err := submitAnswer(session, choice)
	if err != nil {
		return nil, models.AnswerResult{}, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, models.AnswerResult{}, err
	}
	return session, result, nil
}

// Next applies Advance
func (s *SessionService) Next(ctx context.Context, id, userID string) (*models.QuizSession, error) {
	session, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := advance(session); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// End applies EndSession. A finished session has its score recorded as a
// personal best candidate; an abandoned one is not recorded.
func (s *SessionService) End(ctx context.Context, id, userID string) (*models.QuizSession, models.SessionSummary, error) {
	session, err := s.GetSession(ctx, id, userID)
	if err != nil {
		return nil, models.SessionSummary{}, err
	}
	summary, err := endSession(session)
	if err != nil {
		return nil, models.SessionSummary{}, err
	}

	if !summary.Abandoned {
		recorded, err := s.recorder.RecordSession(ctx, userID, summary.Mode, summary.Score)
		if err != nil {
			return nil, models.SessionSummary{}, fmt.Errorf("error recording session %s: %w", id, err)
		}
		summary.Recorded = recorded
	}

	if err := s.save(ctx, session); err != nil {
		return nil, models.SessionSummary{}, err
	}
	s.log.Info("🏁 session ended", "session", id, "mode", summary.Mode, "score", summary.Score,
		"total", summary.Total, "recorded", summary.Recorded, "abandoned", summary.Abandoned)
	return session, summary, nil
}

// Discard deletes the session without recording anything, as on logout
func (s *SessionService) Discard(ctx context.Context, id, userID string) error {
	if _, err := s.GetSession(ctx, id, userID); err != nil {
		return err
	}
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("error deleting session %s: %w", id, err)
	}
	s.log.Info("🗑️ session discarded", "session", id)
	return nil
}

func (s *SessionService) save(ctx context.Context, session *models.QuizSession) error {
	session.LastActivity = s.now()
	if err := s.sessions.SaveSession(ctx, session, SessionTTL); err != nil {
		return fmt.Errorf("error saving session %s: %w", session.ID, err)
	}
	return nil
}
