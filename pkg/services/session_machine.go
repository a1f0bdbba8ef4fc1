package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/backsoul/quizquest/pkg/models"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNoQuizzes         = errors.New("no quizzes available for this mode")
	ErrInvalidChoice     = errors.New("choice out of range")
)

// transitions lists the events each state accepts
var transitions = map[models.SessionState][]models.SessionEvent{
	models.StateSelecting:      {models.EventStartQuiz},
	models.StateAwaitingAnswer: {models.EventSubmitAnswer, models.EventEndSession},
	models.StateShowingResult:  {models.EventAdvance, models.EventEndSession},
	models.StateFinished:       {models.EventEndSession},
}

// CanApply reports whether state accepts event
func CanApply(state models.SessionState, event models.SessionEvent) bool {
	for _, e := range transitions[state] {
		if e == event {
			return true
		}
	}
	return false
}

func checkTransition(s *models.QuizSession, event models.SessionEvent) error {
	if !CanApply(s.State, event) {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, s.State)
	}
	return nil
}

// startQuiz loads the quizzes of mode into s. With no quizzes the session
// stays in Selecting.
func startQuiz(s *models.QuizSession, mode string, quizzes []models.QuizRecord, now time.Time) error {
	if err := checkTransition(s, models.EventStartQuiz); err != nil {
		return err
	}
	if len(quizzes) == 0 {
		return ErrNoQuizzes
	}

	s.Mode = mode
	s.Quizzes = quizzes
	s.Index = 0
	s.Score = 0
	s.Selected = nil
	s.Counted = false
	s.StartTime = now
	s.State = models.StateAwaitingAnswer
	return nil
}

// submitAnswer checks choice against the current quiz. A correct answer adds
// one point, once per question.
func submitAnswer(s *models.QuizSession, choice int) (models.AnswerResult, error) {
	if err := checkTransition(s, models.EventSubmitAnswer); err != nil {
		return models.AnswerResult{}, err
	}
	q, ok := s.Current()
	if !ok {
		return models.AnswerResult{}, fmt.Errorf("%w: no current quiz", ErrInvalidTransition)
	}
	if choice < 0 || choice >= len(q.Choices) {
		return models.AnswerResult{}, fmt.Errorf("%w: %d of %d", ErrInvalidChoice, choice, len(q.Choices))
	}

	correct := choice == q.CorrectIndex
	if correct && !s.Counted {
		s.Score++
		s.Counted = true
	}
	s.Selected = &choice
	s.State = models.StateShowingResult

	result := models.AnswerResult{Correct: correct, Score: s.Score}
	if !correct {
		result.CorrectChoice, _ = q.CorrectChoice()
		result.Explanation = q.Answer
	}
	return result, nil
}

// advance moves to the next quiz, or to Finished after the last one
func advance(s *models.QuizSession) error {
	if err := checkTransition(s, models.EventAdvance); err != nil {
		return err
	}

	s.Index++
	s.Selected = nil
	s.Counted = false
	if s.Index >= len(s.Quizzes) {
		s.State = models.StateFinished
		return nil
	}
	s.State = models.StateAwaitingAnswer
	return nil
}

// endSession returns s to Selecting. The summary is marked abandoned when the
// session did not reach Finished.
func endSession(s *models.QuizSession) (models.SessionSummary, error) {
	if err := checkTransition(s, models.EventEndSession); err != nil {
		return models.SessionSummary{}, err
	}

	summary := models.SessionSummary{
		Mode:      s.Mode,
		Score:     s.Score,
		Total:     len(s.Quizzes),
		Abandoned: s.State != models.StateFinished,
	}

	s.State = models.StateSelecting
	s.Mode = ""
	s.Quizzes = nil
	s.Index = 0
	s.Score = 0
	s.Selected = nil
	s.Counted = false
	return summary, nil
}
