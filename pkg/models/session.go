package models

import "time"

// SessionState is the position of a quiz-play session in its lifecycle
type SessionState string

const (
	StateSelecting      SessionState = "selecting"
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateShowingResult  SessionState = "showing_result"
	StateFinished       SessionState = "finished"
)

// SessionEvent drives a transition between states
type SessionEvent string

const (
	EventStartQuiz    SessionEvent = "start_quiz"
	EventSubmitAnswer SessionEvent = "submit_answer"
	EventAdvance      SessionEvent = "advance"
	EventEndSession   SessionEvent = "end_session"
)

// QuizSession is the per-player play state
type QuizSession struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	State        SessionState `json:"state"`
	Mode         string       `json:"mode,omitempty"`
	Quizzes      []QuizRecord `json:"quizzes,omitempty"`
	Index        int          `json:"index"`
	Score        int          `json:"score"`
	Selected     *int         `json:"selected,omitempty"`
	Counted      bool         `json:"counted"`
	StartTime    time.Time    `json:"startTime"`
	LastActivity time.Time    `json:"lastActivity"`
}

// Current returns the quiz being played, if any
func (s *QuizSession) Current() (QuizRecord, bool) {
	if s.Index < 0 || s.Index >= len(s.Quizzes) {
		return QuizRecord{}, false
	}
	return s.Quizzes[s.Index], true
}

// AnswerResult is what the player sees after answering
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectChoice string `json:"correctChoice,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	Score         int    `json:"score"`
}

// SessionSummary is returned when a session ends
type SessionSummary struct {
	Mode      string `json:"mode"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Recorded  bool   `json:"recorded"`
	Abandoned bool   `json:"abandoned"`
}

// StartRequest body of POST /api/sessions/{id}/start
type StartRequest struct {
	Mode string `json:"mode"`
}

// AnswerRequest body of POST /api/sessions/{id}/answer
type AnswerRequest struct {
	Choice int `json:"choice"`
}

// SessionResponse wraps session payloads
type SessionResponse struct {
	Session *QuizSession    `json:"session,omitempty"`
	Result  *AnswerResult   `json:"result,omitempty"`
	Summary *SessionSummary `json:"summary,omitempty"`
}
