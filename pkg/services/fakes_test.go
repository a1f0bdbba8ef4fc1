package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/backsoul/quizquest/pkg/models"
)

// memStore is an in-memory implementation of every store interface
type memStore struct {
	mu        sync.Mutex
	commits   []int
	failAfter int // fail the commit with this 1-based index; 0 never fails
	quizzes   []models.QuizRecord
	votes     map[string]map[string]time.Time
	users     []models.User
	sessions  map[string]models.QuizSession
}

func newMemStore() *memStore {
	return &memStore{
		votes:    make(map[string]map[string]time.Time),
		sessions: make(map[string]models.QuizSession),
	}
}

func (m *memStore) CommitBatch(_ context.Context, records []models.QuizRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && len(m.commits)+1 == m.failAfter {
		return fmt.Errorf("commit %d rejected", m.failAfter)
	}
	m.commits = append(m.commits, len(records))
	m.quizzes = append(m.quizzes, records...)
	return nil
}

func (m *memStore) RandomQuizzes(_ context.Context, category string, pool, n int) ([]models.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.QuizRecord
	for _, q := range m.quizzes {
		if category == "" || q.Category == category {
			out = append(out, q)
		}
		if len(out) == min(pool, n) {
			break
		}
	}
	return out, nil
}

func (m *memStore) TopLikedQuizzes(_ context.Context, n int) ([]models.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.QuizRecord(nil), m.quizzes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *memStore) GetQuiz(_ context.Context, id string) (*models.QuizRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.quizzes {
		if m.quizzes[i].ID == id {
			q := m.quizzes[i]
			return &q, nil
		}
	}
	return nil, models.ErrQuizNotFound
}

func (m *memStore) QuizCount(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quizzes), nil
}

func (m *memStore) ToggleLike(_ context.Context, quizID, userID string, at time.Time) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.quizzes {
		if m.quizzes[i].ID == quizID {
			idx = i
		}
	}
	if idx < 0 {
		return false, 0, models.ErrQuizNotFound
	}
	if m.votes[quizID] == nil {
		m.votes[quizID] = make(map[string]time.Time)
	}
	if _, ok := m.votes[quizID][userID]; ok {
		delete(m.votes[quizID], userID)
		m.quizzes[idx].Likes--
		return false, m.quizzes[idx].Likes, nil
	}
	m.votes[quizID][userID] = at
	m.quizzes[idx].Likes++
	return true, m.quizzes[idx].Likes, nil
}

func (m *memStore) HasLiked(_ context.Context, quizID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.votes[quizID][userID]
	return ok, nil
}

func (m *memStore) SetBestScore(_ context.Context, userID, category string, score int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID != userID {
			continue
		}
		if m.users[i].CategoryScores == nil {
			m.users[i].CategoryScores = make(map[string]int)
		}
		prev := m.users[i].CategoryScores[category]
		if score > prev {
			m.users[i].CategoryScores[category] = score
			return prev, true, nil
		}
		return prev, false, nil
	}
	return 0, false, models.ErrUserNotFound
}

func (m *memStore) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memStore) CreateUsers(_ context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, users...)
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memStore) GetUserByName(_ context.Context, realName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RealName == realName {
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...), nil
}

func (m *memStore) UpdateNickname(_ context.Context, id, nickname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Nickname = nickname
			return nil
		}
	}
	return models.ErrUserNotFound
}

func (m *memStore) SaveSession(_ context.Context, s *models.QuizSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
