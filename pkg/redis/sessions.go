package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/quizquest/pkg/models"
)

func sessionKey(id string) string { return "quiz:session:" + id }

// SaveSession stores a play session with a TTL
func (r *RedisClient) SaveSession(ctx context.Context, session *models.QuizSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error serializing session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// GetSession loads a play session
func (r *RedisClient) GetSession(ctx context.Context, id string) (*models.QuizSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting session %s: %w", id, err)
	}

	var session models.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error parsing session %s: %w", id, err)
	}
	return &session, nil
}

// DeleteSession removes a play session
func (r *RedisClient) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
