package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/quizquest/pkg/models"
)

const (
	userIDsKey    = "users:ids"
	userByNameKey = "users:by_name"
)

func userKey(id string) string       { return "user:" + id }
func userScoresKey(id string) string { return "user:" + id + ":scores" }

// CountUsers returns the number of registered users
func (r *RedisClient) CountUsers(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, userIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return int(n), nil
}

// CreateUsers writes all users in one transaction
func (r *RedisClient) CreateUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, u := range users {
			pipe.HSet(ctx, userKey(u.ID),
				"real_name", u.RealName,
				"password", u.Password,
				"nickname", u.Nickname,
				"role", u.Role,
				"created_at", u.CreatedAt.UTC().Format(time.RFC3339Nano),
			)
			for category, score := range u.CategoryScores {
				pipe.HSet(ctx, userScoresKey(u.ID), category, score)
			}
			pipe.SAdd(ctx, userIDsKey, u.ID)
			pipe.HSet(ctx, userByNameKey, u.RealName, u.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error creating %d users: %w", len(users), err)
	}
	return nil
}

// GetUser returns the user with the given id
func (r *RedisClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	users, err := r.loadUsers(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrUserNotFound)
	}
	return &users[0], nil
}

// GetUserByName looks a user up by login name
func (r *RedisClient) GetUserByName(ctx context.Context, realName string) (*models.User, error) {
	id, err := r.client.HGet(ctx, userByNameKey, realName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("user %q: %w", realName, models.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up user %q: %w", realName, err)
	}
	return r.GetUser(ctx, id)
}

// ListUsers returns every user ordered by registration time
func (r *RedisClient) ListUsers(ctx context.Context) ([]models.User, error) {
	ids, err := r.client.SMembers(ctx, userIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	users, err := r.loadUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].RealName < users[j].RealName
	})
	return users, nil
}

// UpdateNickname changes the display name of a user
func (r *RedisClient) UpdateNickname(ctx context.Context, id, nickname string) error {
	n, err := r.client.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrUserNotFound)
	}
	return r.client.HSet(ctx, userKey(id), "nickname", nickname).Err()
}

func (r *RedisClient) loadUsers(ctx context.Context, ids []string) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	fields := make([]*redis.MapStringStringCmd, len(ids))
	scores := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			fields[i] = pipe.HGetAll(ctx, userKey(id))
			scores[i] = pipe.HGetAll(ctx, userScoresKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}

	for i, id := range ids {
		f := fields[i].Val()
		if len(f) == 0 {
			continue
		}

		u := models.User{
			ID:             id,
			RealName:       f["real_name"],
			Password:       f["password"],
			Nickname:       f["nickname"],
			Role:           f["role"],
			CategoryScores: make(map[string]int),
		}
		if ts, err := time.Parse(time.RFC3339Nano, f["created_at"]); err == nil {
			u.CreatedAt = ts
		}
		for category, raw := range scores[i].Val() {
			if v, err := strconv.Atoi(raw); err == nil {
				u.CategoryScores[category] = v
			}
		}
		users = append(users, u)
	}
	return users, nil
}
