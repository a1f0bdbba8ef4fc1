package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/quizquest/pkg/models"
)

const (
	quizIDsKey   = "quiz:ids"
	quizLikesKey = "quiz:likes"
)

func quizDocKey(id string) string        { return "quiz:doc:" + id }
func quizCategoryKey(name string) string { return "quiz:category:" + name }
func quizVotesKey(id string) string      { return "quiz:votes:" + id }

// CommitBatch writes records in one MULTI/EXEC transaction
func (r *RedisClient) CommitBatch(ctx context.Context, records []models.QuizRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([][]byte, len(records))
	for i, q := range records {
		if q.ID == "" {
			return fmt.Errorf("quiz %d has no id", i)
		}
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("error serializing quiz %s: %w", q.ID, err)
		}
		docs[i] = data
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, q := range records {
			pipe.Set(ctx, quizDocKey(q.ID), docs[i], 0)
			pipe.SAdd(ctx, quizIDsKey, q.ID)
			pipe.SAdd(ctx, quizCategoryKey(q.Category), q.ID)
			pipe.ZAddNX(ctx, quizLikesKey, redis.Z{Score: float64(q.Likes), Member: q.ID})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error committing %d quizzes: %w", len(records), err)
	}
	return nil
}

// RandomQuizzes draws up to pool ids at random and returns n of them
func (r *RedisClient) RandomQuizzes(ctx context.Context, category string, pool, n int) ([]models.QuizRecord, error) {
	key := quizIDsKey
	if category != "" {
		key = quizCategoryKey(category)
	}

	ids, err := r.client.SRandMemberN(ctx, key, int64(pool)).Result()
	if err != nil {
		return nil, fmt.Errorf("error sampling quiz ids: %w", err)
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > n {
		ids = ids[:n]
	}
	return r.loadQuizzes(ctx, ids)
}

// TopLikedQuizzes returns the n most liked quizzes, most liked first
func (r *RedisClient) TopLikedQuizzes(ctx context.Context, n int) ([]models.QuizRecord, error) {
	if n <= 0 {
		return []models.QuizRecord{}, nil
	}
	ids, err := r.client.ZRevRange(ctx, quizLikesKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading like ranking: %w", err)
	}
	return r.loadQuizzes(ctx, ids)
}

// GetQuiz returns one quiz with its current like count
func (r *RedisClient) GetQuiz(ctx context.Context, id string) (*models.QuizRecord, error) {
	quizzes, err := r.loadQuizzes(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, fmt.Errorf("quiz %s: %w", id, models.ErrQuizNotFound)
	}
	return &quizzes[0], nil
}

// QuizCount returns the number of stored quizzes
func (r *RedisClient) QuizCount(ctx context.Context) (int, error) {
	count, err := r.client.SCard(ctx, quizIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting quiz count: %w", err)
	}
	return int(count), nil
}

// loadQuizzes fetches documents and like counts in one round trip, keeping
// the order of ids and skipping ids without a document
func (r *RedisClient) loadQuizzes(ctx context.Context, ids []string) ([]models.QuizRecord, error) {
	quizzes := make([]models.QuizRecord, 0, len(ids))
	if len(ids) == 0 {
		return quizzes, nil
	}

	docs := make([]*redis.StringCmd, len(ids))
	likes := make([]*redis.FloatCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			docs[i] = pipe.Get(ctx, quizDocKey(id))
			likes[i] = pipe.ZScore(ctx, quizLikesKey, id)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("error loading quizzes: %w", err)
	}

	for i, id := range ids {
		data, err := docs[i].Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error getting quiz %s: %w", id, err)
		}

		var q models.QuizRecord
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("error parsing quiz %s: %w", id, err)
		}
		q.ID = id
		if score, err := likes[i].Result(); err == nil {
			q.Likes = int64(score)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, nil
}
