package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/quizquest/pkg/models"
)

// toggleLikeScript flips the vote marker and adjusts the counter in the same
// script, so the two never drift apart.
//
// KEYS[1] quiz document, KEYS[2] vote hash, KEYS[3] like zset
// ARGV[1] user id, ARGV[2] vote time, ARGV[3] quiz id
// Returns {found, liked, likes}
var toggleLikeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return {0, 0, 0}
end
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	redis.call('HDEL', KEYS[2], ARGV[1])
	local n = redis.call('ZINCRBY', KEYS[3], -1, ARGV[3])
	return {1, 0, tonumber(n)}
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
local n = redis.call('ZINCRBY', KEYS[3], 1, ARGV[3])
return {1, 1, tonumber(n)}
`)

// ToggleLike adds or removes the user's vote on a quiz and returns the new
// state and like count
func (r *RedisClient) ToggleLike(ctx context.Context, quizID, userID string, at time.Time) (bool, int64, error) {
	keys := []string{quizDocKey(quizID), quizVotesKey(quizID), quizLikesKey}
	res, err := toggleLikeScript.Run(ctx, r.client, keys, userID, at.UTC().Format(time.RFC3339), quizID).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("error toggling like on %s: %w", quizID, err)
	}
	if len(res) != 3 {
		return false, 0, fmt.Errorf("unexpected like script reply %v", res)
	}
	if res[0] == 0 {
		return false, 0, fmt.Errorf("quiz %s: %w", quizID, models.ErrQuizNotFound)
	}
	return res[1] == 1, res[2], nil
}

// HasLiked reports whether the user's vote marker exists
func (r *RedisClient) HasLiked(ctx context.Context, quizID, userID string) (bool, error) {
	ok, err := r.client.HExists(ctx, quizVotesKey(quizID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("error reading vote on %s: %w", quizID, err)
	}
	return ok, nil
}
