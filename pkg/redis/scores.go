package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/backsoul/quizquest/pkg/models"
)

// bestScoreScript writes the score only when it beats the stored one.
//
// KEYS[1] user hash, KEYS[2] score hash; ARGV[1] category, ARGV[2] score
// Returns {found, previous, updated}
var bestScoreScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return {0, 0, 0}
end
local current = tonumber(redis.call('HGET', KEYS[2], ARGV[1]) or '0')
local score = tonumber(ARGV[2])
if score > current then
	redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
	return {1, current, 1}
end
return {1, current, 0}
`)

// SetBestScore stores score for category if it improves on the current best
func (r *RedisClient) SetBestScore(ctx context.Context, userID, category string, score int) (int, bool, error) {
	keys := []string{userKey(userID), userScoresKey(userID)}
	res, err := bestScoreScript.Run(ctx, r.client, keys, category, score).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("error recording score for %s: %w", userID, err)
	}
	if len(res) != 3 {
		return 0, false, fmt.Errorf("unexpected score script reply %v", res)
	}
	if res[0] == 0 {
		return 0, false, fmt.Errorf("user %s: %w", userID, models.ErrUserNotFound)
	}
	return int(res[1]), res[2] == 1, nil
}
