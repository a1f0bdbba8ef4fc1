// Package redis is the document store of the quiz server.
//
// Key layout:
//
//	quiz:doc:{id}          JSON quiz record
//	quiz:ids               set of all quiz ids
//	quiz:category:{name}   set of quiz ids per category
//	quiz:likes             zset quiz id -> like count
//	quiz:votes:{id}        hash user id -> vote time
//	user:{id}              hash of user fields
//	user:{id}:scores       hash category -> best score
//	users:ids              set of user ids
//	users:by_name          hash real name -> user id
//	quiz:session:{id}      JSON play session, with TTL
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client with the quiz data model
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and verifies the connection with a PING
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	slog.Info("✅ connected to redis", "addr", addr, "db", db)
	return &RedisClient{client: rdb}, nil
}

// NewFromClient wraps an existing client
func NewFromClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{client: rdb}
}

// Close closes the underlying connection pool
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck pings the server
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
