package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// GetString mengembalikan ("", false, nil) untuk key yang tidak ada,
// supaya caller tidak perlu membedakan redis.Nil sendiri.
func GetString(ctx context.Context, rdb *redis.Client, key string) (string, bool, error) {
	s, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}
