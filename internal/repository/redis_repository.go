package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bassista/go_flix/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisRepository stores the favorites document as one string value.
type RedisRepository struct {
	rdb *redis.Client
	key string
}

// NewRedisRepository uses StorageKey unless key is set.
func NewRedisRepository(rdb *redis.Client, key string) (*RedisRepository, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		key = StorageKey
	}
	return &RedisRepository{rdb: rdb, key: key}, nil
}

func (r *RedisRepository) Load(ctx context.Context) ([]model.Movie, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}

	var movies []model.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if err := validateMovies(movies); err != nil {
		return nil, fmt.Errorf("validate favorites: %w", err)
	}
	return normalize(movies), nil
}

func (r *RedisRepository) Save(ctx context.Context, movies []model.Movie) error {
	movies = normalize(movies)
	if err := validateMovies(movies); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}
	payload, err := json.Marshal(movies)
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
