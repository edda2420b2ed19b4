package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctchen222/Gomoku/internal/game"

	"github.com/go-redis/redis/v8"
)

type redisGameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGameRepository creates a new Redis-based GameRepository. Each game
// is a JSON value under game:<id> that expires ttl after its last write; a
// zero ttl keeps games until they are deleted.
func NewRedisGameRepository(rdb *redis.Client, ttl time.Duration) GameRepository {
	return &redisGameRepository{rdb: rdb, ttl: ttl}
}

// Create stores a new game, refusing to overwrite an existing one.
func (r *redisGameRepository) Create(ctx context.Context, id string, state game.State) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Create", id)
	defer func() { endSpan(span, err) }()

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	ok, err := r.rdb.SetNX(ctx, gameKey(id), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	if !ok {
		return ErrGameExists
	}
	return nil
}

// FindByID retrieves the current game state from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (state game.State, err error) {
	ctx, span := startSpan(ctx, "GameRepository.FindByID", id)
	defer func() { endSpan(span, err) }()

	data, err := r.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.State{}, ErrGameNotFound
	}
	if err != nil {
		return game.State{}, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	return decodeState(data)
}

// Save overwrites an existing game and refreshes its expiry.
func (r *redisGameRepository) Save(ctx context.Context, id string, state game.State) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Save", id)
	defer func() { endSpan(span, err) }()

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	ok, err := r.rdb.SetXX(ctx, gameKey(id), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save game state to redis: %w", err)
	}
	if !ok {
		return ErrGameNotFound
	}
	return nil
}

func (r *redisGameRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "GameRepository.Delete", id)
	defer func() { endSpan(span, err) }()

	n, err := r.rdb.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game from redis: %w", err)
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}
