package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog-console/internal/domain/models"
	"blog-console/internal/storage"
)

const defaultTimeout = 5 * time.Second

// Client is the part of *redis.Client the session storage needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Connect opens a Redis client and checks it answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	const op = "storage.redis.Connect"

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

type Storage struct {
	client Client
}

func New(client Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) SaveSession(ctx context.Context, id string, cred models.Credential, ttl time.Duration) error {
	const op = "storage.redis.SaveSession"

	value, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.Set(ctx, key(id), value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Session(ctx context.Context, id string) (models.Credential, error) {
	const op = "storage.redis.Session"

	val, err := s.client.Get(ctx, key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Credential{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	var cred models.Credential
	if err := json.Unmarshal([]byte(val), &cred); err != nil {
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	return cred, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.redis.DeleteSession"

	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func key(id string) string {
	return fmt.Sprintf("session:%s", id)
}
