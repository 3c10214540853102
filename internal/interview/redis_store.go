package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

const (
	redisKeyPrefix = "interview:session:"
	// maxAppendAttempts bounds optimistic transaction retries under contention
	maxAppendAttempts = 5
)

// RedisStore keeps sessions as JSON documents in Redis so several server
// processes can share them. Idle expiry is the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed session store. A zero TTL stores
// sessions without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// DialRedis connects to Redis and verifies the connection
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

// Create implements Store
func (r *RedisStore) Create(ctx context.Context, jobDescription, resumeText string, first models.Turn) (string, error) {
	now := r.now()
	sess := &models.Session{
		ID:             uuid.NewString(),
		JobDescription: jobDescription,
		ResumeText:     resumeText,
		Turns:          []models.Turn{first},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(sess.ID), data, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("session: failed to store: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("session: id collision for %s", sess.ID)
	}
	return sess.ID, nil
}

// Get implements Store
func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return r.load(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) load(ctx context.Context, c getter, id string) (*models.Session, error) {
	val, err := c.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: failed to load: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &sess, nil
}

// AppendTurn implements Store. The read-modify-write runs in a WATCH
// transaction; a concurrent writer on another process forces a retry.
func (r *RedisStore) AppendTurn(ctx context.Context, id string, answer models.Answer, next models.Turn) (*models.Session, error) {
	key := r.key(id)

	var updated *models.Session
	txf := func(tx *redis.Tx) error {
		sess, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := answerTail(sess, answer, next); err != nil {
			return err
		}
		sess.UpdatedAt = r.now()

		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("session: failed to marshal: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = sess
		return nil
	}

	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("session: too much contention updating %s", id)
}

// Close closes the Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
