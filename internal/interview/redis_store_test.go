package interview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, ttl)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Hour)

	id, err := s.Create(ctx, "jd", "resume text", models.Turn{
		Question:          "Q1",
		EstimatedDuration: "2 minutes",
		Difficulty:        models.DifficultyEasy,
		Category:          models.CategoryTechnical,
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKeyPrefix+id))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+id))

	sess, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, "resume text", sess.ResumeText)
	require.Len(t, sess.Turns, 1)
	assert.Equal(t, models.DifficultyEasy, sess.Turns[0].Difficulty)

	at := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	updated, err := s.AppendTurn(ctx, id, models.Answer{Text: "answer one", At: at}, models.Turn{Question: "Q2"})
	require.NoError(t, err)
	require.Len(t, updated.Turns, 2)
	assert.Equal(t, "answer one", *updated.Turns[0].UserResponse)

	reloaded, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, reloaded.Turns, 2)
	assert.True(t, reloaded.Turns[0].UserAnsweredAt.Equal(at))
	assert.False(t, reloaded.Turns[1].Answered())
}

func TestRedisStoreNotFoundAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.AppendTurn(ctx, "missing", models.Answer{Text: "x"}, models.Turn{})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	id, err := s.Create(ctx, "jd", "resume", models.Turn{Question: "Q1"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreAppendRejectsAnsweredTail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t, 0)

	resp := "done"
	id, err := s.Create(ctx, "jd", "resume", models.Turn{Question: "Q1", UserResponse: &resp})
	require.NoError(t, err)

	_, err = s.AppendTurn(ctx, id, models.Answer{Text: "again"}, models.Turn{Question: "Q2"})
	assert.ErrorIs(t, err, ErrTailAnswered)
}

func TestRedisStoreConcurrentAppendsKeepSinglePendingTurn(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t, time.Hour)

	id, err := s.Create(ctx, "jd", "resume", models.Turn{Question: "Q1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either outcome is fine; the invariant is what matters
			_, _ = s.AppendTurn(ctx, id, models.Answer{Text: "answer"}, models.Turn{Question: "next"})
		}()
	}
	wg.Wait()

	sess, err := s.Get(ctx, id)
	require.NoError(t, err)
	pending := 0
	for i, turn := range sess.Turns {
		if !turn.Answered() {
			pending++
			assert.Equal(t, len(sess.Turns)-1, i, "only the tail may be unanswered")
		}
	}
	assert.Equal(t, 1, pending)
}
