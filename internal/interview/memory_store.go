package interview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// MemoryStore keeps sessions in process memory and evicts the ones that
// have been idle longer than the TTL
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates an in-memory store. A zero TTL keeps sessions for
// the life of the process.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if ttl > 0 {
		go s.janitor(janitorInterval(ttl))
	} else {
		close(s.done)
	}
	return s
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.evictExpired(); n > 0 {
				log.Printf("Evicted %d idle interview sessions", n)
			}
		case <-s.stop:
			return
		}
	}
}

// evictExpired removes idle sessions and returns how many were dropped
func (s *MemoryStore) evictExpired() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *MemoryStore) expired(sess *models.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}

// Create implements Store
func (s *MemoryStore) Create(ctx context.Context, jobDescription, resumeText string, first models.Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now()
	sess := &models.Session{
		ID:             uuid.NewString(),
		JobDescription: jobDescription,
		ResumeText:     resumeText,
		Turns:          []models.Turn{first},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.ID, nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, s.now()) {
		return nil, ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// AppendTurn implements Store
func (s *MemoryStore) AppendTurn(ctx context.Context, id string, answer models.Answer, next models.Turn) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, now) {
		return nil, ErrSessionNotFound
	}

	// Work on a copy so a failed guard leaves the stored session untouched
	updated := sess.Clone()
	if err := answerTail(updated, answer, next); err != nil {
		return nil, err
	}
	updated.UpdatedAt = now
	s.sessions[id] = updated

	return updated.Clone(), nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}
