package interview

import (
	"context"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// Store persists interview sessions. Implementations must be safe for
// concurrent use and must hand out copies, never shared session state.
type Store interface {
	// Create stores a new session holding its first unanswered turn and
	// returns a fresh unique id
	Create(ctx context.Context, jobDescription, resumeText string, first models.Turn) (string, error)
	// Get returns a copy of the session or ErrSessionNotFound
	Get(ctx context.Context, id string) (*models.Session, error)
	// AppendTurn records answer on the unanswered tail and appends next in
	// one atomic step. It returns ErrTailAnswered if the tail was already
	// answered.
	AppendTurn(ctx context.Context, id string, answer models.Answer, next models.Turn) (*models.Session, error)
	// Close releases background resources
	Close() error
}

// answerTail applies an answer and the next turn to s in place
func answerTail(s *models.Session, answer models.Answer, next models.Turn) error {
	tail := s.Tail()
	if tail == nil || tail.Answered() {
		return ErrTailAnswered
	}

	text := answer.Text
	at := answer.At
	tail.UserResponse = &text
	tail.UserAnsweredAt = &at

	s.Turns = append(s.Turns, next)
	return nil
}
