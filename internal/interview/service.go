// Package interview implements the multi-turn interview session protocol:
// starting a session from a resume and job description, accepting answers,
// and asking progressively harder questions until the turn cap is reached.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

const (
	// DefaultMaxTurns is the number of generated turns in a session. The last
	// one is never answered, so candidates answer DefaultMaxTurns-1 questions.
	DefaultMaxTurns = 11
	// DefaultGeneratorTimeout bounds a single question generation call
	DefaultGeneratorTimeout = 30 * time.Second
)

// Extractor reads plain text out of an uploaded document
type Extractor interface {
	Extract(filename, mimeType string, data []byte) (string, error)
}

// Options configures a Service
type Options struct {
	MaxTurns           int
	GeneratorTimeout   time.Duration
	ThreeWayCategories bool
}

// Service runs interview sessions
type Service struct {
	store       Store
	generator   Generator
	extractor   Extractor
	progression Progression
	maxTurns    int
	timeout     time.Duration
	locks       *keyedMutex
	now         func() time.Time
}

// StartResult is the outcome of starting an interview
type StartResult struct {
	SessionID string
	Question  string
}

// AnswerResult is the outcome of submitting an answer. Complete is set when
// the session has reached its turn cap; Unchanged when it had already
// reached it and the answer was not recorded.
type AnswerResult struct {
	Session   *models.Session
	Complete  bool
	Unchanged bool
}

// NewService creates an interview service
func NewService(store Store, generator Generator, extractor Extractor, opts Options) *Service {
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.GeneratorTimeout <= 0 {
		opts.GeneratorTimeout = DefaultGeneratorTimeout
	}

	return &Service{
		store:       store,
		generator:   generator,
		extractor:   extractor,
		progression: Progression{ThreeWayCategories: opts.ThreeWayCategories},
		maxTurns:    opts.MaxTurns,
		timeout:     opts.GeneratorTimeout,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// MaxTurns returns the turn cap
func (s *Service) MaxTurns() int {
	return s.maxTurns
}

// IsComplete reports whether no further question will be generated
func (s *Service) IsComplete(sess *models.Session) bool {
	return len(sess.Turns) >= s.maxTurns
}

// ExtractResume runs text extraction, reporting failures as ErrExtractionFailed
func (s *Service) ExtractResume(doc *models.Document) (string, error) {
	text, err := s.extractor.Extract(doc.Filename, doc.MIMEType, doc.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return text, nil
}

// Start validates the request, extracts the resume text, asks the first
// question and creates the session. Nothing is stored on failure.
func (s *Service) Start(ctx context.Context, req models.StartRequest) (*StartResult, error) {
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	resumeText, err := s.ExtractResume(req.Document)
	if err != nil {
		return nil, err
	}

	difficulty, category := s.progression.Next(0)
	generated, err := s.generate(ctx, GenerateRequest{
		JobDescription: req.JobDescription,
		ResumeText:     resumeText,
		Difficulty:     difficulty,
		Category:       category,
	})
	if err != nil {
		return nil, err
	}

	first := s.newTurn(generated, difficulty, category)
	id, err := s.store.Create(ctx, req.JobDescription, resumeText, first)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("Started interview session %s (resume: %d chars, fallback question: %v)", id, len(resumeText), generated.Malformed)
	return &StartResult{SessionID: id, Question: first.Question}, nil
}

// SubmitAnswer records the answer to the pending question and appends the
// next one. At the turn cap the session is returned unchanged with
// Complete set. Answers for one session are processed one at a time.
func (s *Service) SubmitAnswer(ctx context.Context, req models.SubmitAnswerRequest) (*AnswerResult, error) {
	if req.SessionID == "" {
		return nil, ErrSessionNotFound
	}

	unlock, err := s.locks.Lock(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// An unknown session is reported before a short answer
	sess, err := s.store.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	if s.IsComplete(sess) {
		return &AnswerResult{Session: sess, Complete: true, Unchanged: true}, nil
	}

	answer := models.Answer{Text: req.Answer, At: s.now()}

	// The prompt sees the pending answer; the store only sees it once the
	// next question exists
	history := sess.Clone().Turns
	if tail := &history[len(history)-1]; !tail.Answered() {
		text := answer.Text
		tail.UserResponse = &text
	}

	difficulty, category := s.progression.Next(len(sess.Turns))
	generated, err := s.generate(ctx, GenerateRequest{
		JobDescription: sess.JobDescription,
		ResumeText:     sess.ResumeText,
		Difficulty:     difficulty,
		Category:       category,
		History:        history,
	})
	if err != nil {
		log.Printf("Question generation failed for session %s at turn %d: %v", sess.ID, len(sess.Turns), err)
		return nil, err
	}

	updated, err := s.store.AppendTurn(ctx, sess.ID, answer, s.newTurn(generated, difficulty, category))
	if err != nil {
		return nil, err
	}

	return &AnswerResult{Session: updated, Complete: s.IsComplete(updated)}, nil
}

// Session returns a copy of a stored session
func (s *Service) Session(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// generate runs one generator call under the configured budget
func (s *Service) generate(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, err := s.generator.GenerateQuestion(callCtx, req)
	if err == nil {
		return q, nil
	}

	// The caller going away is not an upstream failure
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		return GeneratedQuestion{}, ctxErr
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUpstreamTimeout) {
		return GeneratedQuestion{}, fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	if llm.IsRateLimitError(err) {
		log.Printf("Model provider rate limited question generation: %v", err)
	}
	return GeneratedQuestion{}, llm.ClassifyError(err)
}

func (s *Service) newTurn(q GeneratedQuestion, difficulty models.Difficulty, category models.Category) models.Turn {
	return models.Turn{
		Question:          q.Question,
		QuestionAskedAt:   s.now(),
		EstimatedDuration: q.EstimatedTime,
		Difficulty:        difficulty,
		Category:          category,
		Fallback:          q.Malformed,
	}
}
