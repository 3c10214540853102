package interview

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fmuoria/AI-Interview-agent/internal/ingestion"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

type serviceFixture struct {
	svc   *Service
	store *MemoryStore
	gen   *fakeGenerator
	clock *fakeClock
}

func newServiceFixture(t *testing.T, opts Options) *serviceFixture {
	t.Helper()
	store, clock := newTestMemoryStore(t, time.Hour)
	gen := &fakeGenerator{}
	svc := NewService(store, gen, fakeExtractor{}, opts)
	svc.now = clock.Now
	return &serviceFixture{svc: svc, store: store, gen: gen, clock: clock}
}

func (f *serviceFixture) start(t *testing.T) string {
	t.Helper()
	res, err := f.svc.Start(context.Background(), models.StartRequest{
		JobDescription: testJobDescription(),
		Document:       testDocument(),
	})
	require.NoError(t, err)
	return res.SessionID
}

func (f *serviceFixture) answer(t *testing.T, id, text string) *AnswerResult {
	t.Helper()
	res, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: text})
	require.NoError(t, err)
	return res
}

func TestStartCreatesSessionWithOnePendingTurn(t *testing.T) {
	f := newServiceFixture(t, Options{})

	res, err := f.svc.Start(context.Background(), models.StartRequest{
		JobDescription: testJobDescription(),
		Document:       testDocument(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Question A", res.Question)

	sess, err := f.svc.Session(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 1)
	assert.False(t, sess.Turns[0].Answered())
	assert.Equal(t, models.DifficultyEasy, sess.Turns[0].Difficulty)
	assert.Equal(t, models.CategoryTechnical, sess.Turns[0].Category)
	assert.Equal(t, f.clock.Now(), sess.Turns[0].QuestionAskedAt)
	assert.Equal(t, "Jane Doe. Six years of Go, gRPC and PostgreSQL.", sess.ResumeText)

	calls := f.gen.calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].History)
	assert.Equal(t, models.DifficultyEasy, calls[0].Difficulty)
	assert.Equal(t, models.CategoryTechnical, calls[0].Category)
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.StartRequest
		message string
	}{
		{
			name:    "short job description",
			req:     models.StartRequest{JobDescription: "Go developer", Document: testDocument()},
			message: "Job description must be at least 50 characters long",
		},
		{
			name:    "missing file",
			req:     models.StartRequest{JobDescription: testJobDescription()},
			message: "No file uploaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, Options{})
			_, err := f.svc.Start(context.Background(), tt.req)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
			assert.Zero(t, f.store.Len(), "no session may be created")
			assert.Empty(t, f.gen.calls())
		})
	}
}

func TestStartExtractionFailure(t *testing.T) {
	store, _ := newTestMemoryStore(t, time.Hour)
	gen := &fakeGenerator{}
	svc := NewService(store, gen, fakeExtractor{err: ingestion.ErrUnsupportedType}, Options{})

	_, err := svc.Start(context.Background(), models.StartRequest{
		JobDescription: testJobDescription(),
		Document:       testDocument(),
	})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.ErrorIs(t, err, ingestion.ErrUnsupportedType)
	assert.Zero(t, store.Len())
	assert.Empty(t, gen.calls())
}

func TestStartGeneratorFailureCreatesNothing(t *testing.T) {
	f := newServiceFixture(t, Options{})
	f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
		return GeneratedQuestion{}, ErrUpstreamThrottled
	}

	_, err := f.svc.Start(context.Background(), models.StartRequest{
		JobDescription: testJobDescription(),
		Document:       testDocument(),
	})
	assert.ErrorIs(t, err, ErrUpstreamThrottled)
	assert.Zero(t, f.store.Len())
}

func TestSubmitFirstAnswer(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	f.clock.Advance(2 * time.Minute)
	res := f.answer(t, id, "I used PostgreSQL")

	assert.False(t, res.Complete)
	require.Len(t, res.Session.Turns, 2)

	first := res.Session.Turns[0]
	require.True(t, first.Answered())
	assert.Equal(t, "I used PostgreSQL", *first.UserResponse)
	require.NotNil(t, first.UserAnsweredAt)
	assert.Equal(t, f.clock.Now(), *first.UserAnsweredAt)

	second := res.Session.Turns[1]
	assert.False(t, second.Answered())
	assert.Equal(t, "Question B", second.Question)
	assert.Equal(t, models.DifficultyEasy, second.Difficulty)
	assert.Equal(t, models.CategoryBehavioral, second.Category)

	calls := f.gen.calls()
	require.Len(t, calls, 2)
	require.Len(t, calls[1].History, 1)
	require.NotNil(t, calls[1].History[0].UserResponse, "generator sees the pending answer")
	assert.Equal(t, "I used PostgreSQL", *calls[1].History[0].UserResponse)
}

func TestSubmitAnswerProgression(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	for i := 0; i < 5; i++ {
		f.answer(t, id, "a reasonably long answer")
	}

	calls := f.gen.calls()
	require.Len(t, calls, 6)
	want := []struct {
		d models.Difficulty
		c models.Category
	}{
		{models.DifficultyEasy, models.CategoryTechnical},
		{models.DifficultyEasy, models.CategoryBehavioral},
		{models.DifficultyMedium, models.CategoryTechnical},
		{models.DifficultyMedium, models.CategoryBehavioral},
		{models.DifficultyHard, models.CategoryTechnical},
		{models.DifficultyHard, models.CategoryBehavioral},
	}
	for i, w := range want {
		assert.Equal(t, w.d, calls[i].Difficulty, "call %d", i)
		assert.Equal(t, w.c, calls[i].Category, "call %d", i)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	_, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: " ok  "})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Answer must be at least 5 characters long", verr.Message)

	_, err = f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: "nope", Answer: "long enough"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{Answer: "long enough"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The session is checked before the answer length
	_, err = f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: "nope", Answer: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess, err := f.svc.Session(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 1)
	assert.False(t, sess.Turns[0].Answered())
}

func TestSubmitAnswerUpstreamFailureRecordsNothing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"throttled", ErrUpstreamThrottled, ErrUpstreamThrottled},
		{"unclassified", errBoom, ErrUpstreamThrottled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, Options{})
			id := f.start(t)

			f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
				return GeneratedQuestion{}, tt.err
			}
			_, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: "my answer"})
			assert.ErrorIs(t, err, tt.want)

			sess, err := f.svc.Session(context.Background(), id)
			require.NoError(t, err)
			require.Len(t, sess.Turns, 1)
			assert.False(t, sess.Turns[0].Answered(), "answer must not be recorded")

			// The same answer can be resubmitted once the upstream recovers
			f.gen.fn = nil
			res := f.answer(t, id, "my answer")
			assert.Len(t, res.Session.Turns, 2)
		})
	}
}

func TestSubmitAnswerLogsRateLimitRejections(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{"quota exhausted", status.Error(codes.ResourceExhausted, "quota exceeded"), true},
		{"other upstream failure", errBoom, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			f := newServiceFixture(t, Options{})
			id := f.start(t)

			f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
				return GeneratedQuestion{}, tt.err
			}
			_, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: "my answer"})
			assert.ErrorIs(t, err, ErrUpstreamThrottled)
			assert.Equal(t, tt.rateLimited, bytes.Contains(buf.Bytes(), []byte("rate limited")), buf.String())
		})
	}
}

func TestSubmitAnswerTimeout(t *testing.T) {
	f := newServiceFixture(t, Options{GeneratorTimeout: 20 * time.Millisecond})
	id := f.start(t)

	f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
		<-ctx.Done()
		return GeneratedQuestion{}, ctx.Err()
	}

	_, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: "my answer"})
	assert.ErrorIs(t, err, ErrUpstreamTimeout)

	sess, err := f.svc.Session(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 1)
}

func TestSubmitAnswerCallerCancellation(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.gen.fn = func(genCtx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
		cancel()
		<-genCtx.Done()
		return GeneratedQuestion{}, genCtx.Err()
	}

	_, err := f.svc.SubmitAnswer(ctx, models.SubmitAnswerRequest{SessionID: id, Answer: "my answer"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUpstreamThrottled))
}

func TestSubmitAnswerMalformedOutputStillAdvances(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
		return parseQuestion("garbage"), nil
	}

	res := f.answer(t, id, "my answer")
	require.Len(t, res.Session.Turns, 2)
	tail := res.Session.Turns[1]
	assert.Equal(t, FallbackQuestion, tail.Question)
	assert.Equal(t, FallbackEstimatedTime, tail.EstimatedDuration)
	assert.True(t, tail.Fallback)
}

func TestSubmitAnswerAtCapIsIdempotent(t *testing.T) {
	f := newServiceFixture(t, Options{MaxTurns: 3})
	id := f.start(t)

	assert.False(t, f.answer(t, id, "answer one").Complete)
	res := f.answer(t, id, "answer two")
	assert.True(t, res.Complete)
	assert.False(t, res.Unchanged)
	require.Len(t, res.Session.Turns, 3)

	callsBefore := len(f.gen.calls())
	for i := 0; i < 2; i++ {
		res = f.answer(t, id, "answer three")
		assert.True(t, res.Complete)
		assert.True(t, res.Unchanged)
		require.Len(t, res.Session.Turns, 3)
		assert.False(t, res.Session.Turns[2].Answered(), "the final turn stays unanswered")
	}
	assert.Equal(t, callsBefore, len(f.gen.calls()), "no generation after the cap")
}

func TestDefaultCapAllowsTenAnswers(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	var res *AnswerResult
	for i := 0; i < 10; i++ {
		res = f.answer(t, id, "a reasonably long answer")
	}
	assert.True(t, res.Complete)
	assert.Len(t, res.Session.Turns, DefaultMaxTurns)

	for i, turn := range res.Session.Turns[:10] {
		assert.True(t, turn.Answered(), "turn %d", i)
	}
}

func TestConcurrentSubmitsKeepSinglePendingTurn(t *testing.T) {
	f := newServiceFixture(t, Options{})
	id := f.start(t)

	f.gen.fn = func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
		time.Sleep(5 * time.Millisecond)
		return GeneratedQuestion{Question: "next", EstimatedTime: "1 minute"}, nil
	}

	const submitters = 5
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitAnswer(context.Background(), models.SubmitAnswerRequest{SessionID: id, Answer: "concurrent answer"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := f.svc.Session(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, sess.Turns, 1+submitters)
	for i, turn := range sess.Turns {
		if i == len(sess.Turns)-1 {
			assert.False(t, turn.Answered())
		} else {
			assert.True(t, turn.Answered(), "turn %d", i)
		}
	}
	assert.Zero(t, f.svc.locks.size())
}

func TestSessionUnknown(t *testing.T) {
	f := newServiceFixture(t, Options{})
	_, err := f.svc.Session(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Session(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
