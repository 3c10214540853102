package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

type fakeGenerator struct {
	mu       sync.Mutex
	requests []GenerateRequest
	fn       func(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error)
}

func (g *fakeGenerator) GenerateQuestion(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	n := len(g.requests)
	g.mu.Unlock()

	if g.fn != nil {
		return g.fn(ctx, req)
	}
	return GeneratedQuestion{
		Question:      "Question " + string(rune('A'+n-1)),
		EstimatedTime: "2 minutes",
	}, nil
}

func (g *fakeGenerator) calls() []GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GenerateRequest(nil), g.requests...)
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(filename, mimeType string, data []byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if e.text != "" {
		return e.text, nil
	}
	return string(data), nil
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = errors.New("boom")

func testJobDescription() string {
	return "Backend engineer building Go microservices with PostgreSQL, Redis and Kubernetes on GCP."
}

func testDocument() *models.Document {
	return &models.Document{
		Filename: "resume.txt",
		MIMEType: "text/plain",
		Data:     []byte("Jane Doe. Six years of Go, gRPC and PostgreSQL."),
	}
}
