package interview

import (
	"errors"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrTailAnswered is returned when the pending question was already answered
	ErrTailAnswered = errors.New("pending question already answered")
	// ErrExtractionFailed is returned when no text could be read from the resume
	ErrExtractionFailed = errors.New("failed to extract text from document")

	// Upstream failures share the llm package sentinels so callers match
	// either name with errors.Is
	ErrUpstreamThrottled = llm.ErrUpstreamThrottled
	ErrUpstreamTimeout   = llm.ErrUpstreamTimeout
	ErrMalformedResponse = llm.ErrMalformedResponse
)
