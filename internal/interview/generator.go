package interview

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// Sentinel values recorded when the model's output cannot be used
const (
	FallbackQuestion      = "No question available."
	FallbackEstimatedTime = "Unknown"
)

// GenerateRequest is the input for producing the next interview question
type GenerateRequest struct {
	JobDescription string
	ResumeText     string
	Difficulty     models.Difficulty
	Category       models.Category
	// History holds every prior turn, the pending answer included
	History []models.Turn
}

// GeneratedQuestion is the generator's result. Malformed marks a sentinel
// produced because the model output did not match the expected shape.
type GeneratedQuestion struct {
	Question      string
	EstimatedTime string
	Malformed     bool
}

// Generator produces the next interview question.
// Call failures are returned as ErrUpstreamThrottled or ErrUpstreamTimeout;
// unusable output is not an error and yields a Malformed sentinel.
type Generator interface {
	GenerateQuestion(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error)
}

var questionSchema = llm.MustCompileSchema(`{
	"type": "object",
	"required": ["Question"],
	"properties": {
		"Question": {"type": "string", "minLength": 1, "pattern": "\\S"},
		"EstimatedTime": {"type": "string"}
	}
}`)

type questionPayload struct {
	Question      string `json:"Question"`
	EstimatedTime string `json:"EstimatedTime"`
}

// LLMGenerator generates questions with a language model
type LLMGenerator struct {
	client llm.Client
}

// NewLLMGenerator creates a generator backed by client
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// GenerateQuestion implements Generator
func (g *LLMGenerator) GenerateQuestion(ctx context.Context, req GenerateRequest) (GeneratedQuestion, error) {
	response, err := g.client.GenerateContent(ctx, buildQuestionPrompt(req))
	if err != nil {
		return GeneratedQuestion{}, llm.ClassifyError(err)
	}

	return parseQuestion(response), nil
}

// parseQuestion never fails: anything unusable becomes the sentinel
func parseQuestion(response string) GeneratedQuestion {
	var payload questionPayload
	if err := llm.DecodeObject(response, questionSchema, &payload); err != nil {
		log.Printf("Warning: unusable question output (%v): %s", err, llm.Truncate(response, 200))
		return GeneratedQuestion{
			Question:      FallbackQuestion,
			EstimatedTime: FallbackEstimatedTime,
			Malformed:     true,
		}
	}

	estimated := strings.TrimSpace(payload.EstimatedTime)
	if estimated == "" {
		estimated = FallbackEstimatedTime
	}
	return GeneratedQuestion{
		Question:      strings.TrimSpace(payload.Question),
		EstimatedTime: estimated,
	}
}

func buildQuestionPrompt(req GenerateRequest) string {
	var history strings.Builder
	for i, turn := range req.History {
		answer := "(no answer)"
		if turn.UserResponse != nil {
			answer = *turn.UserResponse
		}
		fmt.Fprintf(&history, "Q%d: %s\nCandidate's answer: %s\n\n", i+1, turn.Question, answer)
	}
	if history.Len() == 0 {
		history.WriteString("(none yet)\n")
	}

	return fmt.Sprintf(`You are a structured technical interviewer. Ask the candidate one %s %s interview question.

Base the question on the job description and on the skills in the candidate's resume.
Each question must cover a concept not already covered below. Do not repeat earlier questions.
Ignore answers that are off topic.

JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

PREVIOUS QUESTIONS AND ANSWERS:
%s
Respond ONLY with a JSON object in this exact format (no markdown):
{
  "Question": "<one question>",
  "EstimatedTime": "<expected answer time, e.g. 3 minutes>"
}`,
		req.Difficulty, req.Category,
		req.JobDescription,
		req.ResumeText,
		history.String())
}
