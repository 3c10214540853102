// Package scoring evaluates candidates with a language model: interview
// transcripts after the session and resumes before it.
package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

const (
	// maxAnswerChars caps each answer in the scoring prompt
	maxAnswerChars = 3000
	// maxComponentScore is the upper bound for each score dimension
	maxComponentScore = 100
)

var scoreSchema = llm.MustCompileSchema(`{
	"type": "object",
	"required": ["Technical", "Communication", "Responsiveness", "ProblemSolving", "SoftSkills", "Responded"],
	"properties": {
		"OverAll": {"type": "number"},
		"Technical": {"type": "number"},
		"Communication": {"type": "number"},
		"Responsiveness": {"type": "number"},
		"ProblemSolving": {"type": "number"},
		"SoftSkills": {"type": "number"},
		"Responded": {"type": "number"},
		"feedback": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"category": {"type": "string"},
					"comment": {"type": "string"}
				}
			}
		},
		"suggestedImprovements": {"type": "array", "items": {"type": "string"}}
	}
}`)

// Scorer evaluates interview transcripts using LLM
type Scorer struct {
	llmClient llm.Client
}

// NewScorer creates a new scorer instance
func NewScorer(llmClient llm.Client) *Scorer {
	return &Scorer{
		llmClient: llmClient,
	}
}

// ScoreTranscript scores the answered turns of an interview. Unanswered
// turns are ignored; a transcript without answers is a validation error.
func (s *Scorer) ScoreTranscript(ctx context.Context, turns []models.TurnView) (models.InterviewScore, error) {
	answered := make([]models.TurnView, 0, len(turns))
	for _, t := range turns {
		if t.UserResponse != nil && strings.TrimSpace(*t.UserResponse) != "" {
			answered = append(answered, t)
		}
	}
	if len(answered) == 0 {
		return models.InterviewScore{}, &models.ValidationError{
			Field:   "questions",
			Message: "Transcript has no answered questions",
		}
	}

	response, err := s.llmClient.GenerateContent(ctx, s.buildScoringPrompt(answered))
	if err != nil {
		return models.InterviewScore{}, fmt.Errorf("failed to get LLM response: %w", llm.ClassifyError(err))
	}

	score, err := s.parseScore(response)
	if err != nil {
		return models.InterviewScore{}, fmt.Errorf("failed to parse scores: %w", err)
	}

	// Overall is always the sum of the components, whatever the model said
	score.OverAll = score.Technical + score.Communication + score.Responsiveness +
		score.ProblemSolving + score.SoftSkills + score.Responded

	return score, nil
}

// buildScoringPrompt creates the evaluation prompt for the LLM
func (s *Scorer) buildScoringPrompt(turns []models.TurnView) string {
	var sb strings.Builder

	sb.WriteString("You are an expert interviewer evaluating a candidate's answers from a technical screening interview.\n\n")

	sb.WriteString("## TRANSCRIPT\n")
	for i, t := range turns {
		sb.WriteString(fmt.Sprintf("### Question %d", i+1))
		if t.Difficulty != "" || t.Category != "" {
			sb.WriteString(fmt.Sprintf(" (%s %s)", t.Difficulty, t.Category))
		}
		sb.WriteString("\n")
		sb.WriteString(t.Question)
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Expected answer time: %s\n", t.ActualTime))
		if delay, ok := responseDelay(t); ok {
			sb.WriteString(fmt.Sprintf("Candidate took: %s\n", delay))
		}
		sb.WriteString("Answer:\n")
		sb.WriteString(llm.Truncate(*t.UserResponse, maxAnswerChars))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## EVALUATION INSTRUCTIONS\n")
	sb.WriteString("Score each dimension from 0 to 100 and justify it briefly.\n")
	sb.WriteString("- Technical: technical knowledge shown in the answers.\n")
	sb.WriteString("- Communication: clarity and structure of the answers.\n")
	sb.WriteString("- Responsiveness: how promptly the candidate answered compared to the expected time.\n")
	sb.WriteString("- ProblemSolving: reasoning through problems and follow-up questions.\n")
	sb.WriteString("- SoftSkills: interpersonal signals and team fit.\n")
	sb.WriteString("- Responded: how many questions received a substantive answer.\n\n")
	sb.WriteString("Provide your evaluation in the following JSON format:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "Technical": <0-100>,` + "\n")
	sb.WriteString(`  "Communication": <0-100>,` + "\n")
	sb.WriteString(`  "Responsiveness": <0-100>,` + "\n")
	sb.WriteString(`  "ProblemSolving": <0-100>,` + "\n")
	sb.WriteString(`  "SoftSkills": <0-100>,` + "\n")
	sb.WriteString(`  "Responded": <0-100>,` + "\n")
	sb.WriteString(`  "feedback": [{"category": "<dimension>", "comment": "<comment>"}],` + "\n")
	sb.WriteString(`  "suggestedImprovements": ["<improvement>"]` + "\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object, no additional text.\n")

	return sb.String()
}

// responseDelay is the wall-clock gap between asking and answering. Times
// carry no date, so an answer after midnight wraps around.
func responseDelay(t models.TurnView) (time.Duration, bool) {
	if t.ResponseTime == "" || t.CandidateAnsweredTime == "" {
		return 0, false
	}
	asked, err := time.Parse(models.ClockLayout, t.ResponseTime)
	if err != nil {
		return 0, false
	}
	answered, err := time.Parse(models.ClockLayout, t.CandidateAnsweredTime)
	if err != nil {
		return 0, false
	}

	delay := answered.Sub(asked)
	if delay < 0 {
		delay += 24 * time.Hour
	}
	return delay, true
}

// parseScore validates and decodes the LLM response, clamping each
// component into range
func (s *Scorer) parseScore(response string) (models.InterviewScore, error) {
	var score models.InterviewScore
	if err := llm.DecodeObject(response, scoreSchema, &score); err != nil {
		return models.InterviewScore{}, err
	}

	for _, v := range []*float64{
		&score.Technical, &score.Communication, &score.Responsiveness,
		&score.ProblemSolving, &score.SoftSkills, &score.Responded,
	} {
		*v = clamp(*v, 0, maxComponentScore)
	}
	return score, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
