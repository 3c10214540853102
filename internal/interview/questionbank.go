package interview

import (
	"context"
	"fmt"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// QuestionSetCount is the number of prepared question sets requested
const QuestionSetCount = 2

var questionSetSchema = llm.MustCompileSchema(`{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["set", "categories"],
		"properties": {
			"set": {"type": "integer"},
			"categories": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["category", "questions"],
					"properties": {
						"category": {"type": "string"},
						"questions": {
							"type": "object",
							"required": ["easy", "medium", "hard"],
							"properties": {
								"easy": {"type": "array", "items": {"type": "string"}},
								"medium": {"type": "array", "items": {"type": "string"}},
								"hard": {"type": "array", "items": {"type": "string"}}
							}
						}
					}
				}
			}
		}
	}
}`)

// QuestionBank prepares full sets of categorized questions ahead of an
// interview, for interviewers who run it themselves
type QuestionBank struct {
	client llm.Client
}

// NewQuestionBank creates a question bank backed by client
func NewQuestionBank(client llm.Client) *QuestionBank {
	return &QuestionBank{client: client}
}

// Generate returns QuestionSetCount question sets with technical, behavioral
// and situational questions at every difficulty
func (b *QuestionBank) Generate(ctx context.Context, jobDescription, resumeText string) ([]models.QuestionSet, error) {
	response, err := b.client.GenerateContent(ctx, buildQuestionBankPrompt(jobDescription, resumeText))
	if err != nil {
		return nil, llm.ClassifyError(err)
	}

	var sets []models.QuestionSet
	if err := llm.DecodeArray(response, questionSetSchema, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse question sets: %w", err)
	}
	return sets, nil
}

func buildQuestionBankPrompt(jobDescription, resumeText string) string {
	return fmt.Sprintf(`You prepare interview question sets from a job description and a candidate's resume.
Use both inputs so every question is relevant to the role and to the candidate's experience.

Produce %d sets. Each set has three categories: Technical, Behavioral, Situational.
Each category has three easy, three medium and three hard questions.

JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

Respond ONLY with a JSON array in this exact format (no markdown):
[
  {
    "set": 1,
    "categories": [
      {
        "category": "Technical",
        "questions": {"easy": ["..."], "medium": ["..."], "hard": ["..."]}
      }
    ]
  }
]`, QuestionSetCount, jobDescription, resumeText)
}
