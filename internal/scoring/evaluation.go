package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

// maxResumeChars caps the resume text sent for evaluation
const maxResumeChars = 12000

var evaluationSchema = llm.MustCompileSchema(`{
	"type": "object",
	"required": ["candidate"],
	"properties": {
		"candidate": {
			"type": "object",
			"required": ["evaluation", "can_we_take_this_candidate"],
			"properties": {
				"about": {"type": ["string", "null"]},
				"skills": {"type": ["array", "null"], "items": {"type": "string"}},
				"short_description": {"type": ["array", "null"], "items": {"type": "string"}},
				"evaluation": {
					"type": "object",
					"required": ["scores"],
					"properties": {
						"scores": {
							"type": "object",
							"properties": {
								"Overall": {"type": "number"},
								"Skill": {"type": "number"},
								"Experience": {"type": "number"},
								"Others": {"type": "number"}
							}
						}
					}
				},
				"can_we_take_this_candidate": {"type": "string"}
			}
		}
	}
}`)

type evaluationEnvelope struct {
	Candidate models.CandidateEvaluation `json:"candidate"`
}

// Evaluator assesses how well a resume fits a job description
type Evaluator struct {
	llmClient llm.Client
}

// NewEvaluator creates a new evaluator instance
func NewEvaluator(llmClient llm.Client) *Evaluator {
	return &Evaluator{llmClient: llmClient}
}

// Evaluate scores a candidate's resume against the job description.
// A malformed answer is asked for once more before giving up.
func (e *Evaluator) Evaluate(ctx context.Context, jobDescription, resumeText string) (models.CandidateEvaluation, error) {
	prompt := buildEvaluationPrompt(jobDescription, resumeText)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		response, err := e.llmClient.GenerateContent(ctx, prompt)
		if err != nil {
			return models.CandidateEvaluation{}, fmt.Errorf("failed to get LLM response: %w", llm.ClassifyError(err))
		}

		eval, err := parseEvaluation(response)
		if err == nil {
			return eval, nil
		}
		if !errors.Is(err, llm.ErrMalformedResponse) {
			return models.CandidateEvaluation{}, err
		}
		log.Printf("Warning: malformed evaluation (attempt %d): %v", attempt, err)
		lastErr = err
	}
	return models.CandidateEvaluation{}, fmt.Errorf("failed to parse evaluation: %w", lastErr)
}

func parseEvaluation(response string) (models.CandidateEvaluation, error) {
	var env evaluationEnvelope
	if err := llm.DecodeObject(response, evaluationSchema, &env); err != nil {
		return models.CandidateEvaluation{}, err
	}

	eval := env.Candidate
	scores := &eval.Evaluation.Scores
	scores.Overall = clamp(scores.Overall, 0, maxComponentScore)
	scores.Skill = clamp(scores.Skill, 0, maxComponentScore)
	scores.Experience = clamp(scores.Experience, 0, maxComponentScore)
	scores.Others = clamp(scores.Others, 0, maxComponentScore)

	eval.Recommended = normalizeRecommendation(eval.Recommended)
	return eval, nil
}

// normalizeRecommendation maps free-form answers onto "yes" or "no"
func normalizeRecommendation(v string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(v, ".!\""))) {
	case "yes", "y", "true", "hire":
		return "yes"
	default:
		return "no"
	}
}

func buildEvaluationPrompt(jobDescription, resumeText string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert recruiter. Analyze the candidate's resume against the job description.\n\n")
	sb.WriteString("## JOB DESCRIPTION\n")
	sb.WriteString(jobDescription)
	sb.WriteString("\n\n## RESUME\n")
	sb.WriteString(llm.Truncate(resumeText, maxResumeChars))
	sb.WriteString("\n\n## OUTPUT\n")
	sb.WriteString("Return ONLY a JSON object in this format. Use an empty string when a value is unknown.\n")
	sb.WriteString(`{
  "candidate": {
    "about": "<candidate name and one-line profile>",
    "skills": ["<skill>"],
    "short_description": ["<sentence>"],
    "other_summary": {
      "experience": "<X years>",
      "preferred_location": "<location>",
      "current_company": "<company>"
    },
    "evaluation": {
      "title": "Evaluation based on JD and Resume",
      "scores": {"Overall": <0-100>, "Skill": <0-100>, "Experience": <0-100>, "Others": <0-100>},
      "evaluation_reason": ["<reason>"]
    },
    "can_we_take_this_candidate": "yes" or "no"
  }
}
`)
	return sb.String()
}
