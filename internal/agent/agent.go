package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fmuoria/AI-Interview-agent/internal/config"
	"github.com/fmuoria/AI-Interview-agent/internal/ingestion"
	"github.com/fmuoria/AI-Interview-agent/internal/interview"
	"github.com/fmuoria/AI-Interview-agent/internal/llm"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
	"github.com/fmuoria/AI-Interview-agent/internal/scoring"
)

// Deps are the collaborators a ScreeningAgent is assembled from. Generator
// and Extractor default to the LLM-backed generator and the document
// extractor when nil.
type Deps struct {
	LLM       llm.Client
	Store     interview.Store
	Generator interview.Generator
	Extractor interview.Extractor
	Options   interview.Options
}

// ScreeningAgent orchestrates interviews, transcript scoring and candidate
// evaluation for the API and CLI
type ScreeningAgent struct {
	interviews *interview.Service
	scorer     *scoring.Scorer
	evaluator  *scoring.Evaluator
	bank       *interview.QuestionBank

	llmClient       llm.Client
	store           interview.Store
	analysisTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// New creates a screening agent from explicit dependencies
func New(deps Deps) *ScreeningAgent {
	generator := deps.Generator
	if generator == nil {
		generator = interview.NewLLMGenerator(deps.LLM)
	}
	var extractor interview.Extractor = deps.Extractor
	if extractor == nil {
		extractor = ingestion.NewDocumentExtractor()
	}

	svc := interview.NewService(deps.Store, generator, extractor, deps.Options)

	timeout := deps.Options.GeneratorTimeout
	if timeout <= 0 {
		timeout = interview.DefaultGeneratorTimeout
	}

	return &ScreeningAgent{
		interviews:      svc,
		scorer:          scoring.NewScorer(deps.LLM),
		evaluator:       scoring.NewEvaluator(deps.LLM),
		bank:            interview.NewQuestionBank(deps.LLM),
		llmClient:       deps.LLM,
		store:           deps.Store,
		analysisTimeout: 2 * timeout,
	}
}

// FromConfig builds the LLM client and session store described by cfg
func FromConfig(ctx context.Context, cfg *config.Config) (*ScreeningAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.Options{
		Provider:        cfg.LLMProvider,
		Model:           cfg.Model,
		ProjectID:       cfg.GoogleCloudProject,
		Location:        cfg.GoogleCloudLocation,
		CredentialsPath: cfg.GoogleCredentialsPath,
		APIKey:          cfg.GeminiAPIKey,
		JSONResponse:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	store, err := NewStore(ctx, cfg)
	if err != nil {
		llmClient.Close()
		return nil, err
	}

	log.Printf("Screening agent ready (provider: %s, model: %s, store: %s, max turns: %d)",
		cfg.LLMProvider, cfg.Model, cfg.StoreBackend, cfg.MaxTurns)

	return New(Deps{
		LLM:   llmClient,
		Store: store,
		Options: interview.Options{
			MaxTurns:           cfg.MaxTurns,
			GeneratorTimeout:   cfg.GeneratorTimeout(),
			ThreeWayCategories: cfg.ThreeWayCategories,
		},
	}), nil
}

// NewStore creates the session store selected by cfg
func NewStore(ctx context.Context, cfg *config.Config) (interview.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := interview.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return interview.NewRedisStore(client, cfg.SessionTTL()), nil
	case config.StoreMemory, "":
		return interview.NewMemoryStore(cfg.SessionTTL()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// MaxTurns returns the session turn cap
func (a *ScreeningAgent) MaxTurns() int {
	return a.interviews.MaxTurns()
}

// StartInterview begins a new interview session
func (a *ScreeningAgent) StartInterview(ctx context.Context, req models.StartRequest) (*models.StartResponse, error) {
	res, err := a.interviews.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return &models.StartResponse{SessionID: res.SessionID, Question: res.Question}, nil
}

// SubmitAnswer answers the pending question and returns the transcript
func (a *ScreeningAgent) SubmitAnswer(ctx context.Context, req models.SubmitAnswerRequest) (*models.AnswerResponse, error) {
	res, err := a.interviews.SubmitAnswer(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.AnswerResponse{
		SessionID: res.Session.ID,
		Questions: models.NewTurnViews(res.Session.Turns),
	}
	if res.Unchanged {
		resp.Message = "Interview complete"
	}
	return resp, nil
}

// Transcript returns the current transcript of a session
func (a *ScreeningAgent) Transcript(ctx context.Context, sessionID string) (*models.TranscriptResponse, error) {
	sess, err := a.interviews.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.TranscriptResponse{
		SessionID: sess.ID,
		Questions: models.NewTurnViews(sess.Turns),
		Complete:  a.interviews.IsComplete(sess),
	}, nil
}

// ScoreInterview scores a transcript. With a session id the stored
// transcript is used, merged with any client-held questions by position.
func (a *ScreeningAgent) ScoreInterview(ctx context.Context, req models.ScoreRequest) (models.InterviewScore, error) {
	if err := models.Validate(&req); err != nil {
		return models.InterviewScore{}, err
	}

	turns := req.Questions
	if req.SessionID != "" {
		sess, err := a.interviews.Session(ctx, req.SessionID)
		if err != nil {
			return models.InterviewScore{}, err
		}
		turns = interview.MergeTranscripts(models.NewTurnViews(sess.Turns), req.Questions)
	}

	ctx, cancel := context.WithTimeout(ctx, a.analysisTimeout)
	defer cancel()
	return a.scorer.ScoreTranscript(ctx, turns)
}

// Report assembles the export report for a session, scoring it first when
// withScore is set and the candidate has answered anything
func (a *ScreeningAgent) Report(ctx context.Context, sessionID string, withScore bool) (models.InterviewReport, error) {
	sess, err := a.interviews.Session(ctx, sessionID)
	if err != nil {
		return models.InterviewReport{}, err
	}

	report := models.InterviewReport{
		SessionID:      sess.ID,
		JobDescription: sess.JobDescription,
		Turns:          models.NewTurnViews(sess.Turns),
		Complete:       a.interviews.IsComplete(sess),
		GeneratedAt:    time.Now(),
	}

	if withScore && len(sess.Turns) > 1 {
		score, err := a.ScoreInterview(ctx, models.ScoreRequest{Questions: report.Turns})
		if err != nil {
			return models.InterviewReport{}, err
		}
		report.Score = &score
	}
	return report, nil
}

// EvaluateCandidate assesses a resume against a job description
func (a *ScreeningAgent) EvaluateCandidate(ctx context.Context, req models.StartRequest) (models.CandidateEvaluation, error) {
	resumeText, err := a.prepare(req)
	if err != nil {
		return models.CandidateEvaluation{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.analysisTimeout)
	defer cancel()
	return a.evaluator.Evaluate(ctx, req.JobDescription, resumeText)
}

// PrepareQuestions generates prepared question sets for a candidate
func (a *ScreeningAgent) PrepareQuestions(ctx context.Context, req models.StartRequest) ([]models.QuestionSet, error) {
	resumeText, err := a.prepare(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.analysisTimeout)
	defer cancel()
	return a.bank.Generate(ctx, req.JobDescription, resumeText)
}

// ExtractResume returns the plain text of a document
func (a *ScreeningAgent) ExtractResume(doc *models.Document) (string, error) {
	if doc == nil {
		return "", &models.ValidationError{Field: "Document", Message: "No file uploaded"}
	}
	return a.interviews.ExtractResume(doc)
}

// prepare validates a job description + resume request and extracts the text
func (a *ScreeningAgent) prepare(req models.StartRequest) (string, error) {
	if err := models.Validate(&req); err != nil {
		return "", err
	}
	return a.interviews.ExtractResume(req.Document)
}

// Close cleans up resources
func (a *ScreeningAgent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.llmClient != nil {
		errs = append(errs, a.llmClient.Close())
	}
	return errors.Join(errs...)
}
