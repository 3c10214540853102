package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fmuoria/AI-Interview-agent/internal/agent"
	"github.com/fmuoria/AI-Interview-agent/internal/export"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

const (
	defaultMaxUploadBytes = 32 << 20
	maxJSONBodyBytes      = 1 << 20
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Options configures the HTTP server
type Options struct {
	MaxUploadBytes     int64
	RateLimitPerMinute int
}

// Server handles HTTP requests
type Server struct {
	agent          *agent.ScreeningAgent
	maxUploadBytes int64
	limiter        *clientLimiter
}

// NewServer creates a new API server
func NewServer(a *agent.ScreeningAgent, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Server{
		agent:          a,
		maxUploadBytes: opts.MaxUploadBytes,
		limiter:        newClientLimiter(opts.RateLimitPerMinute),
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /interview/start", s.handleStart)
	mux.HandleFunc("PATCH /interview/answer", s.handleAnswer)
	mux.HandleFunc("GET /interview/{id}", s.handleTranscript)
	mux.HandleFunc("GET /interview/{id}/export", s.handleExport)
	mux.HandleFunc("POST /interview/score", s.handleScore)
	mux.HandleFunc("POST /interview/questions", s.handleQuestions)
	mux.HandleFunc("POST /candidate/evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(s.rateLimitMiddleware(mux))
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service":  "AI Interview Agent",
		"version":  "1.0.0",
		"maxTurns": s.agent.MaxTurns(),
		"endpoints": map[string]string{
			"POST /interview/start":      "Start an interview from a job description and resume",
			"PATCH /interview/answer":    "Answer the pending question",
			"GET /interview/{id}":        "Get the interview transcript",
			"GET /interview/{id}/export": "Download the interview report as Excel",
			"POST /interview/score":      "Score an interview transcript",
			"POST /interview/questions":  "Generate prepared question sets",
			"POST /candidate/evaluate":   "Evaluate a resume against a job description",
			"GET /health":                "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleStart begins a new interview session
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseCandidateForm(w, r)
	if !ok {
		return
	}

	resp, err := s.agent.StartInterview(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleAnswer records an answer and returns the updated transcript
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.agent.SubmitAnswer(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleTranscript returns the stored transcript of a session
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	resp, err := s.agent.Transcript(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleExport streams the interview report workbook. With ?score=true the
// transcript is scored first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	withScore := r.URL.Query().Get("score") == "true"

	report, err := s.agent.Report(r.Context(), id, withScore)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	// Render fully before writing headers so failures still get a JSON body
	var buf bytes.Buffer
	if err := export.WriteInterviewReport(&buf, report); err != nil {
		s.respondFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="interview_%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write export for session %s: %v", id, err)
	}
}

// handleScore scores a client-held or stored transcript
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	score, err := s.agent.ScoreInterview(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, score)
}

// handleQuestions generates prepared question sets for a candidate
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseCandidateForm(w, r)
	if !ok {
		return
	}

	sets, err := s.agent.PrepareQuestions(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Questions generated successfully",
		"parsedJson": sets,
	})
}

// handleEvaluate assesses a resume against a job description
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseCandidateForm(w, r)
	if !ok {
		return
	}

	eval, err := s.agent.EvaluateCandidate(r.Context(), req)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Candidate evaluated successfully",
		"parsedJson": eval,
	})
}

// parseCandidateForm reads the jobDescription field and the uploaded resume.
// A missing file is left for request validation to report.
func (s *Server) parseCandidateForm(w http.ResponseWriter, r *http.Request) (models.StartRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		log.Printf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request format")
		return models.StartRequest{}, false
	}

	req := models.StartRequest{JobDescription: r.FormValue("jobDescription")}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, true
	case err != nil:
		log.Printf("Failed to open uploaded file: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request format")
		return req, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Failed to read uploaded file %s: %v", header.Filename, err)
		s.respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return req, false
	}

	req.Document = &models.Document{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	return req, true
}

// decodeJSON reads a JSON request body into v
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	return true
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondFailure maps an operation error onto its status code and public
// message, logging the full error server-side
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.respondError(w, status, PublicMessage(err))
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s %d %s", r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// rateLimitMiddleware rejects clients that exceed their request budget.
// Health checks are never limited.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" && !s.limiter.Allow(clientIP(r)) {
			s.respondError(w, http.StatusTooManyRequests, "Too many requests, please retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
