package models

import (
	"time"
)

// ClockLayout is the wall-clock format used for turn timestamps on the wire
const ClockLayout = "15:04:05"

// Difficulty is the difficulty level requested from the question generator
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Category is the interview question category requested from the generator
type Category string

const (
	CategoryTechnical   Category = "technical"
	CategoryBehavioral  Category = "behavioral"
	CategorySituational Category = "situational"
)

// Turn is one question/answer exchange within an interview session
type Turn struct {
	Question          string     `json:"question"`
	UserResponse      *string    `json:"user_response,omitempty"`
	QuestionAskedAt   time.Time  `json:"question_asked_at"`
	UserAnsweredAt    *time.Time `json:"user_answered_at,omitempty"`
	EstimatedDuration string     `json:"estimated_duration"`
	Difficulty        Difficulty `json:"difficulty"`
	Category          Category   `json:"category"`
	Fallback          bool       `json:"fallback,omitempty"` // generator output was unusable
}

// Answered reports whether the candidate has responded to this turn
func (t Turn) Answered() bool {
	return t.UserResponse != nil
}

// Answer is a candidate response recorded against the pending turn
type Answer struct {
	Text string
	At   time.Time
}

// Session holds one candidate's in-progress interview
type Session struct {
	ID             string    `json:"id"`
	JobDescription string    `json:"job_description"`
	ResumeText     string    `json:"resume_text"`
	Turns          []Turn    `json:"turns"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		if t.UserResponse != nil {
			resp := *t.UserResponse
			t.UserResponse = &resp
		}
		if t.UserAnsweredAt != nil {
			at := *t.UserAnsweredAt
			t.UserAnsweredAt = &at
		}
		c.Turns[i] = t
	}
	return &c
}

// Tail returns the most recent turn, or nil for an empty session
func (s *Session) Tail() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// Document is an uploaded source document
type Document struct {
	Filename string
	MIMEType string
	Data     []byte
}

// TurnView is the client-facing shape of a turn
type TurnView struct {
	Question              string     `json:"question"`
	UserResponse          *string    `json:"userResponse"`
	ActualTime            string     `json:"actualTime"`
	ResponseTime          string     `json:"ResponseTime"`
	CandidateAnsweredTime string     `json:"CandidateAnsweredTime,omitempty"`
	Difficulty            Difficulty `json:"difficulty,omitempty"`
	Category              Category   `json:"category,omitempty"`
}

// NewTurnView converts a stored turn into its wire representation
func NewTurnView(t Turn) TurnView {
	v := TurnView{
		Question:     t.Question,
		UserResponse: t.UserResponse,
		ActualTime:   t.EstimatedDuration,
		ResponseTime: t.QuestionAskedAt.Format(ClockLayout),
		Difficulty:   t.Difficulty,
		Category:     t.Category,
	}
	if t.UserAnsweredAt != nil {
		v.CandidateAnsweredTime = t.UserAnsweredAt.Format(ClockLayout)
	}
	return v
}

// NewTurnViews converts a turn sequence, preserving order
func NewTurnViews(turns []Turn) []TurnView {
	views := make([]TurnView, len(turns))
	for i, t := range turns {
		views[i] = NewTurnView(t)
	}
	return views
}

// StartRequest is the input to starting a new interview
type StartRequest struct {
	JobDescription string    `validate:"trimmed_min=50"`
	Document       *Document `validate:"required"`
}

// SubmitAnswerRequest is the input to answering the pending question
type SubmitAnswerRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Answer    string `json:"answer" validate:"trimmed_min=5"`
}

// ScoreRequest asks for a transcript score, either from a client-held
// transcript or from a stored session
type ScoreRequest struct {
	SessionID string     `json:"sessionId"`
	Questions []TurnView `json:"questions" validate:"required_without=SessionID"`
}

// StartResponse is returned when an interview begins
type StartResponse struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

// AnswerResponse is returned after an answer is submitted
type AnswerResponse struct {
	Message   string     `json:"message,omitempty"`
	SessionID string     `json:"sessionId"`
	Questions []TurnView `json:"questions"`
}

// TranscriptResponse is returned when a session transcript is fetched
type TranscriptResponse struct {
	SessionID string     `json:"sessionId"`
	Questions []TurnView `json:"questions"`
	Complete  bool       `json:"complete"`
}

// FeedbackItem is one category comment in an interview score
type FeedbackItem struct {
	Category string `json:"category"`
	Comment  string `json:"comment"`
}

// InterviewScore is the multi-dimension evaluation of a finished transcript
type InterviewScore struct {
	OverAll               float64        `json:"OverAll"`
	Technical             float64        `json:"Technical"`
	Communication         float64        `json:"Communication"`
	Responsiveness        float64        `json:"Responsiveness"`
	ProblemSolving        float64        `json:"ProblemSolving"`
	SoftSkills            float64        `json:"SoftSkills"`
	Responded             float64        `json:"Responded"`
	Feedback              []FeedbackItem `json:"feedback"`
	SuggestedImprovements []string       `json:"suggestedImprovements"`
}

// CandidateSummary holds the factual summary extracted from a resume
type CandidateSummary struct {
	Experience        string `json:"experience"`
	PreferredLocation string `json:"preferred_location"`
	CurrentCompany    string `json:"current_company"`
}

// FitScores are 0-100 fit scores against the job description
type FitScores struct {
	Overall    float64 `json:"Overall"`
	Skill      float64 `json:"Skill"`
	Experience float64 `json:"Experience"`
	Others     float64 `json:"Others"`
}

// FitEvaluation is the scored part of a candidate evaluation
type FitEvaluation struct {
	Title   string    `json:"title"`
	Scores  FitScores `json:"scores"`
	Reasons []string  `json:"evaluation_reason"`
}

// CandidateEvaluation is the resume-vs-job-description fit assessment
type CandidateEvaluation struct {
	About            string           `json:"about"`
	Skills           []string         `json:"skills"`
	ShortDescription []string         `json:"short_description"`
	OtherSummary     CandidateSummary `json:"other_summary"`
	Evaluation       FitEvaluation    `json:"evaluation"`
	Recommended      string           `json:"can_we_take_this_candidate"`
}

// QuestionsByDifficulty groups prepared questions by difficulty
type QuestionsByDifficulty struct {
	Easy   []string `json:"easy"`
	Medium []string `json:"medium"`
	Hard   []string `json:"hard"`
}

// CategoryQuestions is one category inside a question set
type CategoryQuestions struct {
	Category  string                `json:"category"`
	Questions QuestionsByDifficulty `json:"questions"`
}

// QuestionSet is one complete prepared set of interview questions
type QuestionSet struct {
	Set        int                 `json:"set"`
	Categories []CategoryQuestions `json:"categories"`
}

// InterviewReport bundles everything needed to export an interview
type InterviewReport struct {
	SessionID      string
	JobDescription string
	Turns          []TurnView
	Complete       bool
	Score          *InterviewScore
	GeneratedAt    time.Time
}
