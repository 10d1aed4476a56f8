package types

// TotalIntakeSteps is the fixed length of the live intake interview.
// The server remains authoritative for completion; this constant is for
// display ("question N of 5") only.
const TotalIntakeSteps = 5

// IntakeSummary is the structured result of an intake, whether generated
// from the stored profile or from a completed live interview.
type IntakeSummary struct {
	Preferences  []string `json:"preferences"`
	Dealbreakers []string `json:"dealbreakers"`
	DatingThesis string   `json:"dating_thesis"`
}

// IntakeResponse is returned by profile-based intake.
type IntakeResponse struct {
	UserID  string        `json:"user_id"`
	Summary IntakeSummary `json:"summary"`
}

// LiveStartResponse is returned when a live intake session is created.
type LiveStartResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	StepIndex int    `json:"step_index"`
}

// LiveAnswerRequest submits one free-text answer to the current question.
type LiveAnswerRequest struct {
	AnswerText string `json:"answer_text"`
}

// LiveAnswerResponse is returned after each answer submission. It is either
// a continuation (IsComplete false, next Question and StepIndex) or a
// completion (IsComplete true, FinalSummary set, Question empty).
type LiveAnswerResponse struct {
	SessionID    string         `json:"session_id"`
	Question     string         `json:"question"`
	StepIndex    int            `json:"step_index"`
	IsComplete   bool           `json:"is_complete"`
	FinalSummary *IntakeSummary `json:"final_summary"`
}

// LiveStatusResponse is a server-side snapshot of a live intake session.
type LiveStatusResponse struct {
	SessionID         string  `json:"session_id"`
	UserID            string  `json:"user_id"`
	StepIndex         int     `json:"step_index"`
	TotalQuestions    int     `json:"total_questions"`
	QuestionsAnswered int     `json:"questions_answered"`
	IsComplete        bool    `json:"is_complete"`
	CreatedAt         float64 `json:"created_at"`
}
