package types

// UserProfile is one of the pre-generated demo users.
type UserProfile struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Bio         string   `json:"bio"`
	Traits      []string `json:"traits"`
	Boundaries  []string `json:"boundaries"`
	Notes       string   `json:"notes,omitempty"`
}

// UsersResponse wraps the demo user listing.
type UsersResponse struct {
	Users []UserProfile `json:"users"`
}

// DateTurn is one utterance in a simulated date transcript.
type DateTurn struct {
	Speaker string `json:"speaker"`
	Name    string `json:"name"`
	Text    string `json:"text"`
}

// DateScore is the evaluator's structured scoring of one exchange.
type DateScore struct {
	ScoreA        int      `json:"score_a"`
	ScoreB        int      `json:"score_b"`
	Compatibility int      `json:"compatibility"`
	Reasons       []string `json:"reasons"`
	Quote         string   `json:"quote"`
}

// DateExchange is the result of one simulated date between two users.
type DateExchange struct {
	Scene          string            `json:"scene"`
	Transcript     []DateTurn        `json:"transcript"`
	EvaluatorNotes []string          `json:"evaluator_notes"`
	DeltaInsight   string            `json:"delta_insight,omitempty"`
	Reflections    map[string]string `json:"reflections,omitempty"`
	Score          *DateScore        `json:"score,omitempty"`
}

// ReportResponse wraps a generated match report.
type ReportResponse struct {
	Report string `json:"report"`
}

// PipelineResponse is the result of the full intake-date-report pipeline.
type PipelineResponse struct {
	UserAID     string         `json:"user_a_id"`
	UserBID     string         `json:"user_b_id"`
	Dates       []DateExchange `json:"dates"`
	FinalReport string         `json:"final_report"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
