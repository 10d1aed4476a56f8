package htdj

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/hangthedj/htdj-go/pkg/api"
	"github.com/hangthedj/htdj-go/pkg/types"
)

// IntakeService covers intake generation: the profile-based one-shot summary
// and the multi-step live interview protocol.
type IntakeService struct {
	client *Client
}

// Summarize generates an intake summary from a user's stored profile via
// POST /api/intake/{user_id}.
func (s *IntakeService) Summarize(ctx context.Context, userID string) (*types.IntakeResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, api.NewInvalidRequestError("userID must not be empty")
	}

	var out types.IntakeResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/api/intake/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartLive creates a live intake interview session for a user and returns
// a session handle holding the first question.
func (s *IntakeService) StartLive(ctx context.Context, userID string) (*LiveSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, api.NewInvalidRequestError("userID must not be empty")
	}

	var out types.LiveStartResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/api/intake/live/start/"+userID, nil, &out); err != nil {
		return nil, err
	}

	s.client.logger.Debug("live intake session started", "user_id", userID, "session_id", out.SessionID)
	return &LiveSession{
		client:    s.client,
		sessionID: out.SessionID,
		userID:    userID,
		question:  out.Question,
		stepIndex: out.StepIndex,
	}, nil
}

// LiveSession is the client-side snapshot of a live intake session. The
// server is authoritative: every successful submission replaces the snapshot
// with the server's response, and a failed submission leaves it untouched,
// so the same answer can be resubmitted without protocol corruption.
//
// Submissions must be serialized; no two requests for the same session may
// be in flight concurrently.
type LiveSession struct {
	client *Client

	mu        sync.Mutex
	sessionID string
	userID    string
	question  string
	stepIndex int
	complete  bool
	summary   *types.IntakeSummary
}

// SessionID returns the opaque server-issued session identifier.
func (s *LiveSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// UserID returns the interviewed user's identifier.
func (s *LiveSession) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Question returns the current question, or "" once the session completes.
func (s *LiveSession) Question() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

// StepIndex returns the zero-based index of the current step. Indices
// strictly increase by one per successful submission.
func (s *LiveSession) StepIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex
}

// Complete reports whether the interview has finished.
func (s *LiveSession) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Summary returns the final intake summary once the session completes,
// or nil before then.
func (s *LiveSession) Summary() *types.IntakeSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Submit sends one answer to the current question. On continuation the next
// question and step index replace the snapshot; on completion the final
// summary is recorded and the question clears. Any failure leaves the
// snapshot exactly as it was.
func (s *LiveSession) Submit(ctx context.Context, answerText string) (*types.LiveAnswerResponse, error) {
	answerText = strings.TrimSpace(answerText)
	if answerText == "" {
		return nil, api.NewInvalidRequestError("answerText must not be empty")
	}

	s.mu.Lock()
	if s.complete {
		s.mu.Unlock()
		return nil, api.NewInvalidRequestError("session is already complete")
	}
	sessionID := s.sessionID
	s.mu.Unlock()

	var out types.LiveAnswerResponse
	err := s.client.doJSON(ctx, http.MethodPost,
		"/api/intake/live/answer/"+sessionID,
		&types.LiveAnswerRequest{AnswerText: answerText}, &out)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepIndex = out.StepIndex
	if out.IsComplete {
		s.complete = true
		s.question = ""
		s.summary = out.FinalSummary
	} else {
		s.question = out.Question
	}
	return &out, nil
}

// Status fetches the server-side session snapshot via
// GET /api/intake/live/status/{session_id}.
func (s *LiveSession) Status(ctx context.Context) (*types.LiveStatusResponse, error) {
	var out types.LiveStatusResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/api/intake/live/status/"+s.SessionID(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
