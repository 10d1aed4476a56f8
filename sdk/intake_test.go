package htdj

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/hangthedj/htdj-go/pkg/api"
	"github.com/hangthedj/htdj-go/pkg/types"
)

// liveIntakeBackend is a stateful handler implementing the interview
// protocol: a fixed question list, one session, one advance per answer.
// failNext makes the next answer submission return a 500 before any state
// change, for failure isolation checks.
type liveIntakeBackend struct {
	mu        sync.Mutex
	questions []string
	sessionID string
	stepIndex int
	answers   []string
	complete  bool
	failNext  bool
}

func newLiveIntakeBackend() *liveIntakeBackend {
	return &liveIntakeBackend{
		questions: []string{
			"What does a great first date look like?",
			"What quality matters most in a partner?",
			"What is a hard dealbreaker for you?",
			"How do you want to feel around someone?",
			"What did your best relationship teach you?",
		},
		sessionID: "sess_test_1",
	}
}

func (b *liveIntakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/intake/live/start/"):
		json.NewEncoder(w).Encode(types.LiveStartResponse{
			SessionID: b.sessionID,
			Question:  b.questions[0],
			StepIndex: 0,
		})

	case strings.HasPrefix(r.URL.Path, "/api/intake/live/answer/"):
		if b.failNext {
			b.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"interviewer unavailable"}`)
			return
		}
		if got := strings.TrimPrefix(r.URL.Path, "/api/intake/live/answer/"); got != b.sessionID {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"detail":"Session %s not found"}`, got)
			return
		}
		var req types.LiveAnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AnswerText == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"detail":"answer_text is required"}`)
			return
		}
		b.answers = append(b.answers, req.AnswerText)
		b.stepIndex++
		resp := types.LiveAnswerResponse{SessionID: b.sessionID, StepIndex: b.stepIndex}
		if b.stepIndex >= len(b.questions) {
			b.complete = true
			resp.IsComplete = true
			resp.FinalSummary = &types.IntakeSummary{
				Preferences:  []string{"kindness", "curiosity"},
				Dealbreakers: []string{"dishonesty"},
				DatingThesis: "Looking for a slow-burn connection.",
			}
		} else {
			resp.Question = b.questions[b.stepIndex]
		}
		json.NewEncoder(w).Encode(resp)

	case strings.HasPrefix(r.URL.Path, "/api/intake/live/status/"):
		json.NewEncoder(w).Encode(types.LiveStatusResponse{
			SessionID:         b.sessionID,
			UserID:            "user_1",
			StepIndex:         b.stepIndex,
			TotalQuestions:    len(b.questions),
			QuestionsAnswered: len(b.answers),
			IsComplete:        b.complete,
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"not found"}`)
	}
}

func TestLiveSession_FullInterview(t *testing.T) {
	t.Parallel()

	backend := newLiveIntakeBackend()
	client := newTestClient(t, backend.ServeHTTP)

	session, err := client.Intake.StartLive(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("StartLive() error = %v", err)
	}
	if session.SessionID() != "sess_test_1" || session.StepIndex() != 0 {
		t.Fatalf("session = %q step %d, want sess_test_1 step 0", session.SessionID(), session.StepIndex())
	}
	if session.Question() != backend.questions[0] {
		t.Fatalf("first question = %q", session.Question())
	}

	for i := 0; i < types.TotalIntakeSteps; i++ {
		if session.Complete() {
			t.Fatalf("session complete after %d answers, want %d", i, types.TotalIntakeSteps)
		}
		wantStep := i
		if got := session.StepIndex(); got != wantStep {
			t.Fatalf("step before answer %d = %d, want %d", i, got, wantStep)
		}
		resp, err := session.Submit(context.Background(), fmt.Sprintf("answer %d", i))
		if err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
		if resp.StepIndex != i+1 {
			t.Fatalf("step after answer %d = %d, want %d", i, resp.StepIndex, i+1)
		}
	}

	if !session.Complete() {
		t.Fatal("session should be complete after final answer")
	}
	if session.Question() != "" {
		t.Fatalf("question after completion = %q, want empty", session.Question())
	}
	summary := session.Summary()
	if summary == nil || summary.DatingThesis == "" {
		t.Fatalf("summary = %#v, want final summary", summary)
	}
	if len(summary.Preferences) != 2 || len(summary.Dealbreakers) != 1 {
		t.Fatalf("summary = %#v", summary)
	}
}

func TestLiveSession_FailedSubmitLeavesSnapshotUntouched(t *testing.T) {
	t.Parallel()

	backend := newLiveIntakeBackend()
	client := newTestClient(t, backend.ServeHTTP)

	session, err := client.Intake.StartLive(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("StartLive() error = %v", err)
	}
	if _, err := session.Submit(context.Background(), "first answer"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	backend.mu.Lock()
	backend.failNext = true
	backend.mu.Unlock()

	_, err = session.Submit(context.Background(), "second answer")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Detail != "interviewer unavailable" {
		t.Fatalf("Submit() error = %v, want 500 detail", err)
	}

	// Answer POSTs are never retried automatically, so exactly one answer
	// reached the backend and the local snapshot still points at step 1.
	backend.mu.Lock()
	answered := len(backend.answers)
	backend.mu.Unlock()
	if answered != 1 {
		t.Fatalf("backend answers = %d, want 1 (no automatic POST retry)", answered)
	}
	if got := session.StepIndex(); got != 1 {
		t.Fatalf("step after failed submit = %d, want 1", got)
	}
	if session.Question() != backend.questions[1] {
		t.Fatalf("question after failed submit = %q, want %q", session.Question(), backend.questions[1])
	}

	// Resubmitting the same answer advances normally.
	resp, err := session.Submit(context.Background(), "second answer")
	if err != nil {
		t.Fatalf("resubmit error = %v", err)
	}
	if resp.StepIndex != 2 || session.StepIndex() != 2 {
		t.Fatalf("step after resubmit = %d/%d, want 2", resp.StepIndex, session.StepIndex())
	}
}

func TestLiveSession_RejectsSubmitAfterCompletionAndEmptyAnswers(t *testing.T) {
	t.Parallel()

	backend := newLiveIntakeBackend()
	client := newTestClient(t, backend.ServeHTTP)

	session, err := client.Intake.StartLive(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("StartLive() error = %v", err)
	}

	if _, err := session.Submit(context.Background(), "   "); err == nil {
		t.Fatal("blank answer should be rejected locally")
	}

	for i := 0; i < types.TotalIntakeSteps; i++ {
		if _, err := session.Submit(context.Background(), "answer"); err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
	}

	_, err = session.Submit(context.Background(), "one more")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Type != api.ErrInvalidRequest {
		t.Fatalf("Submit after completion = %v, want invalid_request", err)
	}
}

func TestLiveSession_StatusSnapshot(t *testing.T) {
	t.Parallel()

	backend := newLiveIntakeBackend()
	client := newTestClient(t, backend.ServeHTTP)

	session, err := client.Intake.StartLive(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("StartLive() error = %v", err)
	}
	if _, err := session.Submit(context.Background(), "answer"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	status, err := session.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.SessionID != "sess_test_1" || status.StepIndex != 1 {
		t.Fatalf("status = %#v", status)
	}
	if status.TotalQuestions != types.TotalIntakeSteps || status.QuestionsAnswered != 1 {
		t.Fatalf("status = %#v, want 1 of %d answered", status, types.TotalIntakeSteps)
	}
	if status.IsComplete {
		t.Fatal("status.IsComplete = true, want false mid-interview")
	}
}

func TestIntakeService_Summarize(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/intake/user_1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(types.IntakeResponse{
			UserID: "user_1",
			Summary: types.IntakeSummary{
				Preferences:  []string{"humor"},
				DatingThesis: "Connection over checklists.",
			},
		})
	})

	resp, err := client.Intake.Summarize(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if resp.UserID != "user_1" || resp.Summary.DatingThesis == "" {
		t.Fatalf("resp = %#v", resp)
	}

	if _, err := client.Intake.Summarize(context.Background(), "  "); err == nil {
		t.Fatal("empty userID should be rejected locally")
	}
}

func TestIntakeService_StartLiveUnknownUser(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"User user_999 not found"}`)
	})

	_, err := client.Intake.StartLive(context.Background(), "user_999")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Type != api.ErrNotFound {
		t.Fatalf("StartLive() error = %v, want not_found", err)
	}
}
