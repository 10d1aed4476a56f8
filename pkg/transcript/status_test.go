package transcript

import "testing"

func TestTracker_LegalLifecycle(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	if got := tr.Status(); got != StatusReady {
		t.Fatalf("initial status = %q, want %q", got, StatusReady)
	}

	if !tr.Start() {
		t.Fatal("Ready -> Streaming should apply")
	}
	if !tr.Finish() {
		t.Fatal("Streaming -> Done should apply")
	}
	if got := tr.Status(); got != StatusDone {
		t.Fatalf("status = %q, want %q", got, StatusDone)
	}

	if !tr.Reset() {
		t.Fatal("Done -> Ready should apply")
	}
	if !tr.Start() || !tr.Fail() {
		t.Fatal("Ready -> Streaming -> Error should apply")
	}
	if got := tr.Status(); got != StatusError {
		t.Fatalf("status = %q, want %q", got, StatusError)
	}
	if !tr.Reset() {
		t.Fatal("Error -> Ready should apply")
	}
}

func TestTracker_IllegalTransitionsAreRejected(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	if tr.Finish() || tr.Fail() || tr.Reset() {
		t.Fatal("no transition other than Start applies from Ready")
	}

	tr.Start()
	if tr.Start() {
		t.Fatal("Start from Streaming must not apply")
	}
	if tr.Reset() {
		t.Fatal("Reset from Streaming must not apply")
	}

	tr.Finish()
	if tr.Fail() {
		t.Fatal("Fail after Done must not apply")
	}
	if tr.Finish() {
		t.Fatal("Finish is not re-entrant")
	}
	if got := tr.Status(); got != StatusDone {
		t.Fatalf("status = %q, want %q", got, StatusDone)
	}
}
