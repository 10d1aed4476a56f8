// Package transcript reconstructs coherent message boundaries from a
// fragmented chat event stream and tracks the stream's lifecycle.
package transcript

import "sync"

// Status is the lifecycle state of one chat stream instance.
type Status string

const (
	StatusReady     Status = "ready"
	StatusStreaming Status = "streaming"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Tracker holds the current stream status and enforces legal transitions:
//
//	Ready -> Streaming        (stream start)
//	Streaming -> Done         (done event, clean close, cancel)
//	Streaming -> Error        (error event, transport failure)
//	Done|Error -> Ready       (explicit reset)
//
// Ready is re-entered only by Reset, never automatically. Behavior when a
// stream is started while another is already Streaming is unspecified;
// callers must serialize starts.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

// NewTracker returns a tracker in StatusReady.
func NewTracker() *Tracker {
	return &Tracker{status: StatusReady}
}

// Status returns the current status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Start moves Ready to Streaming. It reports whether the transition applied.
func (t *Tracker) Start() bool {
	return t.transition(StatusReady, StatusStreaming)
}

// Finish moves Streaming to Done.
func (t *Tracker) Finish() bool {
	return t.transition(StatusStreaming, StatusDone)
}

// Fail moves Streaming to Error.
func (t *Tracker) Fail() bool {
	return t.transition(StatusStreaming, StatusError)
}

// Reset returns a terminal tracker to Ready.
func (t *Tracker) Reset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusDone && t.status != StatusError {
		return false
	}
	t.status = StatusReady
	return true
}

func (t *Tracker) transition(from, to Status) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != from {
		return false
	}
	t.status = to
	return true
}
