package transcript

import (
	"strings"
	"time"

	"github.com/hangthedj/htdj-go/pkg/types"
)

// Accumulator coalesces consecutive same-speaker delta fragments into single
// logical transcript entries. It holds at most one in-progress message;
// pending text is non-empty only while a pending speaker is set, and both
// clear together on flush.
//
// Accumulator is not safe for concurrent use; the stream reader is its
// single driver.
type Accumulator struct {
	pendingSpeaker string
	pendingText    strings.Builder

	// now is swappable for tests.
	now func() time.Time
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{now: time.Now}
}

// ApplyDelta merges one delta fragment. If the fragment continues the
// pending speaker's message it is appended and nothing is finalized.
// A speaker switch finalizes the pending message first; the flushed entry
// (if any) is returned with ok set.
func (a *Accumulator) ApplyDelta(speaker, text string) (types.TranscriptEntry, bool) {
	if a.pendingSpeaker == speaker {
		a.pendingText.WriteString(text)
		return types.TranscriptEntry{}, false
	}

	flushed, ok := a.Flush()
	a.pendingSpeaker = speaker
	a.pendingText.WriteString(text)
	return flushed, ok
}

// Flush finalizes the pending message, if one exists with non-empty text,
// stamping it at flush time. Pending state clears unconditionally.
func (a *Accumulator) Flush() (types.TranscriptEntry, bool) {
	speaker := a.pendingSpeaker
	text := a.pendingText.String()
	a.pendingSpeaker = ""
	a.pendingText.Reset()

	if speaker == "" || text == "" {
		return types.TranscriptEntry{}, false
	}
	return types.TranscriptEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: a.now(),
	}, true
}

// Pending reports the speaker of the in-progress message, if any.
func (a *Accumulator) Pending() (speaker string, active bool) {
	return a.pendingSpeaker, a.pendingSpeaker != ""
}
