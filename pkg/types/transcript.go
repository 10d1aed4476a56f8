package types

import "time"

// TranscriptEntry is one finalized message in the chat transcript.
// Entries are immutable once appended; ordering is append order.
type TranscriptEntry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
