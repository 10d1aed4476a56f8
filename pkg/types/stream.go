package types

import (
	"encoding/json"
	"strings"
)

// DefaultAgentSpeaker is the evaluator agent identity the server streams
// deltas for. Delta frames that omit a speaker belong to it.
const DefaultAgentSpeaker = "agent#3"

// ErrorSpeaker labels synthetic transcript entries produced from terminal
// error events and transport failures.
const ErrorSpeaker = "error"

// StreamEvent is the interface for all chat stream event types.
type StreamEvent interface {
	EventType() string
}

// MetaEvent opens a stream with informational fields. Consumers ignore it.
type MetaEvent struct {
	Timestamp float64 `json:"timestamp"`
	Model     string  `json:"model"`
}

func (e MetaEvent) EventType() string { return "meta" }

// TranscriptEvent carries an already-complete message (user input, system
// notices). It bypasses delta merging.
type TranscriptEvent struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (e TranscriptEvent) EventType() string { return "transcript" }

// DeltaEvent carries an incremental fragment of a single logical agent
// message. Consecutive same-speaker deltas concatenate.
type DeltaEvent struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (e DeltaEvent) EventType() string { return "delta" }

// DoneEvent terminates a stream successfully. No payload fields are consumed
// beyond the optional status string.
type DoneEvent struct {
	Status string `json:"status"`
}

func (e DoneEvent) EventType() string { return "done" }

// StreamErrorEvent terminates a stream with a server-reported error.
type StreamErrorEvent struct {
	Message string `json:"error"`
}

func (e StreamErrorEvent) EventType() string { return "error" }

// UnknownStreamEvent wraps event names this client does not recognize.
// They are ignored, not errors.
type UnknownStreamEvent struct {
	Name string
	Data json.RawMessage
}

func (e UnknownStreamEvent) EventType() string { return e.Name }

// UnmarshalStreamEvent decodes one SSE frame payload into a typed event.
// The event name selects the concrete type; an empty name means the SSE
// default "message", which this protocol does not use.
func UnmarshalStreamEvent(name string, data []byte) (StreamEvent, error) {
	switch strings.TrimSpace(name) {
	case "meta":
		var event MetaEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "transcript":
		var event TranscriptEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "delta":
		var event DeltaEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		if event.Speaker == "" {
			event.Speaker = DefaultAgentSpeaker
		}
		return event, nil
	case "done":
		var event DoneEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "error":
		var event StreamErrorEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return UnknownStreamEvent{Name: name, Data: append(json.RawMessage(nil), data...)}, nil
	}
}
