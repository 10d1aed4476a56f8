package htdj

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hangthedj/htdj-go/pkg/api"
	"github.com/hangthedj/htdj-go/pkg/transcript"
	"github.com/hangthedj/htdj-go/pkg/types"
)

// chatRequest is the streaming endpoint's request body.
type chatRequest struct {
	UserText string `json:"user_text"`
}

// ChatService drives the streaming chat transcript pipeline. It owns the
// append-only transcript store and the stream status, both of which persist
// across stream instances until Reset.
type ChatService struct {
	client *Client
	store  *transcript.Store
	status *transcript.Tracker
}

func newChatService(c *Client) *ChatService {
	return &ChatService{
		client: c,
		store:  transcript.NewStore(),
		status: transcript.NewTracker(),
	}
}

// Status returns the current stream lifecycle status.
func (s *ChatService) Status() transcript.Status {
	return s.status.Status()
}

// Transcript returns a snapshot of all finalized entries in append order.
func (s *ChatService) Transcript() []types.TranscriptEntry {
	return s.store.Snapshot()
}

// Reset clears the transcript and returns a terminal status to Ready.
// It reports false while a stream is still active.
func (s *ChatService) Reset() bool {
	if !s.status.Reset() {
		return false
	}
	s.store.Reset()
	return true
}

// Stream sends userText to the chat endpoint and consumes the SSE response
// on a background goroutine, appending finalized entries to the service
// store as message boundaries resolve.
//
// The service must be Ready: terminal streams need an explicit Reset first.
// Behavior under concurrent Stream calls is unspecified; callers serialize
// starts. A failure to connect appends a synthetic error entry and leaves
// the status in Error.
func (s *ChatService) Stream(ctx context.Context, userText string) (*ChatStream, error) {
	if !s.status.Start() {
		return nil, api.NewInvalidRequestError("stream already started; Reset before starting another")
	}

	ctx, span := s.client.startSpan(ctx, http.MethodPost, "/api/chat/stream")

	resp, endpoint, err := s.client.postStream(ctx, "/api/chat/stream", &chatRequest{UserText: userText})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		s.store.Append(types.TranscriptEntry{
			Speaker:   types.ErrorSpeaker,
			Text:      err.Error(),
			Timestamp: time.Now(),
		})
		s.status.Fail()
		return nil, err
	}

	s.client.logger.Debug("chat stream started", "url", endpoint)
	return newChatStream(s, resp.Body, endpoint, span), nil
}

// ChatStream is one live SSE stream instance.
type ChatStream struct {
	entries <-chan types.TranscriptEntry
	done    chan struct{}
	stop    chan struct{}

	streamURL string
	body      io.ReadCloser
	service   *ChatService
	span      trace.Span

	err error

	stopOnce  sync.Once
	closeOnce sync.Once
}

func newChatStream(service *ChatService, body io.ReadCloser, streamURL string, span trace.Span) *ChatStream {
	entries := make(chan types.TranscriptEntry, 100)
	cs := &ChatStream{
		entries:   entries,
		done:      make(chan struct{}),
		stop:      make(chan struct{}),
		streamURL: streamURL,
		body:      body,
		service:   service,
		span:      span,
	}

	go cs.read(entries)
	return cs
}

// read is the single writer of the transcript store. All parsing,
// accumulation, and status transitions run on this goroutine, so no
// partial-frame state is ever observed elsewhere.
func (s *ChatStream) read(entries chan<- types.TranscriptEntry) {
	defer close(entries)
	defer close(s.done)
	defer s.closeBody()
	defer s.endSpan()

	parser := newSSEParser(s.body)
	acc := transcript.NewAccumulator()
	logger := s.service.client.logger

	for {
		frame, err := parser.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Closed without a terminal event: benign completion.
				if flushed, ok := acc.Flush(); ok {
					s.emit(entries, flushed)
				}
				s.service.status.Finish()
				return
			}
			if s.isStopped() {
				s.service.status.Finish()
				return
			}
			if flushed, ok := acc.Flush(); ok {
				s.emit(entries, flushed)
			}
			s.err = &TransportError{Op: "POST", URL: s.streamURL, Err: err}
			s.emit(entries, types.TranscriptEntry{
				Speaker:   types.ErrorSpeaker,
				Text:      s.err.Error(),
				Timestamp: time.Now(),
			})
			s.service.status.Fail()
			return
		}

		if len(frame.Data) == 0 {
			continue
		}

		event, err := types.UnmarshalStreamEvent(frame.Event, frame.Data)
		if err != nil {
			// Malformed payloads are dropped, not surfaced as transcript
			// content or status changes.
			logger.Warn("dropping malformed stream frame", "event", frame.Event, "error", err)
			continue
		}

		switch e := event.(type) {
		case types.MetaEvent, types.UnknownStreamEvent:
			continue

		case types.TranscriptEvent:
			if flushed, ok := acc.Flush(); ok {
				if !s.emit(entries, flushed) {
					return
				}
			}
			if !s.emit(entries, types.TranscriptEntry{
				Speaker:   e.Speaker,
				Text:      e.Text,
				Timestamp: time.Now(),
			}) {
				return
			}

		case types.DeltaEvent:
			if flushed, ok := acc.ApplyDelta(e.Speaker, e.Text); ok {
				if !s.emit(entries, flushed) {
					return
				}
			}

		case types.DoneEvent:
			if flushed, ok := acc.Flush(); ok {
				s.emit(entries, flushed)
			}
			s.service.status.Finish()
			logger.Debug("chat stream complete", "url", s.streamURL)
			return

		case types.StreamErrorEvent:
			if flushed, ok := acc.Flush(); ok {
				s.emit(entries, flushed)
			}
			s.err = api.NewStreamError(e.Message)
			s.emit(entries, types.TranscriptEntry{
				Speaker:   types.ErrorSpeaker,
				Text:      e.Message,
				Timestamp: time.Now(),
			})
			s.service.status.Fail()
			logger.Debug("chat stream failed", "url", s.streamURL, "error", e.Message)
			return
		}
	}
}

// emit appends one finalized entry and forwards it to the consumer channel.
// Nothing is appended once cancellation has been requested.
func (s *ChatStream) emit(entries chan<- types.TranscriptEntry, entry types.TranscriptEntry) bool {
	if s.isStopped() {
		return false
	}
	s.service.store.Append(entry)
	select {
	case entries <- entry:
		return true
	case <-s.stop:
		return false
	}
}

func (s *ChatStream) isStopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// endSpan records the terminal outcome on the stream-lifetime span.
func (s *ChatStream) endSpan() {
	if s.span == nil {
		return
	}
	if s.err != nil {
		s.span.SetStatus(codes.Error, s.err.Error())
	}
	s.span.End()
}

func (s *ChatStream) closeBody() {
	s.closeOnce.Do(func() {
		if s.body != nil {
			// Release failures carry no useful recovery action.
			_ = s.body.Close()
		}
	})
}

// Entries returns finalized transcript entries as message boundaries
// resolve. The channel closes when the stream terminates.
func (s *ChatStream) Entries() <-chan types.TranscriptEntry {
	return s.entries
}

// Wait blocks until the stream terminates and returns the terminal error,
// if any. A nil result covers both a done event and a clean close.
func (s *ChatStream) Wait() error {
	<-s.done
	return s.err
}

// Err returns the terminal stream error, if any, blocking until the stream
// terminates.
func (s *ChatStream) Err() error {
	return s.Wait()
}

// Close cancels the stream and releases the underlying connection. It is
// idempotent, safe to call after terminal events, and guarantees no further
// transcript appends once requested.
func (s *ChatStream) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.closeBody()
		s.service.status.Finish()
	})
	<-s.done
	return nil
}
