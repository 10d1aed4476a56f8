package htdj

import (
	"fmt"
	"net/url"

	"github.com/hangthedj/htdj-go/pkg/api"
)

// SDK-level error type that wraps the canonical API error.
type Error = api.Error

// Error types
const (
	ErrInvalidRequest = api.ErrInvalidRequest
	ErrNotFound       = api.ErrNotFound
	ErrRateLimit      = api.ErrRateLimit
	ErrAPI            = api.ErrAPI
	ErrStream         = api.ErrStream
)

// Error constructors
var (
	NewInvalidRequestError = api.NewInvalidRequestError
	NewNotFoundError       = api.NewNotFoundError
	NewAPIError            = api.NewAPIError
	NewStreamError         = api.NewStreamError
)

// TransportError represents HTTP transport-level failures (DNS, timeouts,
// connection reset, TLS handshake, etc.) while talking to the backend.
//
// Use errors.As(err, &TransportError{}) to distinguish transport failures
// from canonical API errors (*api.Error).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Op != "" && e.URL != "":
		return fmt.Sprintf("transport error during %s %s: %v", e.Op, redactURLUserInfo(e.URL), e.Err)
	case e.Op != "":
		return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func redactURLUserInfo(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	parsed.User = nil
	return parsed.String()
}
