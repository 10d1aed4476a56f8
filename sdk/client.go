// Package htdj provides the Go client SDK for the Hang the DJ matchmaking
// demo API.
//
// The SDK covers the streaming chat transcript pipeline (SSE framing, delta
// coalescing, stream lifecycle) and the live intake interview protocol, plus
// the non-streamed matchmaking endpoints (users, intake, date exchange,
// report, pipeline).
package htdj

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hangthedj/htdj-go/pkg/types"
)

// DefaultBaseURL is the local demo backend address.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Client is the main entry point for the SDK.
type Client struct {
	Chat        *ChatService
	Intake      *IntakeService
	Matchmaking *MatchmakingService

	// Internal
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	tracer       trace.Tracer
	maxRetries   int
	retryBackoff time.Duration
	userAgent    string
}

// NewClient creates a new client for the demo API.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		logger:       slog.Default(),
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newDefaultHTTPClient()
	}

	c.Chat = newChatService(c)
	c.Intake = &IntakeService{client: c}
	c.Matchmaking = &MatchmakingService{client: c}
	return c
}

// Health checks backend liveness via GET /api/health.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
