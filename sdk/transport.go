package htdj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hangthedj/htdj-go/pkg/api"
)

const defaultNonStreamingTimeout = 2 * time.Minute

// endpoint joins the configured base URL with an API path, rejecting base
// URLs that cannot round-trip safely.
func (c *Client) endpoint(path string) (string, error) {
	rawBaseURL := strings.TrimSpace(c.baseURL)
	if rawBaseURL == "" {
		return "", api.NewInvalidRequestError("base URL is not set")
	}

	base, err := url.Parse(rawBaseURL)
	if err != nil || strings.TrimSpace(base.Scheme) == "" || strings.TrimSpace(base.Host) == "" {
		return "", api.NewInvalidRequestError("invalid base URL")
	}
	if base.User != nil {
		return "", api.NewInvalidRequestError("base URL must not include credentials")
	}

	base.RawQuery = ""
	base.Fragment = ""

	cleanPath := "/" + strings.TrimLeft(path, "/")
	basePath := strings.TrimSuffix(base.Path, "/")
	if basePath == "" || basePath == "/" {
		base.Path = cleanPath
	} else {
		base.Path = basePath + cleanPath
	}
	base.RawPath = ""

	return base.String(), nil
}

// doJSON performs a non-streaming JSON round trip and decodes the response
// into out. GET requests are retried on transport failures and retryable
// statuses; mutating requests are never retried automatically, so a failed
// intake submission can be resubmitted by the caller without risk of a
// double advance.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	endpoint, err := c.endpoint(path)
	if err != nil {
		return err
	}

	ctx, span := c.startSpan(ctx, method, path)
	defer span.End()

	attempt := 0
	backoff := c.retryBackoff
	retryable := method == http.MethodGet

	for {
		resp, err := c.send(ctx, method, endpoint, payload, false)
		if err != nil {
			if retryable && shouldRetry(ctx, attempt, c.maxRetries) {
				time.Sleep(backoff)
				backoff *= 2
				attempt++
				continue
			}
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := decodeErrorResponse(resp, endpoint, method)
			if shouldRetryStatus(resp.StatusCode) && retryable && shouldRetry(ctx, attempt, c.maxRetries) {
				time.Sleep(backoff)
				backoff *= 2
				attempt++
				continue
			}
			span.SetStatus(codes.Error, apiErr.Error())
			return apiErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return &api.Error{
				Type:      api.ErrAPI,
				Message:   "failed to read response body",
				RequestID: requestIDFromHeader(resp.Header),
			}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return &api.Error{
				Type:      api.ErrAPI,
				Message:   fmt.Sprintf("failed to decode %s response", path),
				RequestID: requestIDFromHeader(resp.Header),
			}
		}
		return nil
	}
}

// postStream issues the streaming POST and hands back the open response.
// No retries here: stream retry policy belongs to the caller.
func (c *Client) postStream(ctx context.Context, path string, payload any) (*http.Response, string, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.send(ctx, http.MethodPost, endpoint, payload, true)
	if err != nil {
		return nil, endpoint, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, endpoint, decodeErrorResponse(resp, endpoint, http.MethodPost)
	}
	return resp, endpoint, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload any, stream bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, api.NewInvalidRequestError("failed to marshal request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Op: method, URL: endpoint, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method, URL: endpoint, Err: err}
	}
	return resp, nil
}

func (c *Client) startSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return c.tracer.Start(ctx, "htdj "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// decodeErrorResponse maps a non-success response to an *api.Error. The
// backend reports errors in the FastAPI envelope {"detail": "..."}.
func decodeErrorResponse(resp *http.Response, endpoint, method string) error {
	defer resp.Body.Close()

	requestID := requestIDFromHeader(resp.Header)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Op: method, URL: endpoint, Err: err}
	}

	apiErr := &api.Error{
		Type:      inferErrorType(resp.StatusCode),
		Message:   fmt.Sprintf("request failed with status %d", resp.StatusCode),
		RequestID: requestID,
	}

	var env struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err == nil && strings.TrimSpace(env.Detail) != "" {
		apiErr.Detail = env.Detail
	}
	return apiErr
}

func inferErrorType(statusCode int) api.ErrorType {
	switch statusCode {
	case http.StatusBadRequest:
		return api.ErrInvalidRequest
	case http.StatusNotFound:
		return api.ErrNotFound
	case http.StatusTooManyRequests:
		return api.ErrRateLimit
	default:
		return api.ErrAPI
	}
}

func requestIDFromHeader(h http.Header) string {
	if h == nil {
		return ""
	}
	if reqID := strings.TrimSpace(h.Get("X-Request-Id")); reqID != "" {
		return reqID
	}
	return strings.TrimSpace(h.Get("X-Request-ID"))
}

func shouldRetry(ctx context.Context, attempt, maxRetries int) bool {
	if ctx.Err() != nil {
		return false
	}
	return attempt < maxRetries
}

func shouldRetryStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultNonStreamingTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultNonStreamingTimeout)
}
