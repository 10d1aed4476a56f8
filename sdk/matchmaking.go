package htdj

import (
	"context"
	"net/http"
	"strings"

	"github.com/hangthedj/htdj-go/pkg/api"
	"github.com/hangthedj/htdj-go/pkg/types"
)

// MatchmakingService covers the non-streamed simulation endpoints: user
// listing, date exchanges, match reports, and the full pipeline. These are
// plain request/response calls; the simulation itself runs server-side.
type MatchmakingService struct {
	client *Client
}

// Users lists the pre-generated demo users.
func (s *MatchmakingService) Users(ctx context.Context) ([]types.UserProfile, error) {
	var out types.UsersResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// DateExchange runs one simulated date between two users via
// POST /api/date/exchange/{a}/{b}.
func (s *MatchmakingService) DateExchange(ctx context.Context, userAID, userBID string) (*types.DateExchange, error) {
	path, err := pairPath("/api/date/exchange", userAID, userBID)
	if err != nil {
		return nil, err
	}
	var out types.DateExchange
	if err := s.client.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report generates a match report for two users via POST /api/report/{a}/{b}.
func (s *MatchmakingService) Report(ctx context.Context, userAID, userBID string) (*types.ReportResponse, error) {
	path, err := pairPath("/api/report", userAID, userBID)
	if err != nil {
		return nil, err
	}
	var out types.ReportResponse
	if err := s.client.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pipeline runs the full intake-dates-report pipeline via
// POST /api/pipeline/{a}/{b}. This is the slowest endpoint; pass a context
// with a generous deadline.
func (s *MatchmakingService) Pipeline(ctx context.Context, userAID, userBID string) (*types.PipelineResponse, error) {
	path, err := pairPath("/api/pipeline", userAID, userBID)
	if err != nil {
		return nil, err
	}
	var out types.PipelineResponse
	if err := s.client.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pairPath(prefix, userAID, userBID string) (string, error) {
	userAID = strings.TrimSpace(userAID)
	userBID = strings.TrimSpace(userBID)
	if userAID == "" || userBID == "" {
		return "", api.NewInvalidRequestError("both user IDs must be set")
	}
	return prefix + "/" + userAID + "/" + userBID, nil
}
