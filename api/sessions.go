package api

import (
	"context"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const (
	pathSessions    = "sessions"
	pathSessionById = "sessions/{sessionId}"
)

// Sessions implements the public session listing, see types.SessionInfo.
type Sessions struct {
	api Requester
}

func NewSessionsApi(r Requester) *Sessions {
	return &Sessions{api: r}
}

// List returns the sessions visible to the caller. Authenticated callers
// also see sessions shared with their friends.
func (s *Sessions) List(ctx context.Context) ([]types.SessionInfo, error) {
	res, err := getJson[[]types.SessionInfo](ctx, s.api, pathSessions)
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (s *Sessions) Get(ctx context.Context, sessionId id.Session) (*types.SessionInfo, error) {
	return getJson[types.SessionInfo](ctx, s.api, pathWith(pathSessionById, "{sessionId}", sessionId.String()))
}
