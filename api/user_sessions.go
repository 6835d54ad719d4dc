package api

import (
	"context"
	"net/http"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const (
	pathUserSessions      = "userSessions"
	pathUserSessionByUser = "userSessions/{userId}"
)

// UserSessions implements login, logout and session extension.
//
// Create works without authentication. Extend and Destroy need a
// Requester that attaches the session's Authorization header.
type UserSessions struct {
	api Requester
}

func NewUserSessionsApi(r Requester) *UserSessions {
	return &UserSessions{api: r}
}

// Create logs in. Unless credentials carry a secret machine id, every
// other session of the account is invalidated.
func (u *UserSessions) Create(ctx context.Context, credentials types.LoginCredentials) (*types.UserSession, error) {
	return sendJson[types.UserSession](ctx, u.api, http.MethodPost, pathUserSessions, WithJSON(credentials))
}

// Extend pushes back the expiration of the current session.
func (u *UserSessions) Extend(ctx context.Context) error {
	return send(ctx, u.api, http.MethodPatch, pathUserSessions)
}

// Destroy logs the user out of the current session.
func (u *UserSessions) Destroy(ctx context.Context, userId id.User) error {
	return send(ctx, u.api, http.MethodDelete, pathWith(pathUserSessionByUser, "{userId}", userId.String()))
}
