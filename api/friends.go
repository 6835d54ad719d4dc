package api

import (
	"context"
	"net/http"
	"time"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const (
	pathFriends      = "users/{userId}/friends"
	pathFriendById   = "users/{userId}/friends/{friendId}"
	queryLastUpdated = "lastStatusUpdate"
)

// Friends implements the friend list endpoints of an authenticated user.
type Friends struct {
	api Requester
	me  id.User
}

func NewFriendsApi(r Requester, me id.User) *Friends {
	return &Friends{api: r, me: me}
}

// List returns the friends of the current user. With since set, only
// friends whose status changed after it are returned.
func (f *Friends) List(ctx context.Context, since *time.Time) ([]types.Friend, error) {
	return f.ListFor(ctx, f.me, since)
}

// ListFor returns the friends of another user, if the API allows it.
func (f *Friends) ListFor(ctx context.Context, userId id.User, since *time.Time) ([]types.Friend, error) {
	var filter RequestBuilder
	if since != nil {
		filter = WithQuery(queryLastUpdated, since.UTC().Format(time.RFC3339Nano))
	}
	res, err := getJson[[]types.Friend](ctx, f.api, pathWith(pathFriends, "{userId}", userId.String()), filter)
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// Add sends or accepts a friend request.
func (f *Friends) Add(ctx context.Context, friendId id.User) error {
	return f.update(ctx, http.MethodPut, friendId, types.FriendStatusAccepted)
}

// Remove removes a friend or declines a friend request.
func (f *Friends) Remove(ctx context.Context, friendId id.User) error {
	return f.update(ctx, http.MethodDelete, friendId, types.FriendStatusIgnored)
}

func (f *Friends) update(ctx context.Context, method string, friendId id.User, status types.FriendStatus) error {
	return send(ctx, f.api, method,
		pathWith(pathFriendById, "{userId}", f.me.String(), "{friendId}", friendId.String()),
		WithJSON(types.FriendUpdate{OwnerId: f.me, FriendStatus: status}),
	)
}
