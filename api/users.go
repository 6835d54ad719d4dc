package api

import (
	"context"
	"strconv"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const (
	pathUsers      = "users"
	pathUserById   = "users/{user}"
	pathUserStatus = "users/{userId}/status"
)

// Users implements the public user lookup endpoints.
type Users struct {
	api Requester
}

func NewUsersApi(r Requester) *Users {
	return &Users{api: r}
}

// Get fetches a user by id or by username.
func (u *Users) Get(ctx context.Context, user types.UserIdOrUsername) (*types.User, error) {
	return getJson[types.User](ctx, u.api,
		pathWith(pathUserById, "{user}", user.String()),
		WithQuery("byUsername", strconv.FormatBool(user.IsUsername())),
	)
}

// Search finds users whose name contains name.
func (u *Users) Search(ctx context.Context, name string) ([]types.User, error) {
	res, err := getJson[[]types.User](ctx, u.api, pathUsers, WithQuery("name", name))
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (u *Users) Status(ctx context.Context, userId id.User) (*types.UserStatus, error) {
	return getJson[types.UserStatus](ctx, u.api, pathWith(pathUserStatus, "{userId}", userId.String()))
}
