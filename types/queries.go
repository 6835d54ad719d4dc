package types

import (
	"time"

	"github.com/neos-go/neos-go/id"
)

// UserIdOrUsername selects a user either by id or by username.
type UserIdOrUsername struct {
	value string
	isId  bool
}

func ByUserId(userId id.User) UserIdOrUsername {
	return UserIdOrUsername{value: userId.String(), isId: true}
}

func ByUsername(username string) UserIdOrUsername {
	return UserIdOrUsername{value: username}
}

func (u UserIdOrUsername) IsId() bool {
	return u.isId
}

func (u UserIdOrUsername) IsUsername() bool {
	return !u.isId
}

func (u UserIdOrUsername) String() string {
	return u.value
}

const DefaultMessagesMaxAmount = 100

// MessagesQuery filters GET users/{userId}/messages.
type MessagesQuery struct {
	// Capped server side, likely to a lower value.
	MaxAmount  uint16
	UnreadOnly bool
	FromTime   *time.Time
	WithUser   *id.User
}

func DefaultMessagesQuery() MessagesQuery {
	return MessagesQuery{MaxAmount: DefaultMessagesMaxAmount}
}
