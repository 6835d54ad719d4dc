package types

import "github.com/neos-go/neos-go/id"

// Friend is an element of GET users/{userId}/friends.
type Friend struct {
	Id           id.User      `json:"id"`
	Username     string       `json:"friendUsername"`
	FriendStatus FriendStatus `json:"friendStatus"`
	IsAccepted   bool         `json:"isAccepted"`
	Status       UserStatus   `json:"userStatus"`
	Profile      *UserProfile `json:"profile,omitempty"`
	// Placeholder dates such as 0001-01-01T00:00:00 decode as not set.
	LatestMessageTime OptionalTime `json:"latestMessageTime"`
	// Whose friend list this entry belongs to.
	OwnerId id.Owner `json:"ownerId"`
}

// FriendUpdate is the partial Friend sent when adding or removing a friend.
type FriendUpdate struct {
	OwnerId      id.User      `json:"ownerId"`
	FriendStatus FriendStatus `json:"friendStatus"`
}
