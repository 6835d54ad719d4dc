package types

import "github.com/neos-go/neos-go/id"

// Group is the response of GET groups/{groupId}.
type Group struct {
	Id         id.Group `json:"id"`
	AdminId    id.User  `json:"adminUserId"`
	Name       string   `json:"name"`
	QuotaBytes uint64   `json:"quotaBytes"`
	UsedBytes  uint64   `json:"usedBytes"`
}
