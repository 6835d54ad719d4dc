package api

import (
	"context"

	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/types"
)

const pathGroupById = "groups/{groupId}"

type Groups struct {
	api Requester
}

func NewGroupsApi(r Requester) *Groups {
	return &Groups{api: r}
}

func (g *Groups) Get(ctx context.Context, groupId id.Group) (*types.Group, error) {
	return getJson[types.Group](ctx, g.api, pathWith(pathGroupById, "{groupId}", groupId.String()))
}
