package api

import (
	"context"
	"net/http"
)

const pathTestingPing = "testing/ping"

// Testing implements the API's health check endpoint.
type Testing struct {
	api Requester
}

func NewTestingApi(r Requester) *Testing {
	return &Testing{api: r}
}

// Ping succeeds if the API is reachable and responding.
func (t *Testing) Ping(ctx context.Context) error {
	return send(ctx, t.api, http.MethodGet, pathTestingPing)
}
