package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/neos-go/neos-go/errors"
)

const (
	pathStatsOnlineUsers     = "stats/onlineUsers"
	pathStatsOnlineInstances = "stats/onlineInstances"
)

// Stats implements the public statistics endpoints.
type Stats struct {
	api Requester
}

func NewStatsApi(r Requester) *Stats {
	return &Stats{api: r}
}

// OnlineUsers is the amount of users currently online.
func (s *Stats) OnlineUsers(ctx context.Context) (uint32, error) {
	return s.count(ctx, pathStatsOnlineUsers)
}

// OnlineInstances is the amount of running game instances.
func (s *Stats) OnlineInstances(ctx context.Context) (uint32, error) {
	return s.count(ctx, pathStatsOnlineInstances)
}

func (s *Stats) count(ctx context.Context, path string) (uint32, error) {
	res, err := s.api.Dispatch(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	raw, decodeErr := decodeJson[json.RawMessage](res)
	if decodeErr != nil {
		return 0, decodeErr
	}
	n, parseErr := parseCount(res, raw)
	return toNilErr(n, parseErr)
}

// parseCount accepts both 123 and "123".
func parseCount(res *Response, raw json.RawMessage) (uint32, *errors.RequestError) {
	var n uint32
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	err := json.Unmarshal(raw, &s)
	if err == nil {
		var parsed uint64
		parsed, err = strconv.ParseUint(s, 10, 32)
		if err == nil {
			return uint32(parsed), nil
		}
	}
	return 0, &errors.RequestError{
		Kind:       errors.KIND_DESERIALIZATION,
		Stage:      errors.STAGE_AFTER_REQUEST,
		SourceErr:  fmt.Errorf("expected a count, got %s: %w", string(raw), err),
		Body:       res.Body,
		StatusCode: res.StatusCode,
	}
}
