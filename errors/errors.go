package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	STAGE_BEFORE_REQUEST = "before-request"
	STAGE_REQUEST        = "request"
	STAGE_AFTER_REQUEST  = "after-request"

	// KIND_RESPONSE_CODE means the server answered with a non-2xx status,
	// 429 included. The caller may retry, fix the input or wait.
	KIND_RESPONSE_CODE = "response-code"
	// KIND_DESERIALIZATION means the response body was not the JSON
	// (or UTF-8) the endpoint promised.
	KIND_DESERIALIZATION = "deserialization"
	// KIND_OTHER covers transport failures and requests that could not
	// be built.
	KIND_OTHER = "other"
)

// ErrCredentialsDiscarded is the source error of requests attempted
// through an authenticated client whose credentials were already
// destroyed by a downgrade or logout.
var ErrCredentialsDiscarded = errors.New("credentials were discarded")

// ErrNoClient is the source error of requests made through a zero AnyClient.
var ErrNoClient = errors.New("no client to dispatch through")

// RequestError is the single error type returned by every request
// made through the Neos API client.
type RequestError struct {
	Kind       string
	Stage      string
	SourceErr  error
	Body       []byte
	StatusCode int
}

var _ error = &RequestError{}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KIND_RESPONSE_CODE:
		return fmt.Sprintf(
			"neos api request failed: status code %d; body: %s",
			e.StatusCode, string(e.Body),
		)
	default:
		var err string
		if e.SourceErr != nil {
			err = e.SourceErr.Error()
		}
		return fmt.Sprintf(
			"neos api request failed during '%s' stage with error kind '%s': %s",
			e.Stage, e.Kind, err,
		)
	}
}

func (e *RequestError) Unwrap() error {
	return e.SourceErr
}

// Is method is required by errors.Is() to properly distinguish between
// different types -vs- same pointer to the same type.
// Without it, errors.Is(err, &RequestError{}) returns false for any
// RequestError other than the very same pointer.
func (e *RequestError) Is(other error) bool {
	var err *RequestError
	return errors.As(other, &err) && err != nil
}

// IsRateLimited reports if err is a RequestError caused by a 429 response.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// StatusCode returns the HTTP status carried by a response-code error,
// or 0 for any other error.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == KIND_RESPONSE_CODE {
		return reqErr.StatusCode
	}
	return 0
}

// KindOf returns the Kind of a RequestError, or "" if err is not one.
func KindOf(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}
