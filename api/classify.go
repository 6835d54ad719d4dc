package api

import (
	"net/http"

	"github.com/neos-go/neos-go/errors"
)

// classify turns a fully read response into either a Response or a
// response-code error, feeding the rate limit headers to the tracker.
//
// A 429 is always an error. A zero remaining-calls header on any other
// response only delays the next request.
func (d *Dispatcher) classify(status int, header http.Header, body []byte) (*Response, *errors.RequestError) {
	if d.tracker.Observe(status, header) {
		until, _ := d.tracker.BlockedUntil()
		d.logger.Warnf("Neos API rate limit hit, blocked until %s", until.Format("15:04:05.000"))
		return nil, responseCodeErr(status, body)
	}

	if status < 200 || status >= 300 {
		return nil, responseCodeErr(status, body)
	}

	return &Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}, nil
}

func responseCodeErr(status int, body []byte) *errors.RequestError {
	return &errors.RequestError{
		Kind:       errors.KIND_RESPONSE_CODE,
		Stage:      errors.STAGE_AFTER_REQUEST,
		Body:       body,
		StatusCode: status,
	}
}
