package errors

import (
	"errors"
	"fmt"
)

// ErrorWithStatusCode is a failure reported by a peer with an HTTP status.
// The roster service puts a human readable reason into Message (its "detail"
// field); Message is empty when the service sent none.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// AsStatusError reports whether err carries a peer status, i.e. a response
// was obtained. Any other error means the exchange itself failed.
func AsStatusError(err error) (*ErrorWithStatusCode, bool) {
	var se *ErrorWithStatusCode
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
