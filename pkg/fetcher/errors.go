package fetcher

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a fetch exceeds its deadline.
var ErrTimeout = errors.New("fetch timeout")

// ErrPayloadTooLarge is returned when a body exceeds the media size cap.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrNetwork wraps connection-level failures.
var ErrNetwork = errors.New("network failure")

// HTTPError reports an HTTP response status of 400 or above. Body and
// MIME carry a bounded copy of the error response so last-resort
// strategies can still mine metadata out of titled error pages.
type HTTPError struct {
	Status int
	Body   []byte
	MIME   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch http %d", e.Status)
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
