package pipeline

import "errors"

// Error taxonomy surfaced at the pipeline boundary. Extractor-local
// failures (fetch timeouts, cleaning loss) are recovered by the next
// strategy and never reach the caller directly; reasoner failures are
// converted into the structured shell report.
var (
	// ErrInputInvalid covers malformed URLs, missing bodies, and
	// unsupported MIME types. HTTP 400.
	ErrInputInvalid = errors.New("invalid input")

	// ErrUnauthenticated is returned when the options carry no user id.
	// HTTP 401.
	ErrUnauthenticated = errors.New("missing user id")

	// ErrPayloadTooLarge is returned for uploads over the media cap.
	// HTTP 413.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTextTooLong is returned for text bodies over the input cap.
	// HTTP 413.
	ErrTextTooLong = errors.New("text too long")

	// ErrExtractionExhausted is returned when every strategy failed.
	// HTTP 502, with the last cause attached.
	ErrExtractionExhausted = errors.New("extraction exhausted")
)
