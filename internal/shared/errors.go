package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error into the response taxonomy.
type Kind int

const (
	// KindInternal covers unexpected failures; the default for unmapped errors.
	KindInternal Kind = iota
	// KindBadRequest indicates malformed or invalid input.
	KindBadRequest
	// KindUnauthorized covers missing, malformed, invalid or expired
	// credentials. The client-visible message is always generic.
	KindUnauthorized
	// KindForbidden indicates a valid session denied by authorization.
	KindForbidden
	// KindNotFound indicates the resource does not exist.
	KindNotFound
	// KindConflict indicates a uniqueness violation.
	KindConflict
	// KindUnavailable indicates authorization or credential infrastructure
	// failed. Never coerced into Forbidden and never silently admitted.
	KindUnavailable
	// KindRateLimited indicates the caller exceeded a throttle.
	KindRateLimited
)

// Error is the single tagged error type crossing module boundaries.
// Message is safe for clients; Err carries internal detail for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// BadRequest builds a KindBadRequest error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Unauthorized builds a KindUnauthorized error with a generic client message.
// The cause is retained internally so logs can distinguish which check failed.
func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: "invalid or missing credentials", Err: err}
}

// Forbidden builds a KindForbidden error.
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "forbidden"}
}

// NotFound builds a KindNotFound error.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "not found"}
}

// Conflict builds a KindConflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// RateLimited builds a KindRateLimited error.
func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "too many attempts"}
}

// Unavailable builds a KindUnavailable error.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "service temporarily unavailable", Err: err}
}

// Internal builds a KindInternal error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the taxonomy kind for err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusOf maps err onto its HTTP status code.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf returns the client-safe message for err. Internal errors never
// leak their cause.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "internal server error"
}

// FromPG converts a pgx-layer error into the taxonomy. Missing rows map to
// NotFound and unique violations to Conflict; everything else stays Internal
// so it cannot be misread as a domain outcome.
func FromPG(err error) *Error {
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Conflict("duplicate entry")
	}
	return Internal(err)
}
