// Package errs defines the user-facing error taxonomy shared by the forum
// pipeline and the admin services. Controllers map kinds to HTTP statuses.
package errs

import "fmt"

type Kind int

const (
	// KindNotFound: board or thread absent.
	KindNotFound Kind = iota + 1
	// KindNotAllowed: posting disabled, rate limited, or board full.
	KindNotAllowed
	// KindBadRequest: payload violates board rules.
	KindBadRequest
	// KindConflict: duplicate board URL, reserved URL, duplicate staff email.
	KindConflict
)

// Error carries a kind and a message safe to show to the poster.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NotAllowed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotAllowed, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 for non-taxonomy errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
