package apperr

import "errors"

type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindAuthorization
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	default:
		return "unclassified"
	}
}

// Error is the single error shape that crosses the usecase boundary. Fields carries
// per-field validation messages and is only populated for KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error of the same kind with an empty message, so callers can
// write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrAuthorization   = &Error{Kind: KindAuthorization}
	ErrConflict        = &Error{Kind: KindConflict}
)

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindUnclassified, Message: message, Cause: cause}
}

// KindOf walks the chain and reports the first classified kind found. An unclassified
// *Error does not end the walk; its cause is searched next.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) || e == nil {
			break
		}
		if e.Kind != KindUnclassified {
			return e.Kind
		}
		err = e.Cause
	}
	return KindUnclassified
}
