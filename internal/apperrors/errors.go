// Package apperrors defines the error taxonomy shared by the service and
// HTTP layers. Every Error carries the HTTP status it maps to, so handlers
// never switch on message strings.
package apperrors

import "errors"

type Kind int

const (
	KindAuthentication Kind = iota
	KindValidation
	KindNotFound
	KindConfiguration
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	// Reason is logged server-side only. Authentication failures all reach
	// the client with the same generic message; Reason keeps the internal
	// distinction (unknown email vs wrong password) visible to operators.
	Reason string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Message + ": " + e.Reason
	}
	return e.Message
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuthentication:
		return 401
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	default:
		return 500
	}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// AuthenticationReason builds a 401 whose wire message stays generic while
// the reason is preserved for logs.
func AuthenticationReason(message, reason string) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Reason: reason}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Configuration errors are fatal at boot; they never reach a handler.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// As unwraps err into an *Error, or nil when err is not one.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
