// Package apperr is the error taxonomy shared by services and controllers.
//
// Services return errors built with E (or one of the shorthand helpers);
// the HTTP layer maps them to a status code in exactly one place, Status.
//
//	if errors.Is(err, mongo.ErrNoDocuments) {
//	    return nil, apperr.NotFound("food not found")
//	}
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport-level mapping.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFoundError"
	KindDuplicate          Kind = "DuplicateError"
	KindInvalidCredentials Kind = "InvalidCredentialsError"
	KindScope              Kind = "ScopeError"
	KindExpiredToken       Kind = "ExpiredTokenError"
	KindInvalidSignature   Kind = "InvalidSignatureError"
	KindRevokedToken       Kind = "RevokedTokenError"
	KindIO                 Kind = "IOError"
	KindDecode             Kind = "DecodeError"
	KindInternal           Kind = "InternalError"
)

// Error is a classified error with a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// E builds a classified error.
func E(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(msg string) *Error         { return E(KindValidation, msg, nil) }
func NotFound(msg string) *Error           { return E(KindNotFound, msg, nil) }
func Duplicate(msg string) *Error          { return E(KindDuplicate, msg, nil) }
func InvalidCredentials(msg string) *Error { return E(KindInvalidCredentials, msg, nil) }
func Scope(msg string) *Error              { return E(KindScope, msg, nil) }

// Sentinels for errors.Is comparisons on kind only.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrDuplicate          = &Error{Kind: KindDuplicate}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrScope              = &Error{Kind: KindScope}
	ErrExpiredToken       = &Error{Kind: KindExpiredToken}
	ErrInvalidSignature   = &Error{Kind: KindInvalidSignature}
	ErrRevokedToken       = &Error{Kind: KindRevokedToken}
	ErrIO                 = &Error{Kind: KindIO}
	ErrDecode             = &Error{Kind: KindDecode}
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Unclassified errors never
// leak their text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal Server Error"
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindInvalidCredentials, KindScope, KindExpiredToken, KindInvalidSignature, KindRevokedToken:
		return http.StatusUnauthorized
	case KindDecode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
