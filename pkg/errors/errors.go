package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeParsing            ErrorType = "parsing"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeServerError        ErrorType = "server_error"
	ErrorTypeRateLimit          ErrorType = "rate_limit"
	ErrorTypeUnsupportedContent ErrorType = "unsupported_content"
	ErrorTypeUnknown            ErrorType = "unknown"
)

// Error represents a scraper error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, message string, code int) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// IsNotFound reports whether err is a not_found error. The listing
// client returns one when the subreddit does not exist, which is the only
// condition that aborts a run.
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsUnsupportedContent reports whether err came from the content-type
// sniff rejecting a non-image URL. Callers log a warning and move on.
func IsUnsupportedContent(err error) bool {
	return isType(err, ErrorTypeUnsupportedContent)
}

func isType(err error, errorType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// IsFatal reports whether an error should terminate the whole run rather
// than skip a single submission.
func IsFatal(err error) bool {
	return IsNotFound(err)
}
