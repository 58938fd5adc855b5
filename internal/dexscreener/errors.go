package dexscreener

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-checkable category of a fetch failure.
type Kind string

const (
	KindInvalidAddress   Kind = "INVALID_ADDRESS"
	KindUnsupportedChain Kind = "UNSUPPORTED_CHAIN"
	KindNotFound         Kind = "NOT_FOUND"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindNetworkError     Kind = "NETWORK_ERROR"
	KindAPIError         Kind = "API_ERROR"
	KindParseError       Kind = "PARSE_ERROR"
)

// Sentinels for errors.Is checks. Matching is by Kind only.
var (
	ErrInvalidAddress   = &Error{Kind: KindInvalidAddress, Message: msgInvalidAddress}
	ErrUnsupportedChain = &Error{Kind: KindUnsupportedChain}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrRateLimited      = &Error{Kind: KindRateLimited}
	ErrNetwork          = &Error{Kind: KindNetworkError}
	ErrAPI              = &Error{Kind: KindAPIError}
	ErrParse            = &Error{Kind: KindParseError}
)

const (
	msgInvalidAddress = "Please enter a valid EVM contract address (0x + 40 hex characters)."
	msgNetwork        = "Network error while fetching token data. Please try again."
	msgRateLimited    = "Rate limited by the data provider. Please wait a moment and try again."
	msgLocalLimit     = "Too many lookups in a short time. Please wait a moment and try again."
	msgParse          = "Failed to parse token data response. Please try again later."
	msgNotFound       = "No live market data found for that contract address."
	msgNotUsable      = "No usable market data found for that contract address."
)

// Error is a typed fetch failure. Message is safe to show to users verbatim.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err if it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func apiError(status int) *Error {
	return &Error{
		Kind:       KindAPIError,
		Message:    fmt.Sprintf("Data provider error (%d). Please try again later.", status),
		StatusCode: status,
	}
}
