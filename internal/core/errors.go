package core

import (
	"context"
	"errors"
)

// Failure categories. Callers wrap these with fmt.Errorf("%w: ...") so the
// request boundary can map them to a client-visible code.
var (
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrUpstream            = errors.New("upstream error")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Error codes returned to clients alongside the generic 500 body.
const (
	CodeValidation          = "validation_error"
	CodeConfiguration       = "configuration_error"
	CodeUpstream            = "upstream_error"
	CodeStoreUnavailable    = "store_unavailable"
	CodeUnsupportedProvider = "unsupported_provider"
	CodeTimeout             = "timeout_error"
	CodeInternal            = "internal_error"
)

// ErrorCode classifies err into one of the Code* constants.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrUnsupportedProvider):
		return CodeUnsupportedProvider
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrUpstream):
		return CodeUpstream
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}
