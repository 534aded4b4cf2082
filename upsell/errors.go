package upsell

import (
	"errors"
)

// DefaultErrorMessage is shown when an upstream failure carries no message of its own.
const DefaultErrorMessage = "Failed to fetch products"

var (
	// ErrNetwork covers transport failures and bodies that are not JSON at all.
	ErrNetwork = errors.New("upsell: network error")
	// ErrMalformedResponse is a 2xx body without a products array.
	ErrMalformedResponse = errors.New("upsell: malformed response")
	// ErrUpstream is a non-2xx status from the upsell endpoint.
	ErrUpstream = errors.New("upsell: upstream error")
)

const malformedMessage = "Invalid response format: missing products array"

// FetchError is the terminal error of a fetch. Message is what the cart renders.
type FetchError struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func networkError(err error) *FetchError {
	msg := DefaultErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &FetchError{Kind: ErrNetwork, Message: msg, Err: err}
}

// outcome labels a settled state for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "network"
	}
}
