package reasonchain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/nexxia-ai/reasonchain/ai"
)

type ErrorKind int

const (
	// KindResponse covers non-success statuses and bodies missing the expected fields.
	KindResponse ErrorKind = iota
	// KindTransport covers network, DNS and timeout failures.
	KindTransport
	// KindEmptyContent is a successful call that produced no usable text.
	KindEmptyContent
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEmptyContent:
		return "empty_content"
	default:
		return "response"
	}
}

var (
	ErrMissingProvider = errors.New("pipeline requires both a reasoning and an answer provider")
	ErrEmptyContent    = errors.New("no usable content")
)

// ProviderError is the single failure type returned by provider adapters.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int    // set for non-success responses
	Message    string // raw diagnostic text from the provider or transport
	Err        error
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("Failed to connect to %s API: %s", e.Provider, e.Message)
	case KindEmptyContent:
		return fmt.Sprintf("No content received from %s API", e.Provider)
	default:
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a provider failure caused by connectivity.
func IsTransport(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind == KindTransport
	}
	return isConnectivityError(err)
}

// isConnectivityError matches network failures whether or not a driver wrapped them.
func isConnectivityError(err error) bool {
	if errors.Is(err, ai.ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// newProviderError classifies a model failure.
func newProviderError(provider string, err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	pe := &ProviderError{Provider: provider, Kind: KindResponse, Message: err.Error(), Err: err}

	var statusErr ai.StatusError
	switch {
	case errors.As(err, &statusErr):
		pe.StatusCode = statusErr.StatusCode
		pe.Message = statusErr.ErrorMessage
	case errors.Is(err, ai.ErrEmptyResponse):
		pe.Kind = KindEmptyContent
	case isConnectivityError(err):
		pe.Kind = KindTransport
	}
	return pe
}

func emptyContentError(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindEmptyContent, Err: ErrEmptyContent}
}
