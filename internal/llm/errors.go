package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies a model transport failure
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindAuth    ErrorKind = "auth"
	KindRate    ErrorKind = "rate"
	KindServer  ErrorKind = "server"
	KindRequest ErrorKind = "request" // 4xx other than auth/rate
	KindEmpty   ErrorKind = "empty"   // Backend answered without any content
)

// TransportError is a failure to obtain a response from a model backend.
// It is fatal for the stage that made the call.
type TransportError struct {
	Provider string
	Kind     ErrorKind
	Status   int // HTTP status when known
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s error (HTTP %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err wraps a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsTransport extracts the TransportError from err, if any
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// newTransportError classifies err by status code and error chain
func newTransportError(provider string, status int, err error) *TransportError {
	if te, ok := AsTransport(err); ok {
		return te
	}
	kind := KindNetwork
	switch {
	case status != 0:
		kind = kindForStatus(status)
	case isTimeout(err):
		kind = KindTimeout
	}
	return &TransportError{Provider: provider, Kind: kind, Status: status, Err: err}
}

func emptyResponse(provider string) *TransportError {
	return &TransportError{Provider: provider, Kind: KindEmpty, Err: errors.New("no content in response")}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRate
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindServer
	default:
		return KindRequest
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
