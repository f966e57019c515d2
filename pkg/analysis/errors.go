package analysis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure so callers can branch on retryability without
// inspecting error chains.
type ErrorKind string

const (
	// KindTransient failures (network-level faults, rate limiting, server overload) are
	// safe to retry.
	KindTransient ErrorKind = "transient"

	// KindPermanent failures (non-retryable response codes, malformed payloads) abort
	// the batch immediately.
	KindPermanent ErrorKind = "permanent"
)

// ServiceError is a failure talking to an external intelligence service.
type ServiceError struct {
	Kind   ErrorKind
	Status int // HTTP status when the failure came from a response, 0 otherwise
	Msg    string
	Err    error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s service failure: %s", e.Kind, e.Msg)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewTransientError(msg string, err error) *ServiceError {
	return &ServiceError{Kind: KindTransient, Msg: msg, Err: err}
}

func NewPermanentError(msg string, err error) *ServiceError {
	return &ServiceError{Kind: KindPermanent, Msg: msg, Err: err}
}

// NewUnexpectedResponseError classifies a non-success HTTP status: rate-limit and
// server-overload statuses are transient, everything else is permanent.
func NewUnexpectedResponseError(status int) *ServiceError {
	kind := KindPermanent
	switch status {
	case 429, 502, 503, 504:
		kind = KindTransient
	}
	return &ServiceError{Kind: kind, Status: status, Msg: "unexpected response"}
}

// IsTransient reports whether the error chain contains a transient service failure.
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == KindTransient
}
