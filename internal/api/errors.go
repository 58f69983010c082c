// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeNetwork: the request never produced an HTTP response.
	ErrTypeNetwork
	// ErrTypeTimeout: the request or the rate limiter wait hit a deadline.
	ErrTypeTimeout
	// ErrTypeUnauthorized: no token was available, or the server answered
	// 401/403.
	ErrTypeUnauthorized
	// ErrTypeRejected: the server refused the request with a 4xx.
	ErrTypeRejected
	// ErrTypeNotFound: the server answered 404.
	ErrTypeNotFound
	// ErrTypeServer: the server answered 5xx.
	ErrTypeServer
	// ErrTypeInvalidResponse: a 2xx body could not be decoded.
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeNetwork:
		return "network"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeRejected:
		return "rejected"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeServer:
		return "server"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ClientError is returned by every Client method.
type ClientError struct {
	Type    ErrorType
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel ClientErrors by type and, when the sentinel has one, by
// message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// Sentinel errors for easy checking.
var (
	ErrNoToken = &ClientError{Type: ErrTypeUnauthorized, Message: "not logged in"}
	ErrTimeout = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// HELPERS
// =============================================================================

func errorType(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsNetwork reports a transport failure.
func IsNetwork(err error) bool { return errorType(err) == ErrTypeNetwork }

// IsTimeout reports a deadline failure.
func IsTimeout(err error) bool { return errorType(err) == ErrTypeTimeout }

// IsUnauthorized reports a missing token or a 401/403.
func IsUnauthorized(err error) bool { return errorType(err) == ErrTypeUnauthorized }

// IsRejected reports a 4xx refusal other than 401/403/404.
func IsRejected(err error) bool { return errorType(err) == ErrTypeRejected }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return errorType(err) == ErrTypeNotFound }

// Message returns the human readable part of err: the server supplied text
// for HTTP failures, or err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
