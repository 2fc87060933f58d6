package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the dispatcher. None of them are retried.
var (
	// ErrUnknownOperation reports a registry miss.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrBinding reports a malformed parameter template or a missing argument.
	ErrBinding = errors.New("parameter binding failed")

	// ErrNoSession reports that no credential is held and none could be restored.
	ErrNoSession = errors.New("no session found, run \"vcoctl login\" first")

	// ErrAuthentication reports a login or logout failure.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteAPI reports a JSON-RPC error envelope returned by the server.
	ErrRemoteAPI = errors.New("remote api error")

	// ErrTransport reports a network failure or an undecodable response.
	ErrTransport = errors.New("transport failure")
)

// RemoteAPIError carries the server supplied error message verbatim.
type RemoteAPIError struct {
	Method  string
	Code    int
	Message string
}

// Error returns the server message.
func (remoteError *RemoteAPIError) Error() string {
	if remoteError.Method == "" {
		return remoteError.Message
	}
	return fmt.Sprintf("%s: %s", remoteError.Method, remoteError.Message)
}

// Unwrap exposes ErrRemoteAPI to errors.Is.
func (remoteError *RemoteAPIError) Unwrap() error {
	return ErrRemoteAPI
}

// AuthError describes a rejected login or logout.
type AuthError struct {
	StatusCode int
	Reason     string
	Body       string
}

// Error returns a human readable description including the response body when present.
func (authError *AuthError) Error() string {
	message := authError.Reason
	if authError.StatusCode != 0 {
		message = fmt.Sprintf("%s (status %d)", message, authError.StatusCode)
	}
	if authError.Body != "" {
		message = fmt.Sprintf("%s: %s", message, authError.Body)
	}
	return message
}

// Unwrap exposes ErrAuthentication to errors.Is.
func (authError *AuthError) Unwrap() error {
	return ErrAuthentication
}
