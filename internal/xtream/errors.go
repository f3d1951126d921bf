package xtream

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable is returned on transport failures and non-2xx responses
	ErrRemoteUnavailable = errors.New("remote server unavailable")

	// ErrMalformedResponse is returned when a response body is not the expected JSON
	ErrMalformedResponse = errors.New("malformed response from remote server")

	// ErrNotFound is returned when the panel has no stream for the requested id
	ErrNotFound = errors.New("stream not found on remote server")
)

// RemoteError describes a failed player_api call. It matches either
// ErrRemoteUnavailable or ErrMalformedResponse with errors.Is.
type RemoteError struct {
	Action     string
	StatusCode int
	Err        error
	kind       error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: server responded with status %d", e.Action, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Action, e.kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Action, e.kind)
	}
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

// IsRemote reports whether err came from talking to the panel
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrMalformedResponse)
}
