package wiki

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that the server answered, but the requested category,
// page, or file does not exist. It is never worth retrying.
var ErrNotFound = errors.New("wiki: not found")

// RemoteError is a transport-level failure: the connection broke, the request
// timed out, or the server replied with a non-success status. Retry harnesses
// recognize it through its Temporary method.
type RemoteError struct {
	Op         string // Short description of the failed request.
	StatusCode int    // HTTP status, or 0 if no response was received.
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Temporary reports that the failure may go away on its own.
func (e *RemoteError) Temporary() bool {
	return true
}

// APIError is an error object returned in the body of a query response.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

func notFound(what, title string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, title)
}
