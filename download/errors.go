package download

import (
	"fmt"
	"strings"
)

// WriteError means a downloaded file could not be stored locally.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IntegrityError means the downloaded content does not match the digest or
// size the server advertised for it.
type IntegrityError struct {
	Title string
	What  string // "sha1" or "size".
	Want  string
	Have  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s mismatch for %s: have=%s want=%s", e.What, e.Title, e.Have, e.Want)
}

// CollisionError means two distinct titles map to the same local path.
type CollisionError struct {
	Title string
	Other string // The earlier title that claimed the path.
	Path  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("local path %s collides with %s", e.Path, e.Other)
}

// Failure records why one title could not be downloaded.
type Failure struct {
	Title string
	Err   error
}

// PartialFailure is returned by Driver.Run when at least one title failed.
// If Cause is set, the run was cut short by a condition affecting every
// title, and the titles after the last failure were not attempted.
type PartialFailure struct {
	Failures []Failure
	Cause    error
}

func (e *PartialFailure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d file(s) failed", len(e.Failures))
	if e.Cause != nil {
		fmt.Fprintf(&sb, "; run aborted: %v", e.Cause)
	}
	return sb.String()
}

func (e *PartialFailure) Unwrap() error {
	return e.Cause
}
