package sync

import (
	"errors"
	"fmt"

	"github.com/dl-alexandre/rmirror/internal/provider"
)

// Failure kinds recorded in types.ItemFailure
const (
	FailureTransport   = "transport"
	FailurePayload     = "payload"
	FailureFilesystem  = "filesystem"
	FailureInvalidName = "invalid_name"
	FailureUnknown     = "unknown"
)

var (
	// ErrInvalidName is returned for entry names that would leave the
	// directory they are listed in.
	ErrInvalidName = errors.New("entry name is not a single path segment")
	// ErrMissingReference is returned for entries that carry no listing or
	// content location.
	ErrMissingReference = errors.New("entry has no remote location")
)

// FilesystemError is a local filesystem operation that failed
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

func failureKind(err error) string {
	var fsErr *FilesystemError
	switch {
	case errors.As(err, &fsErr):
		return FailureFilesystem
	case provider.IsTransport(err):
		return FailureTransport
	case provider.IsPayloadShape(err), errors.Is(err, ErrMissingReference):
		return FailurePayload
	case errors.Is(err, ErrInvalidName):
		return FailureInvalidName
	default:
		return FailureUnknown
	}
}
