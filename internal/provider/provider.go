// Package provider lists remote directories and streams remote file
// content. Implementations are stateless: every List call performs exactly
// one logical listing of one directory and nothing is cached.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dl-alexandre/rmirror/internal/types"
)

// ContentProvider is the remote side of a mirror
type ContentProvider interface {
	// List returns the entries of one remote directory in provider order.
	List(ctx context.Context, dirRef string) ([]types.RemoteEntry, error)
	// Fetch opens a stream of one remote file's content. The caller closes it.
	Fetch(ctx context.Context, contentRef string) (io.ReadCloser, error)
}

// TransportError is a failed request: a network failure (StatusCode 0) or
// a non-2xx response.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: transport failure", e.Op, e.URL)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PayloadShapeError is a listing response that is not a JSON array, or is
// not JSON at all.
type PayloadShapeError struct {
	URL string
	Got string
	Err error
}

func (e *PayloadShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("list %s: expected a JSON array, got %s: %v", e.URL, e.Got, e.Err)
	}
	return fmt.Sprintf("list %s: expected a JSON array, got %s", e.URL, e.Got)
}

func (e *PayloadShapeError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is or wraps a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsPayloadShape reports whether err is or wraps a PayloadShapeError
func IsPayloadShape(err error) bool {
	var pe *PayloadShapeError
	return errors.As(err, &pe)
}
