// Package storage abstracts the object stores a distribution point can
// live on.
//
// This package supports the following backends:
//   - S3 (AWS)
//   - local file system
package storage

import (
	"context"
	"io"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrNotFound object does not exist in the store
	ErrNotFound errString = "not found"

	// ErrForbidden access denied by the backend
	ErrForbidden errString = "forbidden"

	// ErrNotSupported operation not available on this backend
	ErrNotSupported errString = "not supported"
)

// Store implementations know how to read and write objects in a K/V store.
//
// Typically this is something file system-like: S3, local FS, NFS, ...
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
}

// PipeIO copies the reader to the writer with a fixed size buffer
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	buf := make([]byte, 32*1024)
	return io.CopyBuffer(writer, reader, buf)
}
