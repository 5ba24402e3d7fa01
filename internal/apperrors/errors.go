package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for batch-level conditions.
var (
	// ErrNoToken is returned when a login response reports success but carries no token.
	ErrNoToken = errors.New("login response carried no token")

	// ErrNothingToSearch is returned when no video in the batch has a computed fingerprint.
	ErrNothingToSearch = errors.New("no fingerprinted videos to search for")

	// ErrNothingToSave is returned when no subtitle file could be saved for any video.
	ErrNothingToSave = errors.New("no subtitle was saved")
)

// BadStatusError represents a non-success status reported by the catalog.
type BadStatusError struct {
	Status string
}

// Error implements the error interface.
func (e *BadStatusError) Error() string {
	return fmt.Sprintf("catalog reported status %q", e.Status)
}

// Is allows for error checking with errors.Is().
func (e *BadStatusError) Is(target error) bool {
	_, ok := target.(*BadStatusError)
	return ok
}

// MalformedError represents a catalog response missing a required field or
// carrying one with the wrong type.
type MalformedError struct {
	What string
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed catalog response: %s", e.What)
}

// Is allows for error checking with errors.Is().
func (e *MalformedError) Is(target error) bool {
	_, ok := target.(*MalformedError)
	return ok
}

// BadPathError is returned when no valid subtitle filename can be derived
// from a video path.
type BadPathError struct {
	Path string
}

// Error implements the error interface.
func (e *BadPathError) Error() string {
	return fmt.Sprintf("cannot derive a subtitle filename from %q", e.Path)
}

// Is allows for error checking with errors.Is().
func (e *BadPathError) Is(target error) bool {
	_, ok := target.(*BadPathError)
	return ok
}

// FileTooSmallError is returned when a video file is smaller than the two
// 64 KiB windows the fingerprint algorithm reads.
type FileTooSmallError struct {
	Path string
	Size int64
}

// Error implements the error interface.
func (e *FileTooSmallError) Error() string {
	return fmt.Sprintf("file %q is too small to fingerprint (%d bytes, need at least 131072)", e.Path, e.Size)
}

// Is allows for error checking with errors.Is().
func (e *FileTooSmallError) Is(target error) bool {
	_, ok := target.(*FileTooSmallError)
	return ok
}

// EncodingError represents a failure in the text-safe transport decoding
// stage of a subtitle payload.
type EncodingError struct {
	Err error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("payload transport decoding failed: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *EncodingError) Unwrap() error { return e.Err }

// Is allows for error checking with errors.Is().
func (e *EncodingError) Is(target error) bool {
	_, ok := target.(*EncodingError)
	return ok
}

// CompressionError represents a corrupt or truncated compressed subtitle stream.
type CompressionError struct {
	Err error
}

// Error implements the error interface.
func (e *CompressionError) Error() string {
	return fmt.Sprintf("payload decompression failed: %v", e.Err)
}

// Unwrap returns the underlying decompression error.
func (e *CompressionError) Unwrap() error { return e.Err }

// Is allows for error checking with errors.Is().
func (e *CompressionError) Is(target error) bool {
	_, ok := target.(*CompressionError)
	return ok
}
