package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog and storage errors
	ErrMovieNotFound    = fmt.Errorf("movie not found")
	ErrInvalidMovie     = fmt.Errorf("invalid movie record")
	ErrSyncInProgress   = fmt.Errorf("sync already in progress")
	ErrNoConnectivity   = fmt.Errorf("no network connectivity")
	ErrCacheUnavailable = fmt.Errorf("response cache unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// Failure is the error value every layer above the store hands to callers.
//
// Code carries the HTTP status when the failure came from a response, and is zero otherwise.
type Failure struct {
	Message string
	Code    int
	Cause   error
}

// NewFailure builds a [Failure] without a status code.
func NewFailure(message string, cause error) *Failure {
	return &Failure{Message: message, Cause: cause}
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// HasCode reports whether the failure carries an HTTP status.
func (f *Failure) HasCode() bool {
	return f.Code != 0
}

// StorageFailure wraps a store fault in the failure taxonomy.
func StorageFailure(err error) *Failure {
	return &Failure{Message: "Storage Error – " + describe(err), Cause: err}
}

// UnexpectedFailure wraps any fault that fits no other category.
func UnexpectedFailure(err error) *Failure {
	return &Failure{Message: "Unexpected Error – " + describe(err), Cause: err}
}

// AsFailure returns err as a [Failure], wrapping it as unexpected when it is not one already.
// A nil error yields nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return UnexpectedFailure(err)
}

func describe(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred."
	}
	return err.Error()
}
