package models

import "github.com/desertthunder/moviex/internal/shared"

// Status is the state of a [Result].
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is exactly one of success with data, error with a failure, or loading.
type Result[T any] struct {
	status  Status
	data    T
	failure *shared.Failure
}

// Succeeded wraps data in a successful result.
func Succeeded[T any](data T) Result[T] {
	return Result[T]{status: StatusSuccess, data: data}
}

// Failed wraps f in an error result. A nil failure is replaced with an unexpected one.
func Failed[T any](f *shared.Failure) Result[T] {
	if f == nil {
		f = shared.UnexpectedFailure(nil)
	}
	return Result[T]{status: StatusError, failure: f}
}

// InProgress returns a loading result.
func InProgress[T any]() Result[T] {
	return Result[T]{status: StatusLoading}
}

func (r Result[T]) Status() Status { return r.status }
func (r Result[T]) IsSuccess() bool { return r.status == StatusSuccess }
func (r Result[T]) IsError() bool { return r.status == StatusError }
func (r Result[T]) IsLoading() bool { return r.status == StatusLoading }

// Data returns the payload and whether the result is a success.
func (r Result[T]) Data() (T, bool) {
	return r.data, r.status == StatusSuccess
}

// Failure returns the failure of an error result, nil otherwise.
func (r Result[T]) Failure() *shared.Failure {
	return r.failure
}

// Err returns the failure as an error, or nil for non-error results.
func (r Result[T]) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure
}
