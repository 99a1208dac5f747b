// result.go: Uniform success-or-failure outcome type for exposed operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package umbra

// Result is the uniform outcome of every exposed operation: either a value
// of type T or a classified error from the package taxonomy, never both.
//
// Callers that prefer conventional Go error handling can collapse a Result
// with Unwrap:
//
//	key, err := km.RetrieveKey("k1").Unwrap()
//	if err != nil {
//		return err
//	}
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail returns a failed Result carrying err. The value slot stays at the
// zero value of T and is never exposed alongside the error.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the carried value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the classified error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap converts the Result into the conventional (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Void is the value type for operations that succeed without producing one.
type Void struct{}
