package common

import (
	"context"
	"errors"
)

// FetchResult is the tagged outcome of a remote fetch: either
// Success(payload) or Failure(err). The zero value is a Failure.
type FetchResult[T any] struct {
	value T
	err   error
	ok    bool
}

var errUnknownFailure = errors.New("fetch failed")

func Success[T any](value T) FetchResult[T] {
	return FetchResult[T]{value: value, ok: true}
}

func Failure[T any](err error) FetchResult[T] {
	if err == nil {
		err = errUnknownFailure
	}
	return FetchResult[T]{err: err}
}

// ResultOf converts a (value, error) pair into a FetchResult.
func ResultOf[T any](value T, err error) FetchResult[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

func (r FetchResult[T]) Ok() bool { return r.ok }

func (r FetchResult[T]) Value() T { return r.value }

// Err returns the failure cause, or nil for a Success.
func (r FetchResult[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return errUnknownFailure
	}
	return r.err
}

func (r FetchResult[T]) Unwrap() (T, error) {
	return r.value, r.Err()
}

// FetchFunc performs the remote call for one key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) FetchResult[V]
