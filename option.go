package fluffer

import "context"

// Optional holds a value or nothing. The zero value is None.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr is Some(*p), or None for a nil pointer.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the value, or def when there is none.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

// Render implements Response. An empty Optional is 40 "None.".
func (o Optional[T]) Render(ctx context.Context) []byte {
	if !o.ok {
		return header(StatusTemporaryFailure, "None.")
	}
	return Encode(ctx, o.value)
}

// Result holds a value or the error that prevented it.
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Try wraps the usual (value, error) pair.
func Try[T any](v T, err error) Result[T] {
	return Result[T]{value: v, err: err}
}

func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Render implements Response by encoding the error when there is one and
// the value otherwise.
func (r Result[T]) Render(ctx context.Context) []byte {
	if r.err != nil {
		return Encode(ctx, r.err)
	}
	return Encode(ctx, r.value)
}
