// Package paging turns a backend's chunked result stream into fixed-size
// pages with a one-element lookahead, so callers can tell whether more
// matching records remain without fetching a second page.
package paging

import "context"

// Entry is one element of a chunk: either a decoded value or the decode
// error for the stored row it came from.
type Entry[T any] struct {
	Value T
	Err   error
}

// Source yields chunks of entries in backend order. ok=false means the
// source is exhausted. Iteration is pull-based and strictly sequential; the
// backend must already return elements in the required order.
type Source[T any] interface {
	Next(ctx context.Context) (chunk []Entry[T], ok bool, err error)
}

// ValidationError marks a malformed stored record encountered mid-iteration.
// A single bad record invalidates the whole page fetch.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid stored record: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// CollectPage flattens src, drops values rejected by keep (nil keeps all),
// and pulls until pageSize matching values plus one lookahead have been seen
// or the source is exhausted. The lookahead value, when present, is the
// first matching record beyond the returned page and is what a next cursor
// should point at. Any entry carrying a decode error aborts the fetch with a
// ValidationError.
func CollectPage[T any](ctx context.Context, src Source[T], keep func(T) bool, pageSize int) (items []T, lookahead *T, err error) {
	for {
		chunk, ok, err := src.Next(ctx)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return items, nil, nil
		}
		for _, e := range chunk {
			if e.Err != nil {
				return nil, nil, &ValidationError{Err: e.Err}
			}
			if keep != nil && !keep(e.Value) {
				continue
			}
			if len(items) == pageSize {
				v := e.Value
				return items, &v, nil
			}
			items = append(items, e.Value)
		}
	}
}

// CollectAll drains src, failing on the first decode error.
func CollectAll[T any](ctx context.Context, src Source[T]) ([]T, error) {
	var out []T
	for {
		chunk, ok, err := src.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		for _, e := range chunk {
			if e.Err != nil {
				return nil, &ValidationError{Err: e.Err}
			}
			out = append(out, e.Value)
		}
	}
}

type sliceSource[T any] struct {
	chunks [][]Entry[T]
}

func (s *sliceSource[T]) Next(ctx context.Context) ([]Entry[T], bool, error) {
	if len(s.chunks) == 0 {
		return nil, false, nil
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, true, nil
}

// FromChunks replays fixed chunks. Used by stores that materialize a batch
// in one round trip and by tests.
func FromChunks[T any](chunks ...[]Entry[T]) Source[T] {
	return &sliceSource[T]{chunks: chunks}
}

// Values wraps plain values into error-free entries.
func Values[T any](vs ...T) []Entry[T] {
	out := make([]Entry[T], 0, len(vs))
	for _, v := range vs {
		out = append(out, Entry[T]{Value: v})
	}
	return out
}
