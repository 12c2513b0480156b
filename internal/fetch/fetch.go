// Package fetch implements the coordination contract every
// catalog-backed view follows: a three-state result model, a
// generation guard that discards superseded responses, and teardown
// that turns late completions into no-ops.
package fetch

import (
	"context"
	"sync"

	"storefront/internal/util"
)

// State is the phase of a fetch-backed result.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

// Result is exactly one of loading, error, or ready. The zero value is
// loading. A result only moves loading→error or loading→ready; getting
// back to loading takes an explicit new fetch.
type Result[T any] struct {
	state State
	data  T
	err   error
}

// Ready builds a ready result carrying data.
func Ready[T any](data T) Result[T] {
	return Result[T]{state: StateReady, data: data}
}

// Failed builds an error result.
func Failed[T any](err error) Result[T] {
	return Result[T]{state: StateError, err: err}
}

func (r Result[T]) State() State { return r.state }

// Data returns the fetched value; only meaningful when State is ready.
func (r Result[T]) Data() T { return r.data }

// Err returns the failure reason; only meaningful when State is error.
func (r Result[T]) Err() error { return r.err }

// Fetcher runs one view's asynchronous fetches. Each Load supersedes
// any fetch still in flight: when a response arrives it is installed
// only if its generation is still the current one, so a stale response
// can never overwrite state belonging to a newer key. Close makes every
// outstanding completion a guarded no-op.
type Fetcher[T any] struct {
	mu       sync.Mutex
	gen      uint64
	key      string
	result   Result[T]
	closed   bool
	onChange func(Result[T])
}

// NewFetcher creates a fetcher in the loading state
func NewFetcher[T any]() *Fetcher[T] {
	return &Fetcher[T]{}
}

// OnChange registers a hook invoked after each installed transition.
// Discarded stale results do not fire it.
func (f *Fetcher[T]) OnChange(fn func(Result[T])) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Load starts a fetch for key. The view flips to loading immediately;
// fn runs on its own goroutine and its result is installed only if no
// newer Load has started and the fetcher is still open.
func (f *Fetcher[T]) Load(ctx context.Context, key string, fn func(context.Context) (T, error)) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.gen++
	gen := f.gen
	f.key = key
	f.result = Result[T]{}
	f.mu.Unlock()

	go func() {
		data, err := fn(ctx)

		f.mu.Lock()
		if f.closed || gen != f.gen {
			f.mu.Unlock()
			util.StaleFetchesDiscarded.Inc()
			return
		}
		if err != nil {
			f.result = Failed[T](err)
		} else {
			f.result = Ready(data)
		}
		installed := f.result
		hook := f.onChange
		f.mu.Unlock()

		if hook != nil {
			hook(installed)
		}
	}()
}

// Snapshot returns the current result.
func (f *Fetcher[T]) Snapshot() Result[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Key returns the key of the most recent Load.
func (f *Fetcher[T]) Key() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

// Close tears the fetcher down. In-flight fetches keep running but
// their completions are discarded; further Loads are ignored.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
