package globalsecret

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/systmms/globalsecrets/pkg/provider"
)

// State is the lifecycle position of a Bundle.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// BuildFunc constructs the bundle value from decoded values. It should
// return values.Err() alongside the value so coercion failures surface.
type BuildFunc[T any] func(values *Values) (T, error)

type options struct {
	fetcher provider.Fetcher
	ctx     context.Context
}

// Option configures a Bundle.
type Option func(*options)

// WithFetcher makes the bundle fetch through f instead of the default fetcher.
func WithFetcher(f provider.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithContext sets the context the one-time fetch runs under. The fetcher's
// own timeout still applies.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Bundle is a lazily loaded, process-wide secret bundle of type T.
type Bundle[T any] struct {
	desc  Descriptor
	build BuildFunc[T]
	opts  options

	once  sync.Once
	state atomic.Int32
	value T
	err   error
}

// New declares a bundle. Nothing is fetched until the first Get.
func New[T any](desc Descriptor, build func(values *Values) (T, error), opts ...Option) *Bundle[T] {
	b := &Bundle[T]{
		desc:  desc,
		build: build,
		opts:  options{ctx: context.Background()},
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Descriptor returns the shape the bundle was declared with.
func (b *Bundle[T]) Descriptor() Descriptor {
	return b.desc
}

// State reports where the bundle is in its lifecycle.
func (b *Bundle[T]) State() State {
	return State(b.state.Load())
}

// Get returns the bundle value, loading it on the first call. After a failed
// load every call returns the same *InitializationError.
func (b *Bundle[T]) Get() (T, error) {
	b.once.Do(b.initialize)
	if b.err != nil {
		var zero T
		return zero, b.err
	}
	return b.value, nil
}

// MustGet is like Get but panics if the bundle cannot be loaded.
func (b *Bundle[T]) MustGet() T {
	v, err := b.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (b *Bundle[T]) initialize() {
	name := b.desc.LookupName()
	b.state.Store(int32(StateInitializing))

	defer func() {
		if r := recover(); r != nil {
			b.fail(name, fmt.Errorf("panic while loading: %v", r))
		}
	}()

	value, err := b.load(name)
	if err != nil {
		b.fail(name, err)
		return
	}
	b.value = value
	b.state.Store(int32(StateReady))
}

func (b *Bundle[T]) fail(name string, err error) {
	b.err = &InitializationError{Secret: name, Err: err}
	b.state.Store(int32(StateFailed))
	logger().Debug("secret bundle %s failed: %v", name, err)
}

func (b *Bundle[T]) load(name string) (T, error) {
	var zero T
	ctx := b.opts.ctx

	fetcher := b.opts.fetcher
	if fetcher == nil {
		var err error
		fetcher, err = DefaultFetcher(ctx)
		if err != nil {
			return zero, &FetchError{Secret: name, Err: err}
		}
	}

	logger().Debug("fetching secret bundle %s from %s", name, fetcher.Name())
	start := time.Now()
	blob, err := fetcher.Fetch(ctx, name)
	observeFetch(name, time.Since(start), err)
	if err != nil {
		return zero, &FetchError{Secret: name, Store: fetcher.Name(), Err: err}
	}

	values, err := Decode(name, blob.Value, b.desc)
	if err != nil {
		observeDecodeFailure(name)
		return zero, err
	}

	value, err := b.build(values)
	if err != nil {
		observeDecodeFailure(name)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			err = &DecodeError{Secret: name, Reason: err.Error(), Err: err}
		}
		return zero, err
	}

	logger().Debug("secret bundle %s ready (%d keys, version %s)", name, values.Len(), blob.Version)
	return value, nil
}
