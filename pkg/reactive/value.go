package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/inkpad/internal/errors"
)

// ReactiveValue is a read-only view of an observable value.
type ReactiveValue[T any] interface {
	// Get returns the current value. Callers must treat it as immutable and
	// copy before mutating slices or maps it contains.
	Get() T

	// OnUpdate registers fn to be called with the new value after every
	// future change.
	OnUpdate(fn func(T)) *Subscription

	// OnUpdateAndNow calls fn once with the current value, then registers
	// it as OnUpdate does. Writes fn makes during that first call are not
	// delivered back to it.
	OnUpdateAndNow(fn func(T)) *Subscription

	// OnChange registers fn to be called after every future change without
	// the value. It lets type-erased sources drive FromCallback.
	OnChange(fn func()) *Subscription
}

// MutableReactiveValue is a ReactiveValue that can be written.
type MutableReactiveValue[T any] interface {
	ReactiveValue[T]

	// Set stores value and notifies listeners, unless value equals the
	// current value, in which case nothing happens.
	Set(value T)

	// Update replaces the value with fn(current) as one atomic step and
	// notifies like Set.
	Update(fn func(T) T)
}

// Subscription is the handle returned when registering a listener.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Remove unregisters the listener that created this subscription.
// Calling Remove more than once, or on a nil subscription, does nothing.
func (s *Subscription) Remove() {
	if s == nil || s.remove == nil {
		return
	}
	s.once.Do(s.remove)
}

// Join returns a subscription that removes all of subs.
func Join(subs ...*Subscription) *Subscription {
	return &Subscription{remove: func() {
		for _, s := range subs {
			s.Remove()
		}
	}}
}

// noopSubscription is handed out by values that never change.
func noopSubscription() *Subscription {
	return &Subscription{}
}

// listenerEntry is a single registration. Identity is the entry pointer:
// registering the same func twice yields two entries.
type listenerEntry[T any] struct {
	fn      func(T)
	removed atomic.Bool
}

// Option configures a Value at construction.
type Option[T any] func(*Value[T])

// WithEquals replaces the shallow equality used by Set.
func WithEquals[T any](fn func(a, b T) bool) Option[T] {
	return func(v *Value[T]) {
		v.equal = fn
	}
}

// Value is a mutable observable value.
//
// Get, Set and Update may be called from any goroutine. Listeners run on
// the goroutine that made the write, so the dispatches of two concurrent
// writes can reach a listener in either order. Writers that need ordered
// propagation through derived values must be serialized by the caller.
type Value[T any] struct {
	// mu protects value.
	mu    sync.RWMutex
	value T

	// equal decides whether Set is a no-op. nil means defaultEquals.
	equal func(a, b T) bool

	// listenersMu protects listeners. Never held while a listener runs.
	listenersMu sync.Mutex
	listeners   []*listenerEntry[T]
}

// FromInitialValue creates a standalone mutable value seeded with initial.
func FromInitialValue[T any](initial T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{value: initial}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores value and notifies every listener registered at this moment,
// in registration order. Setting a value equal to the current one is a
// no-op.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	if v.equals(v.value, value) {
		v.mu.Unlock()
		currentHooks().OnSet(false)
		return
	}
	v.value = value
	v.mu.Unlock()

	currentHooks().OnSet(true)
	v.notify(value)
}

// Update atomically reads the value, applies fn and sets the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	next := fn(v.value)
	if v.equals(v.value, next) {
		v.mu.Unlock()
		currentHooks().OnSet(false)
		return
	}
	v.value = next
	v.mu.Unlock()

	currentHooks().OnSet(true)
	v.notify(next)
}

// OnUpdate registers fn to be called after every future change.
func (v *Value[T]) OnUpdate(fn func(T)) *Subscription {
	entry := &listenerEntry[T]{fn: fn}

	v.listenersMu.Lock()
	v.listeners = append(v.listeners, entry)
	v.listenersMu.Unlock()

	return &Subscription{remove: func() { v.removeListener(entry) }}
}

// OnUpdateAndNow calls fn with the current value and subscribes it.
//
// fn is registered only after the first call returns, so a listener that
// clamps the value by calling Set during that call is not re-entered.
// A write from another goroutine that lands while fn runs is not
// delivered to it.
func (v *Value[T]) OnUpdateAndNow(fn func(T)) *Subscription {
	fn(v.Get())
	return v.OnUpdate(fn)
}

// OnChange registers fn to be called after every future change.
func (v *Value[T]) OnChange(fn func()) *Subscription {
	return v.OnUpdate(func(T) { fn() })
}

// removeListener drops entry while keeping the order of the others.
func (v *Value[T]) removeListener(entry *listenerEntry[T]) {
	// Mark first so a dispatch already holding a snapshot skips it.
	entry.removed.Store(true)

	v.listenersMu.Lock()
	defer v.listenersMu.Unlock()

	for i, existing := range v.listeners {
		if existing == entry {
			copy(v.listeners[i:], v.listeners[i+1:])
			v.listeners[len(v.listeners)-1] = nil
			v.listeners = v.listeners[:len(v.listeners)-1]
			return
		}
	}
}

// listenerCount returns the number of registered listeners.
func (v *Value[T]) listenerCount() int {
	v.listenersMu.Lock()
	defer v.listenersMu.Unlock()
	return len(v.listeners)
}

// notify calls a snapshot of the listeners with value.
// Uses copy-before-notify so listeners may add or remove subscriptions.
func (v *Value[T]) notify(value T) {
	v.listenersMu.Lock()
	snapshot := make([]*listenerEntry[T], len(v.listeners))
	copy(snapshot, v.listeners)
	v.listenersMu.Unlock()

	called := 0
	for _, entry := range snapshot {
		if entry.removed.Load() {
			continue
		}
		called++
		callListener(entry.fn, value)
	}
	currentHooks().OnNotify(called)
}

// callListener runs fn and recovers a panic so the remaining listeners
// are still notified.
func callListener[T any](fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			currentHooks().OnListenerPanic(r)
			err := errors.New("E001").Wrap(fmt.Errorf("%v", r))
			currentLogger().Error("update listener panicked", "error", err)
		}
	}()
	fn(value)
}

// equals checks two values using the configured equality function.
func (v *Value[T]) equals(a, b T) bool {
	if v.equal != nil {
		return v.equal(a, b)
	}
	return defaultEquals(a, b)
}
