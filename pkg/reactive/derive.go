package reactive

import (
	"sync"
	"weak"
)

// Source is any reactive value, with its element type erased.
// FromCallback accepts sources of mixed types through it.
type Source interface {
	OnChange(fn func()) *Subscription
}

// listenWeak registers fn on src for as long as target is alive. fn must
// not capture target; it receives it as an argument instead. Once target
// has been collected the listener removes itself on its next call.
func listenWeak[S, D any](src ReactiveValue[S], target *D, fn func(target *D, value S)) {
	ref := weak.Make(target)
	var (
		mu  sync.Mutex
		sub *Subscription
	)
	registered := src.OnUpdate(func(value S) {
		d := ref.Value()
		if d == nil {
			mu.Lock()
			s := sub
			mu.Unlock()
			s.Remove()
			currentHooks().OnPrune()
			return
		}
		fn(d, value)
	})
	mu.Lock()
	sub = registered
	mu.Unlock()
}

// changeWeak is listenWeak for type-erased sources.
func changeWeak[D any](src Source, target *D, fn func(target *D)) {
	ref := weak.Make(target)
	var (
		mu  sync.Mutex
		sub *Subscription
	)
	registered := src.OnChange(func() {
		d := ref.Value()
		if d == nil {
			mu.Lock()
			s := sub
			mu.Unlock()
			s.Remove()
			currentHooks().OnPrune()
			return
		}
		fn(d)
	})
	mu.Lock()
	sub = registered
	mu.Unlock()
}

// FromCallback returns a value that always equals compute(). compute runs
// once now and again every time any source changes, whether or not the
// change matters to it; the no-op rule of Set suppresses unchanged results.
func FromCallback[T any](compute func() T, sources ...Source) ReactiveValue[T] {
	result := FromInitialValue(compute())
	for _, src := range sources {
		changeWeak(src, result, func(r *Value[T]) {
			r.Set(compute())
		})
	}
	return result
}

// Map returns a read-only value equal to fn(source.Get()).
func Map[S, R any](source ReactiveValue[S], fn func(S) R) ReactiveValue[R] {
	result := FromInitialValue(fn(source.Get()))
	listenWeak(source, result, func(r *Value[R], value S) {
		r.Set(fn(value))
	})
	return result
}

// MapMutable returns a value equal to fn(source.Get()) that also writes
// inverse(v) back to source when it is set to v from outside.
//
// The value last pushed from source into the result is remembered. A
// result update matching it is an echo of that push and is not sent back,
// which keeps pairs where inverse is not an exact inverse of fn from
// bouncing forever.
func MapMutable[S, R any](source MutableReactiveValue[S], fn func(S) R, inverse func(R) S, opts ...Option[R]) *Value[R] {
	result := FromInitialValue(fn(source.Get()), opts...)
	state := &expectedValue[R]{value: result.Get()}

	listenWeak(source, result, func(r *Value[R], value S) {
		mapped := fn(value)
		state.store(mapped)
		r.Set(mapped)
	})

	equals := result.equals
	result.OnUpdate(func(value R) {
		if equals(value, state.load()) {
			return
		}
		source.Set(inverse(value))
	})
	return result
}

// expectedValue is the last value MapMutable pushed into its result.
type expectedValue[R any] struct {
	mu    sync.Mutex
	value R
}

func (e *expectedValue[R]) store(v R) {
	e.mu.Lock()
	e.value = v
	e.mu.Unlock()
}

func (e *expectedValue[R]) load() R {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}
