package reactive

// immutableValue is fixed at construction and never notifies.
type immutableValue[T any] struct {
	value T
}

// FromImmutable returns a value that can never change. OnUpdate returns a
// subscription that never fires; OnUpdateAndNow still calls fn once.
func FromImmutable[T any](value T) ReactiveValue[T] {
	return &immutableValue[T]{value: value}
}

func (v *immutableValue[T]) Get() T {
	return v.value
}

func (v *immutableValue[T]) OnUpdate(func(T)) *Subscription {
	return noopSubscription()
}

func (v *immutableValue[T]) OnUpdateAndNow(fn func(T)) *Subscription {
	fn(v.value)
	return noopSubscription()
}

func (v *immutableValue[T]) OnChange(func()) *Subscription {
	return noopSubscription()
}
