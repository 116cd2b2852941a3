package reactive

// Field selects one field of a parent value P. With must return a copy of
// the parent with the field replaced and every other field preserved.
type Field[P, F any] struct {
	Get  func(P) F
	With func(P, F) P
}

// FromPropertyMutable returns a child value tracking get(parent.Get()).
//
// Setting the child replaces the parent with with(parent, v) in one atomic
// Update, so concurrent writes to other fields are kept. Setting the
// parent pushes the new field value down to the child, which the child's
// no-op rule ignores when the field did not change.
func FromPropertyMutable[P, F any](parent MutableReactiveValue[P], get func(P) F, with func(P, F) P, opts ...Option[F]) *Value[F] {
	child := FromInitialValue(get(parent.Get()), opts...)

	listenWeak(parent, child, func(c *Value[F], value P) {
		c.Set(get(value))
	})

	child.OnUpdate(func(value F) {
		parent.Update(func(p P) P { return with(p, value) })
	})
	return child
}

// FromField is FromPropertyMutable with a reusable Field.
func FromField[P, F any](parent MutableReactiveValue[P], field Field[P, F], opts ...Option[F]) *Value[F] {
	return FromPropertyMutable(parent, field.Get, field.With, opts...)
}

// FromMapKeyMutable returns a child value tracking parent.Get()[key].
// Writes copy the parent map, so listeners of the parent see a new map.
func FromMapKeyMutable[K comparable, V any](parent MutableReactiveValue[map[K]V], key K, opts ...Option[V]) *Value[V] {
	return FromPropertyMutable(parent,
		func(m map[K]V) V { return m[key] },
		func(m map[K]V, value V) map[K]V {
			next := make(map[K]V, len(m)+1)
			for k, v := range m {
				next[k] = v
			}
			next[key] = value
			return next
		},
		opts...,
	)
}
