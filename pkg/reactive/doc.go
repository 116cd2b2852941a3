// Package reactive provides the observable values that the drawing editor's
// tools and toolbar widgets use to share state.
//
// A Value holds exactly one current value and an ordered list of update
// listeners:
//
//	color := reactive.FromInitialValue("#000000")
//	sub := color.OnUpdate(func(c string) { fmt.Println("color:", c) })
//	color.Set("#ff0000") // prints "color: #ff0000"
//	color.Set("#ff0000") // equal value: nothing happens
//	sub.Remove()
//
// # Derived values
//
// Derived values are built from existing ones and stay in sync with them:
//
//	doubled := reactive.Map(count, func(n int) int { return n * 2 })
//	slider := reactive.MapMutable(thickness, toSlider, fromSlider)
//	penColor := reactive.FromPropertyMutable(pen,
//	    func(p Pen) string { return p.Color },
//	    func(p Pen, c string) Pen { p.Color = c; return p },
//	)
//	label := reactive.FromCallback(func() string { ... }, tool, pen)
//
// A source only holds its derived values through weak pointers. Once a
// derived value is no longer referenced anywhere else it can be collected,
// and the listener it left on its source unregisters itself the next time
// the source changes.
//
// # Equality
//
// Set is a no-op when the new value equals the current one. Equality is
// shallow: comparable values use ==, slices match only when they share a
// backing array and length, maps and channels compare by identity, and
// funcs never match. WithEquals replaces the rule for one value.
//
// # Dispatch
//
// Listeners run synchronously on the goroutine that called Set, in
// registration order, after the new value has been stored. A panicking
// listener is recovered and logged; the rest are still notified.
package reactive
