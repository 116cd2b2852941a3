package reactive

import (
	"log/slog"
	"sync/atomic"
)

// Hooks observes reactive value activity. Implementations must be cheap
// and must not call back into the value that triggered them.
type Hooks interface {
	// OnSet is called for every Set or Update. changed is false when the
	// write was suppressed because the value did not change.
	OnSet(changed bool)

	// OnNotify is called after a dispatch with the number of listeners run.
	OnNotify(listeners int)

	// OnListenerPanic is called with the recovered value of a listener panic.
	OnListenerPanic(recovered any)

	// OnPrune is called when a derived value's listener finds its target
	// collected and unregisters itself.
	OnPrune()
}

type noopHooks struct{}

func (noopHooks) OnSet(bool)          {}
func (noopHooks) OnNotify(int)        {}
func (noopHooks) OnListenerPanic(any) {}
func (noopHooks) OnPrune()            {}

type hooksHolder struct{ h Hooks }

var (
	hooks  atomic.Pointer[hooksHolder]
	logger atomic.Pointer[slog.Logger]
)

// SetHooks installs h for all values. Passing nil restores the no-op hooks.
func SetHooks(h Hooks) {
	if h == nil {
		hooks.Store(nil)
		return
	}
	hooks.Store(&hooksHolder{h: h})
}

func currentHooks() Hooks {
	if holder := hooks.Load(); holder != nil {
		return holder.h
	}
	return noopHooks{}
}

// SetLogger sets the logger used to report recovered listener panics.
// Passing nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func currentLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "reactive")
}
