package toast

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Lifecycle runs the timers of every resident toast: an open toast closes
// after its duration, and a closed toast is removed after the exit delay.
// Loading toasts do not auto-close until they change type.
type Lifecycle struct {
	store       *Store
	clock       clock.Clock
	removeDelay time.Duration
	logger      *zap.Logger

	mu              sync.Mutex
	defaultDuration time.Duration
	timers          map[ID]*toastTimers
	unsubscribe     func()
	running         bool
}

type toastTimers struct {
	instance  uint64
	revision  uint64
	autoClose *clock.Timer
	removal   *clock.Timer
}

func (tt *toastTimers) stop() {
	if tt.autoClose != nil {
		tt.autoClose.Stop()
		tt.autoClose = nil
	}
	if tt.removal != nil {
		tt.removal.Stop()
		tt.removal = nil
	}
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithClock replaces the wall clock, typically with clock.NewMock().
func WithClock(c clock.Clock) LifecycleOption {
	return func(l *Lifecycle) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithDefaultDuration overrides DefaultDuration.
func WithDefaultDuration(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d > 0 {
			l.defaultDuration = d
		}
	}
}

// WithRemoveDelay overrides DefaultRemoveDelay.
func WithRemoveDelay(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d >= 0 {
			l.removeDelay = d
		}
	}
}

// WithLifecycleLogger attaches a logger.
func WithLifecycleLogger(logger *zap.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLifecycle creates a stopped Lifecycle for store.
func NewLifecycle(store *Store, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:           store,
		clock:           clock.New(),
		removeDelay:     DefaultRemoveDelay,
		defaultDuration: DefaultDuration,
		logger:          zap.NewNop(),
		timers:          make(map[ID]*toastTimers),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start subscribes to the store and arms timers for toasts already resident.
// Listener calls wait on l.mu until the starting snapshot is applied, and
// they only ever carry states committed after it.
func (l *Lifecycle) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true

	state, unsubscribe := l.store.subscribe(l.observe)
	l.unsubscribe = unsubscribe
	l.apply(state)
}

// Stop unsubscribes and cancels every pending timer.
func (l *Lifecycle) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	for id, tt := range l.timers {
		tt.stop()
		delete(l.timers, id)
	}
	l.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetDefaultDuration changes the duration used by toasts without one. It
// applies to timers armed from now on.
func (l *Lifecycle) SetDefaultDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	l.defaultDuration = d
	l.mu.Unlock()
}

// Pending returns the number of toasts with a live timer, for tests and
// diagnostics.
func (l *Lifecycle) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, tt := range l.timers {
		if tt.autoClose != nil || tt.removal != nil {
			n++
		}
	}
	return n
}

func (l *Lifecycle) observe(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.apply(state)
}

// apply reconciles timers with state. Caller holds l.mu.
func (l *Lifecycle) apply(state State) {

	resident := make(map[ID]struct{}, len(state.Toasts))
	for _, t := range state.Toasts {
		resident[t.ID] = struct{}{}

		tt, ok := l.timers[t.ID]
		if ok && tt.instance != t.instance {
			tt.stop()
			ok = false
		}
		if !ok {
			tt = &toastTimers{instance: t.instance, revision: t.revision}
			l.timers[t.ID] = tt
			if t.Open {
				l.armAutoClose(tt, t)
			}
		}

		if t.Open {
			if tt.revision != t.revision {
				tt.revision = t.revision
				l.armAutoClose(tt, t)
			}
			continue
		}

		if tt.autoClose != nil {
			tt.autoClose.Stop()
			tt.autoClose = nil
		}
		if tt.removal == nil {
			id, instance := t.ID, t.instance
			tt.removal = l.clock.AfterFunc(l.removeDelay, func() {
				l.fire(RemoveToast{ID: id, instance: instance})
			})
		}
	}

	for id, tt := range l.timers {
		if _, ok := resident[id]; !ok {
			tt.stop()
			delete(l.timers, id)
		}
	}
}

// armAutoClose (re)starts the auto-close timer. Caller holds l.mu.
func (l *Lifecycle) armAutoClose(tt *toastTimers, t Toast) {
	if tt.autoClose != nil {
		tt.autoClose.Stop()
		tt.autoClose = nil
	}
	if t.Type == TypeLoading {
		return
	}
	d := t.Duration
	if d <= 0 {
		d = l.defaultDuration
	}
	id, instance := t.ID, t.instance
	tt.autoClose = l.clock.AfterFunc(d, func() {
		l.fire(closeToast{id: id, instance: instance})
	})
}

// fire dispatches a timer's action unless the lifecycle was stopped. The
// store is dispatched to without holding l.mu since observe runs inside.
func (l *Lifecycle) fire(action Action) {
	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if !running {
		return
	}
	l.logger.Debug("toast timer fired")
	l.store.dispatch(action)
}
