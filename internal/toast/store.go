package toast

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Listener receives the state produced by each dispatch.
type Listener func(State)

type subscription struct {
	id uint64
	fn Listener
}

// queued is an action waiting for the draining dispatcher. done, when set,
// is closed once the action's listeners have run.
type queued struct {
	action Action
	done   chan struct{}
}

// Store owns the resident toasts. It is safe for concurrent use: dispatches
// are serialised through a FIFO so listeners observe every state in order,
// the way a single event loop would deliver them.
type Store struct {
	limit  int
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	listeners []subscription
	nextSub   uint64
	queue     []queued
	draining  bool
	// drainer is the goroutine running the drain loop while draining.
	drainer uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger attaches a logger for dispatch tracing.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		limit:  DefaultLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Limit returns the resident toast limit.
func (s *Store) Limit() int {
	return s.limit
}

// Subscribe registers a listener and returns the function that removes it.
// Listeners run in subscription order. Calling the returned function more
// than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	_, unsubscribe = s.subscribe(fn)
	return unsubscribe
}

// subscribe registers fn and returns the state current at registration.
// Every state committed after that snapshot reaches fn.
func (s *Store) subscribe(fn Listener) (State, func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	listeners := make([]subscription, 0, len(s.listeners)+1)
	listeners = append(listeners, s.listeners...)
	s.listeners = append(listeners, subscription{id: id, fn: fn})
	state := s.state
	s.mu.Unlock()

	var once sync.Once
	return state, func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listeners := make([]subscription, 0, len(s.listeners))
	for _, sub := range s.listeners {
		if sub.id != id {
			listeners = append(listeners, sub)
		}
	}
	s.listeners = listeners
}

// Close drops every listener. The state is left as is.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = nil
}

// dispatch applies an action and returns after its listeners have run.
// While another goroutine is draining, the action joins the queue and the
// caller blocks until the drainer has delivered it. A dispatch made from
// inside a listener or callback is queued behind the current action and
// applied before the outermost dispatch returns.
func (s *Store) dispatch(action Action) {
	gid := goroutineID()

	s.mu.Lock()
	if s.draining {
		if s.drainer == gid {
			s.queue = append(s.queue, queued{action: action})
			s.mu.Unlock()
			return
		}
		done := make(chan struct{})
		s.queue = append(s.queue, queued{action: action, done: done})
		s.mu.Unlock()
		<-done
		return
	}
	s.queue = append(s.queue, queued{action: action})
	s.draining = true
	s.drainer = gid

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]

		state, effects := Reduce(s.state, next.action, s.limit)
		s.state = state
		listeners := s.listeners
		s.mu.Unlock()

		s.logger.Debug("toast dispatch",
			zap.String("action", fmt.Sprintf("%T", next.action)),
			zap.Int("resident", state.Len()))

		for _, effect := range effects {
			s.guard("callback", effect)
		}
		for _, sub := range listeners {
			fn := sub.fn
			s.guard("listener", func() { fn(state) })
		}
		if next.done != nil {
			close(next.done)
		}

		s.mu.Lock()
	}

	s.draining = false
	s.drainer = 0
	s.mu.Unlock()
}

// guard runs fn and contains a panic so one faulty callback cannot wedge the
// dispatch loop.
func (s *Store) guard(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("toast "+kind+" panicked", zap.Any("panic", r))
		}
	}()
	fn()
}
