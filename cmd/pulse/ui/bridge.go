package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"citypulse/internal/toast"
)

// Bridge forwards store states into a Bubble Tea program. Only the latest
// state is kept; intermediate states the program has not read yet are
// replaced.
type Bridge struct {
	states      chan toast.State
	done        chan struct{}
	unsubscribe func()
}

// NewBridge subscribes to store.
func NewBridge(store *toast.Store) *Bridge {
	b := &Bridge{
		states: make(chan toast.State, 1),
		done:   make(chan struct{}),
	}
	b.unsubscribe = store.Subscribe(b.publish)
	return b
}

// publish runs inside store dispatch, which never runs two listeners at
// once, so the drain-then-send never blocks.
func (b *Bridge) publish(s toast.State) {
	select {
	case <-b.states:
	default:
	}
	b.states <- s
}

// Wait returns a command that delivers the next state as a ToastsMsg.
// Reissue it after every ToastsMsg.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.states:
			return ToastsMsg(s)
		case <-b.done:
			return nil
		}
	}
}

// Close unsubscribes and releases a pending Wait.
func (b *Bridge) Close() {
	b.unsubscribe()
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}
