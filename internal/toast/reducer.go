package toast

// Action is a store mutation. The set of actions is closed to this package.
type Action interface {
	isAction()
}

// AddToast prepends a toast, evicting the oldest beyond the limit. A toast
// whose ID is already resident is updated in place instead.
type AddToast struct {
	Toast Toast
}

// UpdateToast merges a patch into the resident toast with the patch's ID.
type UpdateToast struct {
	Patch Patch
}

// UpsertToast updates the toast when its ID is resident, otherwise adds it.
type UpsertToast struct {
	Toast Toast
}

// DismissToast closes one toast and runs its OnDismiss callback. An empty ID
// clears the store without an exit delay and runs OnDismiss for every
// resident toast that has not had it yet, including toasts that already
// auto-closed.
type DismissToast struct {
	ID ID
}

// RemoveToast deletes one toast, or every toast when ID is empty.
type RemoveToast struct {
	ID ID

	// instance restricts removal to one incarnation of ID. Zero matches any.
	instance uint64
}

// closeToast is the auto-close transition: it closes one incarnation
// without OnDismiss and runs OnAutoClose instead.
type closeToast struct {
	id       ID
	instance uint64
}

func (AddToast) isAction()     {}
func (UpdateToast) isAction()  {}
func (UpsertToast) isAction()  {}
func (DismissToast) isAction() {}
func (RemoveToast) isAction()  {}
func (closeToast) isAction()   {}

// Reduce computes the next state for an action. It never mutates the input
// state. Callbacks the action triggers (OnDismiss, OnAutoClose) are returned
// as effects for the caller to run after the new state is committed. An
// unknown or nil action returns the state unchanged.
func Reduce(state State, action Action, limit int) (State, []func()) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch a := action.(type) {
	case AddToast:
		if i := state.index(a.Toast.ID); i >= 0 {
			return update(state, i, patchFrom(a.Toast)), nil
		}
		return add(state, a.Toast, limit), nil

	case UpdateToast:
		i := state.index(a.Patch.ID)
		if i < 0 {
			return state, nil
		}
		return update(state, i, a.Patch), nil

	case UpsertToast:
		if i := state.index(a.Toast.ID); i >= 0 {
			return update(state, i, patchFrom(a.Toast)), nil
		}
		return add(state, a.Toast, limit), nil

	case DismissToast:
		if a.ID == "" {
			var effects []func()
			for _, t := range state.Toasts {
				if !t.dismissed && t.OnDismiss != nil {
					effects = append(effects, callback(t.OnDismiss, t))
				}
			}
			return State{seq: state.seq}, effects
		}
		i := state.index(a.ID)
		if i < 0 || !state.Toasts[i].Open {
			return state, nil
		}
		next := replace(state, i, func(t Toast) Toast {
			t.Open = false
			t.dismissed = true
			return t
		})
		closed := next.Toasts[i]
		if closed.OnDismiss == nil {
			return next, nil
		}
		return next, []func(){callback(closed.OnDismiss, closed)}

	case RemoveToast:
		if a.ID == "" {
			return State{seq: state.seq}, nil
		}
		i := state.index(a.ID)
		if i < 0 || (a.instance != 0 && state.Toasts[i].instance != a.instance) {
			return state, nil
		}
		toasts := make([]Toast, 0, len(state.Toasts)-1)
		toasts = append(toasts, state.Toasts[:i]...)
		toasts = append(toasts, state.Toasts[i+1:]...)
		return State{Toasts: toasts, seq: state.seq}, nil

	case closeToast:
		i := state.index(a.id)
		if i < 0 || state.Toasts[i].instance != a.instance || !state.Toasts[i].Open {
			return state, nil
		}
		next := replace(state, i, func(t Toast) Toast {
			t.Open = false
			return t
		})
		closed := next.Toasts[i]
		if closed.OnAutoClose == nil {
			return next, nil
		}
		return next, []func(){callback(closed.OnAutoClose, closed)}
	}

	return state, nil
}

func add(state State, t Toast, limit int) State {
	seq := state.seq + 1
	t.instance = seq
	t.revision = 0
	t.Open = true
	t.dismissed = false

	n := len(state.Toasts) + 1
	if n > limit {
		n = limit
	}
	toasts := make([]Toast, 0, n)
	toasts = append(toasts, t)
	toasts = append(toasts, state.Toasts[:n-1]...)
	return State{Toasts: toasts, seq: seq}
}

func update(state State, i int, p Patch) State {
	return replace(state, i, p.applyTo)
}

func replace(state State, i int, fn func(Toast) Toast) State {
	toasts := make([]Toast, len(state.Toasts))
	copy(toasts, state.Toasts)
	toasts[i] = fn(toasts[i])
	return State{Toasts: toasts, seq: state.seq}
}

func callback(fn func(Toast), t Toast) func() {
	return func() { fn(t) }
}
