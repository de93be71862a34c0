package toast

import "time"

// Option customises a toast raised through a Toaster.
type Option func(*Toast)

// WithID supplies the toast id. Reusing a resident id updates that toast.
func WithID(id ID) Option {
	return func(t *Toast) { t.ID = id }
}

// WithDescription sets the secondary line.
func WithDescription(text string) Option {
	return func(t *Toast) { t.Description = text }
}

// WithDuration overrides the auto-close duration.
func WithDuration(d time.Duration) Option {
	return func(t *Toast) { t.Duration = d }
}

// WithImportant marks the toast as important.
func WithImportant() Option {
	return func(t *Toast) { t.Important = true }
}

// WithIcon replaces the type icon.
func WithIcon(icon string) Option {
	return func(t *Toast) { t.Icon = icon }
}

// WithClassNames names renderer styles for parts of the toast.
func WithClassNames(c ClassNames) Option {
	return func(t *Toast) { t.Classes = c }
}

// WithAction attaches an action button.
func WithAction(b Button) Option {
	return func(t *Toast) { t.Action = &b }
}

// WithCancel attaches a cancel button.
func WithCancel(b Button) Option {
	return func(t *Toast) { t.Cancel = &b }
}

// WithOnDismiss registers a callback for explicit dismissal.
func WithOnDismiss(fn func(Toast)) Option {
	return func(t *Toast) { t.OnDismiss = fn }
}

// WithOnAutoClose registers a callback for the auto-close timer.
func WithOnAutoClose(fn func(Toast)) Option {
	return func(t *Toast) { t.OnAutoClose = fn }
}

// Toaster is the API for raising and managing toasts on a Store.
type Toaster struct {
	store *Store
	ids   IDGenerator
}

// ToasterOption configures a Toaster.
type ToasterOption func(*Toaster)

// WithIDGenerator replaces the default counter.
func WithIDGenerator(gen IDGenerator) ToasterOption {
	return func(t *Toaster) {
		if gen != nil {
			t.ids = gen
		}
	}
}

// NewToaster creates a Toaster dispatching into store.
func NewToaster(store *Store, opts ...ToasterOption) *Toaster {
	t := &Toaster{
		store: store,
		ids:   NewCounterIDs(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying store.
func (t *Toaster) Store() *Store {
	return t.store
}

// Show raises a normal toast and returns its id.
func (t *Toaster) Show(title string, opts ...Option) ID {
	return t.raise(TypeNormal, title, opts)
}

// Message is an alias for Show.
func (t *Toaster) Message(title string, opts ...Option) ID {
	return t.raise(TypeNormal, title, opts)
}

// Success raises a success toast.
func (t *Toaster) Success(title string, opts ...Option) ID {
	return t.raise(TypeSuccess, title, opts)
}

// Info raises an info toast.
func (t *Toaster) Info(title string, opts ...Option) ID {
	return t.raise(TypeInfo, title, opts)
}

// Warning raises a warning toast.
func (t *Toaster) Warning(title string, opts ...Option) ID {
	return t.raise(TypeWarning, title, opts)
}

// Error raises an error toast.
func (t *Toaster) Error(title string, opts ...Option) ID {
	return t.raise(TypeError, title, opts)
}

// Action raises an action toast carrying button.
func (t *Toaster) Action(title string, button Button, opts ...Option) ID {
	return t.raise(TypeAction, title, append([]Option{WithAction(button)}, opts...))
}

// Loading raises a loading toast. Loading toasts stay open until updated to
// another type or dismissed.
func (t *Toaster) Loading(title string, opts ...Option) ID {
	return t.raise(TypeLoading, title, opts)
}

// Update merges patch into the resident toast with patch.ID.
func (t *Toaster) Update(patch Patch) {
	t.store.dispatch(UpdateToast{Patch: patch})
}

// Upsert updates the toast with the same id or adds it. An empty id gets a
// fresh one, which is returned.
func (t *Toaster) Upsert(toast Toast) ID {
	if toast.ID == "" {
		toast.ID = t.ids.NextID()
	}
	t.store.dispatch(UpsertToast{Toast: toast})
	return toast.ID
}

// Dismiss closes the toast with id. The toast is removed after the exit
// delay by the Lifecycle.
func (t *Toaster) Dismiss(id ID) {
	if id == "" {
		return
	}
	t.store.dispatch(DismissToast{ID: id})
}

// DismissAll dismisses and clears every toast at once.
func (t *Toaster) DismissAll() {
	t.store.dispatch(DismissToast{})
}

// Remove deletes the toast with id immediately.
func (t *Toaster) Remove(id ID) {
	if id == "" {
		return
	}
	t.store.dispatch(RemoveToast{ID: id})
}

// Close returns a function that dismisses id, for button callbacks.
func (t *Toaster) Close(id ID) func() {
	return func() { t.Dismiss(id) }
}

func (t *Toaster) raise(typ Type, title string, opts []Option) ID {
	toast := Toast{Title: title, Type: typ, Open: true}
	for _, opt := range opts {
		opt(&toast)
	}
	toast.Type = typ
	if toast.ID == "" {
		toast.ID = t.ids.NextID()
		t.store.dispatch(AddToast{Toast: toast})
		return toast.ID
	}
	t.store.dispatch(UpsertToast{Toast: toast})
	return toast.ID
}
