package toast

import "time"

const (
	// DefaultLimit is the number of toasts kept resident at once.
	DefaultLimit = 3
	// DefaultDuration is how long a toast stays open when it sets no duration.
	DefaultDuration = 5 * time.Second
	// DefaultRemoveDelay is the exit delay between closing and removal.
	DefaultRemoveDelay = 200 * time.Millisecond
)

// Type is the variant of a toast. The set is closed; renderers switch on it
// exhaustively.
type Type int

const (
	TypeNormal Type = iota
	TypeSuccess
	TypeInfo
	TypeWarning
	TypeError
	TypeLoading
	TypeAction
)

// Types lists every variant in declaration order.
var Types = []Type{TypeNormal, TypeSuccess, TypeInfo, TypeWarning, TypeError, TypeLoading, TypeAction}

func (t Type) String() string {
	switch t {
	case TypeNormal:
		return "normal"
	case TypeSuccess:
		return "success"
	case TypeInfo:
		return "info"
	case TypeWarning:
		return "warning"
	case TypeError:
		return "error"
	case TypeLoading:
		return "loading"
	case TypeAction:
		return "action"
	}
	return "unknown"
}

// ID identifies a toast among the resident set.
type ID string

// Button is an action or cancel button attached to a toast. OnClick receives
// a close function that dismisses the owning toast.
type Button struct {
	Label   string
	OnClick func(close func())
}

// ClassNames names renderer styles to apply to parts of a toast.
type ClassNames struct {
	Toast        string
	Title        string
	Description  string
	Icon         string
	ActionButton string
	CancelButton string
}

// Toast is a single notification.
type Toast struct {
	ID          ID
	Title       string
	Description string
	Type        Type
	// Duration before auto-close. Zero means the lifecycle default.
	Duration  time.Duration
	Open      bool
	Important bool
	Icon      string
	Classes   ClassNames
	Action    *Button
	Cancel    *Button

	OnDismiss   func(Toast)
	OnAutoClose func(Toast)

	// instance is assigned by the reducer when the toast enters the store and
	// never reused, so stale timers can tell a re-added id apart.
	instance uint64
	// revision increments on every in-place update.
	revision uint64
	// dismissed records that OnDismiss has run for this incarnation.
	dismissed bool
}

// Patch carries the fields an UpdateToast action merges into the toast with
// the matching ID. Nil fields are left untouched.
type Patch struct {
	ID          ID
	Title       *string
	Description *string
	Type        *Type
	Duration    *time.Duration
	Important   *bool
	Icon        *string
	Action      *Button
	Cancel      *Button
	OnDismiss   func(Toast)
	OnAutoClose func(Toast)
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// patchFrom converts a full toast into a patch. Title and type are always
// carried; other fields only when set.
func patchFrom(t Toast) Patch {
	p := Patch{
		ID:          t.ID,
		Title:       Ptr(t.Title),
		Type:        Ptr(t.Type),
		Action:      t.Action,
		Cancel:      t.Cancel,
		OnDismiss:   t.OnDismiss,
		OnAutoClose: t.OnAutoClose,
	}
	if t.Description != "" {
		p.Description = Ptr(t.Description)
	}
	if t.Duration > 0 {
		p.Duration = Ptr(t.Duration)
	}
	if t.Important {
		p.Important = Ptr(true)
	}
	if t.Icon != "" {
		p.Icon = Ptr(t.Icon)
	}
	return p
}

func (p Patch) applyTo(t Toast) Toast {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	if p.Icon != nil {
		t.Icon = *p.Icon
	}
	if p.Action != nil {
		t.Action = p.Action
	}
	if p.Cancel != nil {
		t.Cancel = p.Cancel
	}
	if p.OnDismiss != nil {
		t.OnDismiss = p.OnDismiss
	}
	if p.OnAutoClose != nil {
		t.OnAutoClose = p.OnAutoClose
	}
	t.revision++
	return t
}

// State is an immutable snapshot of the resident toasts, newest first.
type State struct {
	Toasts []Toast

	// seq is the last instance number handed out.
	seq uint64
}

// Len returns the number of resident toasts.
func (s State) Len() int {
	return len(s.Toasts)
}

// Find returns the resident toast with the given id.
func (s State) Find(id ID) (Toast, bool) {
	if i := s.index(id); i >= 0 {
		return s.Toasts[i], true
	}
	return Toast{}, false
}

// IDs returns the resident ids, newest first.
func (s State) IDs() []ID {
	ids := make([]ID, len(s.Toasts))
	for i, t := range s.Toasts {
		ids[i] = t.ID
	}
	return ids
}

func (s State) index(id ID) int {
	for i, t := range s.Toasts {
		if t.ID == id {
			return i
		}
	}
	return -1
}
