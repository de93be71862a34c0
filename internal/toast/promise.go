package toast

import (
	"context"
	"fmt"
)

// PromiseOptions describes the toasts raised around a tracked task.
type PromiseOptions[T any] struct {
	// Loading, when set, is shown immediately as a loading toast.
	Loading string
	// Success builds the message from the task's value. Nil or an empty
	// result shows nothing unless a loading toast is waiting.
	Success func(T) string
	// Error builds the message from the task's error.
	Error func(error) string
	// Finally runs once the task has settled, whatever the outcome.
	Finally func()
}

// Text returns a message function that ignores its argument.
func Text[T any](s string) func(T) string {
	return func(T) string { return s }
}

// Pending tracks a task started by Promise.
type Pending[T any] struct {
	id    ID
	done  chan struct{}
	value T
	err   error
}

// ID returns the loading toast's id, if one was raised.
func (p *Pending[T]) ID() (ID, bool) {
	return p.id, p.id != ""
}

// Done is closed after the task settled and the store applied its toast.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until settlement and returns the task's outcome.
func (p *Pending[T]) Await() (T, error) {
	<-p.done
	return p.value, p.err
}

// Promise runs task in its own goroutine and reflects its outcome as toasts.
// Failures, including panics inside task, become error toasts; they are
// available from Await but never propagate as panics.
func Promise[T any](ctx context.Context, t *Toaster, task func(context.Context) (T, error), opts PromiseOptions[T]) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}

	if opts.Loading != "" {
		p.id = t.ids.NextID()
		t.store.dispatch(AddToast{Toast: Toast{
			ID:    p.id,
			Title: opts.Loading,
			Type:  TypeLoading,
			Open:  true,
		}})
	}

	go func() {
		defer close(p.done)
		if opts.Finally != nil {
			defer t.store.guard("finally", opts.Finally)
		}

		p.value, p.err = run(ctx, task)
		if p.err != nil {
			msg := t.message(func() string {
				if opts.Error == nil {
					return ""
				}
				return opts.Error(p.err)
			})
			t.settle(p.id, TypeError, msg)
			return
		}
		msg := t.message(func() string {
			if opts.Success == nil {
				return ""
			}
			return opts.Success(p.value)
		})
		t.settle(p.id, TypeSuccess, msg)
	}()

	return p
}

func run[T any](ctx context.Context, task func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if task == nil {
		return value, fmt.Errorf("no task")
	}
	return task(ctx)
}

func (t *Toaster) message(build func() string) (msg string) {
	t.store.guard("message", func() { msg = build() })
	return msg
}

// settle swaps the loading toast into its final type, or raises a fresh
// toast when there was no loading toast and msg is not empty.
func (t *Toaster) settle(id ID, typ Type, msg string) {
	if id != "" {
		patch := Patch{ID: id, Type: Ptr(typ)}
		if msg != "" {
			patch.Title = Ptr(msg)
		}
		t.store.dispatch(UpdateToast{Patch: patch})
		return
	}
	if msg != "" {
		t.raise(typ, msg, nil)
	}
}
