// Package toast implements the in-process notification subsystem used by the
// pulse TUI and CLI.
//
// A Store owns the ordered list of resident toasts and is mutated only by
// dispatching actions through Reduce. A Toaster is the façade callers use to
// raise, update and dismiss notifications; Promise tracks asynchronous work
// (typically a model call) and turns its outcome into a success or error
// toast. A Lifecycle subscribes to the store and runs the per-toast timers:
// auto-close after the toast's duration, then removal after a short exit delay.
//
// Usage:
//
//	store := toast.NewStore()
//	toaster := toast.NewToaster(store)
//	life := toast.NewLifecycle(store)
//	life.Start()
//	defer life.Stop()
//
//	toaster.Success("Saved")
//	p := toast.Promise(ctx, toaster, analyze, toast.PromiseOptions[*pulse.RouteAnalysis]{
//	    Loading: "Analyzing routes...",
//	    Success: func(a *pulse.RouteAnalysis) string { return fmt.Sprintf("Found %d routes", len(a.Routes)) },
//	    Error:   func(err error) string { return "Failed: " + err.Error() },
//	})
//	analysis, err := p.Await()
//
// Rendering is left to the caller: subscribe to the store and project State.
package toast
