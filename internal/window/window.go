// Package window defines the windowing-backend boundary spec.md §6
// describes ("Per-OS window creation and event-loop plumbing") and is
// explicitly out of scope to implement for real (spec.md §1 Non-goals:
// "rendering a GUI of our own"). What lives here is the *interface* a real
// per-OS backend would satisfy, plus the GUI-thread coordination primitive
// host.Instance needs regardless of which concrete backend is plugged in:
// a one-shot future the worker thread blocks on while the GUI thread does
// the actual window creation (spec.md §9(a)).
//
// The future is grounded on client/app.go's ctx context.Context field: a
// value created on one thread (Wails' runtime goroutine), handed across,
// and read by methods running on another. Here the same shape is made
// explicit as a channel instead of a struct field, since the worker thread
// needs to block for a result rather than poll one.
package window

import "pluginhost/internal/backend"

// Rect mirrors backend.Rect; kept distinct because a window's rect is a
// property of the OS-level window, not of the plugin editor view it hosts,
// even though today's only implementation passes it straight through.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Window is a single editor window, owned by the GUI thread for its
// lifetime (spec.md §6: "Editor window: owned by the GUI thread").
type Window interface {
	SetTitle(title string)
	SetGeometry(r Rect)
	Show()
	Hide()
	BringToTop()
	Rect() Rect
	// Close tears down native window resources. Must be called from the
	// GUI thread.
	Close()
}

// Backend is the per-OS windowing backend contract (spec.md §6:
// "Windowing backend: create(plugin) -> Window; setTitle; setGeometry;
// show/hide/bringToTop; run/quit; poll").
type Backend interface {
	// Create opens a native window hosting b's editor view. Must be
	// called from the GUI thread.
	Create(b backend.Backend) (Window, error)

	// Run blocks, pumping the native event loop, until stop is closed or
	// Quit is called. Used when the windowing backend owns a dedicated
	// GUI thread.
	Run(stop <-chan struct{})

	// Quit requests Run to return.
	Quit()

	// Poll pumps one iteration of the event loop without blocking. Used
	// instead of Run when there is no dedicated GUI thread (spec.md §6:
	// "poll (when there is no dedicated GUI thread)").
	Poll()
}

// OpenResult is what the GUI thread reports back after attempting to
// create an editor window for a just-opened plugin.
type OpenResult struct {
	Window Window
	Err    error
}

// OpenFuture is a one-shot handoff from the worker thread (which decides a
// plugin needs an editor) to the GUI thread (which alone may touch native
// window APIs) and back. The worker thread sends exactly one request, then
// blocks on Result(); the GUI thread receives exactly one request, does the
// work, and calls Fulfill exactly once.
type OpenFuture struct {
	result chan OpenResult
}

// NewOpenFuture returns a future ready for one round trip.
func NewOpenFuture() *OpenFuture {
	return &OpenFuture{result: make(chan OpenResult, 1)}
}

// Fulfill completes the future. Called from the GUI thread, once, since
// exactly one Create attempt is expected per Open. The future holds a
// single result, so a second call blocks until the first has been read.
func (f *OpenFuture) Fulfill(w Window, err error) {
	f.result <- OpenResult{Window: w, Err: err}
}

// Result blocks until Fulfill is called. Called from the worker thread.
func (f *OpenFuture) Result() OpenResult {
	return <-f.result
}
