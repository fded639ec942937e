package window

import "pluginhost/internal/backend"

// fakeWindow is an in-memory Window used by tests and by Fake.
type fakeWindow struct {
	title string
	rect  Rect
	shown bool
	atTop bool
	closed bool
}

func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) SetGeometry(r Rect)    { w.rect = r }
func (w *fakeWindow) Show()                 { w.shown = true }
func (w *fakeWindow) Hide()                 { w.shown = false }
func (w *fakeWindow) BringToTop()           { w.atTop = true }
func (w *fakeWindow) Rect() Rect            { return w.rect }
func (w *fakeWindow) Close()                { w.closed = true }

// Fake is an in-process Backend that never touches a real display; it
// exists so host/Instance tests can exercise the editor-open path without a
// native windowing system, the same role backend.Fake plays for the
// plugin ABI.
type Fake struct {
	// FailCreate, if set, is returned as the error from Create instead of
	// opening a window.
	FailCreate error

	quit chan struct{}
}

// NewFake returns a ready-to-use Fake windowing backend.
func NewFake() *Fake {
	return &Fake{quit: make(chan struct{})}
}

func (f *Fake) Create(b backend.Backend) (Window, error) {
	if f.FailCreate != nil {
		return nil, f.FailCreate
	}
	return &fakeWindow{}, nil
}

func (f *Fake) Run(stop <-chan struct{}) {
	select {
	case <-stop:
	case <-f.quit:
	}
}

func (f *Fake) Quit() {
	select {
	case <-f.quit:
	default:
		close(f.quit)
	}
}

func (f *Fake) Poll() {}

var _ Backend = (*Fake)(nil)
