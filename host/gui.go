package host

import "time"

// guiPollInterval is how often runGUIThread pumps WindowBackend.Poll when
// idle. Short enough that editor windows feel responsive, long enough not
// to matter on a goroutine that is otherwise blocked in a channel select.
const guiPollInterval = 16 * time.Millisecond

// runGUIThread is the body of the dedicated GUI-thread goroutine Start
// launches under BridgeModeGUIThread. It is the one goroutine allowed to
// call WindowBackend.Create/Close (spec.md §9(a): "many backends insist on
// same-thread creation and destruction").
//
// It drives Create/Poll/Quit directly rather than calling
// WindowBackend.Run: Run blocks pumping the backend's own event loop with
// no way to interleave incoming createReq values, so it suits a caller
// that owns a dedicated GUI thread with no dynamic window-creation
// requests to service (a simpler embedding than this bridge needs). This
// bridge instead polls on a short tick and services createReq as it
// arrives, keeping window creation on the same goroutine as everything
// else the backend requires to run there.
func (h *Instance) runGUIThread() {
	defer h.guiWG.Done()
	ticker := time.NewTicker(guiPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopGUI:
			h.cfg.WindowBackend.Quit()
			return
		case req := <-h.createReq:
			w, err := h.cfg.WindowBackend.Create(req.b)
			req.future.Fulfill(w, err)
		case req := <-h.closeReq:
			req.w.Close()
			close(req.done)
		case <-ticker.C:
			h.cfg.WindowBackend.Poll()
		}
	}
}
