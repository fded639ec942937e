package host

import (
	"context"

	"pluginhost/internal/backend"
	"pluginhost/internal/protocol"
	"pluginhost/internal/window"
)

// Open loads the plugin at path on the worker thread and, on success,
// transitions the instance to Ready (spec.md §4.1 "open"). Asynchronous:
// returns immediately, replies `/open {ok, hasEditor}` once the worker
// (and, for BridgeModeGUIThread, the GUI thread) finishes.
//
// If an instance is already loaded, Open first issues a Close. A second
// Open arriving while one is already in flight is dropped with a warning
// rather than queued (spec.md: "must be idempotent when called twice in
// quick succession").
func (h *Instance) Open(path string, withEditor bool) {
	if h.loading.Load() {
		h.log.Warn("open dropped: instance is already loading", "path", path)
		return
	}
	if h.State() != StateEmpty {
		h.Close()
	}
	h.loading.Store(true)
	h.setState(StateLoading)

	var (
		b         backend.Backend
		info      backend.Info
		loadErr   error
		editorWin window.Window
	)

	cmd := h.cmdQ.New("open", func() bool {
		var err error
		b, info, err = h.cfg.Loader.Load(path)
		if err != nil {
			loadErr = err
			return true
		}
		if err := h.configureBackend(b); err != nil {
			loadErr = err
			return true
		}
		b.SetListener(h.listener)
		if h.cfg.Registry != nil {
			if err := h.cfg.Registry.Put(context.Background(), path, info); err != nil {
				h.log.Warn("open: caching plugin description failed", "path", path, "error", err)
			}
		}
		if withEditor && info.Capabilities.HasEditor && h.cfg.WindowBackend != nil {
			var err error
			editorWin, err = h.createEditorWindow(b)
			if err != nil {
				h.log.Warn("open: editor window create failed", "path", path, "error", err)
			}
		}
		return true
	}, func() bool {
		h.loading.Store(false)
		if loadErr != nil {
			h.log.Error("open failed", "path", path, "error", loadErr)
			h.setState(StateEmpty)
			h.reply(protocol.Message{Type: protocol.ReplyOpen, OK: false})
			return true
		}
		h.b = b
		h.info = info
		h.path = path
		h.bypass = false
		h.editorWindow = editorWin
		h.scratchIn = allocateChannels(info.NumInputs, h.cfg.BlockSize)
		h.scratchOut = allocateChannels(info.NumOutputs, h.cfg.BlockSize)
		h.setState(StateReady)
		h.reply(protocol.Message{Type: protocol.ReplyOpen, OK: true, HasEditor: editorWin != nil})
		return true
	})
	if !h.cmdQ.Submit(cmd) {
		h.loading.Store(false)
		h.setState(StateEmpty)
	}
}

// configureBackend runs the fixed setup sequence every freshly loaded
// backend needs before it can process: format negotiation, then resume.
func (h *Instance) configureBackend(b backend.Backend) error {
	if err := b.SetSampleRate(h.cfg.SampleRateHz); err != nil {
		return err
	}
	if err := b.SetBlockSize(h.cfg.BlockSize); err != nil {
		return err
	}
	info := b.Info()
	wantDouble := info.Capabilities.DoublePrecision && !info.Capabilities.SinglePrecision
	if err := b.SetPrecision(wantDouble); err != nil {
		return err
	}
	return b.Resume()
}

// createEditorWindow creates b's editor window, routing through the
// GUI-thread bridge when BridgeModeGUIThread requires same-thread
// creation (spec.md §9(a)).
func (h *Instance) createEditorWindow(b backend.Backend) (window.Window, error) {
	if h.cfg.BridgeMode != BridgeModeGUIThread {
		return h.cfg.WindowBackend.Create(b)
	}
	future := window.NewOpenFuture()
	h.createReq <- createRequest{b: b, future: future}
	res := future.Result()
	return res.Window, res.Err
}

// closeEditorWindow tears down w, routing through the GUI-thread bridge
// when required, and blocking until the GUI thread has actually closed it.
func (h *Instance) closeEditorWindow(w window.Window) {
	if w == nil {
		return
	}
	if h.cfg.BridgeMode != BridgeModeGUIThread {
		w.Close()
		return
	}
	done := make(chan struct{})
	h.closeReq <- closeRequest{w: w, done: done}
	<-done
}

// Close enqueues a worker-side teardown of the current backend and editor
// window (spec.md §4.1 "close"). The caller's fields are cleared
// immediately so a subsequent Open is never blocked on a Close still in
// flight (spec.md §5: "a pending Open-then-Close pair is always safe: the
// Close observes whatever state Open produced").
func (h *Instance) Close() {
	if h.State() == StateEmpty {
		return
	}
	h.setState(StateClosing)

	b := h.b
	editorWin := h.editorWindow
	h.b = nil
	h.info = backend.Info{}
	h.path = ""
	h.editorWindow = nil

	cmd := h.cmdQ.New("close", func() bool {
		h.closeEditorWindow(editorWin)
		if b != nil {
			if err := b.Destroy(); err != nil {
				h.log.Warn("close: backend destroy failed", "error", err)
			}
		}
		return true
	}, func() bool {
		h.setState(StateEmpty)
		return true
	})
	if !h.cmdQ.Submit(cmd) {
		// Queue full: still finish the transition so the instance doesn't
		// get stuck in Closing forever; the backend/window are leaked in
		// this extreme-overflow case, same as any other dropped command.
		h.setState(StateEmpty)
	}
}

// Reset suspends and resumes the backend (spec.md §4.1 "reset"). Async
// reset runs on the worker thread; synchronous reset runs inline on the
// audio thread, which the caller opts into only for backends documented
// as RT-safe to reset.
func (h *Instance) Reset(async bool) {
	if h.State() != StateReady && h.State() != StateBypassed {
		h.log.Warn("reset dropped: instance not ready")
		return
	}
	if !async {
		if err := h.b.Suspend(); err != nil {
			h.log.Warn("reset: suspend failed", "error", err)
		}
		if err := h.b.Resume(); err != nil {
			h.log.Warn("reset: resume failed", "error", err)
		}
		return
	}
	b := h.b
	cmd := h.cmdQ.New("reset", func() bool {
		if err := b.Suspend(); err != nil {
			h.log.Warn("async reset: suspend failed", "error", err)
			return false
		}
		if err := b.Resume(); err != nil {
			h.log.Warn("async reset: resume failed", "error", err)
			return false
		}
		return true
	}, nil)
	h.cmdQ.Submit(cmd)
}

// ShowEditor toggles the editor window's top-level visibility (spec.md
// §4.1 "showEditor"). The Show/BringToTop/Hide calls run in the command's
// worker stage on the worker goroutine, in both bridge modes; they are not
// routed through the GUI-thread goroutine that runGUIThread serves.
func (h *Instance) ShowEditor(show bool) {
	w := h.editorWindow
	if w == nil {
		h.log.Warn("showEditor dropped: no editor window")
		return
	}
	cmd := h.cmdQ.New("show_editor", func() bool {
		if show {
			w.Show()
			w.BringToTop()
		} else {
			w.Hide()
		}
		return true
	}, nil)
	h.cmdQ.Submit(cmd)
}
