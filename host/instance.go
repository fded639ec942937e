// Package host implements the Plugin Host Instance (spec.md §4.1): the
// per-plugin controller tying a plugin backend, parameter store, command
// queue, event inbox, and listener together, and carrying the realtime
// `Next` processing routine.
//
// Every exported method on Instance except Next, DrainReplies, and the
// worker/GUI-thread goroutine entry points is meant to be called from the
// single thread that also calls Next — the real-time engine thread that
// both processes audio blocks and dispatches incoming control messages
// (spec.md §5: the Command Queue is single-producer from "the audio
// thread", and §4.1's public contract lists submission, not execution, as
// what happens off that thread). That is the same "one goroutine owns this
// struct's hot fields, atomics/channels carry anything else" discipline
// client/audio.go's AudioEngine uses for its running/muted/currentBitrate
// flags, generalized here to a full state machine instead of a handful of
// independent toggles.
package host

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"pluginhost/internal/backend"
	"pluginhost/internal/command"
	"pluginhost/internal/inbox"
	"pluginhost/internal/paramstore"
	"pluginhost/internal/protocol"
	"pluginhost/internal/registry"
	"pluginhost/internal/window"
)

// State is the Plugin Host Instance lifecycle state (spec.md §3).
type State int32

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateBypassed
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateBypassed:
		return "bypassed"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("host.State(%d)", int(s))
	}
}

// BridgeMode resolves spec.md §9 Open Question (a): whether editor-window
// creation must pass through a GUI-thread blocking future, or can happen
// directly on the worker thread. Exposed as a config option per the
// spec's own resolution rather than guessed at.
type BridgeMode int

const (
	// BridgeModeDirect creates the editor window directly on the worker
	// thread during Open. Correct for windowing backends that tolerate
	// creation off the main/event-loop thread.
	BridgeModeDirect BridgeMode = iota
	// BridgeModeGUIThread routes editor-window creation through a
	// dedicated GUI-thread goroutine via a window.OpenFuture. Required
	// for windowing backends that insist on same-thread window creation
	// (spec.md §5: "many backends insist on same-thread creation and
	// destruction").
	BridgeModeGUIThread
)

// Loader loads a plugin module from disk and probes its description. It is
// the worker-thread hook a real embedding engine implements (via cgo) to
// actually negotiate the V2/V3 ABI; probing itself is out of this spec's
// scope (spec.md §1 Non-goals).
type Loader interface {
	Load(path string) (backend.Backend, backend.Info, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(path string) (backend.Backend, backend.Info, error)

func (f LoaderFunc) Load(path string) (backend.Backend, backend.Info, error) { return f(path) }

// ReplyFunc emits one outgoing reply message (spec.md §6 "Reply surface")
// to the embedding engine.
type ReplyFunc func(protocol.Message)

// Config configures one Instance.
type Config struct {
	InstanceID string

	Loader        Loader
	WindowBackend window.Backend // nil disables editor support entirely
	BridgeMode    BridgeMode
	Registry      *registry.Registry // optional; nil disables the description cache

	CommandQueueCapacity int     // default 64
	NumParameters        int     // paramstore.Store size; must cover every plugin this instance will ever open
	SampleRateHz         float64 // passed to Backend.SetSampleRate on every Open
	BlockSize            int     // passed to Backend.SetBlockSize on every Open

	Reply ReplyFunc
	Log   *slog.Logger
}

// Instance is one Plugin Host Instance.
type Instance struct {
	cfg Config
	log *slog.Logger

	state  atomic.Int32 // State
	loading atomic.Bool

	cmdQ   *command.Queue
	params *paramstore.Store
	inbox  *inbox.Inbox

	// Thread identification for the Listener Adapter (spec.md §4.2):
	// goroutine ids bound once each, compared on every callback. See
	// threadid.go for why this is the Go equivalent of comparing
	// currentThreadId() against ids "captured at construction/handshake".
	audioGoroutine  atomic.Uint64
	workerGoroutine atomic.Uint64
	bindAudioOnce   sync.Once

	stopWorker chan struct{}
	workerWG   sync.WaitGroup

	// Fields below are touched only by the engine thread (the one
	// calling Next/Dispatch) and by RT-stage closures run from
	// DrainReplies on that same thread — see the package doc.
	b             backend.Backend
	info          backend.Info
	path          string
	bypass        bool
	editorWindow  window.Window
	currentUpload uploadState

	// scratchIn/scratchOut are pre-sized at Open time to the plugin's own
	// channel counts, used only when the engine's buffer layout (channel
	// count) differs from the plugin's — see Next's bindChannels. Never
	// (re)allocated on the audio-thread hot path.
	scratchIn  [][]float32
	scratchOut [][]float32

	listener *ListenerAdapter

	// GUI-thread bridge, only used when cfg.BridgeMode ==
	// BridgeModeGUIThread and cfg.WindowBackend != nil.
	createReq chan createRequest
	closeReq  chan closeRequest
	stopGUI   chan struct{}
	guiWG     sync.WaitGroup
}

type uploadState struct {
	active bool
	isBank bool
	total  int64
	buf    []byte
}

type createRequest struct {
	b      backend.Backend
	future *window.OpenFuture
}

type closeRequest struct {
	w    window.Window
	done chan struct{}
}

// New constructs an Instance. Call Start before Open/Next/Dispatch.
func New(cfg Config) *Instance {
	if cfg.CommandQueueCapacity <= 0 {
		cfg.CommandQueueCapacity = 64
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	h := &Instance{
		cfg:        cfg,
		log:        log,
		cmdQ:       command.NewQueue(cfg.InstanceID, cfg.CommandQueueCapacity, log),
		params:     paramstore.New(cfg.NumParameters),
		inbox:      inbox.New(),
		stopWorker: make(chan struct{}),
		createReq:  make(chan createRequest, 1),
		closeReq:   make(chan closeRequest, 1),
		stopGUI:    make(chan struct{}),
	}
	h.listener = newListenerAdapter(h)
	return h
}

// Start launches the worker-thread goroutine (and, if configured, the
// GUI-thread goroutine). Call once.
func (h *Instance) Start() {
	go func() {
		h.workerGoroutine.Store(goroutineID())
		h.cmdQ.RunWorker(h.stopWorker)
	}()
	if h.cfg.WindowBackend != nil && h.cfg.BridgeMode == BridgeModeGUIThread {
		h.guiWG.Add(1)
		go h.runGUIThread()
	}
}

// Stop halts the worker/GUI goroutines and drains any pending commands
// without running their stages (spec.md §4.3: "pending Commands are
// drained at engine teardown").
func (h *Instance) Stop() {
	close(h.stopWorker)
	if h.cfg.WindowBackend != nil && h.cfg.BridgeMode == BridgeModeGUIThread {
		close(h.stopGUI)
		h.guiWG.Wait()
	}
	h.cmdQ.Drain()
}

// State returns the instance's current lifecycle state.
func (h *Instance) State() State { return State(h.state.Load()) }

func (h *Instance) setState(s State) { h.state.Store(int32(s)) }

func (h *Instance) reply(msg protocol.Message) {
	if h.cfg.Reply != nil {
		h.cfg.Reply(msg)
	}
}

// DrainReplies runs the RT stage of every completed Command, delivering
// worker-thread results back onto the engine thread. Call once per block,
// alongside Next.
func (h *Instance) DrainReplies() {
	h.cmdQ.DrainReplies()
}
