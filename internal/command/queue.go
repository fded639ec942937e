package command

import (
	"log/slog"

	"github.com/google/uuid"
)

// Queue is a per-instance single-producer (audio thread)/single-consumer
// (worker thread) Command path plus a return path that delivers completed
// Commands back to the audio thread for their RT stage (spec.md §4.3).
//
// Buffered channels give the SPSC/ordering guarantees directly: Go channel
// sends/receives are FIFO, and a single consumer goroutine on each side is
// exactly the "single-producer/single-consumer" shape spec.md asks for.
type Queue struct {
	instanceID string
	toWorker   chan *Command
	toAudio    chan *Command
	pool       *Pool
	log        *slog.Logger
}

// NewQueue returns a Queue for one host.Instance (instanceID is used only
// for logging), with room for capacity in-flight Commands on each leg.
func NewQueue(instanceID string, capacity int, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		instanceID: instanceID,
		toWorker:   make(chan *Command, capacity),
		toAudio:    make(chan *Command, capacity),
		pool:       newPool(),
		log:        log,
	}
}

// New allocates (from the pool) a Command ready to submit. Called on the
// audio thread.
func (q *Queue) New(tag string, nrt, rt Stage) *Command {
	c := q.pool.get()
	c.ID = uuid.New()
	c.Tag = tag
	c.InstanceID = q.instanceID
	c.NRT = nrt
	c.RT = rt
	c.free = q.pool.put
	return c
}

// Submit enqueues cmd for the worker thread. Non-blocking: if the queue is
// full (the worker has fallen far behind), the command is dropped, the
// drop is logged here as an AllocationFailure-class drop (spec.md §7), and
// Submit returns false.
func (q *Queue) Submit(cmd *Command) bool {
	select {
	case q.toWorker <- cmd:
		return true
	default:
		q.log.Warn("command queue full, dropping command",
			"instance", q.instanceID, "tag", cmd.Tag, "id", cmd.ID)
		cmd.Release()
		return false
	}
}

// RunWorker drains toWorker until stop is closed, running each Command's
// NRT stage and forwarding to toAudio when there is an RT stage to run.
// Intended to run as the body of the worker goroutine.
func (q *Queue) RunWorker(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case cmd := <-q.toWorker:
			q.runOne(cmd)
		}
	}
}

func (q *Queue) runOne(cmd *Command) {
	ok := true
	if cmd.NRT != nil {
		ok = cmd.NRT()
	}
	q.log.Debug("command nrt stage done", "instance", q.instanceID, "tag", cmd.Tag, "id", cmd.ID, "ok", ok)
	if !ok || cmd.RT == nil {
		cmd.Release()
		return
	}
	select {
	case q.toAudio <- cmd:
	default:
		// The audio thread isn't draining (instance likely torn down);
		// still release rather than leak the pooled Command.
		q.log.Warn("reply queue full, dropping reply", "instance", q.instanceID, "tag", cmd.Tag, "id", cmd.ID)
		cmd.Release()
	}
}

// DrainReplies runs the RT stage of every Command currently waiting on the
// return path and releases each one. Called once per audio-thread tick
// (spec.md: "the rt stage ... is observed by the audio thread strictly
// after the nrt stage completes").
func (q *Queue) DrainReplies() {
	for {
		select {
		case cmd := <-q.toAudio:
			ok := cmd.RT()
			q.log.Debug("command rt stage done", "instance", q.instanceID, "tag", cmd.Tag, "id", cmd.ID, "ok", ok)
			cmd.Release()
		default:
			return
		}
	}
}

// PostReply enqueues an RT-only reply directly onto the return path,
// skipping the worker leg entirely. Used when the worker thread itself
// (not a Command's nrt stage) needs to hand something back to the audio
// thread — e.g. a Listener Adapter callback invoked while running on the
// worker thread (spec.md §4.2). Non-blocking, same drop-and-log behavior
// as runOne's forward to toAudio.
func (q *Queue) PostReply(rt Stage) bool {
	cmd := q.New("listener_reply", nil, rt)
	select {
	case q.toAudio <- cmd:
		return true
	default:
		q.log.Warn("reply queue full, dropping listener reply", "instance", q.instanceID)
		cmd.Release()
		return false
	}
}

// Drain discards every Command still queued, on either leg, without running
// their stages. Called at engine teardown (spec.md §4.3: "Cancellation:
// there is none; pending Commands are drained at engine teardown").
func (q *Queue) Drain() {
	for {
		select {
		case cmd := <-q.toWorker:
			cmd.Release()
		case cmd := <-q.toAudio:
			cmd.Release()
		default:
			return
		}
	}
}
