// Package command implements the async command path between the audio
// thread and the worker thread (spec.md §4.3): a single-producer (audio)/
// single-consumer (worker) queue carrying Commands, each with a worker-side
// stage and an optional audio-side reply stage.
//
// Command payloads are meant to be allocated once at submission time and
// never reallocated mid-flight (spec.md: "RT-allocation discipline").
// Go has no realtime allocator to hand-roll against; a sync.Pool free list
// gives the same shape — Commands are recycled instead of garbage collected
// under steady-state load — which is the same "don't allocate on the hot
// path" discipline the teacher applies to captureLoop/playbackLoop (reused
// pcm/opusBuf slices across every 20ms tick rather than allocating fresh
// ones per frame).
package command

import (
	"github.com/google/uuid"
)

// Stage is one half of a Command's execution: either the worker-thread
// ("nrt", non-realtime) function or the audio-thread ("rt") follow-up.
// Returning false aborts the command (the RT stage, if any, is skipped and
// the Command is released without running it), so nothing is reported back
// to the audio thread. Stages that must reply on failure (e.g. Open's
// BackendLoadFailure, spec.md §7) return true and report from their RT
// stage instead.
type Stage func() bool

// Command is a unit of work submitted by the audio thread and drained, in
// FIFO order relative to other Commands from the same instance, by the
// worker thread.
type Command struct {
	// ID correlates this command's nrt/rt stage log lines (DESIGN.md:
	// "command correlation ids").
	ID uuid.UUID

	// Tag names the operation for logging (e.g. "open", "set_param").
	Tag string

	// InstanceID identifies which host.Instance submitted this command,
	// for logging only — it does not affect ordering (ordering is
	// per-queue, and each instance should use its own Queue).
	InstanceID string

	// NRT runs on the worker thread. Required.
	NRT Stage

	// RT runs on the audio thread after NRT returns true. Optional: nil
	// means the command has no audio-thread follow-up (e.g. an async
	// reset or a show_editor toggle).
	RT Stage

	// free, if set, returns the Command's backing payload to a pool once
	// both stages have run. Not set by callers directly; see Pool.
	free func(*Command)
}

// Release returns the Command to its originating Pool, if any. Must be
// called only after NRT has completed if there is no RT stage, or after RT
// has completed if there is one — never before the last stage that will
// ever run on this Command.
func (c *Command) Release() {
	if c.free != nil {
		f := c.free
		*c = Command{}
		f(c)
	}
}
