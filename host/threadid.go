package host

import (
	"runtime"
	"strconv"
)

// goroutineID returns the calling goroutine's runtime id by parsing the
// "goroutine N [running]:" header runtime.Stack always writes first. Go
// exposes no public thread/goroutine-id API, unlike the currentThreadId()
// the Listener Adapter compares against in spec.md §4.2; this is the
// closest stdlib equivalent.
//
// Only called at thread-binding points (bindAudioThread, the worker
// goroutine's entry, and every Listener Adapter callback to classify its
// origin) — never inside Next's per-sample/per-block signal path itself,
// and the backing array is fixed-size so it does not escape to the heap.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	// b starts with "goroutine 123 [running]:\n"; skip "goroutine ".
	const prefix = "goroutine "
	if len(b) <= len(prefix) {
		return 0
	}
	b = b[len(prefix):]
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
