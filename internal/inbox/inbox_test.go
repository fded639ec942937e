package inbox

import (
	"sync"
	"testing"
	"time"
)

func TestPushThenDrainFIFO(t *testing.T) {
	b := New()
	b.Push(Event{Kind: KindParamAutomated, ParamIndex: 1, ParamValue: 0.1})
	b.Push(Event{Kind: KindParamAutomated, ParamIndex: 2, ParamValue: 0.2})

	events, ok := b.TryDrain()
	if !ok {
		t.Fatal("TryDrain failed with no contention")
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ParamIndex != 1 || events[1].ParamIndex != 2 {
		t.Errorf("events out of order: %+v", events)
	}
}

func TestDrainEmptiesQueue(t *testing.T) {
	b := New()
	b.Push(Event{Kind: KindMIDI})
	b.TryDrain()
	if b.Len() != 0 {
		t.Errorf("queue not emptied after drain, len=%d", b.Len())
	}
}

func TestTryDrainUnderContentionLeavesEventsQueued(t *testing.T) {
	b := New()
	b.Push(Event{Kind: KindSysex, Sysex: []byte{1, 2, 3}})

	// Simulate the GUI thread holding the lock (e.g. mid-Push) while the
	// audio thread tries to drain: it must not block.
	b.mu.Lock()
	defer b.mu.Unlock()

	done := make(chan struct{})
	var ok bool
	go func() {
		_, ok = b.TryDrain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("TryDrain blocked instead of returning immediately")
	}
	if ok {
		t.Error("TryDrain succeeded while lock was held")
	}
}

func TestConcurrentPushIsSafe(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Push(Event{Kind: KindParamAutomated, ParamIndex: int32(i)})
		}(i)
	}
	wg.Wait()
	if b.Len() != 50 {
		t.Errorf("Len() = %d, want 50", b.Len())
	}
}
