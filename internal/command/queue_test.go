package command

import (
	"testing"
	"time"
)

func TestSubmitFIFOOrder(t *testing.T) {
	q := NewQueue("inst-1", 8, nil)
	stop := make(chan struct{})
	go q.RunWorker(stop)
	defer close(stop)

	var order []int
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		i := i
		cmd := q.New("test", func() bool {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
			return true
		}, nil)
		if !q.Submit(cmd) {
			t.Fatalf("Submit %d failed", i)
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for commands to run")
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want sequential 0..4", order)
		}
	}
}

func TestRTStageRunsAfterNRT(t *testing.T) {
	q := NewQueue("inst-1", 8, nil)
	stop := make(chan struct{})
	go q.RunWorker(stop)
	defer close(stop)

	nrtDone := false
	rtDone := false

	cmd := q.New("test", func() bool {
		nrtDone = true
		return true
	}, func() bool {
		if !nrtDone {
			t.Error("RT stage ran before NRT stage completed")
		}
		rtDone = true
		return true
	})
	q.Submit(cmd)

	// Give the worker a moment to run NRT and forward to toAudio.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		q.DrainReplies()
		if rtDone {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !rtDone {
		t.Fatal("RT stage never ran")
	}
}

func TestFailedNRTSkipsRT(t *testing.T) {
	q := NewQueue("inst-1", 8, nil)
	stop := make(chan struct{})
	go q.RunWorker(stop)
	defer close(stop)

	rtRan := false
	nrtRan := make(chan struct{})
	cmd := q.New("test", func() bool {
		close(nrtRan)
		return false
	}, func() bool {
		rtRan = true
		return true
	})
	q.Submit(cmd)

	select {
	case <-nrtRan:
	case <-time.After(time.Second):
		t.Fatal("NRT never ran")
	}
	time.Sleep(20 * time.Millisecond)
	q.DrainReplies()
	if rtRan {
		t.Error("RT stage ran despite NRT returning false")
	}
}

func TestDrainDiscardsPending(t *testing.T) {
	q := NewQueue("inst-1", 8, nil)
	ran := false
	cmd := q.New("test", func() bool { ran = true; return true }, nil)
	q.toWorker <- cmd // enqueue without starting a worker
	q.Drain()
	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Error("drained command should not have run")
	}
}
