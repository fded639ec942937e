package paramstore

import (
	"math"
	"testing"
)

func TestNewSlotsStartUnsetAndUnbound(t *testing.T) {
	s := New(3)
	for i := 0; i < 3; i++ {
		if !math.IsNaN(float64(s.Last(i))) {
			t.Errorf("slot %d last value = %v, want NaN", i, s.Last(i))
		}
		if s.Bus(i) != NoBus {
			t.Errorf("slot %d bus = %d, want NoBus", i, s.Bus(i))
		}
	}
}

func TestMapUnmap(t *testing.T) {
	s := New(2)
	s.Map(0, 7)
	if s.Bus(0) != 7 {
		t.Fatalf("Bus(0) = %d, want 7", s.Bus(0))
	}
	s.Unmap(0)
	if s.Bus(0) != NoBus {
		t.Fatalf("Bus(0) after Unmap = %d, want NoBus", s.Bus(0))
	}
}

func TestSetLast(t *testing.T) {
	s := New(1)
	s.SetLast(0, 0.5)
	if got := s.Last(0); got != 0.5 {
		t.Errorf("Last(0) = %v, want 0.5", got)
	}
}

func TestInRange(t *testing.T) {
	s := New(2)
	if !s.InRange(0) || !s.InRange(1) {
		t.Error("expected 0,1 in range")
	}
	if s.InRange(-1) || s.InRange(2) {
		t.Error("expected -1,2 out of range")
	}
}
