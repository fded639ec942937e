package window

import (
	"testing"
	"time"
)

func TestOpenFutureRoundTrip(t *testing.T) {
	f := NewOpenFuture()
	w := &fakeWindow{}

	go func() {
		f.Fulfill(w, nil)
	}()

	res := f.Result()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Window != w {
		t.Fatal("got a different window than was fulfilled")
	}
}

func TestOpenFutureCarriesError(t *testing.T) {
	f := NewOpenFuture()
	wantErr := errTest{}

	go f.Fulfill(nil, wantErr)

	res := f.Result()
	if res.Err != wantErr {
		t.Fatalf("Err = %v, want %v", res.Err, wantErr)
	}
	if res.Window != nil {
		t.Fatal("expected nil window alongside an error")
	}
}

func TestFakeBackendCreate(t *testing.T) {
	b := NewFake()
	w, err := b.Create(nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w.SetTitle("Synth 1")
	w.Show()
	if !w.(*fakeWindow).shown {
		t.Error("expected window to be shown")
	}
}

func TestFakeBackendRunReturnsOnQuit(t *testing.T) {
	b := NewFake()
	done := make(chan struct{})
	go func() {
		b.Run(make(chan struct{}))
		close(done)
	}()
	b.Quit()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
