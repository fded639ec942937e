package registry

import (
	"context"
	"path/filepath"
	"testing"

	"pluginhost/internal/backend"
)

func testInfo(path string) backend.Info {
	return backend.Info{
		Path:          path,
		Name:          "Test Synth",
		Vendor:        "Example",
		Kind:          backend.KindV2,
		NumInputs:     0,
		NumOutputs:    2,
		NumParameters: 2,
		Parameters: []backend.ParamInfo{
			{ID: 0, Name: "Cutoff"},
			{ID: 1, Name: "Resonance"},
		},
	}
}

func TestMemoryRegistryPutGet(t *testing.T) {
	r := NewMemory()
	info := testInfo("/plugins/synth.vst")

	if err := r.Put(context.Background(), info.Path, info); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := r.Get(info.Path)
	if !ok {
		t.Fatal("expected a cache hit after Put")
	}
	if got.Name != info.Name || len(got.Parameters) != len(info.Parameters) {
		t.Fatalf("got %+v, want %+v", got, info)
	}
}

func TestMemoryRegistryMiss(t *testing.T) {
	r := NewMemory()
	if _, ok := r.Get("/nope"); ok {
		t.Fatal("expected a miss for an unknown path")
	}
	if _, err := r.GetErr("/nope"); err == nil {
		t.Fatal("expected GetErr to report ErrNotFound")
	}
}

func TestSQLiteRegistryPersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "registry.db")
	info := testInfo("/plugins/reverb.vst3")

	r1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	if err := r1.Put(context.Background(), info.Path, info); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := r1.Close(); err != nil {
		t.Fatalf("close registry: %v", err)
	}

	r2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen registry: %v", err)
	}
	t.Cleanup(func() { _ = r2.Close() })

	got, ok := r2.Get(info.Path)
	if !ok {
		t.Fatal("expected the reopened registry to preload the cached description")
	}
	if got.Name != info.Name || got.NumParameters != info.NumParameters {
		t.Fatalf("got %+v, want %+v", got, info)
	}
}

func TestForgetRemovesEntry(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "registry.db")
	info := testInfo("/plugins/delay.vst3")

	r, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	if err := r.Put(context.Background(), info.Path, info); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := r.Forget(context.Background(), info.Path); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, ok := r.Get(info.Path); ok {
		t.Fatal("expected entry to be gone after Forget")
	}
}
