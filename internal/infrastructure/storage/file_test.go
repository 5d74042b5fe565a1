package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set(ctx, "teams", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "active-team", []byte(`{"teamId":10}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A fresh store over the same file sees everything.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	value, ok, err := reopened.Get(ctx, "teams")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"a":1}` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := reopened.Delete(ctx, "teams"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "teams"); ok {
		t.Fatalf("expected key to be gone")
	}

	final, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	if _, ok, _ := final.Get(ctx, "teams"); ok {
		t.Fatalf("delete should persist")
	}
	if _, ok, _ := final.Get(ctx, "active-team"); !ok {
		t.Fatalf("remaining key should persist")
	}
}

func TestFileStore_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deep", "state.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set(context.Background(), "k", []byte(`1`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected storage file on disk: %v", err)
	}
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("corrupt file must not fail startup: %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "teams"); ok {
		t.Fatalf("corrupt file should start empty")
	}
}

func TestFileStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set(ctx, "k", []byte(`"abc"`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, _, _ := store.Get(ctx, "k")
	value[1] = 'x'

	again, _, _ := store.Get(ctx, "k")
	if string(again) != `"abc"` {
		t.Fatalf("stored value mutated through a read: %s", again)
	}
}

func TestFileStore_RejectsEmptyPathAndKey(t *testing.T) {
	t.Parallel()

	if _, err := NewFileStore(""); err == nil {
		t.Fatalf("expected error for empty path")
	}

	store, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := store.Set(context.Background(), "", []byte(`1`)); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
