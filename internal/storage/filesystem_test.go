package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAndSanitize(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "merged_1_abc.mp4", []byte("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), key)); err != nil {
		t.Fatalf("written file missing: %v", err)
	}
}

func TestWriteRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"../escape.mp4", "a/../../escape.mp4", "", "."} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("key %q: expected rejection", key)
		}
	}
}

func TestUniqueNameNeverCollides(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		name := UniqueName("merged", ".mp4")
		if !strings.HasPrefix(name, "merged_") || !strings.HasSuffix(name, ".mp4") {
			t.Fatalf("unexpected name shape: %q", name)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate name produced: %q", name)
		}
		seen[name] = struct{}{}
	}
}
