package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalDocumentStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalDocumentStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Run("save and resolve", func(t *testing.T) {
		path, err := store.Save("worksheet.pdf", strings.NewReader("content"))
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if filepath.Dir(path) != root {
			t.Errorf("file stored outside root: %q", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("unexpected content %q", data)
		}

		resolved, err := store.Path("worksheet.pdf")
		if err != nil {
			t.Fatalf("failed to resolve: %v", err)
		}
		if resolved != path {
			t.Errorf("expected %q, got %q", path, resolved)
		}
	})

	t.Run("path traversal is stripped", func(t *testing.T) {
		path, err := store.Save("../../etc/passwd", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if path != filepath.Join(root, "passwd") {
			t.Errorf("traversal not neutralized: %q", path)
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		if _, err := store.Save("  ", strings.NewReader("x")); err == nil {
			t.Error("expected error for blank name")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := store.Path("nothing-here.pdf"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
