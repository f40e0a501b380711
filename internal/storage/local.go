package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStore persists uploaded lesson materials and hands back the path
// strings stored on the records. Only paths cross this boundary, never bytes.
type DocumentStore interface {
	// Save writes the upload under its original filename and returns the
	// stored path.
	Save(name string, r io.Reader) (string, error)
	// Path resolves a stored filename for download.
	Path(name string) (string, error)
}

// LocalDocumentStore keeps documents on the local disk under one root
// directory, keyed by original filename.
type LocalDocumentStore struct {
	root string
}

func NewLocalDocumentStore(root string) (*LocalDocumentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document root: %w", err)
	}
	return &LocalDocumentStore{root: root}, nil
}

func (s *LocalDocumentStore) Save(name string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid file name")
	}

	path := filepath.Join(s.root, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

func (s *LocalDocumentStore) Path(name string) (string, error) {
	name = filepath.Base(name)
	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document not found: %w", err)
	}
	return path, nil
}
