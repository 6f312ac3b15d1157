package plant

import (
	"context"
	"fmt"
	"os"
)

// FileDocumentStore reads instruction documents from the local filesystem.
type FileDocumentStore struct{}

// NewFileDocumentStore creates a filesystem-backed DocumentStore.
func NewFileDocumentStore() *FileDocumentStore {
	return &FileDocumentStore{}
}

func (s *FileDocumentStore) ReadText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %q: %w", path, err)
	}
	return string(data), nil
}
