package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository implements DocumentRepository using the local filesystem for storage
type FileRepository struct {
	baseDir string
	mutex   sync.RWMutex
}

// NewFileRepository creates a new file-based document repository
func NewFileRepository(baseDir string) (*FileRepository, error) {
	// Ensure documents directory exists
	if err := os.MkdirAll(filepath.Join(baseDir, "documents"), 0755); err != nil {
		return nil, &RepositoryError{
			Op:  "create_repository",
			Err: fmt.Errorf("failed to create documents directory: %w", err),
		}
	}

	return &FileRepository{
		baseDir: baseDir,
	}, nil
}

// Load reads the document stored under key
func (r *FileRepository) Load(ctx context.Context, key string, v any) error {
	if err := checkContext(ctx, "load_document", key); err != nil {
		return err
	}
	if err := validateKey("load_document", key); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RepositoryError{Op: "load_document", Key: key, Err: ErrDocumentNotFound}
		}
		return &RepositoryError{
			Op:  "load_document",
			Key: key,
			Err: fmt.Errorf("failed to read document file: %w", err),
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &RepositoryError{
			Op:  "load_document",
			Key: key,
			Err: fmt.Errorf("failed to deserialize document: %w", err),
		}
	}

	return nil
}

// Save writes the document atomically: it is written to a temporary file and
// then renamed over the previous version.
func (r *FileRepository) Save(ctx context.Context, key string, v any) error {
	if err := checkContext(ctx, "save_document", key); err != nil {
		return err
	}
	if err := validateKey("save_document", key); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &RepositoryError{
			Op:  "save_document",
			Key: key,
			Err: fmt.Errorf("failed to serialize document: %w", err),
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	target := r.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &RepositoryError{
			Op:  "save_document",
			Key: key,
			Err: fmt.Errorf("failed to write document file: %w", err),
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return &RepositoryError{
			Op:  "save_document",
			Key: key,
			Err: fmt.Errorf("failed to replace document file: %w", err),
		}
	}

	return nil
}

func (r *FileRepository) path(key string) string {
	return filepath.Join(r.baseDir, "documents", key+".json")
}
