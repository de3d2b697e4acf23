package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrDocumentNotFound is returned when no document has been saved under a key
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidKey is returned for keys that are not safe to use as a document name
var ErrInvalidKey = errors.New("invalid document key")

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DocumentRepository persists whole JSON documents under a name
type DocumentRepository interface {
	// Load decodes the document stored under key into v
	Load(ctx context.Context, key string, v any) error

	// Save replaces the document stored under key with v
	Save(ctx context.Context, key string, v any) error
}

// RepositoryError represents an error that occurred within a repository
type RepositoryError struct {
	// Op is the operation that failed
	Op string

	// Key is the document involved, if any
	Key string

	// Err is the underlying error
	Err error
}

// Error returns a string representation of the error
func (e *RepositoryError) Error() string {
	op := e.Op
	if e.Key != "" {
		op = fmt.Sprintf("%s %s", e.Op, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", op, e.Err)
	}
	return op
}

// Unwrap returns the underlying error
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func validateKey(op, key string) error {
	if !keyPattern.MatchString(key) {
		return &RepositoryError{Op: op, Key: key, Err: ErrInvalidKey}
	}
	return nil
}

func checkContext(ctx context.Context, op, key string) error {
	select {
	case <-ctx.Done():
		return &RepositoryError{Op: op, Key: key, Err: ctx.Err()}
	default:
		return nil
	}
}
