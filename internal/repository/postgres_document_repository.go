package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements DocumentRepository on a jsonb table
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentRepository creates a new PostgreSQL document repository
func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

// Load reads the document stored under key
func (r *PostgresDocumentRepository) Load(ctx context.Context, key string, v any) error {
	if err := validateKey("load_document", key); err != nil {
		return err
	}

	var data []byte
	err := r.pool.QueryRow(ctx, `
		SELECT body FROM documents WHERE key = $1
	`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &RepositoryError{Op: "load_document", Key: key, Err: ErrDocumentNotFound}
		}
		return &RepositoryError{
			Op:  "load_document",
			Key: key,
			Err: fmt.Errorf("failed to query document: %w", err),
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

// Save upserts the document stored under key
func (r *PostgresDocumentRepository) Save(ctx context.Context, key string, v any) error {
	if err := validateKey("save_document", key); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return &RepositoryError{
			Op:  "save_document",
			Key: key,
			Err: fmt.Errorf("failed to serialize document: %w", err),
		}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`, key, data)
	if err != nil {
		return &RepositoryError{
			Op:  "save_document",
			Key: key,
			Err: fmt.Errorf("failed to upsert document: %w", err),
		}
	}

	return nil
}
