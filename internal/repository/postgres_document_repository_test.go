package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/market-receipts-service/internal/database"
)

func newPostgresRepo(t *testing.T) *PostgresDocumentRepository {
	t.Helper()
	dbURL := os.Getenv("POSTGRES_DB_URL")
	if dbURL == "" {
		t.Skip("POSTGRES_DB_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, dbURL, database.WithMaxConns(2))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Migrate(ctx)
	require.NoError(t, err)
	return NewPostgresDocumentRepository(db.GetPool())
}

func testKey(t *testing.T, repo *PostgresDocumentRepository) string {
	t.Helper()
	key := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = repo.pool.Exec(context.Background(), `DELETE FROM documents WHERE key = $1`, key)
	})
	return key
}

func TestPostgresDocumentRepository_SaveAndLoad(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	key := testKey(t, repo)

	want := document{Name: "compras", Items: []string{"Arroz", "Feijão"}, Index: map[string]int{"Arroz": 1}}
	require.NoError(t, repo.Save(ctx, key, want))

	var got document
	require.NoError(t, repo.Load(ctx, key, &got))
	assert.Equal(t, want, got)

	want.Items = []string{"Café"}
	require.NoError(t, repo.Save(ctx, key, want))
	require.NoError(t, repo.Load(ctx, key, &got))
	assert.Equal(t, []string{"Café"}, got.Items)
}

func TestPostgresDocumentRepository_LoadMissing(t *testing.T) {
	repo := newPostgresRepo(t)
	key := testKey(t, repo)

	var got document
	err := repo.Load(context.Background(), key, &got)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "load_document", repoErr.Op)
	assert.Equal(t, key, repoErr.Key)
}

func TestPostgresDocumentRepository_RejectsUnsafeKeys(t *testing.T) {
	// keys are validated before the pool is touched
	repo := NewPostgresDocumentRepository(nil)

	for _, key := range []string{"", "../etc/passwd", "Purchases"} {
		assert.ErrorIs(t, repo.Save(context.Background(), key, document{}), ErrInvalidKey, key)

		var got document
		assert.ErrorIs(t, repo.Load(context.Background(), key, &got), ErrInvalidKey, key)
	}
}
