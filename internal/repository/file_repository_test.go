package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	Name  string         `json:"name"`
	Items []string       `json:"items"`
	Index map[string]int `json:"index"`
}

func TestFileRepository_SaveAndLoad(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := document{Name: "compras", Items: []string{"Arroz", "Feijão"}, Index: map[string]int{"Arroz": 1}}
	require.NoError(t, repo.Save(ctx, "purchases", want))

	var got document
	require.NoError(t, repo.Load(ctx, "purchases", &got))
	assert.Equal(t, want, got)

	// overwrite
	want.Items = []string{"Café"}
	require.NoError(t, repo.Save(ctx, "purchases", want))
	require.NoError(t, repo.Load(ctx, "purchases", &got))
	assert.Equal(t, []string{"Café"}, got.Items)
}

func TestFileRepository_LoadMissing(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	var got document
	err = repo.Load(context.Background(), "shopping-lists", &got)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	var repoErr *RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "load_document", repoErr.Op)
	assert.Equal(t, "shopping-lists", repoErr.Key)
}

func TestFileRepository_LoadCorrupted(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "documents", "purchases.json"), []byte("{"), 0644))

	var got document
	err = repo.Load(context.Background(), "purchases", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileRepository_RejectsUnsafeKeys(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "Purchases", "a/b"} {
		err := repo.Save(context.Background(), key, document{})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileRepository_CanceledContext(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = repo.Save(ctx, "purchases", document{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileRepository_ConcurrentSaves(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, "purchases", document{Index: map[string]int{"n": i}}))
		}(i)
	}
	wg.Wait()

	var got document
	require.NoError(t, repo.Load(ctx, "purchases", &got))
	assert.Contains(t, got.Index, "n")
}
