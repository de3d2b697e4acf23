package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Archiver_IncompleteConfig(t *testing.T) {
	_, err := NewS3Archiver(&Config{Endpoint: "http://localhost:9000", Bucket: "receipts"})
	assert.Error(t, err)

	_, err = NewS3Archiver(&Config{Endpoint: "http://localhost:9000", AccessKeyID: "id", AccessKeySecret: "secret"})
	assert.Error(t, err)
}

func TestS3Archiver_Archive(t *testing.T) {
	var (
		gotPath        string
		gotBody        []byte
		gotContentType string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	archiver, err := NewS3Archiver(&Config{
		Endpoint:        server.URL + "/",
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
		Bucket:          "receipts",
		Region:          "us-east-1",
	})
	require.NoError(t, err)

	url, err := archiver.Archive(context.Background(), "2024/03/p1.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "/receipts/2024/03/p1.pdf", gotPath)
	assert.Equal(t, "application/pdf", gotContentType)
	assert.Equal(t, []byte("%PDF-1.4"), gotBody)
	assert.Equal(t, server.URL+"/receipts/2024/03/p1.pdf", url)
}

func TestNopArchiver(t *testing.T) {
	url, err := NopArchiver{}.Archive(context.Background(), "p1.pdf", []byte("x"))
	assert.NoError(t, err)
	assert.Empty(t, url)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://abc.storage.supabase.co/storage/v1/object/public/receipts/2024-03-15/p1.pdf",
		objectURL("https://abc.storage.supabase.co/storage/v1/s3", "receipts", "2024-03-15/p1.pdf"),
	)
	assert.Equal(t,
		"http://minio:9000/receipts/p1.pdf",
		objectURL("http://minio:9000", "receipts", "p1.pdf"),
	)
}
