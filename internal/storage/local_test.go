package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestObjectStore(t *testing.T) (*LocalObjectStore, string) {
	t.Helper()
	dir := t.TempDir()
	objectStore, err := NewLocalObjectStore(dir)
	require.NoError(t, err)
	return objectStore, dir
}

func TestLocalObjectStore_PutObject(t *testing.T) {
	objectStore, baseDir := setupTestObjectStore(t)

	bucket := "test-bucket"
	key := "doc_page1_img1_v1.png"
	content := []byte("fake image bytes")

	url, err := objectStore.PutObject(context.Background(), bucket, key, bytes.NewReader(content), "image/png")
	require.NoError(t, err)
	assert.Equal(t, objectStore.BucketURL(bucket)+"/"+key, url)

	data, err := os.ReadFile(filepath.Join(baseDir, bucket, key))
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalObjectStore_EnsureBucket(t *testing.T) {
	objectStore, baseDir := setupTestObjectStore(t)

	require.NoError(t, objectStore.EnsureBucket(context.Background(), "new-bucket"))

	info, err := os.Stat(filepath.Join(baseDir, "new-bucket"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Creating it again must not error
	require.NoError(t, objectStore.EnsureBucket(context.Background(), "new-bucket"))
}

func TestLocalObjectStore_SetPublicRead(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)
	// No policy concept locally, must be a no-op
	require.NoError(t, objectStore.SetPublicRead(context.Background(), "any-bucket"))
}

func TestLocalObjectStore_BucketURL(t *testing.T) {
	objectStore, baseDir := setupTestObjectStore(t)
	assert.Equal(t, "file://"+filepath.Join(baseDir, "b"), objectStore.BucketURL("b"))
}
