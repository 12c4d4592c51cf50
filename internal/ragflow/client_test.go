package ragflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, w http.ResponseWriter, code int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": "",
		"data":    data,
	}))
}

func TestClient_CreateDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/datasets", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req CreateDatasetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "manual_知识库", req.Name)
		assert.Equal(t, "naive", req.ChunkMethod)

		respond(t, w, 0, map[string]any{"id": "ds-1", "name": req.Name})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	dataset, err := client.CreateDataset(context.Background(), CreateDatasetRequest{
		Name:        "manual_知识库",
		ChunkMethod: "naive",
	})
	require.NoError(t, err)
	assert.Equal(t, "ds-1", dataset.ID)
}

func TestClient_ApiErrorCodeIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    102,
			"message": "Dataset name already exists",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	_, err := client.CreateDataset(context.Background(), CreateDatasetRequest{Name: "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 102")
	assert.Contains(t, err.Error(), "Dataset name already exists")
}

func TestClient_ListDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/datasets/ds-1/documents", r.URL.Path)
		assert.Equal(t, "doc-1", r.URL.Query().Get("id"))

		respond(t, w, 0, map[string]any{
			"docs":  []map[string]any{{"id": "doc-1", "name": "p1.md", "run": "DONE"}},
			"total": 1,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	docs, err := client.ListDocuments(context.Background(), "ds-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "DONE", docs[0].Run)
}

func TestClient_UploadDocuments_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["file"]
		require.Len(t, files, 2)
		assert.Equal(t, "manual_page1.md", files[0].Filename)
		assert.Equal(t, "manual_page2.md", files[1].Filename)

		respond(t, w, 0, []map[string]any{{"id": "doc-1"}, {"id": "doc-2"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	uploaded, err := client.UploadDocuments(context.Background(), "ds-1", []DocumentBlob{
		{Name: "manual_page1.md", Blob: []byte("第一页")},
		{Name: "manual_page2.md", Blob: []byte("第二页")},
	})
	require.NoError(t, err)
	assert.Len(t, uploaded, 2)
}

func TestManager_WaitForParsing_FinishesWhenDone(t *testing.T) {
	var polls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "RUNNING"
		if polls.Add(1) >= 3 {
			status = "DONE"
		}
		respond(t, w, 0, map[string]any{
			"docs": []map[string]any{{"id": "doc-1", "run": status}},
		})
	}))
	defer server.Close()

	manager := &Manager{
		Client:    NewClient(server.URL, "test-key"),
		MaxWait:   2 * time.Second,
		PollEvery: 10 * time.Millisecond,
	}

	done := manager.WaitForParsing(context.Background(), "ds-1", []string{"doc-1"})
	assert.True(t, done)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestManager_WaitForParsing_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, 0, map[string]any{
			"docs": []map[string]any{{"id": "doc-1", "run": "RUNNING"}},
		})
	}))
	defer server.Close()

	manager := &Manager{
		Client:    NewClient(server.URL, "test-key"),
		MaxWait:   50 * time.Millisecond,
		PollEvery: 10 * time.Millisecond,
	}

	done := manager.WaitForParsing(context.Background(), "ds-1", []string{"doc-1"})
	assert.False(t, done)
}
