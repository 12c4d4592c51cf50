package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client is a thin wrapper over the RAGFlow HTTP API. Every response uses
// the {code, message, data} envelope; a non-zero code is an API error even
// on HTTP 200.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetAuthToken(apiKey),
	}
}

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DocumentInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Run  string `json:"run"`
}

type Chat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DocumentBlob is a named document payload for upload.
type DocumentBlob struct {
	Name string
	Blob []byte
}

type CreateDatasetRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	ChunkMethod    string `json:"chunk_method,omitempty"`
}

func (c *Client) decode(resp *resty.Response, err error, out any) error {
	if err != nil {
		return fmt.Errorf("ragflow request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ragflow request failed: %s: %s", resp.Status(), resp.String())
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("failed to decode ragflow response: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("ragflow api error (code %d): %s", envelope.Code, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode ragflow response data: %w", err)
		}
	}
	return nil
}

func (c *Client) ListDatasets(ctx context.Context, name string) ([]Dataset, error) {
	req := c.http.R().SetContext(ctx)
	if name != "" {
		req.SetQueryParam("name", name)
	}

	var datasets []Dataset
	resp, err := req.Get("/api/v1/datasets")
	if err := c.decode(resp, err, &datasets); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

func (c *Client) CreateDataset(ctx context.Context, req CreateDatasetRequest) (*Dataset, error) {
	var dataset Dataset
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/api/v1/datasets")
	if err := c.decode(resp, err, &dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset %s: %w", req.Name, err)
	}
	return &dataset, nil
}

func (c *Client) DeleteDatasets(ctx context.Context, ids []string) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(map[string]any{"ids": ids}).Delete("/api/v1/datasets")
	if err := c.decode(resp, err, nil); err != nil {
		return fmt.Errorf("failed to delete datasets: %w", err)
	}
	return nil
}

func (c *Client) UpdateDataset(ctx context.Context, id string, patch map[string]any) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(patch).Put("/api/v1/datasets/" + id)
	if err := c.decode(resp, err, nil); err != nil {
		return fmt.Errorf("failed to update dataset %s: %w", id, err)
	}
	return nil
}

func (c *Client) UploadDocuments(ctx context.Context, datasetID string, docs []DocumentBlob) ([]DocumentInfo, error) {
	req := c.http.R().SetContext(ctx)
	for _, doc := range docs {
		req.SetFileReader("file", doc.Name, bytes.NewReader(doc.Blob))
	}

	var uploaded []DocumentInfo
	resp, err := req.Post("/api/v1/datasets/" + datasetID + "/documents")
	if err := c.decode(resp, err, &uploaded); err != nil {
		return nil, fmt.Errorf("failed to upload documents to dataset %s: %w", datasetID, err)
	}
	return uploaded, nil
}

func (c *Client) ListDocuments(ctx context.Context, datasetID, documentID string) ([]DocumentInfo, error) {
	req := c.http.R().SetContext(ctx)
	if documentID != "" {
		req.SetQueryParam("id", documentID)
	}

	var data struct {
		Docs []DocumentInfo `json:"docs"`
	}
	resp, err := req.Get("/api/v1/datasets/" + datasetID + "/documents")
	if err := c.decode(resp, err, &data); err != nil {
		return nil, fmt.Errorf("failed to list documents in dataset %s: %w", datasetID, err)
	}
	return data.Docs, nil
}

// ParseDocuments triggers asynchronous parsing; completion is observed by
// polling ListDocuments.
func (c *Client) ParseDocuments(ctx context.Context, datasetID string, documentIDs []string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]any{"document_ids": documentIDs}).
		Post("/api/v1/datasets/" + datasetID + "/chunks")
	if err := c.decode(resp, err, nil); err != nil {
		return fmt.Errorf("failed to start parsing in dataset %s: %w", datasetID, err)
	}
	return nil
}

func (c *Client) CountChunks(ctx context.Context, datasetID, documentID string) (int, error) {
	var data struct {
		Total int `json:"total"`
	}
	resp, err := c.http.R().SetContext(ctx).
		Get("/api/v1/datasets/" + datasetID + "/documents/" + documentID + "/chunks")
	if err := c.decode(resp, err, &data); err != nil {
		return 0, fmt.Errorf("failed to count chunks for document %s: %w", documentID, err)
	}
	return data.Total, nil
}

func (c *Client) ListChats(ctx context.Context, name string) ([]Chat, error) {
	req := c.http.R().SetContext(ctx)
	if name != "" {
		req.SetQueryParam("name", name)
	}

	var chats []Chat
	resp, err := req.Get("/api/v1/chats")
	if err := c.decode(resp, err, &chats); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, name string, datasetIDs []string) (*Chat, error) {
	var chat Chat
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]any{"name": name, "dataset_ids": datasetIDs}).
		Post("/api/v1/chats")
	if err := c.decode(resp, err, &chat); err != nil {
		return nil, fmt.Errorf("failed to create chat %s: %w", name, err)
	}
	return &chat, nil
}

func (c *Client) UpdateChat(ctx context.Context, id string, patch map[string]any) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(patch).Put("/api/v1/chats/" + id)
	if err := c.decode(resp, err, nil); err != nil {
		return fmt.Errorf("failed to update chat %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteChats(ctx context.Context, ids []string) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(map[string]any{"ids": ids}).Delete("/api/v1/chats")
	if err := c.decode(resp, err, nil); err != nil {
		return fmt.Errorf("failed to delete chats: %w", err)
	}
	return nil
}
