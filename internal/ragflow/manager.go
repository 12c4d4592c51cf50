package ragflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEmbeddingModel = "BAAI/bge-large-zh-v1.5@BAAI"
	defaultChunkMethod    = "naive"
	datasetDescription    = "多页面维修案例文档，每页独立分块"

	// Large chunks keep each page document intact as a single chunk.
	chunkTokenNum = 1000

	documentStatusDone = "DONE"
)

const assistantPrompt = `# 挖掘机维修专家

你是一位经验丰富的挖掘机维修技术专家，专门解答挖掘机维修问题。请仔细阅读下方的知识库内容，并结合上下文回答用户问题。

## 核心要求

### 📋 回答结构
1. **问题识别**：确认故障类型和设备型号
2. **案例引用**：关联相关维修案例
3. **诊断步骤**：按简单到复杂顺序说明排查方法
4. **维修方案**：提供具体操作步骤和所需零件
5. **预防建议**：说明如何避免类似故障

### 🖼️ 图片链接处理（极其重要）
- **严格要求**：在回答中必须完整、原封不动地输出案例中的图片链接
- **格式保持**：<img src="http://localhost:9000/ragflow-demo/xxx.png" alt="维修图片" width="300">
- **禁止修改**：不得更改URL、文件名或任何参数
- **必要引用**：涉及维修步骤时，必须引用对应图片

### ⚠️ 重要提醒
- 只基于知识库案例回答，不做主观推测
- 如果知识库中没有答案，请明确告知。
- 强调安全第一，提醒专业人员操作

Here is the knowledge base:
{knowledge}
The above is the knowledge base.`

// Manager drives the knowledge-base lifecycle for one processed PDF:
// replace existing resources, upload the assembled documents, wait for
// parsing, and stand up the chat assistant.
type Manager struct {
	Client    *Client
	MaxWait   time.Duration
	PollEvery time.Duration
}

type Resources struct {
	Dataset   Dataset
	Assistant Chat
}

// CreateResources builds the dataset and assistant for the given document
// payloads. Empty datasetName/assistantName fall back to names derived from
// the PDF base name.
func (m *Manager) CreateResources(ctx context.Context, docs []DocumentBlob, pdfFilename, datasetName, assistantName string) (*Resources, error) {
	base := strings.TrimSuffix(filepath.Base(pdfFilename), filepath.Ext(pdfFilename))
	if datasetName == "" {
		datasetName = base + "_知识库"
	}
	if assistantName == "" {
		assistantName = base + "_助手"
	}

	slog.Info("Creating knowledge base resources", "dataset", datasetName, "assistant", assistantName, "documents", len(docs))

	m.deleteExisting(ctx, datasetName, assistantName)

	dataset, err := m.Client.CreateDataset(ctx, CreateDatasetRequest{
		Name:           datasetName,
		Description:    datasetDescription,
		EmbeddingModel: defaultEmbeddingModel,
		ChunkMethod:    defaultChunkMethod,
	})
	if err != nil {
		return nil, err
	}

	err = m.Client.UpdateDataset(ctx, dataset.ID, map[string]any{
		"parser_config": map[string]any{
			"chunk_token_num": chunkTokenNum,
			"html4excel":      false,
			"raptor":          map[string]any{"use_raptor": false},
		},
	})
	if err != nil {
		return nil, err
	}

	if _, err := m.Client.UploadDocuments(ctx, dataset.ID, docs); err != nil {
		return nil, err
	}

	uploaded, err := m.Client.ListDocuments(ctx, dataset.ID, "")
	if err != nil {
		return nil, err
	}

	docIDs := make([]string, 0, len(uploaded))
	for _, doc := range uploaded {
		docIDs = append(docIDs, doc.ID)
	}

	if len(docIDs) > 0 {
		if err := m.Client.ParseDocuments(ctx, dataset.ID, docIDs); err != nil {
			return nil, err
		}

		if m.WaitForParsing(ctx, dataset.ID, docIDs) {
			m.reportChunks(ctx, dataset.ID, docIDs)
		} else {
			slog.Warn("Parsing did not finish within the wait window", "dataset", dataset.ID, "maxWait", m.MaxWait)
		}
	}

	assistant, err := m.Client.CreateChat(ctx, assistantName, []string{dataset.ID})
	if err != nil {
		return nil, err
	}

	err = m.Client.UpdateChat(ctx, assistant.ID, map[string]any{
		"prompt": map[string]any{
			"prompt":     assistantPrompt,
			"show_quote": true,
			"top_n":      8,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant %s created but prompt configuration failed: %w", assistant.ID, err)
	}

	slog.Info("Knowledge base resources ready", "datasetId", dataset.ID, "assistantId", assistant.ID)

	return &Resources{Dataset: *dataset, Assistant: *assistant}, nil
}

// deleteExisting removes datasets and chats that share the target names so
// re-runs replace rather than duplicate. Cleanup failures are logged and
// creation proceeds.
func (m *Manager) deleteExisting(ctx context.Context, datasetName, assistantName string) {
	datasets, err := m.Client.ListDatasets(ctx, datasetName)
	if err != nil {
		slog.Warn("Failed to look up existing datasets", "name", datasetName, "error", err)
	} else {
		var ids []string
		for _, ds := range datasets {
			if ds.Name == datasetName {
				ids = append(ids, ds.ID)
			}
		}
		if len(ids) > 0 {
			slog.Info("Deleting existing datasets", "name", datasetName, "count", len(ids))
			if err := m.Client.DeleteDatasets(ctx, ids); err != nil {
				slog.Warn("Failed to delete existing datasets", "name", datasetName, "error", err)
			}
		}
	}

	chats, err := m.Client.ListChats(ctx, assistantName)
	if err != nil {
		slog.Warn("Failed to look up existing chats", "name", assistantName, "error", err)
		return
	}

	var ids []string
	for _, chat := range chats {
		if chat.Name == assistantName {
			ids = append(ids, chat.ID)
		}
	}
	if len(ids) > 0 {
		slog.Info("Deleting existing chat assistants", "name", assistantName, "count", len(ids))
		if err := m.Client.DeleteChats(ctx, ids); err != nil {
			slog.Warn("Failed to delete existing chats", "name", assistantName, "error", err)
		}
	}
}

// WaitForParsing polls until every document reports DONE or the wait window
// closes. Returns true if all documents finished.
func (m *Manager) WaitForParsing(ctx context.Context, datasetID string, docIDs []string) bool {
	deadline := time.Now().Add(m.MaxWait)

	for {
		allDone := true
		for _, id := range docIDs {
			docs, err := m.Client.ListDocuments(ctx, datasetID, id)
			if err != nil || len(docs) == 0 {
				allDone = false
				continue
			}

			slog.Info("Document parse status", "document", id, "status", docs[0].Run)
			if docs[0].Run != documentStatusDone {
				allDone = false
			}
		}

		if allDone {
			return true
		}
		if time.Now().Add(m.PollEvery).After(deadline) {
			return false
		}

		time.Sleep(m.PollEvery)
	}
}

func (m *Manager) reportChunks(ctx context.Context, datasetID string, docIDs []string) {
	total := 0
	for _, id := range docIDs {
		count, err := m.Client.CountChunks(ctx, datasetID, id)
		if err != nil {
			slog.Warn("Failed to count chunks", "document", id, "error", err)
			continue
		}
		slog.Info("Document parsed", "document", id, "chunks", count)
		total += count
	}
	slog.Info("Parsing complete", "dataset", datasetID, "totalChunks", total)
}
