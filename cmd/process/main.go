package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ragkb-backend/internal/config"
	"ragkb-backend/internal/extraction"
	"ragkb-backend/internal/ragflow"
	"ragkb-backend/internal/storage"
)

func main() {
	apiKey := flag.String("api-key", "", "RAGFlow API key (defaults to RAGFLOW_API_KEY)")
	bucketName := flag.String("bucket", "", "custom bucket name (defaults to a name derived from the PDF filename)")
	datasetName := flag.String("dataset", "", "custom knowledge base name")
	assistantName := flag.String("assistant", "", "custom chat assistant name")
	skipKB := flag.Bool("skip-kb", false, "extract and upload images only, skip knowledge base creation")
	outputDir := flag.String("output-dir", "", "directory for generated document files (defaults to OUTPUT_DIR)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <pdf-path>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	store, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
		Endpoint:        cfg.MinioEndpoint,
		Region:          cfg.MinioRegion,
		AccessKeyID:     cfg.MinioAccessKey,
		SecretAccessKey: cfg.MinioSecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}

	bucket := *bucketName
	if bucket == "" {
		bucket = storage.DeriveBucketName(filepath.Base(pdfPath))
	}

	ctx := context.Background()

	log.Printf("Processing %s (bucket %s)", pdfPath, bucket)

	pipeline := extraction.NewPipeline(store, bucket)
	result, err := pipeline.Process(ctx, pdfPath)
	if err != nil {
		// Terminal: every salvage tier was exhausted, no documents exist.
		// Images uploaded before the failure stay in the object store.
		log.Fatalf("Failed to process %s: %v", pdfPath, err)
	}

	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	docs := buildPayloads(result.Output, base)

	files, err := writeOutputs(docs, cfg.OutputDir)
	if err != nil {
		log.Fatalf("Failed to write document files: %v", err)
	}

	fmt.Printf("Extracted %d image(s):\n", len(result.Images))
	for _, img := range result.Images {
		fmt.Printf("  - %s: %s\n", img.Filename, img.URL)
	}
	fmt.Printf("Generated %d document file(s):\n", len(files))
	for _, file := range files {
		fmt.Printf("  - %s\n", file)
	}

	if *skipKB {
		fmt.Println("Skipped knowledge base creation (-skip-kb)")
		return
	}

	key := *apiKey
	if key == "" {
		key = cfg.RagflowAPIKey
	}
	if key == "" {
		log.Fatalf("RAGFlow API key required: pass -api-key or set RAGFLOW_API_KEY (generated files are kept)")
	}

	manager := &ragflow.Manager{
		Client:    ragflow.NewClient(cfg.RagflowBaseURL, key),
		MaxWait:   cfg.ParseMaxWait,
		PollEvery: cfg.ParsePollEvery,
	}

	resources, err := manager.CreateResources(ctx, docs, filepath.Base(pdfPath), *datasetName, *assistantName)
	if err != nil {
		log.Fatalf("Failed to create knowledge base resources (generated files are kept): %v", err)
	}

	fmt.Printf("Knowledge base ready:\n")
	fmt.Printf("  - dataset %s (%s)\n", resources.Dataset.Name, resources.Dataset.ID)
	fmt.Printf("  - assistant %s (%s)\n", resources.Assistant.Name, resources.Assistant.ID)
}

// buildPayloads maps the pipeline output to named documents: one file per
// page in maintenance-case mode, a single enhanced file otherwise.
func buildPayloads(output extraction.Output, base string) []ragflow.DocumentBlob {
	switch out := output.(type) {
	case extraction.PageOutput:
		docs := make([]ragflow.DocumentBlob, 0, len(out.Pages))
		for _, page := range out.Pages {
			docs = append(docs, ragflow.DocumentBlob{
				Name: fmt.Sprintf("%s_page%d.md", base, page.Page),
				Blob: []byte(page.Content),
			})
		}
		return docs
	case extraction.MergedOutput:
		return []ragflow.DocumentBlob{{
			Name: base + "_enhanced.md",
			Blob: []byte(out.Text),
		}}
	default:
		return nil
	}
}

func writeOutputs(docs []ragflow.DocumentBlob, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(docs))
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Name)
		if err := os.WriteFile(path, doc.Blob, 0o644); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}
