package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioRegion    string
	DefaultBucket  string
	RagflowBaseURL string
	RagflowAPIKey  string
	ParseMaxWait   time.Duration
	ParsePollEvery time.Duration
	OutputDir      string
}

// ErrObjectStoreConfig indicates missing object store credentials. The
// pipeline cannot upload images without them, so startup fails immediately.
type ErrObjectStoreConfig struct {
	Missing []string
}

func (e *ErrObjectStoreConfig) Error() string {
	return fmt.Sprintf("missing object store configuration: %v", e.Missing)
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists (useful for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, continuing with environment variables")
	}

	cfg := &Config{
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		DefaultBucket:  getEnv("MINIO_BUCKET_NAME", "ragflow-images"),
		RagflowBaseURL: getEnv("RAGFLOW_BASE_URL", "http://localhost:8080"),
		RagflowAPIKey:  getEnv("RAGFLOW_API_KEY", ""),
		ParseMaxWait:   getEnvSeconds("RAGFLOW_PARSE_MAX_WAIT", 300),
		ParsePollEvery: getEnvSeconds("RAGFLOW_PARSE_POLL_INTERVAL", 10),
		OutputDir:      getEnv("OUTPUT_DIR", "."),
	}

	var missing []string
	if cfg.MinioEndpoint == "" {
		missing = append(missing, "MINIO_ENDPOINT")
	}
	if cfg.MinioAccessKey == "" {
		missing = append(missing, "MINIO_ACCESS_KEY")
	}
	if cfg.MinioSecretKey == "" {
		missing = append(missing, "MINIO_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, &ErrObjectStoreConfig{Missing: missing}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	raw := getEnv(key, strconv.Itoa(fallback))
	secs, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid %s value '%s', using default %d", key, raw, fallback)
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}
