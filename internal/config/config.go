// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // OKRD_DATABASE_URL (required)
	HTTPAddr    string // OKRD_HTTP_ADDR (default ":8080")
	NATSURL     string // OKRD_NATS_URL (optional, empty = no events)
	AuthToken   string // OKRD_AUTH_TOKEN (optional, empty = auth disabled)

	// Snapshot sync settings
	SyncInterval   time.Duration // OKRD_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // OKRD_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // OKRD_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // OKRD_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // OKRD_SYNC_S3_KEY (default "okr/backup.jsonl")
	SyncGitRepo    string        // OKRD_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // OKRD_SYNC_GIT_FILE (default "okr.jsonl")
	SyncGitBranch  string        // OKRD_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("OKRD_DATABASE_URL"),
		HTTPAddr:       envOrDefault("OKRD_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("OKRD_NATS_URL"),
		AuthToken:      os.Getenv("OKRD_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("OKRD_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("OKRD_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("OKRD_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("OKRD_SYNC_S3_KEY", "okr/backup.jsonl"),
		SyncGitRepo:    os.Getenv("OKRD_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("OKRD_SYNC_GIT_FILE", "okr.jsonl"),
		SyncGitBranch:  envOrDefault("OKRD_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("OKRD_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("OKRD_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("OKRD_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
