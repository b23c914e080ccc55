// Package config provides unified configuration for the sneakerdb CLI
// and library consumers.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all sneakerdb settings.
type Config struct {
	// DataDir is the base directory for the database and local snapshots
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DBPath is the catalog database file. Defaults to DataDir/sneakers.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// Search configuration
	Search SearchConfig `json:"search" yaml:"search"`

	// Bloom filter configuration
	Bloom BloomConfig `json:"bloom" yaml:"bloom"`

	// Snapshot configuration
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`
}

// SearchConfig holds full-text query settings. Ranking weights are part
// of the schema, not configuration.
type SearchConfig struct {
	// Limit is the default number of results per query
	Limit int `json:"limit" yaml:"limit"`
}

// BloomConfig sizes the SKU membership filter.
type BloomConfig struct {
	// ExpectedSKUs is the expected catalog size
	ExpectedSKUs int `json:"expected_skus" yaml:"expected_skus"`

	// TargetFPR is the target false positive rate
	TargetFPR float64 `json:"target_fpr" yaml:"target_fpr"`
}

// SnapshotConfig holds snapshot shipping configuration.
type SnapshotConfig struct {
	// StorageType is the snapshot destination: local, s3
	StorageType string `json:"storage_type" yaml:"storage_type"`

	// Path is the local snapshot directory (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is the object key prefix for snapshot uploads
	Prefix string `json:"prefix" yaml:"prefix"`

	// Compress enables snappy compression of snapshot files
	Compress bool `json:"compress" yaml:"compress"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 snapshot storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/sneakerdb",
		Search: SearchConfig{
			Limit: 25,
		},
		Bloom: BloomConfig{
			ExpectedSKUs: 50000,
			TargetFPR:    0.01,
		},
		Snapshot: SnapshotConfig{
			StorageType: "local",
			Prefix:      "snapshots",
			Compress:    true,
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/sneakerdb"
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "sneakers.db")
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = filepath.Join(c.DataDir, "snapshots")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Snapshot.StorageType != "local" && c.Snapshot.StorageType != "s3" {
		return fmt.Errorf("invalid snapshot storage type: %s (must be local or s3)", c.Snapshot.StorageType)
	}

	if c.Snapshot.StorageType == "s3" && c.Snapshot.S3.Bucket == "" {
		return fmt.Errorf("snapshot.s3.bucket is required when storage type is s3")
	}

	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}

	if c.Bloom.TargetFPR <= 0 || c.Bloom.TargetFPR >= 1 {
		return fmt.Errorf("bloom.target_fpr must be in (0, 1), got %g", c.Bloom.TargetFPR)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the SNEAKERDB_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SNEAKERDB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SNEAKERDB_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	// Search configuration
	if v := os.Getenv("SNEAKERDB_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Limit = n
		} else {
			log.Printf("config: ignoring invalid SNEAKERDB_SEARCH_LIMIT %q", v)
		}
	}

	// Bloom configuration
	if v := os.Getenv("SNEAKERDB_BLOOM_EXPECTED_SKUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bloom.ExpectedSKUs = n
		} else {
			log.Printf("config: ignoring invalid SNEAKERDB_BLOOM_EXPECTED_SKUS %q", v)
		}
	}
	if v := os.Getenv("SNEAKERDB_BLOOM_TARGET_FPR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Bloom.TargetFPR = f
		} else {
			log.Printf("config: ignoring invalid SNEAKERDB_BLOOM_TARGET_FPR %q", v)
		}
	}

	// Snapshot configuration
	if v := os.Getenv("SNEAKERDB_SNAPSHOT_STORAGE_TYPE"); v != "" {
		cfg.Snapshot.StorageType = v
	}
	if v := os.Getenv("SNEAKERDB_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("SNEAKERDB_SNAPSHOT_PREFIX"); v != "" {
		cfg.Snapshot.Prefix = v
	}
	if v := os.Getenv("SNEAKERDB_SNAPSHOT_COMPRESS"); v != "" {
		cfg.Snapshot.Compress = v == "true" || v == "1"
	}
	if v := os.Getenv("SNEAKERDB_S3_BUCKET"); v != "" {
		cfg.Snapshot.S3.Bucket = v
	}
	if v := os.Getenv("SNEAKERDB_S3_REGION"); v != "" {
		cfg.Snapshot.S3.Region = v
	}
	if v := os.Getenv("SNEAKERDB_S3_ENDPOINT"); v != "" {
		cfg.Snapshot.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Snapshot.StorageType == "local" {
		dirs = append(dirs, c.Snapshot.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
