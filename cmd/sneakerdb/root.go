package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alexpicon/sneakerdb/internal/catalog"
	"github.com/alexpicon/sneakerdb/internal/config"
	"github.com/alexpicon/sneakerdb/internal/search"
	"github.com/alexpicon/sneakerdb/internal/snapshot"
	"github.com/alexpicon/sneakerdb/internal/storage"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfgFile string
	dataDir string
	dbPath  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sneakerdb",
	Short: "Administer a sneaker catalog database",
	Long: `sneakerdb manages a SQLite sneaker catalog: reference data,
sneaker records with 360 image sequences, and a bm25-ranked full-text
search index over names, brands, silhouettes, colorways, and SKUs.

Examples:

  sneakerdb init
  sneakerdb search air max
  sneakerdb get CW2288-111
  sneakerdb snapshot
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, continuing")
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}

		config.LoadFromEnv(cfg)
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		cfg.Resolve()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return cfg.EnsureDirectories()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory for data files")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "catalog database file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(brandsCmd)
	rootCmd.AddCommand(gendersCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the catalog with configured bloom sizing.
func openStore() (*catalog.Store, error) {
	return catalog.OpenWithOptions(cfg.DBPath, catalog.Options{
		ExpectedSKUs: cfg.Bloom.ExpectedSKUs,
		BloomFPR:     cfg.Bloom.TargetFPR,
	})
}

// openIndex binds a search index to an open store.
func openIndex(store *catalog.Store) *search.Index {
	return search.NewIndex(store.Reader(), store.Writer())
}

// openSnapshotStorage wires the configured object storage backend.
func openSnapshotStorage(ctx context.Context) (storage.ObjectStorage, error) {
	var objects storage.ObjectStorage
	var err error

	switch cfg.Snapshot.StorageType {
	case "s3":
		objects, err = storage.NewS3Storage(ctx, cfg.Snapshot.S3.Bucket, storage.S3Config{
			Region:   cfg.Snapshot.S3.Region,
			Endpoint: cfg.Snapshot.S3.Endpoint,
		})
	default:
		objects, err = storage.NewLocalStorage(cfg.Snapshot.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot storage: %w", err)
	}
	return objects, nil
}

// openSnapshotter binds snapshot storage to an open store for the
// snapshot-taking path. Restore and list use the storage alone so they
// never create a catalog database as a side effect.
func openSnapshotter(ctx context.Context, store *catalog.Store) (*snapshot.Snapshotter, error) {
	objects, err := openSnapshotStorage(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.New(store.Writer(), objects, snapshotOptions()), nil
}

func snapshotOptions() snapshot.Options {
	return snapshot.Options{
		Prefix:   cfg.Snapshot.Prefix,
		Compress: cfg.Snapshot.Compress,
	}
}
