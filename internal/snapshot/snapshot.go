// Package snapshot produces consistent copies of the catalog database
// and ships them to object storage.
//
// A snapshot is taken with VACUUM INTO, which writes a compacted,
// transactionally consistent copy of the live database without blocking
// readers. The copy is optionally snappy-compressed before upload.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/internal/storage"
)

// compressedSuffix marks snappy-framed snapshot objects.
const compressedSuffix = ".sz"

// Options configure a Snapshotter.
type Options struct {
	// Prefix is the object key prefix for uploads (default "snapshots").
	Prefix string

	// Compress enables snappy compression of the snapshot file.
	Compress bool

	// TempDir is where intermediate files are written (default os.TempDir).
	TempDir string
}

// Snapshotter creates, lists, and restores catalog snapshots.
type Snapshotter struct {
	db      *sql.DB // the store's write connection
	objects storage.ObjectStorage
	opts    Options
}

// New creates a Snapshotter over the store's write connection. db may
// be nil for restore- or list-only use; only Create needs it.
func New(db *sql.DB, objects storage.ObjectStorage, opts Options) *Snapshotter {
	if opts.Prefix == "" {
		opts.Prefix = "snapshots"
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Snapshotter{db: db, objects: objects, opts: opts}
}

// Create takes a snapshot and uploads it. Returns the object path.
func (s *Snapshotter) Create(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", cerrors.New(cerrors.ErrCategoryStorage, cerrors.CodeSnapshotFailed,
			"snapshotter has no database connection")
	}

	id := uuid.New().String()
	tmpPath := filepath.Join(s.opts.TempDir, "sneakerdb-snapshot-"+id+".db")
	defer os.Remove(tmpPath)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmpPath); err != nil {
		return "", cerrors.NewStorageError(cerrors.CodeSnapshotFailed, "vacuum into failed", err)
	}

	objectPath := fmt.Sprintf("%s/sneakers-%s-%s.db",
		s.opts.Prefix, time.Now().UTC().Format("20060102T150405Z"), id[:8])

	uploadPath := tmpPath
	if s.opts.Compress {
		compressedPath := tmpPath + compressedSuffix
		defer os.Remove(compressedPath)
		if err := compressFile(tmpPath, compressedPath); err != nil {
			return "", cerrors.NewStorageError(cerrors.CodeSnapshotFailed, "compression failed", err)
		}
		uploadPath = compressedPath
		objectPath += compressedSuffix
	}

	if err := s.objects.Upload(ctx, uploadPath, objectPath); err != nil {
		return "", cerrors.NewStorageError(cerrors.CodeSnapshotFailed, "upload failed", err)
	}

	log.Printf("snapshot: created %s", objectPath)
	return objectPath, nil
}

// Restore downloads a snapshot object and writes the database file to
// destPath. Refuses to overwrite an existing file: restoring over a
// live database is never safe.
func (s *Snapshotter) Restore(ctx context.Context, objectPath, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return cerrors.New(cerrors.ErrCategoryStorage, cerrors.CodeRestoreFailed,
			"destination already exists: "+destPath)
	}

	tmpPath := filepath.Join(s.opts.TempDir, "sneakerdb-restore-"+uuid.New().String())
	defer os.Remove(tmpPath)

	if err := s.objects.Download(ctx, objectPath, tmpPath); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return cerrors.New(cerrors.ErrCategoryStorage, cerrors.CodeObjectNotFound,
				"snapshot not found: "+objectPath)
		}
		return cerrors.NewStorageError(cerrors.CodeRestoreFailed, "download failed", err)
	}

	if strings.HasSuffix(objectPath, compressedSuffix) {
		if err := decompressFile(tmpPath, destPath); err != nil {
			return cerrors.NewStorageError(cerrors.CodeRestoreFailed, "decompression failed", err)
		}
		return nil
	}

	if err := copyFile(tmpPath, destPath); err != nil {
		return cerrors.NewStorageError(cerrors.CodeRestoreFailed, "copy failed", err)
	}
	return nil
}

// List returns snapshot object paths, newest first. Object names embed
// a UTC timestamp, so reverse-lexical order is reverse-chronological.
func (s *Snapshotter) List(ctx context.Context) ([]string, error) {
	objects, err := s.objects.ListObjects(ctx, s.opts.Prefix+"/")
	if err != nil {
		return nil, cerrors.NewStorageError(cerrors.CodeSnapshotFailed, "list failed", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(objects)))
	return objects, nil
}

func compressFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	w := snappy.NewBufferedWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func decompressFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, snappy.NewReader(src))
	return err
}

func copyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
