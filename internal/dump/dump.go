// Package dump reads and writes the catalog interchange format: one
// JSON-encoded entry per line, the whole stream snappy-framed. Exports
// carry the reference tables first so an import can replay the file
// into an empty database without tripping foreign keys.
package dump

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/golang/snappy"

	"github.com/alexpicon/sneakerdb/internal/catalog"
	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/pkg/types"
)

// header is the first line of every dump: reference data plus a format
// version for forward compatibility.
type header struct {
	Version int      `json:"version"`
	Brands  []string `json:"brands"`
	Genders []string `json:"genders"`
}

const formatVersion = 1

// Export writes the full catalog to w. The stream is snappy-framed:
// a header line, then one catalog entry per line, in SKU order.
func Export(ctx context.Context, store *catalog.Store, w io.Writer) error {
	brands, err := store.ListBrands(ctx)
	if err != nil {
		return err
	}
	genders, err := store.ListGenders(ctx)
	if err != nil {
		return err
	}

	sw := snappy.NewBufferedWriter(w)
	enc := json.NewEncoder(sw)

	if err := enc.Encode(header{Version: formatVersion, Brands: brands, Genders: genders}); err != nil {
		return cerrors.NewInternalError("failed to encode dump header", err)
	}

	count := 0
	err = store.ForEachEntry(ctx, func(entry *types.Entry) error {
		count++
		return enc.Encode(entry)
	})
	if err != nil {
		return err
	}

	if err := sw.Close(); err != nil {
		return cerrors.NewInternalError("failed to flush dump", err)
	}
	log.Printf("dump: exported %d entries", count)
	return nil
}

// Import replays a dump from r into the store. Reference rows already
// present are skipped; a duplicate SKU aborts the import. Finishes with
// a full index rebuild and optimize, matching the bulk-load path.
func Import(ctx context.Context, store *catalog.Store, index Reindexer, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(snappy.NewReader(r))
	// Story fields can be long; allow lines up to 4MB.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, cerrors.NewInternalError("failed to read dump header", err)
		}
		return 0, cerrors.New(cerrors.ErrCategoryValidation, cerrors.CodeUnexpected, "dump is empty")
	}

	var hdr header
	if err := json.Unmarshal(scanner.Bytes(), &hdr); err != nil {
		return 0, cerrors.NewInternalError("failed to decode dump header", err)
	}
	if hdr.Version != formatVersion {
		return 0, cerrors.New(cerrors.ErrCategoryValidation, cerrors.CodeUnexpected,
			fmt.Sprintf("unsupported dump version %d", hdr.Version))
	}

	if err := store.InsertBrands(ctx, hdr.Brands); err != nil {
		return 0, err
	}
	if err := store.InsertGenders(ctx, hdr.Genders); err != nil {
		return 0, err
	}

	count := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry types.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return count, cerrors.NewInternalError(
				fmt.Sprintf("failed to decode dump entry %d", count+1), err)
		}
		if err := store.InsertEntry(ctx, &entry); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, cerrors.NewInternalError("failed to read dump", err)
	}

	if index != nil {
		if err := index.Rebuild(ctx); err != nil {
			return count, err
		}
		if err := index.Optimize(ctx); err != nil {
			return count, err
		}
	}

	log.Printf("dump: imported %d entries", count)
	return count, nil
}

// Reindexer is the slice of the search index the import path needs.
type Reindexer interface {
	Rebuild(ctx context.Context) error
	Optimize(ctx context.Context) error
}
