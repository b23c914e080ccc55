package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog_test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedReference(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.InsertBrands(ctx, []string{"NIKE", "ADIDAS", "JORDAN"}); err != nil {
		t.Fatalf("failed to seed brands: %v", err)
	}
	if err := store.InsertGenders(ctx, []string{"MEN", "WOMEN", "UNISEX"}); err != nil {
		t.Fatalf("failed to seed genders: %v", err)
	}
}

func testSneaker() types.Sneaker {
	return types.Sneaker{
		SKU:                  "CW2288-111",
		Brand:                "NIKE",
		Colorway:             "White/White",
		EstimatedMarketValue: 120,
		Gender:               "MEN",
		ImageOriginal:        "https://img.example/cw2288-111.jpg",
		ImageSmall:           "https://img.example/cw2288-111_s.jpg",
		ImageThumbnail:       "https://img.example/cw2288-111_t.jpg",
		LinkStockX:           "https://stockx.example/air-force-1",
		Name:                 "Air Force 1 '07",
		ReleaseDate:          "2020-03-15",
		ReleaseYear:          2020,
		RetailPrice:          90,
		Silhouette:           "Air Force 1",
		Story:                "The classic all-white AF1.",
	}
}

func TestStore_InsertAndGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	want := testSneaker()
	require.NoError(t, store.Insert(ctx, &want))

	got, err := store.GetBySKU(ctx, want.SKU)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestStore_GetMissingSKU(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.GetBySKU(ctx, "NOPE-000")
	if !cerrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_InsertUnknownBrand(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	s.Brand = "YEEZY"
	err := store.Insert(ctx, &s)
	if !cerrors.IsForeignKey(err) {
		t.Fatalf("expected FOREIGN_KEY, got %v", err)
	}
}

func TestStore_InsertUnknownGender(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	s.Gender = "KIDS"
	err := store.Insert(ctx, &s)
	if !cerrors.IsForeignKey(err) {
		t.Fatalf("expected FOREIGN_KEY, got %v", err)
	}
}

func TestStore_InsertNegativeReleaseYear(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	s.ReleaseYear = -1990
	err := store.Insert(ctx, &s)
	if cerrors.GetCode(err) != cerrors.CodeInvalidReleaseYear {
		t.Fatalf("expected INVALID_RELEASE_YEAR, got %v", err)
	}
}

func TestStore_InsertDuplicateSKU(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	require.NoError(t, store.Insert(ctx, &s))

	err := store.Insert(ctx, &s)
	if !cerrors.IsDuplicateKey(err) {
		t.Fatalf("expected DUPLICATE_KEY, got %v", err)
	}
}

func TestStore_UpsertInsertsAndUpdates(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	require.NoError(t, store.Upsert(ctx, &s))

	s.RetailPrice = 110
	s.Story = "Price bump."
	require.NoError(t, store.Upsert(ctx, &s))

	got, err := store.GetBySKU(ctx, s.SKU)
	require.NoError(t, err)
	assert.Equal(t, 110, got.RetailPrice)
	assert.Equal(t, "Price bump.", got.Story)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_DeleteCascadesImages(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	entry := types.Entry{
		Sneaker: testSneaker(),
		Images: []types.Image360{
			{SKU: "CW2288-111", Position: 0, Image: "https://img.example/0.jpg"},
			{SKU: "CW2288-111", Position: 1, Image: "https://img.example/1.jpg"},
			{SKU: "CW2288-111", Position: 2, Image: "https://img.example/2.jpg"},
		},
	}
	require.NoError(t, store.InsertEntry(ctx, &entry))

	require.NoError(t, store.Delete(ctx, "CW2288-111"))

	// No orphan image rows may remain.
	var orphans int
	err := store.Reader().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images_360 WHERE sku = ?`, "CW2288-111").Scan(&orphans)
	require.NoError(t, err)
	assert.Equal(t, 0, orphans)

	_, err = store.GetBySKU(ctx, "CW2288-111")
	if !cerrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
}

func TestStore_DeleteMissingSKU(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Delete(ctx, "NOPE-000")
	if !cerrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_ListImagesOrdered(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	// Insert frames out of order; reads must come back sorted.
	entry := types.Entry{
		Sneaker: testSneaker(),
		Images: []types.Image360{
			{SKU: "CW2288-111", Position: 2, Image: "https://img.example/2.jpg"},
			{SKU: "CW2288-111", Position: 0, Image: "https://img.example/0.jpg"},
			{SKU: "CW2288-111", Position: 1, Image: "https://img.example/1.jpg"},
		},
	}
	require.NoError(t, store.InsertEntry(ctx, &entry))

	images, err := store.ListImages(ctx, "CW2288-111")
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		if img.Position != i {
			t.Errorf("image %d has position %d, want %d", i, img.Position, i)
		}
	}
}

func TestStore_ListImagesMissingSKU(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.ListImages(ctx, "NOPE-000")
	if !cerrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_ReferenceData(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertBrand(ctx, "NIKE"))
	err := store.InsertBrand(ctx, "NIKE")
	if !cerrors.IsDuplicateKey(err) {
		t.Fatalf("expected DUPLICATE_KEY, got %v", err)
	}

	// Bulk load tolerates repeats.
	require.NoError(t, store.InsertBrands(ctx, []string{"NIKE", "ADIDAS"}))

	brands, err := store.ListBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADIDAS", "NIKE"}, brands)

	exists, err := store.BrandExists(ctx, "ADIDAS")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.BrandExists(ctx, "PUMA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_DeleteReferencedBrandFails(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	s := testSneaker()
	require.NoError(t, store.Insert(ctx, &s))

	err := store.DeleteBrand(ctx, "NIKE")
	if !cerrors.IsForeignKey(err) {
		t.Fatalf("expected FOREIGN_KEY while brand is referenced, got %v", err)
	}

	// After the sneaker goes away the brand can be removed.
	require.NoError(t, store.Delete(ctx, s.SKU))
	require.NoError(t, store.DeleteBrand(ctx, "NIKE"))

	err = store.DeleteBrand(ctx, "NIKE")
	if !cerrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_FilterWarmOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen_test.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	seedReference(t, store)
	s := testSneaker()
	require.NoError(t, store.Insert(ctx, &s))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetBySKU(ctx, s.SKU)
	require.NoError(t, err)
	assert.Equal(t, s, *got)
}

func TestStore_ForEachEntry(t *testing.T) {
	store := openTestStore(t)
	seedReference(t, store)
	ctx := context.Background()

	first := testSneaker()
	second := testSneaker()
	second.SKU = "DD1391-100"
	second.Name = "Dunk Low Retro"
	require.NoError(t, store.Insert(ctx, &first))
	require.NoError(t, store.InsertEntry(ctx, &types.Entry{
		Sneaker: second,
		Images:  []types.Image360{{SKU: second.SKU, Position: 0, Image: "https://img.example/d0.jpg"}},
	}))

	var skus []string
	err := store.ForEachEntry(ctx, func(e *types.Entry) error {
		skus = append(skus, e.Sneaker.SKU)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CW2288-111", "DD1391-100"}, skus)
}
