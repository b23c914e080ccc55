package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexpicon/sneakerdb/internal/catalog"
	cerrors "github.com/alexpicon/sneakerdb/internal/errors"
	"github.com/alexpicon/sneakerdb/pkg/types"
)

func openSeededIndex(t *testing.T) (*catalog.Store, *Index) {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "search_test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.InsertBrands(ctx, []string{"NIKE", "ADIDAS", "SAUCONY"}))
	require.NoError(t, store.InsertGenders(ctx, []string{"MEN", "WOMEN"}))

	sneakers := []types.Sneaker{
		{SKU: "CW2288-111", Brand: "NIKE", Gender: "MEN", Name: "Air Force 1 '07",
			Silhouette: "Air Force 1", Colorway: "White/White", ReleaseYear: 2020},
		{SKU: "DD1391-100", Brand: "NIKE", Gender: "MEN", Name: "Dunk Low Retro",
			Silhouette: "Dunk", Colorway: "Black/White", ReleaseYear: 2021},
		{SKU: "GZ5541", Brand: "ADIDAS", Gender: "WOMEN", Name: "Forum Low",
			Silhouette: "Forum", Colorway: "Cloud White", ReleaseYear: 2021},
		{SKU: "S70787-1", Brand: "SAUCONY", Gender: "MEN", Name: "Jazz Original Été",
			Silhouette: "Jazz", Colorway: "Café au Lait", ReleaseYear: 2019},
		{SKU: "CZ0790-001", Brand: "NIKE", Gender: "MEN", Name: "Air Max 90",
			Silhouette: "Air Max", Colorway: "Infrared", ReleaseYear: 2020},
	}
	for i := range sneakers {
		require.NoError(t, store.Insert(ctx, &sneakers[i]))
	}

	return store, NewIndex(store.Reader(), store.Writer())
}

func skus(results []types.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.SKU
	}
	return out
}

func TestIndex_ExactNameRanksFirst(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	results, err := ix.Query(ctx, "Air Force 1 '07", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	if results[0].SKU != "CW2288-111" {
		t.Errorf("top result: got %s, want CW2288-111 (all: %v)", results[0].SKU, skus(results))
	}
	if results[0].Score <= 0 {
		t.Errorf("score should be positive, got %f", results[0].Score)
	}
}

func TestIndex_ScoresDescend(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	results, err := ix.Query(ctx, "air", 10)
	require.NoError(t, err)
	require.True(t, len(results) >= 2, "want both Air sneakers, got %v", skus(results))
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %v", i, results)
		}
	}
}

func TestIndex_StemmedVariantMatches(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	// Porter stemming: "dunks" reduces to "dunk".
	results, err := ix.Query(ctx, "dunks", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results, "plural form should match the indexed name")
	if results[0].SKU != "DD1391-100" {
		t.Errorf("got %v, want DD1391-100 first", skus(results))
	}
}

func TestIndex_DiacriticsStripped(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	// "Été" is indexed; the bare form must still match.
	results, err := ix.Query(ctx, "ete", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results, "diacritic-stripped query should match")
	if results[0].SKU != "S70787-1" {
		t.Errorf("got %v, want S70787-1 first", skus(results))
	}

	// And the accented form matches too.
	results, err = ix.Query(ctx, "café", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestIndex_NameOutweighsColorway(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	// "white" appears in GZ5541's name context only via colorway, but in
	// CW2288-111's colorway twice; "forum" is a name hit. A name match
	// must outrank colorway-only matches for the same term.
	results, err := ix.Query(ctx, "forum white", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	if results[0].SKU != "GZ5541" {
		t.Errorf("name+colorway match should rank first, got %v", skus(results))
	}
}

func TestIndex_NameOutweighsSKU(t *testing.T) {
	store, ix := openSeededIndex(t)
	ctx := context.Background()

	// "legacy" appears in one sneaker's name and in another's SKU; the
	// name hit carries five times the weight and must rank first.
	named := types.Sneaker{SKU: "HQ4356", Brand: "NIKE", Gender: "MEN",
		Name: "Court Legacy", Silhouette: "Court", ReleaseYear: 2022}
	bySKU := types.Sneaker{SKU: "LEGACY-001", Brand: "ADIDAS", Gender: "MEN",
		Name: "Gel Lyte III", Silhouette: "Gel Lyte", ReleaseYear: 2022}
	require.NoError(t, store.Insert(ctx, &named))
	require.NoError(t, store.Insert(ctx, &bySKU))

	results, err := ix.Query(ctx, "legacy", 10)
	require.NoError(t, err)
	require.True(t, len(results) >= 2, "both sneakers should match, got %v", skus(results))
	if results[0].SKU != "HQ4356" {
		t.Errorf("name match should outrank SKU match, got %v", skus(results))
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	_, err := ix.Query(ctx, "   ", 10)
	if cerrors.GetCode(err) != cerrors.CodeEmptyQuery {
		t.Fatalf("expected EMPTY_QUERY, got %v", err)
	}
}

func TestIndex_OperatorInputIsLiteral(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	// FTS5 syntax in user input must not reach the parser.
	for _, q := range []string{`air NOT force`, `name:air`, `air*`, `"air`, `(air OR dunk)`} {
		if _, err := ix.Query(ctx, q, 10); err != nil {
			t.Errorf("query %q should be treated literally, got error: %v", q, err)
		}
	}
}

func TestIndex_DeleteRemovesFromIndex(t *testing.T) {
	store, ix := openSeededIndex(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "DD1391-100"))

	results, err := ix.Query(ctx, "dunk", 10)
	require.NoError(t, err)
	for _, r := range results {
		if r.SKU == "DD1391-100" {
			t.Error("deleted sneaker still present in search results")
		}
	}
}

func TestIndex_UpsertRefreshesIndex(t *testing.T) {
	store, ix := openSeededIndex(t)
	ctx := context.Background()

	updated := types.Sneaker{
		SKU: "DD1391-100", Brand: "NIKE", Gender: "MEN",
		Name: "Dunk Low Panda", Silhouette: "Dunk", Colorway: "Black/White",
		ReleaseYear: 2021,
	}
	require.NoError(t, store.Upsert(ctx, &updated))

	results, err := ix.Query(ctx, "panda", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results, "updated name should be searchable")
	if results[0].SKU != "DD1391-100" {
		t.Errorf("got %v, want DD1391-100 first", skus(results))
	}

	// The old name token no longer matches this row exclusively via
	// "retro".
	results, err = ix.Query(ctx, "retro", 10)
	require.NoError(t, err)
	for _, r := range results {
		if r.SKU == "DD1391-100" {
			t.Error("stale tokens survived the upsert")
		}
	}
}

func TestIndex_RebuildAndIntegrity(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.Rebuild(ctx))
	require.NoError(t, ix.Optimize(ctx))
	require.NoError(t, ix.IntegrityCheck(ctx))

	// Everything must still be findable after a rebuild.
	results, err := ix.Query(ctx, "air max", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	if results[0].SKU != "CZ0790-001" {
		t.Errorf("got %v, want CZ0790-001 first", skus(results))
	}
}

func TestIndex_LimitApplied(t *testing.T) {
	_, ix := openSeededIndex(t)
	ctx := context.Background()

	results, err := ix.Query(ctx, "nike", 2)
	require.NoError(t, err)
	if len(results) > 2 {
		t.Errorf("limit 2 returned %d results", len(results))
	}
}
