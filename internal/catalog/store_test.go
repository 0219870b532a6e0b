package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"surfacegate/internal/catalog"
	"surfacegate/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	product := testsupport.NewProduct(t, store, "job-100", "")

	fetched, err := store.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Test Product" {
		t.Fatalf("unexpected fetched product: %#v", fetched)
	}
	if fetched.Status != catalog.StatusDraft {
		t.Fatalf("expected draft status, got %q", fetched.Status)
	}
	if fetched.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestInsertProductDuplicateSourceJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewProduct(t, store, "job-200", "batch-a")

	dup := &catalog.Product{
		ID:              uuid.NewString(),
		Title:           "Second Attempt",
		Status:          catalog.StatusDraft,
		Engine:          "surface",
		SourceJobID:     "job-200",
		SourceSubfolder: "batch-a",
	}
	err := store.InsertProduct(ctx, dup)
	if !errors.Is(err, catalog.ErrDuplicateSourceJob) {
		t.Fatalf("expected ErrDuplicateSourceJob, got %v", err)
	}

	// Same job under a different subfolder is a distinct product.
	other := &catalog.Product{
		ID:              uuid.NewString(),
		Title:           "Other Batch",
		Status:          catalog.StatusDraft,
		Engine:          "surface",
		SourceJobID:     "job-200",
		SourceSubfolder: "batch-b",
	}
	if err := store.InsertProduct(ctx, other); err != nil {
		t.Fatalf("insert with different subfolder failed: %v", err)
	}
}

func TestFindBySourceJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	created := testsupport.NewProduct(t, store, "job-300", "")

	found, err := store.FindBySourceJob(ctx, "job-300", "")
	if err != nil {
		t.Fatalf("FindBySourceJob failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected to find product %s, got %#v", created.ID, found)
	}

	missing, err := store.FindBySourceJob(ctx, "job-never", "")
	if err != nil {
		t.Fatalf("FindBySourceJob failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown job, got %#v", missing)
	}
}

func TestProductTagsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	product := &catalog.Product{
		ID:          uuid.NewString(),
		Title:       "Tagged",
		Status:      catalog.StatusActive,
		Category:    "topography",
		Tags:        []string{"terrain", "3d-print"},
		PriceCents:  2499,
		Engine:      "surface",
		SourceJobID: "job-400",
	}
	if err := store.InsertProduct(ctx, product); err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(fetched.Tags) != 2 || fetched.Tags[0] != "terrain" {
		t.Fatalf("tags not preserved: %#v", fetched.Tags)
	}
	if fetched.PriceCents != 2499 {
		t.Fatalf("price not preserved: %d", fetched.PriceCents)
	}
	if fetched.Category != "topography" {
		t.Fatalf("category not preserved: %q", fetched.Category)
	}
}

func TestProductSourceFieldsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	product := &catalog.Product{
		ID:                uuid.NewString(),
		Title:             "Ridge Tile",
		Status:            catalog.StatusDraft,
		Engine:            "surface",
		SourceJobID:       "job-500",
		SourceSubfolder:   "batch-a",
		SourceManifestURL: "https://cdn.example/assets/surface/batch-a/job-500/job_manifest.json",
		SourcePublicRoot:  "https://cdn.example/assets/surface/batch-a/job-500",
		SKU:               "SG-RIDGE-500",
		FreezeAssets:      true,
	}
	if err := store.InsertProduct(ctx, product); err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.SourceManifestURL != product.SourceManifestURL {
		t.Fatalf("manifest url not preserved: %q", fetched.SourceManifestURL)
	}
	if fetched.SourcePublicRoot != product.SourcePublicRoot {
		t.Fatalf("public root not preserved: %q", fetched.SourcePublicRoot)
	}
	if fetched.SKU != "SG-RIDGE-500" {
		t.Fatalf("sku not preserved: %q", fetched.SKU)
	}
	if !fetched.FreezeAssets {
		t.Fatal("freeze flag not preserved")
	}
	if fetched.Version != catalog.DefaultVersion {
		t.Fatalf("version not defaulted: %q", fetched.Version)
	}
	if fetched.UpdatedAt.IsZero() || !fetched.UpdatedAt.Equal(fetched.CreatedAt) {
		t.Fatalf("updated_at not initialized from created_at: %v vs %v", fetched.UpdatedAt, fetched.CreatedAt)
	}
}

func TestInsertAndListAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	product := testsupport.NewProduct(t, store, "job-500", "")

	meta := catalog.AssetMeta{JobID: "job-500", Source: catalog.MetaSourceManifest, Freeze: true}
	assets := []catalog.Asset{
		{Kind: "hero", URL: "/assets/surface/job-500/previews/hero.png", Meta: meta},
		{Kind: "stl", URL: "/assets/surface/job-500/enclosure/enclosure.stl", Checksum: "abc", Size: 4096, Meta: meta},
		{Kind: "manifest", URL: "/assets/surface/job-500/job_manifest.json", Meta: meta},
	}
	if err := store.InsertAssets(ctx, product.ID, assets); err != nil {
		t.Fatalf("InsertAssets failed: %v", err)
	}

	stored, err := store.AssetsForProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("AssetsForProduct failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(stored))
	}
	if stored[0].Kind != "hero" || stored[0].Position != 0 {
		t.Fatalf("unexpected first asset: %#v", stored[0])
	}
	if stored[1].Checksum != "abc" || stored[1].Size != 4096 {
		t.Fatalf("asset metadata not preserved: %#v", stored[1])
	}
	if !stored[2].Meta.Freeze || stored[2].Meta.Source != catalog.MetaSourceManifest {
		t.Fatalf("meta json not preserved: %#v", stored[2].Meta)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.NewProduct(t, store, "job-601", "")
	testsupport.NewProduct(t, store, "job-602", "")

	products, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}
