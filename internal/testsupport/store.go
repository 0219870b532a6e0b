package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"surfacegate/internal/catalog"
	"surfacegate/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProduct inserts a minimal product for tests and returns it.
func NewProduct(t testing.TB, store *catalog.Store, jobID, subfolder string) *catalog.Product {
	t.Helper()

	product := &catalog.Product{
		ID:              uuid.NewString(),
		Title:           "Test Product",
		Status:          catalog.StatusDraft,
		Engine:          "surface",
		SourceJobID:     jobID,
		SourceSubfolder: subfolder,
	}
	if err := store.InsertProduct(context.Background(), product); err != nil {
		t.Fatalf("store.InsertProduct: %v", err)
	}
	return product
}
