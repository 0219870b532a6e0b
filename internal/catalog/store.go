package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"surfacegate/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the database file.
func (s *Store) Path() string {
	return s.path
}

// InsertProduct persists a new product. A second insert for the same
// (source_job_id, source_subfolder) pair returns ErrDuplicateSourceJob.
func (s *Store) InsertProduct(ctx context.Context, product *Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	if product.ID == "" {
		return errors.New("product id is required")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}
	if product.Version == "" {
		product.Version = DefaultVersion
	}

	tagsJSON, err := marshalTags(product.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO products (
            id, title, description, price_cents, status, category, tags_json,
            engine, source_job_id, source_subfolder, source_manifest_url,
            source_public_root, hero_image_url, sku, freeze_assets, version,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		nullableString(product.Description),
		product.PriceCents,
		product.Status,
		nullableString(product.Category),
		nullableString(tagsJSON),
		product.Engine,
		product.SourceJobID,
		product.SourceSubfolder,
		nullableString(product.SourceManifestURL),
		nullableString(product.SourcePublicRoot),
		nullableString(product.HeroImageURL),
		nullableString(product.SKU),
		boolToInt(product.FreezeAssets),
		product.Version,
		product.CreatedAt.Format(time.RFC3339Nano),
		product.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSourceJob
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID fetches a product by identifier. Returns nil when not found.
func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// FindBySourceJob returns the product created from a given job and
// subfolder, or nil when the job was never promoted.
func (s *Store) FindBySourceJob(ctx context.Context, jobID, subfolder string) (*Product, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+productColumns+` FROM products WHERE source_job_id = ? AND source_subfolder = ? LIMIT 1`,
		jobID,
		subfolder,
	)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source job: %w", err)
	}
	return product, nil
}

// List returns all products ordered by creation time, newest first.
func (s *Store) List(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// InsertAssets attaches asset references to a product in a single
// transaction. Position follows slice order.
func (s *Store) InsertAssets(ctx context.Context, productID string, assets []Asset) error {
	if len(assets) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assets tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for position, asset := range assets {
		metaJSON, err := json.Marshal(asset.Meta)
		if err != nil {
			return fmt.Errorf("marshal asset meta: %w", err)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO product_assets (
                product_id, kind, url, checksum, size, position, meta_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			productID,
			asset.Kind,
			asset.URL,
			nullableString(asset.Checksum),
			asset.Size,
			position,
			string(metaJSON),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert asset %s: %w", asset.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assets: %w", err)
	}
	return nil
}

// AssetsForProduct returns a product's asset references in position order.
func (s *Store) AssetsForProduct(ctx context.Context, productID string) ([]Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, product_id, kind, url, checksum, size, position, meta_json, created_at
         FROM product_assets WHERE product_id = ? ORDER BY position, id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var (
			asset      Asset
			checksum   sql.NullString
			metaJSON   sql.NullString
			createdRaw string
		)
		if err := rows.Scan(
			&asset.ID,
			&asset.ProductID,
			&asset.Kind,
			&asset.URL,
			&checksum,
			&asset.Size,
			&asset.Position,
			&metaJSON,
			&createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		asset.Checksum = checksum.String
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &asset.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal asset meta: %w", err)
			}
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			asset.CreatedAt = created
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}
