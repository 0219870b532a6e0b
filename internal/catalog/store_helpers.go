package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const productColumns = "id, title, description, price_cents, status, category, tags_json, engine, source_job_id, source_subfolder, source_manifest_url, source_public_root, hero_image_url, sku, freeze_assets, version, created_at, updated_at"

func scanProduct(scanner interface{ Scan(dest ...any) error }) (*Product, error) {
	var (
		id           string
		title        string
		description  sql.NullString
		priceCents   int64
		status       string
		category     sql.NullString
		tagsJSON     sql.NullString
		engine       string
		sourceJobID  string
		subfolder    string
		manifestURL  sql.NullString
		publicRoot   sql.NullString
		heroImageURL sql.NullString
		sku          sql.NullString
		freeze       int64
		version      string
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&description,
		&priceCents,
		&status,
		&category,
		&tagsJSON,
		&engine,
		&sourceJobID,
		&subfolder,
		&manifestURL,
		&publicRoot,
		&heroImageURL,
		&sku,
		&freeze,
		&version,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	product := &Product{
		ID:                id,
		Title:             title,
		Description:       description.String,
		PriceCents:        priceCents,
		Status:            status,
		Category:          category.String,
		Engine:            engine,
		SourceJobID:       sourceJobID,
		SourceSubfolder:   subfolder,
		SourceManifestURL: manifestURL.String,
		SourcePublicRoot:  publicRoot.String,
		HeroImageURL:      heroImageURL.String,
		SKU:               sku.String,
		FreezeAssets:      freeze != 0,
		Version:           version,
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &product.Tags); err != nil {
			return nil, err
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		product.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		product.UpdatedAt = updated
	}
	return product, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func marshalTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
