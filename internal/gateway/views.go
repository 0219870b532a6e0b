package gateway

import (
	"time"

	"surfacegate/internal/assets"
	"surfacegate/internal/catalog"
)

type healthResponse struct {
	Status  string   `json:"status"`
	Engines []string `json:"engines"`
}

// AssetView is one resolved artifact in an asset listing response.
type AssetView struct {
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Checksum string `json:"checksum,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// JobAssetsResponse lists the resolved artifacts of one job.
type JobAssetsResponse struct {
	JobID          string      `json:"job_id"`
	Subfolder      string      `json:"subfolder,omitempty"`
	BasePath       string      `json:"base_path"`
	PublicRoot     string      `json:"public_root,omitempty"`
	ManifestSource string      `json:"manifest_source"`
	Assets         []AssetView `json:"assets"`
}

// LatestJobResponse summarizes the most recently published job.
type LatestJobResponse struct {
	JobID       string `json:"job_id"`
	Subfolder   string `json:"subfolder,omitempty"`
	Status      string `json:"status"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	ManifestURL string `json:"manifest_url"`
}

// LatestJobsResponse lists recently published jobs, newest first.
type LatestJobsResponse struct {
	Jobs []LatestJobResponse `json:"jobs"`
}

// ProductView is the JSON shape of a catalog product.
type ProductView struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	PriceCents        int64    `json:"price_cents"`
	Status            string   `json:"status"`
	Category          string   `json:"category,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Engine            string   `json:"engine"`
	SourceJobID       string   `json:"source_job_id"`
	SourceSubfolder   string   `json:"source_subfolder,omitempty"`
	SourceManifestURL string   `json:"source_manifest_url,omitempty"`
	SourcePublicRoot  string   `json:"source_public_root,omitempty"`
	HeroImageURL      string   `json:"hero_image_url,omitempty"`
	SKU               string   `json:"sku,omitempty"`
	FreezeAssets      bool     `json:"freeze_assets,omitempty"`
	Version           string   `json:"version"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// ProductAssetView is one stored asset reference of a product.
type ProductAssetView struct {
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Checksum string `json:"checksum,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Position int    `json:"position"`
	Freeze   bool   `json:"freeze,omitempty"`
}

// ProductResponse is a single product with its assets.
type ProductResponse struct {
	Product ProductView        `json:"product"`
	Assets  []ProductAssetView `json:"assets,omitempty"`
}

// ProductListResponse is the product listing payload.
type ProductListResponse struct {
	Products []ProductView `json:"products"`
}

func productView(p *catalog.Product) ProductView {
	return ProductView{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		Status:            p.Status,
		Category:          p.Category,
		Tags:              p.Tags,
		Engine:            p.Engine,
		SourceJobID:       p.SourceJobID,
		SourceSubfolder:   p.SourceSubfolder,
		SourceManifestURL: p.SourceManifestURL,
		SourcePublicRoot:  p.SourcePublicRoot,
		HeroImageURL:      p.HeroImageURL,
		SKU:               p.SKU,
		FreezeAssets:      p.FreezeAssets,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func productAssetViews(items []catalog.Asset) []ProductAssetView {
	if len(items) == 0 {
		return nil
	}
	out := make([]ProductAssetView, 0, len(items))
	for _, asset := range items {
		out = append(out, ProductAssetView{
			Kind:     asset.Kind,
			URL:      asset.URL,
			Checksum: asset.Checksum,
			Size:     asset.Size,
			Position: asset.Position,
			Freeze:   asset.Meta.Freeze,
		})
	}
	return out
}

func assetViews(derived *assets.Derived) []AssetView {
	out := make([]AssetView, 0, len(derived.Artifacts))
	for _, artifact := range derived.Artifacts {
		out = append(out, AssetView{
			Kind:     string(artifact.Kind),
			URL:      artifact.URL,
			Checksum: artifact.Checksum,
			Size:     artifact.Size,
		})
	}
	return out
}
