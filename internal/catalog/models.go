package catalog

import "time"

// Product statuses. New products default to draft.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// ValidStatus reports whether a product status is one of the known values.
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusActive, StatusArchived:
		return true
	}
	return false
}

// New products without a caller-chosen category or version get these.
const (
	DefaultCategory = "uncategorized"
	DefaultVersion  = "1.0.0"
)

// Product is one catalog entry created by promoting a completed job. The
// source fields record which manifest it was derived from.
type Product struct {
	ID                string
	Title             string
	Description       string
	PriceCents        int64
	Status            string
	Category          string
	Tags              []string
	Engine            string
	SourceJobID       string
	SourceSubfolder   string
	SourceManifestURL string
	SourcePublicRoot  string
	HeroImageURL      string
	SKU               string
	FreezeAssets      bool
	Version           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Asset is one artifact reference attached to a product. Assets point at
// engine-published URLs; the catalog never copies artifact bytes.
type Asset struct {
	ID        int64
	ProductID string
	Kind      string
	URL       string
	Checksum  string
	Size      int64
	Position  int
	Meta      AssetMeta
	CreatedAt time.Time
}

// AssetMeta records where an asset reference came from.
type AssetMeta struct {
	JobID     string `json:"job_id"`
	Subfolder string `json:"subfolder,omitempty"`
	Source    string `json:"source"`
	Freeze    bool   `json:"freeze,omitempty"`
}

// MetaSourceManifest marks assets derived from an engine job manifest.
const MetaSourceManifest = "surface-manifest"
