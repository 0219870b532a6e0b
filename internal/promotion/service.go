package promotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"surfacegate/internal/assets"
	"surfacegate/internal/catalog"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/state"
)

// ManifestLoader retrieves the manifest of a finished job.
type ManifestLoader interface {
	Load(ctx context.Context, jobID, subfolder string) (*manifest.Result, error)
}

// Request captures one promotion attempt.
type Request struct {
	JobID        string
	Subfolder    string
	Title        string
	Description  string
	Price        float64
	Category     string
	Tags         []string
	Status       string
	SKU          string
	FreezeAssets bool
}

// Result is the outcome of a successful promotion.
type Result struct {
	Product        *catalog.Product
	Assets         []catalog.Asset
	ManifestSource manifest.Source
}

// Service promotes completed jobs into the product catalog.
type Service struct {
	store    *catalog.Store
	loader   ManifestLoader
	resolver *assets.Resolver
	engine   string
	logger   *slog.Logger
}

// NewService wires a promotion service for one engine.
func NewService(store *catalog.Store, loader ManifestLoader, resolver *assets.Resolver, engine string, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		loader:   loader,
		resolver: resolver,
		engine:   engine,
		logger:   logging.NewComponentLogger(logger, "promotion"),
	}
}

// Promote creates a catalog product from a completed job. The manifest is
// the single source of truth: it must report a complete state and resolve
// both a hero image and a printable mesh, or promotion fails without
// writing anything.
func (s *Service) Promote(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.JobID) == "" {
		return nil, errors.New("job id is required")
	}
	ctx = logging.WithJobID(ctx, req.JobID)

	if existing, err := s.store.FindBySourceJob(ctx, req.JobID, req.Subfolder); err != nil {
		return nil, fmt.Errorf("check existing product: %w", err)
	} else if existing != nil {
		return nil, &AlreadyPromotedError{JobID: req.JobID, ProductID: existing.ID}
	}

	loaded, err := s.loader.Load(ctx, req.JobID, req.Subfolder)
	if err != nil {
		return nil, err
	}

	if canonical := state.Normalize(loaded.Manifest.Status); canonical != state.Complete {
		return nil, fmt.Errorf("job %s reports state %s: %w", req.JobID, canonical, ErrNotComplete)
	}

	derived, err := s.resolver.Derive(loaded.Manifest, req.JobID, req.Subfolder)
	if err != nil {
		return nil, err
	}
	if _, ok := derived.Get(assets.KindHero); !ok {
		return nil, &MissingArtifactError{JobID: req.JobID, Artifact: "hero_image"}
	}
	if _, ok := derived.Get(assets.KindSTL); !ok {
		return nil, &MissingArtifactError{JobID: req.JobID, Artifact: "enclosure_stl"}
	}

	status := req.Status
	if status == "" {
		status = catalog.StatusDraft
	}
	if !catalog.ValidStatus(status) {
		return nil, fmt.Errorf("invalid product status %q", status)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = deriveTitle(req.JobID)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = catalog.DefaultCategory
	}

	product := &catalog.Product{
		ID:                uuid.NewString(),
		Title:             title,
		Description:       strings.TrimSpace(req.Description),
		PriceCents:        priceToCents(req.Price),
		Status:            status,
		Category:          category,
		Tags:              normalizeTags(req.Tags),
		Engine:            s.engine,
		SourceJobID:       req.JobID,
		SourceSubfolder:   req.Subfolder,
		SourceManifestURL: loaded.ManifestURL,
		SourcePublicRoot:  derived.PublicRoot,
		HeroImageURL:      derived.URLFor(assets.KindHero),
		SKU:               strings.TrimSpace(req.SKU),
		FreezeAssets:      req.FreezeAssets,
		Version:           catalog.DefaultVersion,
	}

	if err := s.store.InsertProduct(ctx, product); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSourceJob) {
			// Lost the race to a concurrent promotion; report the winner.
			winner, findErr := s.store.FindBySourceJob(ctx, req.JobID, req.Subfolder)
			if findErr == nil && winner != nil {
				return nil, &AlreadyPromotedError{JobID: req.JobID, ProductID: winner.ID}
			}
			return nil, &AlreadyPromotedError{JobID: req.JobID}
		}
		return nil, err
	}

	meta := catalog.AssetMeta{
		JobID:     req.JobID,
		Subfolder: req.Subfolder,
		Source:    catalog.MetaSourceManifest,
		Freeze:    req.FreezeAssets,
	}
	productAssets := make([]catalog.Asset, 0, len(derived.Artifacts))
	for _, artifact := range derived.Artifacts {
		productAssets = append(productAssets, catalog.Asset{
			ProductID: product.ID,
			Kind:      string(artifact.Kind),
			URL:       artifact.URL,
			Checksum:  artifact.Checksum,
			Size:      artifact.Size,
			Meta:      meta,
		})
	}
	if err := s.store.InsertAssets(ctx, product.ID, productAssets); err != nil {
		return nil, fmt.Errorf("attach assets: %w", err)
	}

	s.logger.InfoContext(ctx, "job promoted",
		logging.String(logging.FieldProductID, product.ID),
		logging.String("manifest_source", string(loaded.Source)),
		logging.Int("assets", len(productAssets)),
	)

	return &Result{
		Product:        product,
		Assets:         productAssets,
		ManifestSource: loaded.Source,
	}, nil
}

// deriveTitle builds a readable product title from a job identifier when
// the caller supplies none.
func deriveTitle(jobID string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range jobID {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		title = "Untitled Product"
	}
	return cases.Title(language.Und).String(title)
}

func priceToCents(price float64) int64 {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return int64(math.Round(price * 100))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
