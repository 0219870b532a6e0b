package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"surfacegate/internal/manifest"
	"surfacegate/internal/promotion"
)

// PromoteRequest is the body of POST /api/products/from-job. Engine may be
// omitted when exactly one engine is configured.
type PromoteRequest struct {
	Engine       string   `json:"engine,omitempty"`
	JobID        string   `json:"job_id"`
	Subfolder    string   `json:"subfolder,omitempty"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price,omitempty"`
	Category     string   `json:"category,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Status       string   `json:"status,omitempty"`
	SKU          string   `json:"sku,omitempty"`
	FreezeAssets bool     `json:"freeze_assets,omitempty"`
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	products, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, productView(product))
	}
	s.writeJSON(w, http.StatusOK, ProductListResponse{Products: views})
}

func (s *Server) handleProductSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if rest == "from-job" {
		s.handlePromoteFromJob(w, r)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	s.handleProductByID(w, r, rest)
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	product, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if product == nil {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	stored, err := s.store.AssetsForProduct(r.Context(), product.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ProductResponse{
		Product: productView(product),
		Assets:  productAssetViews(stored),
	})
}

func (s *Server) handlePromoteFromJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.authorized(r) {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PromoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.JobID) == "" {
		s.writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	runtime, ok := s.engineByNameOrDefault(req.Engine)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "engine must be specified")
		return
	}

	result, err := runtime.promoter.Promote(r.Context(), promotion.Request{
		JobID:        req.JobID,
		Subfolder:    req.Subfolder,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Tags:         req.Tags,
		Status:       req.Status,
		SKU:          req.SKU,
		FreezeAssets: req.FreezeAssets,
	})
	if err != nil {
		s.writePromotionError(w, err, req.JobID, runtime)
		return
	}

	s.writeJSON(w, http.StatusCreated, ProductResponse{
		Product: productView(result.Product),
		Assets:  productAssetViews(result.Assets),
	})
}

func (s *Server) writePromotionError(w http.ResponseWriter, err error, jobID string, runtime *engineRuntime) {
	var conflict *promotion.AlreadyPromotedError
	if errors.As(err, &conflict) {
		s.writeJSON(w, http.StatusConflict, map[string]string{
			"error":      "job already promoted",
			"product_id": conflict.ProductID,
		})
		return
	}
	if errors.Is(err, promotion.ErrNotComplete) || errors.Is(err, promotion.ErrMissingArtifact) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var unavailable *manifest.UnavailableError
	if errors.As(err, &unavailable) {
		s.writeError(w, http.StatusNotFound, unavailable.Error())
		return
	}
	s.writeContractError(w, err, jobID, runtime)
}
