package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	chiRoute "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
	"streamverse-backend/pkg/utils"
)

// 错误信息
const (
	msgSiteNotFound   = "Site not found"
	msgListFailed     = "Failed to load sites"
	msgAddFailed      = "Failed to add site"
	msgUpdateFailed   = "Failed to update site"
	msgDeleteFailed   = "Failed to delete site"
	msgInvalidPayload = "Invalid JSON payload"
)

// SitesHandler serves /api/sites and /api/categories on top of one SiteStore.
type SitesHandler struct {
	config *config.Config
	db     database.SiteStore
}

func NewSitesHandler(cfg *config.Config, db database.SiteStore) *SitesHandler {
	return &SitesHandler{config: cfg, db: db}
}

// HealthCheck 健康检查
func (h *SitesHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	storeStatus := "healthy"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		fmt.Printf("❌ Health check failed for %s store: %v\n", h.db.Name(), err)
		status, code = "degraded", http.StatusServiceUnavailable
		storeStatus = "unhealthy: " + err.Error()
	}

	utils.WriteJSONResponse(w, code, map[string]interface{}{
		"service":      "streamverse-backend",
		"environment":  h.config.Environment,
		"backend":      h.db.Name(),
		"store_status": storeStatus,
		"time":         time.Now().UTC().Format(time.RFC3339),
		"status":       status,
	})
}

// GET /api/sites?q=&category=
func (h *SitesHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.db.ListSites(r.Context())
	if err != nil {
		h.logFailure(r, "list sites", err)
		utils.WriteInternalServerErrorResponse(w, msgListFailed)
		return
	}

	if c := strings.TrimSpace(r.URL.Query().Get("category")); c != "" {
		sites = models.FilterByCategory(sites, models.Category(c))
	}
	sites = models.FilterSites(sites, r.URL.Query().Get("q"))

	if sites == nil {
		sites = []models.Site{}
	}
	utils.WriteSuccessResponse(w, sites)
}

// GET /api/sites/{id}
func (h *SitesHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	id := chiRoute.URLParam(r, "id")

	sites, err := h.db.ListSites(r.Context())
	if err != nil {
		h.logFailure(r, "get site "+id, err)
		utils.WriteInternalServerErrorResponse(w, msgListFailed)
		return
	}

	site, ok := database.FindSite(sites, id)
	if !ok {
		utils.WriteNotFoundResponse(w, msgSiteNotFound)
		return
	}
	utils.WriteSuccessResponse(w, site)
}

// POST /api/sites
func (h *SitesHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	site, err := h.db.AddSite(r.Context(), in)
	if err != nil {
		h.logFailure(r, "add site", err)
		utils.WriteInternalServerErrorResponse(w, msgAddFailed)
		return
	}

	fmt.Printf("✅ Site created: %s (%s)\n", site.ID, site.Name)
	utils.WriteCreatedResponse(w, site)
}

// PUT /api/sites/{id}
func (h *SitesHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id := chiRoute.URLParam(r, "id")

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	site, err := h.db.UpdateSite(r.Context(), id, in)
	if errors.Is(err, database.ErrSiteNotFound) {
		utils.WriteNotFoundResponse(w, msgSiteNotFound)
		return
	}
	if err != nil {
		h.logFailure(r, "update site "+id, err)
		utils.WriteInternalServerErrorResponse(w, msgUpdateFailed)
		return
	}

	fmt.Printf("✏️  Site updated: %s\n", site.ID)
	utils.WriteSuccessResponse(w, site)
}

// DELETE /api/sites/{id}
func (h *SitesHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id := chiRoute.URLParam(r, "id")

	deleted, err := h.db.DeleteSite(r.Context(), id)
	if err != nil {
		h.logFailure(r, "delete site "+id, err)
		utils.WriteInternalServerErrorResponse(w, msgDeleteFailed)
		return
	}
	if !deleted {
		utils.WriteNotFoundResponse(w, msgSiteNotFound)
		return
	}

	fmt.Printf("🗑️  Site deleted: %s\n", id)
	utils.WriteSuccessResponse(w, utils.SuccessResponse{Success: true})
}

// GET /api/categories
func (h *SitesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	sites, err := h.db.ListSites(r.Context())
	if err != nil {
		h.logFailure(r, "list categories", err)
		utils.WriteInternalServerErrorResponse(w, msgListFailed)
		return
	}

	groups := models.GroupByCategory(sites)
	if groups == nil {
		groups = []models.CategoryGroup{}
	}
	utils.WriteSuccessResponse(w, groups)
}

// decodeInput parses and validates a SiteInput body, writing the 400 itself.
func (h *SitesHandler) decodeInput(w http.ResponseWriter, r *http.Request) (models.SiteInput, bool) {
	var in models.SiteInput
	if err := utils.ParseJSONBody(r, &in); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteErrorResponseWithCode(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"Request body too large", "")
			return in, false
		}
		utils.WriteBadRequestResponse(w, msgInvalidPayload)
		return in, false
	}

	if err := in.Validate(); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			utils.WriteValidationErrorResponse(w, "Invalid site", verr.Error())
			return in, false
		}
		utils.WriteBadRequestResponse(w, err.Error())
		return in, false
	}
	return in, true
}

func (h *SitesHandler) logFailure(r *http.Request, op string, err error) {
	fmt.Printf("❌ [%s] %s failed on %s store: %v\n", middleware.GetReqID(r.Context()), op, h.db.Name(), err)
}
