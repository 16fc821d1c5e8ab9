package handlers

import (
	"context"
	"errors"
	"net/http"

	"licensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RenewalURLStore persists renewal portal URLs; satisfied by
// repository.RenewalURLRepository
type RenewalURLStore interface {
	Create(ctx context.Context, u *models.RenewalURL) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RenewalURL, error)
	List(ctx context.Context) ([]*models.RenewalURL, error)
	Update(ctx context.Context, u *models.RenewalURL) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RenewalURLHandler handles HTTP requests for renewal portal URLs
type RenewalURLHandler struct {
	urls RenewalURLStore
}

// NewRenewalURLHandler creates a new renewal URL handler
func NewRenewalURLHandler(urls RenewalURLStore) *RenewalURLHandler {
	return &RenewalURLHandler{urls: urls}
}

// ListURLs handles GET /api/renewal-urls
func (h *RenewalURLHandler) ListURLs(c *gin.Context) {
	urls, err := h.urls.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if urls == nil {
		urls = []*models.RenewalURL{}
	}
	respondData(c, http.StatusOK, urls)
}

// RenewalURLRequest represents the request body for creating or updating a
// renewal URL
type RenewalURLRequest struct {
	LicenseType string `json:"license_type" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateURL handles POST /api/renewal-urls
func (h *RenewalURLHandler) CreateURL(c *gin.Context) {
	var req RenewalURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !models.ValidLicenseType(models.LicenseType(req.LicenseType)) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown license type")
		return
	}

	u := &models.RenewalURL{
		LicenseType: models.LicenseType(req.LicenseType),
		URL:         req.URL,
		Description: req.Description,
	}
	if err := h.urls.Create(c.Request.Context(), u); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondData(c, http.StatusCreated, u)
}

// UpdateURL handles PUT /api/renewal-urls/:id
func (h *RenewalURLHandler) UpdateURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid URL ID format")
		return
	}

	var req RenewalURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	u, err := h.urls.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Renewal URL not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	u.LicenseType = models.LicenseType(req.LicenseType)
	u.URL = req.URL
	u.Description = req.Description
	if err := h.urls.Update(c.Request.Context(), u); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondData(c, http.StatusOK, u)
}

// DeleteURL handles DELETE /api/renewal-urls/:id
func (h *RenewalURLHandler) DeleteURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid URL ID format")
		return
	}

	if err := h.urls.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Renewal URL deleted"})
}
