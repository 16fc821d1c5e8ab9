package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"licensetracker/models"
	"licensetracker/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RenewalDocumentStore persists renewal template documents; satisfied by
// repository.RenewalDocumentRepository
type RenewalDocumentStore interface {
	Create(ctx context.Context, doc *models.RenewalDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RenewalDocument, error)
	List(ctx context.Context, licenseType models.LicenseType) ([]*models.RenewalDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RenewalDocumentHandler handles HTTP requests for renewal template documents
type RenewalDocumentHandler struct {
	docs          RenewalDocumentStore
	blobs         storage.Storage
	logger        *zap.Logger
	maxUploadSize int64
}

// NewRenewalDocumentHandler creates a new renewal document handler
func NewRenewalDocumentHandler(docs RenewalDocumentStore, blobs storage.Storage, logger *zap.Logger, maxUploadSize int64) *RenewalDocumentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &RenewalDocumentHandler{
		docs:          docs,
		blobs:         blobs,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// ListDocuments handles GET /api/renewal-documents with an optional
// licenseType filter
func (h *RenewalDocumentHandler) ListDocuments(c *gin.Context) {
	var licenseType models.LicenseType
	if v := c.Query("licenseType"); v != "" && v != "all" {
		licenseType = models.LicenseType(v)
	}

	docs, err := h.docs.List(c.Request.Context(), licenseType)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if docs == nil {
		docs = []*models.RenewalDocument{}
	}

	respondData(c, http.StatusOK, docs)
}

// CreateDocument handles POST /api/renewal-documents (multipart form with
// license_type, document_name and an optional single file)
func (h *RenewalDocumentHandler) CreateDocument(c *gin.Context) {
	licenseType := models.LicenseType(c.PostForm("license_type"))
	documentName := c.PostForm("document_name")
	if licenseType == "" || documentName == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "license_type and document_name are required")
		return
	}
	if !models.ValidLicenseType(licenseType) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown license type")
		return
	}

	doc := &models.RenewalDocument{
		ID:           uuid.New(),
		LicenseType:  licenseType,
		DocumentName: documentName,
	}

	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > h.maxUploadSize {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File %q exceeds the maximum of %d bytes", fh.Filename, h.maxUploadSize))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
			return
		}
		defer f.Close()

		locator, err := h.blobs.Store(c.Request.Context(), doc.ID, fh.Filename, f)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "File storage operation failed")
			return
		}
		doc.FileName = &fh.Filename
		doc.FileURL = &locator
	}

	if err := h.docs.Create(c.Request.Context(), doc); err != nil {
		// don't leave the blob behind when the row was never created
		if doc.FileURL != nil {
			if delErr := h.blobs.Delete(c.Request.Context(), *doc.FileURL); delErr != nil {
				h.logger.Warn("failed to remove blob after create failure",
					zap.String("locator", *doc.FileURL),
					zap.Error(delErr))
			}
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondData(c, http.StatusCreated, doc)
}

// DeleteDocument handles DELETE /api/renewal-documents/:id, removing the
// attached blob (if any) before the row
func (h *RenewalDocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid document ID format")
		return
	}

	doc, err := h.docs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	if doc.FileURL != nil {
		if err := h.blobs.Delete(c.Request.Context(), *doc.FileURL); err != nil {
			respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "File storage operation failed")
			return
		}
	}

	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Document deleted"})
}
