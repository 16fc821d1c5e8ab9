package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"licensetracker/models"
	"licensetracker/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxUploadSize limits each uploaded file to 10 MiB
const DefaultMaxUploadSize = 10 << 20

// LicenseHandler handles HTTP requests for licenses and their attachments
type LicenseHandler struct {
	licenses      *service.LicenseService
	attachments   *service.AttachmentService
	maxUploadSize int64
}

// NewLicenseHandler creates a new license handler. maxUploadSize <= 0 falls
// back to the 10 MiB default.
func NewLicenseHandler(licenses *service.LicenseService, attachments *service.AttachmentService, maxUploadSize int64) *LicenseHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &LicenseHandler{
		licenses:      licenses,
		attachments:   attachments,
		maxUploadSize: maxUploadSize,
	}
}

// ListLicenses handles GET /api/licenses with optional companyId, type and
// status query filters ("all" counts as unset)
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	req := service.ListLicensesRequest{}

	if v := c.Query("companyId"); v != "" && v != "all" {
		companyID, err := uuid.Parse(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_COMPANY_ID", "Invalid companyId format")
			return
		}
		req.CompanyID = &companyID
	}
	if v := c.Query("type"); v != "" && v != "all" {
		req.Type = models.LicenseType(v)
	}
	if v := c.Query("status"); v != "" && v != "all" {
		req.Status = models.LicenseStatus(v)
	}

	licenses, err := h.licenses.ListLicenses(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, licenses)
}

// GetLicenseStats handles GET /api/licenses/stats
func (h *LicenseHandler) GetLicenseStats(c *gin.Context) {
	stats, err := h.licenses.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// CreateLicenseRequest represents the request body for creating a license
type CreateLicenseRequest struct {
	CompanyID  string  `json:"company_id" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	SubType    *string `json:"sub_type"`
	IssueDate  string  `json:"issue_date" binding:"required"`
	ExpiryDate string  `json:"expiry_date" binding:"required"`
}

// CreateLicense handles POST /api/licenses
func (h *LicenseHandler) CreateLicense(c *gin.Context) {
	var req CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_COMPANY_ID", "Invalid company_id format")
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "Invalid issue_date format")
		return
	}
	expiryDate, err := parseDate(req.ExpiryDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "Invalid expiry_date format")
		return
	}

	license, err := h.licenses.CreateLicense(c.Request.Context(), service.CreateLicenseRequest{
		CompanyID:  companyID,
		Type:       models.LicenseType(req.Type),
		SubType:    req.SubType,
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, license)
}

// UpdateLicenseRequest represents the request body for updating a license;
// omitted fields keep their current value
type UpdateLicenseRequest struct {
	CompanyID  *string `json:"company_id"`
	Type       *string `json:"type"`
	SubType    *string `json:"sub_type"`
	IssueDate  *string `json:"issue_date"`
	ExpiryDate *string `json:"expiry_date"`
}

// UpdateLicense handles PUT /api/licenses/:id
func (h *LicenseHandler) UpdateLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid license ID format")
		return
	}

	var req UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := service.UpdateLicenseRequest{ID: id, SubType: req.SubType}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_COMPANY_ID", "Invalid company_id format")
			return
		}
		serviceReq.CompanyID = &companyID
	}
	if req.Type != nil {
		t := models.LicenseType(*req.Type)
		serviceReq.Type = &t
	}
	if req.IssueDate != nil {
		d, err := parseDate(*req.IssueDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", "Invalid issue_date format")
			return
		}
		serviceReq.IssueDate = &d
	}
	if req.ExpiryDate != nil {
		d, err := parseDate(*req.ExpiryDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", "Invalid expiry_date format")
			return
		}
		serviceReq.ExpiryDate = &d
	}

	license, err := h.licenses.UpdateLicense(c.Request.Context(), serviceReq)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, license)
}

// DeleteLicense handles DELETE /api/licenses/:id
func (h *LicenseHandler) DeleteLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid license ID format")
		return
	}

	if err := h.licenses.DeleteLicense(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "License deleted"})
}

// UploadFiles handles POST /api/licenses/:id/files (multipart, field
// "files"). Per-file size is checked here, before anything reaches the
// attachment service.
func (h *LicenseHandler) UploadFiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid license ID format")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "MISSING_FILES", "No files sent")
		return
	}

	for _, fh := range headers {
		if fh.Size > h.maxUploadSize {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File %q exceeds the maximum of %d bytes", fh.Filename, h.maxUploadSize))
			return
		}
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
			return
		}
		defer f.Close()
		uploads = append(uploads, service.Upload{FileName: fh.Filename, Data: f})
	}

	created, err := h.attachments.AddFiles(c.Request.Context(), id, uploads)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, created)
}

// DeleteFile handles DELETE /api/licenses/:id/files/:fileId
func (h *LicenseHandler) DeleteFile(c *gin.Context) {
	licenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid license ID format")
		return
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid file ID format")
		return
	}

	if err := h.attachments.DeleteFile(c.Request.Context(), licenseID, fileID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "File deleted"})
}

// DownloadFile handles GET /api/licenses/:id/files/:fileId/download,
// streaming the blob with the original file name as the suggested download
// name
func (h *LicenseHandler) DownloadFile(c *gin.Context) {
	licenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid license ID format")
		return
	}
	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid file ID format")
		return
	}

	rc, file, err := h.attachments.DownloadFile(c.Request.Context(), licenseID, fileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.FileName),
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, extraHeaders)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates; plain
// dates are taken as UTC midnight so the write path agrees with the UTC
// status computation on reads
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
