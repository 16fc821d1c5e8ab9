package handlers

import (
	"net/http"

	"licensetracker/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyHandler handles HTTP requests for companies
type CompanyHandler struct {
	companies *service.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// CreateCompanyRequest represents the request body for creating a company
type CreateCompanyRequest struct {
	CNPJ string `json:"cnpj" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateCompany handles POST /api/companies
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	company, err := h.companies.CreateCompany(c.Request.Context(), service.CreateCompanyRequest{
		CNPJ: req.CNPJ,
		Name: req.Name,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, company)
}

// ListCompanies handles GET /api/companies
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companies.ListCompanies(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, companies)
}

// UpdateCompanyRequest represents the request body for updating a company
type UpdateCompanyRequest struct {
	CNPJ string `json:"cnpj"`
	Name string `json:"name"`
}

// UpdateCompany handles PUT /api/companies/:id
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid company ID format")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	company, err := h.companies.UpdateCompany(c.Request.Context(), service.UpdateCompanyRequest{
		ID:   id,
		CNPJ: req.CNPJ,
		Name: req.Name,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, company)
}

// DeleteCompany handles DELETE /api/companies/:id
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid company ID format")
		return
	}

	if err := h.companies.DeleteCompany(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Company deleted"})
}
