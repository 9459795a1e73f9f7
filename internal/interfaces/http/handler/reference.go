package handler

import (
	"github.com/gin-gonic/gin"

	referenceapp "github.com/mdm/backend/internal/application/reference"
)

// ReferenceHandler handles reference data and constraint API endpoints
type ReferenceHandler struct {
	BaseHandler
	referenceService *referenceapp.Service
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(referenceService *referenceapp.Service) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
	}
}

// Resolve returns the reference items of a category visible to the tenant:
// the global rows plus the tenant's own rows. Tenant rows add to the global
// set, they never remove or replace a global row.
func (h *ReferenceHandler) Resolve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	category := c.Param("category")
	locale := getLocale(c)

	items, err := h.referenceService.Resolve(c.Request.Context(), category, tenantID, locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Lookup returns one resolved reference item by code
func (h *ReferenceHandler) Lookup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	category := c.Param("category")
	code := c.Param("code")
	locale := getLocale(c)

	item, err := h.referenceService.Lookup(c.Request.Context(), category, tenantID, locale, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if item == nil {
		h.NotFound(c, "Reference code not found in this category")
		return
	}

	h.Success(c, item)
}

// CheckValidity checks whether a code is a valid member of a category,
// optionally restricted to a party type.
func (h *ReferenceHandler) CheckValidity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	category := c.Param("category")
	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "Query parameter 'code' is required")
		return
	}
	partyType := c.Query("party_type")
	locale := getLocale(c)

	result, err := h.referenceService.IsValid(c.Request.Context(), category, tenantID, locale, code, partyType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListRoleConstraints returns every role-driven constraint row
func (h *ReferenceHandler) ListRoleConstraints(c *gin.Context) {
	rows, err := h.referenceService.AllRoleConstraints(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// GetRoleConstraints returns the constraint rows for one role type
func (h *ReferenceHandler) GetRoleConstraints(c *gin.Context) {
	roleType := c.Param("roleType")

	rows, err := h.referenceService.ConstraintsForRole(c.Request.Context(), roleType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// GetAssociationConstraints returns the property constraint rows for one
// association type
func (h *ReferenceHandler) GetAssociationConstraints(c *gin.Context) {
	associationType := c.Param("type")

	rows, err := h.referenceService.ConstraintsForAssociationType(c.Request.Context(), associationType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// GetMandateConstraints returns the property constraint rows for one
// mandate type
func (h *ReferenceHandler) GetMandateConstraints(c *gin.Context) {
	mandateType := c.Param("type")

	rows, err := h.referenceService.ConstraintsForMandateType(c.Request.Context(), mandateType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// Reload reloads the reference table from the backing store
func (h *ReferenceHandler) Reload(c *gin.Context) {
	if err := h.referenceService.Reload(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"reloaded": true})
}
