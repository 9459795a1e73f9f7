package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partyapp "github.com/mdm/backend/internal/application/party"
	"github.com/mdm/backend/internal/interfaces/http/middleware"
)

// PartyHandler handles party-related API endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partyapp.Service
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partyapp.Service) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
	}
}

// partyID parses the :id path parameter
func (h *PartyHandler) partyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return uuid.Nil, false
	}
	return id, true
}

// CreatePerson creates a new person party
func (h *PartyHandler) CreatePerson(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.CreatePerson(c.Request.Context(), tenantID, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// CreateOrganization creates a new organization party
func (h *PartyHandler) CreateOrganization(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.CreateOrganization(c.Request.Context(), tenantID, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get returns one party by ID
func (h *PartyHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	result, err := h.partyService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns a filtered, paginated party list
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter partyapp.PartyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Rename updates a party's display name
func (h *PartyHandler) Rename(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.RenamePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.Rename(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete removes a party
func (h *PartyHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	if err := h.partyService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Validate runs the full rule set against a party and returns the
// violation list without persisting anything
func (h *PartyHandler) Validate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	result, err := h.partyService.Validate(c.Request.Context(), tenantID, id, getLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// History returns the snapshot history of a party
func (h *PartyHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var query partyapp.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.History(c.Request.Context(), tenantID, id, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// SetAttribute sets or replaces one attribute on a party
func (h *PartyHandler) SetAttribute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.SetAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.SetAttribute(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveAttribute removes one attribute by type code
func (h *PartyHandler) RemoveAttribute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	result, err := h.partyService.RemoveAttribute(c.Request.Context(), tenantID, id, getLocale(c), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SetPreference sets or replaces one preference on a party
func (h *PartyHandler) SetPreference(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.SetPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.SetPreference(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemovePreference removes one preference by type code
func (h *PartyHandler) RemovePreference(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	result, err := h.partyService.RemovePreference(c.Request.Context(), tenantID, id, getLocale(c), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddRole adds one role to a party
func (h *PartyHandler) AddRole(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.AddRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.AddRole(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveRole removes one role by type code
func (h *PartyHandler) RemoveRole(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	result, err := h.partyService.RemoveRole(c.Request.Context(), tenantID, id, getLocale(c), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddAddress adds one physical address to a party
func (h *PartyHandler) AddAddress(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.AddAddress(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddContactMechanism adds one contact mechanism to a party
func (h *PartyHandler) AddContactMechanism(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.AddContactMechanismRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.AddContactMechanism(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddIdentification adds one identification document to a party
func (h *PartyHandler) AddIdentification(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.partyID(c)
	if !ok {
		return
	}

	var req partyapp.AddIdentificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.partyService.AddIdentification(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
