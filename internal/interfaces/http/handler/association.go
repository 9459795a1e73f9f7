package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partyapp "github.com/mdm/backend/internal/application/party"
	"github.com/mdm/backend/internal/interfaces/http/middleware"
)

// AssociationHandler handles association and mandate API endpoints
type AssociationHandler struct {
	BaseHandler
	associationService *partyapp.AssociationService
}

// NewAssociationHandler creates a new AssociationHandler
func NewAssociationHandler(associationService *partyapp.AssociationService) *AssociationHandler {
	return &AssociationHandler{
		associationService: associationService,
	}
}

func (h *AssociationHandler) pathID(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

// CreateAssociation links two existing parties
func (h *AssociationHandler) CreateAssociation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreateAssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.CreateAssociation(c.Request.Context(), tenantID, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetAssociation returns one association by ID
func (h *AssociationHandler) GetAssociation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	result, err := h.associationService.GetAssociation(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListForParty returns every association the party appears in,
// on either side of the link
func (h *AssociationHandler) ListForParty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	partyID, ok := h.pathID(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	result, err := h.associationService.ListAssociationsForParty(c.Request.Context(), tenantID, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SetAssociationProperty sets or replaces one typed property
func (h *AssociationHandler) SetAssociationProperty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	var req partyapp.SetPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.SetAssociationProperty(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveAssociationProperty removes one property by type code
func (h *AssociationHandler) RemoveAssociationProperty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	result, err := h.associationService.RemoveAssociationProperty(c.Request.Context(), tenantID, id, c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ValidateAssociation runs the rule set against an association
func (h *AssociationHandler) ValidateAssociation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	result, err := h.associationService.ValidateAssociation(c.Request.Context(), tenantID, id, getLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteAssociation removes an association
func (h *AssociationHandler) DeleteAssociation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	if err := h.associationService.DeleteAssociation(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AssociationHistory returns the snapshot history of an association
func (h *AssociationHandler) AssociationHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid association ID")
	if !ok {
		return
	}

	var query partyapp.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.AssociationHistory(c.Request.Context(), tenantID, id, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// CreateMandate grants a mandate between two existing parties
func (h *AssociationHandler) CreateMandate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partyapp.CreateMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.CreateMandate(c.Request.Context(), tenantID, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetMandate returns one mandate by ID
func (h *AssociationHandler) GetMandate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	result, err := h.associationService.GetMandate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListMandatesForGrantor returns every mandate granted by the party
func (h *AssociationHandler) ListMandatesForGrantor(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	grantorID, ok := h.pathID(c, "id", "Invalid party ID")
	if !ok {
		return
	}

	result, err := h.associationService.ListMandatesForGrantor(c.Request.Context(), tenantID, grantorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SetMandateProperty sets or replaces one typed property
func (h *AssociationHandler) SetMandateProperty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	var req partyapp.SetPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.SetMandateProperty(c.Request.Context(), tenantID, id, getLocale(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveMandateProperty removes one property by type code
func (h *AssociationHandler) RemoveMandateProperty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	result, err := h.associationService.RemoveMandateProperty(c.Request.Context(), tenantID, id, c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ValidateMandate runs the rule set against a mandate
func (h *AssociationHandler) ValidateMandate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	result, err := h.associationService.ValidateMandate(c.Request.Context(), tenantID, id, getLocale(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteMandate removes a mandate
func (h *AssociationHandler) DeleteMandate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	if err := h.associationService.DeleteMandate(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MandateHistory returns the snapshot history of a mandate
func (h *AssociationHandler) MandateHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, ok := h.pathID(c, "id", "Invalid mandate ID")
	if !ok {
		return
	}

	var query partyapp.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.associationService.MandateHistory(c.Request.Context(), tenantID, id, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
