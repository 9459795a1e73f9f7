package router

import (
	"github.com/mdm/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers the API exposes
type Handlers struct {
	System      *handler.SystemHandler
	Reference   *handler.ReferenceHandler
	Party       *handler.PartyHandler
	Association *handler.AssociationHandler
}

// RegisterAll wires every API route group into the router
func RegisterAll(r *Router, h Handlers) {
	r.Register(systemRoutes(h.System))
	r.Register(referenceRoutes(h.Reference))
	r.Register(constraintRoutes(h.Reference))
	r.Register(partyRoutes(h.Party, h.Association))
	r.Register(associationRoutes(h.Association))
	r.Register(mandateRoutes(h.Association))
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	g.GET("/health", h.Health)
	return g
}

func referenceRoutes(h *handler.ReferenceHandler) *DomainGroup {
	g := NewDomainGroup("reference", "/reference")
	g.POST("/reload", h.Reload)
	g.GET("/:category", h.Resolve)
	g.GET("/:category/valid", h.CheckValidity)
	g.GET("/:category/:code", h.Lookup)
	return g
}

func constraintRoutes(h *handler.ReferenceHandler) *DomainGroup {
	g := NewDomainGroup("constraints", "/constraints")
	g.GET("/roles", h.ListRoleConstraints)
	g.GET("/roles/:roleType", h.GetRoleConstraints)
	g.GET("/associations/:type", h.GetAssociationConstraints)
	g.GET("/mandates/:type", h.GetMandateConstraints)
	return g
}

func partyRoutes(p *handler.PartyHandler, a *handler.AssociationHandler) *DomainGroup {
	g := NewDomainGroup("parties", "/parties")

	g.POST("/persons", p.CreatePerson)
	g.POST("/organizations", p.CreateOrganization)
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.DELETE("/:id", p.Delete)
	g.PUT("/:id/name", p.Rename)
	g.POST("/:id/validate", p.Validate)
	g.GET("/:id/history", p.History)

	g.PUT("/:id/attributes", p.SetAttribute)
	g.DELETE("/:id/attributes/:type", p.RemoveAttribute)
	g.PUT("/:id/preferences", p.SetPreference)
	g.DELETE("/:id/preferences/:type", p.RemovePreference)
	g.POST("/:id/roles", p.AddRole)
	g.DELETE("/:id/roles/:type", p.RemoveRole)
	g.POST("/:id/addresses", p.AddAddress)
	g.POST("/:id/contact-mechanisms", p.AddContactMechanism)
	g.POST("/:id/identifications", p.AddIdentification)

	// Relationship views anchored on the party
	g.GET("/:id/associations", a.ListForParty)
	g.GET("/:id/mandates", a.ListMandatesForGrantor)

	return g
}

func associationRoutes(h *handler.AssociationHandler) *DomainGroup {
	g := NewDomainGroup("associations", "/associations")
	g.POST("", h.CreateAssociation)
	g.GET("/:id", h.GetAssociation)
	g.DELETE("/:id", h.DeleteAssociation)
	g.PUT("/:id/properties", h.SetAssociationProperty)
	g.DELETE("/:id/properties/:type", h.RemoveAssociationProperty)
	g.POST("/:id/validate", h.ValidateAssociation)
	g.GET("/:id/history", h.AssociationHistory)
	return g
}

func mandateRoutes(h *handler.AssociationHandler) *DomainGroup {
	g := NewDomainGroup("mandates", "/mandates")
	g.POST("", h.CreateMandate)
	g.GET("/:id", h.GetMandate)
	g.DELETE("/:id", h.DeleteMandate)
	g.PUT("/:id/properties", h.SetMandateProperty)
	g.DELETE("/:id/properties/:type", h.RemoveMandateProperty)
	g.POST("/:id/validate", h.ValidateMandate)
	g.GET("/:id/history", h.MandateHistory)
	return g
}
