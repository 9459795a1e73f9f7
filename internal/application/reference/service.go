package reference

import (
	"context"

	"github.com/google/uuid"

	"github.com/mdm/backend/internal/domain/constraint"
	"github.com/mdm/backend/internal/domain/reference"
)

// Service exposes reference-data lookups to the transport layer. All reads
// resolve against the tenant's effective view: global rows overlaid with the
// tenant's own rows.
type Service struct {
	store       *reference.Store
	resolver    *reference.Resolver
	constraints *constraint.Engine
}

// NewService creates a new reference Service
func NewService(store *reference.Store, resolver *reference.Resolver, constraints *constraint.Engine) *Service {
	return &Service{
		store:       store,
		resolver:    resolver,
		constraints: constraints,
	}
}

// Resolve returns the ordered effective reference list for a category
func (s *Service) Resolve(ctx context.Context, category string, tenantID uuid.UUID, locale string) ([]ItemResponse, error) {
	items, err := s.resolver.Resolve(ctx, reference.Category(category), reference.TenantScope(tenantID), locale)
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// Lookup returns a single reference item by code, or nil when the code is
// not in the tenant's effective list
func (s *Service) Lookup(ctx context.Context, category string, tenantID uuid.UUID, locale, code string) (*ItemResponse, error) {
	item, err := s.resolver.Item(ctx, reference.Category(category), reference.TenantScope(tenantID), locale, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	resp := ToItemResponse(*item)
	return &resp, nil
}

// IsValid checks code membership in the tenant's effective list; an optional
// party type restricts the check to items applicable to that party type
func (s *Service) IsValid(ctx context.Context, category string, tenantID uuid.UUID, locale, code, partyType string) (*ValidityResponse, error) {
	var (
		valid bool
		err   error
	)
	if partyType != "" {
		valid, err = s.resolver.IsValidForPartyType(ctx, reference.Category(category), reference.TenantScope(tenantID), locale, code, partyType)
	} else {
		valid, err = s.resolver.IsValid(ctx, reference.Category(category), reference.TenantScope(tenantID), locale, code)
	}
	if err != nil {
		return nil, err
	}
	return &ValidityResponse{Category: category, Code: code, Valid: valid}, nil
}

// AllRoleConstraints returns every role-driven constraint row
func (s *Service) AllRoleConstraints(ctx context.Context) ([]RoleConstraintResponse, error) {
	rows, err := s.constraints.AllForRoles(ctx)
	if err != nil {
		return nil, err
	}
	return ToRoleConstraintResponses(rows), nil
}

// ConstraintsForRole returns the rows whose role type matches exactly
func (s *Service) ConstraintsForRole(ctx context.Context, roleType string) ([]RoleConstraintResponse, error) {
	rows, err := s.constraints.ForRole(ctx, roleType)
	if err != nil {
		return nil, err
	}
	return ToRoleConstraintResponses(rows), nil
}

// ConstraintsForAssociationType returns the association property rows
func (s *Service) ConstraintsForAssociationType(ctx context.Context, associationType string) ([]PropertyConstraintResponse, error) {
	rows, err := s.constraints.ForAssociationType(ctx, associationType)
	if err != nil {
		return nil, err
	}
	return ToPropertyConstraintResponses(rows), nil
}

// ConstraintsForMandateType returns the mandate property rows
func (s *Service) ConstraintsForMandateType(ctx context.Context, mandateType string) ([]PropertyConstraintResponse, error) {
	rows, err := s.constraints.ForMandateType(ctx, mandateType)
	if err != nil {
		return nil, err
	}
	return ToPropertyConstraintResponses(rows), nil
}

// Reload swaps in a freshly loaded reference generation. On failure the
// current generation stays live and the error is returned.
func (s *Service) Reload(ctx context.Context) error {
	return s.store.Reload(ctx)
}
