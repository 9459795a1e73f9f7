package party

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/domain/validation"
)

// AssociationService handles associations and mandates between parties. The
// snapshot discipline matches the party service: every mutation appends a
// serialized state in the same transaction.
type AssociationService struct {
	parties      party.Repository
	associations party.AssociationRepository
	mandates     party.MandateRepository
	snapshots    snapshot.Store
	validator    *validation.Engine
	tx           shared.TransactionManager
}

// NewAssociationService creates a new AssociationService
func NewAssociationService(
	parties party.Repository,
	associations party.AssociationRepository,
	mandates party.MandateRepository,
	snapshots snapshot.Store,
	validator *validation.Engine,
	tx shared.TransactionManager,
) *AssociationService {
	return &AssociationService{
		parties:      parties,
		associations: associations,
		mandates:     mandates,
		snapshots:    snapshots,
		validator:    validator,
		tx:           tx,
	}
}

// CreateAssociation links two existing parties
func (s *AssociationService) CreateAssociation(ctx context.Context, tenantID uuid.UUID, locale string, req CreateAssociationRequest) (*AssociationResponse, error) {
	// Both endpoints must exist in this tenant.
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, req.FromPartyID); err != nil {
		return nil, err
	}
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, req.ToPartyID); err != nil {
		return nil, err
	}

	a, err := party.NewAssociation(tenantID, req.Type, req.FromPartyID, req.ToPartyID)
	if err != nil {
		return nil, err
	}
	a.StartDate = req.StartDate
	a.EndDate = req.EndDate

	if err := s.saveAssociation(ctx, tenantID, a); err != nil {
		return nil, err
	}
	resp := ToAssociationResponse(a)
	return &resp, nil
}

// GetAssociation retrieves an association by ID
func (s *AssociationService) GetAssociation(ctx context.Context, tenantID, id uuid.UUID) (*AssociationResponse, error) {
	a, err := s.associations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAssociationResponse(a)
	return &resp, nil
}

// ListAssociationsForParty returns every association the party appears in
func (s *AssociationService) ListAssociationsForParty(ctx context.Context, tenantID, partyID uuid.UUID) ([]AssociationResponse, error) {
	list, err := s.associations.FindByPartyID(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	out := make([]AssociationResponse, len(list))
	for i := range list {
		out[i] = ToAssociationResponse(&list[i])
	}
	return out, nil
}

// SetAssociationProperty sets or replaces one typed property
func (s *AssociationService) SetAssociationProperty(ctx context.Context, tenantID, id uuid.UUID, locale string, req SetPropertyRequest) (*AssociationResponse, error) {
	value, err := req.Value.ToDomain()
	if err != nil {
		return nil, err
	}
	a, err := s.associations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := a.SetProperty(party.NewProperty(req.Type, value)); err != nil {
		return nil, err
	}
	if err := s.saveAssociation(ctx, tenantID, a); err != nil {
		return nil, err
	}
	resp := ToAssociationResponse(a)
	return &resp, nil
}

// RemoveAssociationProperty removes the property with the given type code
func (s *AssociationService) RemoveAssociationProperty(ctx context.Context, tenantID, id uuid.UUID, typeCode string) (*AssociationResponse, error) {
	a, err := s.associations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !a.RemovePropertyWithType(typeCode) {
		return nil, shared.NewDomainError("NOT_FOUND", "Association has no property with this type")
	}
	if err := s.saveAssociation(ctx, tenantID, a); err != nil {
		return nil, err
	}
	resp := ToAssociationResponse(a)
	return &resp, nil
}

// ValidateAssociation runs the validation pipeline for an association
func (s *AssociationService) ValidateAssociation(ctx context.Context, tenantID, id uuid.UUID, locale string) (*ValidationResponse, error) {
	a, err := s.associations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	set, err := s.validator.ValidateAssociation(ctx, a, validationContext(tenantID, locale))
	if err != nil {
		return nil, err
	}
	resp := ToValidationResponse(set)
	return &resp, nil
}

// DeleteAssociation removes an association
func (s *AssociationService) DeleteAssociation(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.associations.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.associations.Delete(ctx, tenantID, id)
}

// CreateMandate grants a mandate between two existing parties
func (s *AssociationService) CreateMandate(ctx context.Context, tenantID uuid.UUID, locale string, req CreateMandateRequest) (*MandateResponse, error) {
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, req.GrantorID); err != nil {
		return nil, err
	}
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, req.GranteeID); err != nil {
		return nil, err
	}

	m, err := party.NewMandate(tenantID, req.Type, req.GrantorID, req.GranteeID)
	if err != nil {
		return nil, err
	}
	m.Reference = req.Reference
	m.SignedDate = req.SignedDate
	m.ValidFrom = req.ValidFrom
	m.ValidUntil = req.ValidUntil

	if err := s.saveMandate(ctx, tenantID, m); err != nil {
		return nil, err
	}
	resp := ToMandateResponse(m)
	return &resp, nil
}

// GetMandate retrieves a mandate by ID
func (s *AssociationService) GetMandate(ctx context.Context, tenantID, id uuid.UUID) (*MandateResponse, error) {
	m, err := s.mandates.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToMandateResponse(m)
	return &resp, nil
}

// ListMandatesForGrantor returns every mandate granted by the party
func (s *AssociationService) ListMandatesForGrantor(ctx context.Context, tenantID, grantorID uuid.UUID) ([]MandateResponse, error) {
	list, err := s.mandates.FindByGrantorID(ctx, tenantID, grantorID)
	if err != nil {
		return nil, err
	}
	out := make([]MandateResponse, len(list))
	for i := range list {
		out[i] = ToMandateResponse(&list[i])
	}
	return out, nil
}

// SetMandateProperty sets or replaces one typed property
func (s *AssociationService) SetMandateProperty(ctx context.Context, tenantID, id uuid.UUID, locale string, req SetPropertyRequest) (*MandateResponse, error) {
	value, err := req.Value.ToDomain()
	if err != nil {
		return nil, err
	}
	m, err := s.mandates.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := m.SetProperty(party.NewProperty(req.Type, value)); err != nil {
		return nil, err
	}
	if err := s.saveMandate(ctx, tenantID, m); err != nil {
		return nil, err
	}
	resp := ToMandateResponse(m)
	return &resp, nil
}

// RemoveMandateProperty removes the property with the given type code
func (s *AssociationService) RemoveMandateProperty(ctx context.Context, tenantID, id uuid.UUID, typeCode string) (*MandateResponse, error) {
	m, err := s.mandates.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !m.RemovePropertyWithType(typeCode) {
		return nil, shared.NewDomainError("NOT_FOUND", "Mandate has no property with this type")
	}
	if err := s.saveMandate(ctx, tenantID, m); err != nil {
		return nil, err
	}
	resp := ToMandateResponse(m)
	return &resp, nil
}

// ValidateMandate runs the validation pipeline for a mandate
func (s *AssociationService) ValidateMandate(ctx context.Context, tenantID, id uuid.UUID, locale string) (*ValidationResponse, error) {
	m, err := s.mandates.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	set, err := s.validator.ValidateMandate(ctx, m, validationContext(tenantID, locale))
	if err != nil {
		return nil, err
	}
	resp := ToValidationResponse(set)
	return &resp, nil
}

// DeleteMandate removes a mandate
func (s *AssociationService) DeleteMandate(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.mandates.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.mandates.Delete(ctx, tenantID, id)
}

// MandateHistory returns a page of the mandate's snapshot history
func (s *AssociationService) MandateHistory(ctx context.Context, tenantID, id uuid.UUID, query HistoryQuery) (*shared.Paginated[SnapshotResponse], error) {
	return s.history(ctx, tenantID, snapshot.EntityTypeMandate, id, query)
}

// AssociationHistory returns a page of the association's snapshot history
func (s *AssociationService) AssociationHistory(ctx context.Context, tenantID, id uuid.UUID, query HistoryQuery) (*shared.Paginated[SnapshotResponse], error) {
	return s.history(ctx, tenantID, snapshot.EntityTypeAssociation, id, query)
}

func (s *AssociationService) history(ctx context.Context, tenantID uuid.UUID, entityType snapshot.EntityType, id uuid.UUID, query HistoryQuery) (*shared.Paginated[SnapshotResponse], error) {
	domainQuery, err := query.ToDomain().Normalize()
	if err != nil {
		return nil, err
	}
	page, err := s.snapshots.FindByEntity(ctx, tenantID, entityType, id, domainQuery)
	if err != nil {
		return nil, err
	}
	items := make([]SnapshotResponse, len(page.Items))
	for i, snap := range page.Items {
		items[i] = ToSnapshotResponse(snap)
	}
	out := shared.Paginated[SnapshotResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
	return &out, nil
}

func (s *AssociationService) saveAssociation(ctx context.Context, tenantID uuid.UUID, a *party.Association) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	snap, err := snapshot.New(tenantID, snapshot.EntityTypeAssociation, a.ID, data)
	if err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.associations.Save(txCtx, a); err != nil {
			return err
		}
		return s.snapshots.Append(txCtx, snap)
	})
}

func (s *AssociationService) saveMandate(ctx context.Context, tenantID uuid.UUID, m *party.Mandate) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	snap, err := snapshot.New(tenantID, snapshot.EntityTypeMandate, m.ID, data)
	if err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.mandates.Save(txCtx, m); err != nil {
			return err
		}
		return s.snapshots.Append(txCtx, snap)
	})
}
