package party

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/domain/validation"
)

// Service handles party lifecycle operations. Every mutation persists the
// aggregate and appends a full snapshot in one transaction, then reports the
// aggregate's current violation set; an invalid party is stored all the
// same and the caller decides what to do with the violations.
type Service struct {
	parties   party.Repository
	snapshots snapshot.Store
	validator *validation.Engine
	tx        shared.TransactionManager
	logger    *zap.Logger
}

// NewService creates a new party Service
func NewService(
	parties party.Repository,
	snapshots snapshot.Store,
	validator *validation.Engine,
	tx shared.TransactionManager,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		parties:   parties,
		snapshots: snapshots,
		validator: validator,
		tx:        tx,
		logger:    logger,
	}
}

func validationContext(tenantID uuid.UUID, locale string) validation.Context {
	return validation.Context{Scope: reference.TenantScope(tenantID), Locale: locale}
}

// CreatePerson creates a new person party
func (s *Service) CreatePerson(ctx context.Context, tenantID uuid.UUID, locale string, req CreatePersonRequest) (*MutationResponse, error) {
	p, err := party.NewPerson(tenantID, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if err := p.SetNames(req.FirstName, req.MiddleNames, req.LastName, req.Initials); err != nil {
		return nil, err
	}
	if req.DateOfBirth != nil {
		p.SetDateOfBirth(*req.DateOfBirth)
	}
	if req.Gender != "" {
		if err := p.SetGender(req.Gender); err != nil {
			return nil, err
		}
	}
	if req.MaritalStatus != "" {
		if err := p.SetMaritalStatus(req.MaritalStatus); err != nil {
			return nil, err
		}
	}
	if req.CountryOfBirth != "" {
		if err := p.SetCountryOfBirth(req.CountryOfBirth); err != nil {
			return nil, err
		}
	}

	return s.persist(ctx, p, tenantID, locale)
}

// CreateOrganization creates a new organization party
func (s *Service) CreateOrganization(ctx context.Context, tenantID uuid.UUID, locale string, req CreateOrganizationRequest) (*MutationResponse, error) {
	org, err := party.NewOrganization(tenantID, req.LegalName)
	if err != nil {
		return nil, err
	}
	if req.TradeName != "" {
		if err := org.SetTradeName(req.TradeName); err != nil {
			return nil, err
		}
	}
	if req.LegalForm != "" {
		if err := org.SetLegalForm(req.LegalForm); err != nil {
			return nil, err
		}
	}
	if req.RegistrationNumber != "" {
		if err := org.SetRegistrationNumber(req.RegistrationNumber); err != nil {
			return nil, err
		}
	}
	if req.EstablishedDate != nil {
		org.SetEstablishedDate(*req.EstablishedDate)
	}

	return s.persist(ctx, org, tenantID, locale)
}

// GetByID retrieves a party by ID
func (s *Service) GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	p, err := s.parties.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	resp := ToPartyResponse(p)
	return &resp, nil
}

// List retrieves parties for a tenant with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) (*shared.Paginated[PartyListResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.PartyType != "" {
		domainFilter.Filters = map[string]interface{}{"party_type": filter.PartyType}
	}

	parties, err := s.parties.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.parties.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToPartyListResponses(parties), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Rename updates the party's display name
func (s *Service) Rename(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req RenamePartyRequest) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().Rename(req.Name)
	})
}

// SetAttribute sets or replaces one attribute on the party
func (s *Service) SetAttribute(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req SetAttributeRequest) (*MutationResponse, error) {
	value, err := req.Value.ToDomain()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().SetAttribute(party.NewAttribute(req.Type, value))
	})
}

// RemoveAttribute removes the attribute with the given type code
func (s *Service) RemoveAttribute(ctx context.Context, tenantID, partyID uuid.UUID, locale, typeCode string) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		if !p.Common().RemoveAttributeWithType(typeCode) {
			return shared.NewDomainError("NOT_FOUND", "Party has no attribute with this type")
		}
		return nil
	})
}

// SetPreference sets or replaces one preference on the party
func (s *Service) SetPreference(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req SetPreferenceRequest) (*MutationResponse, error) {
	value, err := req.Value.ToDomain()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().SetPreference(party.NewPreference(req.Type, value))
	})
}

// RemovePreference removes the preference with the given type code
func (s *Service) RemovePreference(ctx context.Context, tenantID, partyID uuid.UUID, locale, typeCode string) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		if !p.Common().RemovePreferenceWithType(typeCode) {
			return shared.NewDomainError("NOT_FOUND", "Party has no preference with this type")
		}
		return nil
	})
}

// AddRole adds a role to the party
func (s *Service) AddRole(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req AddRoleRequest) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().AddRole(party.Role{
			Type:      req.Type,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		})
	})
}

// RemoveRole removes the role with the given type code
func (s *Service) RemoveRole(ctx context.Context, tenantID, partyID uuid.UUID, locale, typeCode string) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		if !p.Common().RemoveRoleWithType(typeCode) {
			return shared.NewDomainError("NOT_FOUND", "Party has no role with this type")
		}
		return nil
	})
}

// AddAddress adds a physical address to the party
func (s *Service) AddAddress(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req AddAddressRequest) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().AddAddress(party.PhysicalAddress{
			Type:        req.Type,
			StreetName:  req.StreetName,
			HouseNumber: req.HouseNumber,
			BoxNumber:   req.BoxNumber,
			FreeLines:   req.FreeLines,
			City:        req.City,
			Region:      req.Region,
			PostalCode:  req.PostalCode,
			Country:     req.Country,
		})
	})
}

// AddContactMechanism adds a contact mechanism to the party
func (s *Service) AddContactMechanism(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req AddContactMechanismRequest) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().AddContactMechanism(party.ContactMechanism{
			Type:      req.Type,
			Role:      req.Role,
			Value:     req.Value,
			Preferred: req.Preferred,
		})
	})
}

// AddIdentification adds an identification document to the party
func (s *Service) AddIdentification(ctx context.Context, tenantID, partyID uuid.UUID, locale string, req AddIdentificationRequest) (*MutationResponse, error) {
	return s.mutate(ctx, tenantID, partyID, locale, func(p party.Party) error {
		return p.Common().AddIdentification(party.Identification{
			Type:           req.Type,
			Number:         req.Number,
			CountryOfIssue: req.CountryOfIssue,
			IssueDate:      req.IssueDate,
			ExpiryDate:     req.ExpiryDate,
		})
	})
}

// Delete removes the party and all its sub-collections
func (s *Service) Delete(ctx context.Context, tenantID, partyID uuid.UUID) error {
	// Look the party up first so a missing id reports NOT_FOUND
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, partyID); err != nil {
		return err
	}
	return s.parties.Delete(ctx, tenantID, partyID)
}

// Validate runs the full validation pipeline without mutating anything
func (s *Service) Validate(ctx context.Context, tenantID, partyID uuid.UUID, locale string) (*ValidationResponse, error) {
	p, err := s.parties.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	set, err := s.validator.ValidateParty(ctx, p, validationContext(tenantID, locale))
	if err != nil {
		return nil, err
	}
	resp := ToValidationResponse(set)
	return &resp, nil
}

// History returns a page of the party's snapshot history
func (s *Service) History(ctx context.Context, tenantID, partyID uuid.UUID, query HistoryQuery) (*shared.Paginated[SnapshotResponse], error) {
	domainQuery, err := query.ToDomain().Normalize()
	if err != nil {
		return nil, err
	}
	page, err := s.snapshots.FindByEntity(ctx, tenantID, snapshot.EntityTypeParty, partyID, domainQuery)
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

// mutate loads the party, applies fn, validates, and persists aggregate plus
// snapshot atomically.
func (s *Service) mutate(ctx context.Context, tenantID, partyID uuid.UUID, locale string, fn func(party.Party) error) (*MutationResponse, error) {
	p, err := s.parties.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return s.persist(ctx, p, tenantID, locale)
}

func (s *Service) persist(ctx context.Context, p party.Party, tenantID uuid.UUID, locale string) (*MutationResponse, error) {
	set, err := s.validator.ValidateParty(ctx, p, validationContext(tenantID, locale))
	if err != nil {
		return nil, err
	}

	data, err := party.Marshal(p)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.New(tenantID, snapshot.EntityTypeParty, p.Common().ID, data)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.parties.Save(txCtx, p); err != nil {
			return err
		}
		return s.snapshots.Append(txCtx, snap)
	})
	if err != nil {
		return nil, err
	}

	if !set.IsEmpty() {
		s.logger.Debug("party persisted with violations",
			zap.String("party_id", p.Common().ID.String()),
			zap.Int("violations", set.Len()))
	}

	return &MutationResponse{
		Party:      ToPartyResponse(p),
		Validation: ToValidationResponse(set),
	}, nil
}
