package party

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
	"github.com/mdm/backend/internal/domain/snapshot"
	"github.com/mdm/backend/internal/domain/validation"
)

// =============================================================================
// Typed value DTOs
// =============================================================================

// TypedValueRequest carries a typed value in its canonical string form
type TypedValueRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=BOOLEAN DATE DECIMAL DOUBLE INTEGER STRING"`
	Value string `json:"value" binding:"required"`
	Unit  string `json:"unit" binding:"max=50"`
}

// ToDomain parses the request into a TypedValue
func (r TypedValueRequest) ToDomain() (valueobject.TypedValue, error) {
	v, err := valueobject.ParseTypedValue(valueobject.ValueKind(r.Kind), r.Value)
	if err != nil {
		return valueobject.TypedValue{}, err
	}
	if r.Unit != "" {
		v = v.WithUnit(r.Unit)
	}
	return v, nil
}

// TypedValueResponse represents a typed value in API responses
type TypedValueResponse struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// ToTypedValueResponse converts a domain typed value to its API shape
func ToTypedValueResponse(v valueobject.TypedValue) TypedValueResponse {
	return TypedValueResponse{
		Kind:  string(v.Kind()),
		Value: v.String(),
		Unit:  v.Unit(),
	}
}

// =============================================================================
// Party requests
// =============================================================================

// CreatePersonRequest represents a request to create a new person
type CreatePersonRequest struct {
	FirstName      string     `json:"first_name" binding:"required,min=1,max=200"`
	MiddleNames    string     `json:"middle_names" binding:"max=200"`
	LastName       string     `json:"last_name" binding:"required,min=1,max=200"`
	Initials       string     `json:"initials" binding:"max=50"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         string     `json:"gender" binding:"max=50"`
	MaritalStatus  string     `json:"marital_status" binding:"max=50"`
	CountryOfBirth string     `json:"country_of_birth" binding:"max=10"`
}

// CreateOrganizationRequest represents a request to create a new organization
type CreateOrganizationRequest struct {
	LegalName          string     `json:"legal_name" binding:"required,min=1,max=300"`
	TradeName          string     `json:"trade_name" binding:"max=300"`
	LegalForm          string     `json:"legal_form" binding:"max=50"`
	RegistrationNumber string     `json:"registration_number" binding:"max=100"`
	EstablishedDate    *time.Time `json:"established_date"`
}

// RenamePartyRequest updates the display name
type RenamePartyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=300"`
}

// SetAttributeRequest sets or replaces one attribute
type SetAttributeRequest struct {
	Type  string            `json:"type" binding:"required,min=1,max=100"`
	Value TypedValueRequest `json:"value" binding:"required"`
}

// SetPreferenceRequest sets or replaces one preference
type SetPreferenceRequest struct {
	Type  string            `json:"type" binding:"required,min=1,max=100"`
	Value TypedValueRequest `json:"value" binding:"required"`
}

// AddRoleRequest adds one role to the party
type AddRoleRequest struct {
	Type      string     `json:"type" binding:"required,min=1,max=100"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// AddAddressRequest adds one physical address
type AddAddressRequest struct {
	Type        string   `json:"type" binding:"required,min=1,max=50"`
	StreetName  string   `json:"street_name" binding:"max=300"`
	HouseNumber string   `json:"house_number" binding:"max=50"`
	BoxNumber   string   `json:"box_number" binding:"max=50"`
	FreeLines   []string `json:"free_lines" binding:"max=10,dive,max=300"`
	City        string   `json:"city" binding:"max=200"`
	Region      string   `json:"region" binding:"max=200"`
	PostalCode  string   `json:"postal_code" binding:"max=50"`
	Country     string   `json:"country" binding:"max=10"`
}

// AddContactMechanismRequest adds one contact mechanism
type AddContactMechanismRequest struct {
	Type      string `json:"type" binding:"required,min=1,max=100"`
	Role      string `json:"role" binding:"max=100"`
	Value     string `json:"value" binding:"required,min=1,max=500"`
	Preferred bool   `json:"preferred"`
}

// AddIdentificationRequest adds one identification document
type AddIdentificationRequest struct {
	Type           string     `json:"type" binding:"required,min=1,max=100"`
	Number         string     `json:"number" binding:"required,min=1,max=100"`
	CountryOfIssue string     `json:"country_of_issue" binding:"max=10"`
	IssueDate      *time.Time `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

// PartyListFilter filters and paginates party lists
type PartyListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Search    string `form:"search"`
	PartyType string `form:"party_type" binding:"omitempty,oneof=person organization"`
}

// =============================================================================
// Party responses
// =============================================================================

// PersonResponse carries the person-only fields
type PersonResponse struct {
	FirstName      string     `json:"first_name"`
	MiddleNames    string     `json:"middle_names,omitempty"`
	LastName       string     `json:"last_name"`
	Initials       string     `json:"initials,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	MaritalStatus  string     `json:"marital_status,omitempty"`
	CountryOfBirth string     `json:"country_of_birth,omitempty"`
}

// OrganizationResponse carries the organization-only fields
type OrganizationResponse struct {
	LegalName          string     `json:"legal_name"`
	TradeName          string     `json:"trade_name,omitempty"`
	LegalForm          string     `json:"legal_form,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	EstablishedDate    *time.Time `json:"established_date,omitempty"`
}

// TypedEntryResponse represents an attribute, preference or property
type TypedEntryResponse struct {
	Type  string             `json:"type"`
	Value TypedValueResponse `json:"value"`
}

// ContactMechanismResponse represents one contact mechanism
type ContactMechanismResponse struct {
	Type      string `json:"type"`
	Role      string `json:"role,omitempty"`
	Value     string `json:"value"`
	Preferred bool   `json:"preferred"`
}

// AddressResponse represents one physical address
type AddressResponse struct {
	Type        string   `json:"type"`
	StreetName  string   `json:"street_name,omitempty"`
	HouseNumber string   `json:"house_number,omitempty"`
	BoxNumber   string   `json:"box_number,omitempty"`
	FreeLines   []string `json:"free_lines,omitempty"`
	City        string   `json:"city,omitempty"`
	Region      string   `json:"region,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	Country     string   `json:"country,omitempty"`
}

// IdentificationResponse represents one identification document
type IdentificationResponse struct {
	Type           string     `json:"type"`
	Number         string     `json:"number"`
	CountryOfIssue string     `json:"country_of_issue,omitempty"`
	IssueDate      *time.Time `json:"issue_date,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}

// RoleResponse represents one held role
type RoleResponse struct {
	Type      string     `json:"type"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// PartyResponse represents a party aggregate in API responses
type PartyResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	PartyType string    `json:"party_type"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`

	Person       *PersonResponse       `json:"person,omitempty"`
	Organization *OrganizationResponse `json:"organization,omitempty"`

	Attributes        []TypedEntryResponse       `json:"attributes"`
	Preferences       []TypedEntryResponse       `json:"preferences"`
	ContactMechanisms []ContactMechanismResponse `json:"contact_mechanisms"`
	Addresses         []AddressResponse          `json:"addresses"`
	Identifications   []IdentificationResponse   `json:"identifications"`
	Roles             []RoleResponse             `json:"roles"`
	Locked            bool                       `json:"locked"`
}

// ToPartyResponse converts a domain party to its API shape
func ToPartyResponse(p party.Party) PartyResponse {
	base := p.Common()
	resp := PartyResponse{
		ID:        base.ID,
		TenantID:  base.TenantID,
		PartyType: string(p.PartyType()),
		Version:   base.Version,
		CreatedAt: base.CreatedAt,
		UpdatedAt: base.UpdatedAt,
		Name:      base.Name,
		Locked:    base.IsLocked(),
	}

	resp.Attributes = make([]TypedEntryResponse, len(base.Attributes))
	for i, a := range base.Attributes {
		resp.Attributes[i] = TypedEntryResponse{Type: a.Type, Value: ToTypedValueResponse(a.Value)}
	}
	resp.Preferences = make([]TypedEntryResponse, len(base.Preferences))
	for i, pr := range base.Preferences {
		resp.Preferences[i] = TypedEntryResponse{Type: pr.Type, Value: ToTypedValueResponse(pr.Value)}
	}
	resp.ContactMechanisms = make([]ContactMechanismResponse, len(base.ContactMechanisms))
	for i, cm := range base.ContactMechanisms {
		resp.ContactMechanisms[i] = ContactMechanismResponse{
			Type: cm.Type, Role: cm.Role, Value: cm.Value, Preferred: cm.Preferred,
		}
	}
	resp.Addresses = make([]AddressResponse, len(base.Addresses))
	for i, addr := range base.Addresses {
		resp.Addresses[i] = AddressResponse{
			Type:        addr.Type,
			StreetName:  addr.StreetName,
			HouseNumber: addr.HouseNumber,
			BoxNumber:   addr.BoxNumber,
			FreeLines:   addr.FreeLines,
			City:        addr.City,
			Region:      addr.Region,
			PostalCode:  addr.PostalCode,
			Country:     addr.Country,
		}
	}
	resp.Identifications = make([]IdentificationResponse, len(base.Identifications))
	for i, id := range base.Identifications {
		resp.Identifications[i] = IdentificationResponse{
			Type:           id.Type,
			Number:         id.Number,
			CountryOfIssue: id.CountryOfIssue,
			IssueDate:      id.IssueDate,
			ExpiryDate:     id.ExpiryDate,
		}
	}
	resp.Roles = make([]RoleResponse, len(base.Roles))
	for i, r := range base.Roles {
		resp.Roles[i] = RoleResponse{Type: r.Type, StartDate: r.StartDate, EndDate: r.EndDate}
	}

	switch v := p.(type) {
	case *party.Person:
		resp.Person = &PersonResponse{
			FirstName:      v.FirstName,
			MiddleNames:    v.MiddleNames,
			LastName:       v.LastName,
			Initials:       v.Initials,
			DateOfBirth:    v.DateOfBirth,
			Gender:         v.Gender,
			MaritalStatus:  v.MaritalStatus,
			CountryOfBirth: v.CountryOfBirth,
		}
	case *party.Organization:
		resp.Organization = &OrganizationResponse{
			LegalName:          v.LegalName,
			TradeName:          v.TradeName,
			LegalForm:          v.LegalForm,
			RegistrationNumber: v.RegistrationNumber,
			EstablishedDate:    v.EstablishedDate,
		}
	}

	return resp
}

// PartyListResponse is the reduced shape for list endpoints
type PartyListResponse struct {
	ID        uuid.UUID `json:"id"`
	PartyType string    `json:"party_type"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToPartyListResponses converts a party list to its reduced API shape
func ToPartyListResponses(parties []party.Party) []PartyListResponse {
	out := make([]PartyListResponse, len(parties))
	for i, p := range parties {
		base := p.Common()
		out[i] = PartyListResponse{
			ID:        base.ID,
			PartyType: string(p.PartyType()),
			Name:      base.Name,
			UpdatedAt: base.UpdatedAt,
		}
	}
	return out
}

// =============================================================================
// Validation responses
// =============================================================================

// ViolationResponse represents one business-rule violation
type ViolationResponse struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// ValidationResponse carries the outcome of a validation run
type ValidationResponse struct {
	Valid      bool                `json:"valid"`
	Violations []ViolationResponse `json:"violations"`
}

// ToValidationResponse converts a violation set to its API shape
func ToValidationResponse(set *validation.Set) ValidationResponse {
	violations := set.Violations()
	resp := ValidationResponse{
		Valid:      set.IsEmpty(),
		Violations: make([]ViolationResponse, len(violations)),
	}
	for i, v := range violations {
		resp.Violations[i] = ViolationResponse{Path: v.Path, Kind: string(v.Kind)}
	}
	return resp
}

// MutationResponse returns the mutated party together with its current
// violation set; a mutation that leaves the party invalid still persists.
type MutationResponse struct {
	Party      PartyResponse      `json:"party"`
	Validation ValidationResponse `json:"validation"`
}

// =============================================================================
// History DTOs
// =============================================================================

// HistoryQuery selects a page of snapshot history
type HistoryQuery struct {
	From *time.Time `form:"from"`
	To   *time.Time `form:"to"`
	Sort string     `form:"sort" binding:"omitempty,oneof=asc desc"`
	Page int        `form:"page"`
	Size int        `form:"size"`
}

// ToDomain converts the query to its domain shape
func (q HistoryQuery) ToDomain() snapshot.Query {
	out := snapshot.Query{Sort: snapshot.SortDirection(q.Sort), Page: q.Page, Size: q.Size}
	if q.From != nil {
		out.From = *q.From
	}
	if q.To != nil {
		out.To = *q.To
	}
	return out
}

// SnapshotResponse represents one history entry
type SnapshotResponse struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	TakenAt    time.Time       `json:"taken_at"`
	Seq        int64           `json:"seq"`
	Data       json.RawMessage `json:"data"`
}

// ToSnapshotResponse converts a domain snapshot to its API shape
func ToSnapshotResponse(s *snapshot.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:         s.ID,
		EntityType: string(s.EntityType),
		EntityID:   s.EntityID,
		TakenAt:    s.TakenAt,
		Seq:        s.Seq,
		Data:       json.RawMessage(s.Data),
	}
}

// =============================================================================
// Association and mandate DTOs
// =============================================================================

// CreateAssociationRequest links two parties
type CreateAssociationRequest struct {
	Type        string     `json:"type" binding:"required,min=1,max=100"`
	FromPartyID uuid.UUID  `json:"from_party_id" binding:"required"`
	ToPartyID   uuid.UUID  `json:"to_party_id" binding:"required"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateMandateRequest grants a mandate between two parties
type CreateMandateRequest struct {
	Type       string     `json:"type" binding:"required,min=1,max=100"`
	GrantorID  uuid.UUID  `json:"grantor_id" binding:"required"`
	GranteeID  uuid.UUID  `json:"grantee_id" binding:"required"`
	Reference  string     `json:"reference" binding:"max=200"`
	SignedDate *time.Time `json:"signed_date"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

// SetPropertyRequest sets or replaces one typed property
type SetPropertyRequest struct {
	Type  string            `json:"type" binding:"required,min=1,max=100"`
	Value TypedValueRequest `json:"value" binding:"required"`
}

// AssociationResponse represents an association in API responses
type AssociationResponse struct {
	ID          uuid.UUID            `json:"id"`
	TenantID    uuid.UUID            `json:"tenant_id"`
	Type        string               `json:"type"`
	FromPartyID uuid.UUID            `json:"from_party_id"`
	ToPartyID   uuid.UUID            `json:"to_party_id"`
	StartDate   *time.Time           `json:"start_date,omitempty"`
	EndDate     *time.Time           `json:"end_date,omitempty"`
	Properties  []TypedEntryResponse `json:"properties"`
}

// ToAssociationResponse converts a domain association to its API shape
func ToAssociationResponse(a *party.Association) AssociationResponse {
	return AssociationResponse{
		ID:          a.ID,
		TenantID:    a.TenantID,
		Type:        a.Type,
		FromPartyID: a.FromPartyID,
		ToPartyID:   a.ToPartyID,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		Properties:  toPropertyResponses(a.Properties),
	}
}

// MandateResponse represents a mandate in API responses
type MandateResponse struct {
	ID         uuid.UUID            `json:"id"`
	TenantID   uuid.UUID            `json:"tenant_id"`
	Type       string               `json:"type"`
	GrantorID  uuid.UUID            `json:"grantor_id"`
	GranteeID  uuid.UUID            `json:"grantee_id"`
	Reference  string               `json:"reference,omitempty"`
	SignedDate *time.Time           `json:"signed_date,omitempty"`
	ValidFrom  *time.Time           `json:"valid_from,omitempty"`
	ValidUntil *time.Time           `json:"valid_until,omitempty"`
	Properties []TypedEntryResponse `json:"properties"`
}

// ToMandateResponse converts a domain mandate to its API shape
func ToMandateResponse(m *party.Mandate) MandateResponse {
	return MandateResponse{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Type:       m.Type,
		GrantorID:  m.GrantorID,
		GranteeID:  m.GranteeID,
		Reference:  m.Reference,
		SignedDate: m.SignedDate,
		ValidFrom:  m.ValidFrom,
		ValidUntil: m.ValidUntil,
		Properties: toPropertyResponses(m.Properties),
	}
}

func toPropertyResponses(props []party.Property) []TypedEntryResponse {
	out := make([]TypedEntryResponse, len(props))
	for i, p := range props {
		out[i] = TypedEntryResponse{Type: p.Type, Value: ToTypedValueResponse(p.Value)}
	}
	return out
}
