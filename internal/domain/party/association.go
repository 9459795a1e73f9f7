package party

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
)

// Property is a typed, named value on an association or mandate. Same value
// model as a party attribute, but validated against the property constraint
// table for the owning association/mandate type.
type Property struct {
	Type  string
	Value valueobject.TypedValue
}

// NewProperty creates a property carrying a typed value.
func NewProperty(typeCode string, value valueobject.TypedValue) Property {
	return Property{Type: typeCode, Value: value}
}

// propertyList implements the shared property collection semantics: type
// codes are unique within one owner, matched case-insensitively.
type propertyList []Property

func (l propertyList) withType(typeCode string) *Property {
	for i := range l {
		if strings.EqualFold(l[i].Type, typeCode) {
			return &l[i]
		}
	}
	return nil
}

func (l propertyList) set(p Property) propertyList {
	for i := range l {
		if strings.EqualFold(l[i].Type, p.Type) {
			l[i] = p
			return l
		}
	}
	return append(l, p)
}

func (l propertyList) removeType(typeCode string) (propertyList, bool) {
	for i := range l {
		if strings.EqualFold(l[i].Type, typeCode) {
			return append(l[:i], l[i+1:]...), true
		}
	}
	return l, false
}

// Association links two parties in a typed relationship (e.g. guardian,
// ultimate beneficial owner) and carries typed properties of its own.
type Association struct {
	shared.TenantAggregateRoot
	Type        string // association_types code
	FromPartyID uuid.UUID
	ToPartyID   uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	Properties  propertyList
}

// NewAssociation creates an association between two parties.
func NewAssociation(tenantID uuid.UUID, associationType string, fromPartyID, toPartyID uuid.UUID) (*Association, error) {
	if tenantID == uuid.Nil {
		return nil, shared.InvalidArgument("tenant id is required")
	}
	if err := validateTypeCode(associationType); err != nil {
		return nil, err
	}
	if fromPartyID == uuid.Nil || toPartyID == uuid.Nil {
		return nil, shared.InvalidArgument("association requires two party ids")
	}
	if fromPartyID == toPartyID {
		return nil, shared.InvalidArgument("association cannot link a party to itself")
	}
	return &Association{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                associationType,
		FromPartyID:         fromPartyID,
		ToPartyID:           toPartyID,
	}, nil
}

// SetProperty adds the property or replaces the one with the same type code.
func (a *Association) SetProperty(p Property) error {
	if err := validateTypeCode(p.Type); err != nil {
		return err
	}
	a.Properties = a.Properties.set(p)
	a.UpdatedAt = time.Now()
	return nil
}

// RemovePropertyWithType removes the property with the type code. Removing an
// absent type is a no-op returning false.
func (a *Association) RemovePropertyWithType(typeCode string) bool {
	props, removed := a.Properties.removeType(typeCode)
	if removed {
		a.Properties = props
		a.UpdatedAt = time.Now()
	}
	return removed
}

// HasPropertyWithType reports whether a property with the type code exists.
func (a *Association) HasPropertyWithType(typeCode string) bool {
	return a.Properties.withType(typeCode) != nil
}

// PropertyWithType returns the property with the type code, or nil.
func (a *Association) PropertyWithType(typeCode string) *Property {
	return a.Properties.withType(typeCode)
}

// Mandate is a typed authorization one party grants another (e.g. a payment
// mandate), with typed properties validated against the mandate constraint
// table.
type Mandate struct {
	shared.TenantAggregateRoot
	Type          string // mandate_types code
	GrantorID     uuid.UUID
	GranteeID     uuid.UUID
	Reference     string
	SignedDate    *time.Time
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	Properties    propertyList
}

// NewMandate creates a mandate from grantor to grantee.
func NewMandate(tenantID uuid.UUID, mandateType string, grantorID, granteeID uuid.UUID) (*Mandate, error) {
	if tenantID == uuid.Nil {
		return nil, shared.InvalidArgument("tenant id is required")
	}
	if err := validateTypeCode(mandateType); err != nil {
		return nil, err
	}
	if grantorID == uuid.Nil || granteeID == uuid.Nil {
		return nil, shared.InvalidArgument("mandate requires grantor and grantee ids")
	}
	return &Mandate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                mandateType,
		GrantorID:           grantorID,
		GranteeID:           granteeID,
	}, nil
}

// SetProperty adds the property or replaces the one with the same type code.
func (m *Mandate) SetProperty(p Property) error {
	if err := validateTypeCode(p.Type); err != nil {
		return err
	}
	m.Properties = m.Properties.set(p)
	m.UpdatedAt = time.Now()
	return nil
}

// RemovePropertyWithType removes the property with the type code.
func (m *Mandate) RemovePropertyWithType(typeCode string) bool {
	props, removed := m.Properties.removeType(typeCode)
	if removed {
		m.Properties = props
		m.UpdatedAt = time.Now()
	}
	return removed
}

// HasPropertyWithType reports whether a property with the type code exists.
func (m *Mandate) HasPropertyWithType(typeCode string) bool {
	return m.Properties.withType(typeCode) != nil
}

// PropertyWithType returns the property with the type code, or nil.
func (m *Mandate) PropertyWithType(typeCode string) *Property {
	return m.Properties.withType(typeCode)
}
