// Package party holds the master-data aggregate for persons and
// organizations: typed multi-valued attributes, contact data, roles and the
// other sub-collections the validation engine scores.
package party

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// Type is the concrete party variant code.
type Type string

const (
	TypePerson       Type = "person"
	TypeOrganization Type = "organization"
)

// IsValid returns true for a known party type.
func (t Type) IsValid() bool {
	return t == TypePerson || t == TypeOrganization
}

// Party is the common face of the person/organization sum type. Variant
// behavior is selected by switching on PartyType, not by deep inheritance.
type Party interface {
	shared.AggregateRoot
	PartyType() Type
	GetTenantID() uuid.UUID
	Common() *Base
}

// Base carries the field set shared by both party variants. It is embedded
// by Person and Organization, never used on its own.
type Base struct {
	shared.TenantAggregateRoot
	Name string

	Attributes         []Attribute
	Preferences        []Preference
	ContactMechanisms  []ContactMechanism
	Addresses          []PhysicalAddress
	Identifications    []Identification
	Roles              []Role
	Statuses           []Status
	Locks              []Lock
	TaxNumbers         []TaxNumber
	ExternalReferences []ExternalReference
	Consents           []Consent
	SegmentAllocations []SegmentAllocation
}

func newBase(tenantID uuid.UUID, name string) (Base, error) {
	if tenantID == uuid.Nil {
		return Base{}, shared.InvalidArgument("tenant id is required")
	}
	if err := validatePartyName(name); err != nil {
		return Base{}, err
	}
	return Base{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}, nil
}

// GetTenantID returns the owning tenant.
func (b *Base) GetTenantID() uuid.UUID {
	return b.TenantID
}

// Common returns the shared field set.
func (b *Base) Common() *Base {
	return b
}

// Rename changes the party's display name.
func (b *Base) Rename(name string) error {
	if err := validatePartyName(name); err != nil {
		return err
	}
	b.Name = name
	b.touch()
	return nil
}

func (b *Base) touch() {
	b.UpdatedAt = time.Now()
}

// SetAttribute adds the attribute or, when one with the same type code
// already exists, replaces its value. Attribute type codes are unique within
// a party.
func (b *Base) SetAttribute(a Attribute) error {
	if err := validateTypeCode(a.Type); err != nil {
		return err
	}
	for i := range b.Attributes {
		if strings.EqualFold(b.Attributes[i].Type, a.Type) {
			b.Attributes[i] = a
			b.touch()
			return nil
		}
	}
	b.Attributes = append(b.Attributes, a)
	b.touch()
	return nil
}

// RemoveAttributeWithType removes the attribute carrying the given type code.
// Removing an absent type is a no-op returning false.
func (b *Base) RemoveAttributeWithType(typeCode string) bool {
	for i := range b.Attributes {
		if strings.EqualFold(b.Attributes[i].Type, typeCode) {
			b.Attributes = append(b.Attributes[:i], b.Attributes[i+1:]...)
			b.touch()
			return true
		}
	}
	return false
}

// HasAttributeWithType reports whether an attribute with the type code exists.
func (b *Base) HasAttributeWithType(typeCode string) bool {
	return b.AttributeWithType(typeCode) != nil
}

// AttributeWithType returns the attribute with the type code, or nil.
func (b *Base) AttributeWithType(typeCode string) *Attribute {
	for i := range b.Attributes {
		if strings.EqualFold(b.Attributes[i].Type, typeCode) {
			return &b.Attributes[i]
		}
	}
	return nil
}

// SetPreference adds or replaces the preference with the same type code.
func (b *Base) SetPreference(p Preference) error {
	if err := validateTypeCode(p.Type); err != nil {
		return err
	}
	for i := range b.Preferences {
		if strings.EqualFold(b.Preferences[i].Type, p.Type) {
			b.Preferences[i] = p
			b.touch()
			return nil
		}
	}
	b.Preferences = append(b.Preferences, p)
	b.touch()
	return nil
}

// RemovePreferenceWithType removes the preference with the type code.
func (b *Base) RemovePreferenceWithType(typeCode string) bool {
	for i := range b.Preferences {
		if strings.EqualFold(b.Preferences[i].Type, typeCode) {
			b.Preferences = append(b.Preferences[:i], b.Preferences[i+1:]...)
			b.touch()
			return true
		}
	}
	return false
}

// PreferenceWithType returns the preference with the type code, or nil.
func (b *Base) PreferenceWithType(typeCode string) *Preference {
	for i := range b.Preferences {
		if strings.EqualFold(b.Preferences[i].Type, typeCode) {
			return &b.Preferences[i]
		}
	}
	return nil
}

// AddContactMechanism appends a contact mechanism.
func (b *Base) AddContactMechanism(cm ContactMechanism) error {
	if err := validateTypeCode(cm.Type); err != nil {
		return err
	}
	b.ContactMechanisms = append(b.ContactMechanisms, cm)
	b.touch()
	return nil
}

// AddAddress appends a physical address.
func (b *Base) AddAddress(a PhysicalAddress) error {
	if err := validateTypeCode(a.Type); err != nil {
		return err
	}
	b.Addresses = append(b.Addresses, a)
	b.touch()
	return nil
}

// AddIdentification appends an identification document.
func (b *Base) AddIdentification(id Identification) error {
	if err := validateTypeCode(id.Type); err != nil {
		return err
	}
	b.Identifications = append(b.Identifications, id)
	b.touch()
	return nil
}

// AddRole grants the party a role. Granting a role type the party already
// holds is rejected.
func (b *Base) AddRole(r Role) error {
	if err := validateTypeCode(r.Type); err != nil {
		return err
	}
	if b.HasRoleWithType(r.Type) {
		return shared.NewDomainError("ALREADY_EXISTS", "Party already holds this role type")
	}
	b.Roles = append(b.Roles, r)
	b.touch()
	return nil
}

// RemoveRoleWithType revokes the role with the type code.
func (b *Base) RemoveRoleWithType(typeCode string) bool {
	for i := range b.Roles {
		if strings.EqualFold(b.Roles[i].Type, typeCode) {
			b.Roles = append(b.Roles[:i], b.Roles[i+1:]...)
			b.touch()
			return true
		}
	}
	return false
}

// HasRoleWithType reports whether the party holds the role type.
func (b *Base) HasRoleWithType(typeCode string) bool {
	for i := range b.Roles {
		if strings.EqualFold(b.Roles[i].Type, typeCode) {
			return true
		}
	}
	return false
}

// RoleTypes returns the codes of all held roles, in grant order.
func (b *Base) RoleTypes() []string {
	types := make([]string, 0, len(b.Roles))
	for _, r := range b.Roles {
		types = append(types, r.Type)
	}
	return types
}

// AddStatus appends a status entry.
func (b *Base) AddStatus(s Status) error {
	if err := validateTypeCode(s.Type); err != nil {
		return err
	}
	b.Statuses = append(b.Statuses, s)
	b.touch()
	return nil
}

// AddLock places a lock on the party.
func (b *Base) AddLock(l Lock) error {
	if err := validateTypeCode(l.Type); err != nil {
		return err
	}
	b.Locks = append(b.Locks, l)
	b.touch()
	return nil
}

// RemoveLockWithType lifts the lock with the type code.
func (b *Base) RemoveLockWithType(typeCode string) bool {
	for i := range b.Locks {
		if strings.EqualFold(b.Locks[i].Type, typeCode) {
			b.Locks = append(b.Locks[:i], b.Locks[i+1:]...)
			b.touch()
			return true
		}
	}
	return false
}

// IsLocked reports whether any lock is in place.
func (b *Base) IsLocked() bool {
	return len(b.Locks) > 0
}

// AddTaxNumber appends a tax number.
func (b *Base) AddTaxNumber(tn TaxNumber) error {
	if err := validateTypeCode(tn.Type); err != nil {
		return err
	}
	b.TaxNumbers = append(b.TaxNumbers, tn)
	b.touch()
	return nil
}

// AddExternalReference appends an external system reference.
func (b *Base) AddExternalReference(ref ExternalReference) error {
	if err := validateTypeCode(ref.Type); err != nil {
		return err
	}
	b.ExternalReferences = append(b.ExternalReferences, ref)
	b.touch()
	return nil
}

// AddConsent records a consent entry.
func (b *Base) AddConsent(c Consent) error {
	if err := validateTypeCode(c.Type); err != nil {
		return err
	}
	b.Consents = append(b.Consents, c)
	b.touch()
	return nil
}

// AddSegmentAllocation allocates the party to a segment.
func (b *Base) AddSegmentAllocation(sa SegmentAllocation) error {
	if err := validateTypeCode(sa.Segment); err != nil {
		return err
	}
	b.SegmentAllocations = append(b.SegmentAllocations, sa)
	b.touch()
	return nil
}

// Validation helpers shared by both variants.

func validatePartyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.InvalidArgument("party name cannot be empty")
	}
	if len(name) > 200 {
		return shared.InvalidArgument("party name cannot exceed 200 characters")
	}
	return nil
}

func validateTypeCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.InvalidArgument("type code cannot be empty")
	}
	if len(code) > 100 {
		return shared.InvalidArgument("type code cannot exceed 100 characters")
	}
	return nil
}
