package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
)

// ReferenceItemModel maps one reference-data entry to the reference_items
// table. Global rows carry a NULL tenant_id; tenant overlay rows carry the
// owning tenant.
type ReferenceItemModel struct {
	BaseModel
	Category       string     `gorm:"not null;index:idx_reference_items_key"`
	Code           string     `gorm:"not null;index:idx_reference_items_key"`
	Locale         string     `gorm:"not null;index:idx_reference_items_key"`
	TenantID       *uuid.UUID `gorm:"type:uuid;index:idx_reference_items_key"`
	SortIndex      *int
	Name           string `gorm:"not null"`
	Description    string
	CountryOfIssue string
	PartyTypes     string `gorm:"type:jsonb;default:'[]'"`
	ValueKind      string
	UnitType       string
	AppliesTo      string
}

// TableName specifies the table name for ReferenceItemModel
func (ReferenceItemModel) TableName() string {
	return "reference_items"
}

// ToDomain converts the row to a domain reference item.
func (m *ReferenceItemModel) ToDomain() (reference.Item, error) {
	var partyTypes []string
	if m.PartyTypes != "" && m.PartyTypes != "[]" {
		if err := json.Unmarshal([]byte(m.PartyTypes), &partyTypes); err != nil {
			return reference.Item{}, fmt.Errorf("reference item %s/%s: decode party types: %w", m.Category, m.Code, err)
		}
	}

	scope := reference.GlobalScope()
	if m.TenantID != nil {
		scope = reference.TenantScope(*m.TenantID)
	}

	return reference.Item{
		Category:       reference.Category(m.Category),
		Code:           m.Code,
		Locale:         m.Locale,
		Scope:          scope,
		SortIndex:      m.SortIndex,
		Name:           m.Name,
		Description:    m.Description,
		CountryOfIssue: m.CountryOfIssue,
		PartyTypes:     partyTypes,
		ValueKind:      valueobject.ValueKind(m.ValueKind),
		UnitType:       valueobject.UnitType(m.UnitType),
		AppliesTo:      m.AppliesTo,
	}, nil
}

// FromDomain populates the row from a domain reference item.
func (m *ReferenceItemModel) FromDomain(item reference.Item) error {
	partyTypes := []byte("[]")
	if len(item.PartyTypes) > 0 {
		encoded, err := json.Marshal(item.PartyTypes)
		if err != nil {
			return fmt.Errorf("reference item %s/%s: encode party types: %w", item.Category, item.Code, err)
		}
		partyTypes = encoded
	}

	m.TenantID = nil
	if tenantID, ok := item.Scope.TenantID(); ok {
		m.TenantID = &tenantID
	}

	m.Category = string(item.Category)
	m.Code = item.Code
	m.Locale = item.Locale
	m.SortIndex = item.SortIndex
	m.Name = item.Name
	m.Description = item.Description
	m.CountryOfIssue = item.CountryOfIssue
	m.PartyTypes = string(partyTypes)
	m.ValueKind = string(item.ValueKind)
	m.UnitType = string(item.UnitType)
	m.AppliesTo = item.AppliesTo
	return nil
}

// RoleConstraintModel maps one role constraint row: a rule applied to an
// attribute or preference of parties holding a role.
type RoleConstraintModel struct {
	BaseModel
	RoleType   string `gorm:"not null;index"`
	Target     string `gorm:"not null"`
	TargetType string `gorm:"not null"`
	Qualifier  string
	Kind       string `gorm:"not null"`
	Value      string
}

// TableName specifies the table name for RoleConstraintModel
func (RoleConstraintModel) TableName() string {
	return "role_constraints"
}

// ToDomain converts the row to a domain role constraint.
func (m *RoleConstraintModel) ToDomain() reference.RoleConstraint {
	return reference.RoleConstraint{
		RoleType:   m.RoleType,
		Target:     reference.RoleConstraintTarget(m.Target),
		TargetType: m.TargetType,
		Qualifier:  m.Qualifier,
		Kind:       reference.ConstraintKind(m.Kind),
		Value:      m.Value,
	}
}

// FromDomain populates the row from a domain role constraint.
func (m *RoleConstraintModel) FromDomain(c reference.RoleConstraint) {
	m.RoleType = c.RoleType
	m.Target = string(c.Target)
	m.TargetType = c.TargetType
	m.Qualifier = c.Qualifier
	m.Kind = string(c.Kind)
	m.Value = c.Value
}

// PropertyConstraintModel maps one property constraint row: a rule applied
// to a property of associations or mandates of one type.
type PropertyConstraintModel struct {
	BaseModel
	Owner        string `gorm:"not null;index:idx_property_constraints_owner"`
	OwnerType    string `gorm:"not null;index:idx_property_constraints_owner"`
	PropertyType string `gorm:"not null"`
	Qualifier    string
	Kind         string `gorm:"not null"`
	Value        string
}

// TableName specifies the table name for PropertyConstraintModel
func (PropertyConstraintModel) TableName() string {
	return "property_constraints"
}

// ToDomain converts the row to a domain property constraint.
func (m *PropertyConstraintModel) ToDomain() reference.PropertyConstraint {
	return reference.PropertyConstraint{
		Owner:        reference.PropertyConstraintOwner(m.Owner),
		OwnerType:    m.OwnerType,
		PropertyType: m.PropertyType,
		Qualifier:    m.Qualifier,
		Kind:         reference.ConstraintKind(m.Kind),
		Value:        m.Value,
	}
}

// FromDomain populates the row from a domain property constraint.
func (m *PropertyConstraintModel) FromDomain(c reference.PropertyConstraint) {
	m.Owner = string(c.Owner)
	m.OwnerType = c.OwnerType
	m.PropertyType = c.PropertyType
	m.Qualifier = c.Qualifier
	m.Kind = string(c.Kind)
	m.Value = c.Value
}
