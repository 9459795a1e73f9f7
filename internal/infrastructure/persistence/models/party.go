package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/party"
)

// PartyModel maps a party aggregate to the parties table. The full aggregate
// is stored as a document column; the extracted columns exist for filtering
// and listing only, the document is authoritative.
type PartyModel struct {
	TenantAggregateModel
	PartyType string `gorm:"not null;index"`
	Name      string `gorm:"not null;index"`
	Document  string `gorm:"type:jsonb;not null"`
}

// TableName specifies the table name for PartyModel
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain reconstructs the party aggregate from the stored document.
func (m *PartyModel) ToDomain() (party.Party, error) {
	p, err := party.Unmarshal([]byte(m.Document))
	if err != nil {
		return nil, fmt.Errorf("party %s: decode document: %w", m.ID, err)
	}
	return p, nil
}

// FromDomain populates the row from a party aggregate.
func (m *PartyModel) FromDomain(p party.Party) error {
	doc, err := party.Marshal(p)
	if err != nil {
		return fmt.Errorf("party %s: encode document: %w", p.GetID(), err)
	}

	base := p.Common()
	m.FromDomainTenantAggregateRoot(base.TenantAggregateRoot)
	m.PartyType = string(p.PartyType())
	m.Name = base.Name
	m.Document = string(doc)
	return nil
}

// AssociationModel maps an association to the party_associations table.
// Typed properties are stored as a JSON column.
type AssociationModel struct {
	TenantAggregateModel
	Type        string     `gorm:"not null;index"`
	FromPartyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ToPartyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate   *time.Time
	EndDate     *time.Time
	Properties  string `gorm:"type:jsonb;default:'[]'"`
}

// TableName specifies the table name for AssociationModel
func (AssociationModel) TableName() string {
	return "party_associations"
}

// ToDomain converts the row to a domain association.
func (m *AssociationModel) ToDomain() (*party.Association, error) {
	properties, err := decodeProperties(m.Properties)
	if err != nil {
		return nil, fmt.Errorf("association %s: %w", m.ID, err)
	}

	a := &party.Association{
		Type:        m.Type,
		FromPartyID: m.FromPartyID,
		ToPartyID:   m.ToPartyID,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Properties:  properties,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a, nil
}

// FromDomain populates the row from a domain association.
func (m *AssociationModel) FromDomain(a *party.Association) error {
	properties, err := encodeProperties(a.Properties)
	if err != nil {
		return fmt.Errorf("association %s: %w", a.ID, err)
	}

	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Type = a.Type
	m.FromPartyID = a.FromPartyID
	m.ToPartyID = a.ToPartyID
	m.StartDate = a.StartDate
	m.EndDate = a.EndDate
	m.Properties = properties
	return nil
}

// MandateModel maps a mandate to the party_mandates table.
type MandateModel struct {
	TenantAggregateModel
	Type       string    `gorm:"not null;index"`
	GrantorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	GranteeID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Reference  string
	SignedDate *time.Time
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Properties string `gorm:"type:jsonb;default:'[]'"`
}

// TableName specifies the table name for MandateModel
func (MandateModel) TableName() string {
	return "party_mandates"
}

// ToDomain converts the row to a domain mandate.
func (m *MandateModel) ToDomain() (*party.Mandate, error) {
	properties, err := decodeProperties(m.Properties)
	if err != nil {
		return nil, fmt.Errorf("mandate %s: %w", m.ID, err)
	}

	mandate := &party.Mandate{
		Type:       m.Type,
		GrantorID:  m.GrantorID,
		GranteeID:  m.GranteeID,
		Reference:  m.Reference,
		SignedDate: m.SignedDate,
		ValidFrom:  m.ValidFrom,
		ValidUntil: m.ValidUntil,
		Properties: properties,
	}
	m.PopulateTenantAggregateRoot(&mandate.TenantAggregateRoot)
	return mandate, nil
}

// FromDomain populates the row from a domain mandate.
func (m *MandateModel) FromDomain(mandate *party.Mandate) error {
	properties, err := encodeProperties(mandate.Properties)
	if err != nil {
		return fmt.Errorf("mandate %s: %w", mandate.ID, err)
	}

	m.FromDomainTenantAggregateRoot(mandate.TenantAggregateRoot)
	m.Type = mandate.Type
	m.GrantorID = mandate.GrantorID
	m.GranteeID = mandate.GranteeID
	m.Reference = mandate.Reference
	m.SignedDate = mandate.SignedDate
	m.ValidFrom = mandate.ValidFrom
	m.ValidUntil = mandate.ValidUntil
	m.Properties = properties
	return nil
}

func decodeProperties(encoded string) ([]party.Property, error) {
	if encoded == "" || encoded == "[]" {
		return nil, nil
	}
	var properties []party.Property
	if err := json.Unmarshal([]byte(encoded), &properties); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return properties, nil
}

func encodeProperties(properties []party.Property) (string, error) {
	if len(properties) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(properties)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(encoded), nil
}
