package party

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// documentSchemaVersion guards snapshot decoding against future layout
// changes.
const documentSchemaVersion = 1

// Document is the serialized form of a party written into snapshots. It is a
// plain data shape: decoding it reproduces a party that validates identically
// to the original.
type Document struct {
	SchemaVersion int       `json:"schema_version"`
	PartyType     Type      `json:"party_type"`
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `json:"name"`

	Attributes         []Attribute         `json:"attributes,omitempty"`
	Preferences        []Preference        `json:"preferences,omitempty"`
	ContactMechanisms  []ContactMechanism  `json:"contact_mechanisms,omitempty"`
	Addresses          []PhysicalAddress   `json:"addresses,omitempty"`
	Identifications    []Identification    `json:"identifications,omitempty"`
	Roles              []Role              `json:"roles,omitempty"`
	Statuses           []Status            `json:"statuses,omitempty"`
	Locks              []Lock              `json:"locks,omitempty"`
	TaxNumbers         []TaxNumber         `json:"tax_numbers,omitempty"`
	ExternalReferences []ExternalReference `json:"external_references,omitempty"`
	Consents           []Consent           `json:"consents,omitempty"`
	SegmentAllocations []SegmentAllocation `json:"segment_allocations,omitempty"`

	Person       *PersonDocument       `json:"person,omitempty"`
	Organization *OrganizationDocument `json:"organization,omitempty"`
}

// PersonDocument carries the person-only fields.
type PersonDocument struct {
	FirstName      string     `json:"first_name"`
	MiddleNames    string     `json:"middle_names,omitempty"`
	LastName       string     `json:"last_name"`
	Initials       string     `json:"initials,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	MaritalStatus  string     `json:"marital_status,omitempty"`
	CountryOfBirth string     `json:"country_of_birth,omitempty"`
}

// OrganizationDocument carries the organization-only fields.
type OrganizationDocument struct {
	LegalName          string     `json:"legal_name"`
	TradeName          string     `json:"trade_name,omitempty"`
	LegalForm          string     `json:"legal_form,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	EstablishedDate    *time.Time `json:"established_date,omitempty"`
}

// ToDocument converts a party into its serializable document.
func ToDocument(p Party) (*Document, error) {
	base := p.Common()
	doc := &Document{
		SchemaVersion:      documentSchemaVersion,
		PartyType:          p.PartyType(),
		ID:                 base.ID,
		TenantID:           base.TenantID,
		Version:            base.Version,
		CreatedAt:          base.CreatedAt,
		UpdatedAt:          base.UpdatedAt,
		Name:               base.Name,
		Attributes:         base.Attributes,
		Preferences:        base.Preferences,
		ContactMechanisms:  base.ContactMechanisms,
		Addresses:          base.Addresses,
		Identifications:    base.Identifications,
		Roles:              base.Roles,
		Statuses:           base.Statuses,
		Locks:              base.Locks,
		TaxNumbers:         base.TaxNumbers,
		ExternalReferences: base.ExternalReferences,
		Consents:           base.Consents,
		SegmentAllocations: base.SegmentAllocations,
	}

	switch v := p.(type) {
	case *Person:
		doc.Person = &PersonDocument{
			FirstName:      v.FirstName,
			MiddleNames:    v.MiddleNames,
			LastName:       v.LastName,
			Initials:       v.Initials,
			DateOfBirth:    v.DateOfBirth,
			Gender:         v.Gender,
			MaritalStatus:  v.MaritalStatus,
			CountryOfBirth: v.CountryOfBirth,
		}
	case *Organization:
		doc.Organization = &OrganizationDocument{
			LegalName:          v.LegalName,
			TradeName:          v.TradeName,
			LegalForm:          v.LegalForm,
			RegistrationNumber: v.RegistrationNumber,
			EstablishedDate:    v.EstablishedDate,
		}
	default:
		return nil, fmt.Errorf("unknown party variant %T", p)
	}

	return doc, nil
}

// ToParty reconstructs the party the document was taken from.
func (d *Document) ToParty() (Party, error) {
	if d.SchemaVersion != documentSchemaVersion {
		return nil, fmt.Errorf("unsupported party document schema version %d", d.SchemaVersion)
	}

	base := Base{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        d.ID,
					CreatedAt: d.CreatedAt,
					UpdatedAt: d.UpdatedAt,
				},
				Version: d.Version,
			},
			TenantID: d.TenantID,
		},
		Name:               d.Name,
		Attributes:         d.Attributes,
		Preferences:        d.Preferences,
		ContactMechanisms:  d.ContactMechanisms,
		Addresses:          d.Addresses,
		Identifications:    d.Identifications,
		Roles:              d.Roles,
		Statuses:           d.Statuses,
		Locks:              d.Locks,
		TaxNumbers:         d.TaxNumbers,
		ExternalReferences: d.ExternalReferences,
		Consents:           d.Consents,
		SegmentAllocations: d.SegmentAllocations,
	}

	switch d.PartyType {
	case TypePerson:
		if d.Person == nil {
			return nil, fmt.Errorf("person document missing person fields")
		}
		return &Person{
			Base:           base,
			FirstName:      d.Person.FirstName,
			MiddleNames:    d.Person.MiddleNames,
			LastName:       d.Person.LastName,
			Initials:       d.Person.Initials,
			DateOfBirth:    d.Person.DateOfBirth,
			Gender:         d.Person.Gender,
			MaritalStatus:  d.Person.MaritalStatus,
			CountryOfBirth: d.Person.CountryOfBirth,
		}, nil
	case TypeOrganization:
		if d.Organization == nil {
			return nil, fmt.Errorf("organization document missing organization fields")
		}
		return &Organization{
			Base:               base,
			LegalName:          d.Organization.LegalName,
			TradeName:          d.Organization.TradeName,
			LegalForm:          d.Organization.LegalForm,
			RegistrationNumber: d.Organization.RegistrationNumber,
			EstablishedDate:    d.Organization.EstablishedDate,
		}, nil
	default:
		return nil, fmt.Errorf("unknown party type %q in document", d.PartyType)
	}
}

// Marshal serializes a party for snapshot storage.
func Marshal(p Party) ([]byte, error) {
	doc, err := ToDocument(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Unmarshal reconstructs a party from snapshot data.
func Unmarshal(data []byte) (Party, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToParty()
}
