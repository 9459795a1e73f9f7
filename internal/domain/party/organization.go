package party

import (
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// Organization is the legal-entity party variant.
type Organization struct {
	Base
	LegalName          string
	TradeName          string
	LegalForm          string // legal_forms code
	RegistrationNumber string
	EstablishedDate    *time.Time
}

// NewOrganization creates an organization with the mandatory fields.
func NewOrganization(tenantID uuid.UUID, legalName string) (*Organization, error) {
	if err := validatePartyName(legalName); err != nil {
		return nil, err
	}
	base, err := newBase(tenantID, legalName)
	if err != nil {
		return nil, err
	}
	return &Organization{
		Base:      base,
		LegalName: legalName,
	}, nil
}

// PartyType implements Party.
func (o *Organization) PartyType() Type {
	return TypeOrganization
}

// SetLegalName updates the legal name and derived display name.
func (o *Organization) SetLegalName(name string) error {
	if err := validatePartyName(name); err != nil {
		return err
	}
	o.LegalName = name
	o.Name = name
	o.touch()
	return nil
}

// SetTradeName sets the trade name.
func (o *Organization) SetTradeName(name string) error {
	if name != "" && len(name) > 200 {
		return shared.InvalidArgument("trade name cannot exceed 200 characters")
	}
	o.TradeName = name
	o.touch()
	return nil
}

// SetLegalForm sets the legal form code.
func (o *Organization) SetLegalForm(code string) error {
	if err := validateTypeCode(code); err != nil {
		return err
	}
	o.LegalForm = code
	o.touch()
	return nil
}

// SetRegistrationNumber sets the chamber-of-commerce style registration number.
func (o *Organization) SetRegistrationNumber(number string) error {
	if number != "" && len(number) > 50 {
		return shared.InvalidArgument("registration number cannot exceed 50 characters")
	}
	o.RegistrationNumber = number
	o.touch()
	return nil
}

// SetEstablishedDate sets the establishment date.
func (o *Organization) SetEstablishedDate(d time.Time) {
	o.EstablishedDate = &d
	o.touch()
}
