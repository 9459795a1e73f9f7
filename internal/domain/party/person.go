package party

import (
	"time"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
)

// Person is the individual party variant.
type Person struct {
	Base
	FirstName      string
	MiddleNames    string
	LastName       string
	Initials       string
	DateOfBirth    *time.Time
	Gender         string // genders code
	MaritalStatus  string // marital_statuses code
	CountryOfBirth string // countries code
}

// NewPerson creates a person with the mandatory fields. The display name is
// derived from the given names.
func NewPerson(tenantID uuid.UUID, firstName, lastName string) (*Person, error) {
	if err := validatePersonName(firstName, "first name"); err != nil {
		return nil, err
	}
	if err := validatePersonName(lastName, "last name"); err != nil {
		return nil, err
	}
	base, err := newBase(tenantID, firstName+" "+lastName)
	if err != nil {
		return nil, err
	}
	return &Person{
		Base:      base,
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}

// PartyType implements Party.
func (p *Person) PartyType() Type {
	return TypePerson
}

// SetNames updates the person's name parts and derived display name.
func (p *Person) SetNames(firstName, middleNames, lastName, initials string) error {
	if err := validatePersonName(firstName, "first name"); err != nil {
		return err
	}
	if err := validatePersonName(lastName, "last name"); err != nil {
		return err
	}
	p.FirstName = firstName
	p.MiddleNames = middleNames
	p.LastName = lastName
	p.Initials = initials
	p.Name = firstName + " " + lastName
	p.touch()
	return nil
}

// SetDateOfBirth sets the birth date.
func (p *Person) SetDateOfBirth(dob time.Time) {
	p.DateOfBirth = &dob
	p.touch()
}

// SetGender sets the gender code.
func (p *Person) SetGender(code string) error {
	if err := validateTypeCode(code); err != nil {
		return err
	}
	p.Gender = code
	p.touch()
	return nil
}

// SetMaritalStatus sets the marital status code.
func (p *Person) SetMaritalStatus(code string) error {
	if err := validateTypeCode(code); err != nil {
		return err
	}
	p.MaritalStatus = code
	p.touch()
	return nil
}

// SetCountryOfBirth sets the country-of-birth code.
func (p *Person) SetCountryOfBirth(code string) error {
	if err := validateTypeCode(code); err != nil {
		return err
	}
	p.CountryOfBirth = code
	p.touch()
	return nil
}

func validatePersonName(name, field string) error {
	if name == "" {
		return shared.InvalidArgument(field + " cannot be empty")
	}
	if len(name) > 100 {
		return shared.InvalidArgument(field + " cannot exceed 100 characters")
	}
	return nil
}
