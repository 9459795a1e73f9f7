package party

import (
	"time"
)

// ContactMechanism is one way of reaching the party: an email address, phone
// number, web address and so on, optionally bound to a contact mechanism role
// (e.g. "billing"). The role must be valid for the mechanism's type.
type ContactMechanism struct {
	Type      string // contact_mechanism_types code
	Role      string // contact_mechanism_roles code, optional
	Value     string
	Preferred bool
}

// AddressKind codes for the fields-per-type rules the validator applies.
const (
	AddressTypeStreet   = "STREET"
	AddressTypePOBox    = "PO_BOX"
	AddressTypePackage  = "PACKAGE_STATION"
	AddressTypeFreeForm = "FREE_FORM"
)

// PhysicalAddress is one postal location. Which fields are required and which
// are disallowed depends on the address type: a STREET address needs street
// name, city, country and postal code and must not carry a box number, while
// a PO_BOX address is the reverse.
type PhysicalAddress struct {
	Type        string
	StreetName  string
	HouseNumber string
	BoxNumber   string
	FreeLines   []string
	City        string
	Region      string
	PostalCode  string
	Country     string
}

// Identification is one identity document registered for the party.
type Identification struct {
	Type           string // identification_types code
	Number         string
	CountryOfIssue string
	IssueDate      *time.Time
	ExpiryDate     *time.Time
}

// IsExpiredAt reports whether the document is expired at the given instant.
// Documents without an expiry date never expire.
func (i Identification) IsExpiredAt(t time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(t)
}

// Role is one capacity the party holds. Holding a role activates the
// role-driven constraint set for its type.
type Role struct {
	Type      string // role_types code
	StartDate *time.Time
	EndDate   *time.Time
}

// IsActiveAt reports whether the role is in effect at the given instant.
func (r Role) IsActiveAt(t time.Time) bool {
	if r.StartDate != nil && t.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && t.After(*r.EndDate) {
		return false
	}
	return true
}

// Status is one lifecycle marker on the party.
type Status struct {
	Type          string // status_types code
	EffectiveDate *time.Time
	Reason        string
}

// Lock blocks mutation of the party for a given concern.
type Lock struct {
	Type     string // lock_types code
	Reason   string
	PlacedAt time.Time
}

// TaxNumber is one fiscal registration.
type TaxNumber struct {
	Type    string // tax_number_types code
	Number  string
	Country string
}

// ExternalReference links the party to its identifier in an external system.
type ExternalReference struct {
	Type      string // external_reference_types code
	Reference string
	System    string
}

// Consent records the party's standing on one consent type.
type Consent struct {
	Type      string // consent_types code
	Granted   bool
	DecidedAt *time.Time
}

// SegmentAllocation places the party in a segment.
type SegmentAllocation struct {
	Segment     string // segments code
	AllocatedAt *time.Time
}
