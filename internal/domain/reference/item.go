package reference

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
)

// Category identifies one reference-data code list.
type Category string

// Known reference-data categories. The resolver accepts any non-empty
// category so tenant administrators can introduce new lists without a code
// change; these constants cover the lists the party model itself consumes.
const (
	CategoryAttributeTypes        Category = "attribute_types"
	CategoryPreferenceTypes       Category = "preference_types"
	CategoryGenders               Category = "genders"
	CategoryMaritalStatuses       Category = "marital_statuses"
	CategoryIdentificationTypes   Category = "identification_types"
	CategoryContactMechanismTypes Category = "contact_mechanism_types"
	CategoryContactMechanismRoles Category = "contact_mechanism_roles"
	CategoryPhysicalAddressTypes  Category = "physical_address_types"
	CategoryRoleTypes             Category = "role_types"
	CategoryStatusTypes           Category = "status_types"
	CategoryLockTypes             Category = "lock_types"
	CategoryTaxNumberTypes        Category = "tax_number_types"
	CategoryExternalRefTypes      Category = "external_reference_types"
	CategoryConsentTypes          Category = "consent_types"
	CategorySegments              Category = "segments"
	CategoryAssociationTypes      Category = "association_types"
	CategoryMandateTypes          Category = "mandate_types"
	CategoryLegalForms            Category = "legal_forms"
	CategoryCountries             Category = "countries"
)

// Scope says whether a reference row belongs to the global default set or to
// one specific tenant. Modeled as a value object rather than a nullable id so
// the overlay rule is type-checked.
type Scope struct {
	tenantID uuid.UUID
	tenant   bool
}

// GlobalScope returns the scope of tenant-agnostic default rows.
func GlobalScope() Scope {
	return Scope{}
}

// TenantScope returns the scope of rows owned by one tenant.
func TenantScope(tenantID uuid.UUID) Scope {
	return Scope{tenantID: tenantID, tenant: true}
}

// IsGlobal returns true for the global default scope.
func (s Scope) IsGlobal() bool {
	return !s.tenant
}

// TenantID returns the owning tenant id, or false for the global scope.
func (s Scope) TenantID() (uuid.UUID, bool) {
	if !s.tenant {
		return uuid.Nil, false
	}
	return s.tenantID, true
}

// VisibleTo reports whether a row in this scope is part of the effective set
// resolved for the requested scope: global rows are visible to everyone,
// tenant rows only to their own tenant.
func (s Scope) VisibleTo(requested Scope) bool {
	if !s.tenant {
		return true
	}
	id, ok := requested.TenantID()
	return ok && id == s.tenantID
}

// String returns "global" or the tenant id.
func (s Scope) String() string {
	if !s.tenant {
		return "global"
	}
	return s.tenantID.String()
}

// Item is one immutable reference-data entry: a single code of one category,
// localized for one locale, owned globally or by one tenant. Identity is
// (category, code, locale, scope).
type Item struct {
	Category    Category
	Code        string
	Locale      string
	Scope       Scope
	SortIndex   *int
	Name        string
	Description string

	// Category-specific extras. Zero values mean "not applicable".
	CountryOfIssue string                // identification types
	PartyTypes     []string              // party type codes the item applies to; empty = all
	ValueKind      valueobject.ValueKind // attribute/preference type definitions
	UnitType       valueobject.UnitType  // attribute types carrying measured values
	AppliesTo      string                // secondary key, e.g. contact mechanism type for a contact mechanism role

	// seq records original load order; it is the sort tie-break for rows
	// without a sort index. Assigned by NewTable.
	seq int
}

// AppliesToPartyType reports whether the item is usable for the given party
// type code. An item with no party-type restriction applies to all.
func (i Item) AppliesToPartyType(partyType string) bool {
	if len(i.PartyTypes) == 0 {
		return true
	}
	for _, pt := range i.PartyTypes {
		if strings.EqualFold(pt, partyType) {
			return true
		}
	}
	return false
}
