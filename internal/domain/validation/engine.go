package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mdm/backend/internal/domain/constraint"
	"github.com/mdm/backend/internal/domain/party"
	"github.com/mdm/backend/internal/domain/reference"
	"github.com/mdm/backend/internal/domain/shared/valueobject"
)

// Context carries the tenant scope and locale a validation run resolves
// reference data under.
type Context struct {
	Scope  reference.Scope
	Locale string
}

func (c Context) constraintContext() constraint.Context {
	return constraint.Context{Scope: c.Scope, Locale: c.Locale}
}

// Engine validates party aggregates, associations and mandates. A run walks
// three phases: structural shape, typed-value integrity against reference
// definitions, then the role-driven (or type-driven) constraint rules. All
// phases run to completion and every failure lands in one violation set;
// only infrastructure faults surface as errors.
type Engine struct {
	resolver    *reference.Resolver
	constraints *constraint.Engine
	logger      *zap.Logger
	now         func() time.Time
}

// EngineOption is a functional option for configuring the engine.
type EngineOption func(*Engine)

func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source for date checks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(resolver *reference.Resolver, constraints *constraint.Engine, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:    resolver,
		constraints: constraints,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateParty validates the full aggregate and returns every violation
// found. A party that fails validation is a normal value; the returned error
// reports infrastructure faults only.
func (e *Engine) ValidateParty(ctx context.Context, p party.Party, vctx Context) (*Set, error) {
	set := NewSet()
	base := p.Common()

	e.validatePartyStructure(p, set)
	if err := e.validatePartyReferences(ctx, p, vctx, set); err != nil {
		return nil, err
	}
	if err := e.validateRoleConstraints(ctx, base, vctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// ValidateAssociation mirrors party validation for an association, with the
// constraint lookup keyed by association type.
func (e *Engine) ValidateAssociation(ctx context.Context, a *party.Association, vctx Context) (*Set, error) {
	set := NewSet()

	if strings.TrimSpace(a.Type) == "" {
		set.Add("type", KindRequired)
	}
	if a.FromPartyID == a.ToPartyID {
		set.Add("toPartyId", KindNotAllowed)
	}
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		set.Add("endDate", KindDateRange)
	}

	if a.Type != "" {
		if err := e.checkCode(ctx, vctx, set, "type", reference.CategoryAssociationTypes, a.Type); err != nil {
			return nil, err
		}
	}
	e.validatePropertyValues(a.Properties, set)

	rules, err := e.constraints.ForAssociationType(ctx, a.Type)
	if err != nil {
		return nil, err
	}
	if err := e.evaluatePropertyRules(ctx, rules, a.PropertyWithType, vctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// ValidateMandate mirrors party validation for a mandate, with the constraint
// lookup keyed by mandate type.
func (e *Engine) ValidateMandate(ctx context.Context, m *party.Mandate, vctx Context) (*Set, error) {
	set := NewSet()

	if strings.TrimSpace(m.Type) == "" {
		set.Add("type", KindRequired)
	}
	if m.GrantorID == m.GranteeID {
		set.Add("granteeId", KindNotAllowed)
	}
	if m.ValidFrom != nil && m.ValidUntil != nil && m.ValidUntil.Before(*m.ValidFrom) {
		set.Add("validUntil", KindDateRange)
	}

	if m.Type != "" {
		if err := e.checkCode(ctx, vctx, set, "type", reference.CategoryMandateTypes, m.Type); err != nil {
			return nil, err
		}
	}
	e.validatePropertyValues(m.Properties, set)

	rules, err := e.constraints.ForMandateType(ctx, m.Type)
	if err != nil {
		return nil, err
	}
	if err := e.evaluatePropertyRules(ctx, rules, m.PropertyWithType, vctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// --- phase 1: structural ---

func (e *Engine) validatePartyStructure(p party.Party, set *Set) {
	base := p.Common()
	now := e.now()

	if strings.TrimSpace(base.Name) == "" {
		set.Add("name", KindRequired)
	}

	switch v := p.(type) {
	case *party.Person:
		if strings.TrimSpace(v.LastName) == "" {
			set.Add("person.lastName", KindRequired)
		}
		if v.DateOfBirth != nil && v.DateOfBirth.After(now) {
			set.Add("person.dateOfBirth", KindDateRange)
		}
	case *party.Organization:
		if strings.TrimSpace(v.LegalName) == "" {
			set.Add("organization.legalName", KindRequired)
		}
	}

	seenAttr := map[string]bool{}
	for _, a := range base.Attributes {
		key := strings.ToLower(a.Type)
		if seenAttr[key] {
			set.Add(attributePath(a.Type), KindDuplicate)
		}
		seenAttr[key] = true
	}
	seenPref := map[string]bool{}
	for _, pr := range base.Preferences {
		key := strings.ToLower(pr.Type)
		if seenPref[key] {
			set.Add(preferencePath(pr.Type), KindDuplicate)
		}
		seenPref[key] = true
	}
	seenRole := map[string]bool{}
	for i, r := range base.Roles {
		key := strings.ToLower(r.Type)
		if seenRole[key] {
			set.Add(fmt.Sprintf("roles[%d].type", i), KindDuplicate)
		}
		seenRole[key] = true
		if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
			set.Add(fmt.Sprintf("roles[%d].endDate", i), KindDateRange)
		}
	}

	for i, cm := range base.ContactMechanisms {
		if strings.TrimSpace(cm.Value) == "" {
			set.Add(fmt.Sprintf("contactMechanisms[%d].value", i), KindRequired)
		}
	}

	for i, addr := range base.Addresses {
		e.validateAddressShape(i, addr, set)
	}

	for i, id := range base.Identifications {
		if strings.TrimSpace(id.Number) == "" {
			set.Add(fmt.Sprintf("identifications[%d].number", i), KindRequired)
		}
		if id.IssueDate != nil && id.ExpiryDate != nil && id.ExpiryDate.Before(*id.IssueDate) {
			set.Add(fmt.Sprintf("identifications[%d].expiryDate", i), KindDateRange)
		}
	}

	for i, tn := range base.TaxNumbers {
		if strings.TrimSpace(tn.Number) == "" {
			set.Add(fmt.Sprintf("taxNumbers[%d].number", i), KindRequired)
		}
	}
	for i, ref := range base.ExternalReferences {
		if strings.TrimSpace(ref.Reference) == "" {
			set.Add(fmt.Sprintf("externalReferences[%d].reference", i), KindRequired)
		}
	}
}

// validateAddressShape enforces the fields-per-type rules: every missing
// required field and every populated disallowed field is its own violation.
func (e *Engine) validateAddressShape(i int, addr party.PhysicalAddress, set *Set) {
	path := func(field string) string {
		return fmt.Sprintf("addresses[%d].%s", i, field)
	}
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			set.Add(path(field), KindRequired)
		}
	}
	disallowed := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			set.Add(path(field), KindNotAllowed)
		}
	}

	switch addr.Type {
	case party.AddressTypeStreet:
		required("streetName", addr.StreetName)
		required("city", addr.City)
		required("country", addr.Country)
		required("postalCode", addr.PostalCode)
		disallowed("boxNumber", addr.BoxNumber)
		if len(addr.FreeLines) > 0 {
			set.Add(path("freeLines"), KindNotAllowed)
		}
	case party.AddressTypePOBox:
		required("boxNumber", addr.BoxNumber)
		required("city", addr.City)
		required("country", addr.Country)
		required("postalCode", addr.PostalCode)
		disallowed("streetName", addr.StreetName)
		disallowed("houseNumber", addr.HouseNumber)
		if len(addr.FreeLines) > 0 {
			set.Add(path("freeLines"), KindNotAllowed)
		}
	case party.AddressTypePackage:
		required("streetName", addr.StreetName)
		required("houseNumber", addr.HouseNumber)
		required("city", addr.City)
		required("country", addr.Country)
		required("postalCode", addr.PostalCode)
		disallowed("boxNumber", addr.BoxNumber)
		if len(addr.FreeLines) > 0 {
			set.Add(path("freeLines"), KindNotAllowed)
		}
	case party.AddressTypeFreeForm:
		hasLine := false
		for _, line := range addr.FreeLines {
			if strings.TrimSpace(line) != "" {
				hasLine = true
				break
			}
		}
		if !hasLine {
			set.Add(path("freeLines"), KindRequired)
		}
		required("country", addr.Country)
	default:
		// Unknown type: the reference check in phase 2 reports it; the
		// per-type field rules cannot apply.
	}
}

// --- phase 2: typed-value integrity ---

func (e *Engine) validatePartyReferences(ctx context.Context, p party.Party, vctx Context, set *Set) error {
	base := p.Common()
	partyType := string(p.PartyType())

	for _, a := range base.Attributes {
		if err := e.checkTypedEntry(ctx, vctx, set, attributePath(a.Type), reference.CategoryAttributeTypes, a.Type, a.Value, partyType); err != nil {
			return err
		}
	}
	for _, pr := range base.Preferences {
		if err := e.checkTypedEntry(ctx, vctx, set, preferencePath(pr.Type), reference.CategoryPreferenceTypes, pr.Type, pr.Value, partyType); err != nil {
			return err
		}
	}

	for i, cm := range base.ContactMechanisms {
		path := fmt.Sprintf("contactMechanisms[%d]", i)
		if err := e.checkCodeForPartyType(ctx, vctx, set, path+".type", reference.CategoryContactMechanismTypes, cm.Type, partyType); err != nil {
			return err
		}
		if cm.Role != "" {
			ok, err := e.resolver.IsValidForKey(ctx, reference.CategoryContactMechanismRoles, vctx.Scope, vctx.Locale, cm.Role, cm.Type)
			if err != nil {
				return err
			}
			if !ok {
				set.Add(path+".role", KindReference)
			}
		}
	}

	for i, addr := range base.Addresses {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("addresses[%d].type", i), reference.CategoryPhysicalAddressTypes, addr.Type); err != nil {
			return err
		}
		if addr.Country != "" {
			if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("addresses[%d].country", i), reference.CategoryCountries, addr.Country); err != nil {
				return err
			}
		}
	}

	for i, id := range base.Identifications {
		if err := e.checkCodeForPartyType(ctx, vctx, set, fmt.Sprintf("identifications[%d].type", i), reference.CategoryIdentificationTypes, id.Type, partyType); err != nil {
			return err
		}
	}
	for i, r := range base.Roles {
		if err := e.checkCodeForPartyType(ctx, vctx, set, fmt.Sprintf("roles[%d].type", i), reference.CategoryRoleTypes, r.Type, partyType); err != nil {
			return err
		}
	}
	for i, s := range base.Statuses {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("statuses[%d].type", i), reference.CategoryStatusTypes, s.Type); err != nil {
			return err
		}
	}
	for i, l := range base.Locks {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("locks[%d].type", i), reference.CategoryLockTypes, l.Type); err != nil {
			return err
		}
	}
	for i, tn := range base.TaxNumbers {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("taxNumbers[%d].type", i), reference.CategoryTaxNumberTypes, tn.Type); err != nil {
			return err
		}
	}
	for i, ref := range base.ExternalReferences {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("externalReferences[%d].type", i), reference.CategoryExternalRefTypes, ref.Type); err != nil {
			return err
		}
	}
	for i, c := range base.Consents {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("consents[%d].type", i), reference.CategoryConsentTypes, c.Type); err != nil {
			return err
		}
	}
	for i, sa := range base.SegmentAllocations {
		if err := e.checkCode(ctx, vctx, set, fmt.Sprintf("segmentAllocations[%d].segment", i), reference.CategorySegments, sa.Segment); err != nil {
			return err
		}
	}

	switch v := p.(type) {
	case *party.Person:
		if v.Gender != "" {
			if err := e.checkCode(ctx, vctx, set, "person.gender", reference.CategoryGenders, v.Gender); err != nil {
				return err
			}
		}
		if v.MaritalStatus != "" {
			if err := e.checkCode(ctx, vctx, set, "person.maritalStatus", reference.CategoryMaritalStatuses, v.MaritalStatus); err != nil {
				return err
			}
		}
		if v.CountryOfBirth != "" {
			if err := e.checkCode(ctx, vctx, set, "person.countryOfBirth", reference.CategoryCountries, v.CountryOfBirth); err != nil {
				return err
			}
		}
	case *party.Organization:
		if v.LegalForm != "" {
			if err := e.checkCode(ctx, vctx, set, "organization.legalForm", reference.CategoryLegalForms, v.LegalForm); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkTypedEntry validates an attribute or preference: a known type code
// applicable to the party type, a value in the declared slot, and a unit in
// the declared unit family.
func (e *Engine) checkTypedEntry(ctx context.Context, vctx Context, set *Set, path string, category reference.Category, typeCode string, value valueobject.TypedValue, partyType string) error {
	item, err := e.resolver.Item(ctx, category, vctx.Scope, vctx.Locale, typeCode)
	if err != nil {
		return err
	}
	if item == nil {
		set.Add(path+".type", KindReference)
		return nil
	}
	if !item.AppliesToPartyType(partyType) {
		set.Add(path+".type", KindReference)
		return nil
	}

	if item.ValueKind.IsValid() && value.Kind() != item.ValueKind {
		set.Add(path+".value", KindValueKind)
	}

	declaredUnit := item.UnitType != "" && item.UnitType != valueobject.UnitTypeUnitless
	switch {
	case value.HasUnit():
		unit := value.Unit()
		if _, known := valueobject.UnitForCode(unit); !known {
			set.Add(path+".unit", KindUnitType)
		} else if declaredUnit && !valueobject.UnitMatchesType(unit, item.UnitType) {
			set.Add(path+".unit", KindUnitType)
		}
	case declaredUnit:
		set.Add(path+".unit", KindRequired)
	}
	return nil
}

func (e *Engine) checkCode(ctx context.Context, vctx Context, set *Set, path string, category reference.Category, code string) error {
	ok, err := e.resolver.IsValid(ctx, category, vctx.Scope, vctx.Locale, code)
	if err != nil {
		return err
	}
	if !ok {
		set.Add(path, KindReference)
	}
	return nil
}

func (e *Engine) checkCodeForPartyType(ctx context.Context, vctx Context, set *Set, path string, category reference.Category, code, partyType string) error {
	ok, err := e.resolver.IsValidForPartyType(ctx, category, vctx.Scope, vctx.Locale, code, partyType)
	if err != nil {
		return err
	}
	if !ok {
		set.Add(path, KindReference)
	}
	return nil
}

func (e *Engine) validatePropertyValues(props []party.Property, set *Set) {
	seen := map[string]bool{}
	for _, p := range props {
		key := strings.ToLower(p.Type)
		if seen[key] {
			set.Add(propertyPath(p.Type), KindDuplicate)
		}
		seen[key] = true
		if p.Value.HasUnit() {
			if _, known := valueobject.UnitForCode(p.Value.Unit()); !known {
				set.Add(propertyPath(p.Type)+".unit", KindUnitType)
			}
		}
	}
}

// --- phase 3: role-driven and type-driven constraints ---

func (e *Engine) validateRoleConstraints(ctx context.Context, base *party.Base, vctx Context, set *Set) error {
	for _, roleType := range base.RoleTypes() {
		rules, err := e.constraints.ForRole(ctx, roleType)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			var value *valueobject.TypedValue
			var path string
			switch rule.Target {
			case reference.TargetAttribute:
				path = attributePath(rule.TargetType)
				if a := base.AttributeWithType(rule.TargetType); a != nil {
					v := a.Value
					value = &v
				}
			case reference.TargetPreference:
				path = preferencePath(rule.TargetType)
				if p := base.PreferenceWithType(rule.TargetType); p != nil {
					v := p.Value
					value = &v
				}
			default:
				e.logger.Warn("skipping constraint with unknown target",
					zap.String("role_type", rule.RoleType),
					zap.String("target", string(rule.Target)))
				continue
			}

			ok, err := e.constraints.Evaluate(ctx, rule, value, vctx.constraintContext())
			if err != nil {
				return err
			}
			if !ok {
				set.Add(path, Kind(rule.Kind))
			}
		}
	}
	return nil
}

func (e *Engine) evaluatePropertyRules(ctx context.Context, rules []reference.PropertyConstraint, lookup func(string) *party.Property, vctx Context, set *Set) error {
	for _, rule := range rules {
		var value *valueobject.TypedValue
		if p := lookup(rule.PropertyType); p != nil {
			v := p.Value
			value = &v
		}
		ok, err := e.constraints.Evaluate(ctx, rule, value, vctx.constraintContext())
		if err != nil {
			return err
		}
		if !ok {
			set.Add(propertyPath(rule.PropertyType), Kind(rule.Kind))
		}
	}
	return nil
}

func attributePath(typeCode string) string {
	return "attributes[" + typeCode + "]"
}

func preferencePath(typeCode string) string {
	return "preferences[" + typeCode + "]"
}

func propertyPath(typeCode string) string {
	return "properties[" + typeCode + "]"
}
