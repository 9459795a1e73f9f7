package reference

// ConstraintKind is the closed set of rule kinds the constraint engine
// interprets. Constraints stay data; the evaluator is a small interpreter
// over this tag.
type ConstraintKind string

const (
	ConstraintRequired  ConstraintKind = "REQUIRED"
	ConstraintPattern   ConstraintKind = "PATTERN"
	ConstraintReference ConstraintKind = "REFERENCE"
	ConstraintMaxSize   ConstraintKind = "MAX_SIZE"
	ConstraintMinValue  ConstraintKind = "MIN_VALUE"
	ConstraintMaxValue  ConstraintKind = "MAX_VALUE"
)

// IsValid returns true if the kind is one the engine can interpret.
func (k ConstraintKind) IsValid() bool {
	switch k {
	case ConstraintRequired, ConstraintPattern, ConstraintReference,
		ConstraintMaxSize, ConstraintMinValue, ConstraintMaxValue:
		return true
	default:
		return false
	}
}

// Rule is the evaluable face shared by all constraint row types.
type Rule interface {
	ConstraintKind() ConstraintKind
	ConstraintValue() string
}

// RoleConstraintTarget distinguishes the two role-driven constraint tables.
type RoleConstraintTarget string

const (
	TargetAttribute  RoleConstraintTarget = "ATTRIBUTE"
	TargetPreference RoleConstraintTarget = "PREFERENCE"
)

// RoleConstraint is one role-driven rule row: holding the role type activates
// the rule for the attribute or preference type it targets. Identity is
// (roleType, targetType, qualifier). Rows are tenant-agnostic.
type RoleConstraint struct {
	RoleType   string
	Target     RoleConstraintTarget
	TargetType string // attribute type code or preference type code
	Qualifier  string
	Kind       ConstraintKind
	Value      string
}

// ConstraintKind implements Rule.
func (c RoleConstraint) ConstraintKind() ConstraintKind {
	return c.Kind
}

// ConstraintValue implements Rule.
func (c RoleConstraint) ConstraintValue() string {
	return c.Value
}

// PropertyConstraintOwner distinguishes the association and mandate property
// constraint tables.
type PropertyConstraintOwner string

const (
	OwnerAssociation PropertyConstraintOwner = "ASSOCIATION"
	OwnerMandate     PropertyConstraintOwner = "MANDATE"
)

// PropertyConstraint is the association/mandate analogue of RoleConstraint:
// the same rule shape, looked up by association type or mandate type instead
// of role type. Identity is (ownerType, propertyType, qualifier).
type PropertyConstraint struct {
	Owner        PropertyConstraintOwner
	OwnerType    string // association type code or mandate type code
	PropertyType string
	Qualifier    string
	Kind         ConstraintKind
	Value        string
}

// ConstraintKind implements Rule.
func (c PropertyConstraint) ConstraintKind() ConstraintKind {
	return c.Kind
}

// ConstraintValue implements Rule.
func (c PropertyConstraint) ConstraintValue() string {
	return c.Value
}
