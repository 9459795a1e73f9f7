package party

import (
	"github.com/mdm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Attribute is one typed, named value on a party. Its type code must exist in
// the effective attribute_types reference list for the party's tenant and
// concrete type; the declared value kind of that definition governs which
// TypedValue representation is expected.
type Attribute struct {
	Type  string
	Value valueobject.TypedValue
}

// NewAttribute creates an attribute carrying an already-built typed value.
func NewAttribute(typeCode string, value valueobject.TypedValue) Attribute {
	return Attribute{Type: typeCode, Value: value}
}

// NewBooleanAttribute creates a boolean attribute.
func NewBooleanAttribute(typeCode string, v bool) Attribute {
	return NewAttribute(typeCode, valueobject.NewBooleanValue(v))
}

// NewStringAttribute creates a string attribute.
func NewStringAttribute(typeCode, v string) Attribute {
	return NewAttribute(typeCode, valueobject.NewStringValue(v))
}

// NewIntegerAttribute creates an integer attribute.
func NewIntegerAttribute(typeCode string, v int64) Attribute {
	return NewAttribute(typeCode, valueobject.NewIntegerValue(v))
}

// NewDecimalAttribute creates a decimal attribute from an
// arbitrary-precision decimal.
func NewDecimalAttribute(typeCode string, v decimal.Decimal) Attribute {
	return NewAttribute(typeCode, valueobject.NewDecimalValue(v))
}

// NewDecimalAttributeFromString creates a decimal attribute from a textual
// number, normalizing to the precision-preserving representation.
func NewDecimalAttributeFromString(typeCode, v string) (Attribute, error) {
	tv, err := valueobject.NewDecimalValueFromString(v)
	if err != nil {
		return Attribute{}, err
	}
	return NewAttribute(typeCode, tv), nil
}

// WithUnit tags the attribute's value with a unit-of-measure code.
func (a Attribute) WithUnit(unitCode string) Attribute {
	a.Value = a.Value.WithUnit(unitCode)
	return a
}

// Preference is a typed, named setting on a party. Same value model as an
// attribute, validated against preference_types and the preference constraint
// table instead.
type Preference struct {
	Type  string
	Value valueobject.TypedValue
}

// NewPreference creates a preference carrying a typed value.
func NewPreference(typeCode string, value valueobject.TypedValue) Preference {
	return Preference{Type: typeCode, Value: value}
}

// NewStringPreference creates a string preference.
func NewStringPreference(typeCode, v string) Preference {
	return NewPreference(typeCode, valueobject.NewStringValue(v))
}

// NewBooleanPreference creates a boolean preference.
func NewBooleanPreference(typeCode string, v bool) Preference {
	return NewPreference(typeCode, valueobject.NewBooleanValue(v))
}
