package valueobject

import (
	"fmt"
	"strings"
)

// UnitType groups measurement units into families. An attribute definition
// declares the family its values must be measured in; the validator checks a
// value's unit code against that family.
type UnitType string

const (
	UnitTypeMass        UnitType = "MASS"
	UnitTypeLength      UnitType = "LENGTH"
	UnitTypeVolume      UnitType = "VOLUME"
	UnitTypeArea        UnitType = "AREA"
	UnitTypeTime        UnitType = "TIME"
	UnitTypeTemperature UnitType = "TEMPERATURE"
	UnitTypePercentage  UnitType = "PERCENTAGE"
	UnitTypeCurrency    UnitType = "CURRENCY"
	UnitTypeUnitless    UnitType = "UNITLESS"
)

// IsValid returns true if the unit type is a known family.
func (t UnitType) IsValid() bool {
	switch t {
	case UnitTypeMass, UnitTypeLength, UnitTypeVolume, UnitTypeArea,
		UnitTypeTime, UnitTypeTemperature, UnitTypePercentage,
		UnitTypeCurrency, UnitTypeUnitless:
		return true
	default:
		return false
	}
}

// MeasurementUnit is an immutable value object describing one unit of measure.
type MeasurementUnit struct {
	code     string
	name     string
	unitType UnitType
}

// NewMeasurementUnit creates a measurement unit. The code is normalized to
// uppercase.
func NewMeasurementUnit(code, name string, unitType UnitType) (MeasurementUnit, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	name = strings.TrimSpace(name)

	if code == "" {
		return MeasurementUnit{}, fmt.Errorf("unit code cannot be empty")
	}
	if len(code) > 50 {
		return MeasurementUnit{}, fmt.Errorf("unit code cannot exceed 50 characters")
	}
	if name == "" {
		return MeasurementUnit{}, fmt.Errorf("unit name cannot be empty")
	}
	if !unitType.IsValid() {
		return MeasurementUnit{}, fmt.Errorf("unknown unit type %q", unitType)
	}

	return MeasurementUnit{code: code, name: name, unitType: unitType}, nil
}

// MustNewMeasurementUnit creates a measurement unit and panics on error.
// Use only for the built-in registry below.
func MustNewMeasurementUnit(code, name string, unitType UnitType) MeasurementUnit {
	u, err := NewMeasurementUnit(code, name, unitType)
	if err != nil {
		panic(err)
	}
	return u
}

// Code returns the unit code (normalized to uppercase).
func (u MeasurementUnit) Code() string {
	return u.code
}

// Name returns the human-readable unit name.
func (u MeasurementUnit) Name() string {
	return u.name
}

// Type returns the family the unit belongs to.
func (u MeasurementUnit) Type() UnitType {
	return u.unitType
}

// BelongsTo returns true if the unit is a member of the given family.
func (u MeasurementUnit) BelongsTo(t UnitType) bool {
	return u.unitType == t
}

// String returns a string representation of the unit.
func (u MeasurementUnit) String() string {
	return fmt.Sprintf("%s (%s, %s)", u.code, u.name, u.unitType)
}

// Built-in unit registry. Metric and US customary units the attribute model
// recognizes out of the box.
var unitRegistry = map[string]MeasurementUnit{}

func registerUnit(code, name string, unitType UnitType) {
	u := MustNewMeasurementUnit(code, name, unitType)
	unitRegistry[u.Code()] = u
}

func init() {
	registerUnit("KILOGRAM", "Kilogram", UnitTypeMass)
	registerUnit("GRAM", "Gram", UnitTypeMass)
	registerUnit("TONNE", "Tonne", UnitTypeMass)
	registerUnit("CUSTOMARY_POUND", "Pound", UnitTypeMass)
	registerUnit("CUSTOMARY_OUNCE", "Ounce", UnitTypeMass)

	registerUnit("METRE", "Metre", UnitTypeLength)
	registerUnit("CENTIMETRE", "Centimetre", UnitTypeLength)
	registerUnit("MILLIMETRE", "Millimetre", UnitTypeLength)
	registerUnit("KILOMETRE", "Kilometre", UnitTypeLength)
	registerUnit("CUSTOMARY_FOOT", "Foot", UnitTypeLength)
	registerUnit("CUSTOMARY_INCH", "Inch", UnitTypeLength)
	registerUnit("CUSTOMARY_MILE", "Mile", UnitTypeLength)

	registerUnit("LITRE", "Litre", UnitTypeVolume)
	registerUnit("MILLILITRE", "Millilitre", UnitTypeVolume)
	registerUnit("CUSTOMARY_GALLON", "Gallon", UnitTypeVolume)

	registerUnit("SQUARE_METRE", "Square metre", UnitTypeArea)

	registerUnit("SECOND", "Second", UnitTypeTime)
	registerUnit("MINUTE", "Minute", UnitTypeTime)
	registerUnit("HOUR", "Hour", UnitTypeTime)
	registerUnit("DAY", "Day", UnitTypeTime)
	registerUnit("YEAR", "Year", UnitTypeTime)

	registerUnit("CELSIUS", "Degree Celsius", UnitTypeTemperature)
	registerUnit("FAHRENHEIT", "Degree Fahrenheit", UnitTypeTemperature)
	registerUnit("KELVIN", "Kelvin", UnitTypeTemperature)

	registerUnit("PERCENT", "Percent", UnitTypePercentage)
	registerUnit("EACH", "Each", UnitTypeUnitless)
}

// UnitForCode looks up a measurement unit by code (case-insensitive).
func UnitForCode(code string) (MeasurementUnit, bool) {
	u, ok := unitRegistry[strings.TrimSpace(strings.ToUpper(code))]
	return u, ok
}

// UnitMatchesType returns true if the unit code resolves to a unit belonging
// to the given family. Unknown codes never match.
func UnitMatchesType(code string, t UnitType) bool {
	u, ok := UnitForCode(code)
	return ok && u.BelongsTo(t)
}
