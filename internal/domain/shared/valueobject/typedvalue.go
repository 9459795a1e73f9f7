package valueobject

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind identifies which representation a TypedValue carries.
type ValueKind string

const (
	KindBoolean ValueKind = "BOOLEAN"
	KindDate    ValueKind = "DATE"
	KindDecimal ValueKind = "DECIMAL"
	KindDouble  ValueKind = "DOUBLE"
	KindInteger ValueKind = "INTEGER"
	KindString  ValueKind = "STRING"
)

// IsValid returns true if the kind is one of the six supported kinds.
func (k ValueKind) IsValid() bool {
	switch k {
	case KindBoolean, KindDate, KindDecimal, KindDouble, KindInteger, KindString:
		return true
	default:
		return false
	}
}

// IsNumeric returns true for kinds that participate in range comparison.
func (k ValueKind) IsNumeric() bool {
	return k == KindDecimal || k == KindDouble || k == KindInteger
}

// TypedValue is an immutable tagged union over the six attribute value
// representations, plus an optional unit-of-measure code. Exactly one payload
// slot is active, selected by the kind tag; reading any other slot yields the
// zero value and false, never an error.
type TypedValue struct {
	kind       ValueKind
	boolVal    bool
	dateVal    time.Time
	decimalVal decimal.Decimal
	doubleVal  float64
	intVal     int64
	strVal     string
	unit       string
}

// NewBooleanValue creates a boolean TypedValue.
func NewBooleanValue(v bool) TypedValue {
	return TypedValue{kind: KindBoolean, boolVal: v}
}

// NewDateValue creates a date TypedValue.
func NewDateValue(t time.Time) TypedValue {
	return TypedValue{kind: KindDate, dateVal: t}
}

// NewDecimalValue creates a decimal TypedValue from an arbitrary-precision decimal.
func NewDecimalValue(d decimal.Decimal) TypedValue {
	return TypedValue{kind: KindDecimal, decimalVal: d}
}

// NewDecimalValueFromString creates a decimal TypedValue from its textual form.
// The textual representation is normalized to the precision-preserving decimal,
// so "82.6" and "82.60" construct numerically equal values.
func NewDecimalValueFromString(s string) (TypedValue, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return TypedValue{}, fmt.Errorf("invalid decimal value %q: %w", s, err)
	}
	return NewDecimalValue(d), nil
}

// NewDecimalValueFromInt creates a decimal TypedValue from an integer.
func NewDecimalValueFromInt(i int64) TypedValue {
	return NewDecimalValue(decimal.NewFromInt(i))
}

// NewDecimalValueFromFloat creates a decimal TypedValue from a float64.
func NewDecimalValueFromFloat(f float64) TypedValue {
	return NewDecimalValue(decimal.NewFromFloat(f))
}

// NewDoubleValue creates a double TypedValue.
func NewDoubleValue(f float64) TypedValue {
	return TypedValue{kind: KindDouble, doubleVal: f}
}

// NewIntegerValue creates an integer TypedValue.
func NewIntegerValue(i int64) TypedValue {
	return TypedValue{kind: KindInteger, intVal: i}
}

// NewStringValue creates a string TypedValue.
func NewStringValue(s string) TypedValue {
	return TypedValue{kind: KindString, strVal: s}
}

// WithUnit returns a copy of the value tagged with a unit-of-measure code.
// The code is normalized to uppercase.
func (v TypedValue) WithUnit(code string) TypedValue {
	v.unit = strings.TrimSpace(strings.ToUpper(code))
	return v
}

// Kind returns the active value kind. A zero TypedValue has an empty kind.
func (v TypedValue) Kind() ValueKind {
	return v.kind
}

// Unit returns the unit-of-measure code, or an empty string when untagged.
func (v TypedValue) Unit() string {
	return v.unit
}

// HasUnit returns true when the value carries a unit-of-measure tag.
func (v TypedValue) HasUnit() bool {
	return v.unit != ""
}

// IsZero returns true for the zero TypedValue (no active slot).
func (v TypedValue) IsZero() bool {
	return v.kind == ""
}

// Boolean returns the boolean payload, or (false, false) if another slot is active.
func (v TypedValue) Boolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.boolVal, true
}

// Date returns the date payload, or (zero, false) if another slot is active.
func (v TypedValue) Date() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.dateVal, true
}

// Decimal returns the decimal payload, or (zero, false) if another slot is active.
func (v TypedValue) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.decimalVal, true
}

// Double returns the double payload, or (0, false) if another slot is active.
func (v TypedValue) Double() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.doubleVal, true
}

// Integer returns the integer payload, or (0, false) if another slot is active.
func (v TypedValue) Integer() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.intVal, true
}

// StringValue returns the string payload, or ("", false) if another slot is active.
func (v TypedValue) StringValue() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.strVal, true
}

// AsDecimal widens any numeric payload (decimal, double, integer) to an
// arbitrary-precision decimal for range comparison. Returns false for
// non-numeric kinds.
func (v TypedValue) AsDecimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindDecimal:
		return v.decimalVal, true
	case KindDouble:
		return decimal.NewFromFloat(v.doubleVal), true
	case KindInteger:
		return decimal.NewFromInt(v.intVal), true
	default:
		return decimal.Decimal{}, false
	}
}

// String returns the canonical textual form of the active payload.
// This is the representation pattern constraints match against.
func (v TypedValue) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.boolVal)
	case KindDate:
		return v.dateVal.Format(time.RFC3339)
	case KindDecimal:
		return v.decimalVal.String()
	case KindDouble:
		return strconv.FormatFloat(v.doubleVal, 'f', -1, 64)
	case KindInteger:
		return strconv.FormatInt(v.intVal, 10)
	case KindString:
		return v.strVal
	default:
		return ""
	}
}

// Equals compares two TypedValues. Values of different kinds are never equal.
// Decimals compare by numeric value rather than textual representation, and
// dates compare by instant.
func (v TypedValue) Equals(other TypedValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBoolean:
		return v.boolVal == other.boolVal
	case KindDate:
		return v.dateVal.Equal(other.dateVal)
	case KindDecimal:
		return v.decimalVal.Equal(other.decimalVal)
	case KindDouble:
		return v.doubleVal == other.doubleVal
	case KindInteger:
		return v.intVal == other.intVal
	case KindString:
		return v.strVal == other.strVal
	default:
		return true
	}
}

// typedValueDoc is the wire form used for snapshot serialization. The payload
// always travels as a string so decimal precision survives the round trip.
type typedValueDoc struct {
	Kind  ValueKind `json:"kind"`
	Value string    `json:"value"`
	Unit  string    `json:"unit,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v TypedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(typedValueDoc{
		Kind:  v.kind,
		Value: v.String(),
		Unit:  v.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *TypedValue) UnmarshalJSON(data []byte) error {
	var doc typedValueDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := ParseTypedValue(doc.Kind, doc.Value)
	if err != nil {
		return err
	}
	if doc.Unit != "" {
		parsed = parsed.WithUnit(doc.Unit)
	}
	*v = parsed
	return nil
}

// ParseTypedValue reconstructs a TypedValue from a kind tag and the canonical
// textual form produced by String.
func ParseTypedValue(kind ValueKind, text string) (TypedValue, error) {
	switch kind {
	case KindBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return TypedValue{}, fmt.Errorf("invalid boolean value %q: %w", text, err)
		}
		return NewBooleanValue(b), nil
	case KindDate:
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return TypedValue{}, fmt.Errorf("invalid date value %q: %w", text, err)
		}
		return NewDateValue(t), nil
	case KindDecimal:
		return NewDecimalValueFromString(text)
	case KindDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return TypedValue{}, fmt.Errorf("invalid double value %q: %w", text, err)
		}
		return NewDoubleValue(f), nil
	case KindInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return TypedValue{}, fmt.Errorf("invalid integer value %q: %w", text, err)
		}
		return NewIntegerValue(i), nil
	case KindString:
		return NewStringValue(text), nil
	default:
		return TypedValue{}, fmt.Errorf("unknown value kind %q", kind)
	}
}
