package valueobject

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedValueConstructors(t *testing.T) {
	t.Run("boolean value", func(t *testing.T) {
		v := NewBooleanValue(true)

		assert.Equal(t, KindBoolean, v.Kind())
		b, ok := v.Boolean()
		assert.True(t, ok)
		assert.True(t, b)
	})

	t.Run("date value", func(t *testing.T) {
		now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		v := NewDateValue(now)

		d, ok := v.Date()
		assert.True(t, ok)
		assert.True(t, d.Equal(now))
	})

	t.Run("decimal value from string", func(t *testing.T) {
		v, err := NewDecimalValueFromString("82.60")

		require.NoError(t, err)
		assert.Equal(t, KindDecimal, v.Kind())
		d, ok := v.Decimal()
		assert.True(t, ok)
		assert.True(t, d.Equal(decimal.RequireFromString("82.6")))
	})

	t.Run("decimal value from malformed string fails", func(t *testing.T) {
		_, err := NewDecimalValueFromString("not-a-number")

		assert.Error(t, err)
	})

	t.Run("integer and double values", func(t *testing.T) {
		i := NewIntegerValue(42)
		f := NewDoubleValue(3.25)

		iv, ok := i.Integer()
		assert.True(t, ok)
		assert.Equal(t, int64(42), iv)
		fv, ok := f.Double()
		assert.True(t, ok)
		assert.Equal(t, 3.25, fv)
	})
}

func TestTypedValueInactiveSlots(t *testing.T) {
	v := NewStringValue("hello")

	t.Run("reading the wrong slot yields zero and false", func(t *testing.T) {
		b, ok := v.Boolean()
		assert.False(t, ok)
		assert.False(t, b)

		d, ok := v.Decimal()
		assert.False(t, ok)
		assert.True(t, d.IsZero())

		i, ok := v.Integer()
		assert.False(t, ok)
		assert.Zero(t, i)

		_, ok = v.Date()
		assert.False(t, ok)
	})

	t.Run("active slot reads back", func(t *testing.T) {
		s, ok := v.StringValue()
		assert.True(t, ok)
		assert.Equal(t, "hello", s)
	})
}

func TestTypedValueEquality(t *testing.T) {
	t.Run("decimal compares by numeric value not text", func(t *testing.T) {
		a, err := NewDecimalValueFromString("82.6")
		require.NoError(t, err)
		b, err := NewDecimalValueFromString("82.60")
		require.NoError(t, err)

		assert.True(t, a.Equals(b))
		assert.True(t, b.Equals(a))
	})

	t.Run("decimal inequality", func(t *testing.T) {
		a := NewDecimalValueFromInt(10)
		b, err := NewDecimalValueFromString("10.01")
		require.NoError(t, err)

		assert.False(t, a.Equals(b))
	})

	t.Run("different kinds are never equal", func(t *testing.T) {
		assert.False(t, NewIntegerValue(1).Equals(NewDoubleValue(1)))
		assert.False(t, NewStringValue("true").Equals(NewBooleanValue(true)))
	})

	t.Run("dates compare by instant", func(t *testing.T) {
		utc := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		shanghai := utc.In(time.FixedZone("CST", 8*3600))

		assert.True(t, NewDateValue(utc).Equals(NewDateValue(shanghai)))
	})
}

func TestTypedValueAsDecimal(t *testing.T) {
	t.Run("numeric kinds widen to decimal", func(t *testing.T) {
		cases := map[string]TypedValue{
			"decimal": NewDecimalValueFromInt(7),
			"double":  NewDoubleValue(7),
			"integer": NewIntegerValue(7),
		}
		for name, v := range cases {
			d, ok := v.AsDecimal()
			assert.True(t, ok, name)
			assert.True(t, d.Equal(decimal.NewFromInt(7)), name)
		}
	})

	t.Run("non-numeric kinds do not widen", func(t *testing.T) {
		_, ok := NewStringValue("7").AsDecimal()
		assert.False(t, ok)
		_, ok = NewBooleanValue(true).AsDecimal()
		assert.False(t, ok)
	})
}

func TestTypedValueUnit(t *testing.T) {
	v := NewDecimalValueFromInt(80).WithUnit("kilogram")

	assert.True(t, v.HasUnit())
	assert.Equal(t, "KILOGRAM", v.Unit())

	t.Run("original value is unchanged", func(t *testing.T) {
		original := NewDecimalValueFromInt(80)
		_ = original.WithUnit("GRAM")
		assert.False(t, original.HasUnit())
	})
}

func TestTypedValueJSONRoundTrip(t *testing.T) {
	values := []TypedValue{
		NewBooleanValue(true),
		NewDateValue(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)),
		decimalFromString(t, "1234.5678901234567890"),
		NewDoubleValue(2.5),
		NewIntegerValue(-17),
		NewStringValue("free text"),
		NewDecimalValueFromInt(82).WithUnit("KILOGRAM"),
	}

	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back TypedValue
		require.NoError(t, json.Unmarshal(data, &back))

		assert.True(t, v.Equals(back), "round trip changed %s", v)
		assert.Equal(t, v.Unit(), back.Unit())
	}
}

func TestTypedValueJSONPreservesDecimalPrecision(t *testing.T) {
	v := decimalFromString(t, "0.10000000000000000000000001")

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var back TypedValue
	require.NoError(t, json.Unmarshal(data, &back))

	d, ok := back.Decimal()
	require.True(t, ok)
	assert.Equal(t, "0.10000000000000000000000001", d.String())
}

func TestParseTypedValue(t *testing.T) {
	t.Run("unknown kind fails", func(t *testing.T) {
		_, err := ParseTypedValue(ValueKind("BLOB"), "x")
		assert.Error(t, err)
	})

	t.Run("malformed payload fails", func(t *testing.T) {
		_, err := ParseTypedValue(KindInteger, "twelve")
		assert.Error(t, err)
	})
}

func decimalFromString(t *testing.T, s string) TypedValue {
	t.Helper()
	v, err := NewDecimalValueFromString(s)
	require.NoError(t, err)
	return v
}
