package coerce

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeMissingForms(t *testing.T) {
	missing := []any{nil, math.NaN(), "", "none", "NaN", "NONE", "  ", " nan "}

	for _, v := range missing {
		got, err := Native(v, DefaultPrecision)
		require.NoError(t, err)
		assert.Nil(t, got, "value %#v should coerce to nil", v)
	}
}

func TestNativeIntegersStayExact(t *testing.T) {
	got, err := Native(5, DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	got, err = Native("12", DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)

	got, err = Native(int32(-7), DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), got)
}

func TestNativeFloatRounding(t *testing.T) {
	// 2.005 sits just below the midpoint in binary, so rounding at two
	// decimals lands on 2.0. What matters is that the result is stable.
	got, err := Native(2.005, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = Native(3.14159, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.14, got)

	got, err = Native("12,5", 2)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)
}

func TestRoundNormalizesNegativeZero(t *testing.T) {
	r := Round(math.Copysign(0, -1), 2)
	assert.Equal(t, 0.0, r)
	assert.False(t, math.Signbit(r))

	r = Round(-0.001, 2)
	assert.Equal(t, 0.0, r)
	assert.False(t, math.Signbit(r))
}

func TestNativeStringFallback(t *testing.T) {
	got, err := Native("Mario Bros Figura", DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, "Mario Bros Figura", got)
}

func TestNativeRejectsUnsupportedType(t *testing.T) {
	_, err := Native(struct{ X int }{1}, DefaultPrecision)
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "unsupported source type")
}

func TestNativeTimePassthrough(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := Native(now, DefaultPrecision)
	require.NoError(t, err)
	assert.Equal(t, now, got)
}

func TestFloat(t *testing.T) {
	f, err := Float("10.50")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 10.5, *f)

	f, err = Float(nil)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = Float(7)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 7.0, *f)

	_, err = Float("not a number")
	assert.Error(t, err)
}

func TestFloatOr(t *testing.T) {
	v, err := FloatOr(nil, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = FloatOr("2", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestInt(t *testing.T) {
	i, err := Int("5")
	require.NoError(t, err)
	require.NotNil(t, i)
	assert.Equal(t, int64(5), *i)

	// Fractional values truncate toward zero like the storage column.
	i, err = Int(5.7)
	require.NoError(t, err)
	require.NotNil(t, i)
	assert.Equal(t, int64(5), *i)

	i, err = Int("")
	require.NoError(t, err)
	assert.Nil(t, i)

	_, err = Int("five")
	assert.Error(t, err)
}

func TestIntOr(t *testing.T) {
	v, err := IntOr(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestDate(t *testing.T) {
	d, err := Date("2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *d)

	d, err = Date(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	ts := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	d, err = Date(ts)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, ts, *d)

	_, err = Date("CANCELED")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	s, err := String("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = String(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = String(42)
	require.NoError(t, err)
	assert.Equal(t, "42", s)
}
