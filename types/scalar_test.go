package types

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarFormIsAlwaysScalar(t *testing.T) {
	require.Equal(t, FormScalar, NewInt(1).Form())
	require.Equal(t, FormScalar, NewString("x").Form())
	require.Equal(t, FormScalar, NewVoid().Form())
}

func TestScalarAccessors(t *testing.T) {
	cases := []struct {
		name string
		s    Scalar
		typ  DataType
	}{
		{"bool", NewBool(true), Bool},
		{"char", NewChar(5), Char},
		{"short", NewShort(5), Short},
		{"int", NewInt(5), Int},
		{"long", NewLong(5), Long},
		{"float", NewFloat(1.5), Float},
		{"double", NewDouble(1.5), Double},
		{"date", NewDate(100), Date},
		{"month", NewMonth(100), Month},
		{"time", NewTime(100), Time},
		{"minute", NewMinute(100), Minute},
		{"second", NewSecond(100), Second},
		{"datetime", NewDateTime(100), DateTime},
		{"timestamp", NewTimestamp(100), Timestamp},
		{"nanotime", NewNanoTime(100), NanoTime},
		{"nanotimestamp", NewNanoTimestamp(100), NanoTimestamp},
		{"datehour", NewDateHour(100), DateHour},
		{"string", NewString("str"), String},
		{"symbol", NewSymbol("sym"), Symbol},
		{"blob", NewBlob([]byte{1, 2}), Blob},
		{"void", NewVoid(), Void},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.typ, tc.s.Type())
		})
	}
}

func TestScalarIsNull(t *testing.T) {
	require.True(t, Null(Int).IsNull())
	require.True(t, Null(Long).IsNull())
	require.True(t, Null(Double).IsNull())
	require.True(t, Null(String).IsNull())
	require.True(t, Null(Blob).IsNull())
	require.True(t, Null(Decimal128).IsNull())
	require.True(t, NewVoid().IsNull())

	require.False(t, NewInt(1).IsNull())
	require.False(t, NewString("x").IsNull())
	require.False(t, NewDouble(0).IsNull())
}

func TestScalarNullSentinelsMatchWidth(t *testing.T) {
	require.Equal(t, int64(math.MinInt32), Null(Int).Int64())
	require.Equal(t, int64(math.MinInt64), Null(Long).Int64())
	require.Equal(t, float64(-math.MaxFloat64), Null(Double).Float64())
}

func TestScalarNaNIsNotNull(t *testing.T) {
	nan := NewDouble(math.NaN())
	require.False(t, nan.IsNull())
	require.True(t, math.IsNaN(nan.Float64()))
}

func TestScalarDecimal(t *testing.T) {
	d32 := NewDecimal32(12345, 2)
	require.Equal(t, int64(12345), d32.Int64())
	require.Equal(t, int32(2), d32.Scale())

	big128 := big.NewInt(0).SetInt64(987654321)
	d128 := NewDecimal128(big128, 8)
	require.Equal(t, big128, d128.BigInt())
	require.Equal(t, int32(8), d128.Scale())
}

func TestScalarAny(t *testing.T) {
	inner := NewInt(42)
	wrapped := NewAny(inner)
	require.Equal(t, Any, wrapped.Type())
	require.Equal(t, inner, wrapped.Any())
}

func TestNullPanicsOnNonScalarType(t *testing.T) {
	require.Panics(t, func() { Null(DataType(200)) })
}
