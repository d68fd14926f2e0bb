package types

import (
	"fmt"
	"math"
	"math/big"
)

// Scalar is a single value of any (form=Scalar) type. It stores the raw
// representation appropriate to its Type: integer-like types (Bool,
// Char, Short, Int, Long, and every temporal type) in i, floating types
// in f, textual types in str/blob, and Decimal128 in big (Decimal32 and
// Decimal64 keep their unscaled value in i alongside scale).
//
// A Scalar is a value type; copying it copies the tag and raw fields
// (big and any, when set, are shared by reference, matching the
// no-hidden-sharing contract at the application boundary; the Session
// never mutates a Scalar it was handed).
type Scalar struct {
	typ   DataType
	i     int64
	f     float64
	str   string
	blob  []byte
	scale int32
	big   *big.Int
	any   Constant
}

var _ Constant = Scalar{}

// Form always returns FormScalar.
func (s Scalar) Form() Form { return FormScalar }

// Type returns the scalar's element type tag.
func (s Scalar) Type() DataType { return s.typ }

// IsNull reports whether the scalar holds its type's null sentinel.
func (s Scalar) IsNull() bool {
	switch s.typ {
	case Void:
		return true
	case Bool, Char:
		return s.i == int64(NullChar)
	case Short:
		return s.i == int64(NullShort)
	case Int, Date, Month, Time, Minute, Second, DateTime, DateHour:
		return s.i == int64(NullInt)
	case Long, Timestamp, NanoTime, NanoTimestamp:
		return s.i == int64(NullLong)
	case Float:
		return float32(s.f) == NullFloat32
	case Double:
		return s.f == NullFloat64
	case String, Symbol:
		return s.str == ""
	case Blob:
		return len(s.blob) == 0
	case Decimal32:
		return s.i == int64(NullInt)
	case Decimal64:
		return s.i == int64(NullLong)
	case Decimal128:
		return s.big == nil
	case Any:
		return s.any == nil
	default:
		return false
	}
}

// Int64 returns the raw integer-like representation: the bool/char/short/
// int/long value, or the normalized integer of a temporal type, as
// described in the Data Model's temporal row.
func (s Scalar) Int64() int64 { return s.i }

// Float64 returns the raw floating-point value, widened to float64 for
// Float scalars.
func (s Scalar) Float64() float64 { return s.f }

// Str returns the raw textual value for String or Symbol scalars. A Blob's
// value is returned by Bytes; Str returns "" for it.
func (s Scalar) Str() string { return s.str }

// Bytes returns the raw byte value for a Blob scalar.
func (s Scalar) Bytes() []byte { return s.blob }

// Scale returns the decimal scale (number of fractional digits) for a
// Decimal32/64/128 scalar.
func (s Scalar) Scale() int32 { return s.scale }

// BigInt returns the unscaled Decimal128 value. Returns nil for any
// other type.
func (s Scalar) BigInt() *big.Int { return s.big }

// Any returns the wrapped Constant for an Any scalar. Returns nil for
// any other type, or if nothing is wrapped.
func (s Scalar) Any() Constant { return s.any }

func (s Scalar) String() string {
	if s.IsNull() {
		return "null"
	}

	switch s.typ {
	case Bool:
		return fmt.Sprintf("%v", s.i != 0)
	case Float:
		return fmt.Sprintf("%g", float32(s.f))
	case Double:
		return fmt.Sprintf("%g", s.f)
	case String, Symbol:
		return s.str
	case Blob:
		return fmt.Sprintf("%x", s.blob)
	case Decimal32, Decimal64:
		return fmt.Sprintf("%d e-%d", s.i, s.scale)
	case Decimal128:
		return fmt.Sprintf("%s e-%d", s.big.String(), s.scale)
	case Any:
		return fmt.Sprintf("%v", s.any)
	default:
		return fmt.Sprintf("%d", s.i)
	}
}

// NewBool wraps a bool value.
func NewBool(v bool) Scalar {
	i := int64(0)
	if v {
		i = 1
	}

	return Scalar{typ: Bool, i: i}
}

// NewChar wraps an int8 value.
func NewChar(v int8) Scalar { return Scalar{typ: Char, i: int64(v)} }

// NewShort wraps an int16 value.
func NewShort(v int16) Scalar { return Scalar{typ: Short, i: int64(v)} }

// NewInt wraps an int32 value.
func NewInt(v int32) Scalar { return Scalar{typ: Int, i: int64(v)} }

// NewLong wraps an int64 value.
func NewLong(v int64) Scalar { return Scalar{typ: Long, i: v} }

// NewFloat wraps a float32 value.
func NewFloat(v float32) Scalar { return Scalar{typ: Float, f: float64(v)} }

// NewDouble wraps a float64 value.
func NewDouble(v float64) Scalar { return Scalar{typ: Double, f: v} }

// NewDate wraps a day count since the epoch.
func NewDate(days int32) Scalar { return Scalar{typ: Date, i: int64(days)} }

// NewMonth wraps a yyyy*12+mm month count.
func NewMonth(months int32) Scalar { return Scalar{typ: Month, i: int64(months)} }

// NewTime wraps a millisecond-of-day value.
func NewTime(msOfDay int32) Scalar { return Scalar{typ: Time, i: int64(msOfDay)} }

// NewMinute wraps a minute-of-day value.
func NewMinute(minOfDay int32) Scalar { return Scalar{typ: Minute, i: int64(minOfDay)} }

// NewSecond wraps a second-of-day value.
func NewSecond(secOfDay int32) Scalar { return Scalar{typ: Second, i: int64(secOfDay)} }

// NewDateTime wraps a second-since-epoch value.
func NewDateTime(sec int32) Scalar { return Scalar{typ: DateTime, i: int64(sec)} }

// NewTimestamp wraps a millisecond-since-epoch value.
func NewTimestamp(ms int64) Scalar { return Scalar{typ: Timestamp, i: ms} }

// NewNanoTime wraps a nanosecond-of-day value.
func NewNanoTime(nsOfDay int64) Scalar { return Scalar{typ: NanoTime, i: nsOfDay} }

// NewNanoTimestamp wraps a nanosecond-since-epoch value.
func NewNanoTimestamp(ns int64) Scalar { return Scalar{typ: NanoTimestamp, i: ns} }

// NewDateHour wraps an hour-since-epoch value.
func NewDateHour(hour int32) Scalar { return Scalar{typ: DateHour, i: int64(hour)} }

// NewString wraps a UTF-8 string value.
func NewString(v string) Scalar { return Scalar{typ: String, str: v} }

// NewSymbol wraps a UTF-8 symbol value.
func NewSymbol(v string) Scalar { return Scalar{typ: Symbol, str: v} }

// NewBlob wraps a raw byte value.
func NewBlob(v []byte) Scalar { return Scalar{typ: Blob, blob: v} }

// NewVoid returns the single Void scalar.
func NewVoid() Scalar { return Scalar{typ: Void} }

// NewAny wraps an arbitrary Constant, including another container.
func NewAny(v Constant) Scalar { return Scalar{typ: Any, any: v} }

// NewDecimal32 wraps a scale-<=9 unscaled int32 value.
func NewDecimal32(raw int32, scale int32) Scalar {
	return Scalar{typ: Decimal32, i: int64(raw), scale: scale}
}

// NewDecimal64 wraps a scale-<=18 unscaled int64 value.
func NewDecimal64(raw int64, scale int32) Scalar {
	return Scalar{typ: Decimal64, i: raw, scale: scale}
}

// NewDecimal128 wraps a scale-<=38 unscaled 128-bit value.
func NewDecimal128(raw *big.Int, scale int32) Scalar {
	return Scalar{typ: Decimal128, big: raw, scale: scale}
}

// Null returns the canonical null scalar for typ. Panics if typ is not a
// scalar-representable type; callers that don't control typ should check
// DataType.Supported-style helpers first.
func Null(typ DataType) Scalar {
	switch typ {
	case Void:
		return NewVoid()
	case Bool, Char:
		return Scalar{typ: typ, i: int64(NullChar)}
	case Short:
		return Scalar{typ: Short, i: int64(NullShort)}
	case Int, Date, Month, Time, Minute, Second, DateTime, DateHour:
		return Scalar{typ: typ, i: int64(NullInt)}
	case Long, Timestamp, NanoTime, NanoTimestamp:
		return Scalar{typ: typ, i: int64(NullLong)}
	case Float:
		return Scalar{typ: Float, f: float64(NullFloat32)}
	case Double:
		return Scalar{typ: Double, f: NullFloat64}
	case String, Symbol:
		return Scalar{typ: typ}
	case Blob:
		return Scalar{typ: Blob}
	case Decimal32:
		return Scalar{typ: Decimal32, i: int64(NullInt)}
	case Decimal64:
		return Scalar{typ: Decimal64, i: int64(NullLong)}
	case Decimal128:
		return Scalar{typ: Decimal128}
	case Any:
		return Scalar{typ: Any}
	default:
		panic(fmt.Sprintf("types: %s has no scalar null representation", typ))
	}
}

// isNaNFloat reports whether f is a NaN, including a float32 NaN widened
// to float64. NaN equality is by is-NaN, not ==.
func isNaNFloat(f float64) bool {
	return math.IsNaN(f)
}
