package codec

import (
	"bufio"
	"fmt"
	"math"

	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

// encodeScalarBody appends the body of a scalar: the raw encoding of the
// underlying width. Strings and symbols are NUL-terminated, blobs are
// u32-length-prefixed, decimals carry scale:i32 before the raw value,
// and Any wraps a complete child value.
func encodeScalarBody(buf *pool.ByteBuffer, s types.Scalar, engine endian.EndianEngine) error {
	switch s.Type() {
	case types.Void:
		// Void has no width and therefore no body.
		return nil
	case types.Bool, types.Char:
		appendChar(buf, int8(s.Int64()), engine)
	case types.Short:
		appendShort(buf, int16(s.Int64()), engine)
	case types.Int, types.Date, types.Month, types.Time, types.Minute,
		types.Second, types.DateTime, types.DateHour:
		appendInt(buf, int32(s.Int64()), engine)
	case types.Long, types.Timestamp, types.NanoTime, types.NanoTimestamp:
		appendLong(buf, s.Int64(), engine)
	case types.Float:
		appendFloat(buf, float32(s.Float64()), engine)
	case types.Double:
		appendDouble(buf, s.Float64(), engine)
	case types.String, types.Symbol:
		appendCString(buf, s.Str())
	case types.Blob:
		appendInt(buf, int32(len(s.Bytes())), engine)
		buf.B = append(buf.B, s.Bytes()...)
	case types.Decimal32:
		appendInt(buf, s.Scale(), engine)
		appendInt(buf, int32(s.Int64()), engine)
	case types.Decimal64:
		appendInt(buf, s.Scale(), engine)
		appendLong(buf, s.Int64(), engine)
	case types.Decimal128:
		appendInt(buf, s.Scale(), engine)
		appendI128(buf, s.BigInt(), engine)
	case types.Any:
		inner := s.Any()
		if inner == nil {
			inner = types.NewVoid()
		}

		return Encode(buf, inner, engine)
	default:
		return &errs.UnsupportedError{Form: byte(types.FormScalar), Type: byte(s.Type())}
	}

	return nil
}

// decodeScalarBody reads the body of a scalar of the given type.
func decodeScalarBody(r *bufio.Reader, typ types.DataType, engine endian.EndianEngine) (types.Constant, error) {
	switch typ {
	case types.Void:
		return types.NewVoid(), nil
	case types.Bool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, ioErr("read bool", err)
		}

		if int8(b) == types.NullBool {
			return types.Null(types.Bool), nil
		}

		return types.NewBool(b != 0), nil
	case types.Char:
		b, err := r.ReadByte()
		if err != nil {
			return nil, ioErr("read char", err)
		}

		return types.NewChar(int8(b)), nil
	case types.Short:
		v, err := readU16(r, engine)
		if err != nil {
			return nil, ioErr("read short", err)
		}

		return types.NewShort(int16(v)), nil
	case types.Int, types.Date, types.Month, types.Time, types.Minute,
		types.Second, types.DateTime, types.DateHour:
		v, err := readU32(r, engine)
		if err != nil {
			return nil, ioErr("read int32 scalar", err)
		}

		return newInt32Scalar(typ, int32(v)), nil
	case types.Long, types.Timestamp, types.NanoTime, types.NanoTimestamp:
		v, err := readU64(r, engine)
		if err != nil {
			return nil, ioErr("read int64 scalar", err)
		}

		return newInt64Scalar(typ, int64(v)), nil
	case types.Float:
		v, err := readU32(r, engine)
		if err != nil {
			return nil, ioErr("read float", err)
		}

		return types.NewFloat(math.Float32frombits(v)), nil
	case types.Double:
		v, err := readU64(r, engine)
		if err != nil {
			return nil, ioErr("read double", err)
		}

		return types.NewDouble(math.Float64frombits(v)), nil
	case types.String, types.Symbol:
		s, err := readCString(r)
		if err != nil {
			return nil, ioErr("read string", err)
		}

		if typ == types.Symbol {
			return types.NewSymbol(s), nil
		}

		return types.NewString(s), nil
	case types.Blob:
		n, err := readU32(r, engine)
		if err != nil {
			return nil, ioErr("read blob length", err)
		}

		b, err := readN(r, int(n))
		if err != nil {
			return nil, ioErr("read blob", err)
		}

		return types.NewBlob(b), nil
	case types.Decimal32:
		scale, raw, err := readDecimalHeader32(r, engine)
		if err != nil {
			return nil, err
		}

		return types.NewDecimal32(raw, scale), nil
	case types.Decimal64:
		scale, err := readU32(r, engine)
		if err != nil {
			return nil, ioErr("read decimal scale", err)
		}

		raw, err := readU64(r, engine)
		if err != nil {
			return nil, ioErr("read decimal64", err)
		}

		return types.NewDecimal64(int64(raw), int32(scale)), nil
	case types.Decimal128:
		scale, err := readU32(r, engine)
		if err != nil {
			return nil, ioErr("read decimal scale", err)
		}

		raw, err := readI128(r, engine)
		if err != nil {
			return nil, ioErr("read decimal128", err)
		}

		return types.NewDecimal128(raw, int32(scale)), nil
	case types.Any:
		inner, err := Decode(r, engine)
		if err != nil {
			return nil, err
		}

		return types.NewAny(inner), nil
	default:
		return nil, &errs.UnsupportedError{Form: byte(types.FormScalar), Type: byte(typ)}
	}
}

func readDecimalHeader32(r *bufio.Reader, engine endian.EndianEngine) (int32, int32, error) {
	scale, err := readU32(r, engine)
	if err != nil {
		return 0, 0, ioErr("read decimal scale", err)
	}

	raw, err := readU32(r, engine)
	if err != nil {
		return 0, 0, ioErr("read decimal32", err)
	}

	return int32(scale), int32(raw), nil
}

// newInt32Scalar wraps a raw 32-bit value in the scalar constructor
// matching typ. typ must be one of the 32-bit integer-like types.
func newInt32Scalar(typ types.DataType, v int32) types.Scalar {
	switch typ {
	case types.Int:
		return types.NewInt(v)
	case types.Date:
		return types.NewDate(v)
	case types.Month:
		return types.NewMonth(v)
	case types.Time:
		return types.NewTime(v)
	case types.Minute:
		return types.NewMinute(v)
	case types.Second:
		return types.NewSecond(v)
	case types.DateTime:
		return types.NewDateTime(v)
	case types.DateHour:
		return types.NewDateHour(v)
	default:
		panic(fmt.Sprintf("codec: %s is not a 32-bit scalar type", typ))
	}
}

// newInt64Scalar wraps a raw 64-bit value in the scalar constructor
// matching typ. typ must be one of the 64-bit integer-like types.
func newInt64Scalar(typ types.DataType, v int64) types.Scalar {
	switch typ {
	case types.Long:
		return types.NewLong(v)
	case types.Timestamp:
		return types.NewTimestamp(v)
	case types.NanoTime:
		return types.NewNanoTime(v)
	case types.NanoTimestamp:
		return types.NewNanoTimestamp(v)
	default:
		panic(fmt.Sprintf("codec: %s is not a 64-bit scalar type", typ))
	}
}
