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

// encodeVectorBody appends the body of a plain vector: rows:u32,
// cols:u32 (always 1 for a vector), then the packed elements. String and
// symbol elements are NUL-terminated, blob elements length-prefixed, Any
// elements complete child values, and decimal vectors carry a single
// shared scale:i32 ahead of the packed raw values.
func encodeVectorBody(buf *pool.ByteBuffer, v types.Vector, engine endian.EndianEngine) error {
	appendInt(buf, int32(v.Len()), engine)
	appendInt(buf, 1, engine)

	typ := v.Type()
	if typ == types.Any {
		for i := 0; i < v.Len(); i++ {
			if err := Encode(buf, v.At(i), engine); err != nil {
				return err
			}
		}

		return nil
	}

	if typ.IsDecimal() {
		return encodeDecimalElems(buf, v, engine)
	}

	for i := 0; i < v.Len(); i++ {
		s, err := scalarElem(v, i)
		if err != nil {
			return err
		}

		switch typ {
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
		default:
			return &errs.UnsupportedError{Form: byte(types.FormVector), Type: byte(typ)}
		}
	}

	return nil
}

// encodeDecimalElems writes the shared scale followed by the packed raw
// values of a decimal vector. Every element must carry the same scale;
// a mismatch is a wire-format violation on our side of the connection.
func encodeDecimalElems(buf *pool.ByteBuffer, v types.Vector, engine endian.EndianEngine) error {
	scale := int32(0)
	if v.Len() > 0 {
		first, err := scalarElem(v, 0)
		if err != nil {
			return err
		}
		scale = first.Scale()
	}

	appendInt(buf, scale, engine)

	for i := 0; i < v.Len(); i++ {
		s, err := scalarElem(v, i)
		if err != nil {
			return err
		}

		if s.Scale() != scale {
			return &errs.InvalidDataError{
				Expected: fmt.Sprintf("uniform decimal scale %d", scale),
				Actual:   fmt.Sprintf("scale %d at element %d", s.Scale(), i),
			}
		}

		switch v.Type() {
		case types.Decimal32:
			appendInt(buf, int32(s.Int64()), engine)
		case types.Decimal64:
			appendLong(buf, s.Int64(), engine)
		case types.Decimal128:
			appendI128(buf, s.BigInt(), engine)
		}
	}

	return nil
}

// decodeVectorBody reads the body of a plain vector of the given
// element type.
func decodeVectorBody(r *bufio.Reader, typ types.DataType, engine endian.EndianEngine) (types.Constant, error) {
	rows, err := readU32(r, engine)
	if err != nil {
		return nil, ioErr("read vector rows", err)
	}

	if _, err := readU32(r, engine); err != nil {
		return nil, ioErr("read vector cols", err)
	}

	n := int(rows)
	elems := make([]types.Constant, 0, n)

	if typ == types.Any {
		for i := 0; i < n; i++ {
			el, err := Decode(r, engine)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}

		return types.NewVector(types.Any, elems...), nil
	}

	if typ.IsDecimal() {
		return decodeDecimalElems(r, typ, n, engine)
	}

	for i := 0; i < n; i++ {
		var el types.Constant

		switch typ {
		case types.Bool:
			b, rerr := r.ReadByte()
			if rerr != nil {
				return nil, ioErr("read bool element", rerr)
			}
			if int8(b) == types.NullBool {
				el = types.Null(types.Bool)
			} else {
				el = types.NewBool(b != 0)
			}
		case types.Char:
			b, rerr := r.ReadByte()
			if rerr != nil {
				return nil, ioErr("read char element", rerr)
			}
			el = types.NewChar(int8(b))
		case types.Short:
			v, rerr := readU16(r, engine)
			if rerr != nil {
				return nil, ioErr("read short element", rerr)
			}
			el = types.NewShort(int16(v))
		case types.Int, types.Date, types.Month, types.Time, types.Minute,
			types.Second, types.DateTime, types.DateHour:
			v, rerr := readU32(r, engine)
			if rerr != nil {
				return nil, ioErr("read int32 element", rerr)
			}
			el = newInt32Scalar(typ, int32(v))
		case types.Long, types.Timestamp, types.NanoTime, types.NanoTimestamp:
			v, rerr := readU64(r, engine)
			if rerr != nil {
				return nil, ioErr("read int64 element", rerr)
			}
			el = newInt64Scalar(typ, int64(v))
		case types.Float:
			v, rerr := readU32(r, engine)
			if rerr != nil {
				return nil, ioErr("read float element", rerr)
			}
			el = types.NewFloat(math.Float32frombits(v))
		case types.Double:
			v, rerr := readU64(r, engine)
			if rerr != nil {
				return nil, ioErr("read double element", rerr)
			}
			el = types.NewDouble(math.Float64frombits(v))
		case types.String, types.Symbol:
			s, rerr := readCString(r)
			if rerr != nil {
				return nil, ioErr("read string element", rerr)
			}
			if typ == types.Symbol {
				el = types.NewSymbol(s)
			} else {
				el = types.NewString(s)
			}
		case types.Blob:
			sz, rerr := readU32(r, engine)
			if rerr != nil {
				return nil, ioErr("read blob element length", rerr)
			}
			b, rerr := readN(r, int(sz))
			if rerr != nil {
				return nil, ioErr("read blob element", rerr)
			}
			el = types.NewBlob(b)
		default:
			return nil, &errs.UnsupportedError{Form: byte(types.FormVector), Type: byte(typ)}
		}

		elems = append(elems, el)
	}

	return types.NewVector(typ, elems...), nil
}

func decodeDecimalElems(r *bufio.Reader, typ types.DataType, n int, engine endian.EndianEngine) (types.Constant, error) {
	scaleRaw, err := readU32(r, engine)
	if err != nil {
		return nil, ioErr("read decimal vector scale", err)
	}
	scale := int32(scaleRaw)

	elems := make([]types.Constant, 0, n)
	for i := 0; i < n; i++ {
		switch typ {
		case types.Decimal32:
			v, rerr := readU32(r, engine)
			if rerr != nil {
				return nil, ioErr("read decimal32 element", rerr)
			}
			elems = append(elems, types.NewDecimal32(int32(v), scale))
		case types.Decimal64:
			v, rerr := readU64(r, engine)
			if rerr != nil {
				return nil, ioErr("read decimal64 element", rerr)
			}
			elems = append(elems, types.NewDecimal64(int64(v), scale))
		case types.Decimal128:
			v, rerr := readI128(r, engine)
			if rerr != nil {
				return nil, ioErr("read decimal128 element", rerr)
			}
			elems = append(elems, types.NewDecimal128(v, scale))
		}
	}

	return types.NewVector(typ, elems...), nil
}

// scalarElem returns element i of v as a Scalar, or an InvalidData
// error when the element does not carry a scalar payload.
func scalarElem(v types.Vector, i int) (types.Scalar, error) {
	s, ok := v.At(i).(types.Scalar)
	if !ok {
		return types.Scalar{}, &errs.InvalidDataError{
			Expected: fmt.Sprintf("scalar %s element", v.Type()),
			Actual:   fmt.Sprintf("form %s at element %d", v.At(i).Form(), i),
		}
	}

	return s, nil
}
