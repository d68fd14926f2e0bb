// Package codec implements the symmetric serialize/deserialize routines
// between the types package's tagged value universe and the wire's byte
// representation.
//
// Every value on the wire begins with a two-byte header, form:u8 then
// type:u8, followed by a form-specific body. Multi-byte integers and
// floats within the body use the connection's negotiated byte order; the
// LE-suffixed entry points fix the order to little-endian for callers
// that negotiated it or that encode standalone payloads.
//
// Encoding appends to a pool.ByteBuffer so a session can assemble an
// entire request into one pooled buffer; decoding reads from a
// bufio.Reader so a reply can be consumed directly off the socket
// without an intermediate copy.
package codec

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

// Encode appends the complete wire encoding of c (header plus body) to
// buf using the given byte order.
func Encode(buf *pool.ByteBuffer, c types.Constant, engine endian.EndianEngine) error {
	if c == nil {
		return &errs.UnsupportedError{Form: 0xff, Type: 0xff}
	}

	buf.B = append(buf.B, byte(c.Form()), byte(c.Type()))

	switch v := c.(type) {
	case types.Scalar:
		return encodeScalarBody(buf, v, engine)
	case types.Vector:
		return encodeVectorBody(buf, v, engine)
	case types.CharArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendChar)
	case types.ShortArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendShort)
	case types.IntArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendInt)
	case types.LongArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendLong)
	case types.FloatArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendFloat)
	case types.DoubleArrayVector:
		return encodeArrayVectorBody(buf, v.ArrayVector, engine, appendDouble)
	case types.Set:
		return Encode(buf, v.Elems(), engine)
	case types.Dictionary:
		if err := Encode(buf, v.Keys, engine); err != nil {
			return err
		}

		return Encode(buf, v.Values, engine)
	case types.Table:
		return encodeTableBody(buf, v, engine)
	default:
		return &errs.UnsupportedError{Form: byte(c.Form()), Type: byte(c.Type())}
	}
}

// EncodeLE appends the little-endian wire encoding of c to buf.
func EncodeLE(buf *pool.ByteBuffer, c types.Constant) error {
	return Encode(buf, c, endian.GetLittleEndianEngine())
}

// Marshal returns the complete wire encoding of c as a fresh byte slice.
// Sessions should prefer Encode with a pooled buffer; Marshal is for
// callers that need a standalone payload.
func Marshal(c types.Constant, engine endian.EndianEngine) ([]byte, error) {
	buf := pool.GetRequestBuffer()
	defer pool.PutRequestBuffer(buf)

	if err := Encode(buf, c, engine); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// Decode reads one complete Constant (header plus body) from r using the
// given byte order.
func Decode(r *bufio.Reader, engine endian.EndianEngine) (types.Constant, error) {
	formByte, err := r.ReadByte()
	if err != nil {
		return nil, ioErr("read form tag", err)
	}

	typeByte, err := r.ReadByte()
	if err != nil {
		return nil, ioErr("read type tag", err)
	}

	form := types.Form(formByte)
	typ := types.DataType(typeByte)

	switch form {
	case types.FormScalar:
		return decodeScalarBody(r, typ, engine)
	case types.FormVector:
		if typ.IsArrayVector() {
			return decodeArrayVector(r, typ, engine)
		}

		return decodeVectorBody(r, typ, engine)
	case types.FormSet:
		elems, err := decodeInnerVector(r, engine)
		if err != nil {
			return nil, err
		}

		return types.NewSet(elems), nil
	case types.FormDictionary:
		keys, err := decodeInnerVector(r, engine)
		if err != nil {
			return nil, err
		}

		values, err := decodeInnerVector(r, engine)
		if err != nil {
			return nil, err
		}

		return types.NewDictionary(keys, values), nil
	case types.FormTable:
		return decodeTableBody(r, engine)
	default:
		// Pair, Matrix, and Chunk carry valid tags but are outside the
		// supported universe.
		return nil, &errs.UnsupportedError{Form: formByte, Type: typeByte}
	}
}

// DecodeLE reads one complete Constant from r using little-endian byte
// order.
func DecodeLE(r *bufio.Reader) (types.Constant, error) {
	return Decode(r, endian.GetLittleEndianEngine())
}

// Unmarshal decodes one complete Constant from data. Trailing bytes
// after the value are ignored.
func Unmarshal(data []byte, engine endian.EndianEngine) (types.Constant, error) {
	return Decode(bufio.NewReader(bytes.NewReader(data)), engine)
}

// decodeInnerVector decodes a complete child value and requires it to be
// a plain Vector, as in Set and Dictionary bodies.
func decodeInnerVector(r *bufio.Reader, engine endian.EndianEngine) (types.Vector, error) {
	inner, err := Decode(r, engine)
	if err != nil {
		return types.Vector{}, err
	}

	vec, ok := inner.(types.Vector)
	if !ok {
		return types.Vector{}, &errs.InvalidDataError{
			Expected: "vector body",
			Actual:   fmt.Sprintf("form %s", inner.Form()),
		}
	}

	return vec, nil
}

func ioErr(op string, err error) error {
	return fmt.Errorf("codec: %s: %w: %v", op, errs.ErrIO, err)
}
