package codec

import (
	"bufio"
	"io"
	"math"
	"math/big"

	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/internal/pool"
)

// Raw-width append helpers. Each appends one value of its width to the
// buffer in the engine's byte order, using the engine's Append methods
// to avoid a temporary scratch slice.

func appendChar(buf *pool.ByteBuffer, v int8, _ endian.EndianEngine) {
	buf.B = append(buf.B, byte(v))
}

func appendShort(buf *pool.ByteBuffer, v int16, engine endian.EndianEngine) {
	buf.B = engine.AppendUint16(buf.B, uint16(v))
}

func appendInt(buf *pool.ByteBuffer, v int32, engine endian.EndianEngine) {
	buf.B = engine.AppendUint32(buf.B, uint32(v))
}

func appendLong(buf *pool.ByteBuffer, v int64, engine endian.EndianEngine) {
	buf.B = engine.AppendUint64(buf.B, uint64(v))
}

func appendFloat(buf *pool.ByteBuffer, v float32, engine endian.EndianEngine) {
	buf.B = engine.AppendUint32(buf.B, math.Float32bits(v))
}

func appendDouble(buf *pool.ByteBuffer, v float64, engine endian.EndianEngine) {
	buf.B = engine.AppendUint64(buf.B, math.Float64bits(v))
}

// appendCString appends s followed by a terminating NUL.
func appendCString(buf *pool.ByteBuffer, s string) {
	buf.B = append(buf.B, s...)
	buf.B = append(buf.B, 0)
}

func isLittle(engine endian.EndianEngine) bool {
	return engine == endian.EndianEngine(endian.GetLittleEndianEngine())
}

// appendI128 appends the 16-byte two's-complement encoding of v in the
// engine's byte order. A nil v encodes as the 128-bit minimum, the null
// sentinel of its width.
func appendI128(buf *pool.ByteBuffer, v *big.Int, engine endian.EndianEngine) {
	var raw [16]byte // big-endian two's complement
	if v == nil {
		raw[0] = 0x80
	} else {
		fillI128(&raw, v)
	}

	if isLittle(engine) {
		for i := 15; i >= 0; i-- {
			buf.B = append(buf.B, raw[i])
		}

		return
	}

	buf.B = append(buf.B, raw[:]...)
}

// fillI128 writes the big-endian two's-complement form of v into raw.
func fillI128(raw *[16]byte, v *big.Int) {
	abs := new(big.Int).Abs(v)
	abs.FillBytes(raw[:])
	if v.Sign() < 0 {
		carry := byte(1)
		for i := 15; i >= 0; i-- {
			raw[i] = ^raw[i] + carry
			if raw[i] != 0 {
				carry = 0
			}
		}
	}
}

// Reader helpers. All truncation is surfaced as an io error wrapping
// errs.ErrIO via ioErr at the call site.

func readN(r *bufio.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}

	return b, nil
}

func readU16(r *bufio.Reader, engine endian.EndianEngine) (uint16, error) {
	b, err := readN(r, 2)
	if err != nil {
		return 0, err
	}

	return engine.Uint16(b), nil
}

func readU32(r *bufio.Reader, engine endian.EndianEngine) (uint32, error) {
	b, err := readN(r, 4)
	if err != nil {
		return 0, err
	}

	return engine.Uint32(b), nil
}

func readU64(r *bufio.Reader, engine endian.EndianEngine) (uint64, error) {
	b, err := readN(r, 8)
	if err != nil {
		return 0, err
	}

	return engine.Uint64(b), nil
}

// readCString reads bytes up to and including a terminating NUL and
// returns them without the terminator.
func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}

	return s[:len(s)-1], nil
}

// readI128 reads a 16-byte two's-complement value written by appendI128
// and returns it as a big.Int. The 128-bit minimum decodes to nil, the
// null sentinel of its width.
func readI128(r *bufio.Reader, engine endian.EndianEngine) (*big.Int, error) {
	b, err := readN(r, 16)
	if err != nil {
		return nil, err
	}

	var raw [16]byte // big-endian two's complement
	if isLittle(engine) {
		for i := range raw {
			raw[i] = b[15-i]
		}
	} else {
		copy(raw[:], b)
	}

	if isMinI128(raw) {
		return nil, nil
	}

	negative := raw[0]&0x80 != 0
	if negative {
		carry := byte(1)
		for i := 15; i >= 0; i-- {
			raw[i] = ^raw[i] + carry
			if raw[i] != 0 {
				carry = 0
			}
		}
	}

	v := new(big.Int).SetBytes(raw[:])
	if negative {
		v.Neg(v)
	}

	return v, nil
}

func isMinI128(raw [16]byte) bool {
	if raw[0] != 0x80 {
		return false
	}

	for _, b := range raw[1:] {
		if b != 0 {
			return false
		}
	}

	return true
}
