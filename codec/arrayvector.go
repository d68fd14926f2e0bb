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

// maxBlockRows is the largest row count a single block can describe:
// the block header's count field is a u16.
const maxBlockRows = math.MaxUint16

// encodeArrayVectorBody appends the body of an array vector: rows:u32,
// cols:u32, then one or more blocks. Each block is count:u16,
// index_width:u8, reserved:i8, count row-size deltas of index_width
// bytes, then the packed row data. Encoding always uses index_width 4;
// narrower widths are accepted on decode only.
func encodeArrayVectorBody[T types.Numeric](
	buf *pool.ByteBuffer,
	v types.ArrayVector[T],
	engine endian.EndianEngine,
	put func(*pool.ByteBuffer, T, endian.EndianEngine),
) error {
	appendInt(buf, int32(v.Len()), engine)
	appendInt(buf, 1, engine)

	prevEnd := 0
	for start := 0; start < v.Len(); start += maxBlockRows {
		count := v.Len() - start
		if count > maxBlockRows {
			count = maxBlockRows
		}

		buf.B = engine.AppendUint16(buf.B, uint16(count))
		buf.B = append(buf.B, 4, 0)

		blockStart := prevEnd
		for i := start; i < start+count; i++ {
			end := v.Index[i]
			if end < prevEnd || end > math.MaxUint32 {
				return &errs.InvalidDataError{
					Expected: "monotonic row-end offsets within uint32 range",
					Actual:   fmt.Sprintf("offset %d after %d at row %d", end, prevEnd, i),
				}
			}

			appendInt(buf, int32(end-prevEnd), engine)
			prevEnd = end
		}

		for _, val := range v.Data[blockStart:prevEnd] {
			put(buf, val, engine)
		}
	}

	return nil
}

// decodeArrayVector reads the body of an array vector of the given
// variant tag and wraps it in the matching named vector type.
func decodeArrayVector(r *bufio.Reader, typ types.DataType, engine endian.EndianEngine) (types.Constant, error) {
	rows, err := readU32(r, engine)
	if err != nil {
		return nil, ioErr("read array vector rows", err)
	}

	if _, err := readU32(r, engine); err != nil {
		return nil, ioErr("read array vector cols", err)
	}

	n := int(rows)

	switch typ {
	case types.CharArray:
		av, err := decodeArrayVectorBody(r, n, engine, getChar)
		if err != nil {
			return nil, err
		}

		return types.CharArrayVector{ArrayVector: av}, nil
	case types.ShortArray:
		av, err := decodeArrayVectorBody(r, n, engine, getShort)
		if err != nil {
			return nil, err
		}

		return types.ShortArrayVector{ArrayVector: av}, nil
	case types.IntArray:
		av, err := decodeArrayVectorBody(r, n, engine, getInt)
		if err != nil {
			return nil, err
		}

		return types.IntArrayVector{ArrayVector: av}, nil
	case types.LongArray:
		av, err := decodeArrayVectorBody(r, n, engine, getLong)
		if err != nil {
			return nil, err
		}

		return types.LongArrayVector{ArrayVector: av}, nil
	case types.FloatArray:
		av, err := decodeArrayVectorBody(r, n, engine, getFloat)
		if err != nil {
			return nil, err
		}

		return types.FloatArrayVector{ArrayVector: av}, nil
	case types.DoubleArray:
		av, err := decodeArrayVectorBody(r, n, engine, getDouble)
		if err != nil {
			return nil, err
		}

		return types.DoubleArrayVector{ArrayVector: av}, nil
	default:
		return nil, &errs.UnsupportedError{Form: byte(types.FormVector), Type: byte(typ)}
	}
}

// decodeArrayVectorBody accumulates blocks until the expected number of
// logical rows has been read. A block may cover only part of the vector.
func decodeArrayVectorBody[T types.Numeric](
	r *bufio.Reader,
	rows int,
	engine endian.EndianEngine,
	get func(*bufio.Reader, endian.EndianEngine) (T, error),
) (types.ArrayVector[T], error) {
	var av types.ArrayVector[T]

	av.Index = make([]int, 0, rows)
	prev := 0
	lastEnd := 0
	remaining := rows

	for remaining > 0 {
		count, err := readU16(r, engine)
		if err != nil {
			return av, ioErr("read block count", err)
		}

		widthByte, err := r.ReadByte()
		if err != nil {
			return av, ioErr("read block index width", err)
		}

		if _, err := r.ReadByte(); err != nil { // reserved
			return av, ioErr("read block reserved byte", err)
		}

		width := int(widthByte)
		if width != 1 && width != 2 && width != 4 {
			// 8 is deliberately invalid as well.
			return av, &errs.InvalidDataError{
				Expected: "size_of_index_data: 1 2 4",
				Actual:   fmt.Sprintf("%d", width),
			}
		}

		if count == 0 || int(count) > remaining {
			return av, &errs.InvalidDataError{
				Expected: fmt.Sprintf("block of at most %d remaining rows", remaining),
				Actual:   fmt.Sprintf("count %d", count),
			}
		}

		for i := 0; i < int(count); i++ {
			delta, err := readIndexDelta(r, width, engine)
			if err != nil {
				return av, ioErr("read index delta", err)
			}

			next := prev + delta
			if next < prev {
				return av, &errs.InvalidDataError{
					Expected: "row-end offset within int range",
					Actual:   fmt.Sprintf("overflow adding delta %d to %d", delta, prev),
				}
			}

			prev = next
			av.Index = append(av.Index, prev)
		}

		for i := lastEnd; i < prev; i++ {
			val, err := get(r, engine)
			if err != nil {
				return av, ioErr("read array vector element", err)
			}

			av.Data = append(av.Data, val)
		}

		lastEnd = prev
		remaining -= int(count)
	}

	return av, nil
}

func readIndexDelta(r *bufio.Reader, width int, engine endian.EndianEngine) (int, error) {
	switch width {
	case 1:
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		return int(b), nil
	case 2:
		v, err := readU16(r, engine)
		if err != nil {
			return 0, err
		}

		return int(v), nil
	default:
		v, err := readU32(r, engine)
		if err != nil {
			return 0, err
		}

		return int(v), nil
	}
}

// Per-width element readers for the six array-vector variants.

func getChar(r *bufio.Reader, _ endian.EndianEngine) (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func getShort(r *bufio.Reader, engine endian.EndianEngine) (int16, error) {
	v, err := readU16(r, engine)
	return int16(v), err
}

func getInt(r *bufio.Reader, engine endian.EndianEngine) (int32, error) {
	v, err := readU32(r, engine)
	return int32(v), err
}

func getLong(r *bufio.Reader, engine endian.EndianEngine) (int64, error) {
	v, err := readU64(r, engine)
	return int64(v), err
}

func getFloat(r *bufio.Reader, engine endian.EndianEngine) (float32, error) {
	v, err := readU32(r, engine)
	return math.Float32frombits(v), err
}

func getDouble(r *bufio.Reader, engine endian.EndianEngine) (float64, error) {
	v, err := readU64(r, engine)
	return math.Float64frombits(v), err
}
