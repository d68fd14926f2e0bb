package codec

import (
	"encoding/binary"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

func newTestBuffer() *pool.ByteBuffer {
	return pool.NewByteBuffer(256)
}

var bothEngines = []struct {
	name   string
	engine endian.EndianEngine
}{
	{"little", endian.GetLittleEndianEngine()},
	{"big", endian.GetBigEndianEngine()},
}

func roundTrip(t *testing.T, c types.Constant, engine endian.EndianEngine) types.Constant {
	t.Helper()

	data, err := Marshal(c, engine)
	require.NoError(t, err)

	out, err := Unmarshal(data, engine)
	require.NoError(t, err)

	return out
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		s    types.Scalar
	}{
		{"bool true", types.NewBool(true)},
		{"bool false", types.NewBool(false)},
		{"bool null", types.Null(types.Bool)},
		{"char", types.NewChar(-7)},
		{"char null", types.Null(types.Char)},
		{"short", types.NewShort(-12345)},
		{"short null", types.Null(types.Short)},
		{"int", types.NewInt(1)},
		{"int null", types.Null(types.Int)},
		{"long", types.NewLong(math.MaxInt64)},
		{"long null", types.Null(types.Long)},
		{"float", types.NewFloat(1.5)},
		{"float null", types.Null(types.Float)},
		{"double", types.NewDouble(1.0)},
		{"double null", types.Null(types.Double)},
		{"date", types.NewDate(19000)},
		{"month", types.NewMonth(2024*12 + 5)},
		{"month negative", types.NewMonth(-12)},
		{"time", types.NewTime(86399999)},
		{"minute", types.NewMinute(1439)},
		{"second", types.NewSecond(86399)},
		{"datetime", types.NewDateTime(1700000000)},
		{"timestamp", types.NewTimestamp(1700000000123)},
		{"nanotime", types.NewNanoTime(86399999999999)},
		{"nanotimestamp", types.NewNanoTimestamp(1700000000123456789)},
		{"datehour", types.NewDateHour(470000)},
		{"string", types.NewString("str")},
		{"string empty", types.NewString("")},
		{"symbol", types.NewSymbol("sym")},
		{"blob", types.NewBlob([]byte{0, 1, 2, 0xff})},
		{"void", types.NewVoid()},
		{"decimal32", types.NewDecimal32(12345, 2)},
		{"decimal64", types.NewDecimal64(-9876543210, 8)},
		{"any wrapping int", types.NewAny(types.NewInt(42))},
	}

	for _, eng := range bothEngines {
		for _, tc := range cases {
			t.Run(eng.name+"/"+tc.name, func(t *testing.T) {
				out := roundTrip(t, tc.s, eng.engine)
				require.Equal(t, tc.s, out)
			})
		}
	}
}

func TestScalarNaNRoundTrip(t *testing.T) {
	for _, eng := range bothEngines {
		out := roundTrip(t, types.NewDouble(math.NaN()), eng.engine)
		s, ok := out.(types.Scalar)
		require.True(t, ok)
		require.True(t, math.IsNaN(s.Float64()))
		require.False(t, s.IsNull())
	}
}

func TestScalarNullSentinelsBitExact(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	data, err := Marshal(types.Null(types.Int), engine)
	require.NoError(t, err)
	require.Equal(t, []byte{byte(types.FormScalar), byte(types.Int), 0x00, 0x00, 0x00, 0x80}, data)

	data, err = Marshal(types.Null(types.Double), engine)
	require.NoError(t, err)
	require.Equal(t, uint64(math.Float64bits(-math.MaxFloat64)), binary.LittleEndian.Uint64(data[2:]))
}

func TestDecimal128RoundTrip(t *testing.T) {
	huge, ok := new(big.Int).SetString("-170141183460469231731687303715884105727", 10)
	require.True(t, ok)

	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(987654321),
		big.NewInt(-987654321),
		new(big.Int).Lsh(big.NewInt(1), 100),
		huge,
	}

	for _, eng := range bothEngines {
		for _, raw := range cases {
			out := roundTrip(t, types.NewDecimal128(raw, 10), eng.engine)
			s, sok := out.(types.Scalar)
			require.True(t, sok)
			require.Equal(t, int32(10), s.Scale())
			require.Zero(t, raw.Cmp(s.BigInt()), "raw %s survived as %s", raw, s.BigInt())
		}
	}

	out := roundTrip(t, types.Null(types.Decimal128), endian.GetLittleEndianEngine())
	require.True(t, out.(types.Scalar).IsNull())
}

func TestVectorRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    types.Vector
	}{
		{"int", types.NewVector(types.Int, types.NewInt(2), types.NewInt(3))},
		{"int with null", types.NewVector(types.Int, types.NewInt(2), types.Null(types.Int))},
		{"double", types.NewVector(types.Double, types.NewDouble(1.1), types.NewDouble(-2.5))},
		{"bool", types.NewVector(types.Bool, types.NewBool(true), types.NewBool(false))},
		{"long", types.NewVector(types.Long, types.NewLong(1), types.NewLong(math.MinInt64+1))},
		{"string", types.NewVector(types.String, types.NewString("a"), types.NewString(""), types.NewString("ccc"))},
		{"symbol", types.NewVector(types.Symbol, types.NewSymbol("a"), types.NewSymbol("b"), types.NewSymbol("c"))},
		{"blob", types.NewVector(types.Blob, types.NewBlob([]byte{97}), types.NewBlob([]byte{98}))},
		{"timestamp", types.NewVector(types.Timestamp, types.NewTimestamp(1), types.NewTimestamp(2))},
		{"decimal64", types.NewVector(types.Decimal64, types.NewDecimal64(100, 4), types.NewDecimal64(-100, 4))},
		{"any mixed", types.NewVector(types.Any,
			types.NewInt(1),
			types.NewString("x"),
			types.NewVector(types.Int, types.NewInt(9)),
		)},
	}

	for _, eng := range bothEngines {
		for _, tc := range cases {
			t.Run(eng.name+"/"+tc.name, func(t *testing.T) {
				out := roundTrip(t, tc.v, eng.engine)
				vec, ok := out.(types.Vector)
				require.True(t, ok)
				require.Equal(t, tc.v.Type(), vec.Type())
				require.Equal(t, tc.v.Len(), vec.Len())
				require.Equal(t, tc.v, vec)
			})
		}
	}
}

func TestEmptyVectorRoundTripPreservesType(t *testing.T) {
	for _, typ := range []types.DataType{types.Int, types.Double, types.String, types.Symbol} {
		out := roundTrip(t, types.NewVector(typ), endian.GetLittleEndianEngine())
		vec, ok := out.(types.Vector)
		require.True(t, ok)
		assert.Equal(t, typ, vec.Type())
		assert.Zero(t, vec.Len())
	}
}

func TestSymbolVectorScenario(t *testing.T) {
	v := types.NewVector(types.Symbol,
		types.NewSymbol("a"), types.NewSymbol("b"), types.NewSymbol("c"))

	out := roundTrip(t, v, endian.GetLittleEndianEngine())
	vec := out.(types.Vector)
	require.Equal(t, 3, vec.Len())
	for i, want := range []string{"a", "b", "c"} {
		require.Equal(t, want, vec.At(i).(types.Scalar).Str())
	}
}

func buildDoubleArrayVector(rows ...[]float64) types.DoubleArrayVector {
	var av types.DoubleArrayVector
	for _, row := range rows {
		av.Push(row)
	}

	return av
}

func TestArrayVectorRoundTrip(t *testing.T) {
	av := buildDoubleArrayVector([]float64{1.1, 2.2, 3.3}, []float64{4.4, 5.5})
	require.True(t, av.Valid())

	for _, eng := range bothEngines {
		t.Run(eng.name, func(t *testing.T) {
			out := roundTrip(t, av, eng.engine)
			got, ok := out.(types.DoubleArrayVector)
			require.True(t, ok)
			require.True(t, got.Valid())
			require.Equal(t, av.Len(), got.Len())
			for i := 0; i < av.Len(); i++ {
				require.Equal(t, av.Row(i), got.Row(i))
			}
		})
	}
}

func TestArrayVectorEmptyAndEmptyRows(t *testing.T) {
	var empty types.IntArrayVector
	out := roundTrip(t, empty, endian.GetLittleEndianEngine())
	require.Zero(t, out.(types.IntArrayVector).Len())

	var sparse types.IntArrayVector
	sparse.Push([]int32{1})
	sparse.Push(nil)
	sparse.Push([]int32{2, 3})

	got := roundTrip(t, sparse, endian.GetLittleEndianEngine()).(types.IntArrayVector)
	require.Equal(t, 3, got.Len())
	require.Empty(t, got.Row(1))
	require.Equal(t, []int32{2, 3}, got.Row(2))
	require.True(t, got.Valid())
}

// arrayVectorBytes hand-assembles a little-endian DoubleArray body with
// the given index width so narrow widths can be exercised; the encoder
// itself always emits width 4.
func arrayVectorBytes(t *testing.T, width int, rows [][]float64) []byte {
	t.Helper()

	out := []byte{byte(types.FormVector), byte(types.DoubleArray)}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(rows)))
	out = binary.LittleEndian.AppendUint32(out, 1)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(rows)))
	out = append(out, byte(width), 0)

	for _, row := range rows {
		switch width {
		case 1:
			out = append(out, byte(len(row)))
		case 2:
			out = binary.LittleEndian.AppendUint16(out, uint16(len(row)))
		case 4:
			out = binary.LittleEndian.AppendUint32(out, uint32(len(row)))
		default:
			t.Fatalf("unsupported width %d", width)
		}
	}

	for _, row := range rows {
		for _, v := range row {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
		}
	}

	return out
}

func TestArrayVectorIndexWidthsDecodeIdentically(t *testing.T) {
	rows := [][]float64{{1.1, 2.2, 3.3}, {4.4, 5.5}}

	var decoded []types.DoubleArrayVector
	for _, width := range []int{1, 2, 4} {
		out, err := Unmarshal(arrayVectorBytes(t, width, rows), endian.GetLittleEndianEngine())
		require.NoError(t, err, "width %d", width)
		decoded = append(decoded, out.(types.DoubleArrayVector))
	}

	require.Equal(t, decoded[0], decoded[1])
	require.Equal(t, decoded[1], decoded[2])
	require.Equal(t, []float64{4.4, 5.5}, decoded[0].Row(1))
}

func TestArrayVectorRejectsIndexWidth8(t *testing.T) {
	data := []byte{byte(types.FormVector), byte(types.DoubleArray)}
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = binary.LittleEndian.AppendUint32(data, 1)
	data = binary.LittleEndian.AppendUint16(data, 1)
	data = append(data, 8, 0)

	_, err := Unmarshal(data, endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestTableRoundTrip(t *testing.T) {
	volume := buildDoubleArrayVector([]float64{1.1, 2.2, 3.3}, []float64{4.4, 5.5})
	price := types.NewVector(types.Int, types.NewInt(2), types.NewInt(3))
	table := types.NewTable("my_table",
		types.Column{Name: "volume", Value: volume},
		types.Column{Name: "price", Value: price},
	)
	require.NoError(t, table.Validate())

	for _, eng := range bothEngines {
		t.Run(eng.name, func(t *testing.T) {
			out := roundTrip(t, table, eng.engine)
			got, ok := out.(types.Table)
			require.True(t, ok)
			require.Equal(t, "my_table", got.Name)
			require.Equal(t, []string{"volume", "price"}, got.ColumnNames())
			require.Equal(t, 2, got.RowCount())

			vol, found := got.Column("volume")
			require.True(t, found)
			require.Equal(t, types.DoubleArray, vol.Type())

			pr, found := got.Column("price")
			require.True(t, found)
			require.Equal(t, price, pr)
		})
	}
}

func TestTableEncodeRejectsRaggedColumns(t *testing.T) {
	bad := types.NewTable("bad",
		types.Column{Name: "a", Value: types.NewVector(types.Int, types.NewInt(1))},
		types.Column{Name: "b", Value: types.NewVector(types.Int)},
	)

	_, err := Marshal(bad, endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestDictionaryRoundTrip(t *testing.T) {
	d := types.NewDictionary(
		types.NewVector(types.String, types.NewString("x"), types.NewString("y")),
		types.NewVector(types.Int, types.NewInt(1), types.NewInt(2)),
	)
	require.NoError(t, d.Validate())

	out := roundTrip(t, d, endian.GetBigEndianEngine())
	got, ok := out.(types.Dictionary)
	require.True(t, ok)
	require.Equal(t, d.Keys.Len(), got.Values.Len())
	require.NoError(t, got.Validate())
	require.Equal(t, d, got)
}

func TestSetRoundTrip(t *testing.T) {
	s, err := types.NewSetChecked(types.NewVector(types.Int,
		types.NewInt(5), types.NewInt(7), types.NewInt(9)))
	require.NoError(t, err)

	out := roundTrip(t, s, endian.GetLittleEndianEngine())
	got, ok := out.(types.Set)
	require.True(t, ok)
	require.NoError(t, got.Validate())
	require.Equal(t, s.Elems(), got.Elems())
}

func TestDecodeRejectsUnsupportedForms(t *testing.T) {
	for _, form := range []types.Form{types.FormPair, types.FormMatrix, types.FormChunk} {
		_, err := Unmarshal([]byte{byte(form), byte(types.Int)}, endian.GetLittleEndianEngine())
		require.ErrorIs(t, err, errs.ErrUnsupported, "form %s", form)

		var detail *errs.UnsupportedError
		require.ErrorAs(t, err, &detail)
		assert.Equal(t, byte(form), detail.Form)
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	full, err := Marshal(types.NewVector(types.Int, types.NewInt(1), types.NewInt(2)),
		endian.GetLittleEndianEngine())
	require.NoError(t, err)

	for _, cut := range []int{1, 2, 6, len(full) - 1} {
		_, err := Unmarshal(full[:cut], endian.GetLittleEndianEngine())
		require.ErrorIs(t, err, errs.ErrIO, "cut at %d", cut)
	}
}

func TestEncodeRejectsNonMonotonicIndex(t *testing.T) {
	bad := types.IntArrayVector{ArrayVector: types.ArrayVector[int32]{
		Data:  []int32{1, 2},
		Index: []int{2, 1},
	}}

	buf := newTestBuffer()
	err := EncodeLE(buf, bad)
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestEncodeLEMatchesExplicitLittleEngine(t *testing.T) {
	v := types.NewVector(types.Double, types.NewDouble(3.14), types.NewDouble(-1))

	a, err := Marshal(v, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	buf := newTestBuffer()
	require.NoError(t, EncodeLE(buf, v))
	require.Equal(t, a, buf.Bytes())
}
