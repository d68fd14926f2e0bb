package types

import "fmt"

// Numeric is the set of element types an ArrayVector may hold, one per
// array-vector variant tag.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// ArrayVector is a ragged two-dimensional numeric vector: a concatenated
// data buffer plus an ordered index giving the exclusive end-offset of
// each logical row, so row i is Data[Index[i-1]:Index[i]] with
// Index[-1] treated as 0.
//
// Push appends a whole row at once and records its end offset; Resize
// extends Index with copies of the last offset, adding empty rows.
type ArrayVector[T Numeric] struct {
	Data  []T
	Index []int
}

// NewArrayVector returns an empty ArrayVector.
func NewArrayVector[T Numeric]() ArrayVector[T] {
	return ArrayVector[T]{}
}

// Len returns the number of logical rows.
func (v ArrayVector[T]) Len() int { return len(v.Index) }

// IsEmpty reports whether the backing data buffer is empty. This
// differs from Len() == 0 only when every row is itself empty: Len
// counts rows, IsEmpty reports on the flat buffer.
func (v ArrayVector[T]) IsEmpty() bool { return len(v.Data) == 0 }

// Push appends row as a new logical row, extending Data and recording
// its end offset in Index.
func (v *ArrayVector[T]) Push(row []T) {
	v.Data = append(v.Data, row...)
	v.Index = append(v.Index, len(v.Data))
}

// Row returns the logical row at i as a slice into Data.
func (v ArrayVector[T]) Row(i int) []T {
	start := 0
	if i > 0 {
		start = v.Index[i-1]
	}

	return v.Data[start:v.Index[i]]
}

// Resize extends or truncates Index to newLen. Newly added rows are
// empty (their end offset equals the prior last offset).
func (v *ArrayVector[T]) Resize(newLen int) {
	last := 0
	if len(v.Index) > 0 {
		last = v.Index[len(v.Index)-1]
	}

	if newLen <= len(v.Index) {
		v.Index = v.Index[:newLen]
		return
	}

	for len(v.Index) < newLen {
		v.Index = append(v.Index, last)
	}
}

// Clear removes all rows, retaining the backing arrays for reuse.
func (v *ArrayVector[T]) Clear() {
	v.Data = v.Data[:0]
	v.Index = v.Index[:0]
}

// Valid checks the row-end-offset invariant: Index is non-strictly
// monotonically non-decreasing, and its last element equals len(Data)
// whenever the vector is non-empty.
func (v ArrayVector[T]) Valid() bool {
	prev := 0
	for _, idx := range v.Index {
		if idx < prev {
			return false
		}
		prev = idx
	}

	return len(v.Index) == 0 || v.Index[len(v.Index)-1] == len(v.Data)
}

// The six array-vector variants. Go generic types cannot report a
// per-instantiation DataType through a shared method body, so each
// variant is a small named wrapper implementing Constant directly.

// CharArrayVector is an ArrayVector of int8 rows.
type CharArrayVector struct{ ArrayVector[int8] }

// Form always returns FormVector.
func (CharArrayVector) Form() Form { return FormVector }

// Type always returns CharArray.
func (CharArrayVector) Type() DataType { return CharArray }

// ShortArrayVector is an ArrayVector of int16 rows.
type ShortArrayVector struct{ ArrayVector[int16] }

// Form always returns FormVector.
func (ShortArrayVector) Form() Form { return FormVector }

// Type always returns ShortArray.
func (ShortArrayVector) Type() DataType { return ShortArray }

// IntArrayVector is an ArrayVector of int32 rows.
type IntArrayVector struct{ ArrayVector[int32] }

// Form always returns FormVector.
func (IntArrayVector) Form() Form { return FormVector }

// Type always returns IntArray.
func (IntArrayVector) Type() DataType { return IntArray }

// LongArrayVector is an ArrayVector of int64 rows.
type LongArrayVector struct{ ArrayVector[int64] }

// Form always returns FormVector.
func (LongArrayVector) Form() Form { return FormVector }

// Type always returns LongArray.
func (LongArrayVector) Type() DataType { return LongArray }

// FloatArrayVector is an ArrayVector of float32 rows.
type FloatArrayVector struct{ ArrayVector[float32] }

// Form always returns FormVector.
func (FloatArrayVector) Form() Form { return FormVector }

// Type always returns FloatArray.
func (FloatArrayVector) Type() DataType { return FloatArray }

// DoubleArrayVector is an ArrayVector of float64 rows.
type DoubleArrayVector struct{ ArrayVector[float64] }

// Form always returns FormVector.
func (DoubleArrayVector) Form() Form { return FormVector }

// Type always returns DoubleArray.
func (DoubleArrayVector) Type() DataType { return DoubleArray }

var (
	_ Constant = CharArrayVector{}
	_ Constant = ShortArrayVector{}
	_ Constant = IntArrayVector{}
	_ Constant = LongArrayVector{}
	_ Constant = FloatArrayVector{}
	_ Constant = DoubleArrayVector{}
)

func (v CharArrayVector) String() string   { return fmt.Sprintf("CharArrayVector[%d]", v.Len()) }
func (v ShortArrayVector) String() string  { return fmt.Sprintf("ShortArrayVector[%d]", v.Len()) }
func (v IntArrayVector) String() string    { return fmt.Sprintf("IntArrayVector[%d]", v.Len()) }
func (v LongArrayVector) String() string   { return fmt.Sprintf("LongArrayVector[%d]", v.Len()) }
func (v FloatArrayVector) String() string  { return fmt.Sprintf("FloatArrayVector[%d]", v.Len()) }
func (v DoubleArrayVector) String() string { return fmt.Sprintf("DoubleArrayVector[%d]", v.Len()) }
