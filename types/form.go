// Package types defines the closed, tagged universe of values the wire
// protocol can carry: a Form (the structural shape) crossed with a Type
// (the element kind), realized as one Go struct per (form, type) family
// behind the Constant interface.
package types

// Form is the structural category of a value: Scalar, Vector, Table, and
// so on. It is encoded as a single byte on the wire.
type Form uint8

// Form tag values, one byte on the wire.
const (
	FormScalar     Form = 0
	FormVector     Form = 1
	FormPair       Form = 2
	FormMatrix     Form = 3
	FormSet        Form = 4
	FormDictionary Form = 5
	FormTable      Form = 6
	FormChunk      Form = 7
)

// String returns the human-readable name of the form, or "Unknown" for an
// unrecognized tag.
func (f Form) String() string {
	switch f {
	case FormScalar:
		return "Scalar"
	case FormVector:
		return "Vector"
	case FormPair:
		return "Pair"
	case FormMatrix:
		return "Matrix"
	case FormSet:
		return "Set"
	case FormDictionary:
		return "Dictionary"
	case FormTable:
		return "Table"
	case FormChunk:
		return "Chunk"
	default:
		return "Unknown"
	}
}

// Supported reports whether the codec can encode and decode values of
// this form. Pair, Matrix, and Chunk are recognized on the wire (their
// tag is valid) but are rejected by the codec rather than decoded.
func (f Form) Supported() bool {
	switch f {
	case FormScalar, FormVector, FormSet, FormDictionary, FormTable:
		return true
	default:
		return false
	}
}
