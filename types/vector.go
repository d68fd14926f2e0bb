package types

import "fmt"

// Vector is a homogeneous ordered sequence of values of a single Type,
// except when Type is Any, in which case each element is itself a
// complete (form, type)-tagged Constant and elements may be
// heterogeneous.
type Vector struct {
	typ   DataType
	elems []Constant
}

var _ Constant = Vector{}
var _ Lengther = Vector{}

// NewVector builds a Vector of the given element type from elems. For a
// non-Any typ, every element must itself report Type() == typ; callers
// assembling a Vector<Any> may mix arbitrary Constants.
func NewVector(typ DataType, elems ...Constant) Vector {
	return Vector{typ: typ, elems: elems}
}

// Form always returns FormVector.
func (v Vector) Form() Form { return FormVector }

// Type returns the vector's element type tag (Any for a heterogeneous
// vector).
func (v Vector) Type() DataType { return v.typ }

// Len returns the number of elements.
func (v Vector) Len() int { return len(v.elems) }

// At returns the element at index i.
func (v Vector) At(i int) Constant { return v.elems[i] }

// Elems returns the underlying element slice. Callers must not mutate
// the returned slice's contents if the Vector is shared.
func (v Vector) Elems() []Constant { return v.elems }

func (v Vector) String() string {
	return fmt.Sprintf("Vector<%s>[%d]", v.typ, len(v.elems))
}
