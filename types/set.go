package types

import "fmt"

// Set is a Vector with a uniqueness invariant over its elements.
type Set struct {
	elems Vector
}

var _ Constant = Set{}
var _ Lengther = Set{}

// NewSet builds a Set from a Vector of elements, assumed already unique.
// Use Validate to check the invariant, or NewSetChecked to enforce it.
func NewSet(elems Vector) Set {
	return Set{elems: elems}
}

// NewSetChecked builds a Set, returning an error if elems contains
// duplicates.
func NewSetChecked(elems Vector) (Set, error) {
	s := Set{elems: elems}
	if err := s.Validate(); err != nil {
		return Set{}, err
	}

	return s, nil
}

// Form always returns FormSet.
func (s Set) Form() Form { return FormSet }

// Type returns the element type tag.
func (s Set) Type() DataType { return s.elems.Type() }

// Len returns the number of elements.
func (s Set) Len() int { return s.elems.Len() }

// Elems returns the underlying Vector of elements.
func (s Set) Elems() Vector { return s.elems }

// Contains reports whether elem is present, scanning linearly.
func (s Set) Contains(elem Constant) bool {
	target := fmt.Sprintf("%v", elem)
	for i := 0; i < s.elems.Len(); i++ {
		if fmt.Sprintf("%v", s.elems.At(i)) == target {
			return true
		}
	}

	return false
}

// Validate checks that every element is unique.
func (s Set) Validate() error {
	seen := make(map[string]struct{}, s.elems.Len())
	for i := 0; i < s.elems.Len(); i++ {
		k := fmt.Sprintf("%v", s.elems.At(i))
		if _, dup := seen[k]; dup {
			return fmt.Errorf("types: set: duplicate element %v", s.elems.At(i))
		}
		seen[k] = struct{}{}
	}

	return nil
}

func (s Set) String() string {
	return fmt.Sprintf("Set<%s>[%d]", s.elems.Type(), s.elems.Len())
}
