package types

import "fmt"

// Dictionary is two parallel vectors (Keys, Values) of the same length
// with unique keys.
type Dictionary struct {
	Keys   Vector
	Values Vector
}

var _ Constant = Dictionary{}
var _ Lengther = Dictionary{}

// NewDictionary builds a Dictionary from parallel key and value vectors.
// It does not validate length or key-uniqueness; call Validate for that.
func NewDictionary(keys, values Vector) Dictionary {
	return Dictionary{Keys: keys, Values: values}
}

// Form always returns FormDictionary.
func (d Dictionary) Form() Form { return FormDictionary }

// Type returns the key vector's element type tag.
func (d Dictionary) Type() DataType { return d.Keys.Type() }

// Len returns the number of key/value pairs.
func (d Dictionary) Len() int { return d.Keys.Len() }

// Validate checks that the key and value vectors have equal length and
// that keys are unique.
func (d Dictionary) Validate() error {
	if d.Keys.Len() != d.Values.Len() {
		return fmt.Errorf("types: dictionary: %d keys, %d values", d.Keys.Len(), d.Values.Len())
	}

	seen := make(map[string]struct{}, d.Keys.Len())
	for i := 0; i < d.Keys.Len(); i++ {
		k := fmt.Sprintf("%v", d.Keys.At(i))
		if _, dup := seen[k]; dup {
			return fmt.Errorf("types: dictionary: duplicate key %v", d.Keys.At(i))
		}
		seen[k] = struct{}{}
	}

	return nil
}

// Get returns the value associated with key, scanning keys linearly.
// Returns false if key is not present.
func (d Dictionary) Get(key Constant) (Constant, bool) {
	for i := 0; i < d.Keys.Len(); i++ {
		if fmt.Sprintf("%v", d.Keys.At(i)) == fmt.Sprintf("%v", key) {
			return d.Values.At(i), true
		}
	}

	return nil, false
}

func (d Dictionary) String() string {
	return fmt.Sprintf("Dictionary<%s>[%d]", d.Keys.Type(), d.Keys.Len())
}
