package types

import "fmt"

// Column is one named column of a Table. Value is typically a Vector or
// one of the ArrayVector variants, but any Lengther Constant is
// accepted.
type Column struct {
	Name  string
	Value Constant
}

// Table is an ordered list of named columns sharing a common row count.
type Table struct {
	Name    string
	Columns []Column
}

var _ Constant = Table{}

// NewTable builds a Table from name and columns. It does not validate
// the row-count invariant; call Validate for that.
func NewTable(name string, columns ...Column) Table {
	return Table{Name: name, Columns: columns}
}

// Form always returns FormTable.
func (t Table) Form() Form { return FormTable }

// Type always returns Void; a Table's element types vary per column and
// are not carried by a single type tag.
func (t Table) Type() DataType { return Void }

// RowCount returns the common column length, or 0 for a table with no
// columns.
func (t Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}

	l, ok := t.Columns[0].Value.(Lengther)
	if !ok {
		return 0
	}

	return l.Len()
}

// Validate checks that every column reports the same length via
// Lengther.
func (t Table) Validate() error {
	want := -1
	for _, col := range t.Columns {
		l, ok := col.Value.(Lengther)
		if !ok {
			return fmt.Errorf("types: table %q column %q: value does not support Len()", t.Name, col.Name)
		}

		if want == -1 {
			want = l.Len()
			continue
		}

		if l.Len() != want {
			return fmt.Errorf("types: table %q column %q: length %d, want %d", t.Name, col.Name, l.Len(), want)
		}
	}

	return nil
}

// ColumnNames returns the ordered list of column names.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// Column returns the named column's value and whether it was found.
func (t Table) Column(name string) (Constant, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}

	return nil, false
}

func (t Table) String() string {
	return fmt.Sprintf("Table(%s)[%d cols, %d rows]", t.Name, len(t.Columns), t.RowCount())
}
