package codec

import (
	"bufio"
	"fmt"

	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

// encodeTableBody appends the body of a table: rows:u32, cols:u32, the
// table name, the column names, then each column serialized as a
// complete vector with its own form/type header.
func encodeTableBody(buf *pool.ByteBuffer, t types.Table, engine endian.EndianEngine) error {
	if err := t.Validate(); err != nil {
		return &errs.InvalidDataError{
			Expected: "columns of equal length",
			Actual:   err.Error(),
		}
	}

	appendInt(buf, int32(t.RowCount()), engine)
	appendInt(buf, int32(len(t.Columns)), engine)
	appendCString(buf, t.Name)

	for _, col := range t.Columns {
		appendCString(buf, col.Name)
	}

	for _, col := range t.Columns {
		if err := Encode(buf, col.Value, engine); err != nil {
			return err
		}
	}

	return nil
}

// decodeTableBody reads the body of a table.
func decodeTableBody(r *bufio.Reader, engine endian.EndianEngine) (types.Constant, error) {
	rows, err := readU32(r, engine)
	if err != nil {
		return nil, ioErr("read table rows", err)
	}

	cols, err := readU32(r, engine)
	if err != nil {
		return nil, ioErr("read table cols", err)
	}

	name, err := readCString(r)
	if err != nil {
		return nil, ioErr("read table name", err)
	}

	names := make([]string, cols)
	for i := range names {
		names[i], err = readCString(r)
		if err != nil {
			return nil, ioErr("read column name", err)
		}
	}

	columns := make([]types.Column, cols)
	for i := range columns {
		value, err := Decode(r, engine)
		if err != nil {
			return nil, err
		}

		l, ok := value.(types.Lengther)
		if !ok {
			return nil, &errs.InvalidDataError{
				Expected: "vector column body",
				Actual:   fmt.Sprintf("form %s in column %q", value.Form(), names[i]),
			}
		}

		if l.Len() != int(rows) {
			return nil, &errs.InvalidDataError{
				Expected: fmt.Sprintf("column of %d rows", rows),
				Actual:   fmt.Sprintf("%d rows in column %q", l.Len(), names[i]),
			}
		}

		columns[i] = types.Column{Name: names[i], Value: value}
	}

	return types.NewTable(name, columns...), nil
}
