// Package tablewriter provides a row-oriented buffered inserter that
// batches rows into a server-side table through a session.
package tablewriter

import (
	"fmt"
	"strings"

	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/hash"
	"github.com/dbydd/go-dolphindb/types"
)

// Runner is the slice of a session the writer drives: function
// invocation for the batched insert, and Close for teardown. Satisfied
// by *session.Session.
type Runner interface {
	RunFunction(name string, args ...types.Constant) (types.Constant, error)
	Close() error
}

// Writer buffers rows as parallel column builders and flushes them into
// the target table whenever the buffered row count reaches the batch
// threshold. The first successful append fixes the column schema; later
// rows must conform.
//
// A Writer is single-consumer, like the session underneath it.
type Writer struct {
	runner Runner
	table  string
	batch  int

	colNames []string
	colTypes []types.DataType
	schemaID uint64
	builders [][]types.Constant
	rows     int
}

// New builds a Writer inserting into table through runner, flushing
// every batchSize rows. Column names fix the width and order of every
// appended row; the element types are fixed by the first row.
func New(runner Runner, table string, columns []string, batchSize int) (*Writer, error) {
	if table == "" {
		return nil, fmt.Errorf("tablewriter: empty table name: %w", errs.ErrInvalidName)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("tablewriter: no columns for table %q", table)
	}

	if batchSize <= 0 {
		return nil, fmt.Errorf("tablewriter: batch size must be positive, got %d", batchSize)
	}

	w := &Writer{
		runner:   runner,
		table:    table,
		batch:    batchSize,
		colNames: columns,
		builders: make([][]types.Constant, len(columns)),
	}

	return w, nil
}

// AppendRow buffers one row, one cell per column in declaration order.
// When the buffered row count reaches the batch threshold the buffer is
// flushed; a flush failure is returned to this call and the buffer is
// discarded.
func (w *Writer) AppendRow(cells ...types.Constant) error {
	if len(cells) != len(w.colNames) {
		return &errs.SchemaMismatchError{
			Column:   w.table,
			Expected: fmt.Sprintf("%d cells", len(w.colNames)),
			Got:      fmt.Sprintf("%d cells", len(cells)),
		}
	}

	if w.colTypes == nil {
		w.fixSchema(cells)
	} else if rowSchemaID(cells) != w.schemaID {
		defer w.clear()
		return w.schemaMismatch(cells)
	}

	for i, cell := range cells {
		w.builders[i] = append(w.builders[i], cell)
	}
	w.rows++

	if w.rows >= w.batch {
		return w.Flush()
	}

	return nil
}

// fixSchema records the element type of each column from the first row.
func (w *Writer) fixSchema(cells []types.Constant) {
	w.colTypes = make([]types.DataType, len(cells))
	for i, cell := range cells {
		w.colTypes[i] = cell.Type()
	}
	w.schemaID = rowSchemaID(cells)
}

// schemaMismatch locates the offending column for the error detail. The
// cheap fingerprint comparison in AppendRow already established that one
// exists.
func (w *Writer) schemaMismatch(cells []types.Constant) error {
	for i, cell := range cells {
		if cell.Type() != w.colTypes[i] {
			return &errs.SchemaMismatchError{
				Column:   w.colNames[i],
				Expected: w.colTypes[i].String(),
				Got:      cell.Type().String(),
			}
		}
	}

	// No single column's type differs from the fixed schema; report the
	// mismatch against the table as a whole.
	return &errs.SchemaMismatchError{
		Column:   w.table,
		Expected: "row matching fixed schema",
		Got:      "non-conforming row",
	}
}

// rowSchemaID fingerprints the type sequence of a row so conforming
// appends compare one integer instead of every column.
func rowSchemaID(cells []types.Constant) uint64 {
	var sb strings.Builder
	for _, cell := range cells {
		sb.WriteString(cell.Type().String())
		sb.WriteByte('|')
	}

	return hash.ID(sb.String())
}

// Rows returns the number of currently buffered rows.
func (w *Writer) Rows() int { return w.rows }

// Flush assembles the buffered rows into a table and inserts them in a
// single function invocation. On any error the buffer is discarded; on
// success it is reset for the next batch. Flushing an empty buffer is a
// no-op.
func (w *Writer) Flush() error {
	if w.rows == 0 {
		return nil
	}

	columns := make([]types.Column, len(w.colNames))
	for i, name := range w.colNames {
		columns[i] = types.Column{
			Name:  name,
			Value: types.NewVector(w.colTypes[i], w.builders[i]...),
		}
	}

	table := types.NewTable(w.table, columns...)

	defer w.clear()
	if _, err := w.runner.RunFunction(fmt.Sprintf("tableInsert{%s}", w.table), table); err != nil {
		return err
	}

	return nil
}

// clear discards the buffered rows, retaining builder capacity for the
// next batch.
func (w *Writer) clear() {
	for i := range w.builders {
		w.builders[i] = w.builders[i][:0]
	}
	w.rows = 0
}

// Close flushes any buffered rows and closes the underlying runner. The
// flush error, if any, wins over the close error.
func (w *Writer) Close() error {
	flushErr := w.Flush()
	closeErr := w.runner.Close()

	if flushErr != nil {
		return flushErr
	}

	return closeErr
}
