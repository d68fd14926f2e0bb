package tablewriter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/types"
)

// fakeRunner records RunFunction invocations and replays canned
// results.
type fakeRunner struct {
	calls  []fakeCall
	err    error
	result types.Constant
	closed bool
}

type fakeCall struct {
	name string
	args []types.Constant
}

func (f *fakeRunner) RunFunction(name string, args ...types.Constant) (types.Constant, error) {
	f.calls = append(f.calls, fakeCall{name: name, args: args})
	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

func (f *fakeRunner) Close() error {
	f.closed = true
	return nil
}

func newWriter(t *testing.T, runner Runner, batch int) *Writer {
	t.Helper()

	w, err := New(runner, "trades", []string{"price", "volume"}, batch)
	require.NoError(t, err)

	return w
}

func TestNewValidation(t *testing.T) {
	runner := &fakeRunner{}

	_, err := New(runner, "", []string{"a"}, 10)
	require.ErrorIs(t, err, errs.ErrInvalidName)

	_, err = New(runner, "t", nil, 10)
	require.Error(t, err)

	_, err = New(runner, "t", []string{"a"}, 0)
	require.Error(t, err)
}

func TestAppendRowFlushesAtThreshold(t *testing.T) {
	runner := &fakeRunner{result: types.NewInt(2)}
	w := newWriter(t, runner, 2)

	require.NoError(t, w.AppendRow(types.NewDouble(1.5), types.NewInt(100)))
	require.Equal(t, 1, w.Rows())
	require.Empty(t, runner.calls, "no flush before the threshold")

	require.NoError(t, w.AppendRow(types.NewDouble(2.5), types.NewInt(200)))
	require.Zero(t, w.Rows(), "buffer reset after flush")
	require.Len(t, runner.calls, 1)

	call := runner.calls[0]
	assert.Equal(t, "tableInsert{trades}", call.name)
	require.Len(t, call.args, 1)

	table, ok := call.args[0].(types.Table)
	require.True(t, ok)
	assert.Equal(t, "trades", table.Name)
	assert.Equal(t, []string{"price", "volume"}, table.ColumnNames())
	assert.Equal(t, 2, table.RowCount())

	price, found := table.Column("price")
	require.True(t, found)
	assert.Equal(t, types.Double, price.Type())
}

func TestAppendRowWrongWidth(t *testing.T) {
	w := newWriter(t, &fakeRunner{}, 10)

	err := w.AppendRow(types.NewDouble(1))
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestFirstAppendFixesSchema(t *testing.T) {
	w := newWriter(t, &fakeRunner{}, 10)

	require.NoError(t, w.AppendRow(types.NewDouble(1.5), types.NewInt(1)))

	err := w.AppendRow(types.NewInt(2), types.NewInt(2))
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)

	var detail *errs.SchemaMismatchError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, "price", detail.Column)
	assert.Equal(t, "Double", detail.Expected)
	assert.Equal(t, "Int", detail.Got)

	assert.Zero(t, w.Rows(), "buffer cleared on schema mismatch")
}

func TestSchemaSurvivesClear(t *testing.T) {
	w := newWriter(t, &fakeRunner{}, 10)

	require.NoError(t, w.AppendRow(types.NewDouble(1.5), types.NewInt(1)))
	require.Error(t, w.AppendRow(types.NewInt(2), types.NewInt(2)))

	// The schema stays fixed by the first successful append even after
	// the buffer was discarded.
	require.Error(t, w.AppendRow(types.NewInt(3), types.NewInt(3)))
	require.NoError(t, w.AppendRow(types.NewDouble(3.5), types.NewInt(3)))
	require.Equal(t, 1, w.Rows())
}

func TestFlushErrorDiscardsBuffer(t *testing.T) {
	boom := errors.New("insert failed")
	runner := &fakeRunner{err: boom}
	w := newWriter(t, runner, 2)

	require.NoError(t, w.AppendRow(types.NewDouble(1), types.NewInt(1)))

	err := w.AppendRow(types.NewDouble(2), types.NewInt(2))
	require.ErrorIs(t, err, boom, "flush failure surfaces through the triggering append")
	assert.Zero(t, w.Rows(), "buffer discarded on flush error")

	// A later batch starts clean.
	runner.err = nil
	require.NoError(t, w.AppendRow(types.NewDouble(3), types.NewInt(3)))
	require.NoError(t, w.Flush())

	last := runner.calls[len(runner.calls)-1]
	table := last.args[0].(types.Table)
	assert.Equal(t, 1, table.RowCount())
}

func TestExplicitFlushAndEmptyFlush(t *testing.T) {
	runner := &fakeRunner{}
	w := newWriter(t, runner, 100)

	require.NoError(t, w.Flush(), "empty flush is a no-op")
	require.Empty(t, runner.calls)

	require.NoError(t, w.AppendRow(types.NewDouble(1), types.NewInt(1)))
	require.NoError(t, w.Flush())
	require.Len(t, runner.calls, 1)
}

func TestCloseFlushesThenClosesRunner(t *testing.T) {
	runner := &fakeRunner{}
	w := newWriter(t, runner, 100)

	require.NoError(t, w.AppendRow(types.NewDouble(1), types.NewInt(1)))
	require.NoError(t, w.Close())

	require.Len(t, runner.calls, 1)
	assert.True(t, runner.closed)
}
