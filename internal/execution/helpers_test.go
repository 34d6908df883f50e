package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novacore/internal/bufferpool"
	"github.com/tuannm99/novacore/internal/catalog"
	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
	"github.com/tuannm99/novacore/internal/types"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	cat := catalog.New()
	return &Context{Catalog: cat, Pages: bufferpool.NewPool(cat, 8)}
}

// addTable stores rows in a new in-memory table, perPage rows to a page
// (0 = as many as fit), and returns its id.
func addTable(t *testing.T, ctx *Context, name string, td *record.TupleDesc, rows [][]types.Field, perPage int) int {
	t.Helper()
	store := storage.NewMemStore(name, nil)
	enc, err := heap.NewEncoder(store, td, storage.PageSize)
	require.NoError(t, err)
	for i, row := range rows {
		if perPage > 0 && i > 0 && i%perPage == 0 {
			require.NoError(t, enc.Break())
		}
		require.NoError(t, enc.Add(row...))
	}
	require.NoError(t, enc.Flush())

	hf, err := heap.NewHeapFile(store, td, storage.PageSize)
	require.NoError(t, err)
	require.NoError(t, ctx.Catalog.AddTable(hf, name, ""))
	return hf.ID()
}

func ints(vs ...int32) []types.Field {
	out := make([]types.Field, len(vs))
	for i, v := range vs {
		out[i] = types.NewIntField(v)
	}
	return out
}

func intTuples(td *record.TupleDesc, rows ...[]int32) []*record.Tuple {
	out := make([]*record.Tuple, len(rows))
	for i, r := range rows {
		out[i] = record.MustTupleFrom(td, ints(r...)...)
	}
	return out
}

// rows collects an open iterator as plain values.
func rows(t *testing.T, it OpIterator) [][]any {
	t.Helper()
	tuples, err := Drain(it)
	require.NoError(t, err)
	out := make([][]any, 0, len(tuples))
	for _, tup := range tuples {
		row := make([]any, 0)
		for _, f := range tup.Fields() {
			row = append(row, cellValue(f))
		}
		out = append(out, row)
	}
	return out
}

// countingIter records lifecycle calls made on a child.
type countingIter struct {
	OpIterator
	opens, rewinds, closes int
}

func (c *countingIter) Open() error {
	c.opens++
	return c.OpIterator.Open()
}

func (c *countingIter) Rewind() error {
	c.rewinds++
	return c.OpIterator.Rewind()
}

func (c *countingIter) Close() error {
	c.closes++
	return c.OpIterator.Close()
}

type abortingSource struct{}

func (abortingSource) GetPage(transaction.TransactionID, record.PageID, transaction.Permissions) (*storage.HeapPage, error) {
	return nil, transaction.ErrAborted
}
