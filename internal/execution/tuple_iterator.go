package execution

import (
	"github.com/tuannm99/novacore/internal/record"
)

// TupleIterator is an OpIterator over a fixed slice of tuples.
type TupleIterator struct {
	*Operator
	td     *record.TupleDesc
	tuples []*record.Tuple
	idx    int
}

var _ OpIterator = (*TupleIterator)(nil)

func NewTupleIterator(td *record.TupleDesc, tuples []*record.Tuple) *TupleIterator {
	it := &TupleIterator{td: td, tuples: tuples}
	it.Operator = NewOperator(it.fetchNext)
	return it
}

func (it *TupleIterator) fetchNext() (*record.Tuple, error) {
	if it.idx >= len(it.tuples) {
		return nil, nil
	}
	t := it.tuples[it.idx]
	it.idx++
	return t, nil
}

func (it *TupleIterator) Open() error {
	it.idx = 0
	it.MarkOpen()
	return nil
}

func (it *TupleIterator) Rewind() error {
	if !it.IsOpen() {
		return ErrNotOpen
	}
	it.idx = 0
	it.ResetLookahead()
	return nil
}

func (it *TupleIterator) Close() error {
	it.MarkClosed()
	return nil
}

func (it *TupleIterator) TupleDesc() *record.TupleDesc { return it.td }
