package execution

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/types"
)

// Aggregate computes one AggregateOp over a child, optionally grouped by
// another child column. It is fully blocking: Open drains the child.
//
// Rewind replays the groups computed by Open without reading the child
// again. Close followed by Open recomputes them.
type Aggregate struct {
	*Operator
	child  OpIterator
	aField int
	gField int
	op     AggregateOp

	td      *record.TupleDesc
	gType   types.Type
	aType   types.Type
	results OpIterator
}

var _ OpIterator = (*Aggregate)(nil)

// NewAggregate fails when an index is out of range for the child or the
// op is not supported for the aggregated column's type.
func NewAggregate(child OpIterator, aField, gField int, op AggregateOp) (*Aggregate, error) {
	a := &Aggregate{aField: aField, gField: gField, op: op}
	a.Operator = NewOperator(a.fetchNext)
	if err := a.SetChildren([]OpIterator{child}); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Aggregate) Children() []OpIterator { return []OpIterator{a.child} }

// SetChildren replaces the child and recomputes the output TupleDesc.
func (a *Aggregate) SetChildren(children []OpIterator) error {
	if len(children) != 1 || children[0] == nil {
		return fmt.Errorf("%w: aggregate takes 1, got %d", ErrBadChildren, len(children))
	}
	child := children[0]
	ctd := child.TupleDesc()

	aType, err := ctd.FieldType(a.aField)
	if err != nil {
		return err
	}
	aName, err := ctd.FieldName(a.aField)
	if err != nil {
		return err
	}

	var (
		typs  []types.Type
		names []string
		gType types.Type
	)
	if a.gField != NoGrouping {
		gType, err = ctd.FieldType(a.gField)
		if err != nil {
			return err
		}
		gName, err := ctd.FieldName(a.gField)
		if err != nil {
			return err
		}
		typs = append(typs, gType)
		names = append(names, gName)
	}
	typs = append(typs, types.IntType)
	names = append(names, aName)
	if a.op == SumCount {
		typs = append(typs, types.IntType)
		names = append(names, "COUNT")
	}

	// surface unsupported combinations now rather than at Open
	if _, err := NewAggregator(a.gField, gType, a.aField, aType, a.op); err != nil {
		return err
	}

	a.child = child
	a.aType = aType
	a.gType = gType
	a.td = record.MustTupleDesc(typs, names)
	return nil
}

func (a *Aggregate) GroupField() int { return a.gField }

// GroupFieldName is empty without grouping.
func (a *Aggregate) GroupFieldName() string {
	if a.gField == NoGrouping {
		return ""
	}
	n, _ := a.td.FieldName(0)
	return n
}

func (a *Aggregate) AggregateField() int { return a.aField }

func (a *Aggregate) AggregateFieldName() string {
	idx := 0
	if a.gField != NoGrouping {
		idx = 1
	}
	n, _ := a.td.FieldName(idx)
	return n
}

func (a *Aggregate) AggregateOp() AggregateOp { return a.op }

func (a *Aggregate) TupleDesc() *record.TupleDesc { return a.td }

// Open drains the child into a fresh aggregator before any output.
func (a *Aggregate) Open() error {
	agg, err := NewAggregator(a.gField, a.gType, a.aField, a.aType, a.op)
	if err != nil {
		return err
	}
	if a.results != nil {
		a.MarkClosed()
		if err := a.results.Close(); err != nil {
			return err
		}
		a.results = nil
	}
	if err := a.child.Open(); err != nil {
		return err
	}
	merged, err := a.drain(agg)
	if err != nil {
		return errors.Join(err, a.child.Close())
	}

	results := agg.Iterator()
	if err := results.Open(); err != nil {
		return errors.Join(err, a.child.Close())
	}
	a.results = results
	a.MarkOpen()
	slog.Debug("execution: aggregate open", "op", a.op.String(), "tuples", merged)
	return nil
}

func (a *Aggregate) drain(agg Aggregator) (int, error) {
	merged := 0
	for {
		t, err := fetchChild(a.child)
		if err != nil {
			return merged, err
		}
		if t == nil {
			return merged, nil
		}
		if err := agg.MergeTupleIntoGroup(t); err != nil {
			return merged, err
		}
		merged++
	}
}

// fetchNext re-labels aggregator output with this operator's TupleDesc.
func (a *Aggregate) fetchNext() (*record.Tuple, error) {
	t, err := fetchChild(a.results)
	if err != nil || t == nil {
		return nil, err
	}
	return record.NewTupleFrom(a.td, t.Fields()...)
}

func (a *Aggregate) Rewind() error {
	if !a.IsOpen() {
		return ErrNotOpen
	}
	if err := a.child.Rewind(); err != nil {
		return err
	}
	if err := a.results.Rewind(); err != nil {
		return err
	}
	a.ResetLookahead()
	return nil
}

func (a *Aggregate) Close() error {
	a.MarkClosed()
	var errs []error
	if err := a.child.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.results != nil {
		if err := a.results.Close(); err != nil {
			errs = append(errs, err)
		}
		a.results = nil
	}
	return errors.Join(errs...)
}
