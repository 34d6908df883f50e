package execution

import (
	"fmt"

	pair "github.com/notEpsilon/go-pair"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/types"
)

// IntegerAggregator aggregates an INT column with any AggregateOp.
type IntegerAggregator struct {
	*groupTable
}

var _ Aggregator = (*IntegerAggregator)(nil)

func NewIntegerAggregator(gbField int, gbType types.Type, aField int, op AggregateOp) (*IntegerAggregator, error) {
	var newAcc func() accumulator
	switch op {
	case Count:
		newAcc = func() accumulator { return &countAcc{} }
	case Sum:
		newAcc = func() accumulator { return &sumAcc{} }
	case Avg:
		newAcc = func() accumulator { return &avgAcc{} }
	case Min:
		newAcc = func() accumulator { return &extremumAcc{less: true} }
	case Max:
		newAcc = func() accumulator { return &extremumAcc{} }
	case SumCount:
		newAcc = func() accumulator { return &sumCountAcc{} }
	default:
		return nil, fmt.Errorf("%w: %s over %s", ErrUnsupportedAggregate, op, types.IntType)
	}
	return &IntegerAggregator{newGroupTable(gbField, gbType, aField, op, newAcc)}, nil
}

func (a *IntegerAggregator) MergeTupleIntoGroup(t *record.Tuple) error {
	return a.merge(t)
}

func (a *IntegerAggregator) Iterator() OpIterator { return a.snapshot() }

func (a *IntegerAggregator) TupleDesc() *record.TupleDesc { return a.td }

func intValue(f types.Field) (int32, error) {
	v, ok := f.(types.IntField)
	if !ok {
		return 0, fmt.Errorf("%w: aggregate wants %s, got %s", types.ErrTypeMismatch, types.IntType, f.Type())
	}
	return v.Value, nil
}

type countAcc struct{ n int64 }

func (a *countAcc) add(types.Field) error {
	a.n++
	return nil
}

func (a *countAcc) result() []types.Field {
	return []types.Field{types.NewIntField(int32(a.n))}
}

// sumAcc keeps 64 bits; the emitted INT wraps like the stored column would.
type sumAcc struct{ sum int64 }

func (a *sumAcc) add(f types.Field) error {
	v, err := intValue(f)
	if err != nil {
		return err
	}
	a.sum += int64(v)
	return nil
}

func (a *sumAcc) result() []types.Field {
	return []types.Field{types.NewIntField(int32(a.sum))}
}

// avgAcc divides only when read. Integer division truncates toward zero.
type avgAcc struct{ sum, count int64 }

func (a *avgAcc) add(f types.Field) error {
	v, err := intValue(f)
	if err != nil {
		return err
	}
	a.sum += int64(v)
	a.count++
	return nil
}

func (a *avgAcc) result() []types.Field {
	var avg int64
	if a.count > 0 {
		avg = a.sum / a.count
	}
	return []types.Field{types.NewIntField(int32(avg))}
}

// extremumAcc is MIN when less is set, MAX otherwise.
type extremumAcc struct {
	less bool
	set  bool
	v    int32
}

func (a *extremumAcc) add(f types.Field) error {
	v, err := intValue(f)
	if err != nil {
		return err
	}
	if !a.set || (a.less && v < a.v) || (!a.less && v > a.v) {
		a.v = v
		a.set = true
	}
	return nil
}

func (a *extremumAcc) result() []types.Field {
	return []types.Field{types.NewIntField(a.v)}
}

// sumCountAcc holds (sum, count) and emits both.
type sumCountAcc struct {
	p pair.Pair[int64, int64]
}

func (a *sumCountAcc) add(f types.Field) error {
	v, err := intValue(f)
	if err != nil {
		return err
	}
	a.p = pair.Pair[int64, int64]{First: a.p.First + int64(v), Second: a.p.Second + 1}
	return nil
}

func (a *sumCountAcc) result() []types.Field {
	return []types.Field{
		types.NewIntField(int32(a.p.First)),
		types.NewIntField(int32(a.p.Second)),
	}
}
