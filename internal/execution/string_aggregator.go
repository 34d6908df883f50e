package execution

import (
	"fmt"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/types"
)

// StringAggregator counts the values of a STRING column. COUNT is the only
// operator it accepts.
type StringAggregator struct {
	*groupTable
}

var _ Aggregator = (*StringAggregator)(nil)

func NewStringAggregator(gbField int, gbType types.Type, aField int, op AggregateOp) (*StringAggregator, error) {
	if op != Count {
		return nil, fmt.Errorf("%w: %s over %s", ErrUnsupportedAggregate, op, types.StringType)
	}
	return &StringAggregator{
		newGroupTable(gbField, gbType, aField, op, func() accumulator { return &countAcc{} }),
	}, nil
}

func (a *StringAggregator) MergeTupleIntoGroup(t *record.Tuple) error {
	return a.merge(t)
}

func (a *StringAggregator) Iterator() OpIterator { return a.snapshot() }

func (a *StringAggregator) TupleDesc() *record.TupleDesc { return a.td }
