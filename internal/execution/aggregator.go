package execution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/types"
)

var (
	ErrUnsupportedAggregate = errors.New("execution: unsupported aggregate")
	ErrGroupTypeMismatch    = errors.New("execution: group-by field type mismatch")
	ErrUnknownAggregateOp   = errors.New("execution: unknown aggregate op")
)

// NoGrouping as a group-by index merges every tuple into one group.
const NoGrouping = -1

type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
	SumCount
)

var aggregateOpNames = [...]string{
	Min:      "min",
	Max:      "max",
	Sum:      "sum",
	Avg:      "avg",
	Count:    "count",
	SumCount: "sum_count",
}

func (op AggregateOp) String() string {
	if op < 0 || int(op) >= len(aggregateOpNames) {
		return fmt.Sprintf("AggregateOp(%d)", int(op))
	}
	return aggregateOpNames[op]
}

func ParseAggregateOp(s string) (AggregateOp, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for op, name := range aggregateOpNames {
		if name == s {
			return AggregateOp(op), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAggregateOp, s)
}

// GroupKey is either the single implicit group or a field value. It is
// comparable and used directly as a map key.
type GroupKey struct {
	grouped bool
	value   types.Field
}

func NoGroup() GroupKey { return GroupKey{} }

func Grouped(f types.Field) GroupKey { return GroupKey{grouped: true, value: f} }

func (k GroupKey) IsGrouped() bool { return k.grouped }

// Value is nil for the implicit group.
func (k GroupKey) Value() types.Field { return k.value }

func (k GroupKey) String() string {
	if !k.grouped {
		return "<all>"
	}
	return k.value.String()
}

// Aggregator folds tuples into per-group state. All merging must happen
// before Iterator is called; the iterator sees the groups as they were at
// that moment.
type Aggregator interface {
	MergeTupleIntoGroup(t *record.Tuple) error
	Iterator() OpIterator
	TupleDesc() *record.TupleDesc
}

// NewAggregator picks the variant from aType. gbType is ignored when
// gbField is NoGrouping.
func NewAggregator(gbField int, gbType types.Type, aField int, aType types.Type, op AggregateOp) (Aggregator, error) {
	switch aType {
	case types.StringType:
		return NewStringAggregator(gbField, gbType, aField, op)
	case types.IntType:
		return NewIntegerAggregator(gbField, gbType, aField, op)
	default:
		return nil, fmt.Errorf("%w: aggregate over %s", ErrUnsupportedAggregate, aType)
	}
}

// accumulator is the running state of one group.
type accumulator interface {
	add(f types.Field) error
	result() []types.Field
}

// groupTable is the state shared by both variants: groups in first-seen
// order, each with its accumulator.
type groupTable struct {
	gbField int
	gbType  types.Type
	aField  int
	op      AggregateOp
	td      *record.TupleDesc
	newAcc  func() accumulator

	order  []GroupKey
	groups map[GroupKey]accumulator
}

func newGroupTable(gbField int, gbType types.Type, aField int, op AggregateOp, newAcc func() accumulator) *groupTable {
	var (
		typs  []types.Type
		names []string
	)
	if gbField != NoGrouping {
		typs = append(typs, gbType)
		names = append(names, "group")
	}
	typs = append(typs, types.IntType)
	names = append(names, op.String())
	if op == SumCount {
		typs = append(typs, types.IntType)
		names = append(names, "count")
	}
	return &groupTable{
		gbField: gbField,
		gbType:  gbType,
		aField:  aField,
		op:      op,
		td:      record.MustTupleDesc(typs, names),
		newAcc:  newAcc,
		groups:  make(map[GroupKey]accumulator),
	}
}

func (g *groupTable) key(t *record.Tuple) (GroupKey, error) {
	if g.gbField == NoGrouping {
		return NoGroup(), nil
	}
	f, err := t.Field(g.gbField)
	if err != nil {
		return GroupKey{}, err
	}
	if f == nil || f.Type() != g.gbType {
		return GroupKey{}, fmt.Errorf("%w: field %d want %s", ErrGroupTypeMismatch, g.gbField, g.gbType)
	}
	return Grouped(f), nil
}

func (g *groupTable) merge(t *record.Tuple) error {
	k, err := g.key(t)
	if err != nil {
		return err
	}
	f, err := t.Field(g.aField)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: aggregate field %d unset", record.ErrFieldType, g.aField)
	}

	if acc, ok := g.groups[k]; ok {
		return acc.add(f)
	}
	// a group only exists once it has accepted a value
	acc := g.newAcc()
	if err := acc.add(f); err != nil {
		return err
	}
	g.groups[k] = acc
	g.order = append(g.order, k)
	return nil
}

// snapshot materialises one tuple per group in first-seen order.
func (g *groupTable) snapshot() *TupleIterator {
	tuples := make([]*record.Tuple, 0, len(g.order))
	for _, k := range g.order {
		fields := make([]types.Field, 0, g.td.NumFields())
		if k.IsGrouped() {
			fields = append(fields, k.Value())
		}
		fields = append(fields, g.groups[k].result()...)
		tuples = append(tuples, record.MustTupleFrom(g.td, fields...))
	}
	return NewTupleIterator(g.td, tuples)
}

// NumGroups is the number of distinct groups merged so far.
func (g *groupTable) NumGroups() int { return len(g.order) }
