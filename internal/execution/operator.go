package execution

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novacore/internal/catalog"
	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
)

var (
	ErrNoSuchElement = record.ErrNoSuchElement

	// ErrNotOpen is a no-such-element error raised by calls made outside
	// the Open state.
	ErrNotOpen = fmt.Errorf("execution: operator not open: %w", record.ErrNoSuchElement)

	ErrBadChildren = errors.New("execution: wrong number of children")
)

// OpIterator is the pull-based lifecycle every execution node follows:
// Open, then any number of HasNext/Next/Rewind, then Close.
type OpIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*record.Tuple, error)
	Rewind() error
	Close() error
	TupleDesc() *record.TupleDesc
}

// Context carries the collaborators an operator tree needs. It replaces
// process-wide lookups; build one per database.
type Context struct {
	Catalog *catalog.Catalog
	Pages   heap.PageSource
}

// FetchFunc yields the next output tuple, or (nil, nil) when there are
// no more.
type FetchFunc func() (*record.Tuple, error)

// Operator supplies HasNext/Next over a FetchFunc with a single tuple of
// lookahead. Concrete operators embed it and manage their own children.
type Operator struct {
	fetch     FetchFunc
	open      bool
	lookahead *record.Tuple
}

func NewOperator(fetch FetchFunc) *Operator {
	return &Operator{fetch: fetch}
}

func (o *Operator) IsOpen() bool { return o.open }

// MarkOpen enters the Open state with an empty lookahead.
func (o *Operator) MarkOpen() {
	o.open = true
	o.lookahead = nil
}

// MarkClosed leaves the Open state and drops the lookahead.
func (o *Operator) MarkClosed() {
	o.open = false
	o.lookahead = nil
}

// ResetLookahead discards a buffered tuple; call it on rewind.
func (o *Operator) ResetLookahead() {
	o.lookahead = nil
}

func (o *Operator) HasNext() (bool, error) {
	if !o.open {
		return false, ErrNotOpen
	}
	if o.lookahead == nil {
		t, err := o.fetch()
		if err != nil {
			return false, err
		}
		o.lookahead = t
	}
	return o.lookahead != nil, nil
}

func (o *Operator) Next() (*record.Tuple, error) {
	ok, err := o.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("execution: exhausted: %w", ErrNoSuchElement)
	}
	t := o.lookahead
	o.lookahead = nil
	return t, nil
}

// fetchChild is the HasNext/Next ceremony against a child, returning
// (nil, nil) once the child is exhausted.
func fetchChild(child OpIterator) (*record.Tuple, error) {
	ok, err := child.HasNext()
	if err != nil || !ok {
		return nil, err
	}
	return child.Next()
}

// Drain reads every remaining tuple of an open iterator.
func Drain(it OpIterator) ([]*record.Tuple, error) {
	var out []*record.Tuple
	for {
		t, err := fetchChild(it)
		if err != nil {
			return out, err
		}
		if t == nil {
			return out, nil
		}
		out = append(out, t)
	}
}
