package record

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novacore/internal/types"
)

// Tuple is one row. Its fields line up 1:1 with its TupleDesc.
type Tuple struct {
	td     *TupleDesc
	fields []types.Field
	rid    *RecordID
}

// NewTuple returns a tuple with every field unset.
func NewTuple(td *TupleDesc) *Tuple {
	return &Tuple{td: td, fields: make([]types.Field, td.NumFields())}
}

// NewTupleFrom builds a tuple and checks each field against td.
func NewTupleFrom(td *TupleDesc, fields ...types.Field) (*Tuple, error) {
	if len(fields) != td.NumFields() {
		return nil, fmt.Errorf("%w: %d fields for %d columns", ErrDescMismatch, len(fields), td.NumFields())
	}
	t := NewTuple(td)
	for i, f := range fields {
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustTupleFrom is NewTupleFrom for fields known to match; it panics on error.
func MustTupleFrom(td *TupleDesc, fields ...types.Field) *Tuple {
	t, err := NewTupleFrom(td, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tuple) TupleDesc() *TupleDesc { return t.td }

func (t *Tuple) Field(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFieldIndexOutOfRange, i, len(t.fields))
	}
	return t.fields[i], nil
}

func (t *Tuple) SetField(i int, f types.Field) error {
	typ, err := t.td.FieldType(i)
	if err != nil {
		return err
	}
	if f != nil && f.Type() != typ {
		return fmt.Errorf("%w: column %d wants %s, got %s", ErrFieldType, i, typ, f.Type())
	}
	t.fields[i] = f
	return nil
}

// Fields returns a copy of the field values.
func (t *Tuple) Fields() []types.Field {
	out := make([]types.Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// RecordID is nil until the tuple is read from (or placed on) a page.
func (t *Tuple) RecordID() *RecordID { return t.rid }

func (t *Tuple) SetRecordID(rid *RecordID) { t.rid = rid }

// String renders fields tab separated, newline terminated.
func (t *Tuple) String() string {
	var sb strings.Builder
	for i, f := range t.fields {
		if i > 0 {
			sb.WriteByte('\t')
		}
		if f == nil {
			sb.WriteString("null")
		} else {
			sb.WriteString(f.String())
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
