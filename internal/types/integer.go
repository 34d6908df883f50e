package types

import (
	"cmp"
	"fmt"
	"io"
	"strconv"

	"github.com/tuannm99/novacore/internal/alias/bx"
)

// IntField is a 32-bit signed integer, stored big-endian.
type IntField struct {
	Value int32
}

func NewIntField(v int32) IntField { return IntField{Value: v} }

func (f IntField) Type() Type { return IntType }

func (f IntField) Serialize(w io.Writer) error {
	var b [4]byte
	bx.PutI32(b[:], f.Value)
	_, err := w.Write(b[:])
	return err
}

func (f IntField) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(IntField)
	if !ok {
		return false, fmt.Errorf("%w: INT %s %v", ErrTypeMismatch, op, other)
	}
	return compareOrdered(op, cmp.Compare(f.Value, o.Value))
}

func (f IntField) Equals(other Field) bool {
	o, ok := other.(IntField)
	return ok && o.Value == f.Value
}

func (f IntField) String() string { return strconv.FormatInt(int64(f.Value), 10) }

func parseIntField(r io.Reader) (Field, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("types: read int field: %w", err)
	}
	return IntField{Value: bx.I32(b[:])}, nil
}
