package types

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tuannm99/novacore/internal/alias/bx"
)

// StringField is a bounded string. On disk it is a u32 length followed by
// StringLen bytes of zero-padded payload.
type StringField struct {
	Value string
}

// NewStringField truncates s to at most StringLen bytes, never inside a
// UTF-8 sequence.
func NewStringField(s string) StringField {
	return StringField{Value: truncate(s)}
}

func truncate(s string) string {
	if len(s) <= StringLen {
		return s
	}
	n := StringLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (f StringField) Type() Type { return StringType }

func (f StringField) Serialize(w io.Writer) error {
	s := truncate(f.Value)
	buf := make([]byte, StringType.Len())
	bx.PutU32(buf, uint32(len(s)))
	copy(buf[4:], s)
	_, err := w.Write(buf)
	return err
}

func (f StringField) Compare(op Op, other Field) (bool, error) {
	o, ok := other.(StringField)
	if !ok {
		return false, fmt.Errorf("%w: STRING %s %v", ErrTypeMismatch, op, other)
	}
	if op == Like {
		return strings.Contains(f.Value, o.Value), nil
	}
	return compareOrdered(op, strings.Compare(f.Value, o.Value))
}

func (f StringField) Equals(other Field) bool {
	o, ok := other.(StringField)
	return ok && o.Value == f.Value
}

func (f StringField) String() string { return f.Value }

func parseStringField(r io.Reader) (Field, error) {
	buf := make([]byte, StringType.Len())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("types: read string field: %w", err)
	}
	n := int(bx.U32(buf))
	if n > StringLen {
		return nil, fmt.Errorf("types: string length %d exceeds %d", n, StringLen)
	}
	return StringField{Value: string(buf[4 : 4+n])}, nil
}
