package types

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Type is the kind of a column. Every type has a fixed serialized width,
// which is what makes heap page slots fixed-size.
type Type uint8

const (
	IntType Type = iota
	StringType
)

// StringLen is the maximum number of bytes a STRING field stores.
const StringLen = 128

var (
	ErrTypeMismatch = errors.New("types: fields of different types are not comparable")
	ErrUnknownType  = errors.New("types: unknown field type")
	ErrBadOp        = errors.New("types: unsupported comparison")
)

// Len returns the number of bytes a field of this type occupies on disk.
func (t Type) Len() int {
	switch t {
	case IntType:
		return 4
	case StringType:
		// u32 length prefix + fixed payload
		return StringLen + 4
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// ParseType accepts the spelling used in catalog schema files.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer", "int_type":
		return IntType, nil
	case "string", "text", "string_type":
		return StringType, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Parse reads one field of type t from r.
func (t Type) Parse(r io.Reader) (Field, error) {
	switch t {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	default:
		return nil, ErrUnknownType
	}
}

// Field is one typed value of a tuple. Implementations are comparable
// value types, so a Field can be used directly as a map key.
type Field interface {
	Type() Type
	// Serialize writes exactly Type().Len() bytes.
	Serialize(w io.Writer) error
	// Compare evaluates "f op other". Different types never compare.
	Compare(op Op, other Field) (bool, error)
	Equals(other Field) bool
	String() string
}
