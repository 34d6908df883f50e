package record

import (
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/tuannm99/novacore/internal/types"
)

// TDItem is one column of a TupleDesc.
type TDItem struct {
	Type types.Type
	Name string
}

func (it TDItem) String() string {
	return fmt.Sprintf("%s(%s)", it.Name, it.Type)
}

// TupleDesc is the immutable, ordered schema of a tuple.
type TupleDesc struct {
	items []TDItem
}

// NewTupleDesc builds a schema. names may be nil (all columns unnamed),
// otherwise it must have one entry per type.
func NewTupleDesc(typs []types.Type, names []string) (*TupleDesc, error) {
	if len(typs) == 0 {
		return nil, ErrEmptyDesc
	}
	if names != nil && len(names) != len(typs) {
		return nil, fmt.Errorf("%w: %d types, %d names", ErrDescMismatch, len(typs), len(names))
	}
	items := make([]TDItem, len(typs))
	for i, t := range typs {
		items[i].Type = t
		if names != nil {
			items[i].Name = names[i]
		}
	}
	return &TupleDesc{items: items}, nil
}

// MustTupleDesc is NewTupleDesc for static schemas; it panics on error.
func MustTupleDesc(typs []types.Type, names []string) *TupleDesc {
	td, err := NewTupleDesc(typs, names)
	if err != nil {
		panic(err)
	}
	return td
}

func (td *TupleDesc) NumFields() int { return len(td.items) }

func (td *TupleDesc) FieldType(i int) (types.Type, error) {
	if i < 0 || i >= len(td.items) {
		return 0, fmt.Errorf("%w: %d of %d", ErrFieldIndexOutOfRange, i, len(td.items))
	}
	return td.items[i].Type, nil
}

func (td *TupleDesc) FieldName(i int) (string, error) {
	if i < 0 || i >= len(td.items) {
		return "", fmt.Errorf("%w: %d of %d", ErrFieldIndexOutOfRange, i, len(td.items))
	}
	return td.items[i].Name, nil
}

// FieldNameToIndex returns the lowest index whose name equals name.
func (td *TupleDesc) FieldNameToIndex(name string) (int, error) {
	for i, it := range td.items {
		if it.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}

// Size is the on-disk byte size of one tuple with this schema.
func (td *TupleDesc) Size() int {
	n := 0
	for _, it := range td.items {
		n += it.Type.Len()
	}
	return n
}

// Items returns a copy of the columns.
func (td *TupleDesc) Items() []TDItem {
	out := make([]TDItem, len(td.items))
	copy(out, td.items)
	return out
}

func (td *TupleDesc) Types() []types.Type {
	out := make([]types.Type, len(td.items))
	for i, it := range td.items {
		out[i] = it.Type
	}
	return out
}

func (td *TupleDesc) Names() []string {
	out := make([]string, len(td.items))
	for i, it := range td.items {
		out[i] = it.Name
	}
	return out
}

// Merge returns a's columns followed by b's. Neither input is modified.
func Merge(a, b *TupleDesc) *TupleDesc {
	items := make([]TDItem, 0, len(a.items)+len(b.items))
	items = append(items, a.items...)
	items = append(items, b.items...)
	return &TupleDesc{items: items}
}

// NullName stands in for a missing alias or field name in WithPrefix.
const NullName = "null"

// WithPrefix renames every column to "<alias>.<name>". An empty alias or
// name becomes NullName instead of failing.
func (td *TupleDesc) WithPrefix(alias string) *TupleDesc {
	if alias == "" {
		alias = NullName
	}
	items := make([]TDItem, len(td.items))
	for i, it := range td.items {
		name := it.Name
		if name == "" {
			name = NullName
		}
		items[i] = TDItem{Type: it.Type, Name: alias + "." + name}
	}
	return &TupleDesc{items: items}
}

// Equals compares content: same length, and the same type and name at
// every position.
func (td *TupleDesc) Equals(other *TupleDesc) bool {
	if td == other {
		return true
	}
	if td == nil || other == nil || len(td.items) != len(other.items) {
		return false
	}
	for i := range td.items {
		if td.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Hash is consistent with Equals.
func (td *TupleDesc) Hash() uint64 {
	h := murmur3.New64()
	for _, it := range td.items {
		_, _ = h.Write([]byte{byte(it.Type)})
		_, _ = h.Write([]byte(it.Name))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func (td *TupleDesc) String() string {
	parts := make([]string, len(td.items))
	for i, it := range td.items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}
