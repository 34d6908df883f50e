package record

import "errors"

var (
	ErrEmptyDesc            = errors.New("record: tuple desc must have at least one field")
	ErrDescMismatch         = errors.New("record: types/names length mismatch")
	ErrFieldIndexOutOfRange = errors.New("record: field index out of range")
	ErrFieldNotFound        = errors.New("record: no field with that name")
	ErrFieldType            = errors.New("record: field type does not match tuple desc")

	// ErrNoSuchElement is returned by every cursor and operator when Next is
	// called with nothing pending or outside the open state.
	ErrNoSuchElement = errors.New("no such element")
)
