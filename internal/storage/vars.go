package storage

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novacore/internal/alias/bx"
	"github.com/tuannm99/novacore/internal/record"
)

const (
	OneKB = 1 << 10 // 1,024

	// PageSize is the default page size in bytes.
	PageSize = 4 * OneKB
)

const (
	FileMode0644 = 0o644
	FileMode0755 = 0o755
)

var (
	ErrWrongSize     = errors.New("storage: buffer size != page size")
	ErrShortRead     = errors.New("storage: short page read")
	ErrTupleTooLarge = errors.New("storage: tuple does not fit in a page")
	ErrStoreClosed   = errors.New("storage: store is closed")
)

// NumSlots is the number of tuple slots on a page: each tuple costs its
// size in bytes plus one header bit, so floor(8*P / (8*S+1)).
func NumSlots(pageSize int, td *record.TupleDesc) int {
	return (pageSize * 8) / (td.Size()*8 + 1)
}

// HeaderSize is the bitmap length in bytes, one bit per slot.
func HeaderSize(numSlots int) int {
	return bx.CeilDiv(numSlots, 8)
}

// CheckLayout reports whether at least one tuple of td fits in a page.
func CheckLayout(pageSize int, td *record.TupleDesc) error {
	if NumSlots(pageSize, td) < 1 {
		return fmt.Errorf("%w: tuple %d bytes, page %d bytes", ErrTupleTooLarge, td.Size(), pageSize)
	}
	return nil
}

// EmptyPageData returns a zeroed page: no slots in use.
func EmptyPageData(pageSize int) []byte {
	return make([]byte, pageSize)
}
