package storage

import (
	"errors"
	"fmt"
	"io"
)

// StorageManager maps a page number -> byte offset inside a Store.
// A heap file is a plain sequence of pages with no file header.
type StorageManager struct {
	pageSize int
}

func NewStorageManager(pageSize int) *StorageManager {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &StorageManager{pageSize: pageSize}
}

func (sm *StorageManager) PageSize() int { return sm.pageSize }

// ReadPage reads exactly one page. Unlike a sparse pager it never
// zero-fills: fewer than pageSize bytes is ErrShortRead.
func (sm *StorageManager) ReadPage(s Store, pageNo int) ([]byte, error) {
	buf := make([]byte, sm.pageSize)
	n, err := s.ReadAt(buf, int64(pageNo)*int64(sm.pageSize))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n != sm.pageSize {
		return nil, fmt.Errorf("%w: page %d read %d of %d bytes", ErrShortRead, pageNo, n, sm.pageSize)
	}
	return buf, nil
}

// WritePage writes exactly one page at its slot in the store.
func (sm *StorageManager) WritePage(s Store, pageNo int, data []byte) error {
	if len(data) != sm.pageSize {
		return fmt.Errorf("%w: %d bytes, page %d", ErrWrongSize, len(data), sm.pageSize)
	}
	n, err := s.WriteAt(data, int64(pageNo)*int64(sm.pageSize))
	if err != nil {
		return err
	}
	if n != sm.pageSize {
		return io.ErrShortWrite
	}
	return nil
}

// CountPages is floor(size / pageSize); a trailing partial page is ignored.
func (sm *StorageManager) CountPages(s Store) (int, error) {
	size, err := s.Size()
	if err != nil {
		return 0, err
	}
	return int(size / int64(sm.pageSize)), nil
}
