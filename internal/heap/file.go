package heap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spaolacci/murmur3"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
)

var (
	// ErrInvalidPage covers both an out-of-range page number and a page
	// that could not be read in full.
	ErrInvalidPage = errors.New("heap: invalid page")

	// ErrWriteUnsupported is returned by the write-path extension points.
	ErrWriteUnsupported = errors.New("heap: write path not implemented")
)

// PageSource hands out decoded pages under a transaction. The buffer pool
// is the production implementation.
type PageSource interface {
	GetPage(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) (*storage.HeapPage, error)
}

// DbFileIterator is the cursor over every tuple of a file.
type DbFileIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*record.Tuple, error)
	Rewind() error
	Close() error
}

// HeapFile is an unordered table: a Store holding a sequence of heap pages
// that all share one TupleDesc.
type HeapFile struct {
	store storage.Store
	td    *record.TupleDesc
	sm    *storage.StorageManager
	id    int
}

func NewHeapFile(store storage.Store, td *record.TupleDesc, pageSize int) (*HeapFile, error) {
	sm := storage.NewStorageManager(pageSize)
	if err := storage.CheckLayout(sm.PageSize(), td); err != nil {
		return nil, err
	}
	return &HeapFile{
		store: store,
		td:    td,
		sm:    sm,
		id:    FileID(store.Path()),
	}, nil
}

// FileID derives a table id from a canonical path. Two different paths may
// collide; nothing here detects that.
func FileID(path string) int {
	return int(murmur3.Sum32([]byte(path)))
}

func (f *HeapFile) ID() int { return f.id }

func (f *HeapFile) TupleDesc() *record.TupleDesc { return f.td }

func (f *HeapFile) Store() storage.Store { return f.store }

func (f *HeapFile) PageSize() int { return f.sm.PageSize() }

// NumPages ignores a trailing partial page.
func (f *HeapFile) NumPages() (int, error) {
	return f.sm.CountPages(f.store)
}

// ReadPage reads and decodes bytes [n*pageSize, (n+1)*pageSize).
func (f *HeapFile) ReadPage(pid record.PageID) (*storage.HeapPage, error) {
	n, err := f.NumPages()
	if err != nil {
		return nil, err
	}
	if pid.PageNo < 0 || pid.PageNo >= n {
		return nil, fmt.Errorf("%w: table %d page %d (file has %d)", ErrInvalidPage, pid.TableID, pid.PageNo, n)
	}

	data, err := f.sm.ReadPage(f.store, pid.PageNo)
	if err != nil {
		return nil, fmt.Errorf("%w: table %d page %d: %w", ErrInvalidPage, pid.TableID, pid.PageNo, err)
	}
	slog.Debug("heap: read page", "table", pid.TableID, "page", pid.PageNo)
	return storage.NewHeapPage(pid, data, f.td)
}

// WritePage is reserved for a write path that coordinates with the page
// cache and the log. It has no effect.
func (f *HeapFile) WritePage(*storage.HeapPage) error {
	return ErrWriteUnsupported
}

// InsertTuple has no effect; see WritePage.
func (f *HeapFile) InsertTuple(transaction.TransactionID, *record.Tuple) ([]*storage.HeapPage, error) {
	return nil, ErrWriteUnsupported
}

// DeleteTuple has no effect; see WritePage.
func (f *HeapFile) DeleteTuple(transaction.TransactionID, *record.Tuple) ([]*storage.HeapPage, error) {
	return nil, ErrWriteUnsupported
}

// Iterator returns a lazy cursor: pages are requested from src one at a
// time, read-only, as the scan reaches them.
func (f *HeapFile) Iterator(tid transaction.TransactionID, src PageSource) DbFileIterator {
	return &fileIterator{file: f, tid: tid, src: src}
}

func (f *HeapFile) Close() error {
	return f.store.Close()
}
