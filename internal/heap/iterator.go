package heap

import (
	"fmt"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
)

// fileIterator walks pages in order, slots in order. A nil cursor means
// unopened or closed; HasNext then reports false.
type fileIterator struct {
	file   *HeapFile
	tid    transaction.TransactionID
	src    PageSource
	pageNo int
	cur    *storage.PageIterator
}

func (it *fileIterator) Open() error {
	it.pageNo = 0
	it.cur = nil

	n, err := it.file.NumPages()
	if err != nil {
		return err
	}
	if n == 0 {
		it.cur = &storage.PageIterator{}
		return nil
	}
	cur, err := it.fetch(0)
	if err != nil {
		return err
	}
	it.cur = cur
	return nil
}

func (it *fileIterator) fetch(pageNo int) (*storage.PageIterator, error) {
	pid := record.PageID{TableID: it.file.ID(), PageNo: pageNo}
	p, err := it.src.GetPage(it.tid, pid, transaction.ReadOnly)
	if err != nil {
		return nil, err
	}
	return p.Iterator(), nil
}

func (it *fileIterator) HasNext() (bool, error) {
	if it.cur == nil {
		return false, nil
	}
	for !it.cur.HasNext() {
		n, err := it.file.NumPages()
		if err != nil {
			return false, err
		}
		if it.pageNo+1 >= n {
			return false, nil
		}
		cur, err := it.fetch(it.pageNo + 1)
		if err != nil {
			return false, err
		}
		it.pageNo++
		it.cur = cur
	}
	return true, nil
}

func (it *fileIterator) Next() (*record.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("heap: table %d: %w", it.file.ID(), record.ErrNoSuchElement)
	}
	return it.cur.Next()
}

// Rewind re-fetches page 0 rather than keeping it.
func (it *fileIterator) Rewind() error {
	if err := it.Close(); err != nil {
		return err
	}
	return it.Open()
}

func (it *fileIterator) Close() error {
	it.cur = nil
	return nil
}
