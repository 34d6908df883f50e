package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tuannm99/novacore/internal/alias/bx"
	"github.com/tuannm99/novacore/internal/record"
)

var ErrNoSpace = errors.New("storage: page has no empty slot")

// +------------------+ 0
// | header bitmap    |  ceil(numSlots/8) bytes, bit i = slot i in use (LSB first)
// +------------------+
// | slot 0           |  td.Size() bytes each
// | slot 1           |
// | ...              |
// +------------------+
// | zero padding     |
// +------------------+ pageSize
//
// HeapPage is the decoded form of one page. Empty slots carry no tuple.
type HeapPage struct {
	pid      record.PageID
	td       *record.TupleDesc
	pageSize int
	header   []byte
	tuples   []*record.Tuple // len == numSlots, nil for empty slot
}

// NewHeapPage decodes data (exactly one page) into tuples of td.
func NewHeapPage(pid record.PageID, data []byte, td *record.TupleDesc) (*HeapPage, error) {
	if err := CheckLayout(len(data), td); err != nil {
		return nil, err
	}
	p := newHeapPage(pid, td, len(data))
	copy(p.header, data[:len(p.header)])

	size := td.Size()
	for slot := range p.tuples {
		if !bx.Bit(p.header, slot) {
			continue
		}
		off := len(p.header) + slot*size
		tup, err := p.readTuple(data[off:off+size], slot)
		if err != nil {
			return nil, fmt.Errorf("storage: page %s slot %d: %w", pid, slot, err)
		}
		p.tuples[slot] = tup
	}
	return p, nil
}

// NewEmptyHeapPage returns a page with no slot in use.
func NewEmptyHeapPage(pid record.PageID, td *record.TupleDesc, pageSize int) (*HeapPage, error) {
	if err := CheckLayout(pageSize, td); err != nil {
		return nil, err
	}
	return newHeapPage(pid, td, pageSize), nil
}

func newHeapPage(pid record.PageID, td *record.TupleDesc, pageSize int) *HeapPage {
	n := NumSlots(pageSize, td)
	return &HeapPage{
		pid:      pid,
		td:       td,
		pageSize: pageSize,
		header:   make([]byte, HeaderSize(n)),
		tuples:   make([]*record.Tuple, n),
	}
}

func (p *HeapPage) readTuple(b []byte, slot int) (*record.Tuple, error) {
	r := bytes.NewReader(b)
	tup := record.NewTuple(p.td)
	for i, typ := range p.td.Types() {
		f, err := typ.Parse(r)
		if err != nil {
			return nil, err
		}
		if err := tup.SetField(i, f); err != nil {
			return nil, err
		}
	}
	tup.SetRecordID(&record.RecordID{PageID: p.pid, Slot: slot})
	return tup, nil
}

func (p *HeapPage) ID() record.PageID { return p.pid }

func (p *HeapPage) TupleDesc() *record.TupleDesc { return p.td }

func (p *HeapPage) NumSlots() int { return len(p.tuples) }

func (p *HeapPage) IsSlotUsed(slot int) bool {
	if slot < 0 || slot >= len(p.tuples) {
		return false
	}
	return bx.Bit(p.header, slot)
}

func (p *HeapPage) NumEmptySlots() int {
	n := 0
	for slot := range p.tuples {
		if !bx.Bit(p.header, slot) {
			n++
		}
	}
	return n
}

// InsertTuple places t into the first empty slot and tags it with its
// new location. The tuple desc must match the page's.
func (p *HeapPage) InsertTuple(t *record.Tuple) (int, error) {
	if !t.TupleDesc().Equals(p.td) {
		return -1, fmt.Errorf("storage: insert into page %s: %w", p.pid, record.ErrFieldType)
	}
	for slot := range p.tuples {
		if bx.Bit(p.header, slot) {
			continue
		}
		bx.SetBit(p.header, slot, true)
		p.tuples[slot] = t
		t.SetRecordID(&record.RecordID{PageID: p.pid, Slot: slot})
		return slot, nil
	}
	return -1, ErrNoSpace
}

// Tuples returns the occupied slots' tuples in slot order.
func (p *HeapPage) Tuples() []*record.Tuple {
	out := make([]*record.Tuple, 0, len(p.tuples))
	for slot, t := range p.tuples {
		if bx.Bit(p.header, slot) && t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Data encodes the page back into exactly pageSize bytes.
func (p *HeapPage) Data() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(p.pageSize)
	buf.Write(p.header)

	size := p.td.Size()
	for slot, t := range p.tuples {
		if !bx.Bit(p.header, slot) || t == nil {
			buf.Write(make([]byte, size))
			continue
		}
		for i, f := range t.Fields() {
			if f == nil {
				return nil, fmt.Errorf("storage: page %s slot %d: field %d unset", p.pid, slot, i)
			}
			if err := f.Serialize(&buf); err != nil {
				return nil, err
			}
		}
	}
	buf.Write(make([]byte, p.pageSize-buf.Len()))
	return buf.Bytes(), nil
}

// Iterator walks the occupied slots in slot order.
func (p *HeapPage) Iterator() *PageIterator {
	return &PageIterator{tuples: p.Tuples()}
}

// PageIterator is the tuple cursor of one page.
type PageIterator struct {
	tuples []*record.Tuple
	idx    int
}

func (it *PageIterator) HasNext() bool {
	return it.idx < len(it.tuples)
}

func (it *PageIterator) Next() (*record.Tuple, error) {
	if !it.HasNext() {
		return nil, fmt.Errorf("storage: page iterator exhausted: %w", record.ErrNoSuchElement)
	}
	t := it.tuples[it.idx]
	it.idx++
	return t, nil
}
