package heap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/types"
)

// Encoder packs tuples into heap pages and appends them after the pages
// already in the store. A page is written once it is full, on Break, or
// on Flush.
type Encoder struct {
	store  storage.Store
	td     *record.TupleDesc
	sm     *storage.StorageManager
	pageNo int
	page   *storage.HeapPage
	count  int
}

func NewEncoder(store storage.Store, td *record.TupleDesc, pageSize int) (*Encoder, error) {
	sm := storage.NewStorageManager(pageSize)
	if err := storage.CheckLayout(sm.PageSize(), td); err != nil {
		return nil, err
	}
	n, err := sm.CountPages(store)
	if err != nil {
		return nil, err
	}
	return &Encoder{store: store, td: td, sm: sm, pageNo: n}, nil
}

// Add builds a tuple from fields and appends it.
func (e *Encoder) Add(fields ...types.Field) error {
	t, err := record.NewTupleFrom(e.td, fields...)
	if err != nil {
		return err
	}
	return e.AddTuple(t)
}

func (e *Encoder) AddTuple(t *record.Tuple) error {
	if e.page == nil {
		if err := e.startPage(); err != nil {
			return err
		}
	}
	_, err := e.page.InsertTuple(t)
	if errors.Is(err, storage.ErrNoSpace) {
		if err := e.Break(); err != nil {
			return err
		}
		if err := e.startPage(); err != nil {
			return err
		}
		_, err = e.page.InsertTuple(t)
	}
	if err != nil {
		return err
	}
	e.count++
	return nil
}

// Break writes the current page, even an empty one, and moves on. Two
// Breaks in a row therefore leave an empty page in the file.
func (e *Encoder) Break() error {
	if e.page == nil {
		if err := e.startPage(); err != nil {
			return err
		}
	}
	if err := e.writePage(); err != nil {
		return err
	}
	e.page = nil
	e.pageNo++
	return nil
}

// Flush writes the current page if it holds any tuple.
func (e *Encoder) Flush() error {
	if e.page == nil || e.page.NumEmptySlots() == e.page.NumSlots() {
		return nil
	}
	return e.Break()
}

// Count is the number of tuples added so far.
func (e *Encoder) Count() int { return e.count }

func (e *Encoder) startPage() error {
	pid := record.PageID{TableID: FileID(e.store.Path()), PageNo: e.pageNo}
	p, err := storage.NewEmptyHeapPage(pid, e.td, e.sm.PageSize())
	if err != nil {
		return err
	}
	e.page = p
	return nil
}

func (e *Encoder) writePage() error {
	data, err := e.page.Data()
	if err != nil {
		return err
	}
	return e.sm.WritePage(e.store, e.pageNo, data)
}

// EncodeText reads one tuple per line, fields split on sep, and appends
// them as heap pages. Blank lines are skipped.
func EncodeText(r io.Reader, store storage.Store, td *record.TupleDesc, pageSize int, sep string) (int, error) {
	enc, err := NewEncoder(store, td, pageSize)
	if err != nil {
		return 0, err
	}
	typs := td.Types()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, sep)
		if len(parts) != td.NumFields() {
			return enc.Count(), fmt.Errorf("heap: line %d: %w: %d values for %d columns",
				line, record.ErrDescMismatch, len(parts), td.NumFields())
		}
		fields := make([]types.Field, len(parts))
		for i, p := range parts {
			f, err := parseText(typs[i], strings.TrimSpace(p))
			if err != nil {
				return enc.Count(), fmt.Errorf("heap: line %d column %d: %w", line, i, err)
			}
			fields[i] = f
		}
		if err := enc.Add(fields...); err != nil {
			return enc.Count(), err
		}
	}
	if err := sc.Err(); err != nil {
		return enc.Count(), err
	}
	return enc.Count(), enc.Flush()
}

func parseText(typ types.Type, s string) (types.Field, error) {
	switch typ {
	case types.IntType:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", types.ErrTypeMismatch, s)
		}
		return types.NewIntField(int32(v)), nil
	case types.StringType:
		return types.NewStringField(s), nil
	default:
		return nil, types.ErrUnknownType
	}
}
