package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
)

var (
	ErrNoSuchTable  = errors.New("catalog: no such table")
	ErrInvalidTable = errors.New("catalog: invalid table")
)

// DbFile is what the catalog stores per table. *heap.HeapFile is the only
// implementation.
type DbFile interface {
	ID() int
	TupleDesc() *record.TupleDesc
	NumPages() (int, error)
	ReadPage(pid record.PageID) (*storage.HeapPage, error)
	Iterator(tid transaction.TransactionID, src heap.PageSource) heap.DbFileIterator
	Close() error
}

var _ DbFile = (*heap.HeapFile)(nil)

type table struct {
	file DbFile
	name string
	pkey string
}

// Catalog maps table ids and names to their files. Ids come from the
// files themselves; names are unique.
type Catalog struct {
	byID   map[int]*table
	byName map[string]int
	names  mapset.Set[string]
	order  []int
}

func New() *Catalog {
	return &Catalog{
		byID:   make(map[int]*table),
		byName: make(map[string]int),
		names:  mapset.NewThreadUnsafeSet[string](),
	}
}

// AddTable registers file under name. An existing table with the same name
// or the same id is dropped first.
func (c *Catalog) AddTable(file DbFile, name, pkey string) error {
	if file == nil || name == "" {
		return fmt.Errorf("%w: file and name are required", ErrInvalidTable)
	}
	id := file.ID()

	if old, ok := c.byName[name]; ok {
		c.remove(old)
	}
	if _, ok := c.byID[id]; ok {
		c.remove(id)
	}

	c.byID[id] = &table{file: file, name: name, pkey: pkey}
	c.byName[name] = id
	c.names.Add(name)
	c.order = append(c.order, id)
	slog.Debug("catalog: table added", "name", name, "id", id)
	return nil
}

func (c *Catalog) remove(id int) {
	t, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byID, id)
	delete(c.byName, t.name)
	c.names.Remove(t.name)
	c.order = slices.DeleteFunc(c.order, func(x int) bool { return x == id })
}

func (c *Catalog) lookup(id int) (*table, error) {
	t, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchTable, id)
	}
	return t, nil
}

func (c *Catalog) HasTable(name string) bool {
	return c.names.Contains(name)
}

func (c *Catalog) TableID(name string) (int, error) {
	id, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoSuchTable, name)
	}
	return id, nil
}

func (c *Catalog) TupleDesc(id int) (*record.TupleDesc, error) {
	t, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.file.TupleDesc(), nil
}

func (c *Catalog) DatabaseFile(id int) (DbFile, error) {
	t, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.file, nil
}

func (c *Catalog) TableName(id int) (string, error) {
	t, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	return t.name, nil
}

func (c *Catalog) PrimaryKey(id int) (string, error) {
	t, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	return t.pkey, nil
}

// TableIDs lists ids in registration order.
func (c *Catalog) TableIDs() []int {
	return slices.Clone(c.order)
}

// Describe summarises table id.
func (c *Catalog) Describe(id int) (TableMeta, error) {
	t, err := c.lookup(id)
	if err != nil {
		return TableMeta{}, err
	}
	n, err := t.file.NumPages()
	if err != nil {
		return TableMeta{}, err
	}
	meta := TableMeta{
		ID:         id,
		Name:       t.name,
		PrimaryKey: t.pkey,
		PageCount:  n,
		Columns:    t.file.TupleDesc().Items(),
	}
	if hf, ok := t.file.(*heap.HeapFile); ok {
		meta.Path = hf.Store().Path()
	}
	return meta, nil
}

// Clear forgets every table without closing its file.
func (c *Catalog) Clear() {
	c.byID = make(map[int]*table)
	c.byName = make(map[string]int)
	c.names.Clear()
	c.order = nil
}

// Close closes every file and clears the catalog.
func (c *Catalog) Close() error {
	var errs []error
	for _, id := range c.order {
		if err := c.byID[id].file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.Clear()
	return errors.Join(errs...)
}
