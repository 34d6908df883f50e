package execution

import (
	"fmt"
	"log/slog"

	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/transaction"
)

// SeqScan reads every tuple of one table in page order, then slot order.
// Field names of its output are prefixed with the scan alias.
type SeqScan struct {
	ctx       *Context
	tid       transaction.TransactionID
	tableID   int
	tableName string
	alias     string
	td        *record.TupleDesc
	cursor    heap.DbFileIterator
}

var _ OpIterator = (*SeqScan)(nil)

func NewSeqScan(ctx *Context, tid transaction.TransactionID, tableID int, alias string) (*SeqScan, error) {
	s := &SeqScan{ctx: ctx, tid: tid}
	if err := s.Reset(tableID, alias); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSeqScanDefault aliases the scan with the table's own name.
func NewSeqScanDefault(ctx *Context, tid transaction.TransactionID, tableID int) (*SeqScan, error) {
	name, err := ctx.Catalog.TableName(tableID)
	if err != nil {
		return nil, err
	}
	return NewSeqScan(ctx, tid, tableID, name)
}

// Reset points the scan at another table and alias. An open cursor is
// closed; the scan must be opened again.
func (s *SeqScan) Reset(tableID int, alias string) error {
	name, err := s.ctx.Catalog.TableName(tableID)
	if err != nil {
		return err
	}
	base, err := s.ctx.Catalog.TupleDesc(tableID)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	s.tableID = tableID
	s.tableName = name
	s.alias = alias
	s.td = base.WithPrefix(alias)
	return nil
}

func (s *SeqScan) TableName() string { return s.tableName }

func (s *SeqScan) TableID() int { return s.tableID }

func (s *SeqScan) Alias() string { return s.alias }

func (s *SeqScan) TupleDesc() *record.TupleDesc { return s.td }

func (s *SeqScan) Open() error {
	file, err := s.ctx.Catalog.DatabaseFile(s.tableID)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	cursor := file.Iterator(s.tid, s.ctx.Pages)
	if err := cursor.Open(); err != nil {
		return fmt.Errorf("execution: open scan of %s: %w", s.tableName, err)
	}
	s.cursor = cursor
	slog.Debug("execution: seqscan open", "table", s.tableName, "alias", s.alias, "tid", s.tid.String())
	return nil
}

func (s *SeqScan) HasNext() (bool, error) {
	if s.cursor == nil {
		return false, ErrNotOpen
	}
	return s.cursor.HasNext()
}

// Next returns the stored tuple re-labelled with the aliased TupleDesc.
func (s *SeqScan) Next() (*record.Tuple, error) {
	if s.cursor == nil {
		return nil, ErrNotOpen
	}
	t, err := s.cursor.Next()
	if err != nil {
		return nil, err
	}
	out, err := record.NewTupleFrom(s.td, t.Fields()...)
	if err != nil {
		return nil, err
	}
	out.SetRecordID(t.RecordID())
	return out, nil
}

func (s *SeqScan) Rewind() error {
	if s.cursor == nil {
		return ErrNotOpen
	}
	return s.cursor.Rewind()
}

// Close is safe to call more than once.
func (s *SeqScan) Close() error {
	if s.cursor == nil {
		return nil
	}
	err := s.cursor.Close()
	s.cursor = nil
	return err
}
