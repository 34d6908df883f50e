package heap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
	"github.com/tuannm99/novacore/internal/types"
)

// fileSource reads straight from the file and records which pages were
// asked for.
type fileSource struct {
	f       *HeapFile
	fetched []int
}

func (s *fileSource) GetPage(_ transaction.TransactionID, pid record.PageID, perm transaction.Permissions) (*storage.HeapPage, error) {
	if perm != transaction.ReadOnly {
		panic("scan asked for a writable page")
	}
	s.fetched = append(s.fetched, pid.PageNo)
	return s.f.ReadPage(pid)
}

func twoInts(t *testing.T) *record.TupleDesc {
	t.Helper()
	td, err := record.NewTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"a", "b"})
	require.NoError(t, err)
	return td
}

func newFile(t *testing.T, name string, data []byte) *HeapFile {
	t.Helper()
	f, err := NewHeapFile(storage.NewMemStore(name, data), twoInts(t), storage.PageSize)
	require.NoError(t, err)
	return f
}

func collect(t *testing.T, it DbFileIterator) [][2]int32 {
	t.Helper()
	var out [][2]int32
	for {
		ok, err := it.HasNext()
		require.NoError(t, err)
		if !ok {
			return out
		}
		tup, err := it.Next()
		require.NoError(t, err)
		a, err := tup.Field(0)
		require.NoError(t, err)
		b, err := tup.Field(1)
		require.NoError(t, err)
		out = append(out, [2]int32{a.(types.IntField).Value, b.(types.IntField).Value})
	}
}

func TestHeapFile_NumPagesIgnoresPartialTail(t *testing.T) {
	f := newFile(t, "t1", make([]byte, 3*storage.PageSize))
	n, err := f.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f = newFile(t, "t2", make([]byte, 3*storage.PageSize+1))
	n, err = f.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHeapFile_ReadPageBounds(t *testing.T) {
	f := newFile(t, "t", make([]byte, 2*storage.PageSize))

	_, err := f.ReadPage(record.PageID{TableID: f.ID(), PageNo: 2})
	require.ErrorIs(t, err, ErrInvalidPage)

	_, err = f.ReadPage(record.PageID{TableID: f.ID(), PageNo: -1})
	require.ErrorIs(t, err, ErrInvalidPage)

	p, err := f.ReadPage(record.PageID{TableID: f.ID(), PageNo: 1})
	require.NoError(t, err)
	assert.Equal(t, p.NumSlots(), p.NumEmptySlots())
}

func TestHeapFile_IDIsStablePerPath(t *testing.T) {
	a := newFile(t, "same", nil)
	b := newFile(t, "same", nil)
	c := newFile(t, "other", nil)
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Equal(t, FileID("mem://same"), a.ID())
}

func TestHeapFile_WritePathUnsupported(t *testing.T) {
	f := newFile(t, "t", nil)
	tid := transaction.NewTransactionID()

	tup, err := record.NewTupleFrom(f.TupleDesc(), types.NewIntField(1), types.NewIntField(2))
	require.NoError(t, err)

	_, err = f.InsertTuple(tid, tup)
	require.ErrorIs(t, err, ErrWriteUnsupported)
	_, err = f.DeleteTuple(tid, tup)
	require.ErrorIs(t, err, ErrWriteUnsupported)

	p, err := storage.NewEmptyHeapPage(record.PageID{TableID: f.ID()}, f.TupleDesc(), storage.PageSize)
	require.NoError(t, err)
	require.ErrorIs(t, f.WritePage(p), ErrWriteUnsupported)

	n, err := f.NumPages()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHeapFile_RejectsOversizedTuple(t *testing.T) {
	td, err := record.NewTupleDesc([]types.Type{types.StringType, types.StringType}, nil)
	require.NoError(t, err)
	_, err = NewHeapFile(storage.NewMemStore("tiny", nil), td, 64)
	require.ErrorIs(t, err, storage.ErrTupleTooLarge)
}

func TestIterator_EmptyFile(t *testing.T) {
	f := newFile(t, "empty", nil)
	it := f.Iterator(transaction.NewTransactionID(), &fileSource{f: f})
	require.NoError(t, it.Open())

	ok, err := it.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = it.Next()
	require.ErrorIs(t, err, record.ErrNoSuchElement)
}

func TestIterator_SkipsEmptyPagesInOrder(t *testing.T) {
	store := storage.NewMemStore("multi", nil)
	td := twoInts(t)
	enc, err := NewEncoder(store, td, storage.PageSize)
	require.NoError(t, err)

	for i := int32(0); i < 3; i++ {
		require.NoError(t, enc.Add(types.NewIntField(i), types.NewIntField(i*10)))
	}
	require.NoError(t, enc.Break())
	require.NoError(t, enc.Break())
	require.NoError(t, enc.Add(types.NewIntField(3), types.NewIntField(30)))
	require.NoError(t, enc.Add(types.NewIntField(4), types.NewIntField(40)))
	require.NoError(t, enc.Flush())
	assert.Equal(t, 5, enc.Count())

	f, err := NewHeapFile(store, td, storage.PageSize)
	require.NoError(t, err)
	n, err := f.NumPages()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	src := &fileSource{f: f}
	it := f.Iterator(transaction.NewTransactionID(), src)
	require.NoError(t, it.Open())
	assert.Equal(t, []int{0}, src.fetched)

	got := collect(t, it)
	assert.Equal(t, [][2]int32{{0, 0}, {1, 10}, {2, 20}, {3, 30}, {4, 40}}, got)
	assert.Equal(t, []int{0, 1, 2}, src.fetched)

	require.NoError(t, it.Rewind())
	assert.Len(t, collect(t, it), 5)
	require.NoError(t, it.Close())
}

func TestIterator_UnopenedAndClosed(t *testing.T) {
	store := storage.NewMemStore("one", nil)
	enc, err := NewEncoder(store, twoInts(t), storage.PageSize)
	require.NoError(t, err)
	require.NoError(t, enc.Add(types.NewIntField(1), types.NewIntField(2)))
	require.NoError(t, enc.Flush())

	f, err := NewHeapFile(store, twoInts(t), storage.PageSize)
	require.NoError(t, err)
	it := f.Iterator(transaction.NewTransactionID(), &fileSource{f: f})

	ok, err := it.HasNext()
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = it.Next()
	require.ErrorIs(t, err, record.ErrNoSuchElement)

	require.NoError(t, it.Open())
	assert.Len(t, collect(t, it), 1)
	require.NoError(t, it.Close())

	_, err = it.Next()
	require.ErrorIs(t, err, record.ErrNoSuchElement)
}

func TestIterator_RecordIDsPointAtSlots(t *testing.T) {
	store := storage.NewMemStore("rids", nil)
	td := twoInts(t)
	enc, err := NewEncoder(store, td, storage.PageSize)
	require.NoError(t, err)
	require.NoError(t, enc.Add(types.NewIntField(7), types.NewIntField(8)))
	require.NoError(t, enc.Flush())

	f, err := NewHeapFile(store, td, storage.PageSize)
	require.NoError(t, err)
	it := f.Iterator(transaction.NewTransactionID(), &fileSource{f: f})
	require.NoError(t, it.Open())
	tup, err := it.Next()
	require.NoError(t, err)

	rid := tup.RecordID()
	require.NotNil(t, rid)
	assert.Equal(t, record.PageID{TableID: f.ID(), PageNo: 0}, rid.PageID)
	assert.Equal(t, 0, rid.Slot)
}

func TestEncoder_SpillsToNextPage(t *testing.T) {
	store := storage.NewMemStore("spill", nil)
	td := twoInts(t)
	slots := storage.NumSlots(storage.PageSize, td)

	enc, err := NewEncoder(store, td, storage.PageSize)
	require.NoError(t, err)
	for i := 0; i < slots+1; i++ {
		require.NoError(t, enc.Add(types.NewIntField(int32(i)), types.NewIntField(0)))
	}
	require.NoError(t, enc.Flush())

	f, err := NewHeapFile(store, td, storage.PageSize)
	require.NoError(t, err)
	n, err := f.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := f.ReadPage(record.PageID{TableID: f.ID(), PageNo: 1})
	require.NoError(t, err)
	assert.Equal(t, slots-1, p.NumEmptySlots())

	// a second encoder appends after existing pages
	enc2, err := NewEncoder(store, td, storage.PageSize)
	require.NoError(t, err)
	require.NoError(t, enc2.Add(types.NewIntField(-1), types.NewIntField(0)))
	require.NoError(t, enc2.Flush())
	n, err = f.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEncodeText(t *testing.T) {
	td, err := record.NewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "name"})
	require.NoError(t, err)
	store := storage.NewMemStore("text", nil)

	n, err := EncodeText(strings.NewReader("1,alice\n\n2, bob\n"), store, td, storage.PageSize, ",")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := NewHeapFile(store, td, storage.PageSize)
	require.NoError(t, err)
	p, err := f.ReadPage(record.PageID{TableID: f.ID(), PageNo: 0})
	require.NoError(t, err)
	tuples := p.Tuples()
	require.Len(t, tuples, 2)
	assert.Equal(t, "2\tbob\n", tuples[1].String())

	_, err = EncodeText(strings.NewReader("x,alice\n"), storage.NewMemStore("bad", nil), td, storage.PageSize, ",")
	require.ErrorIs(t, err, types.ErrTypeMismatch)

	_, err = EncodeText(strings.NewReader("1\n"), storage.NewMemStore("short", nil), td, storage.PageSize, ",")
	require.ErrorIs(t, err, record.ErrDescMismatch)
}
