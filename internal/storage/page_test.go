package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/types"
)

var (
	intDesc = record.MustTupleDesc(
		[]types.Type{types.IntType, types.IntType},
		[]string{"a", "b"},
	)
	mixedDesc = record.MustTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	testPID = record.PageID{TableID: 7, PageNo: 0}
)

func intTuple(t *testing.T, a, b int32) *record.Tuple {
	t.Helper()
	tup, err := record.NewTupleFrom(intDesc, types.NewIntField(a), types.NewIntField(b))
	require.NoError(t, err)
	return tup
}

func TestNumSlotsAndHeader(t *testing.T) {
	// 8 bytes per tuple: floor(8*64 / 65) = 7 slots, 1 header byte
	assert.Equal(t, 7, NumSlots(64, intDesc))
	assert.Equal(t, 1, HeaderSize(7))

	// 4096 page, 136 byte tuples: floor(32768 / 1089) = 30
	assert.Equal(t, 30, NumSlots(PageSize, mixedDesc))
	assert.Equal(t, 4, HeaderSize(30))

	require.ErrorIs(t, CheckLayout(8, mixedDesc), ErrTupleTooLarge)
}

func TestHeapPage_EmptyDecode(t *testing.T) {
	p, err := NewHeapPage(testPID, EmptyPageData(64), intDesc)
	require.NoError(t, err)

	assert.Equal(t, 7, p.NumSlots())
	assert.Equal(t, 7, p.NumEmptySlots())
	assert.Empty(t, p.Tuples())
	assert.False(t, p.Iterator().HasNext())
}

func TestHeapPage_InsertEncodeDecode(t *testing.T) {
	p, err := NewEmptyHeapPage(testPID, intDesc, 64)
	require.NoError(t, err)

	for i := int32(0); i < 3; i++ {
		slot, err := p.InsertTuple(intTuple(t, i, i*10))
		require.NoError(t, err)
		assert.Equal(t, int(i), slot)
	}

	data, err := p.Data()
	require.NoError(t, err)
	require.Len(t, data, 64)
	// slots 0..2 used -> 0b0000_0111
	assert.Equal(t, byte(0x07), data[0])

	got, err := NewHeapPage(testPID, data, intDesc)
	require.NoError(t, err)
	assert.Equal(t, 4, got.NumEmptySlots())

	tuples := got.Tuples()
	require.Len(t, tuples, 3)
	for i, tup := range tuples {
		f, err := tup.Field(1)
		require.NoError(t, err)
		assert.Equal(t, types.NewIntField(int32(i*10)), f)
		require.NotNil(t, tup.RecordID())
		assert.Equal(t, record.RecordID{PageID: testPID, Slot: i}, *tup.RecordID())
	}
}

func TestHeapPage_SkipsEmptySlots(t *testing.T) {
	data := EmptyPageData(64)
	// mark slots 1 and 4 used, values written straight into the body
	data[0] = 0b0001_0010
	hdr := HeaderSize(NumSlots(64, intDesc))
	putInt := func(slot, col int, v byte) {
		data[hdr+slot*8+col*4+3] = v
	}
	putInt(1, 0, 11)
	putInt(4, 0, 44)

	p, err := NewHeapPage(testPID, data, intDesc)
	require.NoError(t, err)
	assert.True(t, p.IsSlotUsed(1))
	assert.False(t, p.IsSlotUsed(0))
	assert.False(t, p.IsSlotUsed(99))

	it := p.Iterator()
	var got []int32
	for it.HasNext() {
		tup, err := it.Next()
		require.NoError(t, err)
		f, _ := tup.Field(0)
		got = append(got, f.(types.IntField).Value)
	}
	assert.Equal(t, []int32{11, 44}, got)

	_, err = it.Next()
	require.ErrorIs(t, err, record.ErrNoSuchElement)
}

func TestHeapPage_FullPage(t *testing.T) {
	p, err := NewEmptyHeapPage(testPID, intDesc, 64)
	require.NoError(t, err)
	for i := 0; i < p.NumSlots(); i++ {
		_, err := p.InsertTuple(intTuple(t, int32(i), 0))
		require.NoError(t, err)
	}
	_, err = p.InsertTuple(intTuple(t, 99, 0))
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestHeapPage_InsertWrongDesc(t *testing.T) {
	p, err := NewEmptyHeapPage(testPID, intDesc, 64)
	require.NoError(t, err)

	other, err := record.NewTupleFrom(
		record.MustTupleDesc([]types.Type{types.IntType}, nil),
		types.NewIntField(1),
	)
	require.NoError(t, err)
	_, err = p.InsertTuple(other)
	require.ErrorIs(t, err, record.ErrFieldType)
}

func TestHeapPage_StringRoundTrip(t *testing.T) {
	p, err := NewEmptyHeapPage(testPID, mixedDesc, PageSize)
	require.NoError(t, err)

	tup, err := record.NewTupleFrom(mixedDesc, types.NewIntField(1), types.NewStringField("alice"))
	require.NoError(t, err)
	_, err = p.InsertTuple(tup)
	require.NoError(t, err)

	data, err := p.Data()
	require.NoError(t, err)

	got, err := NewHeapPage(testPID, data, mixedDesc)
	require.NoError(t, err)
	require.Len(t, got.Tuples(), 1)
	assert.Equal(t, "1\talice\n", got.Tuples()[0].String())

	dbg := got.DebugString()
	assert.Contains(t, dbg, "numSlots=30")
	assert.Contains(t, dbg, "alice")
}
