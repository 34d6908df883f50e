package lock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/transaction"
)

var p0 = record.PageID{TableID: 1, PageNo: 0}

func TestManager_SharedLocksCoexist(t *testing.T) {
	m := NewManager()
	a, b := transaction.NewTransactionID(), transaction.NewTransactionID()

	require.NoError(t, m.Acquire(a, p0, transaction.ReadOnly))
	require.NoError(t, m.Acquire(b, p0, transaction.ReadOnly))
	require.True(t, m.Holds(a, p0))
	require.True(t, m.Holds(b, p0))
	require.Equal(t, 1, m.Locked())
}

func TestManager_ExclusiveConflictsAbort(t *testing.T) {
	m := NewManager()
	a, b := transaction.NewTransactionID(), transaction.NewTransactionID()

	require.NoError(t, m.Acquire(a, p0, transaction.ReadWrite))
	require.ErrorIs(t, m.Acquire(b, p0, transaction.ReadOnly), transaction.ErrAborted)
	require.ErrorIs(t, m.Acquire(b, p0, transaction.ReadWrite), transaction.ErrAborted)

	// the holder can still read its own page
	require.NoError(t, m.Acquire(a, p0, transaction.ReadOnly))
	require.False(t, m.Holds(b, p0))
}

func TestManager_Upgrade(t *testing.T) {
	m := NewManager()
	a, b := transaction.NewTransactionID(), transaction.NewTransactionID()

	require.NoError(t, m.Acquire(a, p0, transaction.ReadOnly))
	require.NoError(t, m.Acquire(a, p0, transaction.ReadWrite))

	m.ReleaseAll(a)
	require.NoError(t, m.Acquire(a, p0, transaction.ReadOnly))
	require.NoError(t, m.Acquire(b, p0, transaction.ReadOnly))
	require.ErrorIs(t, m.Acquire(a, p0, transaction.ReadWrite), transaction.ErrAborted)
}

func TestManager_Release(t *testing.T) {
	m := NewManager()
	a, b := transaction.NewTransactionID(), transaction.NewTransactionID()
	p1 := record.PageID{TableID: 1, PageNo: 1}

	require.NoError(t, m.Acquire(a, p0, transaction.ReadWrite))
	require.NoError(t, m.Acquire(a, p1, transaction.ReadOnly))
	require.Equal(t, 2, m.Locked())

	m.Release(a, p0)
	require.False(t, m.Holds(a, p0))
	require.NoError(t, m.Acquire(b, p0, transaction.ReadWrite))

	m.ReleaseAll(a)
	m.ReleaseAll(a)
	require.False(t, m.Holds(a, p1))
	require.Equal(t, 1, m.Locked())
}
