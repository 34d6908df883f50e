package lock

// Page locks for the buffer pool's Locker hook. Conflicts never wait: the
// requesting transaction is told to abort instead.

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sasha-s/go-deadlock"

	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/transaction"
)

type pageLock struct {
	shared    mapset.Set[transaction.TransactionID]
	exclusive transaction.TransactionID // zero when not held
}

func (l *pageLock) free() bool {
	return l.shared.Cardinality() == 0 && l.exclusive.IsZero()
}

type Manager struct {
	mu    deadlock.Mutex
	pages map[record.PageID]*pageLock
	held  map[transaction.TransactionID]mapset.Set[record.PageID]
}

func NewManager() *Manager {
	return &Manager{
		pages: make(map[record.PageID]*pageLock),
		held:  make(map[transaction.TransactionID]mapset.Set[record.PageID]),
	}
}

// Acquire takes a shared lock for ReadOnly and an exclusive one for
// ReadWrite. A sole shared holder may upgrade.
func (m *Manager) Acquire(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.pages[pid]
	if !ok {
		l = &pageLock{shared: mapset.NewThreadUnsafeSet[transaction.TransactionID]()}
		m.pages[pid] = l
	}

	held := !l.exclusive.IsZero()
	switch perm {
	case transaction.ReadOnly:
		if held && l.exclusive != tid {
			return fmt.Errorf("%w: page %s held exclusively", transaction.ErrAborted, pid)
		}
		if l.exclusive != tid {
			l.shared.Add(tid)
		}
	case transaction.ReadWrite:
		if held && l.exclusive != tid {
			return fmt.Errorf("%w: page %s held exclusively", transaction.ErrAborted, pid)
		}
		others := l.shared.Cardinality()
		if l.shared.Contains(tid) {
			others--
		}
		if others > 0 {
			return fmt.Errorf("%w: page %s shared by %d others", transaction.ErrAborted, pid, others)
		}
		l.shared.Remove(tid)
		l.exclusive = tid
	default:
		return fmt.Errorf("lock: unknown permission %d", perm)
	}

	pages, ok := m.held[tid]
	if !ok {
		pages = mapset.NewThreadUnsafeSet[record.PageID]()
		m.held[tid] = pages
	}
	pages.Add(pid)
	return nil
}

// Holds reports whether tid has any lock on pid.
func (m *Manager) Holds(tid transaction.TransactionID, pid record.PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages, ok := m.held[tid]
	return ok && pages.Contains(pid)
}

func (m *Manager) Release(tid transaction.TransactionID, pid record.PageID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release(tid, pid)
}

func (m *Manager) release(tid transaction.TransactionID, pid record.PageID) {
	if l, ok := m.pages[pid]; ok {
		l.shared.Remove(tid)
		if l.exclusive == tid {
			l.exclusive = transaction.TransactionID{}
		}
		if l.free() {
			delete(m.pages, pid)
		}
	}
	if pages, ok := m.held[tid]; ok {
		pages.Remove(pid)
		if pages.Cardinality() == 0 {
			delete(m.held, tid)
		}
	}
}

// ReleaseAll drops every lock tid holds; call it when tid ends.
func (m *Manager) ReleaseAll(tid transaction.TransactionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages, ok := m.held[tid]
	if !ok {
		return
	}
	for _, pid := range pages.ToSlice() {
		m.release(tid, pid)
	}
}

// Locked is the number of pages with at least one holder.
func (m *Manager) Locked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}
