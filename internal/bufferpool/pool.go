package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sasha-s/go-deadlock"

	"github.com/tuannm99/novacore/internal/catalog"
	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
)

var (
	DefaultCapacity = 50

	ErrNoFreeFrame = errors.New("bufferpool: no free frame available")
)

// Locker stands in for a lock manager. Returning an error (typically
// transaction.ErrAborted) fails the GetPage call with that error.
type Locker interface {
	Acquire(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) error
}

// LockerFunc adapts a function to Locker.
type LockerFunc func(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) error

func (f LockerFunc) Acquire(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) error {
	return f(tid, pid, perm)
}

type Frame struct {
	PageID record.PageID
	Page   *storage.HeapPage
}

// Stats counts cache outcomes since the pool was created or reset.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

var _ heap.PageSource = (*Pool)(nil)

// Pool caches decoded pages of the tables known to a catalog. Pages are
// read-only here, so every cached frame may be evicted at any time.
type Pool struct {
	files  *catalog.Catalog
	locker Locker

	mu        deadlock.Mutex
	frames    []*Frame              // len == capacity, nil == free slot
	pageTable map[record.PageID]int // PageID -> frame index
	stats     Stats

	replacementPolicy Replacer
}

type Option func(*Pool)

func WithLocker(l Locker) Option {
	return func(p *Pool) { p.locker = l }
}

func WithReplacer(r Replacer) Option {
	return func(p *Pool) { p.replacementPolicy = r }
}

func NewPool(files *catalog.Catalog, capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	p := &Pool{
		files:             files,
		frames:            make([]*Frame, capacity),
		pageTable:         make(map[record.PageID]int),
		replacementPolicy: newClockReplacer(capacity),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetPage returns page pid for tid, loading it through the catalog on a
// miss. The lock hook runs before the cache is consulted.
func (p *Pool) GetPage(tid transaction.TransactionID, pid record.PageID, perm transaction.Permissions) (*storage.HeapPage, error) {
	if p.locker != nil {
		if err := p.locker.Acquire(tid, pid, perm); err != nil {
			return nil, fmt.Errorf("bufferpool: %s %s page %s: %w", tid, perm, pid, err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// 1) HIT
	if idx, ok := p.pageTable[pid]; ok {
		if f := p.frames[idx]; f != nil {
			p.stats.Hits++
			p.replacementPolicy.RecordAccess(idx)
			return f.Page, nil
		}
		delete(p.pageTable, pid)
	}
	p.stats.Misses++

	// 2) free slot, else 3) evict
	idx := freeFrame(p.frames)
	if idx == -1 {
		victim, ok := p.replacementPolicy.Evict()
		if !ok {
			return nil, ErrNoFreeFrame
		}
		if f := p.frames[victim]; f != nil {
			delete(p.pageTable, f.PageID)
			slog.Debug("bufferpool: evict", "page", f.PageID.String(), "frame", victim)
		}
		p.frames[victim] = nil
		p.stats.Evictions++
		idx = victim
	}

	page, err := p.load(pid)
	if err != nil {
		return nil, err
	}
	p.frames[idx] = &Frame{PageID: pid, Page: page}
	p.pageTable[pid] = idx
	p.replacementPolicy.RecordAccess(idx)
	p.replacementPolicy.SetEvictable(idx, true)
	slog.Debug("bufferpool: load", "page", pid.String(), "frame", idx)
	return page, nil
}

func (p *Pool) load(pid record.PageID) (*storage.HeapPage, error) {
	if p.files == nil {
		return nil, fmt.Errorf("bufferpool: %w: no catalog", catalog.ErrNoSuchTable)
	}
	file, err := p.files.DatabaseFile(pid.TableID)
	if err != nil {
		return nil, err
	}
	return file.ReadPage(pid)
}

func freeFrame(frames []*Frame) int {
	for i, f := range frames {
		if f == nil {
			return i
		}
	}
	return -1
}

// Discard drops pid from the cache without writing it anywhere.
func (p *Pool) Discard(pid record.PageID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pid]
	if !ok {
		return
	}
	p.frames[idx] = nil
	delete(p.pageTable, pid)
	p.replacementPolicy.Remove(idx)
}

// Contains reports whether pid is cached.
func (p *Pool) Contains(pid record.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pageTable[pid]
	return ok
}

// Size is the number of cached pages.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pageTable)
}

func (p *Pool) Capacity() int { return len(p.frames) }

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Reset empties the cache and zeroes the stats.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for idx := range p.frames {
		if p.frames[idx] != nil {
			p.replacementPolicy.Remove(idx)
		}
		p.frames[idx] = nil
	}
	p.pageTable = make(map[record.PageID]int)
	p.stats = Stats{}
}
