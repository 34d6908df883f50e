package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dsnet/golib/memfile"
)

// Store is the byte-addressable backing of one heap file.
type Store interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	// Path is the canonical location; heap file identity derives from it.
	Path() string
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemStore)(nil)
)

// FileStore is a Store on a local file.
type FileStore struct {
	f    *os.File
	path string
}

// OpenFileStore opens (creating if needed) the file at path. The stored
// path is absolute and cleaned so the same file always maps to one id.
func OpenFileStore(path string) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), FileMode0755); err != nil {
		return nil, err
	}
	// RDWR | CREATE (no truncate)
	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, FileMode0644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", abs, err)
	}
	return &FileStore{f: f, path: abs}, nil
}

func (s *FileStore) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }

func (s *FileStore) WriteAt(p []byte, off int64) (int, error) { return s.f.WriteAt(p, off) }

func (s *FileStore) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Close() error { return s.f.Close() }

// MemStore is a Store held in memory, for tests and scratch tables.
type MemStore struct {
	f      *memfile.File
	name   string
	closed bool
}

func NewMemStore(name string, data []byte) *MemStore {
	return &MemStore{f: memfile.New(data), name: name}
}

func (s *MemStore) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	return s.f.ReadAt(p, off)
}

func (s *MemStore) WriteAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	return s.f.WriteAt(p, off)
}

func (s *MemStore) Size() (int64, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	return int64(len(s.f.Bytes())), nil
}

func (s *MemStore) Path() string { return "mem://" + s.name }

func (s *MemStore) Close() error {
	s.closed = true
	return nil
}
