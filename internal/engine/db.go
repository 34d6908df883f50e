package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/dig"

	"github.com/tuannm99/novacore/internal/bufferpool"
	"github.com/tuannm99/novacore/internal/catalog"
	"github.com/tuannm99/novacore/internal/config"
	"github.com/tuannm99/novacore/internal/execution"
	"github.com/tuannm99/novacore/internal/heap"
	"github.com/tuannm99/novacore/internal/lock"
	"github.com/tuannm99/novacore/internal/logging"
	"github.com/tuannm99/novacore/internal/record"
	"github.com/tuannm99/novacore/internal/storage"
	"github.com/tuannm99/novacore/internal/transaction"
)

var ErrDatabaseClosed = errors.New("novacore: database is closed")

// Database owns one catalog and one page cache. Operators reach them only
// through the execution.Context it hands out.
type Database struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Pool    *bufferpool.Pool
	Locks   *lock.Manager
	Logger  *slog.Logger

	closed bool
}

// Open loads the config at cfgPath (empty for defaults) and builds a
// Database from it.
func Open(cfgPath string) (*Database, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New wires a Database from cfg. Log output goes to stderr.
func New(cfg *config.Config) (*Database, error) {
	return NewWithOutput(cfg, os.Stderr)
}

func NewWithOutput(cfg *config.Config, logOut io.Writer) (*Database, error) {
	container := dig.New()
	constructors := []any{
		func() *config.Config { return cfg },
		func(c *config.Config) (*slog.Logger, error) {
			return logging.Install(logOut, c.Log.Level, c.Log.Format)
		},
		newCatalog,
		lock.NewManager,
		newPool,
		newDatabase,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return nil, err
		}
	}

	var db *Database
	if err := container.Invoke(func(d *Database) { db = d }); err != nil {
		return nil, fmt.Errorf("novacore: build database: %w", dig.RootCause(err))
	}
	return db, nil
}

func newCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	cat := catalog.New()
	if cfg.Storage.Schema == "" {
		return cat, nil
	}
	path := cfg.Storage.Schema
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Storage.Workdir, path)
	}
	names, err := cat.LoadSchema(path, cfg.Storage.PageSize)
	if err != nil {
		return nil, fmt.Errorf("novacore: load schema %s: %w", path, err)
	}
	logger.Info("novacore: schema loaded", "path", path, "tables", names)
	return cat, nil
}

func newPool(cfg *config.Config, cat *catalog.Catalog, locks *lock.Manager) *bufferpool.Pool {
	return bufferpool.NewPool(cat, cfg.BufferPool.Capacity, bufferpool.WithLocker(locks))
}

func newDatabase(cfg *config.Config, cat *catalog.Catalog, pool *bufferpool.Pool, locks *lock.Manager, logger *slog.Logger) *Database {
	return &Database{Config: cfg, Catalog: cat, Pool: pool, Locks: locks, Logger: logger}
}

// ExecContext is the collaborator set for operators over this database.
func (db *Database) ExecContext() *execution.Context {
	return &execution.Context{Catalog: db.Catalog, Pages: db.Pool}
}

// Begin starts a transaction. Its page locks are taken as scans reach
// pages and held until Commit.
func (db *Database) Begin() transaction.TransactionID {
	return transaction.NewTransactionID()
}

// Commit ends tid and releases its page locks.
func (db *Database) Commit(tid transaction.TransactionID) {
	db.Locks.ReleaseAll(tid)
}

// CreateTable opens (creating if needed) <workdir>/<name>.dat and registers
// it.
func (db *Database) CreateTable(name string, td *record.TupleDesc, pkey string) (*heap.HeapFile, error) {
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	store, err := storage.OpenFileStore(filepath.Join(db.Config.Storage.Workdir, name+".dat"))
	if err != nil {
		return nil, err
	}
	hf, err := heap.NewHeapFile(store, td, db.Config.Storage.PageSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := db.Catalog.AddTable(hf, name, pkey); err != nil {
		_ = store.Close()
		return nil, err
	}
	db.Logger.Debug("novacore: table created", "name", name, "id", hf.ID())
	return hf, nil
}

// Import appends rows read from r, one per line with fields split on sep,
// to table name. Returns the number of rows added.
func (db *Database) Import(name string, r io.Reader, sep string) (int, error) {
	if db.closed {
		return 0, ErrDatabaseClosed
	}
	id, err := db.Catalog.TableID(name)
	if err != nil {
		return 0, err
	}
	file, err := db.Catalog.DatabaseFile(id)
	if err != nil {
		return 0, err
	}
	hf, ok := file.(*heap.HeapFile)
	if !ok {
		return 0, fmt.Errorf("novacore: table %s is not a heap file", name)
	}
	n, err := heap.EncodeText(r, hf.Store(), hf.TupleDesc(), hf.PageSize(), sep)
	if err != nil {
		return n, err
	}
	db.Logger.Info("novacore: imported", "table", name, "rows", n)
	return n, nil
}

// Scan returns an unopened SeqScan over table name. An empty alias uses
// the table name.
func (db *Database) Scan(tid transaction.TransactionID, name, alias string) (*execution.SeqScan, error) {
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	id, err := db.Catalog.TableID(name)
	if err != nil {
		return nil, err
	}
	if alias == "" {
		return execution.NewSeqScanDefault(db.ExecContext(), tid, id)
	}
	return execution.NewSeqScan(db.ExecContext(), tid, id, alias)
}

func (db *Database) Close() error {
	if db.closed {
		return ErrDatabaseClosed
	}
	db.closed = true
	db.Pool.Reset()
	return db.Catalog.Close()
}
