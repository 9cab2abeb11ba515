// Package storage provides the data persistence layer backing the
// transaction engine.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/chronofin/chronofin/internal/service"
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db         *sql.DB
	dbPath     string
	changeSubs map[int]func()
	nextSubID  int
	subMutex   sync.Mutex
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:         db,
		dbPath:     dbPath,
		changeSubs: make(map[int]func()),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SubscribeChanges registers a callback invoked after every successful
// write. This is the live-query hook: the scheduler and aggregation
// consumers re-derive their views on each change instead of polling.
func (s *SQLiteStorage) SubscribeChanges(fn func()) func() {
	s.subMutex.Lock()
	defer s.subMutex.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.changeSubs[id] = fn

	return func() {
		s.subMutex.Lock()
		defer s.subMutex.Unlock()
		delete(s.changeSubs, id)
	}
}

// notifyChange fans a write event out to all change subscribers.
func (s *SQLiteStorage) notifyChange() {
	s.subMutex.Lock()
	fns := make([]func(), 0, len(s.changeSubs))
	for _, fn := range s.changeSubs {
		fns = append(fns, fn)
	}
	s.subMutex.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// compile-time interface check
var _ service.Storage = (*SQLiteStorage)(nil)
