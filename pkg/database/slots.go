package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const slotsSchema = `
CREATE TABLE IF NOT EXISTS local_storage (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLiteSlots 基于SQLite的本地槽位存储
type SQLiteSlots struct {
	db *sql.DB
}

var _ SlotStore = (*SQLiteSlots)(nil)

// OpenSQLiteSlots opens (or creates) the slot database at path.
func OpenSQLiteSlots(path string) (*SQLiteSlots, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create local store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// 单写者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(slotsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply local store schema: %w", err)
	}
	return &SQLiteSlots{db: db}, nil
}

func (s *SQLiteSlots) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteSlots) SetItem(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO local_storage (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlots) RemoveItem(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlots) Close() error {
	return s.db.Close()
}

// MemorySlots is a map-backed SlotStore.
type MemorySlots struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ SlotStore = (*MemorySlots)(nil)

// NewMemorySlots 创建内存槽位存储
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{items: make(map[string]string)}
}

func (m *MemorySlots) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemorySlots) SetItem(key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemorySlots) RemoveItem(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemorySlots) Close() error { return nil }
