package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/quest/pkg/types"
)

// MetadataFile is the store file name inside a project folder.
const MetadataFile = "metadata.db"

// timeLayout is the TEXT timestamp format used in all tables.
const timeLayout = time.RFC3339Nano

// Store is an open handle to one project's metadata database. A Store is
// a scoped resource: open it for the duration of an operation and Close
// before returning, even on error paths, so project switches never leak
// handles.
type Store struct {
	mu   sync.RWMutex
	path string
	db   *sql.DB
	open bool
}

// Open opens the metadata store at path, creating the file and schema if
// it does not exist. The parent directory must already exist.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidProject, filepath.Dir(path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, ddl := range schemaAll {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &Store{path: path, db: db, open: true}, nil
}

// OpenProject opens the metadata store inside the given project folder.
func OpenProject(folder string) (*Store, error) {
	return Open(filepath.Join(folder, MetadataFile))
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// conn returns the database handle, or ErrStoreClosed after Close.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}

// InitProject writes the project attribute record into a fresh store.
// Returns an error if the record already exists.
func (s *Store) InitProject(attrs types.ProjectAttrs) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	meta, err := encodeMetadata(attrs.Metadata)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if attrs.CreatedAt.IsZero() {
		attrs.CreatedAt = now
	}
	if attrs.UpdatedAt.IsZero() {
		attrs.UpdatedAt = now
	}

	_, err = db.Exec(
		"INSERT INTO project (id, display_name, description, metadata, created_at, updated_at) VALUES (1, ?, ?, ?, ?, ?)",
		attrs.DisplayName, attrs.Description, meta,
		attrs.CreatedAt.Format(timeLayout), attrs.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("init project record: %w", err)
	}
	return nil
}

// ProjectAttrs returns the project attribute record. Returns ErrNotFound
// if the store has no project record, which is how registry registration
// probes folder validity.
func (s *Store) ProjectAttrs() (types.ProjectAttrs, error) {
	db, err := s.conn()
	if err != nil {
		return types.ProjectAttrs{}, err
	}

	row := db.QueryRow(
		"SELECT display_name, description, metadata, created_at, updated_at FROM project WHERE id = 1",
	)

	var attrs types.ProjectAttrs
	var meta, created, updated string
	if err := row.Scan(&attrs.DisplayName, &attrs.Description, &meta, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return types.ProjectAttrs{}, types.ErrNotFound
		}
		return types.ProjectAttrs{}, fmt.Errorf("getting project record: %w", err)
	}

	if attrs.Metadata, err = decodeMetadata(meta); err != nil {
		return types.ProjectAttrs{}, err
	}
	if attrs.CreatedAt, err = parseTime(created); err != nil {
		return types.ProjectAttrs{}, err
	}
	if attrs.UpdatedAt, err = parseTime(updated); err != nil {
		return types.ProjectAttrs{}, err
	}
	return attrs, nil
}

// SetProjectAttrs updates the project attribute record.
func (s *Store) SetProjectAttrs(attrs types.ProjectAttrs) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	meta, err := encodeMetadata(attrs.Metadata)
	if err != nil {
		return err
	}

	res, err := db.Exec(
		"UPDATE project SET display_name = ?, description = ?, metadata = ?, updated_at = ? WHERE id = 1",
		attrs.DisplayName, attrs.Description, meta, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("updating project record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
