package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/quest/pkg/types"
)

// NewCollection inserts a collection. Names are lower-cased before
// insertion; a collision returns ErrDuplicateName. DisplayName defaults
// to the name when empty.
func (s *Store) NewCollection(c *types.Collection) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	c.Name = strings.ToLower(c.Name)
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}

	var exists int
	err = db.QueryRow("SELECT 1 FROM collections WHERE name = ?", c.Name).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: collection %s", types.ErrDuplicateName, c.Name)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking collection existence: %w", err)
	}

	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = db.Exec(
		"INSERT INTO collections (name, display_name, description, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.Name, c.DisplayName, c.Description, meta,
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting collection %s: %w", c.Name, err)
	}
	return nil
}

// Collection retrieves one collection by name.
func (s *Store) Collection(name string) (types.Collection, error) {
	db, err := s.conn()
	if err != nil {
		return types.Collection{}, err
	}

	row := db.QueryRow(
		"SELECT name, display_name, description, metadata, created_at, updated_at FROM collections WHERE name = ?",
		strings.ToLower(name),
	)
	c, err := hydrateCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Collection{}, types.ErrNotFound
		}
		return types.Collection{}, fmt.Errorf("getting collection %s: %w", name, err)
	}
	return c, nil
}

// Collections lists all collections ordered by name.
func (s *Store) Collections() ([]types.Collection, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT name, display_name, description, metadata, created_at, updated_at FROM collections ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []types.Collection
	for rows.Next() {
		c, err := hydrateCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCollection rewrites the mutable fields of a collection.
// Returns ErrNotFound if the name is not present.
func (s *Store) UpdateCollection(c *types.Collection) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(
		"UPDATE collections SET display_name = ?, description = ?, metadata = ?, updated_at = ? WHERE name = ?",
		c.DisplayName, c.Description, meta, c.UpdatedAt.Format(timeLayout), strings.ToLower(c.Name),
	)
	if err != nil {
		return fmt.Errorf("updating collection %s: %w", c.Name, err)
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

// DeleteCollection removes a collection and, through the schema cascade,
// its features and their datasets. Returns ErrNotFound for unknown names.
func (s *Store) DeleteCollection(name string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM collections WHERE name = ?", strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
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

// scanner is the common subset of sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateCollection(row scanner) (types.Collection, error) {
	var c types.Collection
	var meta, created, updated string
	if err := row.Scan(&c.Name, &c.DisplayName, &c.Description, &meta, &created, &updated); err != nil {
		return types.Collection{}, err
	}

	var err error
	if c.Metadata, err = decodeMetadata(meta); err != nil {
		return types.Collection{}, err
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return types.Collection{}, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return types.Collection{}, err
	}
	return c, nil
}
