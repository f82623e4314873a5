package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/quest/pkg/ref"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// AddDataset inserts a dataset under its feature. A missing DatasetID is
// generated with the dataset tag; a missing Status defaults to pending.
// The feature must exist.
func (s *Store) AddDataset(d *types.Dataset) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	var exists int
	err = db.QueryRow("SELECT 1 FROM features WHERE feature_id = ?", d.FeatureID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: feature %s", types.ErrNotFound, d.FeatureID)
	}
	if err != nil {
		return fmt.Errorf("checking feature existence: %w", err)
	}

	if d.DatasetID == "" {
		d.DatasetID = ref.NewID(ref.KindDataset)
	}
	if d.Status == "" {
		d.Status = types.DatasetStatusPending
	}

	meta, err := encodeMetadata(d.Metadata)
	if err != nil {
		return err
	}
	values, err := encodeFloats(d.Values)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err = db.Exec(
		`INSERT INTO datasets (dataset_id, feature_id, source, unit, data_values, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DatasetID, d.FeatureID, nullable(d.Source), nullable(d.Unit),
		values, d.Status, meta, now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting dataset %s: %w", d.DatasetID, err)
	}
	return nil
}

// Dataset retrieves one dataset by identifier.
func (s *Store) Dataset(id string) (types.Dataset, error) {
	db, err := s.conn()
	if err != nil {
		return types.Dataset{}, err
	}

	row := db.QueryRow(datasetSelect+" WHERE dataset_id = ?", id)
	d, err := hydrateDataset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Dataset{}, types.ErrNotFound
		}
		return types.Dataset{}, fmt.Errorf("getting dataset %s: %w", id, err)
	}
	return d, nil
}

// Datasets lists datasets, optionally restricted to one feature.
func (s *Store) Datasets(featureID string) ([]types.Dataset, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := datasetSelect
	var args []any
	if featureID != "" {
		query += " WHERE feature_id = ?"
		args = append(args, featureID)
	}
	query += " ORDER BY created_at, dataset_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var out []types.Dataset
	for rows.Next() {
		d, err := hydrateDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDataset rewrites the mutable fields of a dataset.
func (s *Store) UpdateDataset(d *types.Dataset) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	meta, err := encodeMetadata(d.Metadata)
	if err != nil {
		return err
	}
	values, err := encodeFloats(d.Values)
	if err != nil {
		return err
	}

	d.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(
		`UPDATE datasets SET source = ?, unit = ?, data_values = ?, status = ?, metadata = ?, updated_at = ?
		 WHERE dataset_id = ?`,
		nullable(d.Source), nullable(d.Unit), values, d.Status, meta,
		d.UpdatedAt.Format(timeLayout), d.DatasetID,
	)
	if err != nil {
		return fmt.Errorf("updating dataset %s: %w", d.DatasetID, err)
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

// DeleteDataset removes a dataset. Returns ErrNotFound for unknown ids.
func (s *Store) DeleteDataset(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM datasets WHERE dataset_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting dataset %s: %w", id, err)
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

const datasetSelect = "SELECT dataset_id, feature_id, source, unit, data_values, status, metadata, created_at, updated_at FROM datasets"

func hydrateDataset(row scanner) (types.Dataset, error) {
	var d types.Dataset
	var source, unit, values sql.NullString
	var meta, created, updated string
	if err := row.Scan(&d.DatasetID, &d.FeatureID, &source, &unit, &values,
		&d.Status, &meta, &created, &updated); err != nil {
		return types.Dataset{}, err
	}

	d.Source = source.String
	d.Unit = unit.String

	var err error
	if d.Values, err = decodeFloats(values.String); err != nil {
		return types.Dataset{}, err
	}
	if d.Metadata, err = decodeMetadata(meta); err != nil {
		return types.Dataset{}, err
	}
	if d.CreatedAt, err = parseTime(created); err != nil {
		return types.Dataset{}, err
	}
	if d.UpdatedAt, err = parseTime(updated); err != nil {
		return types.Dataset{}, err
	}
	return d, nil
}
