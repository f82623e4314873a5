package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/quest/pkg/ref"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// AddFeature inserts a feature into its collection. A missing FeatureID
// is generated with the feature tag. The collection must exist.
func (s *Store) AddFeature(f *types.Feature) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	f.Collection = strings.ToLower(f.Collection)

	var exists int
	err = db.QueryRow("SELECT 1 FROM collections WHERE name = ?", f.Collection).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: collection %s", types.ErrNotFound, f.Collection)
	}
	if err != nil {
		return fmt.Errorf("checking collection existence: %w", err)
	}

	if f.FeatureID == "" {
		f.FeatureID = ref.NewID(ref.KindFeature)
	}

	meta, err := encodeMetadata(f.Metadata)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err = db.Exec(
		`INSERT INTO features (feature_id, collection, display_name, description, geom_type, geom_coords, service, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FeatureID, f.Collection, f.DisplayName, f.Description,
		nullable(f.GeomType), nullable(string(f.GeomCoords)), nullable(f.Service),
		meta, now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting feature %s: %w", f.FeatureID, err)
	}
	return nil
}

// AddFeatures creates one feature per service URI in the collection and
// returns the new feature identifiers in input order. Every URI must
// parse as a service reference; the first failure aborts the batch,
// leaving features created before it in place.
func (s *Store) AddFeatures(collection string, uris []string) ([]string, error) {
	ids := make([]string, 0, len(uris))
	for _, uri := range uris {
		parsed, err := ref.Parse(uri)
		if err != nil {
			return nil, err
		}
		if parsed.Kind != ref.KindService {
			return nil, fmt.Errorf("%w: not a service uri: %s", types.ErrInvalidData, uri)
		}

		f := types.Feature{
			Collection: collection,
			Service:    parsed.String(),
		}
		if err := s.AddFeature(&f); err != nil {
			return nil, err
		}
		ids = append(ids, f.FeatureID)
	}
	return ids, nil
}

// Feature retrieves one feature by identifier.
func (s *Store) Feature(id string) (types.Feature, error) {
	db, err := s.conn()
	if err != nil {
		return types.Feature{}, err
	}

	row := db.QueryRow(featureSelect+" WHERE feature_id = ?", id)
	f, err := hydrateFeature(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Feature{}, types.ErrNotFound
		}
		return types.Feature{}, fmt.Errorf("getting feature %s: %w", id, err)
	}
	return f, nil
}

// Features lists features, optionally restricted to the given collections.
// With no arguments every feature in the store is returned.
func (s *Store) Features(collections ...string) ([]types.Feature, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := featureSelect
	var args []any
	if len(collections) > 0 {
		placeholders := strings.Repeat("?,", len(collections))
		query += " WHERE collection IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, c := range collections {
			args = append(args, strings.ToLower(c))
		}
	}
	query += " ORDER BY created_at, feature_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing features: %w", err)
	}
	defer rows.Close()

	var out []types.Feature
	for rows.Next() {
		f, err := hydrateFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateFeature rewrites the mutable fields of a feature.
func (s *Store) UpdateFeature(f *types.Feature) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	meta, err := encodeMetadata(f.Metadata)
	if err != nil {
		return err
	}

	f.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(
		`UPDATE features SET display_name = ?, description = ?, geom_type = ?, geom_coords = ?, service = ?, metadata = ?, updated_at = ?
		 WHERE feature_id = ?`,
		f.DisplayName, f.Description,
		nullable(f.GeomType), nullable(string(f.GeomCoords)), nullable(f.Service),
		meta, f.UpdatedAt.Format(timeLayout), f.FeatureID,
	)
	if err != nil {
		return fmt.Errorf("updating feature %s: %w", f.FeatureID, err)
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

// DeleteFeature removes a feature and, through the schema cascade, its
// datasets. Returns ErrNotFound for unknown identifiers.
func (s *Store) DeleteFeature(id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM features WHERE feature_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting feature %s: %w", id, err)
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

const featureSelect = "SELECT feature_id, collection, display_name, description, geom_type, geom_coords, service, metadata, created_at, updated_at FROM features"

func hydrateFeature(row scanner) (types.Feature, error) {
	var f types.Feature
	var geomType, geomCoords, service sql.NullString
	var meta, created, updated string
	if err := row.Scan(&f.FeatureID, &f.Collection, &f.DisplayName, &f.Description,
		&geomType, &geomCoords, &service, &meta, &created, &updated); err != nil {
		return types.Feature{}, err
	}

	f.GeomType = geomType.String
	if geomCoords.Valid && geomCoords.String != "" {
		f.GeomCoords = json.RawMessage(geomCoords.String)
	}
	f.Service = service.String

	var err error
	if f.Metadata, err = decodeMetadata(meta); err != nil {
		return types.Feature{}, err
	}
	if f.CreatedAt, err = parseTime(created); err != nil {
		return types.Feature{}, err
	}
	if f.UpdatedAt, err = parseTime(updated); err != nil {
		return types.Feature{}, err
	}
	return f, nil
}

// nullable maps the empty string to NULL so optional TEXT columns do not
// fill with empties.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
