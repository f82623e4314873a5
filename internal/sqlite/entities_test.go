// Tests for collection, feature, and dataset persistence, including the
// delete cascade from collections down to datasets.
package sqlite

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mesh-intelligence/quest/pkg/types"
)

func newTestCollection(t *testing.T, s *Store, name string) types.Collection {
	t.Helper()
	c := types.Collection{Name: name}
	if err := s.NewCollection(&c); err != nil {
		t.Fatalf("NewCollection(%s) failed: %v", name, err)
	}
	return c
}

func newTestFeature(t *testing.T, s *Store, collection string) types.Feature {
	t.Helper()
	f := types.Feature{Collection: collection, DisplayName: "feat"}
	if err := s.AddFeature(&f); err != nil {
		t.Fatalf("AddFeature failed: %v", err)
	}
	return f
}

func TestNewCollection(t *testing.T) {
	s := openTestStore(t)

	c := types.Collection{Name: "Col1", Description: "first"}
	if err := s.NewCollection(&c); err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	// Names are lower-cased, display name defaults to the name.
	if c.Name != "col1" {
		t.Errorf("name not lower-cased: %q", c.Name)
	}
	if c.DisplayName != "col1" {
		t.Errorf("display name not defaulted: %q", c.DisplayName)
	}

	got, err := s.Collection("col1")
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if got.Description != "first" {
		t.Errorf("description mismatch: %q", got.Description)
	}
}

func TestNewCollectionDuplicate(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")

	c := types.Collection{Name: "COL1"}
	if err := s.NewCollection(&c); !errors.Is(err, types.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCollectionsList(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "b")
	newTestCollection(t, s, "a")

	cols, err := s.Collections()
	if err != nil {
		t.Fatalf("Collections failed: %v", err)
	}
	if len(cols) != 2 || cols[0].Name != "a" || cols[1].Name != "b" {
		t.Errorf("unexpected listing: %+v", cols)
	}
}

func TestUpdateCollection(t *testing.T) {
	s := openTestStore(t)
	c := newTestCollection(t, s, "col1")

	c.Description = "updated description"
	if err := s.UpdateCollection(&c); err != nil {
		t.Fatalf("UpdateCollection failed: %v", err)
	}

	got, err := s.Collection("col1")
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	// Description stays a plain string; no list coercion.
	if got.Description != "updated description" {
		t.Errorf("description mismatch: %q", got.Description)
	}
}

func TestAddFeature(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")

	f := types.Feature{
		Collection:  "col1",
		DisplayName: "NewFeat",
		GeomType:    types.GeomLineString,
		GeomCoords:  json.RawMessage(`[[0,0],[1,1]]`),
	}
	if err := s.AddFeature(&f); err != nil {
		t.Fatalf("AddFeature failed: %v", err)
	}
	if len(f.FeatureID) != 32 || f.FeatureID[0] != 'f' {
		t.Errorf("feature id not tagged: %q", f.FeatureID)
	}

	got, err := s.Feature(f.FeatureID)
	if err != nil {
		t.Fatalf("Feature failed: %v", err)
	}
	if got.DisplayName != "NewFeat" || got.GeomType != types.GeomLineString {
		t.Errorf("feature mismatch: %+v", got)
	}
	if string(got.GeomCoords) != `[[0,0],[1,1]]` {
		t.Errorf("coords mismatch: %s", got.GeomCoords)
	}
}

func TestAddFeatureUnknownCollection(t *testing.T) {
	s := openTestStore(t)

	f := types.Feature{Collection: "nope"}
	if err := s.AddFeature(&f); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddFeatures(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")

	uris := []string{
		"svc://usgs-nwis:iv/01529500",
		"svc://usgs-nwis:iv/01529950",
	}
	ids, err := s.AddFeatures("col1", uris)
	if err != nil {
		t.Fatalf("AddFeatures failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}

	features, err := s.Features("col1")
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}

	// The returned ids are exactly the created features, each carrying
	// its source service URI.
	byID := make(map[string]types.Feature, len(features))
	for _, f := range features {
		byID[f.FeatureID] = f
	}
	for i, id := range ids {
		f, ok := byID[id]
		if !ok {
			t.Fatalf("returned id %q not among stored features", id)
		}
		if id[0] != 'f' {
			t.Errorf("feature id not tagged: %q", id)
		}
		if f.Service != uris[i] {
			t.Errorf("feature %q service = %q, want %q", id, f.Service, uris[i])
		}
	}
}

func TestAddFeaturesErrors(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")

	if _, err := s.AddFeatures("nope", []string{"svc://usgs-nwis:iv"}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown collection, got %v", err)
	}
	if _, err := s.AddFeatures("col1", []string{"not-a-service"}); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for non-service uri, got %v", err)
	}
	if _, err := s.AddFeatures("col1", []string{"svc://"}); err == nil {
		t.Error("expected error for bodyless service uri")
	}
}

func TestAddFeatureInvalidGeomType(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")

	f := types.Feature{Collection: "col1", GeomType: "Hexagon"}
	if err := s.AddFeature(&f); !errors.Is(err, types.ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}

func TestFeaturesByCollection(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")
	newTestCollection(t, s, "col2")
	newTestFeature(t, s, "col1")
	newTestFeature(t, s, "col2")
	newTestFeature(t, s, "col2")

	fs, err := s.Features("col2")
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(fs) != 2 {
		t.Errorf("expected 2 features in col2, got %d", len(fs))
	}

	all, err := s.Features()
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 features total, got %d", len(all))
	}
}

func TestDeleteFeature(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")
	keep := newTestFeature(t, s, "col1")
	gone := newTestFeature(t, s, "col1")

	if err := s.DeleteFeature(gone.FeatureID); err != nil {
		t.Fatalf("DeleteFeature failed: %v", err)
	}

	fs, err := s.Features("col1")
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	if len(fs) != 1 || fs[0].FeatureID != keep.FeatureID {
		t.Errorf("unexpected features after delete: %+v", fs)
	}

	if err := s.DeleteFeature(gone.FeatureID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")
	f := newTestFeature(t, s, "col1")

	d := types.Dataset{
		FeatureID: f.FeatureID,
		Source:    "svc://usgs-nwis:iv/01529500",
		Unit:      "m",
		Values:    []float64{1.5, 2.5, 3.5},
		Status:    types.DatasetStatusDownloaded,
	}
	if err := s.AddDataset(&d); err != nil {
		t.Fatalf("AddDataset failed: %v", err)
	}
	if len(d.DatasetID) != 32 || d.DatasetID[0] != 'd' {
		t.Errorf("dataset id not tagged: %q", d.DatasetID)
	}

	got, err := s.Dataset(d.DatasetID)
	if err != nil {
		t.Fatalf("Dataset failed: %v", err)
	}
	if got.Unit != "m" || got.Status != types.DatasetStatusDownloaded {
		t.Errorf("dataset mismatch: %+v", got)
	}
	if len(got.Values) != 3 || got.Values[1] != 2.5 {
		t.Errorf("values mismatch: %v", got.Values)
	}
}

func TestAddDatasetDefaults(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")
	f := newTestFeature(t, s, "col1")

	d := types.Dataset{FeatureID: f.FeatureID}
	if err := s.AddDataset(&d); err != nil {
		t.Fatalf("AddDataset failed: %v", err)
	}
	if d.Status != types.DatasetStatusPending {
		t.Errorf("status not defaulted: %q", d.Status)
	}
}

func TestAddDatasetUnknownFeature(t *testing.T) {
	s := openTestStore(t)

	d := types.Dataset{FeatureID: "f0000000000040008000000000000000"}
	if err := s.AddDataset(&d); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	s := openTestStore(t)
	newTestCollection(t, s, "col1")
	f := newTestFeature(t, s, "col1")

	d := types.Dataset{FeatureID: f.FeatureID}
	if err := s.AddDataset(&d); err != nil {
		t.Fatalf("AddDataset failed: %v", err)
	}

	if err := s.DeleteCollection("col1"); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}

	if _, err := s.Feature(f.FeatureID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("feature survived cascade: %v", err)
	}
	if _, err := s.Dataset(d.DatasetID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("dataset survived cascade: %v", err)
	}
}
