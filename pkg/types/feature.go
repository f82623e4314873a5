package types

import (
	"encoding/json"
	"time"
)

// Geometry types a feature may carry. Matches the GeoJSON geometry names
// the catalog understands.
const (
	GeomPoint      = "Point"
	GeomLineString = "LineString"
	GeomPolygon    = "Polygon"
)

// validGeomTypes is the set of recognized geometry type values.
var validGeomTypes = map[string]bool{
	GeomPoint:      true,
	GeomLineString: true,
	GeomPolygon:    true,
}

// Feature is a point, line, or polygon with metadata, owned by exactly one
// collection. FeatureID is a 32-char hex token tagged with 'f'.
// Service holds the svc:// URI for features materialized from a remote
// service; it is empty for features created locally.
type Feature struct {
	FeatureID   string          `json:"feature_id"`
	Collection  string          `json:"collection"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	GeomType    string          `json:"geom_type,omitempty"`
	GeomCoords  json.RawMessage `json:"geom_coords,omitempty"`
	Service     string          `json:"service,omitempty"`
	Metadata    map[string]any  `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks that the feature is well-formed for persistence.
// An empty GeomType is allowed; geometry is optional for service-derived
// features whose payload has not been materialized yet.
func (f *Feature) Validate() error {
	if f.Collection == "" {
		return ErrInvalidData
	}
	if f.GeomType != "" && !validGeomTypes[f.GeomType] {
		return ErrInvalidData
	}
	return nil
}
