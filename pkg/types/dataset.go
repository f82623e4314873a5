package types

import "time"

// Dataset status values. A dataset is pending until its payload is
// materialized, downloaded once fetched from a service, and filter-applied
// when produced by a transformation filter.
const (
	DatasetStatusPending    = "pending"
	DatasetStatusDownloaded = "downloaded"
	DatasetStatusFiltered   = "filter applied"
)

// validDatasetStatuses is the set of recognized dataset status values.
var validDatasetStatuses = map[string]bool{
	DatasetStatusPending:    true,
	DatasetStatusDownloaded: true,
	DatasetStatusFiltered:   true,
}

// Dataset is a tabular or raster payload attached to a feature.
// DatasetID is a 32-char hex token tagged with 'd'. Values holds the
// materialized payload; Unit names the measurement unit of the values.
type Dataset struct {
	DatasetID string         `json:"dataset_id"`
	FeatureID string         `json:"feature_id"`
	Source    string         `json:"source,omitempty"`
	Unit      string         `json:"unit,omitempty"`
	Values    []float64      `json:"values,omitempty"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks that the dataset is well-formed for persistence.
func (d *Dataset) Validate() error {
	if d.FeatureID == "" {
		return ErrInvalidData
	}
	if d.Status != "" && !validDatasetStatuses[d.Status] {
		return ErrInvalidData
	}
	return nil
}
