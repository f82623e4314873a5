package filters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/quest/pkg/ref"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// UnitConversionName is the registry name of the unit conversion filter.
const UnitConversionName = "raster-unit-conversion"

// OptToUnits is the option naming the target units.
const OptToUnits = "to_units"

// ErrNoUnit is returned when the input dataset carries no unit to
// convert from.
var ErrNoUnit = errors.New("dataset has no unit")

// UnitConversion converts a dataset's values to different units by
// scaling with the conversion factor between the dataset's unit and the
// requested target unit.
type UnitConversion struct{}

// Name implements Filter.
func (UnitConversion) Name() string { return UnitConversionName }

// Apply implements Filter. When the source carries a rate unit (e.g.
// ft3/s) and the target is a bare unit, the source's time denominator is
// kept: converting ft3/s "to m3" yields m3/s.
func (UnitConversion) Apply(ds types.Dataset, opts Options) (types.Dataset, error) {
	to := opts[OptToUnits]
	if to == "" {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrMissingOption, OptToUnits)
	}
	from := ds.Unit
	if from == "" {
		return types.Dataset{}, fmt.Errorf("%w: dataset %s", ErrNoUnit, ds.DatasetID)
	}

	if i := strings.Index(from, "/"); i >= 0 && !strings.Contains(to, "/") {
		to += from[i:]
	}

	factor, err := Convert(from, to)
	if err != nil {
		return types.Dataset{}, err
	}

	values := make([]float64, len(ds.Values))
	for i, v := range ds.Values {
		values[i] = v * factor
	}

	metadata := make(map[string]any, len(ds.Metadata)+2)
	for k, v := range ds.Metadata {
		metadata[k] = v
	}
	// Derived payload lives in the store, not at the parent's file path.
	delete(metadata, "file_path")
	metadata["filter"] = UnitConversionName
	metadata["parent"] = ds.DatasetID

	return types.Dataset{
		DatasetID: ref.NewID(ref.KindDataset),
		FeatureID: ds.FeatureID,
		Source:    ds.Source,
		Unit:      to,
		Values:    values,
		Status:    types.DatasetStatusFiltered,
		Metadata:  metadata,
	}, nil
}
