package filters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Unit conversion errors.
var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// unitDef ties a unit symbol to its dimension and its factor relative to
// the dimension's base unit (m, m3, s).
type unitDef struct {
	dim    string
	factor float64
}

// unitTable covers the length, volume, and time units the raster filters
// deal with. Compound rate units (m3/s, ft3/s) are handled by Convert.
var unitTable = map[string]unitDef{
	// length, base m
	"mm": {"length", 0.001},
	"cm": {"length", 0.01},
	"m":  {"length", 1},
	"km": {"length", 1000},
	"in": {"length", 0.0254},
	"ft": {"length", 0.3048},
	"mi": {"length", 1609.344},

	// volume, base m3
	"l":   {"volume", 0.001},
	"m3":  {"volume", 1},
	"ft3": {"volume", 0.028316846592},
	"gal": {"volume", 0.003785411784},

	// time, base s
	"s":   {"time", 1},
	"min": {"time", 60},
	"h":   {"time", 3600},
	"d":   {"time", 86400},
}

// Units returns the sorted list of recognized unit symbols.
func Units() []string {
	names := make([]string, 0, len(unitTable))
	for name := range unitTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Convert returns the multiplier that takes a value in src units to dst
// units. Compound rate units split on '/': both sides must then be
// compound and the numerator/denominator dimensions must match.
func Convert(src, dst string) (float64, error) {
	srcNum, srcDen, srcCompound := splitRate(src)
	dstNum, dstDen, dstCompound := splitRate(dst)

	if srcCompound != dstCompound {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, src, dst)
	}

	factor, err := simpleFactor(srcNum, dstNum)
	if err != nil {
		return 0, err
	}
	if srcCompound {
		den, err := simpleFactor(srcDen, dstDen)
		if err != nil {
			return 0, err
		}
		factor /= den
	}
	return factor, nil
}

// simpleFactor converts between two non-compound units.
func simpleFactor(src, dst string) (float64, error) {
	s, ok := unitTable[src]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, src)
	}
	d, ok := unitTable[dst]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, dst)
	}
	if s.dim != d.dim {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, src, dst)
	}
	return s.factor / d.factor, nil
}

// splitRate splits a compound rate unit into numerator and denominator.
func splitRate(unit string) (num, den string, compound bool) {
	if i := strings.Index(unit, "/"); i >= 0 {
		return unit[:i], unit[i+1:], true
	}
	return unit, "", false
}
