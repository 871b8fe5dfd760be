package tension

import "math"

// ConversionStatus describes how a gauge reading was (or was not) converted
// to a tension value.
type ConversionStatus string

const (
	StatusExact        ConversionStatus = "exact"
	StatusInterpolated ConversionStatus = "interpolated"
	StatusBelowTable   ConversionStatus = "below_table"
	StatusAboveTable   ConversionStatus = "above_table"
)

// ConversionResult is the outcome of converting one gauge reading. Tension
// is only meaningful when Converted() reports true.
type ConversionResult struct {
	Tension float64 // kgf, rounded to one decimal
	Status  ConversionStatus
}

// Converted reports whether the reading produced a usable tension value.
func (r ConversionResult) Converted() bool {
	return r.Status == StatusExact || r.Status == StatusInterpolated
}

// Convert maps a gauge reading to a physical tension via the calibration
// table. It never extrapolates: readings outside the table's bounds return
// BelowTable/AboveTable with no tension. A nil or empty table degrades to
// BelowTable so a missing spoke type never aborts an analysis pass.
func Convert(reading float64, table *CalibrationTable) ConversionResult {
	if table.Empty() {
		return ConversionResult{Status: StatusBelowTable}
	}
	if reading < table.MinReading() {
		return ConversionResult{Status: StatusBelowTable}
	}
	if reading > table.MaxReading() {
		return ConversionResult{Status: StatusAboveTable}
	}

	// Locate the bracketing pair. Points are sorted by reading.
	for i, p := range table.points {
		if reading == p.Reading {
			return ConversionResult{Tension: round1(p.Tension), Status: StatusExact}
		}
		if reading < p.Reading {
			lo := table.points[i-1]
			frac := (reading - lo.Reading) / (p.Reading - lo.Reading)
			t := lo.Tension + frac*(p.Tension-lo.Tension)
			return ConversionResult{Tension: round1(t), Status: StatusInterpolated}
		}
	}

	// Unreachable: reading <= MaxReading guarantees a bracket above.
	return ConversionResult{Status: StatusAboveTable}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
