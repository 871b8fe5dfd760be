package tension

import (
	"math"

	"github.com/spokeworks/wheelsmith/internal/models"
)

// SideStats holds the descriptive statistics for one wheel side. A side
// with no convertible readings is an all-zero block, not an error.
type SideStats struct {
	Count      int     // all readings on the side, out-of-table included
	Valid      int     // readings with a converted tension
	Mean       float64 // kgf
	StdDev     float64 // sample standard deviation, 0 when Valid < 2
	Min        float64
	Max        float64
	UpperBand  float64 // Mean * 1.2
	LowerBand  float64 // Mean * 0.8
	OutOfRange int     // readings with RangeStatus != in_range
	OutOfBand  int     // readings with DeviationStatus != in_range
}

// SessionAnalysis is the per-side aggregation of a measurement session.
type SessionAnalysis struct {
	Left  SideStats
	Right SideStats
	Range TensionRange
}

// Analyze partitions a session's readings by side and aggregates each side
// into descriptive statistics. Readings without a converted tension are
// counted but excluded from the numeric aggregation. Per-reading statuses
// are assigned at write time; Analyze only tallies them.
func Analyze(readings []models.TensionReading, rng TensionRange) SessionAnalysis {
	analysis := SessionAnalysis{Range: rng}
	var left, right []models.TensionReading
	for _, r := range readings {
		if r.Side == models.SideLeft {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	analysis.Left = sideStats(left)
	analysis.Right = sideStats(right)
	return analysis
}

func sideStats(readings []models.TensionReading) SideStats {
	stats := SideStats{Count: len(readings)}

	var tensions []float64
	for _, r := range readings {
		if r.RangeStatus != models.RangeInRange {
			stats.OutOfRange++
		}
		if r.DeviationStatus != models.DeviationInRange {
			stats.OutOfBand++
		}
		if r.Tension.Valid {
			tensions = append(tensions, r.Tension.Float64)
		}
	}

	stats.Valid = len(tensions)
	if stats.Valid == 0 {
		return stats
	}

	var sum float64
	stats.Min = tensions[0]
	stats.Max = tensions[0]
	for _, t := range tensions {
		sum += t
		if t < stats.Min {
			stats.Min = t
		}
		if t > stats.Max {
			stats.Max = t
		}
	}
	stats.Mean = sum / float64(stats.Valid)
	stats.UpperBand = stats.Mean * 1.2
	stats.LowerBand = stats.Mean * 0.8

	// Sample standard deviation; a single reading has no defined spread.
	if stats.Valid >= 2 {
		var sq float64
		for _, t := range tensions {
			d := t - stats.Mean
			sq += d * d
		}
		stats.StdDev = math.Sqrt(sq / float64(stats.Valid-1))
	}
	return stats
}
