package tension

import (
	"database/sql"
	"math"
	"testing"

	"github.com/spokeworks/wheelsmith/internal/models"
)

func reading(side models.Side, n int, tension float64) models.TensionReading {
	return models.TensionReading{
		SpokeNumber:     n,
		Side:            side,
		Tension:         sql.NullFloat64{Float64: tension, Valid: true},
		RangeStatus:     models.RangeInRange,
		DeviationStatus: models.DeviationInRange,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyze_BasicStats(t *testing.T) {
	readings := []models.TensionReading{
		reading(models.SideLeft, 1, 100),
		reading(models.SideLeft, 2, 110),
		reading(models.SideLeft, 3, 90),
		reading(models.SideRight, 1, 120),
	}

	a := Analyze(readings, DefaultRange)

	if a.Left.Count != 3 || a.Left.Valid != 3 {
		t.Fatalf("left count/valid = %d/%d, want 3/3", a.Left.Count, a.Left.Valid)
	}
	if !almostEqual(a.Left.Mean, 100) {
		t.Errorf("left mean = %v, want 100", a.Left.Mean)
	}
	if a.Left.Min != 90 || a.Left.Max != 110 {
		t.Errorf("left min/max = %v/%v, want 90/110", a.Left.Min, a.Left.Max)
	}
	if !almostEqual(a.Left.StdDev, 10) {
		t.Errorf("left stddev = %v, want 10", a.Left.StdDev)
	}
	if !almostEqual(a.Left.UpperBand, 120) || !almostEqual(a.Left.LowerBand, 80) {
		t.Errorf("left band = [%v, %v], want [80, 120]", a.Left.LowerBand, a.Left.UpperBand)
	}

	if a.Right.Count != 1 || a.Right.Valid != 1 {
		t.Fatalf("right count/valid = %d/%d, want 1/1", a.Right.Count, a.Right.Valid)
	}
	if a.Right.Mean != 120 {
		t.Errorf("right mean = %v, want 120", a.Right.Mean)
	}
	if a.Right.StdDev != 0 {
		t.Errorf("right stddev = %v, want 0 for a single reading", a.Right.StdDev)
	}
}

func TestAnalyze_EmptySide(t *testing.T) {
	a := Analyze([]models.TensionReading{reading(models.SideLeft, 1, 100)}, DefaultRange)

	if a.Right != (SideStats{}) {
		t.Errorf("right stats = %+v, want all-zero block", a.Right)
	}
}

func TestAnalyze_NoReadings(t *testing.T) {
	a := Analyze(nil, DefaultRange)
	if a.Left != (SideStats{}) || a.Right != (SideStats{}) {
		t.Errorf("stats = %+v / %+v, want all-zero blocks", a.Left, a.Right)
	}
}

func TestAnalyze_OutOfTableExcludedFromAggregation(t *testing.T) {
	readings := []models.TensionReading{
		reading(models.SideLeft, 1, 100),
		reading(models.SideLeft, 2, 100),
		{
			SpokeNumber:     3,
			Side:            models.SideLeft,
			Reading:         8,
			RangeStatus:     models.RangeBelowTable,
			DeviationStatus: models.DeviationUnknown,
		},
	}

	a := Analyze(readings, DefaultRange)

	if a.Left.Count != 3 {
		t.Errorf("count = %d, want 3 (out-of-table still counted)", a.Left.Count)
	}
	if a.Left.Valid != 2 {
		t.Errorf("valid = %d, want 2", a.Left.Valid)
	}
	if !almostEqual(a.Left.Mean, 100) {
		t.Errorf("mean = %v, want 100 (out-of-table excluded)", a.Left.Mean)
	}
	if a.Left.OutOfRange != 1 {
		t.Errorf("out of range = %d, want 1", a.Left.OutOfRange)
	}
	if a.Left.OutOfBand != 1 {
		t.Errorf("out of band = %d, want 1", a.Left.OutOfBand)
	}
}

func TestAnalyze_StatusTallies(t *testing.T) {
	readings := []models.TensionReading{
		reading(models.SideLeft, 1, 100),
		{SpokeNumber: 2, Side: models.SideLeft, Tension: sql.NullFloat64{Float64: 130, Valid: true},
			RangeStatus: models.RangeOver, DeviationStatus: models.DeviationOver},
		{SpokeNumber: 3, Side: models.SideLeft, Tension: sql.NullFloat64{Float64: 40, Valid: true},
			RangeStatus: models.RangeUnder, DeviationStatus: models.DeviationInRange},
	}

	a := Analyze(readings, DefaultRange)

	if a.Left.OutOfRange != 2 {
		t.Errorf("out of range = %d, want 2", a.Left.OutOfRange)
	}
	if a.Left.OutOfBand != 1 {
		t.Errorf("out of band = %d, want 1", a.Left.OutOfBand)
	}
}
