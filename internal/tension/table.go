package tension

import (
	"sort"

	"github.com/spokeworks/wheelsmith/internal/models"
)

// CalibrationTable is the ordered set of (reading, tension) reference
// points for one spoke type. Points are sorted by reading at construction;
// the reading→tension mapping is assumed monotonically increasing.
type CalibrationTable struct {
	points []models.CalibrationPoint
}

// NewCalibrationTable builds a table from the given points. The input slice
// is copied and sorted by reading so callers can pass store results as-is.
func NewCalibrationTable(points []models.CalibrationPoint) *CalibrationTable {
	sorted := make([]models.CalibrationPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Reading < sorted[j].Reading })
	return &CalibrationTable{points: sorted}
}

func (t *CalibrationTable) Empty() bool {
	return t == nil || len(t.points) == 0
}

func (t *CalibrationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// MinReading returns the lowest gauge reading the table covers.
func (t *CalibrationTable) MinReading() float64 {
	if t.Empty() {
		return 0
	}
	return t.points[0].Reading
}

// MaxReading returns the highest gauge reading the table covers.
func (t *CalibrationTable) MaxReading() float64 {
	if t.Empty() {
		return 0
	}
	return t.points[len(t.points)-1].Reading
}

// MinTension returns the tension at the table's lowest reading.
func (t *CalibrationTable) MinTension() float64 {
	if t.Empty() {
		return 0
	}
	return t.points[0].Tension
}

// MaxTension returns the tension at the table's highest reading.
func (t *CalibrationTable) MaxTension() float64 {
	if t.Empty() {
		return 0
	}
	return t.points[len(t.points)-1].Tension
}
