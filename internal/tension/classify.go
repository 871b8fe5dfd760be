package tension

import (
	"fmt"

	"github.com/spokeworks/wheelsmith/internal/models"
)

// QualityStatus is the overall verdict for a measurement session.
type QualityStatus string

const (
	QualityWellBalanced  QualityStatus = "well_balanced"
	QualityNeedsTruing   QualityStatus = "needs_truing"
	QualityUnevenTension QualityStatus = "uneven_tension"
)

// QualityReport combines the per-side issues into one verdict.
type QualityReport struct {
	Status QualityStatus
	Issues []string
}

// StdDevThreshold is the per-side standard deviation (kgf) above which a
// high-variance issue is raised.
const StdDevThreshold = 10.0

// Classify derives the session verdict from the per-side statistics.
// Deviation-tolerance violations take priority: any side with readings
// outside the ±20% band classifies the wheel as needing truing, regardless
// of what other issues are present.
func Classify(a SessionAnalysis) QualityReport {
	var report QualityReport
	needsTruing := false

	for _, s := range []struct {
		side  models.Side
		stats SideStats
	}{
		{models.SideLeft, a.Left},
		{models.SideRight, a.Right},
	} {
		if s.stats.OutOfRange > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"%d spokes on %s side outside recommended tension range", s.stats.OutOfRange, s.side))
		}
		if s.stats.OutOfBand > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"%d spokes on %s side outside ±20%% tolerance", s.stats.OutOfBand, s.side))
			needsTruing = true
		}
		if s.stats.StdDev > StdDevThreshold {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"High tension variance on %s side (σ=%.1f)", s.side, s.stats.StdDev))
		}
	}

	switch {
	case len(report.Issues) == 0:
		report.Status = QualityWellBalanced
	case needsTruing:
		report.Status = QualityNeedsTruing
	default:
		report.Status = QualityUnevenTension
	}
	return report
}
