// Package measure implements the write path for tension measurements:
// converting a submitted gauge reading, classifying it against the build's
// tension range and the side's running mean, and persisting the result.
package measure

import (
	"fmt"
	"log"

	"github.com/spokeworks/wheelsmith/internal/metrics"
	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

// Storage is the repository surface the recorder needs. *store.Store
// satisfies it; tests may substitute their own.
type Storage interface {
	GetSpoke(id string) (*models.Spoke, error)
	GetSpokeType(id string) (*models.SpokeType, error)
	GetCalibrationPoints(spokeTypeID string) ([]models.CalibrationPoint, error)
	GetSessionReadings(sessionID string) ([]models.TensionReading, error)
	UpsertReading(r models.TensionReading) error
	DeleteReading(sessionID string, spokeNumber int, side models.Side) error
	ReplaceSessionReadings(sessionID string, readings []models.TensionReading) error
}

type Recorder struct {
	store Storage
}

func NewRecorder(store Storage) *Recorder {
	return &Recorder{store: store}
}

// Entry is one submitted measurement in a bulk rewrite.
type Entry struct {
	SpokeNumber int
	Side        models.Side
	Reading     float64
}

// BuildContext carries the per-side calibration tables and resolved range
// for one build, loaded once per submission batch.
type BuildContext struct {
	Range  tension.TensionRange
	tables map[models.Side]*tension.CalibrationTable
}

// Table returns the calibration table for the given side; nil when the
// build has no spoke (or no known spoke type) on that side.
func (c *BuildContext) Table(side models.Side) *tension.CalibrationTable {
	return c.tables[side]
}

// LoadContext resolves a build's spoke types and calibration tables.
// A missing spoke or spoke type on a side degrades that side's table to
// nil rather than failing, so one bad reference never blocks the session.
func (r *Recorder) LoadContext(build models.WheelBuild) (*BuildContext, error) {
	ctx := &BuildContext{tables: make(map[models.Side]*tension.CalibrationTable)}

	var left, right *models.SpokeType
	var err error

	if left, err = r.sideSpokeType(build.SpokeLeftID.String, build.SpokeLeftID.Valid); err != nil {
		return nil, fmt.Errorf("resolve left spoke: %w", err)
	}
	if right, err = r.sideSpokeType(build.SpokeRightID.String, build.SpokeRightID.Valid); err != nil {
		return nil, fmt.Errorf("resolve right spoke: %w", err)
	}

	ctx.Range = tension.ResolveRange(left, right)

	if left != nil {
		if ctx.tables[models.SideLeft], err = r.loadTable(left.ID); err != nil {
			return nil, err
		}
	}
	if right != nil {
		if left != nil && right.ID == left.ID {
			ctx.tables[models.SideRight] = ctx.tables[models.SideLeft]
		} else if ctx.tables[models.SideRight], err = r.loadTable(right.ID); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

func (r *Recorder) sideSpokeType(spokeID string, valid bool) (*models.SpokeType, error) {
	if !valid {
		return nil, nil
	}
	spoke, err := r.store.GetSpoke(spokeID)
	if err != nil {
		return nil, err
	}
	if spoke == nil {
		log.Printf("measure: spoke %s not found, side treated as unconfigured", spokeID)
		return nil, nil
	}
	st, err := r.store.GetSpokeType(spoke.SpokeTypeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		log.Printf("measure: spoke type %s not found, side treated as unconfigured", spoke.SpokeTypeID)
	}
	return st, nil
}

func (r *Recorder) loadTable(spokeTypeID string) (*tension.CalibrationTable, error) {
	points, err := r.store.GetCalibrationPoints(spokeTypeID)
	if err != nil {
		return nil, fmt.Errorf("load calibration table %s: %w", spokeTypeID, err)
	}
	if len(points) == 0 {
		log.Printf("measure: spoke type %s has an empty calibration table", spokeTypeID)
	}
	return tension.NewCalibrationTable(points), nil
}

// Record converts, classifies and upserts a single reading. The deviation
// status is computed against the side's mean over all valid readings in
// the session with this cell's new value substituted for any previous one
// (replace-then-average).
func (r *Recorder) Record(ctx *BuildContext, sessionID string, spokeNumber int, side models.Side, reading float64) (models.TensionReading, error) {
	tr := models.TensionReading{
		SessionID:   sessionID,
		SpokeNumber: spokeNumber,
		Side:        side,
		Reading:     reading,
	}

	result := tension.Convert(reading, ctx.Table(side))
	metrics.ConversionsTotal.WithLabelValues(string(result.Status)).Inc()

	if !result.Converted() {
		tr.RangeStatus = models.RangeStatus(result.Status)
		tr.DeviationStatus = models.DeviationUnknown
		if err := r.store.UpsertReading(tr); err != nil {
			return tr, fmt.Errorf("upsert reading: %w", err)
		}
		metrics.ReadingsRecorded.WithLabelValues(string(side), string(tr.RangeStatus)).Inc()
		return tr, nil
	}

	tr.Tension.Float64 = result.Tension
	tr.Tension.Valid = true
	metrics.ReadingTension.Observe(result.Tension)
	tr.RangeStatus = classifyRange(result.Tension, ctx.Range, side)

	existing, err := r.store.GetSessionReadings(sessionID)
	if err != nil {
		return tr, fmt.Errorf("load session readings: %w", err)
	}
	mean := sideMeanWithReplacement(existing, tr)
	tr.DeviationStatus = classifyDeviation(result.Tension, mean)

	if err := r.store.UpsertReading(tr); err != nil {
		return tr, fmt.Errorf("upsert reading: %w", err)
	}
	metrics.ReadingsRecorded.WithLabelValues(string(side), string(tr.RangeStatus)).Inc()
	return tr, nil
}

// Remove deletes a measurement cell; a blank submission in the UI maps to
// this.
func (r *Recorder) Remove(sessionID string, spokeNumber int, side models.Side) error {
	return r.store.DeleteReading(sessionID, spokeNumber, side)
}

// RecordAll rewrites a session's entire reading set. Pass one converts and
// range-classifies every entry; pass two computes each side's mean over the
// valid pass-one tensions and assigns deviation statuses.
func (r *Recorder) RecordAll(ctx *BuildContext, sessionID string, entries []Entry) ([]models.TensionReading, error) {
	readings := make([]models.TensionReading, 0, len(entries))

	sideSum := map[models.Side]float64{}
	sideCount := map[models.Side]int{}

	for _, e := range entries {
		tr := models.TensionReading{
			SessionID:   sessionID,
			SpokeNumber: e.SpokeNumber,
			Side:        e.Side,
			Reading:     e.Reading,
		}
		result := tension.Convert(e.Reading, ctx.Table(e.Side))
		metrics.ConversionsTotal.WithLabelValues(string(result.Status)).Inc()

		if result.Converted() {
			tr.Tension.Float64 = result.Tension
			tr.Tension.Valid = true
			tr.RangeStatus = classifyRange(result.Tension, ctx.Range, e.Side)
			sideSum[e.Side] += result.Tension
			sideCount[e.Side]++
			metrics.ReadingTension.Observe(result.Tension)
		} else {
			tr.RangeStatus = models.RangeStatus(result.Status)
			tr.DeviationStatus = models.DeviationUnknown
		}
		readings = append(readings, tr)
	}

	for i := range readings {
		if !readings[i].Tension.Valid {
			continue
		}
		var mean float64
		if n := sideCount[readings[i].Side]; n > 0 {
			mean = sideSum[readings[i].Side] / float64(n)
		}
		readings[i].DeviationStatus = classifyDeviation(readings[i].Tension.Float64, mean)
	}

	if err := r.store.ReplaceSessionReadings(sessionID, readings); err != nil {
		return nil, fmt.Errorf("replace session readings: %w", err)
	}
	for _, tr := range readings {
		metrics.ReadingsRecorded.WithLabelValues(string(tr.Side), string(tr.RangeStatus)).Inc()
	}
	return readings, nil
}

func classifyRange(t float64, rng tension.TensionRange, side models.Side) models.RangeStatus {
	switch {
	case t < rng.MinTension:
		return models.RangeUnder
	case t > rng.SideMax(side):
		return models.RangeOver
	default:
		return models.RangeInRange
	}
}

// classifyDeviation compares a tension against ±20% of the side mean. A
// zero mean means there were no valid readings to compare against, which
// defaults to in range.
func classifyDeviation(t, mean float64) models.DeviationStatus {
	if mean == 0 {
		return models.DeviationInRange
	}
	switch {
	case t > mean*1.2:
		return models.DeviationOver
	case t < mean*0.8:
		return models.DeviationUnder
	default:
		return models.DeviationInRange
	}
}

// sideMeanWithReplacement averages the valid tensions on the new reading's
// side, substituting the new value for any previous reading in the same
// cell and including the new reading itself.
func sideMeanWithReplacement(existing []models.TensionReading, next models.TensionReading) float64 {
	sum := next.Tension.Float64
	count := 1
	for _, r := range existing {
		if r.Side != next.Side {
			continue
		}
		if r.SpokeNumber == next.SpokeNumber {
			continue // replaced by the new value
		}
		if !r.Tension.Valid {
			continue
		}
		sum += r.Tension.Float64
		count++
	}
	return sum / float64(count)
}
