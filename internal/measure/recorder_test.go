package measure

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/store"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

// identity-shaped table: tension == reading across [50, 120] kgf.
var identityPoints = []struct{ reading, tension float64 }{
	{50, 50}, {120, 120},
}

func setupRecorder(t *testing.T) (*Recorder, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRecorder(st), st
}

func seedBuild(t *testing.T, st *store.Store, minR, maxR float64) models.WheelBuild {
	t.Helper()
	typeID, err := st.CreateSpokeType(models.SpokeType{
		Name: "Steel Round 2.0mm", Material: "Steel", Shape: "Round",
		MinReading: minR, MaxReading: maxR, MinTension: minR, MaxTension: maxR,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range identityPoints {
		if err := st.InsertCalibrationPoint(models.CalibrationPoint{SpokeTypeID: typeID, Reading: p.reading, Tension: p.tension}); err != nil {
			t.Fatal(err)
		}
	}
	spokeID, err := st.CreateSpoke(models.Spoke{SpokeTypeID: typeID, Length: 262})
	if err != nil {
		t.Fatal(err)
	}
	return models.WheelBuild{
		SpokeLeftID:  sql.NullString{String: spokeID, Valid: true},
		SpokeRightID: sql.NullString{String: spokeID, Valid: true},
	}
}

func TestRecord_InRangeReading(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}

	tr, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 60)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !tr.Tension.Valid || tr.Tension.Float64 != 60 {
		t.Errorf("Tension = %+v, want 60", tr.Tension)
	}
	if tr.RangeStatus != models.RangeInRange {
		t.Errorf("RangeStatus = %q, want in_range", tr.RangeStatus)
	}
	// First reading on the side: mean is its own value, so in band.
	if tr.DeviationStatus != models.DeviationInRange {
		t.Errorf("DeviationStatus = %q, want in_range", tr.DeviationStatus)
	}
}

func TestRecord_OutOfTableReading(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 20)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if tr.Tension.Valid {
		t.Error("Tension.Valid = true, want null")
	}
	if tr.RangeStatus != models.RangeBelowTable {
		t.Errorf("RangeStatus = %q, want below_table", tr.RangeStatus)
	}
	if tr.DeviationStatus != models.DeviationUnknown {
		t.Errorf("DeviationStatus = %q, want unknown", tr.DeviationStatus)
	}

	tr, err = rec.Record(ctx, "sess1", 2, models.SideLeft, 150)
	if err != nil {
		t.Fatal(err)
	}
	if tr.RangeStatus != models.RangeAboveTable {
		t.Errorf("RangeStatus = %q, want above_table", tr.RangeStatus)
	}
}

func TestRecord_ReplaceThenAverage(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	// Two readings establish a mean of 100.
	if _, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Record(ctx, "sess1", 2, models.SideLeft, 100); err != nil {
		t.Fatal(err)
	}

	// Resubmit cell 1 at 70: the mean must use the replacement (70+100)/2=85,
	// band [68, 102], so 70 is in band. Against the stale mean of 100 it
	// would have been classified under (band floor 80).
	tr, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 70)
	if err != nil {
		t.Fatal(err)
	}
	if tr.DeviationStatus != models.DeviationInRange {
		t.Errorf("DeviationStatus = %q, want in_range under replace-then-average", tr.DeviationStatus)
	}

	readings, err := st.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 2 {
		t.Fatalf("len(readings) = %d, want 2", len(readings))
	}
}

func TestRecord_DeviationOver(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range []float64{60, 60, 60} {
		if _, err := rec.Record(ctx, "sess1", i+1, models.SideLeft, v); err != nil {
			t.Fatal(err)
		}
	}

	// Mean including the new reading: (60*3+110)/4 = 72.5, band [58, 87];
	// 110 exceeds the ceiling.
	tr, err := rec.Record(ctx, "sess1", 4, models.SideLeft, 110)
	if err != nil {
		t.Fatal(err)
	}
	if tr.DeviationStatus != models.DeviationOver {
		t.Errorf("DeviationStatus = %q, want over", tr.DeviationStatus)
	}
}

func TestRecordAll_BulkTwoPass(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	// A stale reading that the bulk rewrite must discard.
	if _, err := rec.Record(ctx, "sess1", 9, models.SideRight, 60); err != nil {
		t.Fatal(err)
	}

	// The five-spoke scenario: tensions 50,55,52,90,53; mean 60, band
	// [48,72]; the 90 is out of the deviation band.
	entries := []Entry{
		{1, models.SideLeft, 50},
		{2, models.SideLeft, 55},
		{3, models.SideLeft, 52},
		{4, models.SideLeft, 90},
		{5, models.SideLeft, 53},
	}
	readings, err := rec.RecordAll(ctx, "sess1", entries)
	if err != nil {
		t.Fatalf("RecordAll: %v", err)
	}
	if len(readings) != 5 {
		t.Fatalf("len(readings) = %d, want 5", len(readings))
	}

	var over int
	for _, r := range readings {
		if r.DeviationStatus == models.DeviationOver {
			over++
			if r.SpokeNumber != 4 {
				t.Errorf("spoke %d flagged over, want only spoke 4", r.SpokeNumber)
			}
		}
	}
	if over != 1 {
		t.Errorf("deviation-over count = %d, want 1", over)
	}

	analysis := tension.Analyze(readings, ctx.Range)
	report := tension.Classify(analysis)
	if report.Status != tension.QualityNeedsTruing {
		t.Errorf("quality = %q, want needs_truing", report.Status)
	}

	stored, err := st.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 5 {
		t.Errorf("stored readings = %d, want 5 (stale right-side reading discarded)", len(stored))
	}
}

func TestRecordAll_WellBalancedScenario(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	readings, err := rec.RecordAll(ctx, "sess1", []Entry{
		{1, models.SideLeft, 60},
		{1, models.SideRight, 60},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range readings {
		if r.RangeStatus != models.RangeInRange {
			t.Errorf("spoke %d/%s RangeStatus = %q, want in_range", r.SpokeNumber, r.Side, r.RangeStatus)
		}
		if r.DeviationStatus != models.DeviationInRange {
			t.Errorf("spoke %d/%s DeviationStatus = %q, want in_range", r.SpokeNumber, r.Side, r.DeviationStatus)
		}
	}

	report := tension.Classify(tension.Analyze(readings, ctx.Range))
	if report.Status != tension.QualityWellBalanced {
		t.Errorf("quality = %q, want well_balanced", report.Status)
	}
}

func TestRecordAll_MixedValidAndOutOfTable(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}

	readings, err := rec.RecordAll(ctx, "sess1", []Entry{
		{1, models.SideLeft, 60},
		{2, models.SideLeft, 20}, // below table
		{3, models.SideLeft, 62},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range readings {
		if r.SpokeNumber == 2 {
			if r.DeviationStatus != models.DeviationUnknown {
				t.Errorf("out-of-table DeviationStatus = %q, want unknown", r.DeviationStatus)
			}
			continue
		}
		// Mean over valid readings only: (60+62)/2 = 61.
		if r.DeviationStatus != models.DeviationInRange {
			t.Errorf("spoke %d DeviationStatus = %q, want in_range", r.SpokeNumber, r.DeviationStatus)
		}
	}
}

func TestLoadContext_MissingSpokesFallsBack(t *testing.T) {
	rec, _ := setupRecorder(t)

	ctx, err := rec.LoadContext(models.WheelBuild{})
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if ctx.Range != tension.DefaultRange {
		t.Errorf("Range = %+v, want DefaultRange", ctx.Range)
	}

	// No table on either side: conversion degrades, never panics.
	tr, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 25)
	if err != nil {
		t.Fatal(err)
	}
	if tr.RangeStatus != models.RangeBelowTable {
		t.Errorf("RangeStatus = %q, want below_table for missing table", tr.RangeStatus)
	}
}

func TestRemove(t *testing.T) {
	rec, st := setupRecorder(t)
	build := seedBuild(t, st, 50, 120)

	ctx, err := rec.LoadContext(build)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Record(ctx, "sess1", 1, models.SideLeft, 60); err != nil {
		t.Fatal(err)
	}
	if err := rec.Remove("sess1", 1, models.SideLeft); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	readings, err := st.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 0 {
		t.Errorf("len(readings) = %d, want 0", len(readings))
	}
}
