package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spokeworks/wheelsmith/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func seedSpokeType(t *testing.T, store *Store, name string) string {
	t.Helper()
	id, err := store.CreateSpokeType(models.SpokeType{
		Name: name, Material: "Steel", Shape: "Round", Dimensions: "2.0mm",
		MinReading: 20, MaxReading: 30, MinTension: 60, MaxTension: 120,
	})
	if err != nil {
		t.Fatalf("CreateSpokeType: %v", err)
	}
	for _, p := range []models.CalibrationPoint{
		{SpokeTypeID: id, Reading: 20, Tension: 60},
		{SpokeTypeID: id, Reading: 25, Tension: 90},
		{SpokeTypeID: id, Reading: 30, Tension: 120},
	} {
		if err := store.InsertCalibrationPoint(p); err != nil {
			t.Fatalf("InsertCalibrationPoint: %v", err)
		}
	}
	return id
}

func TestSpokeTypeAndCalibrationPoints(t *testing.T) {
	store := setupTestStore(t)
	id := seedSpokeType(t, store, "Steel Round 2.0mm")

	st, err := store.GetSpokeType(id)
	if err != nil {
		t.Fatalf("GetSpokeType: %v", err)
	}
	if st == nil {
		t.Fatal("GetSpokeType returned nil")
	}
	if st.Name != "Steel Round 2.0mm" {
		t.Errorf("Name = %q", st.Name)
	}
	if st.MinTension != 60 || st.MaxTension != 120 {
		t.Errorf("tension bounds = (%v, %v), want (60, 120)", st.MinTension, st.MaxTension)
	}

	points, err := store.GetCalibrationPoints(id)
	if err != nil {
		t.Fatalf("GetCalibrationPoints: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}
	if points[0].Reading != 20 || points[2].Reading != 30 {
		t.Errorf("points not ordered by reading: %v", points)
	}
}

func TestCalibrationPoint_UniquePerReading(t *testing.T) {
	store := setupTestStore(t)
	id := seedSpokeType(t, store, "Steel Round 2.0mm")

	err := store.InsertCalibrationPoint(models.CalibrationPoint{SpokeTypeID: id, Reading: 25, Tension: 95})
	if err == nil {
		t.Fatal("expected unique constraint violation for duplicate (spoke_type, reading)")
	}
}

func TestGetSpokeType_Missing(t *testing.T) {
	store := setupTestStore(t)
	st, err := store.GetSpokeType("no-such-id")
	if err != nil {
		t.Fatalf("GetSpokeType: %v", err)
	}
	if st != nil {
		t.Errorf("GetSpokeType = %+v, want nil", st)
	}
}

func TestUpsertReading_OverwritesCell(t *testing.T) {
	store := setupTestStore(t)

	r := models.TensionReading{
		SessionID:       "sess1",
		SpokeNumber:     4,
		Side:            models.SideLeft,
		Reading:         22,
		Tension:         sql.NullFloat64{Float64: 72, Valid: true},
		RangeStatus:     models.RangeInRange,
		DeviationStatus: models.DeviationInRange,
	}
	if err := store.UpsertReading(r); err != nil {
		t.Fatalf("UpsertReading: %v", err)
	}

	r.Reading = 24
	r.Tension = sql.NullFloat64{Float64: 84, Valid: true}
	if err := store.UpsertReading(r); err != nil {
		t.Fatalf("UpsertReading overwrite: %v", err)
	}

	readings, err := store.GetSessionReadings("sess1")
	if err != nil {
		t.Fatalf("GetSessionReadings: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("len(readings) = %d, want 1 (upsert must not duplicate)", len(readings))
	}
	if readings[0].Reading != 24 {
		t.Errorf("Reading = %v, want 24", readings[0].Reading)
	}
	if readings[0].Tension.Float64 != 84 {
		t.Errorf("Tension = %v, want 84", readings[0].Tension.Float64)
	}
}

func TestUpsertReading_NullTension(t *testing.T) {
	store := setupTestStore(t)

	r := models.TensionReading{
		SessionID:       "sess1",
		SpokeNumber:     1,
		Side:            models.SideRight,
		Reading:         8,
		RangeStatus:     models.RangeBelowTable,
		DeviationStatus: models.DeviationUnknown,
	}
	if err := store.UpsertReading(r); err != nil {
		t.Fatalf("UpsertReading: %v", err)
	}

	readings, err := store.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if readings[0].Tension.Valid {
		t.Error("Tension.Valid = true, want null for out-of-table reading")
	}
	if readings[0].RangeStatus != models.RangeBelowTable {
		t.Errorf("RangeStatus = %q, want below_table", readings[0].RangeStatus)
	}
}

func TestDeleteReading(t *testing.T) {
	store := setupTestStore(t)

	r := models.TensionReading{
		SessionID: "sess1", SpokeNumber: 2, Side: models.SideLeft, Reading: 22,
		RangeStatus: models.RangeInRange, DeviationStatus: models.DeviationInRange,
	}
	if err := store.UpsertReading(r); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteReading("sess1", 2, models.SideLeft); err != nil {
		t.Fatalf("DeleteReading: %v", err)
	}

	readings, err := store.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 0 {
		t.Errorf("len(readings) = %d, want 0", len(readings))
	}
}

func TestReplaceSessionReadings(t *testing.T) {
	store := setupTestStore(t)

	old := models.TensionReading{
		SessionID: "sess1", SpokeNumber: 1, Side: models.SideLeft, Reading: 20,
		RangeStatus: models.RangeInRange, DeviationStatus: models.DeviationInRange,
	}
	if err := store.UpsertReading(old); err != nil {
		t.Fatal(err)
	}

	replacement := []models.TensionReading{
		{SpokeNumber: 2, Side: models.SideLeft, Reading: 22, RangeStatus: models.RangeInRange, DeviationStatus: models.DeviationInRange},
		{SpokeNumber: 2, Side: models.SideRight, Reading: 24, RangeStatus: models.RangeInRange, DeviationStatus: models.DeviationInRange},
	}
	if err := store.ReplaceSessionReadings("sess1", replacement); err != nil {
		t.Fatalf("ReplaceSessionReadings: %v", err)
	}

	readings, err := store.GetSessionReadings("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 2 {
		t.Fatalf("len(readings) = %d, want 2 (old set discarded)", len(readings))
	}
	for _, r := range readings {
		if r.SpokeNumber != 2 {
			t.Errorf("unexpected surviving reading: %+v", r)
		}
	}
}

func TestDeleteBuild_Cascades(t *testing.T) {
	store := setupTestStore(t)

	buildID, err := store.CreateBuild(models.WheelBuild{Name: "Commuter rear"})
	if err != nil {
		t.Fatalf("CreateBuild: %v", err)
	}

	sessID, err := store.CreateSession(models.TensionSession{
		WheelBuildID: buildID, Name: "Initial lacing", Date: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := store.UpsertReading(models.TensionReading{
		SessionID: sessID, SpokeNumber: 1, Side: models.SideLeft, Reading: 22,
		RangeStatus: models.RangeInRange, DeviationStatus: models.DeviationInRange,
	}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteBuild(buildID); err != nil {
		t.Fatalf("DeleteBuild: %v", err)
	}

	if b, _ := store.GetBuild(buildID); b != nil {
		t.Error("build survived delete")
	}
	if sess, _ := store.GetSession(sessID); sess != nil {
		t.Error("session survived build delete")
	}
	readings, err := store.GetSessionReadings(sessID)
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 0 {
		t.Errorf("len(readings) = %d, want 0 after cascade", len(readings))
	}
}

func TestBuildsUsingComponent(t *testing.T) {
	store := setupTestStore(t)

	hubID, err := store.CreateHub(models.Hub{Make: "Shimano", Model: "Deore HB-M6000", Type: "front", OLD: 100})
	if err != nil {
		t.Fatalf("CreateHub: %v", err)
	}
	stID := seedSpokeType(t, store, "Steel Round 2.0mm")
	spokeID, err := store.CreateSpoke(models.Spoke{SpokeTypeID: stID, Length: 262})
	if err != nil {
		t.Fatalf("CreateSpoke: %v", err)
	}

	if _, err := store.CreateBuild(models.WheelBuild{
		Name:        "Front touring",
		HubID:       sql.NullString{String: hubID, Valid: true},
		SpokeLeftID: sql.NullString{String: spokeID, Valid: true},
	}); err != nil {
		t.Fatal(err)
	}

	builds, err := store.BuildsUsingHub(hubID)
	if err != nil {
		t.Fatalf("BuildsUsingHub: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("len(builds) = %d, want 1", len(builds))
	}

	builds, err = store.BuildsUsingSpoke(spokeID)
	if err != nil {
		t.Fatalf("BuildsUsingSpoke: %v", err)
	}
	if len(builds) != 1 {
		t.Errorf("len(builds) = %d, want 1 (spoke matched on either side)", len(builds))
	}

	builds, err = store.BuildsUsingHub("other-hub")
	if err != nil {
		t.Fatal(err)
	}
	if len(builds) != 0 {
		t.Errorf("len(builds) = %d, want 0", len(builds))
	}
}

func TestSpokeTypeForSpoke(t *testing.T) {
	store := setupTestStore(t)
	stID := seedSpokeType(t, store, "Steel Round 2.0mm")
	spokeID, err := store.CreateSpoke(models.Spoke{SpokeTypeID: stID, Length: 262})
	if err != nil {
		t.Fatal(err)
	}

	st, err := store.SpokeTypeForSpoke(spokeID)
	if err != nil {
		t.Fatalf("SpokeTypeForSpoke: %v", err)
	}
	if st == nil || st.ID != stID {
		t.Errorf("SpokeTypeForSpoke = %+v, want type %s", st, stID)
	}

	st, err = store.SpokeTypeForSpoke("missing")
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Errorf("SpokeTypeForSpoke(missing) = %+v, want nil", st)
	}
}
