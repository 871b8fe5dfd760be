package geometry

import (
	"database/sql"
	"math"
	"testing"

	"github.com/spokeworks/wheelsmith/internal/models"
)

func TestLength_Radial(t *testing.T) {
	// Radial lacing collapses the cosine term: length is the hypotenuse of
	// (offset, rim radius - hub radius) minus half the spoke hole.
	p := SideParams{
		FlangeDiameter:    60,
		FlangeOffset:      30,
		SpokeHoleDiameter: 2.4,
		ERD:               600,
		Holes:             32,
		Crosses:           0,
	}
	want := math.Sqrt(30*30+270*270) - 1.2
	want = math.Round(want*10) / 10

	if got := Length(p); got != want {
		t.Errorf("Length = %v, want %v", got, want)
	}
}

func TestLength_ThreeCross(t *testing.T) {
	p := SideParams{
		FlangeDiameter:    45,
		FlangeOffset:      35,
		SpokeHoleDiameter: 2.4,
		ERD:               605.4,
		Holes:             36,
		Crosses:           3,
	}
	got := Length(p)

	// Classic 36h 3-cross road wheel lands in the high 290s.
	if got < 290 || got > 305 {
		t.Errorf("Length = %v, want a plausible 3-cross length near 300mm", got)
	}

	// More crossings always lengthen the spoke.
	p.Crosses = 2
	if shorter := Length(p); shorter >= got {
		t.Errorf("2-cross length %v >= 3-cross length %v", shorter, got)
	}
}

func TestCrosses(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
		wantErr bool
	}{
		{"radial", 0, false},
		{"Radial", 0, false},
		{"2-cross", 2, false},
		{"3-cross", 3, false},
		{"4-cross", 4, false},
		{"three cross", 0, true},
		{"", 0, true},
		{"0-cross", 0, true},
	}
	for _, tt := range tests {
		got, err := Crosses(tt.pattern)
		if (err != nil) != tt.wantErr {
			t.Errorf("Crosses(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Crosses(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestCanCalculate(t *testing.T) {
	full := models.WheelBuild{
		HubID:         sql.NullString{String: "h", Valid: true},
		RimID:         sql.NullString{String: "r", Valid: true},
		SpokeLeftID:   sql.NullString{String: "s", Valid: true},
		NippleID:      sql.NullString{String: "n", Valid: true},
		LacingPattern: sql.NullString{String: "3-cross", Valid: true},
		SpokeCount:    sql.NullInt64{Int64: 32, Valid: true},
	}
	if ok, missing := CanCalculate(full); !ok {
		t.Errorf("CanCalculate = false, missing %v", missing)
	}

	empty := models.WheelBuild{}
	ok, missing := CanCalculate(empty)
	if ok {
		t.Fatal("CanCalculate = true for empty build")
	}
	want := []string{"hub", "rim", "spoke", "nipple", "lacing pattern", "spoke count"}
	if len(missing) != len(want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing[i], want[i])
		}
	}

	partial := full
	partial.RimID = sql.NullString{}
	ok, missing = CanCalculate(partial)
	if ok || len(missing) != 1 || missing[0] != "rim" {
		t.Errorf("partial: ok=%v missing=%v, want just rim", ok, missing)
	}
}

func TestBuildLengths(t *testing.T) {
	build := models.WheelBuild{
		LacingPattern: sql.NullString{String: "3-cross", Valid: true},
		SpokeCount:    sql.NullInt64{Int64: 36, Valid: true},
	}
	hub := models.Hub{
		LeftFlangeDiameter:  61,
		RightFlangeDiameter: 61,
		LeftFlangeOffset:    34,
		RightFlangeOffset:   23.4,
		SpokeHoleDiameter:   2.6,
	}
	rim := models.Rim{ERD: 605.4}

	left, right, err := BuildLengths(build, hub, rim)
	if err != nil {
		t.Fatalf("BuildLengths: %v", err)
	}
	// Asymmetric rear hub: the side with less offset gets a shorter spoke.
	if right >= left {
		t.Errorf("right %v >= left %v, want shorter drive side", right, left)
	}
	if left < 280 || left > 305 || right < 280 || right > 305 {
		t.Errorf("lengths (%v, %v) outside plausible band", left, right)
	}

	build.LacingPattern.String = "diagonal"
	if _, _, err := BuildLengths(build, hub, rim); err == nil {
		t.Error("expected error for unrecognized lacing pattern")
	}
}
