package chart

import (
	"bytes"
	"database/sql"
	"image/png"
	"testing"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

func valid(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestRender(t *testing.T) {
	readings := []models.TensionReading{
		{SpokeNumber: 1, Side: models.SideLeft, Reading: 22, Tension: valid(110), RangeStatus: models.RangeInRange},
		{SpokeNumber: 1, Side: models.SideRight, Reading: 26, Tension: valid(130), RangeStatus: models.RangeOver},
		{SpokeNumber: 2, Side: models.SideLeft, Reading: 18, Tension: valid(80), RangeStatus: models.RangeUnder},
		{SpokeNumber: 2, Side: models.SideRight, Reading: 10, RangeStatus: models.RangeBelowTable},
	}
	rng := tension.TensionRange{MinTension: 100, MaxTension: 120, LeftMax: 120, RightMax: 120}

	data, err := Render(readings, rng)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		t.Errorf("bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}
}

func TestRender_Empty(t *testing.T) {
	data, err := Render(nil, tension.DefaultRange)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
}
