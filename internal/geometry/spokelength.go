// Package geometry computes spoke length recommendations from hub and rim
// measurements.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spokeworks/wheelsmith/internal/models"
)

// SideParams are the measurements needed to size one side's spokes.
type SideParams struct {
	FlangeDiameter    float64 // mm
	FlangeOffset      float64 // mm, hub center to flange
	SpokeHoleDiameter float64 // mm
	ERD               float64 // mm, effective rim diameter
	Holes             int     // spoke count for the whole wheel
	Crosses           int     // lacing crosses; 0 is radial
}

// Length returns the recommended spoke length in mm for one side, using
// the standard closed-form calculation, rounded to one decimal.
func Length(p SideParams) float64 {
	rHub := p.FlangeDiameter / 2
	rRim := p.ERD / 2
	alpha := 2 * math.Pi * float64(p.Crosses) / (float64(p.Holes) / 2)

	l := math.Sqrt(p.FlangeOffset*p.FlangeOffset +
		rHub*rHub + rRim*rRim -
		2*rHub*rRim*math.Cos(alpha))
	l -= p.SpokeHoleDiameter / 2

	return math.Round(l*10) / 10
}

// Crosses parses a lacing pattern string ("radial", "2-cross", "3-cross")
// into a cross count.
func Crosses(pattern string) (int, error) {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "radial" {
		return 0, nil
	}
	num, ok := strings.CutSuffix(p, "-cross")
	if !ok {
		return 0, fmt.Errorf("unrecognized lacing pattern %q", pattern)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("unrecognized lacing pattern %q", pattern)
	}
	return n, nil
}

// CanCalculate reports whether a build carries everything the length
// calculation needs, along with the human-readable names of whatever is
// missing.
func CanCalculate(b models.WheelBuild) (bool, []string) {
	var missing []string

	if !b.HubID.Valid {
		missing = append(missing, "hub")
	}
	if !b.RimID.Valid {
		missing = append(missing, "rim")
	}
	if !b.SpokeLeftID.Valid && !b.SpokeRightID.Valid {
		missing = append(missing, "spoke")
	}
	if !b.NippleID.Valid {
		missing = append(missing, "nipple")
	}
	if !b.LacingPattern.Valid || b.LacingPattern.String == "" {
		missing = append(missing, "lacing pattern")
	}
	if !b.SpokeCount.Valid || b.SpokeCount.Int64 == 0 {
		missing = append(missing, "spoke count")
	}

	return len(missing) == 0, missing
}

// BuildLengths computes both sides' recommended lengths for a configured
// build. Callers must have verified CanCalculate first; this is the
// documented precondition for the length calculation.
func BuildLengths(b models.WheelBuild, hub models.Hub, rim models.Rim) (left, right float64, err error) {
	crosses, err := Crosses(b.LacingPattern.String)
	if err != nil {
		return 0, 0, err
	}
	holes := int(b.SpokeCount.Int64)

	left = Length(SideParams{
		FlangeDiameter:    hub.LeftFlangeDiameter,
		FlangeOffset:      hub.LeftFlangeOffset,
		SpokeHoleDiameter: hub.SpokeHoleDiameter,
		ERD:               rim.ERD,
		Holes:             holes,
		Crosses:           crosses,
	})
	right = Length(SideParams{
		FlangeDiameter:    hub.RightFlangeDiameter,
		FlangeOffset:      hub.RightFlangeOffset,
		SpokeHoleDiameter: hub.SpokeHoleDiameter,
		ERD:               rim.ERD,
		Holes:             holes,
		Crosses:           crosses,
	})
	return left, right, nil
}
