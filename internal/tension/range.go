package tension

import "github.com/spokeworks/wheelsmith/internal/models"

// TensionRange is the engineering-safe tension window for a build's spoke
// configuration. It is derived fresh for each analysis call and never
// persisted. With mixed spoke types the combined MaxTension is the lower of
// the two sides' rated maxima; LeftMax/RightMax keep the side-specific
// ceilings for per-side classification.
type TensionRange struct {
	MinTension float64 // kgf
	MaxTension float64 // kgf
	MinReading float64 // display only, not used for classification
	MaxReading float64 // display only, not used for classification
	MixedTypes bool
	LeftMax    float64 // kgf
	RightMax   float64 // kgf
}

// DefaultRange is returned when a build has no spoke on either side. It is
// the common road-wheel target band; keeping it explicit lets display code
// render a range without branching on an unconfigured build.
var DefaultRange = TensionRange{
	MinTension: 100,
	MaxTension: 120,
	LeftMax:    120,
	RightMax:   120,
}

// SideMax returns the tension ceiling used to classify a reading on the
// given side: the side's own rated max when the build mixes spoke types,
// otherwise the shared max.
func (r TensionRange) SideMax(side models.Side) float64 {
	if !r.MixedTypes {
		return r.MaxTension
	}
	if side == models.SideLeft {
		return r.LeftMax
	}
	return r.RightMax
}

// ResolveRange determines the safe min/max tension for a build from its
// left/right spoke types. Either side may be nil; with both absent it
// returns DefaultRange rather than failing.
func ResolveRange(left, right *models.SpokeType) TensionRange {
	switch {
	case left == nil && right == nil:
		return DefaultRange
	case left == nil:
		return singleSideRange(right)
	case right == nil:
		return singleSideRange(left)
	case left.ID == right.ID:
		return singleSideRange(left)
	}

	// Mixed types: never let one side's tension exceed the weaker spoke's
	// rated max, so the shared ceiling is the lower of the two maxima.
	r := TensionRange{
		MinTension: minf(left.MinTension, right.MinTension),
		MaxTension: minf(left.MaxTension, right.MaxTension),
		MinReading: minf(left.MinReading, right.MinReading),
		MaxReading: maxf(left.MaxReading, right.MaxReading),
		MixedTypes: true,
		LeftMax:    left.MaxTension,
		RightMax:   right.MaxTension,
	}
	return r
}

func singleSideRange(st *models.SpokeType) TensionRange {
	return TensionRange{
		MinTension: st.MinTension,
		MaxTension: st.MaxTension,
		MinReading: st.MinReading,
		MaxReading: st.MaxReading,
		LeftMax:    st.MaxTension,
		RightMax:   st.MaxTension,
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
