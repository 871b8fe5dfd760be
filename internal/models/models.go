package models

import (
	"database/sql"
	"time"
)

// Side identifies which flange of the wheel a spoke or reading belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// BuildStatus tracks a wheel build through its lifecycle.
type BuildStatus string

const (
	BuildDraft      BuildStatus = "draft"
	BuildInProgress BuildStatus = "in_progress"
	BuildCompleted  BuildStatus = "completed"
)

// RangeStatus classifies a reading's tension against the safe engineering
// min/max for its spoke type. BelowTable/AboveTable mean the gauge reading
// fell outside the calibration table and no tension could be derived.
type RangeStatus string

const (
	RangeInRange    RangeStatus = "in_range"
	RangeOver       RangeStatus = "over"
	RangeUnder      RangeStatus = "under"
	RangeBelowTable RangeStatus = "below_table"
	RangeAboveTable RangeStatus = "above_table"
)

// DeviationStatus classifies a reading against ±20% of its side's session
// mean. Unknown means the reading had no convertible tension.
type DeviationStatus string

const (
	DeviationInRange DeviationStatus = "in_range"
	DeviationOver    DeviationStatus = "over"
	DeviationUnder   DeviationStatus = "under"
	DeviationUnknown DeviationStatus = "unknown"
)

type Hub struct {
	ID                  string
	Make                string
	Model               string
	Type                string  // "front" or "rear"
	OLD                 float64 // over locknut distance, mm
	LeftFlangeDiameter  float64
	RightFlangeDiameter float64
	LeftFlangeOffset    float64
	RightFlangeOffset   float64
	SpokeHoleDiameter   float64
	SpokeHoles          int
}

type Rim struct {
	ID         string
	Make       string
	Model      string
	Type       string  // "symmetric" or "asymmetric"
	ERD        float64 // effective rim diameter, mm
	OSB        float64 // offset spoke bed, mm
	InnerWidth float64
	OuterWidth float64
	Holes      int
	Material   string
}

// SpokeType identifies a material/shape/gauge family and owns a calibration
// table. Min/max bounds are derived from the table's extreme points at seed
// time and are immutable thereafter.
type SpokeType struct {
	ID         string
	Name       string // e.g. "Steel Round 2.0mm"
	Material   string
	Shape      string
	Dimensions string
	MinReading float64
	MaxReading float64
	MinTension float64 // kgf
	MaxTension float64 // kgf
}

// CalibrationPoint is one (reading, tension) reference pair. Points are
// unique per (spoke_type, reading) and assumed monotonically increasing.
type CalibrationPoint struct {
	ID          int64
	SpokeTypeID string
	Reading     float64
	Tension     float64 // kgf
}

type Spoke struct {
	ID          string
	SpokeTypeID string
	Length      float64 // mm
}

type Nipple struct {
	ID       string
	Material string
	Diameter float64 // mm
	Length   float64 // mm
	Color    string
}

type WheelBuild struct {
	ID                     string
	Name                   string
	Status                 BuildStatus
	HubID                  sql.NullString
	RimID                  sql.NullString
	SpokeLeftID            sql.NullString
	SpokeRightID           sql.NullString
	NippleID               sql.NullString
	LacingPattern          sql.NullString // "radial", "2-cross", "3-cross", ...
	SpokeCount             sql.NullInt64
	ActualSpokeLengthLeft  sql.NullFloat64
	ActualSpokeLengthRight sql.NullFloat64
	Comments               sql.NullString
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type TensionSession struct {
	ID           string
	WheelBuildID string
	Name         string
	Date         time.Time
	Notes        sql.NullString
	CreatedAt    time.Time
}

// TensionReading is one measurement for a (session, spoke_number, side)
// cell. Tension is null when the gauge reading fell outside the calibration
// table. One reading per cell: repeat submissions overwrite.
type TensionReading struct {
	ID              string
	SessionID       string
	SpokeNumber     int
	Side            Side
	Reading         float64
	Tension         sql.NullFloat64 // kgf
	RangeStatus     RangeStatus
	DeviationStatus DeviationStatus
}
