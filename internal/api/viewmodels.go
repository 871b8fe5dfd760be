package api

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

// Wire representations. The models carry sql.Null* fields which marshal
// as structs, so the API layer maps them to pointers at the boundary.

type BuildRequest struct {
	Name                   string   `json:"name"`
	Status                 string   `json:"status,omitempty"`
	HubID                  *string  `json:"hub_id,omitempty"`
	RimID                  *string  `json:"rim_id,omitempty"`
	SpokeLeftID            *string  `json:"spoke_left_id,omitempty"`
	SpokeRightID           *string  `json:"spoke_right_id,omitempty"`
	NippleID               *string  `json:"nipple_id,omitempty"`
	LacingPattern          *string  `json:"lacing_pattern,omitempty"`
	SpokeCount             *int64   `json:"spoke_count,omitempty"`
	ActualSpokeLengthLeft  *float64 `json:"actual_spoke_length_left,omitempty"`
	ActualSpokeLengthRight *float64 `json:"actual_spoke_length_right,omitempty"`
	Comments               *string  `json:"comments,omitempty"`
}

type BuildResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Status                 string    `json:"status"`
	HubID                  *string   `json:"hub_id,omitempty"`
	RimID                  *string   `json:"rim_id,omitempty"`
	SpokeLeftID            *string   `json:"spoke_left_id,omitempty"`
	SpokeRightID           *string   `json:"spoke_right_id,omitempty"`
	NippleID               *string   `json:"nipple_id,omitempty"`
	LacingPattern          *string   `json:"lacing_pattern,omitempty"`
	SpokeCount             *int64    `json:"spoke_count,omitempty"`
	ActualSpokeLengthLeft  *float64  `json:"actual_spoke_length_left,omitempty"`
	ActualSpokeLengthRight *float64  `json:"actual_spoke_length_right,omitempty"`
	Comments               *string   `json:"comments,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (req BuildRequest) toModel() models.WheelBuild {
	return models.WheelBuild{
		Name:                   req.Name,
		Status:                 models.BuildStatus(req.Status),
		HubID:                  nullString(req.HubID),
		RimID:                  nullString(req.RimID),
		SpokeLeftID:            nullString(req.SpokeLeftID),
		SpokeRightID:           nullString(req.SpokeRightID),
		NippleID:               nullString(req.NippleID),
		LacingPattern:          nullString(req.LacingPattern),
		SpokeCount:             nullInt64(req.SpokeCount),
		ActualSpokeLengthLeft:  nullFloat64(req.ActualSpokeLengthLeft),
		ActualSpokeLengthRight: nullFloat64(req.ActualSpokeLengthRight),
		Comments:               nullString(req.Comments),
	}
}

func buildResponse(b models.WheelBuild) BuildResponse {
	return BuildResponse{
		ID:                     b.ID,
		Name:                   b.Name,
		Status:                 string(b.Status),
		HubID:                  stringPtr(b.HubID),
		RimID:                  stringPtr(b.RimID),
		SpokeLeftID:            stringPtr(b.SpokeLeftID),
		SpokeRightID:           stringPtr(b.SpokeRightID),
		NippleID:               stringPtr(b.NippleID),
		LacingPattern:          stringPtr(b.LacingPattern),
		SpokeCount:             int64Ptr(b.SpokeCount),
		ActualSpokeLengthLeft:  float64Ptr(b.ActualSpokeLengthLeft),
		ActualSpokeLengthRight: float64Ptr(b.ActualSpokeLengthRight),
		Comments:               stringPtr(b.Comments),
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

type ReadingResponse struct {
	SpokeNumber     int      `json:"spoke_number"`
	Side            string   `json:"side"`
	Reading         float64  `json:"reading"`
	Tension         *float64 `json:"tension,omitempty"`
	RangeStatus     string   `json:"range_status"`
	DeviationStatus string   `json:"deviation_status"`
}

func readingResponse(r models.TensionReading) ReadingResponse {
	return ReadingResponse{
		SpokeNumber:     r.SpokeNumber,
		Side:            string(r.Side),
		Reading:         r.Reading,
		Tension:         float64Ptr(r.Tension),
		RangeStatus:     string(r.RangeStatus),
		DeviationStatus: string(r.DeviationStatus),
	}
}

func readingResponses(readings []models.TensionReading) []ReadingResponse {
	out := make([]ReadingResponse, 0, len(readings))
	for _, r := range readings {
		out = append(out, readingResponse(r))
	}
	return out
}

type SessionResponse struct {
	ID           string    `json:"id"`
	WheelBuildID string    `json:"wheel_build_id"`
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	Notes        *string   `json:"notes,omitempty"`
}

func sessionResponse(sess models.TensionSession) SessionResponse {
	return SessionResponse{
		ID:           sess.ID,
		WheelBuildID: sess.WheelBuildID,
		Name:         sess.Name,
		Date:         sess.Date,
		Notes:        stringPtr(sess.Notes),
	}
}

// SideStatsResponse mirrors tension.SideStats on the wire.
type SideStatsResponse struct {
	Count      int     `json:"count"`
	Valid      int     `json:"valid"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	UpperBand  float64 `json:"upper_band"`
	LowerBand  float64 `json:"lower_band"`
	OutOfRange int     `json:"out_of_range"`
	OutOfBand  int     `json:"out_of_band"`
}

func sideStatsResponse(s tension.SideStats) SideStatsResponse {
	return SideStatsResponse{
		Count:      s.Count,
		Valid:      s.Valid,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Min:        s.Min,
		Max:        s.Max,
		UpperBand:  s.UpperBand,
		LowerBand:  s.LowerBand,
		OutOfRange: s.OutOfRange,
		OutOfBand:  s.OutOfBand,
	}
}

type RangeResponse struct {
	MinTension float64 `json:"min_tension"`
	MaxTension float64 `json:"max_tension"`
	LeftMax    float64 `json:"left_max"`
	RightMax   float64 `json:"right_max"`
	MixedTypes bool    `json:"mixed_types"`
}

func rangeResponse(rng tension.TensionRange) RangeResponse {
	return RangeResponse{
		MinTension: rng.MinTension,
		MaxTension: rng.MaxTension,
		LeftMax:    rng.LeftMax,
		RightMax:   rng.RightMax,
		MixedTypes: rng.MixedTypes,
	}
}

type SessionDetail struct {
	Session  SessionResponse   `json:"session"`
	Readings []ReadingResponse `json:"readings"`
	Range    RangeResponse     `json:"range"`
	Left     SideStatsResponse `json:"left"`
	Right    SideStatsResponse `json:"right"`
	Quality  string            `json:"quality"`
	Issues   []string          `json:"issues,omitempty"`
}

// sql.Null* to pointer plumbing.

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullFloat64(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func float64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func formatTension(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
