package api

import (
	"log"
	"net/http"
	"time"

	"github.com/spokeworks/wheelsmith/internal/geometry"
	"github.com/spokeworks/wheelsmith/internal/inventory"
	"github.com/spokeworks/wheelsmith/internal/measure"
	"github.com/spokeworks/wheelsmith/internal/metrics"
	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

// Conversion engine

type convertRequest struct {
	SpokeTypeID string  `json:"spoke_type_id"`
	Reading     float64 `json:"reading"`
}

type convertResponse struct {
	Tension *float64 `json:"tension,omitempty"`
	Status  string   `json:"status"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SpokeTypeID == "" {
		writeError(w, http.StatusBadRequest, "spoke_type_id is required")
		return
	}

	points, err := s.store.GetCalibrationPoints(req.SpokeTypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(points) == 0 {
		writeError(w, http.StatusNotFound, "no calibration table for spoke type")
		return
	}

	result := tension.Convert(req.Reading, tension.NewCalibrationTable(points))
	metrics.ConversionsTotal.WithLabelValues(string(result.Status)).Inc()

	resp := convertResponse{Status: string(result.Status)}
	if result.Converted() {
		t := result.Tension
		resp.Tension = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTensionRange resolves the recommended range either for a build
// (?build=id) or for an explicit pair of spoke types (?left=id&right=id).
// With neither, the default range is returned.
func (s *Server) handleTensionRange(w http.ResponseWriter, r *http.Request) {
	if buildID := r.URL.Query().Get("build"); buildID != "" {
		build, err := s.store.GetBuild(buildID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if build == nil {
			writeError(w, http.StatusNotFound, "build not found")
			return
		}
		ctx, err := s.recorder.LoadContext(*build)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rangeResponse(ctx.Range))
		return
	}

	// left/right are spoke IDs; a missing spoke degrades that side to
	// unconfigured rather than erroring.
	var left, right *models.SpokeType
	var err error
	if id := r.URL.Query().Get("left"); id != "" {
		if left, err = s.store.SpokeTypeForSpoke(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if id := r.URL.Query().Get("right"); id != "" {
		if right, err = s.store.SpokeTypeForSpoke(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, rangeResponse(tension.ResolveRange(left, right)))
}

// Component library

func (s *Server) handleListSpokeTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.GetAllSpokeTypes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleCalibrationTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.store.GetSpokeType(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "spoke type not found")
		return
	}
	points, err := s.store.GetCalibrationPoints(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleListHubs(w http.ResponseWriter, r *http.Request) {
	hubs, err := s.store.GetAllHubs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hubs)
}

func (s *Server) handleCreateHub(w http.ResponseWriter, r *http.Request) {
	var h models.Hub
	if err := decodeJSON(r, &h); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.store.CreateHub(h)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.ID = id
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleDeleteHub(w http.ResponseWriter, r *http.Request) {
	s.deleteComponent(w, inventory.KindHub, r.PathValue("id"), s.store.DeleteHub)
}

func (s *Server) handleListRims(w http.ResponseWriter, r *http.Request) {
	rims, err := s.store.GetAllRims()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rims)
}

func (s *Server) handleCreateRim(w http.ResponseWriter, r *http.Request) {
	var rim models.Rim
	if err := decodeJSON(r, &rim); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.store.CreateRim(rim)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rim.ID = id
	writeJSON(w, http.StatusCreated, rim)
}

func (s *Server) handleDeleteRim(w http.ResponseWriter, r *http.Request) {
	s.deleteComponent(w, inventory.KindRim, r.PathValue("id"), s.store.DeleteRim)
}

func (s *Server) handleListSpokes(w http.ResponseWriter, r *http.Request) {
	spokes, err := s.store.GetAllSpokes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, spokes)
}

func (s *Server) handleCreateSpoke(w http.ResponseWriter, r *http.Request) {
	var sp models.Spoke
	if err := decodeJSON(r, &sp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if st, err := s.store.GetSpokeType(sp.SpokeTypeID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if st == nil {
		writeError(w, http.StatusBadRequest, "unknown spoke type")
		return
	}
	id, err := s.store.CreateSpoke(sp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sp.ID = id
	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) handleDeleteSpoke(w http.ResponseWriter, r *http.Request) {
	s.deleteComponent(w, inventory.KindSpoke, r.PathValue("id"), s.store.DeleteSpoke)
}

func (s *Server) handleListNipples(w http.ResponseWriter, r *http.Request) {
	nipples, err := s.store.GetAllNipples()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nipples)
}

func (s *Server) handleCreateNipple(w http.ResponseWriter, r *http.Request) {
	var n models.Nipple
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.store.CreateNipple(n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	n.ID = id
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleDeleteNipple(w http.ResponseWriter, r *http.Request) {
	s.deleteComponent(w, inventory.KindNipple, r.PathValue("id"), s.store.DeleteNipple)
}

// deleteComponent enforces the delete lock: a component referenced by any
// build answers 409 with the referencing build names.
func (s *Server) deleteComponent(w http.ResponseWriter, kind inventory.ComponentKind, id string, del func(string) error) {
	status, err := inventory.CheckLocked(s.store, kind, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if status.Locked {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "component is used by wheel builds",
			"builds": status.Builds,
		})
		return
	}
	if err := del(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wheel builds

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := s.store.GetAllBuilds()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]BuildResponse, 0, len(builds))
	for _, b := range builds {
		out = append(out, buildResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	id, err := s.store.CreateBuild(req.toModel())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	build, err := s.store.GetBuild(id)
	if err != nil || build == nil {
		writeError(w, http.StatusInternalServerError, "build not readable after create")
		return
	}
	writeJSON(w, http.StatusCreated, buildResponse(*build))
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	build, err := s.store.GetBuild(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if build == nil {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(*build))
}

func (s *Server) handleUpdateBuild(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetBuild(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}

	var req BuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	build := req.toModel()
	build.ID = id
	if build.Status == "" {
		build.Status = existing.Status
	}
	if err := s.store.UpdateBuild(build); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	updated, err := s.store.GetBuild(id)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "build not readable after update")
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(*updated))
}

func (s *Server) handleDeleteBuild(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBuild(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type spokeLengthsResponse struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

func (s *Server) handleSpokeLengths(w http.ResponseWriter, r *http.Request) {
	build, err := s.store.GetBuild(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if build == nil {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}

	if ok, missing := geometry.CanCalculate(*build); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "build is missing required components",
			"missing": missing,
		})
		return
	}

	hub, err := s.store.GetHub(build.HubID.String)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rim, err := s.store.GetRim(build.RimID.String)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hub == nil || rim == nil {
		writeError(w, http.StatusUnprocessableEntity, "build references a missing hub or rim")
		return
	}

	left, right, err := geometry.BuildLengths(*build, *hub, *rim)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, spokeLengthsResponse{Left: left, Right: right})
}

// Measurement sessions

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.GetBuildSessions(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

type sessionRequest struct {
	Name  string  `json:"name"`
	Date  string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Notes *string `json:"notes,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	buildID := r.PathValue("id")
	build, err := s.store.GetBuild(buildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if build == nil {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		if date, err = time.Parse("2006-01-02", req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	sess := models.TensionSession{
		WheelBuildID: buildID,
		Name:         req.Name,
		Date:         date,
		Notes:        nullString(req.Notes),
	}
	id, err := s.store.CreateSession(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	created, err := s.store.GetSession(id)
	if err != nil || created == nil {
		writeError(w, http.StatusInternalServerError, "session not readable after create")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(*created))
}

// sessionState loads everything a session view needs. A nil session means
// not found.
func (s *Server) sessionState(id string) (sess *models.TensionSession, ctx *measure.BuildContext, readings []models.TensionReading, err error) {
	if sess, err = s.store.GetSession(id); err != nil || sess == nil {
		return nil, nil, nil, err
	}
	build, err := s.store.GetBuild(sess.WheelBuildID)
	if err != nil {
		return nil, nil, nil, err
	}
	if build == nil {
		// Sessions are deleted with their build; a dangling one still renders.
		log.Printf("api: session %s references missing build %s", id, sess.WheelBuildID)
		build = &models.WheelBuild{}
	}
	if ctx, err = s.recorder.LoadContext(*build); err != nil {
		return nil, nil, nil, err
	}
	if readings, err = s.store.GetSessionReadings(id); err != nil {
		return nil, nil, nil, err
	}
	return sess, ctx, readings, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ctx, readings, err := s.sessionState(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	analysis := tension.Analyze(readings, ctx.Range)
	quality := tension.Classify(analysis)
	metrics.SessionsAnalyzed.Inc()

	writeJSON(w, http.StatusOK, SessionDetail{
		Session:  sessionResponse(*sess),
		Readings: readingResponses(readings),
		Range:    rangeResponse(analysis.Range),
		Left:     sideStatsResponse(analysis.Left),
		Right:    sideStatsResponse(analysis.Right),
		Quality:  string(quality.Status),
		Issues:   quality.Issues,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type readingRequest struct {
	SpokeNumber int      `json:"spoke_number"`
	Side        string   `json:"side"`
	Reading     *float64 `json:"reading"` // null clears the cell
}

func (s *Server) handleRecordReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side, ok := parseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be left or right")
		return
	}
	if req.SpokeNumber < 1 {
		writeError(w, http.StatusBadRequest, "spoke_number must be positive")
		return
	}

	sess, ctx, _, err := s.sessionState(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if req.Reading == nil {
		if err := s.recorder.Remove(sess.ID, req.SpokeNumber, side); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	tr, err := s.recorder.Record(ctx, sess.ID, req.SpokeNumber, side, *req.Reading)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, readingResponse(tr))
}

type bulkReadingsRequest struct {
	Entries []struct {
		SpokeNumber int     `json:"spoke_number"`
		Side        string  `json:"side"`
		Reading     float64 `json:"reading"`
	} `json:"entries"`
}

func (s *Server) handleRecordAllReadings(w http.ResponseWriter, r *http.Request) {
	var req bulkReadingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := make([]measure.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		side, ok := parseSide(e.Side)
		if !ok {
			writeError(w, http.StatusBadRequest, "side must be left or right")
			return
		}
		if e.SpokeNumber < 1 {
			writeError(w, http.StatusBadRequest, "spoke_number must be positive")
			return
		}
		entries = append(entries, measure.Entry{SpokeNumber: e.SpokeNumber, Side: side, Reading: e.Reading})
	}

	sess, ctx, _, err := s.sessionState(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	readings, err := s.recorder.RecordAll(ctx, sess.ID, entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, readingResponses(readings))
}

func parseSide(s string) (models.Side, bool) {
	switch models.Side(s) {
	case models.SideLeft:
		return models.SideLeft, true
	case models.SideRight:
		return models.SideRight, true
	}
	return "", false
}
