package api

import (
	"log"
	"net/http"

	"github.com/spokeworks/wheelsmith/internal/chart"
	"github.com/spokeworks/wheelsmith/internal/geometry"
	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/tension"
)

type IndexData struct {
	Builds     []BuildResponse
	SpokeTypes []models.SpokeType
	HubCount   int
	RimCount   int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	builds, err := s.store.GetAllBuilds()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	types, err := s.store.GetAllSpokeTypes()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	hubs, err := s.store.GetAllHubs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rims, err := s.store.GetAllRims()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := IndexData{
		SpokeTypes: types,
		HubCount:   len(hubs),
		RimCount:   len(rims),
	}
	for _, b := range builds {
		data.Builds = append(data.Builds, buildResponse(b))
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: render index: %v", err)
	}
}

type BuildPageData struct {
	Build          BuildResponse
	Hub            *models.Hub
	Rim            *models.Rim
	Nipple         *models.Nipple
	SpokeLeftType  *models.SpokeType
	SpokeRightType *models.SpokeType
	Sessions       []SessionResponse
	Range          RangeResponse
	Lengths        *spokeLengthsResponse
	MissingParts   []string
}

func (s *Server) handleBuildPage(w http.ResponseWriter, r *http.Request) {
	build, err := s.store.GetBuild(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if build == nil {
		http.NotFound(w, r)
		return
	}

	data := BuildPageData{Build: buildResponse(*build)}

	if build.HubID.Valid {
		if data.Hub, err = s.store.GetHub(build.HubID.String); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if build.RimID.Valid {
		if data.Rim, err = s.store.GetRim(build.RimID.String); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if build.NippleID.Valid {
		if data.Nipple, err = s.store.GetNipple(build.NippleID.String); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if build.SpokeLeftID.Valid {
		if data.SpokeLeftType, err = s.store.SpokeTypeForSpoke(build.SpokeLeftID.String); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if build.SpokeRightID.Valid {
		if data.SpokeRightType, err = s.store.SpokeTypeForSpoke(build.SpokeRightID.String); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	data.Range = rangeResponse(tension.ResolveRange(data.SpokeLeftType, data.SpokeRightType))

	if ok, missing := geometry.CanCalculate(*build); ok {
		if data.Hub != nil && data.Rim != nil {
			left, right, err := geometry.BuildLengths(*build, *data.Hub, *data.Rim)
			if err != nil {
				log.Printf("api: spoke lengths for build %s: %v", build.ID, err)
			} else {
				data.Lengths = &spokeLengthsResponse{Left: left, Right: right}
			}
		}
	} else {
		data.MissingParts = missing
	}

	sessions, err := s.store.GetBuildSessions(build.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, sess := range sessions {
		data.Sessions = append(data.Sessions, sessionResponse(sess))
	}

	if err := s.tmpl.ExecuteTemplate(w, "build.html", data); err != nil {
		log.Printf("api: render build: %v", err)
	}
}

// SessionRow pairs the left and right readings for one spoke position in
// the measurement grid.
type SessionRow struct {
	SpokeNumber int
	Left        *ReadingResponse
	Right       *ReadingResponse
}

type SessionPageData struct {
	Session SessionResponse
	Rows    []SessionRow
	Range   RangeResponse
	Left    SideStatsResponse
	Right   SideStatsResponse
	Quality string
	Issues  []string
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	sess, ctx, readings, err := s.sessionState(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.NotFound(w, r)
		return
	}

	analysis := tension.Analyze(readings, ctx.Range)
	quality := tension.Classify(analysis)

	data := SessionPageData{
		Session: sessionResponse(*sess),
		Rows:    sessionRows(readings),
		Range:   rangeResponse(analysis.Range),
		Left:    sideStatsResponse(analysis.Left),
		Right:   sideStatsResponse(analysis.Right),
		Quality: string(quality.Status),
		Issues:  quality.Issues,
	}

	if err := s.tmpl.ExecuteTemplate(w, "session.html", data); err != nil {
		log.Printf("api: render session: %v", err)
	}
}

func sessionRows(readings []models.TensionReading) []SessionRow {
	maxSpoke := 0
	cells := make(map[models.Side]map[int]ReadingResponse)
	cells[models.SideLeft] = make(map[int]ReadingResponse)
	cells[models.SideRight] = make(map[int]ReadingResponse)
	for _, r := range readings {
		cells[r.Side][r.SpokeNumber] = readingResponse(r)
		if r.SpokeNumber > maxSpoke {
			maxSpoke = r.SpokeNumber
		}
	}

	rows := make([]SessionRow, 0, maxSpoke)
	for n := 1; n <= maxSpoke; n++ {
		row := SessionRow{SpokeNumber: n}
		if c, ok := cells[models.SideLeft][n]; ok {
			row.Left = &c
		}
		if c, ok := cells[models.SideRight][n]; ok {
			row.Right = &c
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) handleSessionChart(w http.ResponseWriter, r *http.Request) {
	sess, ctx, readings, err := s.sessionState(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.NotFound(w, r)
		return
	}

	png, err := chart.Render(readings, ctx.Range)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(png); err != nil {
		log.Printf("api: write chart: %v", err)
	}
}
