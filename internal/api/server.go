// Package api serves the web UI and the JSON API.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spokeworks/wheelsmith/internal/measure"
	"github.com/spokeworks/wheelsmith/internal/store"
)

//go:embed templates/*
var templateFS embed.FS

type Server struct {
	store    *store.Store
	recorder *measure.Recorder
	port     string
	tmpl     *template.Template
}

func NewServer(st *store.Store, port string) *Server {
	funcs := template.FuncMap{
		// kgf formats a tension to one decimal; templates hand it both
		// plain values and the nullable pointers off the wire structs.
		"kgf": func(v any) string {
			switch t := v.(type) {
			case float64:
				return formatTension(t)
			case *float64:
				if t != nil {
					return formatTension(*t)
				}
			}
			return ""
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

	return &Server{
		store:    st,
		recorder: measure.NewRecorder(st),
		port:     port,
		tmpl:     tmpl,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /builds/{id}", s.handleBuildPage)
	mux.HandleFunc("GET /sessions/{id}", s.handleSessionPage)
	mux.HandleFunc("GET /sessions/{id}/chart.png", s.handleSessionChart)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Conversion engine
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /api/tension-range", s.handleTensionRange)

	// Component library
	mux.HandleFunc("GET /api/spoke-types", s.handleListSpokeTypes)
	mux.HandleFunc("GET /api/spoke-types/{id}/calibration", s.handleCalibrationTable)
	mux.HandleFunc("GET /api/hubs", s.handleListHubs)
	mux.HandleFunc("POST /api/hubs", s.handleCreateHub)
	mux.HandleFunc("DELETE /api/hubs/{id}", s.handleDeleteHub)
	mux.HandleFunc("GET /api/rims", s.handleListRims)
	mux.HandleFunc("POST /api/rims", s.handleCreateRim)
	mux.HandleFunc("DELETE /api/rims/{id}", s.handleDeleteRim)
	mux.HandleFunc("GET /api/spokes", s.handleListSpokes)
	mux.HandleFunc("POST /api/spokes", s.handleCreateSpoke)
	mux.HandleFunc("DELETE /api/spokes/{id}", s.handleDeleteSpoke)
	mux.HandleFunc("GET /api/nipples", s.handleListNipples)
	mux.HandleFunc("POST /api/nipples", s.handleCreateNipple)
	mux.HandleFunc("DELETE /api/nipples/{id}", s.handleDeleteNipple)

	// Wheel builds
	mux.HandleFunc("GET /api/builds", s.handleListBuilds)
	mux.HandleFunc("POST /api/builds", s.handleCreateBuild)
	mux.HandleFunc("GET /api/builds/{id}", s.handleGetBuild)
	mux.HandleFunc("PUT /api/builds/{id}", s.handleUpdateBuild)
	mux.HandleFunc("DELETE /api/builds/{id}", s.handleDeleteBuild)
	mux.HandleFunc("GET /api/builds/{id}/spoke-lengths", s.handleSpokeLengths)
	mux.HandleFunc("GET /api/builds/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/builds/{id}/sessions", s.handleCreateSession)

	// Measurement sessions
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/readings", s.handleRecordReading)
	mux.HandleFunc("PUT /api/sessions/{id}/readings", s.handleRecordAllReadings)

	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string `json:"status"`
		SpokeTypes int    `json:"spoke_types"`
		Hubs       int    `json:"hubs"`
	}{Status: "ok"}

	var err error
	if health.SpokeTypes, err = s.store.CountSpokeTypes(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}
	if health.Hubs, err = s.store.CountHubs(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
