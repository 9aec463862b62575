package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datalens/realtime"
)

// NewOpsRouter builds the operational side-channel: liveness, the active
// statistics mode, and realtime metric reports. It is deliberately
// separate from the dashboard API so ops probes never contend with
// analysis traffic.
func NewOpsRouter(statMode string, rt *realtime.Engine) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/statmode", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"stat_mode": statMode})
	})

	r.Get("/realtime/metrics", func(w http.ResponseWriter, _ *http.Request) {
		if rt == nil {
			writeJSON(w, map[string]interface{}{"metrics": []string{}})
			return
		}
		writeJSON(w, map[string]interface{}{"metrics": rt.Metrics()})
	})

	r.Get("/realtime/report/{metric}", func(w http.ResponseWriter, req *http.Request) {
		metric := chi.URLParam(req, "metric")
		if rt == nil {
			http.Error(w, "realtime disabled", http.StatusNotFound)
			return
		}
		report, ok := rt.Report(metric)
		if !ok {
			http.Error(w, "no report yet", http.StatusNotFound)
			return
		}
		writeJSON(w, report)
	})

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
