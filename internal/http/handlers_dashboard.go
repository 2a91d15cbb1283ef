package http

import (
	"errors"
	"net/http"
	"strconv"

	"presupuesto/internal/charts"
	"presupuesto/internal/log"
)

const msgLoading = "Cargando datos, intenta en un momento."

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := s.deps.Dashboard.View(s.deps.Dashboard.Now())
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: msgLoading})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleChart serves a PNG chart of the current dashboard. A chart with
// nothing to draw answers 204.
func (s *Server) handleChart(kind charts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := s.deps.Dashboard.Now()
		view, ok := s.deps.Dashboard.View(now)
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: msgLoading})
			return
		}

		png, err := s.deps.Charts.Render(kind, view.Revision, now, view.View)
		switch {
		case errors.Is(err, charts.ErrNoData):
			w.WriteHeader(http.StatusNoContent)
			return
		case err != nil:
			writeError(w, r, log.OpRender, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("ETag", `"`+charts.Key(kind, view.Revision, now)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
