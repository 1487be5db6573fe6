package httpapi

import (
	"context"
	"net/http"
	"time"

	"hoctap-backend/internal/services"
)

func (s *Server) SystemSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := services.CaptureSystemSnapshot(r.Context(), s.Counter, s.Config.DiskPath)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, snapshot)
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	res := HealthResponse{Status: "ok", Database: "skipped"}
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			s.Log.Warn("health check ping failed", "error", err)
			res.Status, res.Database = "degraded", "unreachable"
			WriteJSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Data: res})
			return
		}
		res.Database = "ok"
	}
	WriteData(w, http.StatusOK, res)
}
