package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) UnlockStatus(w http.ResponseWriter, r *http.Request) {
	levelID, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, _ := CurrentPrincipal(r)
	status, err := s.Progress.UnlockStatus(r.Context(), p.ID, levelID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, status)
}

func (s *Server) StartLevel(w http.ResponseWriter, r *http.Request) {
	levelID, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, _ := CurrentPrincipal(r)
	progress, err := s.Progress.StartLevel(r.Context(), p.ID, levelID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, progress)
}

func (s *Server) LevelProgress(w http.ResponseWriter, r *http.Request) {
	levelID, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, _ := CurrentPrincipal(r)
	progress, err := s.Progress.LevelProgress(r.Context(), p.ID, levelID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, progress)
}

func (s *Server) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := pathID(r, "exerciseId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req AttemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, _ := CurrentPrincipal(r)
	res, err := s.Progress.SubmitAttempt(r.Context(), p.ID, exerciseID, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, res)
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r)
	stats, err := s.Progress.Stats(r.Context(), p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, stats)
}

func (s *Server) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Progress.Leaderboard(r.Context(), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, entries)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
