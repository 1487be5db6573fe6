package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := s.Paths.ListTiers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, tiers)
}

func (s *Server) GetTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tierId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tier, err := s.Paths.GetTier(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, tier)
}

func (s *Server) GetTierByCode(w http.ResponseWriter, r *http.Request) {
	tier, err := s.Paths.GetTierByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, tier)
}

func (s *Server) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req TierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tier, err := s.Paths.CreateTier(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, tier)
}

func (s *Server) UpdateTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tierId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req TierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	tier, err := s.Paths.UpdateTier(r.Context(), id, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, tier)
}

func (s *Server) DeleteTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tierId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Paths.DeleteTier(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Đã xóa tier")
}

func (s *Server) ListLevelsByTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "tierId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	levels, err := s.Paths.ListLevelsByTier(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, levels)
}

func (s *Server) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	level, err := s.Paths.GetLevelDetail(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, level)
}

func (s *Server) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req LevelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	level, err := s.Paths.CreateLevel(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, level)
}

func (s *Server) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req LevelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	level, err := s.Paths.UpdateLevel(r.Context(), id, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, level)
}

func (s *Server) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Paths.DeleteLevel(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Đã xóa level")
}

func (s *Server) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.Paths.ListVocabulary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, items)
}

func (s *Server) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "vocabularyId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.GetVocabulary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreateVocabulary(w http.ResponseWriter, r *http.Request) {
	var req VocabularyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.CreateVocabulary(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdateVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "vocabularyId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req VocabularyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.UpdateVocabulary(r.Context(), id, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "vocabularyId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Paths.DeleteVocabulary(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Đã xóa từ vựng")
}

func (s *Server) ListExerciseTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.Paths.ListExerciseTypes(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, types)
}

func (s *Server) ListExercises(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "levelId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.Paths.ListExercises(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, items)
}

func (s *Server) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "exerciseId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.GetExercise(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var req ExerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.CreateExercise(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, item)
}

func (s *Server) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "exerciseId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req ExerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.Paths.UpdateExercise(r.Context(), id, req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, item)
}

func (s *Server) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "exerciseId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Paths.DeleteExercise(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Đã xóa bài tập")
}
