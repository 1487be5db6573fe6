package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"hoctap-backend/internal/models"
)

type memStore struct {
	mu         sync.Mutex
	tiers      map[string]models.Tier
	levels     map[string]models.Level
	vocab      map[string]models.Vocabulary
	types      map[string]models.ExerciseType
	exercises  map[string]models.Exercise
	admins     map[string]models.AdminUser
	users      map[string]models.User
	progress   map[string]models.UserLevelProgress
	stats      map[string]models.UserStats
	attempts   []models.ExerciseAttempt
	failLookup error
	failCreate error
}

func newMemStore() *memStore {
	s := &memStore{
		tiers:     map[string]models.Tier{},
		levels:    map[string]models.Level{},
		vocab:     map[string]models.Vocabulary{},
		types:     map[string]models.ExerciseType{},
		exercises: map[string]models.Exercise{},
		admins:    map[string]models.AdminUser{},
		users:     map[string]models.User{},
		progress:  map[string]models.UserLevelProgress{},
		stats:     map[string]models.UserStats{},
	}
	for i, code := range models.ExerciseTypeCodes {
		id := "5b0f8a2e-3c1d-4e55-9a51-0d7f6c1e0a0" + string(rune('1'+i))
		s.types[code] = models.ExerciseType{ID: id, Code: code, Label: code}
	}
	return s
}

func (s *memStore) OrderIndexExists(ctx context.Context, scope Scope, parentID string, orderIndex int, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLookup != nil {
		return false, s.failLookup
	}
	match := func(id, parent string, order int) bool {
		return id != excludeID && order == orderIndex && (scope == ScopeTier || parent == parentID)
	}
	switch scope {
	case ScopeTier:
		for _, t := range s.tiers {
			if match(t.ID, "", t.OrderIndex) {
				return true, nil
			}
		}
	case ScopeLevel:
		for _, l := range s.levels {
			if match(l.ID, l.TierID, l.OrderIndex) {
				return true, nil
			}
		}
	case ScopeVocabulary:
		for _, v := range s.vocab {
			if match(v.ID, v.LevelID, v.OrderIndex) {
				return true, nil
			}
		}
	case ScopeExercise:
		for _, e := range s.exercises {
			if e.IsActive && match(e.ID, e.LevelID, e.OrderIndex) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memStore) NextOrderIndex(ctx context.Context, scope Scope, parentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	bump := func(parent string, order int) {
		if (scope == ScopeTier || parent == parentID) && order > max {
			max = order
		}
	}
	switch scope {
	case ScopeTier:
		for _, t := range s.tiers {
			bump("", t.OrderIndex)
		}
	case ScopeLevel:
		for _, l := range s.levels {
			bump(l.TierID, l.OrderIndex)
		}
	case ScopeVocabulary:
		for _, v := range s.vocab {
			bump(v.LevelID, v.OrderIndex)
		}
	case ScopeExercise:
		for _, e := range s.exercises {
			if e.IsActive {
				bump(e.LevelID, e.OrderIndex)
			}
		}
	}
	return max + 1, nil
}

func (s *memStore) tierSummary(t models.Tier) models.TierSummary {
	count := 0
	for _, l := range s.levels {
		if l.TierID == t.ID {
			count++
		}
	}
	return models.TierSummary{Tier: t, LevelCount: count}
}

func (s *memStore) levelSummary(l models.Level) models.LevelSummary {
	out := models.LevelSummary{Level: l}
	for _, v := range s.vocab {
		if v.LevelID == l.ID {
			out.VocabularyCount++
		}
	}
	for _, e := range s.exercises {
		if e.LevelID == l.ID && e.IsActive {
			out.ExerciseCount++
		}
	}
	return out
}

func (s *memStore) ListTiers(ctx context.Context) ([]models.TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TierSummary{}
	for _, t := range s.tiers {
		out = append(out, s.tierSummary(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) GetTier(ctx context.Context, id string) (models.TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[id]
	if !ok {
		return models.TierSummary{}, sql.ErrNoRows
	}
	return s.tierSummary(t), nil
}

func (s *memStore) GetTierByCode(ctx context.Context, code string) (models.TierSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tiers {
		if t.Name == code {
			return s.tierSummary(t), nil
		}
	}
	return models.TierSummary{}, sql.ErrNoRows
}

func (s *memStore) TierCodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tiers {
		if t.Name == code && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateTier(ctx context.Context, tier *models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tiers {
		if t.Name == tier.Name {
			return &DuplicateError{Constraint: "uq_tiers_name"}
		}
		if t.OrderIndex == tier.OrderIndex {
			return &DuplicateError{Constraint: "uq_tiers_order"}
		}
	}
	s.tiers[tier.ID] = *tier
	return nil
}

func (s *memStore) UpdateTier(ctx context.Context, tier *models.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tiers[tier.ID]; !ok {
		return sql.ErrNoRows
	}
	s.tiers[tier.ID] = *tier
	return nil
}

func (s *memStore) DeleteTier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tiers[id]; !ok {
		return sql.ErrNoRows
	}
	for _, l := range s.levels {
		if l.TierID == id {
			return &ReferencedError{Constraint: "levels_tier_id_fkey"}
		}
	}
	delete(s.tiers, id)
	return nil
}

func (s *memStore) ListLevelsByTier(ctx context.Context, tierID string) ([]models.LevelSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.LevelSummary{}
	for _, l := range s.levels {
		if l.TierID == tierID {
			out = append(out, s.levelSummary(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) GetLevel(ctx context.Context, id string) (models.LevelDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.levels[id]
	if !ok {
		return models.LevelDetail{}, sql.ErrNoRows
	}
	t := s.tiers[l.TierID]
	return models.LevelDetail{
		LevelSummary: s.levelSummary(l),
		Tier:         models.TierRef{ID: t.ID, Name: t.Name, DisplayName: t.DisplayName},
	}, nil
}

func (s *memStore) LevelEdges(ctx context.Context) ([]models.LevelEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.LevelEdge{}
	for _, l := range s.levels {
		out = append(out, models.LevelEdge{ID: l.ID, UnlockCondition: append(models.IDList{}, l.UnlockCondition...)})
	}
	return out, nil
}

func (s *memStore) ExistingLevelIDs(ctx context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, id := range ids {
		if _, ok := s.levels[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memStore) CreateLevel(ctx context.Context, level *models.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.levels {
		if l.TierID == level.TierID && l.OrderIndex == level.OrderIndex {
			return &DuplicateError{Constraint: "uq_levels_tier_order"}
		}
	}
	s.levels[level.ID] = *level
	return nil
}

func (s *memStore) UpdateLevel(ctx context.Context, level *models.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[level.ID]; !ok {
		return sql.ErrNoRows
	}
	s.levels[level.ID] = *level
	return nil
}

func (s *memStore) DeleteLevel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.levels, id)
	for vid, v := range s.vocab {
		if v.LevelID == id {
			delete(s.vocab, vid)
		}
	}
	for eid, e := range s.exercises {
		if e.LevelID == id {
			delete(s.exercises, eid)
		}
	}
	for lid, l := range s.levels {
		pruned := models.IDList{}
		for _, dep := range l.UnlockCondition {
			if dep != id {
				pruned = append(pruned, dep)
			}
		}
		l.UnlockCondition = pruned
		s.levels[lid] = l
	}
	return nil
}

func (s *memStore) ListVocabulary(ctx context.Context, levelID string) ([]models.Vocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Vocabulary{}
	for _, v := range s.vocab {
		if v.LevelID == levelID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) GetVocabulary(ctx context.Context, id string) (models.Vocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vocab[id]
	if !ok {
		return models.Vocabulary{}, sql.ErrNoRows
	}
	return v, nil
}

func (s *memStore) WordExists(ctx context.Context, levelID, word, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vocab {
		if v.LevelID == levelID && v.ID != excludeID && strings.EqualFold(strings.TrimSpace(v.Word), word) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateVocabulary(ctx context.Context, v *models.Vocabulary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vocab[v.ID] = *v
	return nil
}

func (s *memStore) UpdateVocabulary(ctx context.Context, v *models.Vocabulary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vocab[v.ID]; !ok {
		return sql.ErrNoRows
	}
	s.vocab[v.ID] = *v
	return nil
}

func (s *memStore) DeleteVocabulary(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vocab[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.vocab, id)
	return nil
}

func (s *memStore) ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ExerciseType{}
	for _, code := range models.ExerciseTypeCodes {
		out = append(out, s.types[code])
	}
	return out, nil
}

func (s *memStore) GetExerciseTypeByCode(ctx context.Context, code string) (models.ExerciseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.types[code]
	if !ok {
		return models.ExerciseType{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *memStore) ListExercises(ctx context.Context, levelID string) ([]models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Exercise{}
	for _, e := range s.exercises {
		if e.LevelID == levelID && e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[id]
	if !ok || !e.IsActive {
		return models.Exercise{}, sql.ErrNoRows
	}
	return e, nil
}

func (s *memStore) CreateExercise(ctx context.Context, ex *models.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercises[ex.ID] = *ex
	return nil
}

func (s *memStore) UpdateExercise(ctx context.Context, ex *models.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[ex.ID]; !ok {
		return sql.ErrNoRows
	}
	s.exercises[ex.ID] = *ex
	return nil
}

func (s *memStore) DeactivateExercise(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[id]
	if !ok || !e.IsActive {
		return sql.ErrNoRows
	}
	e.IsActive = false
	s.exercises[id] = e
	return nil
}

func (s *memStore) ContentCounts(ctx context.Context) (models.ContentCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := models.ContentCounts{
		Tiers:        len(s.tiers),
		Levels:       len(s.levels),
		Vocabularies: len(s.vocab),
		Users:        len(s.users),
	}
	for _, e := range s.exercises {
		if e.IsActive {
			counts.Exercises++
		}
	}
	return counts, nil
}

func (s *memStore) FindAdminByAuthID(ctx context.Context, authUserID string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.AuthUserID == authUserID {
			return a, nil
		}
	}
	return models.AdminUser{}, sql.ErrNoRows
}

func (s *memStore) FindUserByAuthID(ctx context.Context, authUserID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AuthUserID == authUserID {
			return u, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (s *memStore) GetAdmin(ctx context.Context, id string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return models.AdminUser{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *memStore) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memStore) AdminEmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UserEmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	s.admins[admin.ID] = *admin
	return nil
}

func (s *memStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	s.users[user.ID] = *user
	return nil
}

func progressKey(userID, levelID string) string { return userID + "/" + levelID }

func (s *memStore) GetLevelProgress(ctx context.Context, userID, levelID string) (models.UserLevelProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey(userID, levelID)]
	if !ok {
		return models.UserLevelProgress{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *memStore) CompletedLevelIDs(ctx context.Context, userID string, levelIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, id := range levelIDs {
		if p, ok := s.progress[progressKey(userID, id)]; ok && p.Status == models.ProgressCompleted {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memStore) UpsertLevelProgress(ctx context.Context, p *models.UserLevelProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progressKey(p.UserID, p.LevelID)] = *p
	return nil
}

func (s *memStore) HasPassedExercise(ctx context.Context, userID, exerciseID string, passingScore int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.ExerciseID == exerciseID && a.Score >= passingScore {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) PassedExerciseCount(ctx context.Context, userID, levelID string, passingScore int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passed := map[string]bool{}
	for _, a := range s.attempts {
		e, ok := s.exercises[a.ExerciseID]
		if !ok || !e.IsActive || e.LevelID != levelID || a.UserID != userID {
			continue
		}
		if a.Score >= passingScore {
			passed[a.ExerciseID] = true
		}
	}
	return len(passed), nil
}

func (s *memStore) InsertAttempt(ctx context.Context, a *models.ExerciseAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, *a)
	return nil
}

func (s *memStore) GetStats(ctx context.Context, userID string) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[userID]
	if !ok {
		return models.UserStats{}, sql.ErrNoRows
	}
	return st, nil
}

func (s *memStore) SaveStats(ctx context.Context, stats *models.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.UserID] = *stats
	return nil
}

func (s *memStore) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.LeaderboardEntry{}
	for _, st := range s.stats {
		u := s.users[st.UserID]
		out = append(out, models.LeaderboardEntry{
			UserID:        st.UserID,
			FullName:      u.FullName,
			TotalPoints:   st.TotalPoints,
			CurrentStreak: st.CurrentStreak,
			LongestStreak: st.LongestStreak,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].LongestStreak > out[j].LongestStreak
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*memStore)(nil)
