package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hoctap-backend/internal/models"
	"hoctap-backend/internal/services"
)

const tierColumns = `t.id, t.name, t.display_name, t.description, t.order_index, t.is_active, t.created_at, t.updated_at,
  COALESCE((SELECT COUNT(*) FROM levels l WHERE l.tier_id = t.id), 0) AS level_count`

const levelColumns = `l.id, l.tier_id, l.name, l.description, l.order_index, l.unlock_condition, l.is_active, l.created_at, l.updated_at,
  COALESCE((SELECT COUNT(*) FROM vocabularies v WHERE v.level_id = l.id), 0) AS vocabulary_count,
  COALESCE((SELECT COUNT(*) FROM exercises e WHERE e.level_id = l.id AND e.is_active), 0) AS exercise_count`

const vocabularyColumns = `id, level_id, word, pronunciation, meaning, example_sentence, audio_url, part_of_speech, order_index, created_at, updated_at`

const exerciseColumns = `e.id, e.level_id, e.exercise_type_id, et.code AS exercise_type_code, e.title, e.description, e.content,
  e.difficulty, e.points, e.time_limit, e.order_index, e.is_active, e.created_at, e.updated_at`

// orderScopes maps each scope to its table and parent column. Exercises only
// compete with active siblings.
var orderScopes = map[services.Scope]struct {
	table  string
	parent string
	filter string
}{
	services.ScopeTier:       {table: "tiers"},
	services.ScopeLevel:      {table: "levels", parent: "tier_id"},
	services.ScopeVocabulary: {table: "vocabularies", parent: "level_id"},
	services.ScopeExercise:   {table: "exercises", parent: "level_id", filter: " AND is_active"},
}

func (s *Store) OrderIndexExists(ctx context.Context, scope services.Scope, parentID string, orderIndex int, excludeID string) (bool, error) {
	sc, ok := orderScopes[scope]
	if !ok {
		return false, fmt.Errorf("unknown order scope %q", scope)
	}
	var exists bool
	if sc.parent == "" {
		q := `SELECT EXISTS(SELECT 1 FROM ` + sc.table + ` WHERE order_index = $1 AND ($2 = '' OR id::text <> $2)` + sc.filter + `)`
		err := s.db.GetContext(ctx, &exists, q, orderIndex, excludeID)
		return exists, err
	}
	q := `SELECT EXISTS(SELECT 1 FROM ` + sc.table + ` WHERE order_index = $1 AND ($2 = '' OR id::text <> $2) AND ` +
		sc.parent + `::text = $3` + sc.filter + `)`
	err := s.db.GetContext(ctx, &exists, q, orderIndex, excludeID, parentID)
	return exists, err
}

func (s *Store) NextOrderIndex(ctx context.Context, scope services.Scope, parentID string) (int, error) {
	sc, ok := orderScopes[scope]
	if !ok {
		return 0, fmt.Errorf("unknown order scope %q", scope)
	}
	var next int
	if sc.parent == "" {
		err := s.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM `+sc.table+` WHERE TRUE`+sc.filter)
		return next, err
	}
	err := s.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM `+sc.table+` WHERE `+sc.parent+`::text = $1`+sc.filter, parentID)
	return next, err
}

func (s *Store) ListTiers(ctx context.Context) ([]models.TierSummary, error) {
	rows := []models.TierSummary{}
	err := s.db.SelectContext(ctx, &rows, `SELECT `+tierColumns+` FROM tiers t ORDER BY t.order_index ASC`)
	return rows, err
}

func (s *Store) GetTier(ctx context.Context, id string) (models.TierSummary, error) {
	var row models.TierSummary
	err := s.db.GetContext(ctx, &row, `SELECT `+tierColumns+` FROM tiers t WHERE t.id::text = $1`, id)
	return row, err
}

func (s *Store) GetTierByCode(ctx context.Context, code string) (models.TierSummary, error) {
	var row models.TierSummary
	err := s.db.GetContext(ctx, &row, `SELECT `+tierColumns+` FROM tiers t WHERE t.name = $1`, code)
	return row, err
}

func (s *Store) TierCodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tiers WHERE name = $1 AND ($2 = '' OR id::text <> $2))`, code, excludeID)
	return exists, err
}

func (s *Store) CreateTier(ctx context.Context, t *models.Tier) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO tiers (id, name, display_name, description, order_index, is_active, created_at, updated_at)
VALUES (:id, :name, :display_name, :description, :order_index, :is_active, :created_at, :updated_at)
`, t)
	return mapWriteError(err)
}

func (s *Store) UpdateTier(ctx context.Context, t *models.Tier) error {
	return requireRow(s.db.NamedExecContext(ctx, `
UPDATE tiers
SET name = :name, display_name = :display_name, description = :description,
    order_index = :order_index, is_active = :is_active, updated_at = :updated_at
WHERE id = :id
`, t))
}

func (s *Store) DeleteTier(ctx context.Context, id string) error {
	return requireRow(s.db.ExecContext(ctx, `DELETE FROM tiers WHERE id::text = $1`, id))
}

func (s *Store) ListLevelsByTier(ctx context.Context, tierID string) ([]models.LevelSummary, error) {
	rows := []models.LevelSummary{}
	err := s.db.SelectContext(ctx, &rows, `SELECT `+levelColumns+` FROM levels l WHERE l.tier_id::text = $1 ORDER BY l.order_index ASC`, tierID)
	return rows, err
}

func (s *Store) GetLevel(ctx context.Context, id string) (models.LevelDetail, error) {
	var row struct {
		models.LevelSummary
		TierName        string `db:"tier_name"`
		TierDisplayName string `db:"tier_display_name"`
	}
	err := s.db.GetContext(ctx, &row, `
SELECT `+levelColumns+`, t.name AS tier_name, t.display_name AS tier_display_name
FROM levels l
JOIN tiers t ON t.id = l.tier_id
WHERE l.id::text = $1
`, id)
	if err != nil {
		return models.LevelDetail{}, err
	}
	return models.LevelDetail{
		LevelSummary: row.LevelSummary,
		Tier: models.TierRef{
			ID:          row.TierID,
			Name:        row.TierName,
			DisplayName: row.TierDisplayName,
		},
	}, nil
}

func (s *Store) LevelEdges(ctx context.Context) ([]models.LevelEdge, error) {
	rows := []models.LevelEdge{}
	err := s.db.SelectContext(ctx, &rows, `SELECT id::text AS id, unlock_condition FROM levels`)
	return rows, err
}

func (s *Store) ExistingLevelIDs(ctx context.Context, ids []string) ([]string, error) {
	found := []string{}
	if len(ids) == 0 {
		return found, nil
	}
	err := s.db.SelectContext(ctx, &found, `
SELECT id::text FROM levels
WHERE id::text IN (SELECT jsonb_array_elements_text($1::jsonb))
`, models.IDList(ids))
	return found, err
}

func (s *Store) CreateLevel(ctx context.Context, l *models.Level) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO levels (id, tier_id, name, description, order_index, unlock_condition, is_active, created_at, updated_at)
VALUES (:id, :tier_id, :name, :description, :order_index, :unlock_condition, :is_active, :created_at, :updated_at)
`, l)
	return mapWriteError(err)
}

func (s *Store) UpdateLevel(ctx context.Context, l *models.Level) error {
	return requireRow(s.db.NamedExecContext(ctx, `
UPDATE levels
SET tier_id = :tier_id, name = :name, description = :description, order_index = :order_index,
    unlock_condition = :unlock_condition, is_active = :is_active, updated_at = :updated_at
WHERE id = :id
`, l))
}

// DeleteLevel prunes the id from other levels' prerequisites and deletes the
// row; vocabulary, exercises and progress go with it through foreign keys.
func (s *Store) DeleteLevel(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE levels
SET unlock_condition = unlock_condition - $1::text, updated_at = now()
WHERE unlock_condition @> jsonb_build_array($1::text)
`, id); err != nil {
			return err
		}
		return requireRow(tx.ExecContext(ctx, `DELETE FROM levels WHERE id::text = $1`, id))
	})
}

func (s *Store) ListVocabulary(ctx context.Context, levelID string) ([]models.Vocabulary, error) {
	rows := []models.Vocabulary{}
	err := s.db.SelectContext(ctx, &rows, `SELECT `+vocabularyColumns+` FROM vocabularies WHERE level_id::text = $1 ORDER BY order_index ASC`, levelID)
	return rows, err
}

func (s *Store) GetVocabulary(ctx context.Context, id string) (models.Vocabulary, error) {
	var row models.Vocabulary
	err := s.db.GetContext(ctx, &row, `SELECT `+vocabularyColumns+` FROM vocabularies WHERE id::text = $1`, id)
	return row, err
}

func (s *Store) WordExists(ctx context.Context, levelID, word, excludeID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
SELECT EXISTS(
  SELECT 1 FROM vocabularies
  WHERE level_id::text = $1 AND lower(btrim(word)) = lower(btrim($2)) AND ($3 = '' OR id::text <> $3)
)`, levelID, word, excludeID)
	return exists, err
}

func (s *Store) CreateVocabulary(ctx context.Context, v *models.Vocabulary) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO vocabularies (id, level_id, word, pronunciation, meaning, example_sentence, audio_url, part_of_speech, order_index, created_at, updated_at)
VALUES (:id, :level_id, :word, :pronunciation, :meaning, :example_sentence, :audio_url, :part_of_speech, :order_index, :created_at, :updated_at)
`, v)
	return mapWriteError(err)
}

func (s *Store) UpdateVocabulary(ctx context.Context, v *models.Vocabulary) error {
	return requireRow(s.db.NamedExecContext(ctx, `
UPDATE vocabularies
SET level_id = :level_id, word = :word, pronunciation = :pronunciation, meaning = :meaning,
    example_sentence = :example_sentence, audio_url = :audio_url, part_of_speech = :part_of_speech,
    order_index = :order_index, updated_at = :updated_at
WHERE id = :id
`, v))
}

func (s *Store) DeleteVocabulary(ctx context.Context, id string) error {
	return requireRow(s.db.ExecContext(ctx, `DELETE FROM vocabularies WHERE id::text = $1`, id))
}

func (s *Store) ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error) {
	rows := []models.ExerciseType{}
	err := s.db.SelectContext(ctx, &rows, `SELECT id, code, label FROM exercise_types ORDER BY code ASC`)
	return rows, err
}

func (s *Store) GetExerciseTypeByCode(ctx context.Context, code string) (models.ExerciseType, error) {
	var row models.ExerciseType
	err := s.db.GetContext(ctx, &row, `SELECT id, code, label FROM exercise_types WHERE code = $1`, code)
	return row, err
}

func (s *Store) ListExercises(ctx context.Context, levelID string) ([]models.Exercise, error) {
	rows := []models.Exercise{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+exerciseColumns+`
FROM exercises e
JOIN exercise_types et ON et.id = e.exercise_type_id
WHERE e.level_id::text = $1 AND e.is_active
ORDER BY e.order_index ASC
`, levelID)
	return rows, err
}

func (s *Store) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	var row models.Exercise
	err := s.db.GetContext(ctx, &row, `
SELECT `+exerciseColumns+`
FROM exercises e
JOIN exercise_types et ON et.id = e.exercise_type_id
WHERE e.id::text = $1 AND e.is_active
`, id)
	return row, err
}

func (s *Store) CreateExercise(ctx context.Context, ex *models.Exercise) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO exercises (id, level_id, exercise_type_id, title, description, content, difficulty, points, time_limit, order_index, is_active, created_at, updated_at)
VALUES (:id, :level_id, :exercise_type_id, :title, :description, :content, :difficulty, :points, :time_limit, :order_index, :is_active, :created_at, :updated_at)
`, ex)
	return mapWriteError(err)
}

func (s *Store) UpdateExercise(ctx context.Context, ex *models.Exercise) error {
	return requireRow(s.db.NamedExecContext(ctx, `
UPDATE exercises
SET level_id = :level_id, exercise_type_id = :exercise_type_id, title = :title, description = :description,
    content = :content, difficulty = :difficulty, points = :points, time_limit = :time_limit,
    order_index = :order_index, updated_at = :updated_at
WHERE id = :id AND is_active
`, ex))
}

func (s *Store) DeactivateExercise(ctx context.Context, id string) error {
	return requireRow(s.db.ExecContext(ctx, `UPDATE exercises SET is_active = FALSE, updated_at = now() WHERE id::text = $1 AND is_active`, id))
}

func (s *Store) ContentCounts(ctx context.Context) (models.ContentCounts, error) {
	var counts models.ContentCounts
	err := s.db.GetContext(ctx, &counts, `
SELECT
  (SELECT COUNT(*) FROM tiers) AS tiers,
  (SELECT COUNT(*) FROM levels) AS levels,
  (SELECT COUNT(*) FROM vocabularies) AS vocabularies,
  (SELECT COUNT(*) FROM exercises WHERE is_active) AS exercises,
  (SELECT COUNT(*) FROM users) AS users
`)
	return counts, err
}
