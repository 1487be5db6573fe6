package store

import (
	"context"

	"hoctap-backend/internal/models"
)

const progressColumns = `id, user_id, level_id, status, completed_exercises, best_score, started_at, completed_at, updated_at`

func (s *Store) GetLevelProgress(ctx context.Context, userID, levelID string) (models.UserLevelProgress, error) {
	var row models.UserLevelProgress
	err := s.db.GetContext(ctx, &row, `
SELECT `+progressColumns+` FROM user_level_progress
WHERE user_id::text = $1 AND level_id::text = $2
`, userID, levelID)
	return row, err
}

func (s *Store) CompletedLevelIDs(ctx context.Context, userID string, levelIDs []string) ([]string, error) {
	ids := []string{}
	if len(levelIDs) == 0 {
		return ids, nil
	}
	err := s.db.SelectContext(ctx, &ids, `
SELECT level_id::text FROM user_level_progress
WHERE user_id::text = $1 AND status = 'completed'
  AND level_id::text IN (SELECT jsonb_array_elements_text($2::jsonb))
`, userID, models.IDList(levelIDs))
	return ids, err
}

// UpsertLevelProgress writes by (user, level). p.ID is replaced by the id of
// the stored row.
func (s *Store) UpsertLevelProgress(ctx context.Context, p *models.UserLevelProgress) error {
	query, args, err := s.db.BindNamed(`
INSERT INTO user_level_progress (id, user_id, level_id, status, completed_exercises, best_score, started_at, completed_at, updated_at)
VALUES (:id, :user_id, :level_id, :status, :completed_exercises, :best_score, :started_at, :completed_at, :updated_at)
ON CONFLICT (user_id, level_id) DO UPDATE
SET status = EXCLUDED.status,
    completed_exercises = EXCLUDED.completed_exercises,
    best_score = EXCLUDED.best_score,
    started_at = COALESCE(user_level_progress.started_at, EXCLUDED.started_at),
    completed_at = COALESCE(user_level_progress.completed_at, EXCLUDED.completed_at),
    updated_at = EXCLUDED.updated_at
RETURNING id
`, p)
	if err != nil {
		return err
	}
	return mapWriteError(s.db.GetContext(ctx, &p.ID, query, args...))
}

func (s *Store) HasPassedExercise(ctx context.Context, userID, exerciseID string, passingScore int) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
SELECT EXISTS(
  SELECT 1 FROM exercise_attempts
  WHERE user_id::text = $1 AND exercise_id::text = $2 AND score >= $3
)`, userID, exerciseID, passingScore)
	return exists, err
}

// PassedExerciseCount counts active exercises of the level the user passed at
// least once.
func (s *Store) PassedExerciseCount(ctx context.Context, userID, levelID string, passingScore int) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
SELECT COUNT(DISTINCT a.exercise_id)
FROM exercise_attempts a
JOIN exercises e ON e.id = a.exercise_id
WHERE a.user_id::text = $1 AND e.level_id::text = $2 AND e.is_active AND a.score >= $3
`, userID, levelID, passingScore)
	return n, err
}

func (s *Store) InsertAttempt(ctx context.Context, a *models.ExerciseAttempt) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO exercise_attempts (id, user_id, exercise_id, score, points_earned, answers, time_spent_seconds, created_at)
VALUES (:id, :user_id, :exercise_id, :score, :points_earned, :answers, :time_spent_seconds, :created_at)
`, a)
	return mapWriteError(err)
}

func (s *Store) GetStats(ctx context.Context, userID string) (models.UserStats, error) {
	var row models.UserStats
	err := s.db.GetContext(ctx, &row, `
SELECT user_id, total_points, current_streak, longest_streak, exercises_completed, last_activity_date, updated_at
FROM user_stats WHERE user_id::text = $1
`, userID)
	return row, err
}

func (s *Store) SaveStats(ctx context.Context, st *models.UserStats) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO user_stats (user_id, total_points, current_streak, longest_streak, exercises_completed, last_activity_date, updated_at)
VALUES (:user_id, :total_points, :current_streak, :longest_streak, :exercises_completed, :last_activity_date, :updated_at)
ON CONFLICT (user_id) DO UPDATE
SET total_points = EXCLUDED.total_points,
    current_streak = EXCLUDED.current_streak,
    longest_streak = EXCLUDED.longest_streak,
    exercises_completed = EXCLUDED.exercises_completed,
    last_activity_date = EXCLUDED.last_activity_date,
    updated_at = EXCLUDED.updated_at
`, st)
	return mapWriteError(err)
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows := []models.LeaderboardEntry{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT s.user_id, u.full_name, u.avatar_url, s.total_points, s.current_streak, s.longest_streak
FROM user_stats s
JOIN users u ON u.id = s.user_id
ORDER BY s.total_points DESC, s.longest_streak DESC, u.created_at ASC
LIMIT $1
`, limit)
	return rows, err
}
