package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// ProgressNotStarted is reported for levels the user never opened. It is
// never stored.
const ProgressNotStarted = "not_started"

type ProgressService struct {
	content      ContentStore
	progress     ProgressStore
	passingScore int
	log          *logger.Logger
	now          func() time.Time
}

func NewProgressService(content ContentStore, progress ProgressStore, passingScore int, log *logger.Logger) *ProgressService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressService{content: content, progress: progress, passingScore: passingScore, log: log, now: time.Now}
}

type AttemptInput struct {
	Score            int
	Answers          models.JSONDocument
	TimeSpentSeconds *int
}

type AttemptResult struct {
	Attempt       models.ExerciseAttempt   `json:"attempt"`
	Passed        bool                     `json:"passed"`
	Stats         models.UserStats         `json:"stats"`
	LevelProgress models.UserLevelProgress `json:"levelProgress"`
}

func (s *ProgressService) level(ctx context.Context, levelID string) (models.LevelDetail, error) {
	level, err := s.content.GetLevel(ctx, levelID)
	if err != nil {
		return models.LevelDetail{}, notFoundOr(err, MsgLevelNotFound)
	}
	return level, nil
}

func (s *ProgressService) unlockStatus(ctx context.Context, userID string, level models.Level) (models.UnlockStatus, error) {
	status := models.UnlockStatus{
		LevelID:        level.ID,
		Unlocked:       true,
		Prerequisites:  []string(level.UnlockCondition),
		MissingLevelID: []string{},
	}
	if status.Prerequisites == nil {
		status.Prerequisites = []string{}
	}
	if len(level.UnlockCondition) == 0 {
		return status, nil
	}
	completed, err := s.progress.CompletedLevelIDs(ctx, userID, level.UnlockCondition)
	if err != nil {
		return models.UnlockStatus{}, err
	}
	status.MissingLevelID = MissingPrerequisites(level.UnlockCondition, completed)
	status.Unlocked = len(status.MissingLevelID) == 0
	return status, nil
}

func (s *ProgressService) UnlockStatus(ctx context.Context, userID, levelID string) (models.UnlockStatus, error) {
	level, err := s.level(ctx, levelID)
	if err != nil {
		return models.UnlockStatus{}, err
	}
	return s.unlockStatus(ctx, userID, level.Level)
}

func (s *ProgressService) ensureUnlocked(ctx context.Context, userID string, level models.Level) error {
	status, err := s.unlockStatus(ctx, userID, level)
	if err != nil {
		return err
	}
	if !status.Unlocked {
		return ErrForbidden(MsgLevelLocked)
	}
	return nil
}

func (s *ProgressService) StartLevel(ctx context.Context, userID, levelID string) (models.UserLevelProgress, error) {
	level, err := s.level(ctx, levelID)
	if err != nil {
		return models.UserLevelProgress{}, err
	}
	if err := s.ensureUnlocked(ctx, userID, level.Level); err != nil {
		return models.UserLevelProgress{}, err
	}
	now := s.now().UTC()
	p, err := s.progress.GetLevelProgress(ctx, userID, levelID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = models.UserLevelProgress{
			ID:      uuid.NewString(),
			UserID:  userID,
			LevelID: levelID,
			Status:  models.ProgressInProgress,
		}
	case err != nil:
		return models.UserLevelProgress{}, err
	}
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	if p.Status == models.ProgressLocked {
		p.Status = models.ProgressInProgress
	}
	p.UpdatedAt = now
	if err := s.progress.UpsertLevelProgress(ctx, &p); err != nil {
		return models.UserLevelProgress{}, err
	}
	return p, nil
}

func (s *ProgressService) LevelProgress(ctx context.Context, userID, levelID string) (models.UserLevelProgress, error) {
	level, err := s.level(ctx, levelID)
	if err != nil {
		return models.UserLevelProgress{}, err
	}
	p, err := s.progress.GetLevelProgress(ctx, userID, levelID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.UserLevelProgress{}, err
	}
	status, err := s.unlockStatus(ctx, userID, level.Level)
	if err != nil {
		return models.UserLevelProgress{}, err
	}
	p = models.UserLevelProgress{UserID: userID, LevelID: levelID, Status: ProgressNotStarted}
	if !status.Unlocked {
		p.Status = models.ProgressLocked
	}
	return p, nil
}

// SubmitAttempt records a scored attempt. Points are earned once per
// exercise, on its first passing attempt.
func (s *ProgressService) SubmitAttempt(ctx context.Context, userID, exerciseID string, in AttemptInput) (AttemptResult, error) {
	if in.Score < 0 || in.Score > 100 {
		return AttemptResult{}, ErrValidation(MsgInvalidScore, FieldError{Field: "score", Message: MsgInvalidScore})
	}
	if in.Answers != nil && !json.Valid(in.Answers) {
		return AttemptResult{}, ErrValidation(MsgInvalidPayload, FieldError{Field: "answers", Message: MsgInvalidPayload})
	}
	ex, err := s.content.GetExercise(ctx, exerciseID)
	if err != nil {
		return AttemptResult{}, notFoundOr(err, MsgExerciseNotFound)
	}
	level, err := s.level(ctx, ex.LevelID)
	if err != nil {
		return AttemptResult{}, err
	}
	if err := s.ensureUnlocked(ctx, userID, level.Level); err != nil {
		return AttemptResult{}, err
	}

	passed := in.Score >= s.passingScore
	alreadyPassed, err := s.progress.HasPassedExercise(ctx, userID, exerciseID, s.passingScore)
	if err != nil {
		return AttemptResult{}, err
	}
	firstPass := passed && !alreadyPassed

	now := s.now().UTC()
	attempt := models.ExerciseAttempt{
		ID:               uuid.NewString(),
		UserID:           userID,
		ExerciseID:       exerciseID,
		Score:            in.Score,
		Answers:          in.Answers,
		TimeSpentSeconds: in.TimeSpentSeconds,
		CreatedAt:        now,
	}
	if firstPass {
		attempt.PointsEarned = PointsEarned(ex.Points, in.Score)
	}
	if err := s.progress.InsertAttempt(ctx, &attempt); err != nil {
		return AttemptResult{}, err
	}

	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return AttemptResult{}, err
	}
	stats.TotalPoints += attempt.PointsEarned
	if firstPass {
		stats.ExercisesCompleted++
	}
	stats.CurrentStreak = NextStreak(stats.LastActivityDate, now, stats.CurrentStreak)
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	today := truncateDay(now)
	stats.LastActivityDate = &today
	stats.UpdatedAt = now
	if err := s.progress.SaveStats(ctx, &stats); err != nil {
		return AttemptResult{}, err
	}

	lp, err := s.advanceLevel(ctx, userID, level.LevelSummary, in.Score, now)
	if err != nil {
		return AttemptResult{}, err
	}
	s.log.Debug("attempt recorded", "user_id", userID, "exercise_id", exerciseID, "score", in.Score, "points", attempt.PointsEarned)
	return AttemptResult{Attempt: attempt, Passed: passed, Stats: stats, LevelProgress: lp}, nil
}

func (s *ProgressService) advanceLevel(ctx context.Context, userID string, level models.LevelSummary, score int, now time.Time) (models.UserLevelProgress, error) {
	p, err := s.progress.GetLevelProgress(ctx, userID, level.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = models.UserLevelProgress{ID: uuid.NewString(), UserID: userID, LevelID: level.ID, Status: models.ProgressInProgress}
	case err != nil:
		return models.UserLevelProgress{}, err
	}
	passedCount, err := s.progress.PassedExerciseCount(ctx, userID, level.ID, s.passingScore)
	if err != nil {
		return models.UserLevelProgress{}, err
	}
	p.CompletedExercises = passedCount
	if score > p.BestScore {
		p.BestScore = score
	}
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	if level.ExerciseCount > 0 && passedCount >= level.ExerciseCount {
		if p.Status != models.ProgressCompleted {
			p.CompletedAt = &now
		}
		p.Status = models.ProgressCompleted
	} else if p.Status != models.ProgressCompleted {
		p.Status = models.ProgressInProgress
	}
	p.UpdatedAt = now
	if err := s.progress.UpsertLevelProgress(ctx, &p); err != nil {
		return models.UserLevelProgress{}, err
	}
	return p, nil
}

func (s *ProgressService) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	stats, err := s.progress.GetStats(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserStats{UserID: userID}, nil
	}
	return stats, err
}

func (s *ProgressService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	limit = ClampLeaderboardLimit(limit)
	entries, err := s.progress.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func ClampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

func PointsEarned(points, score int) int {
	return int(math.Round(float64(points*score) / 100))
}

// NextStreak applies the daily streak rule: same day keeps it, the next
// calendar day extends it, anything else restarts at 1.
func NextStreak(last *time.Time, now time.Time, current int) int {
	if last == nil || current <= 0 {
		return 1
	}
	today := truncateDay(now)
	lastDay := truncateDay(*last)
	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
