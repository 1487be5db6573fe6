package services

import (
	"context"

	"hoctap-backend/internal/models"
)

// Scope names the sibling set an order index must be unique within.
type Scope string

const (
	ScopeTier       Scope = "tier"
	ScopeLevel      Scope = "level"
	ScopeVocabulary Scope = "vocabulary"
	ScopeExercise   Scope = "exercise"
)

// Get-style lookups report a missing row with sql.ErrNoRows. Writes rejected
// by a unique constraint return *DuplicateError, and deletes blocked by a
// foreign key return *ReferencedError.
type ContentStore interface {
	OrderIndexExists(ctx context.Context, scope Scope, parentID string, orderIndex int, excludeID string) (bool, error)
	NextOrderIndex(ctx context.Context, scope Scope, parentID string) (int, error)

	ListTiers(ctx context.Context) ([]models.TierSummary, error)
	GetTier(ctx context.Context, id string) (models.TierSummary, error)
	GetTierByCode(ctx context.Context, code string) (models.TierSummary, error)
	TierCodeExists(ctx context.Context, code, excludeID string) (bool, error)
	CreateTier(ctx context.Context, tier *models.Tier) error
	UpdateTier(ctx context.Context, tier *models.Tier) error
	DeleteTier(ctx context.Context, id string) error

	ListLevelsByTier(ctx context.Context, tierID string) ([]models.LevelSummary, error)
	GetLevel(ctx context.Context, id string) (models.LevelDetail, error)
	LevelEdges(ctx context.Context) ([]models.LevelEdge, error)
	ExistingLevelIDs(ctx context.Context, ids []string) ([]string, error)
	CreateLevel(ctx context.Context, level *models.Level) error
	UpdateLevel(ctx context.Context, level *models.Level) error
	DeleteLevel(ctx context.Context, id string) error

	ListVocabulary(ctx context.Context, levelID string) ([]models.Vocabulary, error)
	GetVocabulary(ctx context.Context, id string) (models.Vocabulary, error)
	WordExists(ctx context.Context, levelID, word, excludeID string) (bool, error)
	CreateVocabulary(ctx context.Context, v *models.Vocabulary) error
	UpdateVocabulary(ctx context.Context, v *models.Vocabulary) error
	DeleteVocabulary(ctx context.Context, id string) error

	ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error)
	GetExerciseTypeByCode(ctx context.Context, code string) (models.ExerciseType, error)
	ListExercises(ctx context.Context, levelID string) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id string) (models.Exercise, error)
	CreateExercise(ctx context.Context, ex *models.Exercise) error
	UpdateExercise(ctx context.Context, ex *models.Exercise) error
	DeactivateExercise(ctx context.Context, id string) error

	ContentCounts(ctx context.Context) (models.ContentCounts, error)
}

type AccountStore interface {
	FindAdminByAuthID(ctx context.Context, authUserID string) (models.AdminUser, error)
	FindUserByAuthID(ctx context.Context, authUserID string) (models.User, error)
	GetAdmin(ctx context.Context, id string) (models.AdminUser, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	AdminEmailExists(ctx context.Context, email string) (bool, error)
	UserEmailExists(ctx context.Context, email string) (bool, error)
	CreateAdmin(ctx context.Context, admin *models.AdminUser) error
	CreateUser(ctx context.Context, user *models.User) error
}

type ProgressStore interface {
	GetLevelProgress(ctx context.Context, userID, levelID string) (models.UserLevelProgress, error)
	CompletedLevelIDs(ctx context.Context, userID string, levelIDs []string) ([]string, error)
	UpsertLevelProgress(ctx context.Context, p *models.UserLevelProgress) error
	HasPassedExercise(ctx context.Context, userID, exerciseID string, passingScore int) (bool, error)
	PassedExerciseCount(ctx context.Context, userID, levelID string, passingScore int) (int, error)
	InsertAttempt(ctx context.Context, a *models.ExerciseAttempt) error
	GetStats(ctx context.Context, userID string) (models.UserStats, error)
	SaveStats(ctx context.Context, stats *models.UserStats) error
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type Store interface {
	ContentStore
	AccountStore
	ProgressStore
}
