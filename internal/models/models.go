package models

import "time"

type Tier struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Description *string   `db:"description" json:"description"`
	OrderIndex  int       `db:"order_index" json:"orderIndex"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Level struct {
	ID              string    `db:"id" json:"id"`
	TierID          string    `db:"tier_id" json:"tierId"`
	Name            string    `db:"name" json:"name"`
	Description     *string   `db:"description" json:"description"`
	OrderIndex      int       `db:"order_index" json:"orderIndex"`
	UnlockCondition IDList    `db:"unlock_condition" json:"unlockCondition"`
	IsActive        bool      `db:"is_active" json:"isActive"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type Vocabulary struct {
	ID              string    `db:"id" json:"id"`
	LevelID         string    `db:"level_id" json:"levelId"`
	Word            string    `db:"word" json:"word"`
	Pronunciation   *string   `db:"pronunciation" json:"pronunciation"`
	Meaning         string    `db:"meaning" json:"meaning"`
	ExampleSentence *string   `db:"example_sentence" json:"exampleSentence"`
	AudioURL        *string   `db:"audio_url" json:"audioUrl"`
	PartOfSpeech    *string   `db:"part_of_speech" json:"partOfSpeech"`
	OrderIndex      int       `db:"order_index" json:"orderIndex"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type ExerciseType struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Label string `db:"label" json:"label"`
}

// Exercise rows are soft-deleted; IsActive=false rows are invisible to every read.
type Exercise struct {
	ID               string       `db:"id" json:"id"`
	LevelID          string       `db:"level_id" json:"levelId"`
	ExerciseTypeID   string       `db:"exercise_type_id" json:"exerciseTypeId"`
	ExerciseTypeCode string       `db:"exercise_type_code" json:"exerciseType"`
	Title            string       `db:"title" json:"title"`
	Description      *string      `db:"description" json:"description"`
	Content          JSONDocument `db:"content" json:"content"`
	Difficulty       int          `db:"difficulty" json:"difficulty"`
	Points           int          `db:"points" json:"points"`
	TimeLimit        *int         `db:"time_limit" json:"timeLimit"`
	OrderIndex       int          `db:"order_index" json:"orderIndex"`
	IsActive         bool         `db:"is_active" json:"isActive"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`
}

type AdminUser struct {
	ID         string    `db:"id" json:"id"`
	AuthUserID string    `db:"auth_user_id" json:"authUserId"`
	Email      string    `db:"email" json:"email"`
	FullName   *string   `db:"full_name" json:"fullName"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type User struct {
	ID         string    `db:"id" json:"id"`
	AuthUserID string    `db:"auth_user_id" json:"authUserId"`
	Email      string    `db:"email" json:"email"`
	FullName   *string   `db:"full_name" json:"fullName"`
	AvatarURL  *string   `db:"avatar_url" json:"avatarUrl"`
	Role       string    `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type UserLevelProgress struct {
	ID                 string     `db:"id" json:"id"`
	UserID             string     `db:"user_id" json:"userId"`
	LevelID            string     `db:"level_id" json:"levelId"`
	Status             string     `db:"status" json:"status"`
	CompletedExercises int        `db:"completed_exercises" json:"completedExercises"`
	BestScore          int        `db:"best_score" json:"bestScore"`
	StartedAt          *time.Time `db:"started_at" json:"startedAt"`
	CompletedAt        *time.Time `db:"completed_at" json:"completedAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

type UserStats struct {
	UserID             string     `db:"user_id" json:"userId"`
	TotalPoints        int        `db:"total_points" json:"totalPoints"`
	CurrentStreak      int        `db:"current_streak" json:"currentStreak"`
	LongestStreak      int        `db:"longest_streak" json:"longestStreak"`
	ExercisesCompleted int        `db:"exercises_completed" json:"exercisesCompleted"`
	LastActivityDate   *time.Time `db:"last_activity_date" json:"lastActivityDate"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

type ExerciseAttempt struct {
	ID               string       `db:"id" json:"id"`
	UserID           string       `db:"user_id" json:"userId"`
	ExerciseID       string       `db:"exercise_id" json:"exerciseId"`
	Score            int          `db:"score" json:"score"`
	PointsEarned     int          `db:"points_earned" json:"pointsEarned"`
	Answers          JSONDocument `db:"answers" json:"answers"`
	TimeSpentSeconds *int         `db:"time_spent_seconds" json:"timeSpentSeconds"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
}
