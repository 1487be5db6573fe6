package models

type TierSummary struct {
	Tier
	LevelCount int `db:"level_count" json:"levelCount"`
}

type TierDetail struct {
	TierSummary
	Levels []LevelSummary `json:"levels"`
}

type LevelSummary struct {
	Level
	VocabularyCount int `db:"vocabulary_count" json:"vocabularyCount"`
	ExerciseCount   int `db:"exercise_count" json:"exerciseCount"`
}

type TierRef struct {
	ID          string `db:"tier_id" json:"id"`
	Name        string `db:"tier_name" json:"name"`
	DisplayName string `db:"tier_display_name" json:"displayName"`
}

type LevelDetail struct {
	LevelSummary
	Tier         TierRef      `json:"tier"`
	Vocabularies []Vocabulary `json:"vocabularies"`
	Exercises    []Exercise   `json:"exercises"`
}

type UnlockStatus struct {
	LevelID        string   `json:"levelId"`
	Unlocked       bool     `json:"unlocked"`
	Prerequisites  []string `json:"prerequisites"`
	MissingLevelID []string `json:"missingLevelIds"`
}

type LeaderboardEntry struct {
	Rank          int     `db:"-" json:"rank"`
	UserID        string  `db:"user_id" json:"userId"`
	FullName      *string `db:"full_name" json:"fullName"`
	AvatarURL     *string `db:"avatar_url" json:"avatarUrl"`
	TotalPoints   int     `db:"total_points" json:"totalPoints"`
	CurrentStreak int     `db:"current_streak" json:"currentStreak"`
	LongestStreak int     `db:"longest_streak" json:"longestStreak"`
}

type ContentCounts struct {
	Tiers        int `db:"tiers" json:"tiers"`
	Levels       int `db:"levels" json:"levels"`
	Vocabularies int `db:"vocabularies" json:"vocabularies"`
	Exercises    int `db:"exercises" json:"exercises"`
	Users        int `db:"users" json:"users"`
}

// LevelEdge is the minimal projection used to check the prerequisite graph.
type LevelEdge struct {
	ID              string `db:"id"`
	UnlockCondition IDList `db:"unlock_condition"`
}
