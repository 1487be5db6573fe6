package httpapi

import (
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/services"
)

type TierRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=10"`
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	OrderIndex  *int    `json:"orderIndex" validate:"omitempty,gte=1"`
	IsActive    *bool   `json:"isActive"`
}

func (r TierRequest) input() services.TierInput {
	return services.TierInput{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		OrderIndex:  r.OrderIndex,
		IsActive:    r.IsActive,
	}
}

type LevelRequest struct {
	TierID          *string   `json:"tierId" validate:"omitempty,uuid_rfc4122"`
	Name            *string   `json:"name" validate:"omitempty,max=200"`
	Description     *string   `json:"description" validate:"omitempty,max=2000"`
	OrderIndex      *int      `json:"orderIndex" validate:"omitempty,gte=1"`
	UnlockCondition *[]string `json:"unlockCondition" validate:"omitempty,dive,uuid_rfc4122"`
	IsActive        *bool     `json:"isActive"`
}

func (r LevelRequest) input() services.LevelInput {
	return services.LevelInput{
		TierID:          r.TierID,
		Name:            r.Name,
		Description:     r.Description,
		OrderIndex:      r.OrderIndex,
		UnlockCondition: r.UnlockCondition,
		IsActive:        r.IsActive,
	}
}

type VocabularyRequest struct {
	LevelID         *string `json:"levelId" validate:"omitempty,uuid_rfc4122"`
	Word            *string `json:"word" validate:"omitempty,max=200"`
	Pronunciation   *string `json:"pronunciation" validate:"omitempty,max=200"`
	Meaning         *string `json:"meaning" validate:"omitempty,max=1000"`
	ExampleSentence *string `json:"exampleSentence" validate:"omitempty,max=2000"`
	AudioURL        *string `json:"audioUrl" validate:"omitempty,max=500"`
	PartOfSpeech    *string `json:"partOfSpeech" validate:"omitempty,max=50"`
	OrderIndex      *int    `json:"orderIndex" validate:"omitempty,gte=1"`
}

func (r VocabularyRequest) input() services.VocabularyInput {
	return services.VocabularyInput{
		LevelID:         r.LevelID,
		Word:            r.Word,
		Pronunciation:   r.Pronunciation,
		Meaning:         r.Meaning,
		ExampleSentence: r.ExampleSentence,
		AudioURL:        r.AudioURL,
		PartOfSpeech:    r.PartOfSpeech,
		OrderIndex:      r.OrderIndex,
	}
}

type ExerciseRequest struct {
	LevelID      *string             `json:"levelId" validate:"omitempty,uuid_rfc4122"`
	ExerciseType *string             `json:"exerciseType" validate:"omitempty,max=50"`
	Title        *string             `json:"title" validate:"omitempty,max=200"`
	Description  *string             `json:"description" validate:"omitempty,max=2000"`
	Content      models.JSONDocument `json:"content"`
	Difficulty   *int                `json:"difficulty" validate:"omitempty,gte=1,lte=5"`
	Points       *int                `json:"points" validate:"omitempty,gte=0"`
	TimeLimit    *int                `json:"timeLimit" validate:"omitempty,gte=1"`
	OrderIndex   *int                `json:"orderIndex" validate:"omitempty,gte=1"`
}

func (r ExerciseRequest) input() services.ExerciseInput {
	return services.ExerciseInput{
		LevelID:      r.LevelID,
		ExerciseType: r.ExerciseType,
		Title:        r.Title,
		Description:  r.Description,
		Content:      r.Content,
		Difficulty:   r.Difficulty,
		Points:       r.Points,
		TimeLimit:    r.TimeLimit,
		OrderIndex:   r.OrderIndex,
	}
}

type AttemptRequest struct {
	Score            *int                `json:"score" validate:"required,gte=0,lte=100"`
	Answers          models.JSONDocument `json:"answers"`
	TimeSpentSeconds *int                `json:"timeSpentSeconds" validate:"omitempty,gte=0"`
}

func (r AttemptRequest) input() services.AttemptInput {
	return services.AttemptInput{Score: *r.Score, Answers: r.Answers, TimeSpentSeconds: r.TimeSpentSeconds}
}
