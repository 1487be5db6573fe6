package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

// LearningPath owns the tier → level → vocabulary/exercise hierarchy.
type LearningPath struct {
	store ContentStore
	log   *logger.Logger
	now   func() time.Time
}

func NewLearningPath(store ContentStore, log *logger.Logger) *LearningPath {
	if log == nil {
		log = logger.Nop()
	}
	return &LearningPath{store: store, log: log, now: time.Now}
}

type TierInput struct {
	Name        *string
	DisplayName *string
	Description *string
	OrderIndex  *int
	IsActive    *bool
}

type LevelInput struct {
	TierID          *string
	Name            *string
	Description     *string
	OrderIndex      *int
	UnlockCondition *[]string
	IsActive        *bool
}

type VocabularyInput struct {
	LevelID         *string
	Word            *string
	Pronunciation   *string
	Meaning         *string
	ExampleSentence *string
	AudioURL        *string
	PartOfSpeech    *string
	OrderIndex      *int
}

type ExerciseInput struct {
	LevelID      *string
	ExerciseType *string
	Title        *string
	Description  *string
	Content      models.JSONDocument
	Difficulty   *int
	Points       *int
	TimeLimit    *int
	OrderIndex   *int
}

func (s *LearningPath) ListTiers(ctx context.Context) ([]models.TierSummary, error) {
	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	if tiers == nil {
		tiers = []models.TierSummary{}
	}
	return tiers, nil
}

func (s *LearningPath) GetTier(ctx context.Context, id string) (models.TierSummary, error) {
	tier, err := s.store.GetTier(ctx, id)
	if err != nil {
		return models.TierSummary{}, notFoundOr(err, MsgTierNotFound)
	}
	return tier, nil
}

func (s *LearningPath) GetTierByCode(ctx context.Context, code string) (models.TierDetail, error) {
	code = models.NormalizeTierCode(code)
	if !models.IsCEFRCode(code) {
		return models.TierDetail{}, ErrNotFound(MsgTierNotFound)
	}
	tier, err := s.store.GetTierByCode(ctx, code)
	if err != nil {
		return models.TierDetail{}, notFoundOr(err, MsgTierNotFound)
	}
	levels, err := s.store.ListLevelsByTier(ctx, tier.ID)
	if err != nil {
		return models.TierDetail{}, err
	}
	if levels == nil {
		levels = []models.LevelSummary{}
	}
	return models.TierDetail{TierSummary: tier, Levels: levels}, nil
}

func (s *LearningPath) CreateTier(ctx context.Context, in TierInput) (models.TierSummary, error) {
	if in.Name == nil {
		return models.TierSummary{}, ErrValidation(MsgInvalidPayload, FieldError{Field: "name", Message: MsgRequired})
	}
	code := models.NormalizeTierCode(*in.Name)
	if !models.IsCEFRCode(code) {
		return models.TierSummary{}, ErrValidation(MsgInvalidTierCode, FieldError{Field: "name", Message: MsgInvalidTierCode})
	}
	displayName, err := NormalizeRequired(deref(in.DisplayName), "displayName")
	if err != nil {
		return models.TierSummary{}, err
	}
	exists, err := IsTierCodeExists(ctx, s.store, code, "")
	if err != nil {
		return models.TierSummary{}, err
	}
	if exists {
		return models.TierSummary{}, ErrConflict(MsgTierCodeExists)
	}
	order, err := resolveOrderIndex(ctx, s.store, ScopeTier, "", in.OrderIndex)
	if err != nil {
		return models.TierSummary{}, err
	}
	if err := ensureOrderIndexFree(ctx, s.store, ScopeTier, "", order, ""); err != nil {
		return models.TierSummary{}, err
	}

	now := s.now().UTC()
	tier := models.Tier{
		ID:          uuid.NewString(),
		Name:        code,
		DisplayName: displayName,
		Description: NormalizeOptional(in.Description),
		OrderIndex:  order,
		IsActive:    boolOr(in.IsActive, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTier(ctx, &tier); err != nil {
		return models.TierSummary{}, conflictFromStore(err)
	}
	s.log.Info("tier created", "tier_id", tier.ID, "code", tier.Name)
	return models.TierSummary{Tier: tier}, nil
}

func (s *LearningPath) UpdateTier(ctx context.Context, id string, in TierInput) (models.TierSummary, error) {
	current, err := s.GetTier(ctx, id)
	if err != nil {
		return models.TierSummary{}, err
	}
	tier := current.Tier
	if in.Name != nil {
		code := models.NormalizeTierCode(*in.Name)
		if !models.IsCEFRCode(code) {
			return models.TierSummary{}, ErrValidation(MsgInvalidTierCode, FieldError{Field: "name", Message: MsgInvalidTierCode})
		}
		if code != tier.Name {
			exists, err := IsTierCodeExists(ctx, s.store, code, tier.ID)
			if err != nil {
				return models.TierSummary{}, err
			}
			if exists {
				return models.TierSummary{}, ErrConflict(MsgTierCodeExists)
			}
		}
		tier.Name = code
	}
	if in.DisplayName != nil {
		displayName, err := NormalizeRequired(*in.DisplayName, "displayName")
		if err != nil {
			return models.TierSummary{}, err
		}
		tier.DisplayName = displayName
	}
	if in.Description != nil {
		tier.Description = NormalizeOptional(in.Description)
	}
	if in.OrderIndex != nil && *in.OrderIndex != tier.OrderIndex {
		order, err := resolveOrderIndex(ctx, s.store, ScopeTier, "", in.OrderIndex)
		if err != nil {
			return models.TierSummary{}, err
		}
		if err := ensureOrderIndexFree(ctx, s.store, ScopeTier, "", order, tier.ID); err != nil {
			return models.TierSummary{}, err
		}
		tier.OrderIndex = order
	}
	if in.IsActive != nil {
		tier.IsActive = *in.IsActive
	}
	tier.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTier(ctx, &tier); err != nil {
		return models.TierSummary{}, notFoundOr(conflictFromStore(err), MsgTierNotFound)
	}
	return models.TierSummary{Tier: tier, LevelCount: current.LevelCount}, nil
}

func (s *LearningPath) DeleteTier(ctx context.Context, id string) error {
	tier, err := s.GetTier(ctx, id)
	if err != nil {
		return err
	}
	if tier.LevelCount > 0 {
		return ErrConflict(MsgTierHasLevels)
	}
	if err := s.store.DeleteTier(ctx, id); err != nil {
		if isReferenced(err) {
			return ErrConflict(MsgTierHasLevels)
		}
		return notFoundOr(err, MsgTierNotFound)
	}
	s.log.Info("tier deleted", "tier_id", id)
	return nil
}

func (s *LearningPath) ListLevelsByTier(ctx context.Context, tierID string) ([]models.LevelSummary, error) {
	if _, err := s.GetTier(ctx, tierID); err != nil {
		return nil, err
	}
	levels, err := s.store.ListLevelsByTier(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = []models.LevelSummary{}
	}
	return levels, nil
}

func (s *LearningPath) getLevel(ctx context.Context, id string) (models.LevelDetail, error) {
	level, err := s.store.GetLevel(ctx, id)
	if err != nil {
		return models.LevelDetail{}, notFoundOr(err, MsgLevelNotFound)
	}
	return level, nil
}

func (s *LearningPath) GetLevelDetail(ctx context.Context, id string) (models.LevelDetail, error) {
	detail, err := s.getLevel(ctx, id)
	if err != nil {
		return models.LevelDetail{}, err
	}
	var (
		vocab     []models.Vocabulary
		exercises []models.Exercise
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vocab, err = s.store.ListVocabulary(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		exercises, err = s.store.ListExercises(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.LevelDetail{}, err
	}
	if vocab == nil {
		vocab = []models.Vocabulary{}
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	detail.Vocabularies = vocab
	detail.Exercises = exercises
	if detail.Level.UnlockCondition == nil {
		detail.Level.UnlockCondition = models.IDList{}
	}
	return detail, nil
}

func (s *LearningPath) CreateLevel(ctx context.Context, in LevelInput) (models.LevelSummary, error) {
	tierID, err := referenceID(deref(in.TierID), "tierId")
	if err != nil {
		return models.LevelSummary{}, err
	}
	if _, err := s.GetTier(ctx, tierID); err != nil {
		return models.LevelSummary{}, err
	}
	name, err := NormalizeRequired(deref(in.Name), "name")
	if err != nil {
		return models.LevelSummary{}, err
	}
	order, err := resolveOrderIndex(ctx, s.store, ScopeLevel, tierID, in.OrderIndex)
	if err != nil {
		return models.LevelSummary{}, err
	}
	if err := ensureOrderIndexFree(ctx, s.store, ScopeLevel, tierID, order, ""); err != nil {
		return models.LevelSummary{}, err
	}

	id := uuid.NewString()
	prereqs := models.IDList{}
	if in.UnlockCondition != nil {
		prereqs, err = NormalizeUnlockCondition(id, *in.UnlockCondition)
		if err != nil {
			return models.LevelSummary{}, err
		}
		if err := validateUnlockCondition(ctx, s.store, id, prereqs); err != nil {
			return models.LevelSummary{}, err
		}
	}

	now := s.now().UTC()
	level := models.Level{
		ID:              id,
		TierID:          tierID,
		Name:            name,
		Description:     NormalizeOptional(in.Description),
		OrderIndex:      order,
		UnlockCondition: prereqs,
		IsActive:        boolOr(in.IsActive, true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateLevel(ctx, &level); err != nil {
		return models.LevelSummary{}, conflictFromStore(err)
	}
	s.log.Info("level created", "level_id", level.ID, "tier_id", tierID)
	return models.LevelSummary{Level: level}, nil
}

func (s *LearningPath) UpdateLevel(ctx context.Context, id string, in LevelInput) (models.LevelSummary, error) {
	current, err := s.getLevel(ctx, id)
	if err != nil {
		return models.LevelSummary{}, err
	}
	level := current.Level
	tierChanged := false
	if in.TierID != nil {
		tierID, err := referenceID(*in.TierID, "tierId")
		if err != nil {
			return models.LevelSummary{}, err
		}
		if tierID != level.TierID {
			if _, err := s.GetTier(ctx, tierID); err != nil {
				return models.LevelSummary{}, err
			}
			level.TierID = tierID
			tierChanged = true
		}
	}
	if in.Name != nil {
		name, err := NormalizeRequired(*in.Name, "name")
		if err != nil {
			return models.LevelSummary{}, err
		}
		level.Name = name
	}
	if in.Description != nil {
		level.Description = NormalizeOptional(in.Description)
	}
	orderChanged := in.OrderIndex != nil && *in.OrderIndex != level.OrderIndex
	if orderChanged {
		order, err := resolveOrderIndex(ctx, s.store, ScopeLevel, level.TierID, in.OrderIndex)
		if err != nil {
			return models.LevelSummary{}, err
		}
		level.OrderIndex = order
	}
	if orderChanged || tierChanged {
		if err := ensureOrderIndexFree(ctx, s.store, ScopeLevel, level.TierID, level.OrderIndex, level.ID); err != nil {
			return models.LevelSummary{}, err
		}
	}
	if in.UnlockCondition != nil {
		prereqs, err := NormalizeUnlockCondition(level.ID, *in.UnlockCondition)
		if err != nil {
			return models.LevelSummary{}, err
		}
		if err := validateUnlockCondition(ctx, s.store, level.ID, prereqs); err != nil {
			return models.LevelSummary{}, err
		}
		level.UnlockCondition = prereqs
	}
	if in.IsActive != nil {
		level.IsActive = *in.IsActive
	}
	level.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateLevel(ctx, &level); err != nil {
		return models.LevelSummary{}, notFoundOr(conflictFromStore(err), MsgLevelNotFound)
	}
	return models.LevelSummary{
		Level:           level,
		VocabularyCount: current.VocabularyCount,
		ExerciseCount:   current.ExerciseCount,
	}, nil
}

// DeleteLevel removes the level with its children and drops it from every
// other level's prerequisites.
func (s *LearningPath) DeleteLevel(ctx context.Context, id string) error {
	if _, err := s.getLevel(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteLevel(ctx, id); err != nil {
		return notFoundOr(err, MsgLevelNotFound)
	}
	s.log.Info("level deleted", "level_id", id)
	return nil
}

func (s *LearningPath) ListVocabulary(ctx context.Context, levelID string) ([]models.Vocabulary, error) {
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return nil, err
	}
	items, err := s.store.ListVocabulary(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Vocabulary{}
	}
	return items, nil
}

func (s *LearningPath) GetVocabulary(ctx context.Context, id string) (models.Vocabulary, error) {
	v, err := s.store.GetVocabulary(ctx, id)
	if err != nil {
		return models.Vocabulary{}, notFoundOr(err, MsgVocabularyNotFound)
	}
	return v, nil
}

func (s *LearningPath) CreateVocabulary(ctx context.Context, in VocabularyInput) (models.Vocabulary, error) {
	levelID, err := referenceID(deref(in.LevelID), "levelId")
	if err != nil {
		return models.Vocabulary{}, err
	}
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return models.Vocabulary{}, err
	}
	word, err := NormalizeRequired(deref(in.Word), "word")
	if err != nil {
		return models.Vocabulary{}, err
	}
	meaning, err := NormalizeRequired(deref(in.Meaning), "meaning")
	if err != nil {
		return models.Vocabulary{}, err
	}
	exists, err := IsWordExists(ctx, s.store, levelID, word, "")
	if err != nil {
		return models.Vocabulary{}, err
	}
	if exists {
		return models.Vocabulary{}, ErrConflict(MsgWordExists)
	}
	order, err := resolveOrderIndex(ctx, s.store, ScopeVocabulary, levelID, in.OrderIndex)
	if err != nil {
		return models.Vocabulary{}, err
	}
	if err := ensureOrderIndexFree(ctx, s.store, ScopeVocabulary, levelID, order, ""); err != nil {
		return models.Vocabulary{}, err
	}

	now := s.now().UTC()
	v := models.Vocabulary{
		ID:              uuid.NewString(),
		LevelID:         levelID,
		Word:            word,
		Pronunciation:   NormalizeOptional(in.Pronunciation),
		Meaning:         meaning,
		ExampleSentence: NormalizeOptional(in.ExampleSentence),
		AudioURL:        NormalizeOptional(in.AudioURL),
		PartOfSpeech:    NormalizeOptional(in.PartOfSpeech),
		OrderIndex:      order,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateVocabulary(ctx, &v); err != nil {
		return models.Vocabulary{}, conflictFromStore(err)
	}
	return v, nil
}

func (s *LearningPath) UpdateVocabulary(ctx context.Context, id string, in VocabularyInput) (models.Vocabulary, error) {
	v, err := s.GetVocabulary(ctx, id)
	if err != nil {
		return models.Vocabulary{}, err
	}
	levelChanged := false
	if in.LevelID != nil {
		levelID, err := referenceID(*in.LevelID, "levelId")
		if err != nil {
			return models.Vocabulary{}, err
		}
		if levelID != v.LevelID {
			if _, err := s.getLevel(ctx, levelID); err != nil {
				return models.Vocabulary{}, err
			}
			v.LevelID = levelID
			levelChanged = true
		}
	}
	wordChanged := levelChanged
	if in.Word != nil {
		word, err := NormalizeRequired(*in.Word, "word")
		if err != nil {
			return models.Vocabulary{}, err
		}
		if !strings.EqualFold(word, v.Word) {
			wordChanged = true
		}
		v.Word = word
	}
	if wordChanged {
		exists, err := IsWordExists(ctx, s.store, v.LevelID, v.Word, v.ID)
		if err != nil {
			return models.Vocabulary{}, err
		}
		if exists {
			return models.Vocabulary{}, ErrConflict(MsgWordExists)
		}
	}
	if in.Meaning != nil {
		meaning, err := NormalizeRequired(*in.Meaning, "meaning")
		if err != nil {
			return models.Vocabulary{}, err
		}
		v.Meaning = meaning
	}
	if in.Pronunciation != nil {
		v.Pronunciation = NormalizeOptional(in.Pronunciation)
	}
	if in.ExampleSentence != nil {
		v.ExampleSentence = NormalizeOptional(in.ExampleSentence)
	}
	if in.AudioURL != nil {
		v.AudioURL = NormalizeOptional(in.AudioURL)
	}
	if in.PartOfSpeech != nil {
		v.PartOfSpeech = NormalizeOptional(in.PartOfSpeech)
	}
	orderChanged := in.OrderIndex != nil && *in.OrderIndex != v.OrderIndex
	if orderChanged {
		order, err := resolveOrderIndex(ctx, s.store, ScopeVocabulary, v.LevelID, in.OrderIndex)
		if err != nil {
			return models.Vocabulary{}, err
		}
		v.OrderIndex = order
	}
	if orderChanged || levelChanged {
		if err := ensureOrderIndexFree(ctx, s.store, ScopeVocabulary, v.LevelID, v.OrderIndex, v.ID); err != nil {
			return models.Vocabulary{}, err
		}
	}
	v.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateVocabulary(ctx, &v); err != nil {
		return models.Vocabulary{}, notFoundOr(conflictFromStore(err), MsgVocabularyNotFound)
	}
	return v, nil
}

func (s *LearningPath) DeleteVocabulary(ctx context.Context, id string) error {
	if err := s.store.DeleteVocabulary(ctx, id); err != nil {
		return notFoundOr(err, MsgVocabularyNotFound)
	}
	return nil
}

func (s *LearningPath) ListExerciseTypes(ctx context.Context) ([]models.ExerciseType, error) {
	types, err := s.store.ListExerciseTypes(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []models.ExerciseType{}
	}
	return types, nil
}

func (s *LearningPath) ListExercises(ctx context.Context, levelID string) ([]models.Exercise, error) {
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return nil, err
	}
	items, err := s.store.ListExercises(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Exercise{}
	}
	return items, nil
}

func (s *LearningPath) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	ex, err := s.store.GetExercise(ctx, id)
	if err != nil {
		return models.Exercise{}, notFoundOr(err, MsgExerciseNotFound)
	}
	return ex, nil
}

func (s *LearningPath) resolveExerciseType(ctx context.Context, code string) (models.ExerciseType, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	t, err := s.store.GetExerciseTypeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ExerciseType{}, ErrValidation(MsgInvalidExerciseType, FieldError{Field: "exerciseType", Message: MsgInvalidExerciseType})
		}
		return models.ExerciseType{}, err
	}
	return t, nil
}

func validateExerciseNumbers(in ExerciseInput) error {
	if in.Difficulty != nil && (*in.Difficulty < 1 || *in.Difficulty > 5) {
		return ErrValidation(MsgInvalidDifficulty, FieldError{Field: "difficulty", Message: MsgInvalidDifficulty})
	}
	if in.Points != nil && *in.Points < 0 {
		return ErrValidation(MsgInvalidPayload, FieldError{Field: "points", Message: MsgInvalidPayload})
	}
	if in.TimeLimit != nil && *in.TimeLimit < 1 {
		return ErrValidation(MsgInvalidPayload, FieldError{Field: "timeLimit", Message: MsgInvalidPayload})
	}
	if in.Content != nil && !in.Content.IsObject() {
		return ErrValidation(MsgInvalidContent, FieldError{Field: "content", Message: MsgInvalidContent})
	}
	return nil
}

func (s *LearningPath) CreateExercise(ctx context.Context, in ExerciseInput) (models.Exercise, error) {
	levelID, err := referenceID(deref(in.LevelID), "levelId")
	if err != nil {
		return models.Exercise{}, err
	}
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return models.Exercise{}, err
	}
	title, err := NormalizeRequired(deref(in.Title), "title")
	if err != nil {
		return models.Exercise{}, err
	}
	if in.ExerciseType == nil {
		return models.Exercise{}, ErrValidation(MsgInvalidPayload, FieldError{Field: "exerciseType", Message: MsgRequired})
	}
	if in.Content == nil {
		return models.Exercise{}, ErrValidation(MsgInvalidPayload, FieldError{Field: "content", Message: MsgRequired})
	}
	if err := validateExerciseNumbers(in); err != nil {
		return models.Exercise{}, err
	}
	exType, err := s.resolveExerciseType(ctx, *in.ExerciseType)
	if err != nil {
		return models.Exercise{}, err
	}
	order, err := resolveOrderIndex(ctx, s.store, ScopeExercise, levelID, in.OrderIndex)
	if err != nil {
		return models.Exercise{}, err
	}
	if err := ensureOrderIndexFree(ctx, s.store, ScopeExercise, levelID, order, ""); err != nil {
		return models.Exercise{}, err
	}

	now := s.now().UTC()
	ex := models.Exercise{
		ID:               uuid.NewString(),
		LevelID:          levelID,
		ExerciseTypeID:   exType.ID,
		ExerciseTypeCode: exType.Code,
		Title:            title,
		Description:      NormalizeOptional(in.Description),
		Content:          in.Content,
		Difficulty:       intOr(in.Difficulty, 1),
		Points:           intOr(in.Points, 10),
		TimeLimit:        in.TimeLimit,
		OrderIndex:       order,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateExercise(ctx, &ex); err != nil {
		return models.Exercise{}, conflictFromStore(err)
	}
	return ex, nil
}

func (s *LearningPath) UpdateExercise(ctx context.Context, id string, in ExerciseInput) (models.Exercise, error) {
	ex, err := s.GetExercise(ctx, id)
	if err != nil {
		return models.Exercise{}, err
	}
	if err := validateExerciseNumbers(in); err != nil {
		return models.Exercise{}, err
	}
	levelChanged := false
	if in.LevelID != nil {
		levelID, err := referenceID(*in.LevelID, "levelId")
		if err != nil {
			return models.Exercise{}, err
		}
		if levelID != ex.LevelID {
			if _, err := s.getLevel(ctx, levelID); err != nil {
				return models.Exercise{}, err
			}
			ex.LevelID = levelID
			levelChanged = true
		}
	}
	if in.ExerciseType != nil {
		exType, err := s.resolveExerciseType(ctx, *in.ExerciseType)
		if err != nil {
			return models.Exercise{}, err
		}
		ex.ExerciseTypeID = exType.ID
		ex.ExerciseTypeCode = exType.Code
	}
	if in.Title != nil {
		title, err := NormalizeRequired(*in.Title, "title")
		if err != nil {
			return models.Exercise{}, err
		}
		ex.Title = title
	}
	if in.Description != nil {
		ex.Description = NormalizeOptional(in.Description)
	}
	if in.Content != nil {
		ex.Content = in.Content
	}
	if in.Difficulty != nil {
		ex.Difficulty = *in.Difficulty
	}
	if in.Points != nil {
		ex.Points = *in.Points
	}
	if in.TimeLimit != nil {
		ex.TimeLimit = in.TimeLimit
	}
	orderChanged := in.OrderIndex != nil && *in.OrderIndex != ex.OrderIndex
	if orderChanged {
		order, err := resolveOrderIndex(ctx, s.store, ScopeExercise, ex.LevelID, in.OrderIndex)
		if err != nil {
			return models.Exercise{}, err
		}
		ex.OrderIndex = order
	}
	if orderChanged || levelChanged {
		if err := ensureOrderIndexFree(ctx, s.store, ScopeExercise, ex.LevelID, ex.OrderIndex, ex.ID); err != nil {
			return models.Exercise{}, err
		}
	}
	ex.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExercise(ctx, &ex); err != nil {
		return models.Exercise{}, notFoundOr(conflictFromStore(err), MsgExerciseNotFound)
	}
	return ex, nil
}

func (s *LearningPath) DeleteExercise(ctx context.Context, id string) error {
	if err := s.store.DeactivateExercise(ctx, id); err != nil {
		return notFoundOr(err, MsgExerciseNotFound)
	}
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
