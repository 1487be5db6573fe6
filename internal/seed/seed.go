// Package seed loads a learning path described in YAML through the same
// services the admin API uses, so every ordering and unlock rule applies.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/services"
)

type File struct {
	Tiers []Tier `yaml:"tiers"`
}

type Tier struct {
	Name        string  `yaml:"name"`
	DisplayName string  `yaml:"displayName"`
	Description *string `yaml:"description"`
	OrderIndex  *int    `yaml:"orderIndex"`
	Levels      []Level `yaml:"levels"`
}

// Level.Key names the level inside the file so later levels can list it in
// UnlockAfter.
type Level struct {
	Key         string       `yaml:"key"`
	Name        string       `yaml:"name"`
	Description *string      `yaml:"description"`
	OrderIndex  *int         `yaml:"orderIndex"`
	UnlockAfter []string     `yaml:"unlockAfter"`
	Vocabulary  []Vocabulary `yaml:"vocabulary"`
	Exercises   []Exercise   `yaml:"exercises"`
}

type Vocabulary struct {
	Word            string  `yaml:"word"`
	Pronunciation   *string `yaml:"pronunciation"`
	Meaning         string  `yaml:"meaning"`
	ExampleSentence *string `yaml:"exampleSentence"`
	AudioURL        *string `yaml:"audioUrl"`
	PartOfSpeech    *string `yaml:"partOfSpeech"`
}

type Exercise struct {
	Type        string                 `yaml:"type"`
	Title       string                 `yaml:"title"`
	Description *string                `yaml:"description"`
	Content     map[string]interface{} `yaml:"content"`
	Difficulty  *int                   `yaml:"difficulty"`
	Points      *int                   `yaml:"points"`
	TimeLimit   *int                   `yaml:"timeLimit"`
}

func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Catalog is the subset of services.LearningPath the loader drives.
type Catalog interface {
	GetTierByCode(ctx context.Context, code string) (models.TierDetail, error)
	CreateTier(ctx context.Context, in services.TierInput) (models.TierSummary, error)
	CreateLevel(ctx context.Context, in services.LevelInput) (models.LevelSummary, error)
	CreateVocabulary(ctx context.Context, in services.VocabularyInput) (models.Vocabulary, error)
	CreateExercise(ctx context.Context, in services.ExerciseInput) (models.Exercise, error)
}

type Result struct {
	TiersCreated      int
	TiersSkipped      int
	LevelsCreated     int
	VocabularyCreated int
	ExercisesCreated  int
}

// Apply creates everything in f. Tiers whose code already exists are skipped
// whole, which makes re-running the same file harmless. Levels of a skipped
// tier are matched by name so later tiers can still unlock after them.
func Apply(ctx context.Context, catalog Catalog, f File, log *logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	var res Result
	levelIDs := map[string]string{}
	for _, t := range f.Tiers {
		if existing, err := catalog.GetTierByCode(ctx, t.Name); err == nil {
			log.Info("tier exists, skipping", "code", t.Name)
			res.TiersSkipped++
			if err := rememberLevels(existing, t.Levels, levelIDs, log); err != nil {
				return res, fmt.Errorf("tier %s: %w", t.Name, err)
			}
			continue
		} else if !services.IsKind(err, services.KindNotFound) {
			return res, fmt.Errorf("look up tier %s: %w", t.Name, err)
		}

		tier, err := catalog.CreateTier(ctx, services.TierInput{
			Name:        strPtr(t.Name),
			DisplayName: strPtr(t.DisplayName),
			Description: t.Description,
			OrderIndex:  t.OrderIndex,
		})
		if err != nil {
			return res, fmt.Errorf("create tier %s: %w", t.Name, err)
		}
		res.TiersCreated++

		for _, l := range t.Levels {
			if err := applyLevel(ctx, catalog, tier.ID, l, levelIDs, &res); err != nil {
				return res, fmt.Errorf("tier %s: %w", t.Name, err)
			}
		}
		log.Info("tier seeded", "code", tier.Name, "levels", len(t.Levels))
	}
	return res, nil
}

func rememberLevels(existing models.TierDetail, levels []Level, levelIDs map[string]string, log *logger.Logger) error {
	byName := make(map[string]string, len(existing.Levels))
	for _, l := range existing.Levels {
		byName[strings.ToLower(strings.TrimSpace(l.Name))] = l.ID
	}
	for _, l := range levels {
		if l.Key == "" {
			continue
		}
		if _, dup := levelIDs[l.Key]; dup {
			return fmt.Errorf("level key %q used twice", l.Key)
		}
		id, ok := byName[strings.ToLower(strings.TrimSpace(l.Name))]
		if !ok {
			log.Warn("seeded level missing from existing tier", "tier", existing.Name, "level", l.Name)
			continue
		}
		levelIDs[l.Key] = id
	}
	return nil
}

func applyLevel(ctx context.Context, catalog Catalog, tierID string, l Level, levelIDs map[string]string, res *Result) error {
	prereqs := make([]string, 0, len(l.UnlockAfter))
	for _, key := range l.UnlockAfter {
		id, ok := levelIDs[key]
		if !ok {
			return fmt.Errorf("level %q: unknown unlockAfter key %q", l.Name, key)
		}
		prereqs = append(prereqs, id)
	}
	level, err := catalog.CreateLevel(ctx, services.LevelInput{
		TierID:          strPtr(tierID),
		Name:            strPtr(l.Name),
		Description:     l.Description,
		OrderIndex:      l.OrderIndex,
		UnlockCondition: &prereqs,
	})
	if err != nil {
		return fmt.Errorf("create level %q: %w", l.Name, err)
	}
	res.LevelsCreated++
	if l.Key != "" {
		if _, dup := levelIDs[l.Key]; dup {
			return fmt.Errorf("level key %q used twice", l.Key)
		}
		levelIDs[l.Key] = level.ID
	}

	for _, v := range l.Vocabulary {
		if _, err := catalog.CreateVocabulary(ctx, services.VocabularyInput{
			LevelID:         strPtr(level.ID),
			Word:            strPtr(v.Word),
			Pronunciation:   v.Pronunciation,
			Meaning:         strPtr(v.Meaning),
			ExampleSentence: v.ExampleSentence,
			AudioURL:        v.AudioURL,
			PartOfSpeech:    v.PartOfSpeech,
		}); err != nil {
			return fmt.Errorf("create vocabulary %q: %w", v.Word, err)
		}
		res.VocabularyCreated++
	}

	for _, ex := range l.Exercises {
		content, err := json.Marshal(ex.Content)
		if err != nil {
			return fmt.Errorf("exercise %q content: %w", ex.Title, err)
		}
		if _, err := catalog.CreateExercise(ctx, services.ExerciseInput{
			LevelID:      strPtr(level.ID),
			ExerciseType: strPtr(ex.Type),
			Title:        strPtr(ex.Title),
			Description:  ex.Description,
			Content:      models.JSONDocument(content),
			Difficulty:   ex.Difficulty,
			Points:       ex.Points,
			TimeLimit:    ex.TimeLimit,
		}); err != nil {
			return fmt.Errorf("create exercise %q: %w", ex.Title, err)
		}
		res.ExercisesCreated++
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
