package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hoctap-backend/internal/config"
	"hoctap-backend/internal/db"
	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/migrations"
	"hoctap-backend/internal/seed"
	"hoctap-backend/internal/services"
	"hoctap-backend/internal/store"
)

func main() {
	path := flag.String("file", "seeds/learning_path.yaml", "YAML file describing tiers, levels, vocabulary and exercises")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogMode)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal("open seed file", "path", *path, "error", err)
	}
	doc, err := seed.Parse(f)
	_ = f.Close()
	if err != nil {
		log.Fatal("invalid seed file", "error", err)
	}

	database, err := db.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer database.Close()
	if _, err := migrations.Apply(database); err != nil {
		log.Fatal("migrations failed", "error", err)
	}

	paths := services.NewLearningPath(store.New(database), log)
	res, err := seed.Apply(ctx, paths, doc, log)
	if err != nil {
		log.Fatal("seeding failed", "error", err)
	}
	log.Info("seed complete",
		"tiers_created", res.TiersCreated,
		"tiers_skipped", res.TiersSkipped,
		"levels", res.LevelsCreated,
		"vocabulary", res.VocabularyCreated,
		"exercises", res.ExercisesCreated,
	)
}
