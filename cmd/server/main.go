package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"hoctap-backend/internal/authprovider"
	"hoctap-backend/internal/config"
	"hoctap-backend/internal/db"
	httpapi "hoctap-backend/internal/http"
	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/migrations"
	"hoctap-backend/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var sinks []zapcore.WriteSyncer
	logFile, err := logger.NewDailyFile(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file disabled: %v\n", err)
	} else {
		sinks = append(sinks, logFile)
		defer logFile.Close()
	}
	log := logger.New(cfg.LogMode, sinks...)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer database.Close()

	applied, err := migrations.Apply(database)
	if err != nil {
		log.Fatal("migrations failed", "error", err)
	}
	if len(applied) > 0 {
		log.Info("migrations applied", "names", applied)
	}

	provider := authprovider.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	server := httpapi.NewServer(cfg, log, store.New(database), provider, database)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return
	}
	log.Info("shutdown complete")
}
