package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hoctap-backend/internal/config"
	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/services"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Config   config.Config
	Log      *logger.Logger
	Tokens   services.TokenService
	Auth     *services.AuthService
	Paths    *services.LearningPath
	Progress *services.ProgressService
	Counter  services.ContentCounter
	DB       Pinger
}

func NewServer(cfg config.Config, log *logger.Logger, store services.Store, provider services.IdentityProvider, db Pinger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	tokens := services.TokenService{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    time.Duration(cfg.JWTTTLSeconds) * time.Second,
	}
	return &Server{
		Config:   cfg,
		Log:      log,
		Tokens:   tokens,
		Auth:     services.NewAuthService(store, provider, tokens, log.With("component", "auth")),
		Paths:    services.NewLearningPath(store, log.With("component", "learning_path")),
		Progress: services.NewProgressService(store, store, cfg.PassingScore, log.With("component", "progress")),
		Counter:  store,
		DB:       db,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.Log))
	r.Use(Recoverer(s.Log))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Không tìm thấy đường dẫn")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Phương thức không được hỗ trợ")
	})

	r.Get("/healthz", s.Healthz)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/admin/register", s.AdminRegister)
			auth.Post("/admin/login", s.AdminLogin)
			auth.Post("/user/register", s.UserRegister)
			auth.Post("/user/login", s.UserLogin)
			auth.Post("/refresh", s.Refresh)
			auth.Group(func(authed chi.Router) {
				authed.Use(WithAuth(s.Tokens))
				authed.Post("/logout", s.Logout)
				authed.Get("/profile", s.Profile)
			})
		})

		api.Route("/learning-path", func(lp chi.Router) {
			lp.Get("/exercise-types", s.ListExerciseTypes)

			lp.Route("/tiers", func(tiers chi.Router) {
				tiers.Get("/", s.ListTiers)
				tiers.Get("/code/{code}", s.GetTierByCode)
				tiers.Get("/{tierId}", s.GetTier)
				tiers.Get("/{tierId}/levels", s.ListLevelsByTier)
				tiers.Group(func(admin chi.Router) {
					admin.Use(WithAuth(s.Tokens), RequireAdmin)
					admin.Post("/", s.CreateTier)
					admin.Put("/{tierId}", s.UpdateTier)
					admin.Delete("/{tierId}", s.DeleteTier)
				})
			})

			lp.Route("/levels", func(levels chi.Router) {
				levels.Get("/{levelId}", s.GetLevel)
				levels.Get("/{levelId}/vocabulary", s.ListVocabulary)
				levels.Get("/{levelId}/exercises", s.ListExercises)
				levels.With(WithAuth(s.Tokens), RequireUser).Get("/{levelId}/unlock-status", s.UnlockStatus)
				levels.Group(func(admin chi.Router) {
					admin.Use(WithAuth(s.Tokens), RequireAdmin)
					admin.Post("/", s.CreateLevel)
					admin.Put("/{levelId}", s.UpdateLevel)
					admin.Delete("/{levelId}", s.DeleteLevel)
				})
			})

			lp.Route("/vocabulary", func(vocab chi.Router) {
				vocab.Get("/{vocabularyId}", s.GetVocabulary)
				vocab.Group(func(admin chi.Router) {
					admin.Use(WithAuth(s.Tokens), RequireAdmin)
					admin.Post("/", s.CreateVocabulary)
					admin.Put("/{vocabularyId}", s.UpdateVocabulary)
					admin.Delete("/{vocabularyId}", s.DeleteVocabulary)
				})
			})

			lp.Route("/exercises", func(exercises chi.Router) {
				exercises.Get("/{exerciseId}", s.GetExercise)
				exercises.Group(func(admin chi.Router) {
					admin.Use(WithAuth(s.Tokens), RequireAdmin)
					admin.Post("/", s.CreateExercise)
					admin.Put("/{exerciseId}", s.UpdateExercise)
					admin.Delete("/{exerciseId}", s.DeleteExercise)
				})
			})
		})

		api.Route("/progress", func(progress chi.Router) {
			progress.Use(WithAuth(s.Tokens), RequireUser)
			progress.Post("/levels/{levelId}/start", s.StartLevel)
			progress.Get("/levels/{levelId}", s.LevelProgress)
			progress.Post("/exercises/{exerciseId}/attempts", s.SubmitAttempt)
			progress.Get("/stats", s.Stats)
		})

		api.Get("/leaderboard", s.Leaderboard)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens), RequireAdmin)
			admin.Get("/system", s.SystemSnapshot)
		})
	})
	return r
}
