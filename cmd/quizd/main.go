package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/matteusmoreira/eadinpeace-sub001/internal/api/http"
	auth "github.com/matteusmoreira/eadinpeace-sub001/internal/auth/middleware"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/config"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/db"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/directory"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/notify"
	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
	syncx "github.com/matteusmoreira/eadinpeace-sub001/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := quiz.NewSQLStore(dbh)
	svc := quiz.NewService(store,
		quiz.WithNotifier(notify.NewConsoleNotifier()),
		quiz.WithEvents(syncx.NewEventRepo(dbh, cfg.SiteID)),
		quiz.WithDirectory(directory.NewSQLUserDirectory(dbh)),
		quiz.WithCatalog(directory.StaticCatalog{}),
	)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))
	api.Mount(r, svc, authSvc, cfg.DefaultOrgID)

	log.Printf("quizd listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
