package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "deportbot/docs"
	"deportbot/internal/admin"
	"deportbot/internal/bot"
	"deportbot/internal/config"
	"deportbot/internal/database"
	"deportbot/internal/deport"
	"deportbot/internal/ledger"
	"deportbot/internal/reinstate"
	"deportbot/internal/roster"
	mw "deportbot/pkg/middleware"
)

// @title        deportbot admin API
// @version      1.0
// @description  Read-only view of the deportation removal ledger.
// @BasePath     /api/v1
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))

	// Kicking users out of private channels needs a user token; fall back
	// to the bot client when none is configured.
	kickClient := api
	if cfg.UserToken != "" {
		kickClient = slack.New(cfg.UserToken)
	}

	var store ledger.Store
	switch cfg.LedgerBackend {
	case config.LedgerBackendPostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		store = ledger.NewPostgresStore(db)
	default:
		sheetsStore, err := ledger.NewSheetsStore(ctx, cfg.SheetsID, cfg.CredentialsFile)
		if err != nil {
			logger.Fatal("failed to open ledger spreadsheet", zap.Error(err))
		}
		store = sheetsStore
	}

	rosterSvc := roster.NewService(api, cfg)

	deportSvc := deport.NewService(api, kickClient, rosterSvc, store, cfg, logger)
	deportHandler := deport.NewHandler(deportSvc, api, cfg, logger)

	reinstateSvc := reinstate.NewService(api, kickClient, rosterSvc, store, cfg, logger)
	reinstateHandler := reinstate.NewHandler(reinstateSvc, api, cfg, logger)

	go serveAdmin(cfg, store, logger)

	b := bot.New(socketmode.New(api), deportHandler, reinstateHandler, logger)

	logger.Info("starting socket mode connection")
	if err := b.Run(ctx); err != nil {
		logger.Fatal("socket mode connection failed", zap.Error(err))
	}
}

// serveAdmin runs the ops-facing HTTP server: health check, removal-record
// lookups, and swagger UI.
func serveAdmin(cfg *config.Config, store ledger.Store, logger *zap.Logger) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, removal records API disabled")
	} else {
		adminHandler := admin.NewHandler(store, logger)
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(mw.BearerAuth(cfg.AdminToken))
			r.Mount("/removals", adminHandler.Routes())
		})
		r.Get("/swagger/*", httpSwagger.Handler())
	}

	logger.Info("admin server starting", zap.String("port", cfg.AdminPort))
	if err := http.ListenAndServe(":"+cfg.AdminPort, r); err != nil {
		logger.Error("admin server stopped", zap.Error(err))
	}
}
