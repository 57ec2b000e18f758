package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log" // zerolog's global logger

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/config"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/n8n"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/db"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/handlers"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/models"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/services"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/store"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/pkg/logger"
)

func main() {
	logger.InitLogger() // Configures the global log.Logger

	log.Info().Msg("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully.")

	// Initialize Database
	log.Info().Str("database_url", cfg.DatabaseURL).Msg("Initializing database...")
	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Run Migrations
	log.Info().Msg("Running database migrations...")
	if err := db.MigrateDB(&models.Option{}, &models.FormSubmission{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize Options Store
	st, err := store.New(db.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize options store")
	}
	if err := st.Seed(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed options from environment")
	}

	// Initialize Evolution Client
	evoURL, evoKey, evoInstance, ok := st.EvolutionConfig()
	if !ok {
		log.Fatal().Msg("Evolution API is not configured; set EVOLUTION_BASE_URL, EVOLUTION_API_KEY and EVOLUTION_INSTANCE")
	}
	gateway, err := evolution.NewClient(evoURL, evoKey, evoInstance)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Evolution client")
	}

	// Initialize N8N Client
	relay := n8n.NewClient()

	// Initialize Services
	reconciler, err := services.NewReconciler(gateway, st)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Reconciler")
	}
	log.Info().Msg("Reconciler initialized successfully")

	validator, err := services.NewValidator(gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Validator")
	}
	log.Info().Msg("Validator initialized successfully")

	messenger, err := services.NewMessenger(relay, st, st)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Messenger")
	}
	log.Info().Msg("Messenger initialized successfully")

	// Initialize Handlers
	adminHandler, err := handlers.NewAdminHandler(reconciler, st, relay)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize admin handler")
	}
	publicHandler, err := handlers.NewPublicHandler(messenger, validator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize public handler")
	}

	// Setup HTTP routes
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "WP AI Agent N8N service is running.")
	})
	adminHandler.Register(router)
	publicHandler.Register(router)

	chain := alice.New(
		hlog.NewHandler(logger.GetLogger()),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.RemoteAddrHandler("ip"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Request handled")
		}),
	)

	port := cfg.Port
	if port == "" {
		port = "8080" // Default port
		log.Info().Str("port", port).Msg("Defaulting to port")
	}

	log.Info().Str("port", port).Msgf("Server starting on port %s...", port)
	if err := http.ListenAndServe(":"+port, chain.Then(router)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
