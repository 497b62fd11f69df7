package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/campusworks/advisor-backend/internal/clients/openai"
	"github.com/campusworks/advisor-backend/internal/db"
	"github.com/campusworks/advisor-backend/internal/handlers"
	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/recommend"
	"github.com/campusworks/advisor-backend/internal/recstore"
	"github.com/campusworks/advisor-backend/internal/repos"
	"github.com/campusworks/advisor-backend/internal/server"
	"github.com/campusworks/advisor-backend/internal/services"
	"github.com/campusworks/advisor-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	addr := utils.GetEnv("LISTEN_ADDR", ":8080", log)
	oracleTimeout := time.Duration(utils.GetEnvAsInt("ORACLE_TIMEOUT_SECONDS", 30, log)) * time.Second
	allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log), ",")
	if len(allowOrigins) == 1 && allowOrigins[0] == "" {
		allowOrigins = nil
	}

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = databaseService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	theDB := databaseService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	studentRepo := repos.NewStudentRepo(theDB, log)
	courseRepo := repos.NewCourseRepo(theDB, log)
	enrollmentRepo := repos.NewEnrollmentRepo(theDB, log)

	// Recommendation state store
	var store recstore.Store
	if strings.ToLower(utils.GetEnv("STATE_STORE", "redis", log)) == "memory" {
		log.Warn("Using in-memory recommendation store; recommendations will not survive restarts")
		store = recstore.NewMemoryStore()
	} else {
		store, err = recstore.NewRedisStore(log)
		if err != nil {
			log.Fatal("Recommendation store init failed", "error", err)
		}
	}

	// Generative oracle (optional: the deterministic fallback covers
	// deployments without an API key)
	var oracle openai.Client
	oracle, err = openai.NewClient(log)
	if err != nil {
		log.Warn("Oracle client unavailable, recommendations will use the deterministic fallback", "error", err)
		oracle = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	estimator := recommend.NewEstimator(enrollmentRepo, log)
	recService := services.NewRecommendationService(theDB, log, studentRepo, courseRepo, estimator, oracle, store, oracleTimeout)
	chatService := services.NewAdvisorChatService(theDB, log, studentRepo, courseRepo, recService, oracle, oracleTimeout)

	// Handlers
	log.Info("Setting up Handlers from main...")
	recHandler := handlers.NewRecommendationHandler(log, recService)
	chatHandler := handlers.NewChatHandler(log, chatService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		RecommendationHandler: recHandler,
		ChatHandler:           chatHandler,
		AllowOrigins:          allowOrigins,
	})

	log.Info("Starting server...", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
