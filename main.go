package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iqscalar-service/internal/cache"
	"iqscalar-service/internal/config"
	"iqscalar-service/internal/dataset"
	"iqscalar-service/internal/db"
	"iqscalar-service/internal/discovery"
	"iqscalar-service/internal/event"
	"iqscalar-service/internal/handlers"
	"iqscalar-service/internal/learning"
	"iqscalar-service/internal/middleware"
	"iqscalar-service/internal/repository"
	"iqscalar-service/internal/selection"
	"iqscalar-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type indexer interface {
	CreateIndexes(ctx context.Context) error
}

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.InitMongo(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer db.Disconnect()

	questionRepo := repository.NewQuestionRepository(database)
	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewTestSessionRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)
	historyRepo := repository.NewAuthHistoryRepository(database)
	userSessionRepo := repository.NewUserSessionRepository(database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, repo := range []indexer{questionRepo, userRepo, sessionRepo, historyRepo, userSessionRepo} {
		if err := repo.CreateIndexes(ctx); err != nil {
			log.Printf("Warning: Failed to create database indexes: %v", err)
		}
	}
	cancel()

	bank, err := dataset.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	log.Printf("Question bank loaded - %d questions in %d categories", bank.Len(), len(bank.Categories()))

	// Used-question tracking is shared through Redis when configured
	var usedStore selection.UsedQuestionStore = selection.NewMemoryStore()
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Warning: %v, tracking used questions in memory", err)
	} else if redisClient != nil {
		usedStore = selection.NewRedisStore(redisClient, cfg.Redis.UsedQuestionTTL)
		defer redisClient.Close()
	}

	// RabbitMQ event publisher
	var publisher event.Publisher = event.Noop{}
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		p, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("Warning: Failed to initialize event publisher: %v", err)
		} else {
			publisher = p
		}
	} else {
		log.Println("RabbitMQ not configured, domain events will not be published")
	}
	defer publisher.Close()

	lib, err := learning.Default()
	if err != nil {
		log.Fatalf("Failed to load learning content: %v", err)
	}

	pool := selection.NewPoolManager(bank, usedStore, nil, cfg.Quiz.TestQuestionCount)
	testSessionService := service.NewTestSessionService(sessionRepo, analyticsRepo, questionRepo, bank, publisher)
	questionService := service.NewQuestionService(questionRepo)
	quizService := service.NewQuizService(pool, testSessionService)
	quizService.PracticeCount = cfg.Quiz.PracticeQuestionCount
	practiceService := service.NewPracticeService(questionRepo, analyticsRepo, testSessionService)
	userService := service.NewUserService(userRepo, sessionRepo, analyticsRepo, publisher)
	analyticsService := service.NewAnalyticsService(analyticsRepo, userRepo)
	authService := service.NewAuthService(userRepo, historyRepo, userSessionRepo, publisher, cfg.Auth.SessionExpiry)

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery(cfg.IsDevelopment()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.IsDevelopment()))
	r.NoRoute(middleware.NoRoute)
	r.GET("/metrics", middleware.MetricsHandler())

	if cfg.Auth.JWTSecret == "" {
		log.Println("JWT_SECRET not set, admin routes are open")
	}
	admin := middleware.RequireAdmin(cfg.Auth.JWTSecret)

	api := r.Group("/api")
	handlers.NewHealthHandler(cfg.Server.Environment, db.IsConnected).RegisterRoutes(api)
	handlers.NewQuestionHandler(questionService).RegisterRoutes(api, admin)
	handlers.NewTestSessionHandler(testSessionService).RegisterRoutes(api, admin)
	handlers.NewQuizHandler(quizService).RegisterRoutes(api)
	handlers.NewUserHandler(userService, testSessionService).RegisterRoutes(api, admin)
	handlers.NewPracticeHandler(practiceService).RegisterRoutes(api)
	handlers.NewAnalyticsHandler(analyticsService).RegisterRoutes(api, admin)
	handlers.NewAuthHandler(authService, db.IsConnected).RegisterRoutes(api, admin)
	handlers.NewLearningHandler(lib).RegisterRoutes(api)

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Warning: Failed to create service registry: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: Failed to register service: %v", err)
			registry = nil
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting server on %s (%s)", cfg.Addr(), cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Failed to deregister service: %v", err)
		}
	}
	log.Println("Server exited")
}
