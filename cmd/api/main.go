package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/itskasymzhomartsanzhar/routr/internal/adapters/cache"
	adapterHTTP "github.com/itskasymzhomartsanzhar/routr/internal/adapters/handler/http"
	"github.com/itskasymzhomartsanzhar/routr/internal/adapters/repository"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/services"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("Critical: BOT_TOKEN is required to verify Telegram init data")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	tokenTTLHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "72"))
	if err != nil || tokenTTLHours < 1 {
		log.Fatalf("Critical: invalid TOKEN_TTL_HOURS: %v", err)
	}

	serverPort := getEnv("PORT", "8080")

	var db *sqlx.DB
	var habitRepo domain.HabitRepository
	var completionRepo domain.CompletionRepository
	var userRepo domain.UserRepository
	var boardRepo domain.LeaderboardRepository

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432"), dbName)

		log.Println("Connecting to database...")

		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		log.Println("Database connected successfully.")

		habitRepo = repository.NewPostgresHabitRepository(db)
		completionRepo = repository.NewPostgresCompletionRepository(db)
		userRepo = repository.NewPostgresUserRepository(db)
		boardRepo = repository.NewPostgresLeaderboardRepository(db)
	} else {
		log.Println("DB_NAME not set, running with in-memory storage. Data is lost on restart.")

		memHabits := repository.NewInMemoryHabitRepository()
		habitRepo = memHabits
		completionRepo = repository.NewInMemoryCompletionRepository(memHabits)
		memUsers := repository.NewInMemoryUserRepository()
		userRepo = memUsers
		boardRepo = repository.NewInMemoryLeaderboardRepository(memUsers)
	}

	redisClient, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, leaderboard cache and rate limiting disabled: %v", err)
		redisClient = nil
	} else {
		boardRepo = repository.NewCachedLeaderboardRepository(boardRepo, redisClient)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streakWorker := workers.NewStreakWorker(habitRepo, completionRepo)
	streakWorker.Start(ctx)

	tokenService := services.NewTokenService(jwtSecret, "routr", time.Duration(tokenTTLHours)*time.Hour, userRepo)
	authService := services.NewAuthService(botToken, userRepo, tokenService)
	habitService := services.NewHabitService(habitRepo, completionRepo, userRepo, streakWorker)
	statsService := services.NewStatsService(habitRepo, completionRepo, userRepo)
	leaderboardService := services.NewLeaderboardService(boardRepo, userRepo)
	bootstrapService := services.NewBootstrapService(habitService, statsService, leaderboardService, userRepo, habitRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService),
		StatsHandler:     adapterHTTP.NewStatsHandler(statsService, leaderboardService),
		BootstrapHandler: adapterHTTP.NewBootstrapHandler(bootstrapService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            redisClient,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Routr API running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
