package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/api"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/app/service"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common/security"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/domain/repository"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/platform/cache"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/platform/config"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	database.EnsureSchema()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	quizRepo := repository.NewPgQuizRepository(database.DB)
	completedRepo := repository.NewPgCompletedQuizRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	registrationService := service.NewRegistrationService(userRepo)
	quizService := service.NewQuizService(quizRepo, completedRepo, userRepo, cache.RDB, config.AppConfig.QuizCacheTTL)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, registrationService, quizService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
