package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shelfwise/internal/config"
	"shelfwise/internal/handlers"
	"shelfwise/internal/repositories"
	"shelfwise/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	// Schema (including the partial unique index on active issues) is managed
	// by external migrations; no auto-migration here.

	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	catalogService := services.NewCatalogService(db, bookRepo, issueRepo)
	circulationService := services.NewCirculationService(db, userRepo, bookRepo, issueRepo)
	reviewService := services.NewReviewService(userRepo, bookRepo, reviewRepo)

	router := gin.Default()

	handlers.RegisterRoutes(router, cfg.JWTSecret, authService, catalogService, circulationService, reviewService)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
