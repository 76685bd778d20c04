package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/bankruptcy/config"
	"github.com/epeers/bankruptcy/docs"
	"github.com/epeers/bankruptcy/internal/database"
	"github.com/epeers/bankruptcy/internal/handlers"
	"github.com/epeers/bankruptcy/internal/metrics"
	"github.com/epeers/bankruptcy/internal/middleware"
	"github.com/epeers/bankruptcy/internal/repository"
	"github.com/epeers/bankruptcy/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

// @title Bankruptcy Ratio API
// @version 1.0
// @description Browse companies of the bankruptcy dataset and compare ROA ratios of bankrupt and solvent companies.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	m := metrics.New()

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(db.Pool)

	// Initialize services
	companySvc := services.NewCompanyService(companyRepo)
	analysisSvc := services.NewAnalysisService(companyRepo)

	// Initialize handlers
	companyHandler := handlers.NewCompanyHandler(companySvc)
	analysisHandler := handlers.NewAnalysisHandler(analysisSvc)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(m))

	router.GET("/health", handlers.Health(db))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", companyHandler.List)
	router.GET("/company/:id", companyHandler.Get)
	router.GET("/analysis", analysisHandler.Compare)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		// Give outstanding requests 5 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Server stopped with error: %v", err)
		db.Close()
		os.Exit(1)
	}
	log.Info("Server exited")
}
