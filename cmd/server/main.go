package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/config"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/database"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/handlers"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/middleware"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/pdfimport"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/quoting"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/ratelimit"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/repository"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting pricing API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.MigrationsEnabled {
		if err := db.Migrate(log); err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
	}

	// Initialize repositories
	templateRepo := repository.NewTemplateRepository(db)
	extractionRepo := repository.NewExtractionRepository(db)
	itemRepo := repository.NewItemRepository(db)
	patternRepo := repository.NewPatternRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	historyRepo := repository.NewQuoteHistoryRepository(db)

	// Line-item extraction is optional; PDF imports answer 502 without it
	var aiExtractor pdfimport.LineItemExtractor
	if cfg.AI.APIKey != "" {
		gemini, err := pdfimport.NewGeminiLineItemExtractor(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			log.Error("AI extraction disabled", err, map[string]interface{}{
				"model": cfg.AI.Model,
			})
		} else {
			aiExtractor = gemini
		}
	} else {
		log.Warn("AI_API_KEY not set, PDF quote imports are disabled", nil)
	}

	// Initialize services
	generator := quoting.NewGenerator(quoting.Settings{
		BlendMinOccurrences: cfg.Pricing.BlendMinOccurrences,
		CatalogWeight:       cfg.Pricing.CatalogWeight,
		DefaultLaborRate:    cfg.Pricing.DefaultLaborRate,
	}, log)

	quoteService := services.NewQuoteService(services.QuoteRepositories{
		Templates:   templateRepo,
		Extractions: extractionRepo,
		Items:       itemRepo,
		Patterns:    patternRepo,
		History:     historyRepo,
	}, generator, cfg.Pricing.RecentQuoteSample, log)

	importService := services.NewImportService(services.ImportRepositories{
		Sessions: sessionRepo,
		Patterns: patternRepo,
		Items:    itemRepo,
	}, []pdfimport.TextExtractor{
		pdfimport.PlainTextExtractor{},
		pdfimport.ContentStreamExtractor{},
	}, aiExtractor, log)

	templateService := services.NewTemplateService(templateRepo, patternRepo, cfg.Pricing.DefaultWastePercent, log)

	// Import rate limiting with scheduled eviction of stale windows
	importLimiter := ratelimit.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	sweeper, err := ratelimit.NewSweeper(cfg.RateLimit.SweepSchedule, log, importLimiter)
	if err != nil {
		log.Fatal("Failed to schedule rate limit sweeps", err, map[string]interface{}{
			"schedule": cfg.RateLimit.SweepSchedule,
		})
	}
	sweeper.Start()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Health:    handlers.NewHealthHandler(db, cfg.Server.Env, aiExtractor != nil),
		Quotes:    handlers.NewQuoteHandler(quoteService),
		Pricing:   handlers.NewPricingHandler(importService),
		Templates: handlers.NewTemplateHandler(templateService),
	}, importLimiter)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	select {
	case <-sweeper.Stop().Done():
	case <-shutdownCtx.Done():
	}

	log.Info("Server exited", nil)
}
