package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradeflow/internal/config"
	emailnoop "tradeflow/internal/email/noop"
	emailses "tradeflow/internal/email/ses"
	aiopenai "tradeflow/internal/extractor/openai"
	"tradeflow/internal/handler"
	"tradeflow/internal/middleware"
	"tradeflow/internal/port"
	"tradeflow/internal/repository/postgres"
	"tradeflow/internal/router"
	"tradeflow/internal/service"
	s3storage "tradeflow/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Local development convenience; ignored when no .env exists.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	driverRepo := postgres.NewDriverRepo(db)
	shipmentRepo := postgres.NewShipmentRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	jobRepo := postgres.NewExtractionJobRepo(db)
	quoteRepo := postgres.NewQuoteRepo(db)

	// Initialize storage and extraction
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	extractor := aiopenai.NewExtractor(&cfg.Extractor)

	// Initialize email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = emailses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = emailnoop.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	docSvc := service.NewDocumentService(docRepo, jobRepo, shipmentRepo, s3Client, extractor, &cfg.S3, &cfg.Upload)
	quoteSvc := service.NewQuoteService(quoteRepo, shipmentRepo, userRepo, emailSender)
	forwarderSvc := service.NewForwarderService(shipmentRepo, userRepo, driverRepo)

	// Extraction worker pool
	worker := service.NewExtractionWorker(docSvc, cfg.Queue,
		time.Duration(cfg.Extractor.TimeoutSecs)*time.Second)
	docSvc.AttachQueue(worker)

	// Initialize handlers
	docH := handler.NewDocumentHandler(docSvc)
	quoteH := handler.NewQuoteHandler(quoteSvc)
	forwarderH := handler.NewForwarderHandler(forwarderSvc)
	healthH := handler.NewHealthHandler(db)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.RedisAddr != "" {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RedisAddr, cfg.RateLimit.PerMinute)
	}

	r := router.Setup(router.Deps{
		AuthService: authSvc,
		DocumentH:   docH,
		QuoteH:      quoteH,
		ForwarderH:  forwarderH,
		HealthH:     healthH,
		RateLimiter: rateLimiter,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}
