package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-api/api/swagger"
	"github.com/noah-isme/lms-api/internal/handler"
	"github.com/noah-isme/lms-api/internal/lifecycle"
	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/payments"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/cache"
	"github.com/noah-isme/lms-api/pkg/config"
	"github.com/noah-isme/lms-api/pkg/database"
	"github.com/noah-isme/lms-api/pkg/export"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/logger"
	"github.com/noah-isme/lms-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-api/pkg/middleware/requestid"
	"github.com/noah-isme/lms-api/pkg/storage"
)

// @title LMS API
// @version 1.0.0
// @description Learning management backend: course videos, gallery, library, invoices, donations, schools and chat
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	policy := lifecycle.DefaultPolicy()

	// repositories
	retention := cfg.RecycleBin.TTL
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, retention)
	galleryRepo := repository.NewGalleryRepository(db, retention)
	libraryRepo := repository.NewLibraryRepository(db, retention)
	invoiceRepo := repository.NewInvoiceRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	programRepo := repository.NewProgramRepository(db)
	watchedRepo := repository.NewWatchedVideoRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// outbound email
	var mailer mail.Service
	switch cfg.Mail.Backend {
	case "sendgrid":
		mailer = mail.NewSendgridService(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	default:
		mailer = mail.NewConsoleService(logr)
	}

	objectStore, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}
	urlSigner := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	// decision notification queue
	mailQueue := jobs.NewQueue("mail", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mail.Message)
		if !ok {
			return fmt.Errorf("mail queue: unexpected payload %T", job.Payload)
		}
		return mailer.Send(ctx, msg)
	}, jobs.QueueConfig{Workers: 1, BufferSize: 64, MaxRetries: 3, RetryDelay: 5 * time.Second, Logger: logr})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	// services
	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	videoService := service.NewVideoService(videoRepo, userRepo, mailQueue, validate, logr)
	galleryService := service.NewGalleryService(galleryRepo, cacheRepo, cfg.Gallery.CacheTTL, validate, logr)
	libraryService := service.NewLibraryService(libraryRepo, cacheRepo, cfg.Library.CacheTTL, validate, logr)

	// The dispatch queue's handler is the invoice service itself, so the
	// queue closes over a variable assigned right after construction.
	var invoiceService *service.InvoiceService
	dispatchQueue := jobs.NewQueue("invoice-dispatch", func(ctx context.Context, job jobs.Job) error {
		return invoiceService.Dispatch(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Invoices.WorkerConcurrency,
		BufferSize: 128,
		MaxRetries: cfg.Invoices.WorkerRetries,
		RetryDelay: 10 * time.Second,
		Logger:     logr,
	})
	invoiceService = service.NewInvoiceService(invoiceRepo, userRepo, export.NewInvoicePDF(), objectStore, mailer, dispatchQueue, validate, logr, service.InvoiceConfig{
		NumberPrefix: cfg.Invoices.NumberPrefix,
		Company: models.Party{
			Name:    cfg.Invoices.CompanyName,
			Email:   cfg.Invoices.CompanyEmail,
			Phone:   cfg.Invoices.CompanyPhone,
			Address: cfg.Invoices.CompanyAddress,
		},
	})
	dispatchQueue.Start(ctx)
	defer dispatchQueue.Stop()

	gateway := payments.NewOfflineGateway(cfg.Donations.WebhookSecret, cfg.Donations.SuccessRedirect)
	donationService := service.NewDonationService(donationRepo, gateway, export.NewCSVExporter(), validate, logr, service.DonationConfig{
		Currency:       cfg.Donations.Currency,
		MinAmountCents: cfg.Donations.MinAmountCents,
	})
	schoolService := service.NewSchoolService(schoolRepo, validate, logr)
	chatService := service.NewChatService(chatRepo, userRepo, validate, logr)
	programService := service.NewProgramService(programRepo, userRepo, validate, logr)
	watchedService := service.NewWatchedVideoService(watchedRepo, videoRepo, logr)
	settingService := service.NewSettingService(settingRepo, validate, logr)

	// recycle-bin sweeper
	go func() {
		ticker := time.NewTicker(cfg.RecycleBin.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, logr, videoRepo, galleryRepo, libraryRepo)
			}
		}
	}()

	// handlers
	handlers := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserHandler(userService),
		Videos:   handler.NewVideoHandler(videoService),
		Watched:  handler.NewWatchedVideoHandler(watchedService),
		Gallery:  handler.NewGalleryHandler(galleryService, metricsService),
		Library:  handler.NewLibraryHandler(libraryService),
		Invoices: handler.NewInvoiceHandler(invoiceService),
		Schools:  handler.NewSchoolHandler(schoolService),
		Programs: handler.NewProgramHandler(programService),
		Donation: handler.NewDonationHandler(donationService),
		Chat:     handler.NewChatHandler(chatService),
		Files:    handler.NewFileHandler(invoiceService, objectStore, urlSigner, cfg.APIPrefix),
		Settings: handler.NewSettingHandler(settingService),
		Metrics:  handler.NewMetricsHandler(metricsService),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authService, userRepo, policy, logr)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func sweep(ctx context.Context, logr *zap.Logger, purgers ...expiredPurger) {
	for _, p := range purgers {
		purged, err := p.PurgeExpired(ctx)
		if err != nil {
			logr.Sugar().Warnw("recycle-bin sweep failed", "error", err)
			continue
		}
		if purged > 0 {
			logr.Sugar().Infow("recycle-bin sweep", "purged", purged)
		}
	}
}
