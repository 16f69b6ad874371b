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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/S3lorm/internship-robot-sub000/api/swagger"
	"github.com/S3lorm/internship-robot-sub000/internal/handler"
	"github.com/S3lorm/internship-robot-sub000/internal/middleware"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/internal/repository"
	"github.com/S3lorm/internship-robot-sub000/internal/service"
	"github.com/S3lorm/internship-robot-sub000/pkg/cache"
	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	"github.com/S3lorm/internship-robot-sub000/pkg/database"
	"github.com/S3lorm/internship-robot-sub000/pkg/letterdoc"
	"github.com/S3lorm/internship-robot-sub000/pkg/logger"
	"github.com/S3lorm/internship-robot-sub000/pkg/mailer"
	corsmiddleware "github.com/S3lorm/internship-robot-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/S3lorm/internship-robot-sub000/pkg/middleware/requestid"
	"github.com/S3lorm/internship-robot-sub000/pkg/storage"
)

// @title University Internship Office API
// @version 1.0.0
// @description Internship postings, applications, recommendation letters, evaluations, and document verification.
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	files, err := storage.NewLocalStorage(cfg.Letters.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init letter storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	internshipRepo := repository.NewInternshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	letterRepo := repository.NewLetterRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "internship-office-api",
	})

	notificationSvc := service.NewNotificationService(notificationRepo, metricsSvc, logr)

	mailDispatcher := service.NewMailDispatcher(mailer.NewSMTP(cfg.Mail), cfg.Mail, metricsSvc, logr)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	mailDispatcher.Start(ctx)
	defer mailDispatcher.Stop()

	renderer := letterdoc.NewRenderer(cfg.Letters.UniversityName, cfg.Letters.SignatoryName, cfg.Letters.SignatoryTitle)
	signer := storage.NewSignedURLSigner(cfg.Letters.SignedURLSecret, cfg.Letters.SignedURLTTL)

	internshipSvc := service.NewInternshipService(internshipRepo, cacheRepo, metricsSvc, validate, logr, cfg.Listings)
	applicationSvc := service.NewApplicationService(applicationRepo, internshipRepo, userRepo,
		notificationSvc, mailDispatcher, validate, logr)
	letterSvc := service.NewLetterService(letterRepo, userRepo, verificationRepo,
		renderer, files, signer, notificationSvc, mailDispatcher, metricsSvc, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, notificationSvc, validate, logr)
	verificationSvc := service.NewVerificationService(verificationRepo, metricsSvc, validate, logr)
	reminderSvc := service.NewReminderService(evaluationRepo, applicationRepo,
		notificationSvc, metricsSvc, logr, cfg.Reminders)

	authHandler := handler.NewAuthHandler(authSvc)
	internshipHandler := handler.NewInternshipHandler(internshipSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	letterHandler := handler.NewLetterHandler(letterSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	verificationHandler := handler.NewVerificationHandler(verificationSvc)
	reminderHandler := handler.NewReminderHandler(reminderSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	// Public surfaces: browsing postings, verifying documents, and tokenized
	// letter downloads from approval emails.
	api.GET("/internships", internshipHandler.List)
	api.GET("/internships/:id", internshipHandler.Get)
	api.POST("/security/verify-document", verificationHandler.Verify)
	api.GET("/letters/download", letterHandler.DownloadByToken)

	authed := api.Group("", middleware.JWT(authSvc))
	{
		authed.POST("/applications", applicationHandler.Apply)
		authed.GET("/applications/me", applicationHandler.ListMine)
		authed.GET("/applications/:id", applicationHandler.Get)

		authed.POST("/letters/requests", letterHandler.Create)
		authed.GET("/letters/requests/me", letterHandler.ListMine)
		authed.GET("/letters/requests/:id", letterHandler.Get)
		authed.GET("/letters/requests/:id/download", letterHandler.Download)

		authed.GET("/evaluations/me", evaluationHandler.ListMine)
		authed.POST("/evaluations/:id/view", evaluationHandler.View)
		authed.POST("/evaluations/:id/acknowledge", evaluationHandler.Acknowledge)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	admin := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/internships", internshipHandler.Create)
		admin.PUT("/internships/:id", internshipHandler.Update)
		admin.DELETE("/internships/:id", internshipHandler.Delete)

		admin.GET("/applications", applicationHandler.List)
		admin.PATCH("/applications/:id/status", applicationHandler.UpdateStatus)
		admin.POST("/applications/bulk-action", applicationHandler.BulkUpdateStatus)

		admin.GET("/letters/requests", letterHandler.List)
		admin.PATCH("/letters/requests/:id/status", letterHandler.UpdateStatus)

		admin.POST("/evaluations", evaluationHandler.Create)
		admin.GET("/evaluations", evaluationHandler.List)
		admin.POST("/evaluations/:id/release", evaluationHandler.Release)

		admin.POST("/internal/reminders/run", reminderHandler.Run)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
