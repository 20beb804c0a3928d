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

	"admissions_app_go/config"
	"admissions_app_go/db"
	"admissions_app_go/handlers"
	"admissions_app_go/middleware"
	"admissions_app_go/models"
	"admissions_app_go/services"
	"admissions_app_go/services/i18n"
	"admissions_app_go/services/logger"
	"admissions_app_go/templates"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()
	logger.SetGlobal(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		zapLog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.Registration{},
		&models.QuickInquiry{},
		&models.FranchiseApplication{},
		&models.CareerQuizResult{},
	); err != nil {
		zapLog.Fatal("Failed to run migrations", zap.Error(err))
	}

	if err := i18n.Load(); err != nil {
		zapLog.Fatal("Failed to load translations", zap.Error(err))
	}

	// Verification sessions survive restarts only when Redis is configured
	var store services.VerificationStore
	if cfg.RedisURL != "" {
		redisStore, err := services.NewRedisVerificationStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		zapLog.Info("Verification sessions: Redis")
	} else {
		memoryStore := services.NewMemoryVerificationStore()
		memoryStore.StartSweeper(ctx, time.Minute)
		store = memoryStore
		zapLog.Info("Verification sessions: in-memory")
	}

	var provider services.OTPProvider = services.ConsoleOTPProvider{}
	if cfg.MSG91AuthKey != "" {
		provider = services.NewMSG91Client(cfg.MSG91AuthKey, cfg.MSG91TemplateID, cfg.MSG91BaseURL)
	} else if cfg.IsProduction() {
		zapLog.Fatal("MSG91_AUTH_KEY must be set in production")
	} else {
		zapLog.Warn("MSG91_AUTH_KEY not set; OTPs are logged and accept the development code",
			zap.String("code", services.ConsoleOTPCode))
	}

	var blurb services.BlurbGenerator
	if cfg.GenAIAPIKey != "" {
		genAI, err := services.NewGenAIClient(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.GenAIBaseURL)
		if err != nil {
			zapLog.Warn("GenAI disabled, quiz uses the fallback blurb", zap.Error(err))
		} else {
			blurb = genAI
		}
	}

	repo := services.NewGormLeadRepository(db.DB)
	dispatcher := services.NewDispatcher(services.DefaultNotificationTimeout)
	notifier := services.NewEmailNotifier(
		services.NewResendSender(cfg),
		services.NewEmailTemplates(templates.Emails, "emails"),
		cfg.AdmissionsTeamEmail,
	)
	verification := services.NewVerificationService(store, provider, cfg.VerificationTTL, cfg.ResendCooldown)

	h := &handlers.Handler{
		Verification: verification,
		Leads:        services.NewLeadService(verification, repo, notifier, dispatcher),
		Quiz:         services.NewQuizService(repo, blurb),
		Exporter:     services.NewLeadExporter(repo, services.NewStorage(ctx, cfg)),
		Captcha:      services.NewTurnstileVerifier(cfg.TurnstileSecretKey),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.APIErrorHandler
	echo.NotFoundHandler = handlers.NotFoundHandler

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				zapLog.Warn("Request failed", append(fields, zap.Error(v.Error))...)
			} else {
				zapLog.Info("Request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	e.Use(middleware.Locale(cfg))

	e.GET("/health", handlers.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())
	{
		api.POST("/verification", h.StartVerificationHandler)
		api.GET("/verification/:id", h.GetVerificationHandler)
		api.POST("/verification/:id/send", h.SendOTPHandler, middleware.OTPSendRateLimiter.Middleware())
		api.POST("/verification/:id/verify", h.VerifyOTPHandler)

		forms := api.Group("")
		forms.Use(middleware.PublicFormRateLimiter.Middleware())
		{
			forms.POST("/admissions", h.AdmissionsHandler)
			forms.POST("/contact", h.ContactHandler)
			forms.POST("/franchise", h.FranchiseHandler)
		}

		api.GET("/career-navigator/questions", h.QuizQuestionsHandler)
		api.POST("/career-navigator/score", h.QuizScoreHandler)
		api.GET("/salary-roi/courses", h.ROICoursesHandler)
		api.POST("/salary-roi", h.ROIHandler)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminRateLimiter.Middleware())
		admin.Use(middleware.RequireAdmin(services.AdminCredentials{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
		}))
		{
			admin.GET("/leads/export", h.ExportLeadsHandler)
			admin.GET("/leads/archive", h.ArchiveHandler)
		}
	}

	// Start server
	go func() {
		zapLog.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Server shutdown failed", zap.Error(err))
	}

	// Let queued confirmation emails finish
	dispatcher.Wait()
	zapLog.Info("Server stopped")
}
