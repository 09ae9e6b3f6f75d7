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

	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/config"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/dedupe"
	"github.com/Mekazstan/course-marketplace-api/internal/email"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/Mekazstan/course-marketplace-api/internal/logging"
	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"github.com/Mekazstan/course-marketplace-api/internal/ratelimit"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type apiConfig struct {
	db        database.Querier
	jwtSecret string
	siteURL   string
	loginURL  string
	log       *zap.Logger
	validate  *validator.Validate

	payments *payment.PaymentService
	creator  *checkout.Creator
	writer   *enrollment.Writer
	limiter  *ratelimit.Limiter
	webhooks *dedupe.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("unable to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("unable to parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(opt)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("unable to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	db := database.New(pool)

	limiter, err := ratelimit.New(redisClient, "ratelimit:checkout", cfg.RateLimit, time.Minute)
	if err != nil {
		logger.Fatal("invalid rate limit configuration", zap.Error(err))
	}

	payments := payment.NewPaymentService(
		payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		},
		payment.RazorpayConfig{
			KeyID:         cfg.RazorpayKeyID,
			KeySecret:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
		},
	)

	writer := enrollment.NewWriter(db, logger.Named("enrollment"))
	var receipts *email.ReceiptNotifier
	if cfg.EmailEnabled() {
		mailer, err := email.NewEmailService(email.Config{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		})
		if err != nil {
			logger.Fatal("failed to initialise email service", zap.Error(err))
		}
		receipts = email.NewReceiptNotifier(mailer, db, cfg.SiteURL, logger.Named("email"))
		writer = writer.WithNotifier(receipts)
	} else {
		logger.Info("smtp not configured, enrollment receipts disabled")
	}

	api := &apiConfig{
		db:        db,
		jwtSecret: cfg.AuthJWTSecret,
		siteURL:   cfg.SiteURL,
		loginURL:  cfg.LoginURL,
		log:       logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		payments:  payments,
		creator: checkout.NewCreator(db, payments.Stripe, payments.Razorpay, checkout.Config{
			Currency: cfg.Currency,
			SiteURL:  cfg.SiteURL,
		}, logger.Named("checkout")),
		writer:   writer,
		limiter:  limiter,
		webhooks: dedupe.New(redisClient, "webhook", dedupe.DefaultTTL),
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", string(cfg.Environment)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if receipts != nil {
		receipts.Wait()
	}
	logger.Info("server stopped")
}

func (cfg *apiConfig) routes() http.Handler {
	mux := http.NewServeMux()

	authMiddleware := AuthMiddleware(cfg.jwtSecret)
	optionalAuth := OptionalAuthMiddleware(cfg.jwtSecret)
	rateLimit := RateLimitMiddleware(cfg.limiter, cfg.log)

	mux.Handle("GET /healthz", cfg.handle(cfg.handlerHealth))

	// Catalogue
	mux.Handle("GET /api/v1/courses", cfg.handle(cfg.handlerListCourses))
	mux.Handle("GET /api/v1/courses/{id}", optionalAuth(cfg.handle(cfg.handlerGetCourse)))
	mux.Handle("POST /api/v1/courses", authMiddleware(cfg.handle(cfg.handlerCreateCourse)))
	mux.Handle("PUT /api/v1/courses/{id}", authMiddleware(cfg.handle(cfg.handlerUpdateCourse)))

	// Lessons
	mux.Handle("POST /api/v1/courses/{id}/lessons", authMiddleware(cfg.handle(cfg.handlerCreateLesson)))
	mux.Handle("DELETE /api/v1/courses/{id}/lessons/{lessonId}", authMiddleware(cfg.handle(cfg.handlerDeleteLesson)))
	mux.Handle("GET /api/v1/courses/{id}/lessons/{lessonId}", authMiddleware(cfg.handle(cfg.handlerGetLesson)))
	mux.Handle("PUT /api/v1/courses/{id}/lessons/{lessonId}/progress", authMiddleware(cfg.handle(cfg.handlerUpdateProgress)))

	// Enrollment
	mux.Handle("POST /api/v1/courses/{id}/enroll", optionalAuth(cfg.handle(cfg.handlerEnrollFree)))
	mux.Handle("GET /api/v1/me/enrollments", authMiddleware(cfg.handle(cfg.handlerListEnrollments)))

	// Checkout (rate limited per user)
	mux.Handle("POST /api/v1/checkout/stripe", authMiddleware(rateLimit(cfg.handle(cfg.handlerCreateStripeSession))))
	mux.Handle("POST /api/v1/razorpay/order", authMiddleware(rateLimit(cfg.handle(cfg.handlerCreateRazorpayOrder))))
	mux.Handle("POST /api/v1/razorpay/verify", authMiddleware(cfg.handle(cfg.handlerRazorpayVerify)))

	// Webhook routes (no auth - verified by signature)
	mux.Handle("POST /api/v1/webhooks/stripe", cfg.handle(cfg.handlerStripeWebhook))
	mux.Handle("POST /api/v1/webhooks/razorpay", cfg.handle(cfg.handlerRazorpayWebhook))

	var handler http.Handler = mux
	handler = middlewareCors(handler)
	handler = SecurityHeadersMiddleware(handler)
	handler = LoggingMiddleware(cfg.log)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(cfg.log)(handler)
	return handler
}

func (cfg *apiConfig) handlerHealth(r *http.Request) result {
	return okResult(map[string]string{"status": "ok"})
}
