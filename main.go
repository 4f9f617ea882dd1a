package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/apperrors"
	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/logger"
	"checkout-service/middleware"
	aws_pkg "checkout-service/pkg/aws"
	"checkout-service/routes"
	"checkout-service/services"
	"checkout-service/templates"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "checkout-service"

func main() {
	log := logger.Initialize(os.Getenv("APP_ENV"))
	defer func() { _ = logger.Log.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}
	log = logger.Initialize(cfg.Env)

	// --- AWS setup (optional) ---
	var (
		awsCfg     sdkaws.Config
		awsLoaded  bool
		eventsSink aws_pkg.SNSPublisher
		metrics    aws_pkg.Recorder
	)
	if cfg.CloudWatchEnabled || cfg.CheckoutSNSTopicARN != "" {
		awsCfg, err = aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			log.Warn("AWS config load failed, events and metrics disabled", zap.Error(err))
		} else {
			awsLoaded = true
		}
	}

	if awsLoaded && cfg.CloudWatchEnabled {
		cwWriter, err := aws_pkg.NewCloudWatchLogsWriter(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			log.Warn("CloudWatch logs writer init failed (non-fatal)", zap.Error(err))
		} else {
			log = logger.InitializeWithWriter(cfg.Env, cwWriter)
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
	}
	if awsLoaded && cfg.CheckoutSNSTopicARN != "" {
		eventsSink = aws_pkg.NewSNSClient(awsCfg)
	}

	// --- Receipt cache (optional) ---
	var cache services.ReceiptCache = services.NoopReceiptCache{}
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable, receipt cache disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			cache = services.NewRedisReceiptCache(redisClient, cfg.ReceiptCacheTTL)
			log.Info("Receipt cache connected", zap.String("addr", opts.Addr))
		}
		cancel()
	}

	// --- Dependency injection ---
	checkoutSvc := services.NewCheckoutService(services.CheckoutDeps{
		Catalog:  services.NewCatalog(),
		Currency: services.CurrencyPolicy{Default: cfg.DefaultCurrency, Supported: cfg.SupportedCurrencies},
		Gateway:  services.NewStripeService(cfg.StripeSecretKey, log),
		Cache:    cache,
		Events:   services.NewEventPublisher(eventsSink, cfg.CheckoutSNSTopicARN, log),
		Metrics:  metrics,
		Logger:   log,
	})
	checkoutController := controllers.NewCheckoutController(checkoutSvc, cfg.ClientConfig(), log)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, serviceName))
	r.Use(apperrors.ErrorMiddleware())

	tmpl, err := templates.Parse()
	if err != nil {
		log.Fatal("Template parse failed", zap.Error(err))
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", templates.Static())

	routes.RegisterCheckoutRoutes(r, checkoutController, middleware.PerMinute(cfg.RateLimitPerMinute))

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Checkout Service started",
			zap.String("port", cfg.Port),
			zap.String("default_currency", cfg.DefaultCurrency),
			zap.Strings("supported_currencies", cfg.SupportedCurrencies),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", zap.Error(err))
		}
	}

	log.Info("Checkout Service stopped gracefully")
}
