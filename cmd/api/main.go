package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/auth"
	"github.com/sgeneral-iua/portal-sg/internal/config"
	"github.com/sgeneral-iua/portal-sg/internal/handlers"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/requests"
	"github.com/sgeneral-iua/portal-sg/internal/requirements"
	"github.com/sgeneral-iua/portal-sg/internal/session"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"github.com/sgeneral-iua/portal-sg/internal/utils/httpclient"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sgeneral-iua/portal-sg/docs"
)

// @title           Portal SG API
// @version         1.0
// @description     Backend del portal de graduados de la Secretaría General. Valida sesiones, guía el formulario de datos personales, genera solicitudes de títulos y administra la carga y revisión de requisitos contra la API de la Secretaría.

// @contact.name   Secretaría General
// @contact.email  soporte@sgeneral.edu.ar

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

// @tag.name auth
// @tag.description Inicio de sesión, registro y recuperación de contraseña

// @tag.name form
// @tag.description Formulario de datos personales en cuatro pasos

// @tag.name requirements
// @tag.description Documentos requeridos por cada solicitud

// @tag.name health
// @tag.description Health check operations

const (
	registrySweepInterval = 5 * time.Minute
	limiterCleanupAge     = 10 * time.Minute
)

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	ctx := context.Background()

	// Initialize observability
	shutdownTracer, err := observability.InitTracer(ctx, cfg)
	if err != nil {
		logging.Logger.Warn("tracing unavailable", zap.Error(err))
	}
	defer shutdownTracer()

	if err := config.InitRedis(ctx); err != nil {
		logging.Logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	// Audit logs are best effort; the portal runs without MongoDB
	if cfg.AuditLogsEnabled {
		if err := config.InitMongoDB(ctx); err != nil {
			logging.Logger.Warn("audit storage unavailable, audit events will only be logged", zap.Error(err))
		}
		utils.InitAuditWorker(cfg.AuditWorkerCount, cfg.AuditBufferSize)
		defer utils.StopAuditWorker()
	}

	api, err := apiclient.New(cfg.APIBaseURL, httpclient.New(cfg.APITimeout), logging.Logger)
	if err != nil {
		logging.Logger.Fatal("failed to create API client", zap.Error(err))
	}

	sessions, err := session.NewStore(config.Redis, cfg.SessionTTL, cfg.SessionSigningKey, logging.Logger)
	if err != nil {
		logging.Logger.Fatal("failed to create session store", zap.Error(err))
	}

	stop := make(chan struct{})
	defer close(stop)

	registry := requirements.NewRegistry(logging.Logger)
	registry.StartSweeper(registrySweepInterval, cfg.SessionTTL, stop)

	limiter := auth.NewLoginLimiter(cfg.LoginAttemptsPerMinute, logging.Logger)
	limiter.StartCleanup(time.Minute, limiterCleanupAge, stop)

	h := handlers.New(handlers.Deps{
		API:               api,
		Sessions:          sessions,
		Auth:              auth.NewService(api, sessions, registry, limiter, logging.Logger),
		Requests:          requests.NewService(api, config.Redis, logging.Logger),
		Registry:          registry,
		ReviewerThreshold: int64(cfg.ReviewerRoleThreshold),
		UploadMaxBytes:    cfg.UploadMaxBytes,
		Logger:            logging.Logger,
	})

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		middleware.RequestTiming(),
		cors.New(corsConfig),
		middleware.AuditMiddleware(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(router, middleware.SessionAuth(sessions))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploads and PDF downloads wait on the remote API, so writes get its timeout plus headroom
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("sg_api", cfg.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}
