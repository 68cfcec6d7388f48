package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"astrobooking/internal/backend"
	"astrobooking/internal/config"
	"astrobooking/internal/database"
	"astrobooking/internal/middleware"
	"astrobooking/internal/modules/availability"
	"astrobooking/internal/modules/booking"
	"astrobooking/internal/modules/calendar"
	"astrobooking/internal/modules/catalog"
	"astrobooking/internal/modules/payment"
	"astrobooking/internal/modules/status"
	"astrobooking/internal/observability/metrics"
	"astrobooking/internal/pkg/logger"
	"astrobooking/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("database migrate failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewPaymentMetrics(reg)

	attempts := repository.NewPaymentAttemptRepository(db)
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, lg).WithObserver(m)
	bridge := payment.NewCallbackBridge()
	orchestrator := payment.NewOrchestrator(backendClient, bridge, attempts, payment.Config{
		KeyID:       cfg.CheckoutKeyID,
		DisplayName: cfg.BrandName,
		Currency:    cfg.Currency,
	}, lg).WithObserver(m)

	hub := status.NewHub(lg)
	types := catalog.Default()
	registry := booking.NewRegistry(booking.Deps{
		Catalog:  types,
		Payer:    orchestrator,
		Resolver: bridge,
		Invites: calendar.Builder{
			Brand:        cfg.BrandName,
			ServiceEmail: cfg.ServiceEmail,
			Location:     cfg.Location,
		},
		Publisher: hub,
		Observer:  m,
		Location:  cfg.Location,
		StatusTTL: cfg.StatusTTL,
		Logger:    lg,
	}, cfg.SessionIdleTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx)

	r := gin.New()
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.BearerSession())
	r.Use(middleware.RequestLogger(lg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.NewIPRateLimiter(cfg.MaxRequestsPerMin).Middleware(lg))
	{
		catalog.NewHandler(types).RegisterRoutes(v1)
		availability.NewHandler(cfg.Location, nil).RegisterRoutes(v1)
		booking.NewHandler(registry, hub, cfg.Location, lg).RegisterRoutes(v1)
		payment.NewHandler(attempts, lg).RegisterRoutes(v1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	registry.CloseAll()
}
