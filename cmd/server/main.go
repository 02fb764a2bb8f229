package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/industry-portal/internal/config"
	"github.com/iliyamo/industry-portal/internal/database"
	"github.com/iliyamo/industry-portal/internal/handler"
	"github.com/iliyamo/industry-portal/internal/logger"
	"github.com/iliyamo/industry-portal/internal/metrics"
	"github.com/iliyamo/industry-portal/internal/queue"
	"github.com/iliyamo/industry-portal/internal/repository"
	"github.com/iliyamo/industry-portal/internal/router"
	"github.com/iliyamo/industry-portal/internal/service"
	"github.com/iliyamo/industry-portal/internal/token"
	"github.com/iliyamo/industry-portal/internal/utils"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = lg.Sync() }()

	db, err := database.Open(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		lg.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			lg.Fatal("schema bootstrap failed", zap.Error(err))
		}
	}

	// Redis backs the denylist and the rate limiter; both fall back to
	// process memory when it is unavailable.
	rdb := config.NewRedisClient(cfg.Redis)
	var denylist service.Denylist
	if rdb != nil {
		defer rdb.Close()
		denylist = repository.NewRedisDenylist(rdb)
		lg.Info("redis connected")
	} else {
		denylist = repository.NewMemoryDenylist(time.Now)
		lg.Warn("redis unavailable, using in-memory denylist and rate limiter")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewAMQPPublisher(cfg.AMQPURL, lg)
	}

	m := metrics.New()
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	tokens := token.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL, time.Now)

	auth := service.NewAuthService(service.AuthDeps{
		Users:    users,
		Tokens:   tokens,
		Hasher:   utils.NewHasher(cfg.BcryptCost),
		Denylist: denylist,
		Lockout:  service.LockoutPolicy{MaxAttempts: cfg.LockoutAttempts, Duration: cfg.LockoutDuration},
		Events:   events,
		Metrics:  m,
		Log:      lg,
	})
	industry := service.NewIndustryService(profiles, users, service.PlaceholderMetrics{}, events, lg, time.Now)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.RegisterRoutes(e, router.Deps{
		Config:        cfg,
		Log:           lg,
		Metrics:       m,
		Redis:         rdb,
		Authenticator: auth,
		Auth: handler.NewAuthHandler(auth, handler.CookieManager{
			Secure: cfg.IsProduction(),
			TTL:    auth.AccessTTL(),
		}, cfg.RequestTimeout, lg),
		Dashboard: handler.NewDashboardHandler(industry, cfg.RequestTimeout),
		Health:    &handler.HealthHandler{DB: db, Redis: rdb, Env: cfg.Env, Started: time.Now()},
	})

	go func() {
		lg.Info("server listening", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	lg.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
