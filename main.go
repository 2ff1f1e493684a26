package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-tracker-api/config"
	"payment-tracker-api/handlers"
	"payment-tracker-api/middleware"
	"payment-tracker-api/pagination"
	"payment-tracker-api/routes"
	"payment-tracker-api/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal("payment tracker: ", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Set Gin mode
	switch {
	case cfg.GinMode != "":
		gin.SetMode(cfg.GinMode)
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Seed(ctx, db, cfg, logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	denylist, closeDenylist, err := newDenylist(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDenylist()

	if err := handlers.RegisterValidations(); err != nil {
		return err
	}

	st := store.New(db, store.Options{
		ReservedUsername: cfg.SystemUsername,
		FallbackUsername: cfg.FallbackLogUsername,
		Paginator:        pagination.Paginator{DefaultSize: cfg.DefaultPageSize, MaxSize: cfg.MaxPageSize},
	}, logger.Named("store"))
	issuer := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	h := handlers.New(st, issuer, denylist, logger.Named("http"))

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger), middleware.CORS(cfg.CORSOrigins))
	routes.SetupRoutes(r, h, routes.Middleware{
		Auth:       middleware.AuthRequired(issuer, st, denylist),
		LoginLimit: middleware.RateLimit(cfg.LoginRatePerMinute),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newDenylist uses redis when REDIS_URL is set, otherwise an in-process
// denylist that only covers this instance.
func newDenylist(ctx context.Context, cfg *config.Config, logger *zap.Logger) (middleware.Denylist, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("token denylist: in-memory")
		return middleware.NewMemoryDenylist(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("token denylist: redis", zap.String("addr", opts.Addr))
	return middleware.NewRedisDenylist(client), func() { client.Close() }, nil
}
