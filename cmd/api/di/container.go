package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-api/cmd/api/infrastructure"
	"user-crud-api/internal/adapter/cache"
	"user-crud-api/internal/adapter/db/gormstore"
	ginhandler "user-crud-api/internal/adapter/gin/handler"
	ginrouter "user-crud-api/internal/adapter/gin/router"
	"user-crud-api/internal/adapter/ratelimit"
	"user-crud-api/internal/adapter/repository/cached"
	"user-crud-api/internal/config"
	"user-crud-api/internal/usecase/user"
	redisclient "user-crud-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	RedisClient  *redisclient.Client
	UserService  user.UserService
	RateLimiter  *ratelimit.Limiter
	GinHandler   *ginhandler.UserHandler
	HealthChecks []ginrouter.HealthCheck
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	dbRepo := gormstore.NewUserRepo(db, l)
	checks := []ginrouter.HealthCheck{{Name: "database", Check: dbRepo.HealthCheck}}

	var store user.UserStore = dbRepo
	// a nil interface, not a typed nil, keeps the limiter disabled without Redis
	var scripter redis.Scripter
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		store = cached.NewUserStore(dbRepo, userCache, l)
		scripter = rdb.Client
		checks = append(checks, ginrouter.HealthCheck{Name: "redis", Check: rdb.HealthCheck})
	}

	userService := user.New(store, l)

	rateLimiter := ratelimit.NewLimiter(
		scripter,
		ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	return &Container{
		Config:       cfg,
		Logger:       l,
		DB:           db,
		RedisClient:  rdb,
		UserService:  userService,
		RateLimiter:  rateLimiter,
		GinHandler:   ginhandler.NewUserHandler(userService, l),
		HealthChecks: checks,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
