package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/config"
	"github.com/driverec/reconcile-api/internal/store"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client

	DriveService     DriveServiceInterface
	CacheService     CacheServiceInterface
	ReconcileService ReconcileServiceInterface
	RunStore         *store.Store
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initRedis()

	runStore, err := store.Open(cfg.Reconcile.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	container.RunStore = runStore

	container.CacheService = NewCacheService(container.redisClient, cfg.Reconcile.CacheTTL, logger)
	container.DriveService = NewDriveService(cfg.Drive, logger)
	container.ReconcileService = NewReconcileService(cfg.Reconcile, container.DriveService, container.CacheService, logger)

	return container, nil
}

// initRedis initializes the Redis client, degrading to the in-memory
// cache when Redis is unreachable.
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	if err := c.redisClient.Ping(context.Background()).Err(); err != nil {
		c.logger.Warn("Redis connection failed, running without shared cache")
		c.redisClient = nil
		return
	}
	c.logger.Info("Redis connection established")
}

// Close closes all service connections
func (c *Container) Close() error {
	var errs []error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if c.RunStore != nil {
		if err := c.RunStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close run store: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.redisClient != nil {
		if err := c.redisClient.Ping(context.Background()).Err(); err != nil {
			health["redis"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		} else {
			health["redis"] = map[string]interface{}{"status": "healthy"}
		}
	} else {
		health["redis"] = map[string]interface{}{"status": "disabled"}
	}

	if c.RunStore != nil {
		health["store"] = c.RunStore.Health()
	}
	if c.DriveService != nil {
		health["drive"] = c.DriveService.Health()
	}
	if c.ReconcileService != nil {
		health["reconcile"] = c.ReconcileService.Health()
	}

	return health
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}
