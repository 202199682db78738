package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erenulutas0/inventory-service/internal/cache"
	"github.com/erenulutas0/inventory-service/internal/config"
	"github.com/erenulutas0/inventory-service/internal/domain"
	"github.com/erenulutas0/inventory-service/internal/httpapi"
	"github.com/erenulutas0/inventory-service/internal/notifier"
	"github.com/erenulutas0/inventory-service/internal/service"
	"github.com/erenulutas0/inventory-service/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Demo stock used when seed_demo is enabled with the memory backend
var demoRecords = []domain.InventoryRecord{
	{ProductID: "laptop-15", Quantity: 100, Location: domain.LocationWarehouseA},
	{ProductID: "mouse-wireless", Quantity: 500, Location: domain.LocationWarehouseA},
	{ProductID: "keyboard-mech", Quantity: 300, Location: domain.LocationWarehouseB},
	{ProductID: "monitor-27", Quantity: 150, Location: domain.LocationWarehouseB},
	{ProductID: "headphones-bt", Quantity: 200, Location: domain.LocationStoreFront},
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	inventoryStore, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer inventoryStore.Close()

	availabilityCache := buildCache(cfg)
	statusNotifier := buildNotifier(cfg)
	defer statusNotifier.Close()

	engine := service.NewInventoryService(inventoryStore, availabilityCache, statusNotifier, logger)

	if cfg.SeedDemo && cfg.Store.Backend == config.BackendMemory {
		seedDemoStock(engine, logger)
	}

	handler := httpapi.NewHandler(engine, logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("inventory service listening", zap.String("addr", cfg.HTTPAddr))
		if e2 := server.ListenAndServe(); e2 != nil && !errors.Is(e2, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(e2))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down inventory service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if e2 := server.Shutdown(ctx); e2 != nil {
		logger.Error("http server shutdown failed", zap.Error(e2))
	}
	logger.Info("inventory service stopped")
}

func buildStore(cfg *config.Config, logger *zap.Logger) (store.InventoryStore, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err := store.NewPostgresStore(&store.Credentials{
			Host:     cfg.Store.Postgres.Host,
			Port:     cfg.Store.Postgres.Port,
			User:     cfg.Store.Postgres.User,
			Password: cfg.Store.Postgres.Password,
			DBName:   cfg.Store.Postgres.DBName,
		})
		if err != nil {
			return nil, err
		}
		if e2 := pg.RunMigrations(); e2 != nil {
			return nil, e2
		}
		logger.Info("using postgres store", zap.String("host", cfg.Store.Postgres.Host))
		return pg, nil
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mg, err := store.NewMongoStore(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("using mongo store", zap.String("database", cfg.Store.Mongo.Database))
		return mg, nil
	default:
		logger.Info("using in-memory store")
		return store.NewMemoryStore(), nil
	}
}

func buildCache(cfg *config.Config) cache.AvailabilityCache {
	if !cfg.Cache.Enabled {
		return cache.Disabled{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
	redisCache := cache.NewRedisCache(client, cfg.Cache.RecordTTL, cfg.Cache.QuantityTTL)
	return cache.NewBreakerCache(redisCache)
}

func buildNotifier(cfg *config.Config) notifier.StatusNotifier {
	if !cfg.Notifier.Enabled {
		return notifier.NoopNotifier{}
	}
	return notifier.NewKafkaNotifier(cfg.Notifier.Topic, cfg.Notifier.Brokers...)
}

func seedDemoStock(engine *service.InventoryService, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := range demoRecords {
		record := demoRecords[i]
		if _, err := engine.Create(ctx, &record); err != nil {
			logger.Warn("failed to seed demo record", zap.String("product_id", record.ProductID), zap.Error(err))
		}
	}
	logger.Info("seeded demo stock", zap.Int("products", len(demoRecords)))
}
