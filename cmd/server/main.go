package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/eshop/internal/adapter/handler"
	"github.com/rl1809/eshop/internal/adapter/queue"
	"github.com/rl1809/eshop/internal/adapter/shipping"
	"github.com/rl1809/eshop/internal/adapter/storage"
	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/core/service"
	"github.com/rl1809/eshop/internal/pkg/logging"
	"github.com/rl1809/eshop/internal/port"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultWorkerCount = 4
	defaultQueueSize   = 1024
)

func main() {
	logger := logging.MustNewLogger("eshop")
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpAddr := envOr("HTTP_ADDR", defaultHTTPAddr)
	mysqlDSN := os.Getenv("MYSQL_DSN")
	redisAddr := os.Getenv("REDIS_ADDR")
	amqpURL := os.Getenv("AMQP_URL")
	dueWindow := envDuration(logger, "ORDER_DUE_WINDOW", service.DefaultDueWindow)

	// Pick the shipping repository: MySQL when a DSN is configured, Redis
	// when an address is, in-memory otherwise.
	var repo port.ShippingRepository
	switch {
	case mysqlDSN != "":
		db, err := sql.Open("mysql", mysqlDSN)
		if err != nil {
			logger.Fatal("open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("ping mysql", zap.Error(err))
		}
		defer db.Close()
		repo = storage.NewMySQLAdapter(db)
		logger.Info("using mysql shipping repository")
	case redisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr, PoolSize: 100})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("ping redis", zap.Error(err))
		}
		defer rdb.Close()
		repo = storage.NewRedisAdapter(rdb)
		logger.Info("using redis shipping repository")
	default:
		repo = storage.NewMemoryAdapter()
		logger.Info("using in-memory shipping repository")
	}

	var wg sync.WaitGroup

	// Pick the shipping notification transport: RabbitMQ when configured,
	// in-process channel queue otherwise.
	var pub port.ShippingPublisher
	var channelQueue *queue.ChannelPublisher
	var rabbitConsumer *queue.RabbitConsumer
	if amqpURL != "" {
		conn, ch, err := queue.SetupConn(amqpURL, logger)
		if err != nil {
			logger.Fatal("setup rabbitmq", zap.Error(err))
		}
		defer conn.Close()
		pub = queue.NewRabbitPublisher(ch)
		rabbitConsumer = queue.NewRabbitConsumer(ch, logger)
		logger.Info("using rabbitmq shipping queue")
	} else {
		channelQueue = queue.NewChannelPublisher(defaultQueueSize)
		pub = channelQueue
		logger.Info("using in-process shipping queue")
	}

	shippingService := shipping.NewService(repo, pub, logger)

	workerCount := envInt(logger, "WORKER_COUNT", defaultWorkerCount)
	if rabbitConsumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rabbitConsumer.Consume(ctx, shippingService.ProcessShipping); err != nil && ctx.Err() == nil {
				logger.Error("rabbitmq consumer stopped", zap.Error(err))
			}
		}()
	} else {
		for i := 0; i < workerCount; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				workerLoop(id, channelQueue.Queue(), shippingService, logger)
			}(i)
		}
		logger.Info("started shipping workers", zap.Int("count", workerCount))
	}

	catalog := seedCatalog(logger)

	httpHandler := handler.NewHTTPHandler(catalog, shippingService, dueWindow, logger)
	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: httpHandler.Router(),
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	cancel()
	if channelQueue != nil {
		channelQueue.Close()
	}
	wg.Wait()
	logger.Info("workers stopped")
}

func workerLoop(id int, shippingQueue <-chan string, svc *shipping.Service, logger *zap.Logger) {
	for shippingID := range shippingQueue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := svc.ProcessShipping(ctx, shippingID); err != nil {
			logger.Error("process shipping failed",
				zap.Int("worker", id),
				zap.String("shipping_id", shippingID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func seedCatalog(logger *zap.Logger) *domain.Catalog {
	catalog := domain.NewCatalog()
	for _, seed := range []struct {
		name  string
		price int64
		stock int
	}{
		{"widget", 10, 100},
		{"gadget", 25, 50},
		{"gizmo", 99, 10},
	} {
		product, err := domain.NewProduct(seed.name, seed.price, seed.stock)
		if err != nil {
			logger.Fatal("seed catalog", zap.String("product", seed.name), zap.Error(err))
		}
		catalog.Register(product)
	}
	logger.Info("seeded catalog", zap.Strings("products", catalog.Names()))
	return catalog
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(logger *zap.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.Warn("invalid env value, using default", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return n
}

func envDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn("invalid env value, using default", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return d
}
