package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Catalog loaded: %d products", len(cat.Products))

	var store kvstore.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := kvstore.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Redis store connected")
	} else {
		store = kvstore.NewMemory()
		log.Println("Using in-memory store")
	}

	var publisher cart.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicChanges)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	cartManager := cart.NewManager(store, cat, publisher, cfg.Settle.CartBroadcast)
	defer cartManager.Close()

	// Local mutations reach observers solely through the manager's
	// debounced broadcast; the store subscription exists for writes by
	// other instances over the shared Redis store, which filters out
	// this process's own writes. The memory backend has no external
	// writers, and subscribing the manager to its own writes there
	// would re-enter its writer lock mid-mutation.
	if redisStore, ok := store.(*kvstore.Redis); ok {
		unsubCart := redisStore.Subscribe(cart.KeyCart, func(string) {
			cartManager.Refresh(context.Background())
		})
		defer unsubCart()
		unsubWishlist := redisStore.Subscribe(cart.KeyWishlist, func(string) {
			cartManager.Refresh(context.Background())
		})
		defer unsubWishlist()
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var cartWorker *worker.CartSyncWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicChanges, cfg.Kafka.ConsumerGroup)
		cartWorker = worker.NewCartSyncWorker(consumer, cartManager)
		go func() {
			if err := cartWorker.Start(workerCtx); err != nil {
				log.Printf("Cart sync worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(cat, cartManager)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if cartWorker != nil {
		cartWorker.Stop()
	}

	log.Println("Server exited")
}
