package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/catalog"
	"shop-service/internal/config"
	shophttp "shop-service/internal/controllers/http"
	"shop-service/internal/infra/cache"
	"shop-service/internal/infra/database"
	"shop-service/internal/infra/events"
	"shop-service/internal/infra/idempotency"
	"shop-service/internal/infra/kafka"
	"shop-service/internal/infra/rabbitmq"
	"shop-service/internal/infra/ws"
	"shop-service/internal/metrics"
	"shop-service/internal/repository"
	"shop-service/internal/repository/gormrepo"
	"shop-service/internal/repository/memory"
	"shop-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redisv8 "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	productCacheTTL = 30 * time.Second
	idempotencyTTL  = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func openStore(cfg config.Config) (repository.Store, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Println("Using in-memory store")
		return memory.New(), nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Using %s store", cfg.StoreBackend)
	return gormrepo.NewStore(db), nil
}

func newPublisher(cfg config.Config, hub *ws.Hub) (events.Publisher, func(), error) {
	pubs := events.Multi{hub}
	var closers []func()

	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitExchange)
		if err != nil {
			return nil, nil, err
		}
		pubs = append(pubs, p)
		closers = append(closers, p.Close)
	}
	if brokers := kafka.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		p := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		pubs = append(pubs, p)
		closers = append(closers, func() {
			if err := p.Close(); err != nil {
				log.Printf("kafka close: %v", err)
			}
		})
	}

	return pubs, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", idempotency.Header)
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func serve(ctx context.Context, cfg config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	seed, err := catalog.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	if _, err := catalog.Apply(ctx, store, seed); err != nil {
		return err
	}

	hub := ws.NewHub()
	publisher, closePublishers, err := newPublisher(cfg, hub)
	if err != nil {
		return err
	}
	defer closePublishers()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	s := services.NewShopService(store, publisher, services.Options{
		ReleaseStockOnFailure: cfg.ReleaseStockOnFailure,
		InvoiceDue:            cfg.InvoiceDue(),
	})
	s.SetCheckoutObserver(m)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Println("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	handler := shophttp.NewHandler(s, auth.NewTokens(secret, cfg.TokenTTL))
	handler.SetHub(hub)

	if addr := cfg.RedisAddr(); addr != "" {
		redisClient := redisv8.NewClient(&redisv8.Options{
			Addr:         addr,
			DB:           0,
			PoolSize:     200,
			MinIdleConns: 20,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		productCache := cache.NewProductCache(redisClient, productCacheTTL)
		s.SetProductCache(productCache)

		// Warm up before serving so no request can invalidate ahead of it.
		if err := productCache.Warmup(ctx, store.ListProducts); err != nil {
			log.Printf("Failed to warm up cache: %v", err)
		} else {
			log.Println("Cache warmed up successfully")
		}

		idemClient := redisv9.NewClient(&redisv9.Options{Addr: addr, DB: 1})
		defer idemClient.Close()
		handler.SetIdempotencyStore(idempotency.NewStore(idemClient, idempotencyTTL))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), m.Middleware(), cors.New(corsConfig(cfg.CORSOrigins)))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	handler.RegisterRoutes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting shop service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Println("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
