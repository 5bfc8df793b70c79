package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"inbox/internal/awsutil"
	"inbox/internal/blob"
	"inbox/internal/cache"
	"inbox/internal/config"
	"inbox/internal/httpserver"
	"inbox/internal/logging"
	"inbox/internal/observability"
	"inbox/internal/service"
	"inbox/internal/store/pg"
)

func main() {
	cfg := config.LoadAPI()
	logging.Init("api", cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{})
	if err != nil {
		slog.Error("api db connect failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	s3Client, err := awsutil.NewS3Client(ctx, cfg.AWSRegion)
	if err != nil {
		slog.Error("api s3 client init failed", "err", err)
		os.Exit(1)
	}

	observability.Register(prometheus.DefaultRegisterer)

	// Missing blobs are a data condition, not a backend failure; they must
	// not trip the breaker.
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "content-blobs",
		MaxRequests: 3,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
		IsSuccessful: func(err error) bool {
			var nsk *s3types.NoSuchKey
			return err == nil || errors.As(err, &nsk)
		},
	})

	svc := &service.MessageService{
		Records:          pg.NewMessages(db),
		Views:            pg.NewViews(db),
		Content:          blob.NewContentStore(s3Client, cfg.ContentBucket, breaker),
		Services:         pg.NewServices(db),
		Cache:            cache.NewRedis(rdb),
		ServiceCacheTTL:  cfg.ServiceCacheTTL,
		RCConfigCacheTTL: cfg.RCConfigCacheTTL,
		UseViewStore:     cfg.UseViewStore,
		CategoryTags:     cfg.CategoryTags,
	}

	s := httpserver.New()
	api := &httpserver.API{
		Svc:         svc,
		MaxPageSize: cfg.MaxPageSize,
	}
	api.Register(s.Mux)

	s.Mux.HandleFunc("/healthz", httpserver.Healthz())
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second,
		func(ctx context.Context) error { return db.Ping(ctx) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	))

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst)
	handler := httpserver.Logging(httpserver.RateLimit(limiter, s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("api shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("api listening", "port", cfg.Port, "view_store", cfg.UseViewStore)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("api server failed", "err", err)
		os.Exit(1)
	}

	db.Close()
	_ = rdb.Close()
}
