package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/weld_shop/internal/config"
	"github.com/Skotchmaster/weld_shop/internal/es"
	"github.com/Skotchmaster/weld_shop/internal/events"
	"github.com/Skotchmaster/weld_shop/internal/httpserver"
	"github.com/Skotchmaster/weld_shop/internal/logging"
	authmw "github.com/Skotchmaster/weld_shop/internal/middleware/auth"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/search"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/storage"
	"github.com/Skotchmaster/weld_shop/internal/tokens"
	"github.com/Skotchmaster/weld_shop/pkg/db"
	loggingmw "github.com/Skotchmaster/weld_shop/pkg/middleware/logging"
)

const productsIndex = "products"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "weld_shop")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store, err := storage.NewMinioStore(context.Background(), storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucketName,
		UseSSL:    cfg.MinioUseSSL,
	}, logger)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	// ES and Kafka are optional; the services degrade without them.
	var index *search.Index
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, logger)
		if err != nil {
			logger.Warn("elasticsearch unavailable, using database search", "error", err)
		} else {
			index = search.NewIndex(esClient, productsIndex)
		}
	}
	producer := events.NewProducer(cfg.KafkaAddress)

	r := repo.New(gdb)
	assets := service.NewAssetCoordinator(store)
	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	productSvc := &service.ProductService{Repo: r, Assets: assets, Events: producer, Search: index}

	deps := &httpserver.Deps{
		Gate:     &authmw.Gate{Tokens: tokenSvc},
		Auth:     &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tokenSvc, Events: producer}},
		Category: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: r, Assets: assets}},
		Product: &httpserver.ProductHTTP{
			Svc: productSvc,
			Csv: &service.CsvService{Repo: r, Assets: assets, Fetcher: service.NewHTTPImageFetcher(), Catalog: productSvc},
		},
		Carousel: &httpserver.CarouselHTTP{Svc: &service.CarouselService{Repo: r, Assets: assets}},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: producer}},
		Files:    &httpserver.FilesHTTP{Store: store},
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("weld_shop listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		_ = producer.Close()
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("weld_shop stopped")
}
