package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/qalicha-dev28/boutique-pos/internal/auth"
	"github.com/qalicha-dev28/boutique-pos/internal/config"
	"github.com/qalicha-dev28/boutique-pos/internal/event"
	"github.com/qalicha-dev28/boutique-pos/internal/http"
	"github.com/qalicha-dev28/boutique-pos/internal/log"
	"github.com/qalicha-dev28/boutique-pos/internal/relay"
	"github.com/qalicha-dev28/boutique-pos/internal/repository"
	"github.com/qalicha-dev28/boutique-pos/internal/service"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/db"
	"github.com/qalicha-dev28/boutique-pos/internal/storage/mq"
	"github.com/qalicha-dev28/boutique-pos/internal/telemetry"
	"github.com/qalicha-dev28/boutique-pos/pkg/cmdutil"
	"github.com/qalicha-dev28/boutique-pos/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	//nolint:errcheck
	godotenv.Load()

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
		Auth     config.Auth
		POS      config.POS
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	validate, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	tokenMaker := auth.NewTokenMaker(cfg.Auth)

	userRepository := repository.NewUserRepository(dbClient)
	productRepository := repository.NewProductRepository(dbClient)
	categoryRepository := repository.NewCategoryRepository(dbClient)
	customerRepository := repository.NewCustomerRepository(dbClient)
	stockRepository := repository.NewStockRepository(dbClient)
	saleRepository := repository.NewSaleRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	authService := service.NewAuthService(userRepository, tokenMaker)
	productService := service.NewProductService(dbClient, productRepository, categoryRepository, stockRepository)
	customerService := service.NewCustomerService(customerRepository, saleRepository)
	inventoryService := service.NewInventoryService(dbClient, stockRepository, outboxMsgRepository)
	saleService := service.NewSaleService(
		dbClient, cfg.POS, saleRepository, productRepository,
		stockRepository, customerRepository, outboxMsgRepository,
	)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(
			cfg.HTTP, logger, validate, tokenMaker,
			authService, productService, customerService, inventoryService, saleService,
		)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
