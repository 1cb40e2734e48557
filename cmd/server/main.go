package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridehail/internal/app"
	"ridehail/internal/config"
	"ridehail/internal/events"
	"ridehail/internal/geo"
	"ridehail/internal/handler"
	internalRedis "ridehail/internal/redis"
	"ridehail/internal/repository/postgres"
	"ridehail/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so database and Redis are instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Lifecycle events go to RabbitMQ when configured, logs otherwise.
	var sink events.Sink = events.NewLogSink()
	if cfg.AMQP.URL != "" {
		amqpSink, err := events.NewAMQPSink(cfg.AMQP.URL)
		if err != nil {
			log.Printf("failed to connect to rabbitmq, falling back to log sink: %v", err)
		} else {
			defer amqpSink.Close()
			sink = amqpSink
			log.Println("Connected to RabbitMQ")
		}
	}

	// Wire dependencies.
	server, err := wireServer(db, redisClient, nrApp, sink, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, sink events.Sink, cfg *config.Config) (*http.Server, error) {
	// Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	rideRepo := postgres.NewRideRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	uow := postgres.NewUnitOfWork(db)

	// Geocoding. With no API key the provider serves fixed fallbacks.
	geoProvider, err := geo.NewGoogleProvider(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}

	// Services.
	fareCalc := service.NewFareCalculator()
	surgeService := service.NewSurgeService(locationStore, rideRepo)
	gateway := service.NewStubCardGateway()
	settlement := service.NewSettlementCoordinator(uow, paymentRepo, gateway, sink)
	receiptService := service.NewReceiptService(sink)
	rideService := service.NewRideService(
		rideRepo, driverRepo, uow, geoProvider, fareCalc,
		surgeService, settlement, receiptService, lockStore, cacheStore, sink,
	)
	paymentService := service.NewPaymentService(paymentRepo, rideRepo, settlement)
	passengerService := service.NewPassengerService(passengerRepo)
	driverService := service.NewDriverService(driverRepo, locationStore)

	// Handlers.
	rideHandler := handler.NewRideHandler(rideService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	passengerHandler := handler.NewPassengerHandler(passengerService, rideService)
	driverHandler := handler.NewDriverHandler(driverService, rideService)

	// Router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:      rideHandler,
		PaymentHandler:   paymentHandler,
		PassengerHandler: passengerHandler,
		DriverHandler:    driverHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
