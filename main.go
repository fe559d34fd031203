package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carhire/config"
	"carhire/cron"
	"carhire/database"
	agreementRepoPkg "carhire/database/repository/agreement"
	bookingRepoPkg "carhire/database/repository/booking"
	healthRepoPkg "carhire/database/repository/health"
	sourceRepoPkg "carhire/database/repository/source"
	"carhire/handlers"
	"carhire/middleware"
	"carhire/routes"
	"carhire/rpc/ingress"
	"carhire/services/adapter"
	"carhire/services/availability"
	"carhire/services/booking"
	"carhire/services/health"
	"carhire/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitIdemCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	agreementRepo := agreementRepoPkg.NewMongoAgreementRepo()
	sourceRepo := sourceRepoPkg.NewMongoSourceRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	healthRepo := healthRepoPkg.NewMongoHealthRepo()

	// services.
	registry := adapter.NewRegistry()
	tracker := health.NewTracker(health.Policy{
		SlowCallThreshold: time.Duration(config.AppConfig.SlowCallThresholdMS) * time.Millisecond,
		SlowRateTrip:      config.AppConfig.SlowRateTrip,
		WindowSize:        config.AppConfig.HealthWindowSize,
		StrikeLimit:       config.AppConfig.StrikeLimit,
		BackoffBase:       time.Duration(config.AppConfig.BackoffBaseMS) * time.Millisecond,
		BackoffCap:        time.Duration(config.AppConfig.BackoffCapMS) * time.Millisecond,
	}, healthRepo)

	jobTable := availability.NewJobTable(time.Duration(config.AppConfig.JobTTLMS) * time.Millisecond)
	stopSweeper := make(chan struct{})
	jobTable.StartSweeper(stopSweeper, 30*time.Second)

	availSvc := availability.NewAvailabilityService(
		agreementRepo, sourceRepo, registry, tracker, jobTable,
		time.Duration(config.AppConfig.AdapterCallTimeoutMS)*time.Millisecond,
		time.Duration(config.AppConfig.JobDeadlineMS)*time.Millisecond,
		config.AppConfig.RecommendedPollMS,
	)
	expiryClient := cron.NewExpiryClient()
	availSvc.Expiry = expiryClient

	bookingSvc := booking.NewBookingService(
		agreementRepo, sourceRepo, bookingRepo, registry,
		booking.NewRedisIdempotencyCache(),
	)

	// Background workers.
	cron.InitExpiryWorker(jobTable)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetIdemCacheClient()},
		database.MongoClient,
	)

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(availSvc, bookingSvc, tracker, agreementRepo, sourceRepo)
	routes.RegisterRoutes(router, handlerBundle)

	// Agent-facing gRPC ingress.
	gateway := ingress.NewAgentGateway(availSvc, bookingSvc, agreementRepo)
	grpcServer := ingress.NewServer(gateway)
	grpcAddr := "0.0.0.0:" + config.AppConfig.GRPCPort
	go func() {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to listen on %s: %v", grpcAddr, err)
		}
		logger.Sugar().Infof("Starting gRPC ingress on %s...", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Sugar().Fatalf("main: gRPC ingress failed: %v", err)
		}
	}()

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	close(stopSweeper)
	grpcServer.GracefulStop()
	if err := registry.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close supplier connections: %v", err)
	}
	if err := expiryClient.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close task queue client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
