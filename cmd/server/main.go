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

	"scentstore/config"
	"scentstore/internal/api"
	"scentstore/internal/auth"
	"scentstore/internal/broker"
	"scentstore/internal/gateway"
	"scentstore/internal/redisclient"
	"scentstore/internal/service"
	"scentstore/internal/store"
	"scentstore/internal/util"
	"scentstore/internal/worker"

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

	tp, err := util.InitTracer("scentstore", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours, cfg.Auth.BcryptCost)
	midtransGateway := gateway.NewMidtransGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.Production)

	notificationService := service.NewNotificationService(db, redisClient)
	userService := service.NewUserService(db, authManager, notificationService)
	catalogService := service.NewCatalogService(db, redisClient)
	paymentService := service.NewPaymentService(db, midtransGateway, eventPublisher,
		cfg.Midtrans.ServerKey, cfg.Business.QRISExpiryMinutes)
	orderService := service.NewOrderService(db, paymentService, eventPublisher)
	posService := service.NewPOSService(db, eventPublisher)
	reportService := service.NewReportService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	eventConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(eventConsumer, notificationService, db)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	sweepInterval := time.Duration(cfg.Business.SweepIntervalSeconds) * time.Second
	expirySweeper := worker.NewExpirySweeper(paymentService, redisClient, sweepInterval)
	go func() {
		if err := expirySweeper.Start(workerCtx); err != nil {
			log.Printf("Expiry sweeper error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		userService,
		catalogService,
		orderService,
		paymentService,
		notificationService,
		reportService,
		posService,
		db,
		authManager,
	)
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
	notificationWorker.Stop()
	expirySweeper.Stop()

	log.Println("Server exited")
}
