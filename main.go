package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gigbook/config"
	"gigbook/cron"
	"gigbook/database"
	"gigbook/database/repository"
	bookingRepo "gigbook/database/repository/booking"
	directoryRepo "gigbook/database/repository/directory"
	notificationRepo "gigbook/database/repository/notification"
	paymentRepo "gigbook/database/repository/payment"
	refundRepo "gigbook/database/repository/refund"
	"gigbook/handlers"
	"gigbook/middleware"
	"gigbook/routes"
	"gigbook/services/booking"
	"gigbook/services/notification"
	"gigbook/services/payment"
	"gigbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.AppConfig.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET is required")
	}
	if config.AppConfig.StripeKey == "" {
		logger.Fatal("main: STRIPE_KEY is required")
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	db := database.DB()
	lockClient := utils.GetLockClient()

	push, err := utils.FirebaseInit(rootCtx)
	if err != nil {
		logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
	}

	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()

	loc, err := time.LoadLocation(config.AppConfig.BookingTimezone)
	if err != nil {
		logger.Fatal("main: invalid BOOKING_TIMEZONE", zap.String("tz", config.AppConfig.BookingTimezone), zap.Error(err))
	}

	// repositories.
	directory := directoryRepo.NewMongoDirectoryRepo(db)
	payments := paymentRepo.NewMongoPaymentRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	refunds := refundRepo.NewMongoRefundRepo(db)
	notifications := notificationRepo.NewMongoNotificationRepo(db)

	indexCtx, cancelIndexes := context.WithTimeout(rootCtx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"payments":        payments.EnsureIndexes,
		"bookings":        bookings.EnsureIndexes,
		"refund_requests": refunds.EnsureIndexes,
		"notifications":   notifications.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancelIndexes()

	// services.
	escrowService := &booking.DefaultEscrowService{
		Directory:       directory,
		Users:           directory,
		Payments:        payments,
		Bookings:        bookings,
		Refunds:         refunds,
		Notifications:   notifications,
		Tx:              repository.NewMongoTxRunner(database.MongoClient),
		Gateway:         payment.NewStripeGateway(config.AppConfig.StripeKey, time.Duration(config.AppConfig.GatewayTimeout)*time.Second, logger),
		Emitter:         notification.NewAsynqEmitter(queueClient),
		Locker:          utils.NewRedisLocker(lockClient),
		Logger:          logger,
		Location:        loc,
		FeePercent:      config.AppConfig.PlatformFeePercent,
		DefaultCurrency: config.AppConfig.DefaultCurrency,
		LockTTL:         time.Duration(config.AppConfig.BookingLockTTL) * time.Second,
	}

	deliveryService := &notification.DefaultDeliveryService{
		Notifications: notifications,
		Users:         directory,
		Logger:        logger,
	}
	if push != nil {
		deliveryService.Push = push
	}

	worker := cron.NewNotificationWorker(deliveryService, logger)
	worker.Start(rootCtx)

	queueRedis := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueRedis.Close()
	utils.StartHealthMonitor(rootCtx, 30*time.Second, []*redis.Client{lockClient, queueRedis}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))

	handlerBundle := handlers.NewHandlerBundle(handlers.NewBookingHandler(escrowService))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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

	// In-flight requests may be past the gateway call; give them time to
	// record the outcome.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	worker.Shutdown()
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
