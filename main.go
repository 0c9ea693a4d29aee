package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/config"
	"venuebook/cron"
	"venuebook/database"
	"venuebook/database/repository"
	"venuebook/handlers"
	"venuebook/middleware"
	"venuebook/routes"
	"venuebook/services/booking"
	"venuebook/services/pricing"
	"venuebook/services/propagation"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.InitValidator()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	ruleRepo := repository.NewGormRuleRepo(database.DB)
	overrideRepo := repository.NewGormOverrideRepo(database.DB)
	bookingRepo := repository.NewGormBookingRepo(database.DB)

	// services.
	ruleCache := pricing.NewRuleCache(ruleRepo.ListActive, config.RuleCacheTTL(), nil)
	resolver := &pricing.Resolver{
		Rules:        ruleCache,
		Overrides:    overrideRepo,
		Bookings:     bookingRepo,
		DefaultPrice: config.AppConfig.DefaultPrice,
	}

	publisher := propagation.NewRedisPublisher(utils.GetCacheClient())
	hub := propagation.NewHub(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx, utils.GetCacheClient())

	var gateway booking.PaymentGateway
	if config.AppConfig.StripeKey != "" {
		gateway = &booking.StripeGateway{Currency: config.AppConfig.Currency}
	}

	scheduler := cron.NewExpiryScheduler(cron.QueueRedisOpt(), config.BookingExpiry())

	bookingService := &booking.DefaultService{
		Repo:      bookingRepo,
		Resolver:  resolver,
		Publisher: publisher,
		Payments:  gateway,
		Expiry:    scheduler,
		Logger:    logger,
	}

	cron.InitExpiryWorker(bookingService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.Bundle{
		Calendar: handlers.NewCalendarHandler(resolver, logger),
		Booking:  handlers.NewBookingHandler(bookingService, logger),
		Payment:  handlers.NewPaymentWebhookHandler(bookingService, config.AppConfig.StripeWebhookSecret, logger),
		Admin: handlers.NewAdminHandler(
			ruleRepo, overrideRepo, bookingService,
			ruleCache, resolver, publisher, logger,
		),
		Hub: hub,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Starting server on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
		os.Exit(1)
	}
	logger.Sugar().Info("Server stopped")
}
