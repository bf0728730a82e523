package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"subscriptionAPI/handlers"
	"subscriptionAPI/internal/config"
	"subscriptionAPI/internal/firebase"
	"subscriptionAPI/internal/ledger"
	"subscriptionAPI/internal/logging"
	"subscriptionAPI/internal/metrics"
	"subscriptionAPI/internal/notification"
	"subscriptionAPI/internal/paystack"
	"subscriptionAPI/internal/plan"
	"subscriptionAPI/middleware"
	"subscriptionAPI/services"
)

var (
	cfg                 *config.Config
	logger              *zap.Logger
	firebaseClients     *firebase.Clients
	dbPool              *pgxpool.Pool
	paymentLedger       *ledger.Postgres
	paymentService      *services.PaymentService
	dispatcher          *services.NotificationDispatcher
	subscriptionService *services.SubscriptionService
	catalog             *plan.Catalog
)

func init() {
	var err error

	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	firebaseClients, err = firebase.New(ctx, firebase.Credentials{
		ProjectID:   cfg.FirebaseProjectID,
		EncodedJSON: cfg.FirebaseServiceAccountJSON,
		File:        cfg.FirebaseCredentialsFile,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	logger.Info("Firebase initialized successfully")

	var recorder ledger.Recorder = ledger.Nop{}
	if cfg.LedgerEnabled() {
		dbPool, err = ledger.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect payment ledger database", zap.Error(err))
		}

		paymentLedger = ledger.NewPostgres(dbPool)
		if err := paymentLedger.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare payment ledger", zap.Error(err))
		}
		recorder = paymentLedger
		logger.Info("Payment ledger enabled")
	}

	catalog = plan.Default()
	userStore := services.NewFirestoreUserStore(firebaseClients.Firestore)
	paystackClient := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL, cfg.PaystackHTTPTimeout)

	subscriptionService = services.NewSubscriptionService(userStore, logger)
	paymentService = services.NewPaymentService(catalog, paystackClient, subscriptionService, recorder, logger)

	if cfg.PushNotifications {
		fcmService := notification.NewFCMService(firebaseClients.Messaging, logger)
		dispatcher = services.NewNotificationDispatcher(fcmService, userStore, logger, 2)
		paymentService.SetNotifier(dispatcher)
		logger.Info("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	metrics.Register(prometheus.DefaultRegisterer)
}

func main() {
	defer logger.Sync()
	defer func() {
		if dispatcher != nil {
			dispatcher.Stop()
		}
		if dbPool != nil {
			logger.Info("Closing database connection pool...")
			dbPool.Close()
		}
		if err := firebaseClients.Close(); err != nil {
			logger.Warn("Failed to close Firestore client", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	webhookHandler := handlers.NewPaystackWebhookHandler(paymentService, cfg.PaystackSecretKey, logger)
	planHandler := handlers.NewPlanHandler(catalog)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, logger)

	checks := map[string]handlers.Pinger{}
	if paymentLedger != nil {
		checks["database"] = paymentLedger
	}
	healthHandler := handlers.NewHealthHandler("subscription-api", checks)

	authMiddleware := middleware.NewAuth(firebaseClients.Auth, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxyHeaders)
	go rateLimiter.Cleanup(ctx)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.MonitorMiddleware)

	// Not rate limited. Method checking happens in the handler.
	r.HandleFunc("/webhooks/paystack", webhookHandler.HandleWebhook)

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(rateLimiter.Middleware)

	standardRouter.Handle("/metrics", middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/plans", planHandler.GetPlans).Methods("GET")

	// Callables answer unauthenticated callers with their own error envelope.
	callable := api.PathPrefix("/callable").Subrouter()
	callable.Use(authMiddleware.OptionalAuth)
	callable.HandleFunc("/verifyPaystackPayment", paymentHandler.VerifyPayment).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware.RequireAuth)

	protected.HandleFunc("/subscription", subscriptionHandler.GetSubscription).Methods("GET")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", middleware.RequestIDHeader}),
	)

	server := http.Server{
		Addr:    cfg.Addr(),
		Handler: corsHandler(r),
		// The verify callable waits on Paystack for up to PAYSTACK_HTTP_TIMEOUT.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PaystackHTTPTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server shutdown complete")
}
