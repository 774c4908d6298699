package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fare-backend/internal/auth"
	"fare-backend/internal/cache"
	"fare-backend/internal/config"
	"fare-backend/internal/database"
	"fare-backend/internal/db"
	"fare-backend/internal/handlers"
	"fare-backend/internal/health"
	h "fare-backend/internal/http"
	"fare-backend/internal/ledger"
	"fare-backend/internal/metrics"
	"fare-backend/internal/middleware"
	"fare-backend/internal/monitoring"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional: login falls back to bcrypt-only, read caches turn off.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (continuing without cache)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	metrics.Init()

	// Ops dashboard runs on its own port so it can stay firewalled off.
	go monitoring.NewServer(pool, cfg.Monitoring.Port).Start()

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	locationRepo := repositories.NewLocationRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	loginLogRepo := repositories.NewLoginLogRepository(pool)
	adminActionLogRepo := repositories.NewAdminActionLogRepository(pool)
	onlineTransactionRepo := repositories.NewOnlineTransactionRepository(pool)
	apiRequestLogRepo := repositories.NewAPIRequestLogRepository(pool)

	// The ledger owns every balance mutation.
	ledgerService := ledger.NewService(repositories.NewLedgerStore(pool))

	// Services
	userService := services.NewUserService(userRepo, loginLogRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo)
	customerService := services.NewCustomerService(customerRepo, locationRepo)
	locationService := services.NewLocationService(locationRepo, customerRepo)
	reportService := services.NewReportService(customerRepo, locationRepo, paymentRepo)
	archiveService := services.NewArchiveService(cfg, paymentRepo, customerRepo)
	razorpayService := services.NewRazorpayService(cfg, onlineTransactionRepo, customerRepo, ledgerService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)
	requestLogging := middleware.NewRequestLoggingMiddleware(apiRequestLogRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))
	authHandler := handlers.NewAuthHandler(userService, totpService, jwtManager)
	totpHandler := handlers.NewTOTPHandler(totpService, userService)
	userHandler := handlers.NewUserHandler(userService, adminActionLogRepo)
	customerHandler := handlers.NewCustomerHandler(customerService, adminActionLogRepo)
	locationHandler := handlers.NewLocationHandler(locationService)
	paymentHandler := handlers.NewPaymentHandler(ledgerService, paymentRepo, customerRepo, adminActionLogRepo, reportService)
	billingHandler := handlers.NewBillingHandler(ledgerService, adminActionLogRepo, archiveService)
	reportHandler := handlers.NewReportHandler(reportService, archiveService)
	onlinePaymentHandler := handlers.NewOnlinePaymentHandler(razorpayService, onlineTransactionRepo)
	logHandler := handlers.NewLogHandler(loginLogRepo, adminActionLogRepo)

	router := h.NewRouter(
		authHandler,
		totpHandler,
		userHandler,
		customerHandler,
		locationHandler,
		paymentHandler,
		billingHandler,
		reportHandler,
		onlinePaymentHandler,
		logHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			requestLogging.Handler(
				corsMiddleware(router),
			),
		),
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
