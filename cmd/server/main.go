package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazaarchi/storefront/internal/cache"
	"github.com/bazaarchi/storefront/internal/config"
	"github.com/bazaarchi/storefront/internal/handlers"
	"github.com/bazaarchi/storefront/internal/middleware"
	"github.com/bazaarchi/storefront/internal/repository"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/bazaarchi/storefront/internal/sms"
	"github.com/bazaarchi/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Connect to the database and migrate the schema
	db, err := repository.Open(cfg.Database)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)

	// Shared TTL cache for OTP challenges and throttling
	store := cache.New(time.Minute)
	defer store.Close()

	// Initialize services
	productService := service.NewProductService(productRepo)
	stockService := service.NewStockService(productRepo)
	cartService := service.NewCartService(productRepo, cartRepo)
	couponService := service.NewCouponService(couponRepo)
	orderService := service.NewOrderService(cartRepo, orderRepo, couponService)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	authService := service.NewAuthService(userRepo, store, sms.NewLogGateway(log), cfg.Auth, cfg.OTP)

	// Seed the coupon negative cache
	seeded, err := couponService.WarmFilter(context.Background())
	if err != nil {
		log.Error("failed to warm coupon filter", "error", err)
		os.Exit(1)
	}
	log.Info("coupon filter warmed", "codes", seeded)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(productService, stockService, log)
	couponHandler := handlers.NewCouponHandler(couponService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	authHandler := handlers.NewAuthHandler(authService, log)
	reviewHandler := handlers.NewReviewHandler(reviewService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Authenticate(authService, log))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.CartTokenHeader},
		ExposedHeaders:   []string{handlers.CartTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{productId}", productHandler.GetProduct)
		r.Get("/products/{productId}/stock", productHandler.GetStock)
		r.Get("/products/{productId}/reviews", reviewHandler.ListForProduct)
		r.Get("/categories", productHandler.ListCategories)

		// Coupon validation
		r.Post("/coupons/validate", couponHandler.Validate)

		// Cart
		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{itemId}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{itemId}", cartHandler.RemoveItem)
		r.Delete("/cart", cartHandler.Clear)

		// OTP sign-in
		r.Post("/auth/otp/request", authHandler.RequestOTP)
		r.Post("/auth/otp/verify", authHandler.VerifyOTP)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/checkout", orderHandler.Checkout)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderNumber}", orderHandler.GetOrder)
			r.Post("/orders/{orderNumber}/cancel", orderHandler.CancelOrder)
			r.Post("/products/{productId}/reviews", reviewHandler.Create)
		})

		// Admin back-office
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/products", productHandler.CreateProduct)
			r.Put("/products/{productId}", productHandler.UpdateProduct)
			r.Delete("/products/{productId}", productHandler.DeleteProduct)
			r.Post("/products/{productId}/variants", productHandler.AddVariants)
			r.Post("/products/{productId}/size-stock-import", productHandler.ImportSizeStock)
			r.Post("/categories", productHandler.CreateCategory)

			r.Get("/coupons", couponHandler.List)
			r.Post("/coupons", couponHandler.Create)
			r.Put("/coupons/{couponId}", couponHandler.Update)

			r.Get("/orders", orderHandler.ListAllOrders)
			r.Put("/orders/{orderNumber}/status", orderHandler.UpdateStatus)

			r.Put("/reviews/{reviewId}/approve", reviewHandler.Approve)
			r.Delete("/reviews/{reviewId}", reviewHandler.Delete)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
