// Package main is the entry point for the storefront server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/render"
	"storefront/internal/router"
	"storefront/internal/session"
	"storefront/internal/storage"
	"storefront/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if !cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"locale", cfg.DefaultLocale,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Development also gets a demo catalog. Both steps are no-ops once
	// their tables hold data.
	if cfg.IsDev() {
		err = database.Seed(db, cfg.AdminEmail, cfg.AdminPassword)
	} else {
		err = database.SeedAdmin(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword)
	}
	if err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Outside development, session and CSRF cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Uploads go to the bucket when one is configured, otherwise to disk.
	var (
		files   storage.Storage
		uploads http.Handler
	)
	if cfg.UsesS3() {
		bucket, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		files = bucket
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			slog.Error("failed to initialize upload directory", "error", err, "dir", cfg.UploadDir)
			os.Exit(1)
		}
		files = local
		uploads = handlers.ServeUploads(local)
		slog.Info("local upload storage", "dir", cfg.UploadDir)
	}

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	membershipStore := store.NewMembershipStore(db)
	productStore := store.NewProductStore(db)
	imageStore := store.NewImageStore(db)
	postStore := store.NewPostStore(db)
	orderStore := store.NewOrderStore(db)

	api := handlers.NewAPI(categoryStore, membershipStore, productStore, imageStore, postStore, orderStore, files, pageCache, cfg.MaxUploadMB)
	adminHandlers := handlers.NewAdmin(renderer, categoryStore, productStore, imageStore, postStore, orderStore, pageCache)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(renderer, categoryStore, membershipStore, productStore, imageStore, postStore, pageCache, secureCookies)

	orderLimiter := middleware.NewNamedRateLimiter("order", cfg.OrderRateLimit, time.Minute)
	defer orderLimiter.Stop()
	loginLimiter := middleware.NewNamedRateLimiter("login", cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Admin:         adminHandlers,
		Auth:          authHandlers,
		Public:        publicHandlers,
		API:           api,
		Uploads:       uploads,
		OrderLimiter:  orderLimiter,
		LoginLimiter:  loginLimiter,
		DefaultLocale: i18n.Locale(cfg.DefaultLocale),
		SecureCookies: secureCookies,
	})

	// WriteTimeout covers a full upload plus thumbnailing.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
