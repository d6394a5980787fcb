// Package main initializes and starts the canteen HTTPS server,
// setting up configuration, logging, session keys, database connections,
// repositories, services, handlers, and TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/canteen/internal/certgen"
	"github.com/atinyakov/canteen/internal/config"
	"github.com/atinyakov/canteen/internal/db"
	"github.com/atinyakov/canteen/internal/logger"
	"github.com/atinyakov/canteen/internal/password"
	"github.com/atinyakov/canteen/internal/ratelimit"
	"github.com/atinyakov/canteen/internal/repository"
	"github.com/atinyakov/canteen/internal/server/handler/http"
	"github.com/atinyakov/canteen/internal/service"
	"github.com/atinyakov/canteen/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// initLogger builds the production logger at level, defaulting to info.
func initLogger(level string) (*logger.Logger, error) {
	l := logger.New()
	level = cmp.Or(level, "Info")
	if err := l.Init(level); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return l, nil
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging. Until it exists failures go to stderr.
	appLogger, err := initLogger(options.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = appLogger.Log.Sync() }()
	zapLogger := appLogger.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// Session keys are loaded once; without them no request can be served.
	keys, err := options.SessionKeys()
	if err != nil {
		zapLogger.Fatal("cannot load session keys", zap.Error(err))
	}
	codec, err := session.NewCodec(keys, options.SessionAge())
	if err != nil {
		zapLogger.Fatal("cannot init session codec", zap.Error(err))
	}
	cookies := session.NewCookiePolicy(options.SessionAge())

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Deleted usernames stay reserved for longer than any session can live.
	db.StartDeletedAccountCleaner(ctx, postgresDB,
		time.Hour,                         // interval
		options.SessionAge()+24*time.Hour, // retention
		zapLogger,
	)

	// Optional failed-login throttle.
	var limiter *ratelimit.Limiter
	if options.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zapLogger.Fatal("cannot reach redis", zap.String("addr", options.RedisAddr), zap.Error(err))
		}
		limiter = ratelimit.New(client, ratelimit.Config{
			MaxAttempts: options.LoginAttempts(),
			Cooldown:    options.LoginCooldown(),
			ThrottleIP:  true,
		})
		zapLogger.Info("login throttling enabled", zap.Int("max_attempts", options.LoginAttempts()))
	}

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		zapLogger.Fatal("cannot init password hasher", zap.Error(err))
	}

	// Initialize repositories and business-logic services.
	accountRepo := repository.NewPostgresAccountRepository(postgresDB)
	authService, err := service.NewAuthService(accountRepo, hasher, codec, limiter, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init auth service", zap.Error(err))
	}
	accountService := service.NewAccountService(accountRepo, hasher)

	// Create HTTP handlers and build the router from the route table.
	authHandler := &http.AuthHandler{AuthService: authService, Cookies: cookies, Log: zapLogger}
	accountHandler := &http.AccountHandler{AccountService: accountService, Log: zapLogger}
	router := http.NewRouter(http.Routes(authHandler, accountHandler), authService, cookies, zapLogger)

	tlsConfig, err := certgen.ServerTLSConfig(options.TLSCert, options.TLSKey)
	if err != nil {
		zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
	}

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
