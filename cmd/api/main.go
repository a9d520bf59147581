package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nebula-forge-api/internal/application/registration"
	"github.com/nebula-forge-api/internal/config"
	"github.com/nebula-forge-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/nebula-forge-api/internal/infrastructure/jwt"
	"github.com/nebula-forge-api/internal/infrastructure/memory"
	redisinfra "github.com/nebula-forge-api/internal/infrastructure/redis"
	"github.com/nebula-forge-api/internal/infrastructure/smtp"
	"github.com/nebula-forge-api/internal/infrastructure/sns"
	transporthttp "github.com/nebula-forge-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newPendingStore(ctx, cfg)
	if err != nil {
		log.Fatalf("pending store: %v", err)
	}
	log.Printf("Pending store: %s", cfg.PendingStore)

	// JWT provider (optional; verify responses carry no token without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional; only used when OPERATOR_PHONE is set).
	var smsSender sns.SMSSender
	if cfg.OperatorPhone != "" {
		if sender, err := sns.NewSender(cfg); err == nil {
			smsSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	go registration.RunSweeper(ctx, store, cfg.SweepInterval, cfg.ExpiredRetention, time.Now)

	deps := &transporthttp.Deps{
		PendingStore: store,
		Mailer:       mailer,
		SMSSender:    smsSender,
		JWTProvider:  jwtProvider,
	}
	router := transporthttp.NewRouter(ctx, cfg, deps)

	// WriteTimeout leaves room for a full mail send inside a request.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MailSendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newPendingStore selects the backend named by PENDING_STORE.
func newPendingStore(ctx context.Context, cfg *config.Config) (registration.PendingStore, error) {
	switch cfg.PendingStore {
	case config.StoreMemory:
		return memory.NewPendingStore(), nil
	case config.StoreRedis:
		store := redisinfra.NewPendingStore(redisinfra.NewClient(cfg), cfg.ExpiredRetention)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewPendingRepo(client, cfg.DynamoTables.PendingRegistrations, cfg.ExpiredRetention), nil
	default:
		return nil, fmt.Errorf("unknown PENDING_STORE %q", cfg.PendingStore)
	}
}
