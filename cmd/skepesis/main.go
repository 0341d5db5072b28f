package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/backends"
	"github.com/skepesis/skepesis/insight"
	"github.com/skepesis/skepesis/internal/auth"
	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/store"
	"github.com/skepesis/skepesis/internal/version"
	"github.com/skepesis/skepesis/trivia"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg := skepesis.DefaultConfig()
	if cfgPath := os.Getenv("SKEPESIS_CONFIG"); cfgPath != "" {
		loaded, err := skepesis.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
		log.Printf("Config loaded: driver=%s, provider=%s", cfg.Database.Driver, cfg.Backend.Provider)
	}
	skepesis.ApplyEnvOverrides(&cfg)
	if err := skepesis.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if cfg.Auth.TokenSecret == "" {
		log.Fatal("No token secret configured. Set auth.token_secret in the config file or SKEPESIS_TOKEN_SECRET")
	}

	db, err := openStore(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	backend := buildBackend(cfg.Backend)
	engine := insight.NewEngine(backend, insight.EngineConfig{
		CacheSize:        cfg.Insight.CacheSize,
		CacheTTL:         time.Duration(cfg.Insight.CacheTTLSeconds) * time.Second,
		MaxConcurrent:    cfg.Insight.MaxConcurrent,
		QueueTimeout:     time.Duration(cfg.Insight.QueueTimeoutSeconds) * time.Second,
		BreakerThreshold: cfg.Insight.BreakerThreshold,
		BreakerCooldown:  time.Duration(cfg.Insight.BreakerCooldownSeconds) * time.Second,
	})
	defer engine.Close()

	issuer, err := auth.NewTokenIssuer(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	srv := newServer(cfg, db, engine, issuer, trivia.NewClient(cfg.Trivia.BaseURL))

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Skepesis %s listening on %s (backend: %s, model: %s)",
		version.Short(), cfg.Server.Addr, backend.Name(), backend.Model())
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

func openStore(cfg skepesis.DatabaseConfig) (*store.Store, error) {
	if cfg.Driver == skepesis.DriverPostgres {
		return store.NewPostgres(cfg.DSN)
	}
	return store.NewSQLite(cfg.DSN)
}

func buildBackend(cfg skepesis.BackendConfig) backends.Generator {
	if cfg.Provider == skepesis.ProviderOpenAI {
		return backends.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	return backends.NewOllama(cfg.BaseURL, cfg.Model)
}
