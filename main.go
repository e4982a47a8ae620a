package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bayti-store/server/internal/assistant"
	"github.com/bayti-store/server/internal/cart"
	"github.com/bayti-store/server/internal/catalog"
	"github.com/bayti-store/server/internal/core"
	"github.com/bayti-store/server/internal/discount"
	"github.com/bayti-store/server/internal/httpapi"
	"github.com/bayti-store/server/internal/order"
	"github.com/bayti-store/server/internal/profile"
	logx "github.com/bayti-store/server/pkg/logger"
	pkgpostgres "github.com/bayti-store/server/pkg/postgres"
	pkgredis "github.com/bayti-store/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the storefront server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	// Expiry knobs, parsed as Go durations.
	CartTTL         string `envconfig:"CART_TTL" default:"720h"`
	CatalogCacheTTL string `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	ConversationTTL string `envconfig:"CONVERSATION_TTL" default:"24h"`

	// LLM provider; the assistant endpoint is disabled when no key is set.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Model  assistant.ModelConfig
	Prompt assistant.PromptConfig

	HTTP httpapi.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("no .env file loaded")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	cartTTL := mustDuration("CART_TTL", cfg.CartTTL)
	cacheTTL := mustDuration("CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)
	convTTL := mustDuration("CONVERSATION_TTL", cfg.ConversationTTL)

	rdb := cfg.Redis.MustNew()
	defer rdb.Close()

	pool := cfg.Postgres.MustNew(ctx)
	defer pool.Close()

	catalogPg := catalog.NewPostgresStore(pool)
	discounts := discount.NewPostgresStore(pool)
	profiles := profile.NewPostgresStore(pool)
	orders := order.NewPostgresStore(pool)
	for name, ensure := range map[string]func(context.Context) error{
		"products":           catalogPg.EnsureSchema,
		"category_discounts": discounts.EnsureSchema,
		"pricing_profiles":   profiles.EnsureSchema,
		"orders":             orders.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			logx.Fatal().Err(err).Str("schema", name).Msg("Failed to ensure database schema")
		}
	}

	catalogStore := catalog.NewCachedStore(catalogPg, rdb, cacheTTL)
	carts := cart.NewRedisCartRepository(rdb, cartTTL)
	checkout := order.NewService(carts, catalogStore, profiles, discounts, orders)

	var chatter httpapi.Chatter
	if cfg.APIKey != "" {
		bot, err := assistant.New(ctx, assistant.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Prompt:  cfg.Prompt,
		}, catalogStore, assistant.NewRedisConversationRepository(rdb, convTTL))
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise assistant")
		}
		chatter = bot
	} else {
		logx.Warn().Msg("GEMINI_API_KEY not set, assistant endpoint disabled")
	}

	srv := httpapi.NewServer(cfg.HTTP, catalogStore, carts, checkout, orders, profiles, discounts, chatter)

	logx.Info().
		Str("port", cfg.HTTP.Port).
		Str("environment", env.String()).
		Msg("Starting bayti-store server")
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Fatal().Err(err).Msg("Server exited with error")
	}
	logx.Info().Msg("Server stopped")
}

func mustDuration(name, raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		logx.Fatal().Err(err).Str("value", raw).Msgf("Invalid %s", name)
	}
	return d
}
