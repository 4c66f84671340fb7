package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/config"
	healthHandler "github.com/npavlov/go-luhn-service/internal/handlers/health"
	luhnHandler "github.com/npavlov/go-luhn-service/internal/handlers/luhn"
	"github.com/npavlov/go-luhn-service/internal/logger"
	"github.com/npavlov/go-luhn-service/internal/luhn"
	"github.com/npavlov/go-luhn-service/internal/middlewares"
	"github.com/npavlov/go-luhn-service/internal/ratelimit"
	"github.com/npavlov/go-luhn-service/internal/redis"
	"github.com/npavlov/go-luhn-service/internal/router"
	"github.com/npavlov/go-luhn-service/internal/tracer"
	"github.com/npavlov/go-luhn-service/internal/utils"
)

const shutdownTimeout = 5 * time.Second

func main() {
	lg := logger.NewLogger()
	log := lg.SetLogLevel(zerolog.InfoLevel).Get()

	err := godotenv.Load(".env")
	if err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.NewConfigBuilder(log).
		FromEnv().
		FromFlags().Build()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log = lg.SetFormat(cfg.LogFormat).SetLogLevelName(cfg.LogLevel).Get()
	log.Info().Interface("config", cfg).Msg("Configuration loaded")

	ctx, cancel := utils.WithSignalCancel(context.Background(), log)
	defer cancel()

	if cfg.Jaeger != "" {
		tp, err := tracer.NewTracer(cfg.Jaeger).WithSampleRatio(cfg.SampleRatio).InitTracer(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error initialising tracer")
		} else {
			defer func() {
				if err := tracer.Shutdown(context.Background(), tp); err != nil {
					log.Error().Err(err).Msg("Error flushing traces")
				}
			}()
		}
	}

	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading category catalog")
	}

	src := luhn.DefaultSource()
	if cfg.Seed != 0 {
		src = luhn.NewSource(cfg.Seed)
	}
	engine := luhn.NewEngine(src)

	var store redis.MemStorage
	if cfg.Redis != "" {
		rStorage := redis.NewRStorage(cfg.Redis)
		defer func() {
			_ = rStorage.Close()
		}()

		err = utils.RetryOperationNotify(ctx, func() error {
			return rStorage.Ping(ctx)
		}, func(err error, wait time.Duration) {
			log.Warn().Err(err).Dur("wait", wait).Msg("Redis not reachable yet")
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to redis")
		}
		store = rStorage
	}

	policies, err := buildPolicies(ctx, cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid rate limits")
	}

	resolver, err := middlewares.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid trusted proxies")
	}

	hHandlers := healthHandler.NewHealthHandler(store, log)
	lHandlers := luhnHandler.NewLuhnHandler(engine, cat, cfg.MaxCount, cfg.DefaultLength, log)

	var cRouter router.Router = router.NewCustomRouter(policies, log).WithIPResolver(resolver)
	cRouter.SetMiddlewares()
	cRouter.SetHealthRouter(hHandlers)
	cRouter.SetLuhnRouter(lHandlers)

	log.Info().
		Str("server_address", cfg.Address).
		Int("categories", len(cat.All())).
		Msg("Server started")

	//nolint:exhaustruct
	server := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		Handler:      cRouter.GetRouter(),
	}

	go func() {
		// Wait for the context to be done (i.e., signal received)
		<-ctx.Done()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Error starting server")
		cancel()
	}

	log.Info().Msg("Server shut down")
}

// buildPolicies uses Redis counters when a store is configured, in-memory buckets otherwise.
func buildPolicies(ctx context.Context, cfg *config.Config, store redis.MemStorage) (router.Policies, error) {
	validateLimits, err := ratelimit.ParseLimits(cfg.ValidateLimit)
	if err != nil {
		return router.Policies{}, err
	}

	generateLimits, err := ratelimit.ParseLimits(cfg.GenerateLimit)
	if err != nil {
		return router.Policies{}, err
	}

	defaultLimits, err := ratelimit.ParseLimits(cfg.DefaultLimits)
	if err != nil {
		return router.Policies{}, err
	}

	if store != nil {
		return router.Policies{
			Validate: ratelimit.NewRedisPolicy(store, "validate", validateLimits...),
			Generate: ratelimit.NewRedisPolicy(store, "generate", generateLimits...),
			Default:  ratelimit.NewRedisPolicy(store, "default", defaultLimits...),
		}, nil
	}

	return router.Policies{
		Validate: ratelimit.NewMemoryPolicy(ctx, validateLimits...),
		Generate: ratelimit.NewMemoryPolicy(ctx, generateLimits...),
		Default:  ratelimit.NewMemoryPolicy(ctx, defaultLimits...),
	}, nil
}
