package router

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	health "github.com/npavlov/go-luhn-service/internal/handlers/health"
	luhn "github.com/npavlov/go-luhn-service/internal/handlers/luhn"
	"github.com/npavlov/go-luhn-service/internal/middlewares"
	"github.com/npavlov/go-luhn-service/internal/ratelimit"
)

const (
	compressionLevel = 5
	// A validate request carries a single number.
	maxValidateBody = 4 << 10
)

type Router interface {
	SetHealthRouter(hh *health.HandlerHealth)
	SetLuhnRouter(hl *luhn.HandlerLuhn)
	SetMiddlewares()
	GetRouter() *chi.Mux
}

// Policies holds the rate limit applied to each route group.
type Policies struct {
	Validate ratelimit.Policy
	Generate ratelimit.Policy
	Default  ratelimit.Policy
}

type CustomRouter struct {
	router   *chi.Mux
	logger   *zerolog.Logger
	policies Policies
	resolver *middlewares.IPResolver
}

// NewCustomRouter - constructor for CustomRouter.
func NewCustomRouter(policies Policies, l *zerolog.Logger) *CustomRouter {
	return &CustomRouter{
		router:   chi.NewRouter(),
		logger:   l,
		policies: policies,
		resolver: nil,
	}
}

// WithIPResolver sets how rate limited callers are identified. Without one
// callers are keyed on the connection peer.
func (cr *CustomRouter) WithIPResolver(resolver *middlewares.IPResolver) *CustomRouter {
	cr.resolver = resolver

	return cr
}

func (cr *CustomRouter) SetMiddlewares() {
	cr.router.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "luhnd")
	})
	cr.router.Use(middlewares.RequestIDMiddleware)
	cr.router.Use(middlewares.LoggingMiddleware(cr.logger))
	cr.router.Use(middleware.Recoverer)

	compressor := middleware.NewCompressor(compressionLevel, "application/json", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	cr.router.Use(compressor.Handler)
}

func (cr *CustomRouter) SetHealthRouter(hh *health.HandlerHealth) {
	cr.router.Route("/ping", func(router chi.Router) {
		router.With(middlewares.ContentMiddleware("text/plain")).
			Get("/", hh.Ping)
	})
}

func (cr *CustomRouter) SetLuhnRouter(hl *luhn.HandlerLuhn) {
	cr.router.Route("/api", func(router chi.Router) {
		router.With(cr.limit(cr.policies.Validate), middleware.RequestSize(maxValidateBody)).
			Post("/validate", hl.Validate)
		router.With(cr.limit(cr.policies.Generate)).
			Get("/generate", hl.Generate)
		router.With(cr.limit(cr.policies.Default)).
			Get("/categories", hl.Categories)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}

func (cr *CustomRouter) limit(policy ratelimit.Policy) func(http.Handler) http.Handler {
	if policy == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return middlewares.RateLimitMiddleware(policy, cr.resolver, cr.logger)
}
