package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumera/contacts-service/pkg/health"
	"github.com/lumera/contacts-service/pkg/middleware"

	"github.com/lumera/contacts-service/internal/auth"
)

// RouterConfig carries the dependencies needed to build the HTTP router.
type RouterConfig struct {
	ContactHandler *ContactHandler
	Health         *health.Handler
	JWTManager     *auth.JWTManager
	Logger         *slog.Logger
	CORS           CORSConfig
}

// NewRouter builds the chi router with all middleware and routes mounted.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing("contacts"))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("contacts"))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	validate := tokenValidator(cfg.JWTManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Confirming an email only requires possession of a valid token,
		// so the endpoint stays public.
		r.Post("/verifications/confirm", cfg.ContactHandler.ConfirmEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))

			r.Route("/contacts", func(r chi.Router) {
				r.Post("/", cfg.ContactHandler.Create)
				r.Get("/", cfg.ContactHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.ContactHandler.Get)
					r.Patch("/", cfg.ContactHandler.Update)
					r.With(middleware.RequireRole("admin")).Delete("/", cfg.ContactHandler.Delete)

					r.Post("/verification-requests", cfg.ContactHandler.RequestVerification)
					r.Post("/address-validations", cfg.ContactHandler.ValidateAddress)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"route not found"}}`))
	})

	return r
}

// tokenValidator adapts the JWT manager to the auth middleware contract.
func tokenValidator(m *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{Subject: claims.Subject, Role: claims.Role}, nil
	}
}
