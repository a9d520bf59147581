package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nebula-forge-api/internal/application/builder"
	"github.com/nebula-forge-api/internal/application/registration"
	"github.com/nebula-forge-api/internal/config"
	"github.com/nebula-forge-api/internal/transport/http/handler"
	appmiddleware "github.com/nebula-forge-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work owned by the router (rate limiter cleanup).
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		// Only safe when every request arrives through a proxy that sets these headers.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10; applied to endpoints that send mail.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	regSvc := registration.NewService(registration.ServiceDeps{
		Store:  deps.PendingStore,
		Mailer: deps.Mailer,
		TTL:    cfg.VerificationTTL,
	})
	builderSvc := builder.NewService(builder.ServiceDeps{
		Mailer:        deps.Mailer,
		SMSSender:     deps.SMSSender,
		From:          cfg.SMTPPartnersFrom,
		OperatorEmail: cfg.OperatorEmail,
		OperatorPhone: cfg.OperatorPhone,
	})

	var signer handler.TokenSigner
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
	}

	healthH := handler.NewHealthHandler()
	regH := handler.NewRegistrationHandler(regSvc, signer)
	builderH := handler.NewBuilderHandler(builderSvc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/register-init", regH.RegisterInit)
		r.With(sensitiveRL.Limit).Post("/register-resend", regH.Resend)
		r.With(sensitiveRL.Limit).Post("/verify", regH.Verify)
		r.With(sensitiveRL.Limit).Post("/builder-apply", builderH.Apply)

		if deps.JWTProvider != nil {
			r.With(appmiddleware.Auth(deps.JWTProvider)).Get("/me", handler.Me)
		}
	})

	return r
}
