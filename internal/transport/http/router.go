package http

import (
	"net/http"

	"github.com/Redwolfc4/nusantarago-backend/internal/application/account"
	"github.com/Redwolfc4/nusantarago-backend/internal/config"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/opaqueid"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/otp"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/password"
	"github.com/Redwolfc4/nusantarago-backend/internal/transport/http/handler"
	appmiddleware "github.com/Redwolfc4/nusantarago-backend/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	cookie := appmiddleware.Cookie{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure}

	accountSvc := account.NewService(account.ServiceDeps{
		Store:  deps.Store,
		Mailer: deps.Mailer,
		Hasher: password.New(cfg.BcryptCost),
		OTP:    otp.New(cfg.OTPTTL),
		Codec:  opaqueid.Codec{},
		Tokens: deps.Tokens,
		Clock:  deps.Clock,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc, cookie, deps.Metrics)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", accountH.Register)
			r.Patch("/verify-otp", accountH.Confirm)
			r.Post("/login", accountH.Login)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.Tokens, cookie))

				r.Get("/get-user", accountH.Profile)
				r.Put("/update-user", accountH.UpdateProfile)
				r.Get("/logout", accountH.Logout)
			})
		})
	})

	return r
}
