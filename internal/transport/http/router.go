package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	fileapp "github.com/go-insurance-api/internal/application/file"
	"github.com/go-insurance-api/internal/application/notification"
	"github.com/go-insurance-api/internal/application/policy"
	"github.com/go-insurance-api/internal/application/session"
	"github.com/go-insurance-api/internal/application/ticket"
	"github.com/go-insurance-api/internal/application/user"
	"github.com/go-insurance-api/internal/config"
	"github.com/go-insurance-api/internal/domain"
	"github.com/go-insurance-api/internal/transport/http/handler"
	appmiddleware "github.com/go-insurance-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 on endpoints that send mail or take
	// credential guesses.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionDeps := session.ServiceDeps{
		UserRepo:      deps.UserRepo,
		SessionRepo:   deps.SessionRepo,
		Signer:        deps.JWTProvider,
		RefreshExpiry: cfg.RefreshTokenExpiry,
	}
	if deps.GoogleVerifier != nil {
		sessionDeps.GoogleVerifier = deps.GoogleVerifier
	}
	sessionSvc := session.NewService(sessionDeps)
	userSvc := user.NewService(deps.UserRepo)
	policySvc := policy.NewService(deps.PolicyRepo, deps.PurchaseRepo)
	ticketSvc := ticket.NewService(ticket.ServiceDeps{
		PendingRepo:      deps.PendingTicketRepo,
		TicketRepo:       deps.TicketRepo,
		NotificationRepo: deps.NotificationRepo,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		Clock:            deps.Clock,
		OTPTTL:           cfg.OTPTTL,
	})
	notifSvc := notification.NewService(deps.NotificationRepo)
	fileSvc := fileapp.NewService(deps.FileRepo, deps.S3Store)

	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	policyH := handler.NewPolicyHandler(policySvc)
	ticketH := handler.NewTicketHandler(ticketSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	fileH := handler.NewFileHandler(fileSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health", handler.Health)
	r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
	if deps.GoogleVerifier != nil {
		r.With(sensitiveRL.Limit).Post("/sessions/login/google", sessionH.LoginGoogle)
	}
	r.Post("/sessions/refresh", sessionH.Refresh)
	r.With(sensitiveRL.Limit).Post("/users", userH.Register)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/sessions/current", sessionH.Current)
		r.Post("/sessions/logout", sessionH.Logout)

		r.Get("/users/me", userH.Me)
		r.Patch("/users/me", userH.UpdateMe)

		r.Get("/policies", policyH.List)
		r.Get("/policies/{id}", policyH.Get)
		r.Post("/policies/{id}/purchase", policyH.Purchase)
		r.Get("/purchases", policyH.ListPurchases)

		// Ticket workflow. Raising is rate limited because each call sends a
		// confirmation email.
		r.With(sensitiveRL.Limit).Post("/Ticket/raiseticket", ticketH.Raise)
		r.Post("/Ticket/verify", ticketH.Verify)
		r.Get("/Ticket/mine", ticketH.ListMine)
		r.Get("/Ticket/{id}", ticketH.Get)

		r.Get("/notifications", notifH.ListUnread)
		r.Post("/notifications/{id}/read", notifH.MarkAsRead)

		r.Post("/files", fileH.Upload)
		r.Get("/files/{id}", fileH.Get)
		r.Delete("/files/{id}", fileH.Delete)

		// Producer routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleProducer, domain.RoleAdmin))

			r.Post("/policies", policyH.Create)
			r.Get("/policies/mine", policyH.ListMine)
			r.Patch("/policies/{id}", policyH.Update)
			r.Delete("/policies/{id}", policyH.Delete)

			r.Get("/Ticket", ticketH.List)
			r.Post("/Ticket/{id}/decision", ticketH.Decide)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/users", userH.List)
			r.Get("/users/{id}", userH.Get)
			r.Delete("/users/{id}", userH.Delete)
		})
	})

	return r
}
