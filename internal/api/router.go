package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/buildmarket/engine/internal/api/handlers"
	mw "github.com/buildmarket/engine/internal/api/middleware"
	"github.com/buildmarket/engine/internal/models"
)

type Dependencies struct {
	HMACSecret           []byte
	AuthHandler          *handlers.AuthHandler
	ProjectsHandler      *handlers.ProjectsHandler
	StagesHandler        *handlers.StagesHandler
	GCRequestsHandler    *handlers.GCRequestsHandler
	PaymentsHandler      *handlers.PaymentsHandler
	NotificationsHandler *handlers.NotificationsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/docs/doc.json"),
	))

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Route("/projects", func(pr chi.Router) {
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/", dep.ProjectsHandler.ListMine)
				pr.Get("/active", dep.ProjectsHandler.ListActive)
				pr.Get("/pending", dep.ProjectsHandler.ListPending)
				pr.Get("/assigned", dep.ProjectsHandler.ListAssigned)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Get("/{id}/requests", dep.GCRequestsHandler.ListForProject)
				pr.Post("/{id}/match", dep.ProjectsHandler.Match)
				pr.Post("/{id}/declare-payment", dep.ProjectsHandler.DeclarePayment)
				pr.Post("/{id}/stages/{stageID}/approve-payment", dep.StagesHandler.ApprovePayment)
				pr.Post("/{id}/stages/{stageID}/complete", dep.StagesHandler.Complete)

				// Operator-only actions
				pr.Group(func(admin chi.Router) {
					admin.Use(mw.RequireRole(string(models.RoleAdmin)))
					admin.Get("/{id}/payments", dep.PaymentsHandler.ListForProject)
					admin.Post("/{id}/payment-link", dep.ProjectsHandler.SetPaymentLink)
					admin.Post("/{id}/confirm-payment", dep.ProjectsHandler.ConfirmPayment)
					admin.Post("/{id}/reject-payment", dep.ProjectsHandler.RejectPayment)
					admin.Post("/{id}/pause", dep.ProjectsHandler.Pause)
					admin.Post("/{id}/resume", dep.ProjectsHandler.Resume)
				})
			})

			protected.Route("/gc-requests", func(gr chi.Router) {
				gr.Get("/", dep.GCRequestsHandler.Inbox)
				gr.Post("/{id}/accept", dep.GCRequestsHandler.Accept)
				gr.Post("/{id}/reject", dep.GCRequestsHandler.Reject)
			})

			protected.Route("/payments", func(py chi.Router) {
				py.Use(mw.RequireRole(string(models.RoleAdmin)))
				py.Post("/{id}/settle", dep.PaymentsHandler.Settle)
			})

			protected.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", dep.NotificationsHandler.List)
				nr.Post("/{id}/read", dep.NotificationsHandler.MarkRead)
			})
		})
	})

	return r
}
