/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/policies/*       Vacation policy management
  /api/users/*          Users, approver pools, assignments, stats
  /api/departments/*    Department management
  /api/vacations/*      Requests, approvals, grants
  /api/holidays/*       Company holidays
  /api/worklogs/*       Work-history entries

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/{id}", h.GetPolicy)
			r.Put("/{id}", h.UpdatePolicy)
			r.Delete("/{id}", h.DeletePolicy)
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Get("/{id}/approvers", h.GetApproverPool)
			r.Get("/{id}/policies", h.ListUserPolicies)
			r.Post("/{id}/policies", h.AssignPolicies)
			r.Delete("/{id}/policies/{policyID}", h.RevokePolicy)
			r.Get("/{id}/vacations", h.ListUserVacations)
			r.Get("/{id}/vacations/stats", h.UserVacationStats)
			r.Get("/{id}/worklogs", h.ListWorkLogs)
		})

		// Department routes
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			r.Post("/", h.CreateDepartment)
			r.Delete("/{id}", h.DeleteDepartment)
		})

		// Vacation request and grant routes
		r.Route("/vacations", func(r chi.Router) {
			r.Post("/requests", h.SubmitVacation)
			r.Post("/requests/approve", h.ApproveVacation)
			r.Post("/requests/reject", h.RejectVacation)
			r.Post("/requests/{id}/cancel", h.CancelVacation)
			r.Get("/grants/{id}", h.GetGrant)
			r.Post("/grants", h.ManualGrant)
			r.Delete("/grants/{id}", h.RevokeGrant)
			r.Get("/by-approver/{id}", h.ListApproverVacations)
			r.Get("/overtime-hours", h.DeriveOvertime)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Work log routes
		r.Route("/worklogs", func(r chi.Router) {
			r.Post("/", h.CreateWorkLog)
			r.Delete("/{id}", h.DeleteWorkLog)
		})
	})

	return r
}
