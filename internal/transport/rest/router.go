package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/siteops/workforce-compliance/internal/auth"
	"github.com/siteops/workforce-compliance/internal/credential"
	"github.com/siteops/workforce-compliance/internal/eligibility"
	"github.com/siteops/workforce-compliance/internal/personnel"
	"github.com/siteops/workforce-compliance/internal/transport/middleware"
	"github.com/siteops/workforce-compliance/internal/transport/swagger"
	"github.com/siteops/workforce-compliance/internal/worktype"
)

// Handlers bundles every module handler the router mounts. Nil entries are
// skipped so partial wiring works in tests.
type Handlers struct {
	Auth        *auth.Handler
	Eligibility *eligibility.Handler
	WorkType    *worktype.Handler
	Credential  *credential.Handler
	Personnel   *personnel.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Eligibility != nil {
				pr.Route("/eligibility", func(er chi.Router) {
					er.Use(middleware.RequirePermissions(auth.PermRunChecks))
					er.Post("/check", h.Eligibility.Check)
					er.Get("/work-types/{code}/rule", h.Eligibility.GetEffectiveRule)
				})
			}

			if h.WorkType != nil {
				pr.Route("/work-types", func(wr chi.Router) {
					wr.Get("/", h.WorkType.ListWorkTypes)
					wr.Get("/{code}", h.WorkType.GetWorkType)
					wr.Get("/{code}/overrides", h.WorkType.ListOverrides)

					wr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageWorkTypes))
						mr.Post("/", h.WorkType.CreateWorkType)
						mr.Delete("/{code}", h.WorkType.DeactivateWorkType)
					})
				})

				pr.Route("/overrides", func(or chi.Router) {
					or.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageWorkTypes))
						mr.Post("/", h.WorkType.CreateOverride)
						mr.Delete("/{id}", h.WorkType.DeactivateOverride)
					})

					or.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermissions(auth.PermApproveOverrides))
						ar.Patch("/{id}/approve", h.WorkType.ApproveOverride)
					})
				})
			}

			if h.Credential != nil {
				pr.Route("/credential-definitions", func(cr chi.Router) {
					cr.Get("/", h.Credential.ListDefinitions)
					cr.Get("/{kind}/{code}", h.Credential.GetDefinition)

					cr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageCredentials))
						mr.Post("/", h.Credential.CreateDefinition)
						mr.Delete("/{kind}/{code}", h.Credential.DeactivateDefinition)
					})
				})

				pr.Route("/credentials", func(cr chi.Router) {
					cr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageCredentials))
						mr.Post("/", h.Credential.SubmitRecord)
					})

					cr.Group(func(vr chi.Router) {
						vr.Use(middleware.RequirePermissions(auth.PermVerifyCredentials))
						vr.Patch("/{id}/verify", h.Credential.VerifyRecord)
						vr.Patch("/{id}/reject", h.Credential.RejectRecord)
					})
				})
			}

			if h.Personnel != nil {
				pr.Route("/people", func(pe chi.Router) {
					pe.Use(middleware.RequirePermissions(auth.PermViewPeople))
					pe.Get("/", h.Personnel.ListPeople)
					pe.Get("/{id}", h.Personnel.GetPerson)
					if h.Credential != nil {
						pe.Get("/{personID}/credentials", h.Credential.ListRecords)
					}
				})
			}
		})
	})
}
